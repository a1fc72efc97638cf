package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"canteen/internal/model"
	"canteen/internal/service"
)

// RequestHandler handles purchase and balance top-up requests.
type RequestHandler struct {
	purchaseService service.PurchaseRequestService
	topupService    service.TopupService
}

// NewRequestHandler creates a request handler.
func NewRequestHandler(purchaseService service.PurchaseRequestService, topupService service.TopupService) *RequestHandler {
	return &RequestHandler{purchaseService: purchaseService, topupService: topupService}
}

// CreatePurchaseRequest is a chef's ingredient request.
type CreatePurchaseRequest struct {
	ItemName string `json:"item_name" validate:"required,max=255"`
	Quantity string `json:"quantity" validate:"required,max=100"`
}

// CreateTopupRequest asks for funds.
type CreateTopupRequest struct {
	Amount decimal.Decimal `json:"amount" swaggertype:"string" example:"500.00"`
}

// UpdateStatusRequest is an admin decision on a request.
type UpdateStatusRequest struct {
	Status       model.RequestStatus `json:"status" validate:"required,oneof=pending approved rejected"`
	AdminComment *string             `json:"admin_comment"`
}

// PendingCountResponse is the number of top-ups awaiting a decision.
type PendingCountResponse struct {
	Count int64 `json:"count"`
}

func statusQuery(c echo.Context) (*model.RequestStatus, error) {
	v := c.QueryParam("status")
	if v == "" {
		return nil, nil
	}
	status := model.RequestStatus(v)
	if !status.Valid() {
		return nil, badRequest("invalid status", "INVALID_QUERY")
	}
	return &status, nil
}

// CreatePurchase godoc
// @Summary Submit a purchase request
// @Tags chef
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreatePurchaseRequest true "Request"
// @Success 201 {object} model.PurchaseRequest
// @Failure 400 {object} errors.ErrorResponse
// @Router /chef/purchase-requests [post]
func (h *RequestHandler) CreatePurchase(c echo.Context) error {
	var req CreatePurchaseRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	created, err := h.purchaseService.Create(c.Request().Context(), currentUserID(c), req.ItemName, req.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

// MyPurchases godoc
// @Summary Current chef's purchase requests
// @Tags chef
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, approved or rejected"
// @Param skip query int false "Offset"
// @Param limit query int false "Page size"
// @Success 200 {array} model.PurchaseRequest
// @Router /chef/purchase-requests/my [get]
func (h *RequestHandler) MyPurchases(c echo.Context) error {
	page, err := pageFromQuery(c)
	if err != nil {
		return err
	}
	status, err := statusQuery(c)
	if err != nil {
		return err
	}
	list, err := h.purchaseService.ListByChef(c.Request().Context(), currentUserID(c), status, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// ListPurchases godoc
// @Summary All purchase requests
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, approved or rejected"
// @Param skip query int false "Offset"
// @Param limit query int false "Page size"
// @Success 200 {array} model.PurchaseRequest
// @Router /admin/purchase-requests [get]
func (h *RequestHandler) ListPurchases(c echo.Context) error {
	page, err := pageFromQuery(c)
	if err != nil {
		return err
	}
	status, err := statusQuery(c)
	if err != nil {
		return err
	}
	list, err := h.purchaseService.ListAll(c.Request().Context(), status, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// UpdatePurchase godoc
// @Summary Approve or reject a purchase request
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Param request body UpdateStatusRequest true "Decision"
// @Success 200 {object} model.PurchaseRequest
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/purchase-requests/{id} [patch]
func (h *RequestHandler) UpdatePurchase(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	updated, err := h.purchaseService.UpdateStatus(c.Request().Context(), id, req.Status, req.AdminComment)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// CreateTopup godoc
// @Summary Request a balance top-up
// @Tags balance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTopupRequest true "Amount"
// @Success 201 {object} model.BalanceTopupRequest
// @Failure 400 {object} errors.ErrorResponse
// @Router /me/balance/topup [post]
func (h *RequestHandler) CreateTopup(c echo.Context) error {
	var req CreateTopupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	created, err := h.topupService.Create(c.Request().Context(), currentUserID(c), req.Amount)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

// MyTopups godoc
// @Summary Current student's top-up requests
// @Tags balance
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, approved or rejected"
// @Param skip query int false "Offset"
// @Param limit query int false "Page size"
// @Success 200 {array} model.BalanceTopupRequest
// @Router /me/balance/requests [get]
func (h *RequestHandler) MyTopups(c echo.Context) error {
	page, err := pageFromQuery(c)
	if err != nil {
		return err
	}
	status, err := statusQuery(c)
	if err != nil {
		return err
	}
	list, err := h.topupService.ListByStudent(c.Request().Context(), currentUserID(c), status, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// ListTopups godoc
// @Summary All top-up requests
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, approved or rejected"
// @Param skip query int false "Offset"
// @Param limit query int false "Page size"
// @Success 200 {array} model.BalanceTopupRequest
// @Router /admin/topup-requests [get]
func (h *RequestHandler) ListTopups(c echo.Context) error {
	page, err := pageFromQuery(c)
	if err != nil {
		return err
	}
	status, err := statusQuery(c)
	if err != nil {
		return err
	}
	list, err := h.topupService.ListAll(c.Request().Context(), status, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// PendingTopups godoc
// @Summary Number of pending top-up requests
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} PendingCountResponse
// @Router /admin/topup-requests/pending-count [get]
func (h *RequestHandler) PendingTopups(c echo.Context) error {
	count, err := h.topupService.PendingCount(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, PendingCountResponse{Count: count})
}

// UpdateTopup godoc
// @Summary Approve or reject a top-up request
// @Description Approval credits the student's balance exactly once.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Param request body UpdateStatusRequest true "Decision"
// @Success 200 {object} model.BalanceTopupRequest
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/topup-requests/{id} [patch]
func (h *RequestHandler) UpdateTopup(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	updated, err := h.topupService.UpdateStatus(c.Request().Context(), id, req.Status, req.AdminComment)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

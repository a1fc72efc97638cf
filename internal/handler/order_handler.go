package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "canteen/internal/errors"
	"canteen/internal/model"
	"canteen/internal/service"
)

// OrderHandler handles order endpoints for students and chefs.
type OrderHandler struct {
	orderService service.OrderService
}

// NewOrderHandler creates an order handler.
func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// PlaceOrderRequest represents an order request.
type PlaceOrderRequest struct {
	DishID            uint              `json:"dish_id" validate:"required"`
	PaymentType       model.PaymentType `json:"payment_type" validate:"required,oneof=one-time subscription"`
	OrderDate         string            `json:"order_date" example:"2026-09-07"`
	SubscriptionWeeks *int              `json:"subscription_weeks" validate:"omitempty,min=1,max=52"`
}

// PlaceOrder godoc
// @Summary Buy a dish
// @Description Debits the balance and creates the order. A subscription creates one order per week.
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PlaceOrderRequest true "Order"
// @Success 201 {object} model.Order
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /orders [post]
func (h *OrderHandler) PlaceOrder(c echo.Context) error {
	var req PlaceOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	orderDate, err := parseDate(req.OrderDate)
	if err != nil {
		return badRequest("invalid order_date", "INVALID_ORDER")
	}

	order, err := h.orderService.PlaceOrder(c.Request().Context(), service.PlaceOrderInput{
		StudentID:         currentUserID(c),
		DishID:            req.DishID,
		PaymentType:       req.PaymentType,
		OrderDate:         orderDate,
		SubscriptionWeeks: req.SubscriptionWeeks,
	})
	if errors.Is(err, apperrors.ErrDishNotFound) {
		// the dish is part of the order payload, not the resource path
		return badRequest(err.Error(), "DISH_NOT_FOUND")
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, order)
}

// MyOrders godoc
// @Summary Current student's orders
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param skip query int false "Offset"
// @Param limit query int false "Page size"
// @Success 200 {array} model.Order
// @Router /orders/my [get]
func (h *OrderHandler) MyOrders(c echo.Context) error {
	page, err := pageFromQuery(c)
	if err != nil {
		return err
	}
	orders, err := h.orderService.ListStudentOrders(c.Request().Context(), currentUserID(c), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}

// MarkReceived godoc
// @Summary Confirm an order was collected
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Success 200 {object} model.Order
// @Failure 404 {object} errors.ErrorResponse
// @Router /orders/{id}/receive [post]
func (h *OrderHandler) MarkReceived(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	order, err := h.orderService.MarkReceived(c.Request().Context(), id, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// AllOrders godoc
// @Summary All orders
// @Tags chef
// @Produce json
// @Security BearerAuth
// @Param skip query int false "Offset"
// @Param limit query int false "Page size"
// @Success 200 {array} model.Order
// @Router /chef/orders [get]
func (h *OrderHandler) AllOrders(c echo.Context) error {
	page, err := pageFromQuery(c)
	if err != nil {
		return err
	}
	orders, err := h.orderService.ListAllOrders(c.Request().Context(), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}

// TodayOrders godoc
// @Summary Orders to serve today
// @Tags chef
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Order
// @Router /chef/orders/today [get]
func (h *OrderHandler) TodayOrders(c echo.Context) error {
	orders, err := h.orderService.ListTodayOrders(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}

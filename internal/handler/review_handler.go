package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"canteen/internal/service"
)

// ReviewHandler handles dish reviews.
type ReviewHandler struct {
	reviewService service.ReviewService
}

// NewReviewHandler creates a review handler.
func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// CreateReviewRequest is a student's rating of a dish. Rating bounds are
// enforced by the service so the error code stays INVALID_RATING.
type CreateReviewRequest struct {
	DishID  uint   `json:"dish_id" validate:"required"`
	Rating  int    `json:"rating" example:"5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// Create godoc
// @Summary Review a dish
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateReviewRequest true "Review"
// @Success 201 {object} model.Review
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /reviews [post]
func (h *ReviewHandler) Create(c echo.Context) error {
	var req CreateReviewRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	review, err := h.reviewService.Create(c.Request().Context(), currentUserID(c), req.DishID, req.Rating, req.Comment)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, review)
}

// ListByDish godoc
// @Summary Reviews of a dish
// @Tags reviews
// @Produce json
// @Param id path int true "Dish ID"
// @Param skip query int false "Offset"
// @Param limit query int false "Page size"
// @Success 200 {array} model.Review
// @Router /dishes/{id}/reviews [get]
func (h *ReviewHandler) ListByDish(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	page, err := pageFromQuery(c)
	if err != nil {
		return err
	}
	reviews, err := h.reviewService.ListByDish(c.Request().Context(), id, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, reviews)
}

// Mine godoc
// @Summary Current user's reviews
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Param skip query int false "Offset"
// @Param limit query int false "Page size"
// @Success 200 {array} model.Review
// @Router /me/reviews [get]
func (h *ReviewHandler) Mine(c echo.Context) error {
	page, err := pageFromQuery(c)
	if err != nil {
		return err
	}
	reviews, err := h.reviewService.ListByUser(c.Request().Context(), currentUserID(c), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, reviews)
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"canteen/internal/service"
)

// UserHandler serves the current user's profile and balance.
type UserHandler struct {
	userService   service.UserService
	ledgerService service.LedgerService
}

// NewUserHandler creates a user handler.
func NewUserHandler(userService service.UserService, ledgerService service.LedgerService) *UserHandler {
	return &UserHandler{userService: userService, ledgerService: ledgerService}
}

// UpdateProfileRequest changes dietary settings. Omitted fields are kept.
type UpdateProfileRequest struct {
	AllergenIDs *[]uint `json:"allergen_ids"`
	Preferences *string `json:"preferences"`
}

// UpdatePersonalInfoRequest changes name and class. Omitted fields are kept.
type UpdatePersonalInfoRequest struct {
	FullName  *string `json:"full_name" validate:"omitempty,min=1,max=255"`
	ClassName *string `json:"class_name" validate:"omitempty,max=50"`
}

// ChangePasswordRequest replaces the password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// BalanceResponse is the caller's current balance.
type BalanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

// Me godoc
// @Summary Current user profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /me [get]
func (h *UserHandler) Me(c echo.Context) error {
	user, err := h.userService.GetUser(c.Request().Context(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile godoc
// @Summary Update allergens and food preferences
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "Profile"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /me/profile [patch]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.userService.UpdateProfile(c.Request().Context(), currentUserID(c), service.ProfileUpdate{
		AllergenIDs: req.AllergenIDs,
		Preferences: req.Preferences,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdatePersonalInfo godoc
// @Summary Update name and class
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdatePersonalInfoRequest true "Personal info"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Router /me/personal-info [patch]
func (h *UserHandler) UpdatePersonalInfo(c echo.Context) error {
	var req UpdatePersonalInfoRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.userService.UpdatePersonalInfo(c.Request().Context(), currentUserID(c), service.PersonalInfoUpdate{
		FullName:  req.FullName,
		ClassName: req.ClassName,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// ChangePassword godoc
// @Summary Change password
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChangePasswordRequest true "Passwords"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /me/password [patch]
func (h *UserHandler) ChangePassword(c echo.Context) error {
	var req ChangePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.userService.ChangePassword(c.Request().Context(), currentUserID(c), req.OldPassword, req.NewPassword); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "password changed"})
}

// Balance godoc
// @Summary Current balance
// @Tags balance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} BalanceResponse
// @Router /me/balance [get]
func (h *UserHandler) Balance(c echo.Context) error {
	balance, err := h.ledgerService.GetBalance(c.Request().Context(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, BalanceResponse{Balance: balance})
}

// BalanceHistory godoc
// @Summary Balance movements, newest first
// @Tags balance
// @Produce json
// @Security BearerAuth
// @Param skip query int false "Offset"
// @Param limit query int false "Page size"
// @Success 200 {array} model.LedgerEntry
// @Router /me/balance/history [get]
func (h *UserHandler) BalanceHistory(c echo.Context) error {
	page, err := pageFromQuery(c)
	if err != nil {
		return err
	}
	entries, err := h.ledgerService.History(c.Request().Context(), currentUserID(c), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, entries)
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"canteen/internal/repository"
	"canteen/internal/service"
)

// DishHandler serves the menu, the dish catalog and allergens.
type DishHandler struct {
	dishService     service.DishService
	allergenService service.AllergenService
}

// NewDishHandler creates a dish handler.
func NewDishHandler(dishService service.DishService, allergenService service.AllergenService) *DishHandler {
	return &DishHandler{dishService: dishService, allergenService: allergenService}
}

// CreateDishRequest describes a new dish.
type CreateDishRequest struct {
	Name          string          `json:"name" validate:"required,max=255"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price" swaggertype:"string" example:"120.00"`
	IsBreakfast   *bool           `json:"is_breakfast"`
	StockQuantity int             `json:"stock_quantity"`
	AllergenIDs   []uint          `json:"allergen_ids"`
}

// UpdateDishRequest is a partial dish update.
type UpdateDishRequest struct {
	Name          *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Description   *string          `json:"description"`
	Price         *decimal.Decimal `json:"price" swaggertype:"string"`
	IsBreakfast   *bool            `json:"is_breakfast"`
	StockQuantity *int             `json:"stock_quantity"`
	AllergenIDs   *[]uint          `json:"allergen_ids"`
}

// CreateAllergenRequest describes a new allergen.
type CreateAllergenRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=255"`
}

// Menu godoc
// @Summary Menu for the current user
// @Description By default dishes containing any of the caller's allergens are hidden.
// @Tags menu
// @Produce json
// @Security BearerAuth
// @Param is_breakfast query bool false "true for breakfast, false for lunch"
// @Param exclude_allergens query bool false "Hide dishes with the caller's allergens (default true)"
// @Param skip query int false "Offset"
// @Param limit query int false "Page size"
// @Success 200 {array} model.Dish
// @Router /menu [get]
func (h *DishHandler) Menu(c echo.Context) error {
	page, err := pageFromQuery(c)
	if err != nil {
		return err
	}
	isBreakfast, err := boolQuery(c, "is_breakfast")
	if err != nil {
		return err
	}
	exclude, err := boolQuery(c, "exclude_allergens")
	if err != nil {
		return err
	}

	dishes, err := h.dishService.Menu(c.Request().Context(), service.MenuQuery{
		UserID:           currentUserID(c),
		IsBreakfast:      isBreakfast,
		ExcludeAllergens: exclude == nil || *exclude,
		Page:             page,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dishes)
}

// GetDish godoc
// @Summary Get a dish
// @Tags menu
// @Produce json
// @Security BearerAuth
// @Param id path int true "Dish ID"
// @Success 200 {object} model.Dish
// @Failure 404 {object} errors.ErrorResponse
// @Router /dishes/{id} [get]
func (h *DishHandler) GetDish(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	dish, err := h.dishService.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dish)
}

// StockList godoc
// @Summary All dishes with stock levels
// @Tags chef
// @Produce json
// @Security BearerAuth
// @Param skip query int false "Offset"
// @Param limit query int false "Page size"
// @Success 200 {array} model.Dish
// @Router /chef/dishes [get]
func (h *DishHandler) StockList(c echo.Context) error {
	page, err := pageFromQuery(c)
	if err != nil {
		return err
	}
	dishes, err := h.dishService.List(c.Request().Context(), repository.DishFilter{}, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dishes)
}

// CreateDish godoc
// @Summary Create a dish
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateDishRequest true "Dish"
// @Success 201 {object} model.Dish
// @Failure 400 {object} errors.ErrorResponse
// @Router /admin/dishes [post]
func (h *DishHandler) CreateDish(c echo.Context) error {
	var req CreateDishRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	isBreakfast := true
	if req.IsBreakfast != nil {
		isBreakfast = *req.IsBreakfast
	}
	dish, err := h.dishService.Create(c.Request().Context(), service.DishInput{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		IsBreakfast:   isBreakfast,
		StockQuantity: req.StockQuantity,
		AllergenIDs:   req.AllergenIDs,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dish)
}

// UpdateDish godoc
// @Summary Update a dish
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Dish ID"
// @Param request body UpdateDishRequest true "Fields to change"
// @Success 200 {object} model.Dish
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/dishes/{id} [patch]
func (h *DishHandler) UpdateDish(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateDishRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	dish, err := h.dishService.Update(c.Request().Context(), id, service.DishUpdate{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		IsBreakfast:   req.IsBreakfast,
		StockQuantity: req.StockQuantity,
		AllergenIDs:   req.AllergenIDs,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dish)
}

// DeleteDish godoc
// @Summary Delete a dish
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Dish ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/dishes/{id} [delete]
func (h *DishHandler) DeleteDish(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.dishService.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "dish deleted"})
}

// ListAllergens godoc
// @Summary List allergens
// @Tags allergens
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Allergen
// @Router /allergens [get]
func (h *DishHandler) ListAllergens(c echo.Context) error {
	page, err := pageFromQuery(c)
	if err != nil {
		return err
	}
	allergens, err := h.allergenService.List(c.Request().Context(), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, allergens)
}

// CreateAllergen godoc
// @Summary Create an allergen
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateAllergenRequest true "Allergen"
// @Success 201 {object} model.Allergen
// @Failure 400 {object} errors.ErrorResponse
// @Router /admin/allergens [post]
func (h *DishHandler) CreateAllergen(c echo.Context) error {
	var req CreateAllergenRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	allergen, err := h.allergenService.Create(c.Request().Context(), req.Name, req.Description)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, allergen)
}

package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	"canteen/internal/auth"
	"canteen/internal/handler"
	"canteen/internal/metrics"
	"canteen/internal/middleware"
	"canteen/internal/model"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth       *handler.AuthHandler
	User       *handler.UserHandler
	Dish       *handler.DishHandler
	Order      *handler.OrderHandler
	Request    *handler.RequestHandler
	Review     *handler.ReviewHandler
	Statistics *handler.StatisticsHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, jwtSecret []byte, tokens auth.TokenStoreInterface, h Handlers) {
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(echomw.RequestID())
	e.Use(metrics.Middleware())
	e.Use(middleware.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Public routes
	e.POST("/register", h.Auth.Register)
	e.POST("/login", h.Auth.Login)
	e.POST("/refresh", h.Auth.Refresh)
	e.POST("/logout", h.Auth.Logout)

	// Middleware is attached per route so unknown paths still answer 404.
	authed := []echo.MiddlewareFunc{middleware.JWT(jwtSecret), middleware.RejectRevoked(tokens)}
	studentOnly := withRoles(authed, model.RoleStudent)
	kitchen := withRoles(authed, model.RoleChef, model.RoleAdmin)
	adminOnly := withRoles(authed, model.RoleAdmin)

	// Any authenticated user
	e.GET("/me", h.User.Me, authed...)
	e.PATCH("/me/personal-info", h.User.UpdatePersonalInfo, authed...)
	e.PATCH("/me/password", h.User.ChangePassword, authed...)
	e.GET("/allergens", h.Dish.ListAllergens, authed...)
	e.GET("/menu", h.Dish.Menu, authed...)
	e.GET("/dishes/:id", h.Dish.GetDish, authed...)
	e.GET("/dishes/:id/reviews", h.Review.ListByDish, authed...)

	// Students
	e.PATCH("/me/profile", h.User.UpdateProfile, studentOnly...)
	e.GET("/me/balance", h.User.Balance, studentOnly...)
	e.GET("/me/balance/history", h.User.BalanceHistory, studentOnly...)
	e.POST("/me/balance/topup", h.Request.CreateTopup, studentOnly...)
	e.GET("/me/balance/requests", h.Request.MyTopups, studentOnly...)
	e.POST("/orders", h.Order.PlaceOrder, studentOnly...)
	e.GET("/orders/my", h.Order.MyOrders, studentOnly...)
	e.POST("/orders/:id/receive", h.Order.MarkReceived, studentOnly...)
	e.POST("/reviews", h.Review.Create, studentOnly...)
	e.GET("/me/reviews", h.Review.Mine, studentOnly...)

	// Kitchen
	chef := e.Group("/chef")
	chef.GET("/orders", h.Order.AllOrders, kitchen...)
	chef.GET("/orders/today", h.Order.TodayOrders, kitchen...)
	chef.GET("/dishes", h.Dish.StockList, kitchen...)
	chef.POST("/purchase-requests", h.Request.CreatePurchase, kitchen...)
	chef.GET("/purchase-requests/my", h.Request.MyPurchases, kitchen...)

	// Administration
	admin := e.Group("/admin")
	admin.GET("/purchase-requests", h.Request.ListPurchases, adminOnly...)
	admin.PATCH("/purchase-requests/:id", h.Request.UpdatePurchase, adminOnly...)
	admin.GET("/topup-requests", h.Request.ListTopups, adminOnly...)
	admin.GET("/topup-requests/pending-count", h.Request.PendingTopups, adminOnly...)
	admin.PATCH("/topup-requests/:id", h.Request.UpdateTopup, adminOnly...)
	admin.POST("/dishes", h.Dish.CreateDish, adminOnly...)
	admin.PATCH("/dishes/:id", h.Dish.UpdateDish, adminOnly...)
	admin.DELETE("/dishes/:id", h.Dish.DeleteDish, adminOnly...)
	admin.POST("/allergens", h.Dish.CreateAllergen, adminOnly...)
	admin.GET("/statistics/payments", h.Statistics.Payments, adminOnly...)
	admin.GET("/statistics/attendance", h.Statistics.Attendance, adminOnly...)
	admin.GET("/reports/payments", h.Statistics.Report, adminOnly...)
}

func withRoles(authed []echo.MiddlewareFunc, roles ...model.Role) []echo.MiddlewareFunc {
	chain := make([]echo.MiddlewareFunc, 0, len(authed)+1)
	chain = append(chain, authed...)
	return append(chain, middleware.RequireRole(roles...))
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

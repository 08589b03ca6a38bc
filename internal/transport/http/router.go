package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/empdir/emp-api/internal/handlers"
	"github.com/empdir/emp-api/internal/middleware/authmw"
	"github.com/empdir/emp-api/internal/models"
	"github.com/empdir/emp-api/internal/revocation"
	"github.com/empdir/emp-api/internal/tokens"
)

type Deps struct {
	Codec    *tokens.Codec
	Registry *revocation.Registry

	AuthHandler       *handlers.AuthHandler
	UserHandler       *handlers.UserHandler
	DepartmentHandler *handlers.DepartmentHandler
	EmployeeHandler   *handlers.EmployeeHandler
	SearchHandler     *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	gate := authmw.RequireAuth(d.Codec, d.Registry)
	adminOnly := authmw.RequireRole(models.RoleAdmin)

	v1 := e.Group("/api/v1")

	v1.POST("/auth/login", d.AuthHandler.Login)

	auth := v1.Group("/auth", gate)
	auth.POST("/logout", d.AuthHandler.Logout)
	auth.GET("/profile", d.AuthHandler.GetProfile)
	auth.PUT("/profile", d.AuthHandler.UpdateProfile)
	auth.PUT("/profile/change-password", d.AuthHandler.ChangePassword)

	users := v1.Group("/users", gate, adminOnly)
	users.GET("", d.UserHandler.List)
	users.GET("/:id", d.UserHandler.Get)
	users.POST("", d.UserHandler.Create)
	users.PUT("/:id", d.UserHandler.Update)
	users.PATCH("/:id/toggle-active", d.UserHandler.ToggleActive)

	departments := v1.Group("/departments", gate)
	departments.GET("", d.DepartmentHandler.List)
	departments.GET("/:id", d.DepartmentHandler.Get)
	departments.POST("", d.DepartmentHandler.Create, adminOnly)
	departments.PUT("/:id", d.DepartmentHandler.Update, adminOnly)
	departments.DELETE("/:id", d.DepartmentHandler.Delete, adminOnly)

	employees := v1.Group("/employees", gate)
	if d.SearchHandler != nil {
		employees.GET("/search", d.SearchHandler.Search)
	}
	employees.GET("", d.EmployeeHandler.List)
	employees.GET("/:id", d.EmployeeHandler.Get)
	employees.POST("", d.EmployeeHandler.Create, adminOnly)
	employees.PUT("/:id", d.EmployeeHandler.Update, adminOnly)
	employees.DELETE("/:id", d.EmployeeHandler.Delete, adminOnly)
}

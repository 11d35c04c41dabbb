package user

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/medbook/medbook/internal/platform/apperr"
	"github.com/medbook/medbook/internal/platform/auth"
	"github.com/medbook/medbook/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts /auth and /users on api. limit guards the
// credential endpoints.
func (h *Handler) RegisterRoutes(api *echo.Group, authn, limit echo.MiddlewareFunc) {
	a := api.Group("/auth")
	a.POST("/register", h.Register, limit)
	a.POST("/login", h.Login, limit)
	a.GET("/profile", h.Profile, authn)
	a.POST("/logout", h.Logout, authn)

	u := api.Group("/users", authn)
	u.GET("", h.List, auth.RequireRole(auth.RoleAdmin))
	u.GET("/:id", h.Get)
	u.PUT("/:id", h.Update)
	u.DELETE("/:id", h.Delete)
}

func (h *Handler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	id, err := h.svc.Register(c.Request().Context(), req)
	if err != nil {
		return apperr.HTTP(err, "Failed to register user")
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "User registered successfully",
		"userId":  id,
	})
}

func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	resp, err := h.svc.Login(c.Request().Context(), req)
	if err != nil {
		return apperr.HTTP(err, "Failed to log in")
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) Profile(c echo.Context) error {
	ctx := c.Request().Context()
	u, err := h.svc.Profile(ctx, auth.IdentityFromContext(ctx))
	if err != nil {
		return apperr.HTTP(err, "Failed to get profile")
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.svc.Logout(ctx, auth.ClaimsFromContext(ctx)); err != nil {
		return apperr.HTTP(err, "Failed to log out")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	items, err := h.svc.List(ctx, auth.IdentityFromContext(ctx), pagination.FromContext(c))
	if err != nil {
		return apperr.HTTP(err, "Failed to get users")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	u, err := h.svc.Get(ctx, auth.IdentityFromContext(ctx), id)
	if err != nil {
		return apperr.HTTP(err, "Failed to get user")
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := h.svc.Update(ctx, auth.IdentityFromContext(ctx), id, req); err != nil {
		return apperr.HTTP(err, "Failed to update user")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "User updated successfully"})
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := h.svc.Delete(ctx, auth.IdentityFromContext(ctx), id); err != nil {
		return apperr.HTTP(err, "Failed to delete user")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "User deleted successfully"})
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.HTTP(apperr.Validation("Invalid "+name), "")
	}
	return id, nil
}

func bindValid(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperr.HTTP(apperr.Wrap(apperr.KindValidation, "Invalid request body", err), "")
	}
	if err := c.Validate(req); err != nil {
		return apperr.HTTP(err, "Invalid request body")
	}
	return nil
}

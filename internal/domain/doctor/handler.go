package doctor

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

// RegisterRoutes mounts /doctors. Reads are public; writes need a token
// and are restricted to admins at the route and again in the service.
func (h *Handler) RegisterRoutes(api *echo.Group, authn echo.MiddlewareFunc) {
	g := api.Group("/doctors")
	g.GET("", h.List)
	g.GET("/specialization/:specialization", h.ListBySpecialization)
	g.GET("/:id", h.Get)

	adminOnly := auth.RequireRole(auth.RoleAdmin)
	g.POST("", h.Create, authn, adminOnly)
	g.PUT("/:id", h.Update, authn, adminOnly)
	g.DELETE("/:id", h.Delete, authn, adminOnly)
}

func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	id, err := h.svc.Create(ctx, auth.IdentityFromContext(ctx), req)
	if err != nil {
		return apperr.HTTP(err, "Failed to create doctor. Please try again.")
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":  "Doctor created successfully",
		"doctorId": id,
	})
}

func (h *Handler) List(c echo.Context) error {
	items, err := h.svc.List(c.Request().Context(), pagination.FromContext(c))
	if err != nil {
		return apperr.HTTP(err, "Failed to get doctors. Please try again.")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	d, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTP(err, "Failed to get doctor. Please try again.")
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) ListBySpecialization(c echo.Context) error {
	items, err := h.svc.ListBySpecialization(c.Request().Context(), c.Param("specialization"), pagination.FromContext(c))
	if err != nil {
		return apperr.HTTP(err, "Failed to get doctors. Please try again.")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req UpdateRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := h.svc.Update(ctx, auth.IdentityFromContext(ctx), id, req); err != nil {
		return apperr.HTTP(err, "Failed to update doctor. Please try again.")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Doctor updated successfully"})
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := h.svc.Delete(ctx, auth.IdentityFromContext(ctx), id); err != nil {
		return apperr.HTTP(err, "Failed to delete doctor. Please try again.")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Doctor deleted successfully"})
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.HTTP(apperr.Validation("Invalid doctor id"), "")
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

package appointment

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

// RegisterRoutes mounts /appointments; every route needs a token.
func (h *Handler) RegisterRoutes(api *echo.Group, authn echo.MiddlewareFunc) {
	g := api.Group("/appointments", authn)
	g.POST("", h.Book)
	g.GET("", h.List)
	g.GET("/my-appointments", h.ListMine)
	g.GET("/doctor/:doctorId", h.ListByDoctor)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.PATCH("/:id/status", h.UpdateStatus)
	g.DELETE("/:id", h.Delete)
}

func (h *Handler) Book(c echo.Context) error {
	var req BookRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	id, err := h.svc.Book(ctx, auth.IdentityFromContext(ctx), req)
	if err != nil {
		return apperr.HTTP(err, "Failed to create appointment")
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":       "Appointment created successfully",
		"appointmentId": id,
	})
}

func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	items, err := h.svc.List(ctx, auth.IdentityFromContext(ctx), pagination.FromContext(c))
	if err != nil {
		return apperr.HTTP(err, "Failed to get appointments")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListMine(c echo.Context) error {
	ctx := c.Request().Context()
	items, err := h.svc.ListMine(ctx, auth.IdentityFromContext(ctx), pagination.FromContext(c))
	if err != nil {
		return apperr.HTTP(err, "Failed to get appointments")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListByDoctor(c echo.Context) error {
	doctorID, err := pathID(c, "doctorId")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	items, err := h.svc.ListByDoctor(ctx, auth.IdentityFromContext(ctx), doctorID, pagination.FromContext(c))
	if err != nil {
		return apperr.HTTP(err, "Failed to get appointments")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	a, err := h.svc.Get(ctx, auth.IdentityFromContext(ctx), id)
	if err != nil {
		return apperr.HTTP(err, "Failed to get appointment")
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var upd Update
	if err := bindValid(c, &upd); err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := h.svc.Update(ctx, auth.IdentityFromContext(ctx), id, upd); err != nil {
		return apperr.HTTP(err, "Failed to update appointment")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Appointment updated successfully"})
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req StatusRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := h.svc.UpdateStatus(ctx, auth.IdentityFromContext(ctx), id, req.Status); err != nil {
		return apperr.HTTP(err, "Failed to update appointment status")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Appointment status updated successfully"})
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := h.svc.Delete(ctx, auth.IdentityFromContext(ctx), id); err != nil {
		return apperr.HTTP(err, "Failed to delete appointment")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Appointment deleted successfully"})
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

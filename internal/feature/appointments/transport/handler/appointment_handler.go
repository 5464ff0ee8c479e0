// Package handler provides the JSON and HTML handlers of the appointment feature.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"appt_calendar/internal/feature/appointments/domain"
	"appt_calendar/internal/feature/appointments/domain/entity"
	"appt_calendar/internal/feature/appointments/transport/http/dto"
	jwtmw "appt_calendar/internal/platform/jwt"
)

// AppointmentUsecase is the appointment store as seen by the HTTP layer.
type AppointmentUsecase interface {
	List(ctx context.Context, actor uint) ([]entity.Appointment, error)
	Get(ctx context.Context, actor, id uint) (*entity.Appointment, error)
	Create(ctx context.Context, actor uint, f entity.Fields) (*entity.Appointment, error)
	Update(ctx context.Context, actor, id uint, f entity.Fields) (*entity.Appointment, error)
	Delete(ctx context.Context, actor, id uint) error
}

// AppointmentHandler serves /api/appointments.
type AppointmentHandler struct {
	appointments AppointmentUsecase
}

func NewAppointmentHandler(appointments AppointmentUsecase) *AppointmentHandler {
	return &AppointmentHandler{appointments: appointments}
}

// parseID reads the :id path parameter. Anything but a positive integer is
// treated as an unknown appointment.
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func notFoundJSON(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrNotFound.Error()})
}

// writeError maps usecase errors to JSON responses.
func writeError(c *gin.Context, err error, op string) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, dto.ValidationRes{Error: "validation failed", Fields: verr.Map()})
	case errors.Is(err, domain.ErrNotFound):
		notFoundJSON(c)
	default:
		slog.Error(op+" failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// List returns the acting user's appointments in chronological order.
func (h *AppointmentHandler) List(c *gin.Context) {
	actor, _ := jwtmw.CurrentUserID(c)
	list, err := h.appointments.List(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err, "list appointments")
		return
	}
	c.JSON(http.StatusOK, dto.ToAppointmentList(list))
}

// Get returns one appointment, or 404 when it is missing or foreign.
func (h *AppointmentHandler) Get(c *gin.Context) {
	actor, _ := jwtmw.CurrentUserID(c)
	id, ok := parseID(c)
	if !ok {
		notFoundJSON(c)
		return
	}
	a, err := h.appointments.Get(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err, "get appointment")
		return
	}
	c.JSON(http.StatusOK, dto.ToAppointmentRes(a))
}

// Create stores a new appointment owned by the acting user.
func (h *AppointmentHandler) Create(c *gin.Context) {
	actor, _ := jwtmw.CurrentUserID(c)
	var req dto.AppointmentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	fields, err := req.ToFields()
	if err != nil {
		writeError(c, err, "create appointment")
		return
	}
	a, err := h.appointments.Create(c.Request.Context(), actor, fields)
	if err != nil {
		writeError(c, err, "create appointment")
		return
	}
	c.JSON(http.StatusCreated, dto.ToAppointmentRes(a))
}

// Update replaces every editable field of an appointment.
func (h *AppointmentHandler) Update(c *gin.Context) {
	actor, _ := jwtmw.CurrentUserID(c)
	id, ok := parseID(c)
	if !ok {
		notFoundJSON(c)
		return
	}
	var req dto.AppointmentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	fields, err := req.ToFields()
	if err != nil {
		// Do not reveal through a 422 that a foreign id exists.
		if _, gerr := h.appointments.Get(c.Request.Context(), actor, id); gerr != nil {
			writeError(c, gerr, "update appointment")
			return
		}
		writeError(c, err, "update appointment")
		return
	}
	a, err := h.appointments.Update(c.Request.Context(), actor, id, fields)
	if err != nil {
		writeError(c, err, "update appointment")
		return
	}
	c.JSON(http.StatusOK, dto.ToAppointmentRes(a))
}

// Delete removes an appointment and answers with a status word for the
// page script: OK, Not Found, or Forbidden when no user could be resolved.
// Mount it behind jwtmw.OptionalAuth.
func (h *AppointmentHandler) Delete(c *gin.Context) {
	actor, ok := jwtmw.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"status": "Forbidden"})
		return
	}
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"status": "Not Found"})
		return
	}
	err := h.appointments.Delete(c.Request.Context(), actor, id)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"status": "Not Found"})
	default:
		slog.Error("delete appointment failed", "error", err, "appointment_id", id, "user_id", actor)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "Error"})
	}
}

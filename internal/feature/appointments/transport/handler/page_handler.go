package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"appt_calendar/internal/feature/appointments/domain"
	"appt_calendar/internal/feature/appointments/transport/http/dto"
	jwtmw "appt_calendar/internal/platform/jwt"
)

// PageHandler serves the HTML appointment pages. Every route is expected to
// sit behind jwtmw.PageAuthRequired.
type PageHandler struct {
	appointments AppointmentUsecase
}

func NewPageHandler(appointments AppointmentUsecase) *PageHandler {
	return &PageHandler{appointments: appointments}
}

var fieldLabels = map[string]string{
	"title":    "Title",
	"start":    "Start",
	"end":      "End",
	"location": "Location",
}

var fieldLimits = map[string]int{
	"title":    domain.MaxTitleLength,
	"location": domain.MaxLocationLength,
}

// fieldMessages turns validation reasons into form messages keyed by field.
func fieldMessages(verr *domain.ValidationError) map[string]string {
	out := make(map[string]string)
	for field, reason := range verr.Map() {
		label := fieldLabels[field]
		switch reason {
		case domain.ReasonRequired:
			out[field] = label + " is required."
		case domain.ReasonTooLong:
			out[field] = fmt.Sprintf("%s must be at most %d characters.", label, fieldLimits[field])
		case domain.ReasonInvalid:
			out[field] = "Enter a date and time such as 2024-05-01 14:30."
		default:
			out[field] = label + " is not valid."
		}
	}
	return out
}

// page builds the template data shared by every page.
func page(c *gin.Context, title string) gin.H {
	user, _ := jwtmw.CurrentUser(c)
	return gin.H{"Title": title, "User": user}
}

func (h *PageHandler) notFound(c *gin.Context) {
	data := page(c, "Not found")
	data["Message"] = "That appointment does not exist."
	c.HTML(http.StatusNotFound, "error.html", data)
}

func (h *PageHandler) serverError(c *gin.Context, err error, op string) {
	slog.Error(op+" failed", "error", err, "remote_addr", c.ClientIP())
	data := page(c, "Error")
	data["Message"] = "Something went wrong."
	c.HTML(http.StatusInternalServerError, "error.html", data)
}

// List renders the acting user's appointments.
func (h *PageHandler) List(c *gin.Context) {
	actor, _ := jwtmw.CurrentUserID(c)
	list, err := h.appointments.List(c.Request.Context(), actor)
	if err != nil {
		h.serverError(c, err, "list appointments")
		return
	}
	data := page(c, "Appointments")
	data["Appointments"] = list
	c.HTML(http.StatusOK, "list.html", data)
}

// Detail renders one appointment or the 404 page.
func (h *PageHandler) Detail(c *gin.Context) {
	actor, _ := jwtmw.CurrentUserID(c)
	id, ok := parseID(c)
	if !ok {
		h.notFound(c)
		return
	}
	a, err := h.appointments.Get(c.Request.Context(), actor, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.notFound(c)
			return
		}
		h.serverError(c, err, "get appointment")
		return
	}
	data := page(c, a.Title)
	data["Appointment"] = a
	c.HTML(http.StatusOK, "detail.html", data)
}

func (h *PageHandler) renderForm(c *gin.Context, status int, heading, action, cancel string, form dto.AppointmentForm, errs map[string]string) {
	data := page(c, heading)
	data["Heading"] = heading
	data["Action"] = action
	data["Cancel"] = cancel
	data["Form"] = form
	data["Errors"] = errs
	c.HTML(status, "edit.html", data)
}

// NewForm renders an empty appointment form.
func (h *PageHandler) NewForm(c *gin.Context) {
	h.renderForm(c, http.StatusOK, "New appointment", "/appointments/new", "/", dto.AppointmentForm{}, nil)
}

// CreateSubmit stores the submitted appointment and shows it.
func (h *PageHandler) CreateSubmit(c *gin.Context) {
	actor, _ := jwtmw.CurrentUserID(c)
	var form dto.AppointmentForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusBadRequest, "error.html", gin.H{"Title": "Bad request", "Message": "The form could not be read."})
		return
	}

	fields, err := form.ToFields()
	if err == nil {
		a, cerr := h.appointments.Create(c.Request.Context(), actor, fields)
		if cerr == nil {
			c.Redirect(http.StatusSeeOther, detailPath(a.ID))
			return
		}
		err = cerr
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		h.renderForm(c, http.StatusUnprocessableEntity, "New appointment", "/appointments/new", "/", form, fieldMessages(verr))
		return
	}
	h.serverError(c, err, "create appointment")
}

// EditForm renders the form filled with the stored appointment.
func (h *PageHandler) EditForm(c *gin.Context) {
	actor, _ := jwtmw.CurrentUserID(c)
	id, ok := parseID(c)
	if !ok {
		h.notFound(c)
		return
	}
	a, err := h.appointments.Get(c.Request.Context(), actor, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.notFound(c)
			return
		}
		h.serverError(c, err, "get appointment")
		return
	}
	detail := detailPath(id)
	h.renderForm(c, http.StatusOK, "Edit appointment", detail+"/edit", detail, dto.FormFrom(a.Fields()), nil)
}

// EditSubmit replaces the appointment with the submitted form.
func (h *PageHandler) EditSubmit(c *gin.Context) {
	actor, _ := jwtmw.CurrentUserID(c)
	id, ok := parseID(c)
	if !ok {
		h.notFound(c)
		return
	}
	ctx := c.Request.Context()

	var form dto.AppointmentForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusBadRequest, "error.html", gin.H{"Title": "Bad request", "Message": "The form could not be read."})
		return
	}

	fields, err := form.ToFields()
	if err != nil {
		// Unparseable timestamps never reach Update, so guard here first.
		if _, gerr := h.appointments.Get(ctx, actor, id); gerr != nil {
			err = gerr
		}
	} else {
		_, err = h.appointments.Update(ctx, actor, id, fields)
	}

	detail := detailPath(id)
	var verr *domain.ValidationError
	switch {
	case err == nil:
		c.Redirect(http.StatusSeeOther, detail)
	case errors.As(err, &verr):
		h.renderForm(c, http.StatusUnprocessableEntity, "Edit appointment", detail+"/edit", detail, form, fieldMessages(verr))
	case errors.Is(err, domain.ErrNotFound):
		h.notFound(c)
	default:
		h.serverError(c, err, "update appointment")
	}
}

func detailPath(id uint) string {
	return "/appointments/" + strconv.FormatUint(uint64(id), 10)
}

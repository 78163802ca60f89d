package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"queue-manager-api/internal/models"
	"queue-manager-api/internal/services"
)

// AppointmentHandler handles appointment HTTP requests
type AppointmentHandler struct {
	appointmentService services.AppointmentService
}

// NewAppointmentHandler creates a new appointment handler
func NewAppointmentHandler(appointmentService services.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentService: appointmentService,
	}
}

// @Summary Book an appointment
// @Description Book a service slot, optionally with a practitioner
// @Tags appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param appointment body services.BookAppointmentRequest true "Booking data"
// @Success 201 {object} models.Appointment
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /appointments [post]
func (h *AppointmentHandler) BookAppointment(c *gin.Context) {
	var req services.BookAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	appointment, err := h.appointmentService.BookAppointment(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, appointment)
}

// @Summary List appointments
// @Tags appointments
// @Produce json
// @Param status query string false "Filter by status" Enums(scheduled, confirmed, completed, cancelled)
// @Param staff_id query string false "Filter by staff member"
// @Param service_id query string false "Filter by service"
// @Param from query string false "Start of range (RFC3339)"
// @Param to query string false "End of range (RFC3339)"
// @Param limit query int false "Limit number of results" default(100)
// @Param offset query int false "Offset for pagination" default(0)
// @Success 200 {object} services.ListResult[models.Appointment]
// @Failure 400 {object} middleware.ErrorResponse
// @Router /appointments [get]
func (h *AppointmentHandler) ListAppointments(c *gin.Context) {
	result, err := h.appointmentService.ListAppointments(c.Request.Context(), &services.AppointmentListFilters{
		Status:      models.AppointmentStatus(c.Query("status")),
		StaffID:     c.Query("staff_id"),
		ServiceID:   c.Query("service_id"),
		From:        queryTime(c, "from"),
		To:          queryTime(c, "to"),
		ListFilters: listFilters(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary Get an appointment
// @Tags appointments
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} models.Appointment
// @Failure 404 {object} ErrorResponse
// @Router /appointments/{id} [get]
func (h *AppointmentHandler) GetAppointment(c *gin.Context) {
	appointment, err := h.appointmentService.GetAppointment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, appointment)
}

// @Summary Update appointment status
// @Description Move an appointment along scheduled, confirmed, completed or cancelled
// @Tags appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Appointment ID"
// @Param status body services.UpdateAppointmentStatusRequest true "New status"
// @Success 200 {object} models.Appointment
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /appointments/{id}/status [patch]
func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	var req services.UpdateAppointmentStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	appointment, err := h.appointmentService.UpdateStatus(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, appointment)
}

// @Summary Cancel an appointment
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Appointment ID"
// @Success 200 {object} models.Appointment
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /appointments/{id} [delete]
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	appointment, err := h.appointmentService.CancelAppointment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, appointment)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"queue-manager-api/internal/models"
	"queue-manager-api/internal/services"
)

// StaffHandler handles staff HTTP requests
type StaffHandler struct {
	staffService services.StaffService
}

// NewStaffHandler creates a new staff handler
func NewStaffHandler(staffService services.StaffService) *StaffHandler {
	return &StaffHandler{
		staffService: staffService,
	}
}

// @Summary Create a staff member
// @Tags staff
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param staff body services.CreateStaffRequest true "Staff data"
// @Success 201 {object} models.Staff
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /staff [post]
func (h *StaffHandler) CreateStaff(c *gin.Context) {
	var req services.CreateStaffRequest
	if !bindJSON(c, &req) {
		return
	}

	staff, err := h.staffService.CreateStaff(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, staff)
}

// @Summary List staff
// @Tags staff
// @Produce json
// @Param role query string false "Filter by role" Enums(practitioner, reception, manager)
// @Param active query bool false "Only active staff"
// @Param limit query int false "Limit number of results" default(100)
// @Param offset query int false "Offset for pagination" default(0)
// @Success 200 {object} services.ListResult[models.Staff]
// @Router /staff [get]
func (h *StaffHandler) ListStaff(c *gin.Context) {
	result, err := h.staffService.ListStaff(c.Request.Context(), &services.StaffListFilters{
		Role:        models.StaffRole(c.Query("role")),
		ActiveOnly:  queryBool(c, "active"),
		ListFilters: listFilters(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary Get a staff member
// @Tags staff
// @Produce json
// @Param id path string true "Staff ID"
// @Success 200 {object} models.Staff
// @Failure 404 {object} ErrorResponse
// @Router /staff/{id} [get]
func (h *StaffHandler) GetStaff(c *gin.Context) {
	staff, err := h.staffService.GetStaff(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, staff)
}

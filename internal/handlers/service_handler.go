package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"queue-manager-api/internal/services"
)

// ServiceHandler handles service catalog HTTP requests
type ServiceHandler struct {
	catalogService services.CatalogService
}

// NewServiceHandler creates a new service catalog handler
func NewServiceHandler(catalogService services.CatalogService) *ServiceHandler {
	return &ServiceHandler{
		catalogService: catalogService,
	}
}

// @Summary Create a service
// @Description Add a bookable service to the catalog
// @Tags services
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param service body services.CreateServiceRequest true "Service data"
// @Success 201 {object} models.Service
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} middleware.InternalErrorResponse
// @Router /services [post]
func (h *ServiceHandler) CreateService(c *gin.Context) {
	var req services.CreateServiceRequest
	if !bindJSON(c, &req) {
		return
	}

	service, err := h.catalogService.CreateService(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, service)
}

// @Summary List services
// @Description List catalog services ordered by name
// @Tags services
// @Produce json
// @Param active query bool false "Only active services"
// @Param limit query int false "Limit number of results" default(100)
// @Param offset query int false "Offset for pagination" default(0)
// @Success 200 {object} services.ListResult[models.Service]
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.InternalErrorResponse
// @Router /services [get]
func (h *ServiceHandler) ListServices(c *gin.Context) {
	result, err := h.catalogService.ListServices(c.Request.Context(), &services.ServiceListFilters{
		ActiveOnly:  queryBool(c, "active"),
		ListFilters: listFilters(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary Get a service
// @Tags services
// @Produce json
// @Param id path string true "Service ID"
// @Success 200 {object} models.Service
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /services/{id} [get]
func (h *ServiceHandler) GetService(c *gin.Context) {
	service, err := h.catalogService.GetService(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, service)
}

package handler

import (
	"errors"
	"net/http"

	"clinic-records-backend/internal/models"
	"clinic-records-backend/internal/repository"
	"clinic-records-backend/internal/service"
	"clinic-records-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type ServiceHandler struct {
	billingService *service.BillingService
}

func NewServiceHandler(billingService *service.BillingService) *ServiceHandler {
	return &ServiceHandler{
		billingService: billingService,
	}
}

type CreateServiceRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"min=0"`
	Category    string  `json:"category" binding:"required,max=20"`
	IsActive    *bool   `json:"is_active"`
}

// List returns active services ordered by name
func (h *ServiceHandler) List(c *gin.Context) {
	services, err := h.billingService.ListServices()
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to fetch services")
		return
	}
	utils.SuccessResponse(c, services)
}

// Create adds a billable service
func (h *ServiceHandler) Create(c *gin.Context) {
	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	svc := &models.Service{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		IsActive:    true,
	}
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
	}

	if err := h.billingService.CreateService(svc); err != nil {
		if errors.Is(err, service.ErrInvalidCategory) {
			utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to create service")
		return
	}

	utils.CreatedResponse(c, svc)
}

// Get returns one service
func (h *ServiceHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	svc, err := h.billingService.GetService(id)
	if err != nil {
		if errors.Is(err, service.ErrServiceNotFound) {
			utils.ErrorResponse(c, http.StatusNotFound, "Service not found")
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to fetch service")
		return
	}
	utils.SuccessResponse(c, svc)
}

// Update applies a partial update to a service
func (h *ServiceHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req service.UpdateServiceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	svc, err := h.billingService.UpdateService(id, req)
	if err != nil {
		if errors.Is(err, service.ErrServiceNotFound) {
			utils.ErrorResponse(c, http.StatusNotFound, "Service not found")
			return
		}
		if errors.Is(err, service.ErrInvalidCategory) {
			utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to update service")
		return
	}
	utils.SuccessResponse(c, svc)
}

// Delete removes a service unless bills still reference it
func (h *ServiceHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	err := h.billingService.DeleteService(id)
	if err != nil {
		if errors.Is(err, service.ErrServiceNotFound) {
			utils.ErrorResponse(c, http.StatusNotFound, "Service not found")
			return
		}
		if errors.Is(err, repository.ErrServiceReferenced) {
			utils.ErrorResponse(c, http.StatusConflict, "Service is referenced by existing bills")
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to delete service")
		return
	}
	utils.MessageResponse(c, "Service deleted successfully")
}

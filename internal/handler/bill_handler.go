package handler

import (
	"errors"
	"net/http"
	"time"

	"clinic-records-backend/internal/service"
	"clinic-records-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type BillHandler struct {
	billingService *service.BillingService
}

func NewBillHandler(billingService *service.BillingService) *BillHandler {
	return &BillHandler{
		billingService: billingService,
	}
}

// Create computes and persists a bill from the requested items
func (h *BillHandler) Create(c *gin.Context) {
	var req service.CreateBillInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	bill, err := h.billingService.CreateBill(req, c.GetUint("userID"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPatientNotFound):
			utils.ErrorResponse(c, http.StatusNotFound, "Patient not found")
		case errors.Is(err, service.ErrServiceNotFound):
			utils.ErrorResponse(c, http.StatusNotFound, err.Error())
		default:
			utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to create bill")
		}
		return
	}

	utils.CreatedResponse(c, bill)
}

// List returns bills newest first; supports ?patientId= and ?date=YYYY-MM-DD
func (h *BillHandler) List(c *gin.Context) {
	var patientID *uint
	if raw := c.Query("patientId"); raw != "" {
		id, ok := parseQueryID(c, raw, "patientId")
		if !ok {
			return
		}
		patientID = &id
	}

	var day *time.Time
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
			return
		}
		day = &parsed
	}

	bills, err := h.billingService.ListBills(patientID, day)
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to fetch bills")
		return
	}
	utils.SuccessResponse(c, bills)
}

// Get returns one bill with its items
func (h *BillHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	bill, err := h.billingService.GetBill(id)
	if err != nil {
		if errors.Is(err, service.ErrBillNotFound) {
			utils.ErrorResponse(c, http.StatusNotFound, "Bill not found")
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to fetch bill")
		return
	}
	utils.SuccessResponse(c, bill)
}

// Update applies a partial update (status, notes)
func (h *BillHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req service.UpdateBillInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	bill, err := h.billingService.UpdateBill(id, req)
	if err != nil {
		if errors.Is(err, service.ErrBillNotFound) {
			utils.ErrorResponse(c, http.StatusNotFound, "Bill not found")
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to update bill")
		return
	}
	utils.SuccessResponse(c, bill)
}

// Download returns the bill representation. PDF generation is a stub; the
// frontend renders the JSON itself.
func (h *BillHandler) Download(c *gin.Context) {
	h.Get(c)
}

// DailyReport summarizes the bills of the requested day
func (h *BillHandler) DailyReport(c *gin.Context) {
	report, err := h.billingService.GetDailyReport(c.Query("date"))
	if err != nil {
		if errors.Is(err, service.ErrDateRequired) {
			utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to build daily report")
		return
	}
	utils.SuccessResponse(c, report)
}

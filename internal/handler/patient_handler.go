package handler

import (
	"errors"
	"net/http"
	"strconv"

	"clinic-records-backend/internal/models"
	"clinic-records-backend/internal/service"
	"clinic-records-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type PatientHandler struct {
	patientService *service.PatientService
}

func NewPatientHandler(patientService *service.PatientService) *PatientHandler {
	return &PatientHandler{
		patientService: patientService,
	}
}

type CreatePatientRequest struct {
	Name           string  `json:"name" binding:"required,max=100"`
	Age            int     `json:"age" binding:"min=0"`
	Gender         string  `json:"gender" binding:"required,oneof=Male Female Other"`
	Phone          string  `json:"phone" binding:"required,max=15"`
	Email          *string `json:"email" binding:"omitempty,email"`
	Address        string  `json:"address" binding:"required"`
	MedicalHistory *string `json:"medical_history"`
}

// parseIDParam reads a numeric path parameter.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// parseQueryID reads a numeric query parameter value.
func parseQueryID(c *gin.Context, raw, name string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// patientError maps service errors onto status codes.
func patientError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPatientNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, "Patient not found")
	case errors.Is(err, service.ErrMedicalRecordNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, "Medical record not found")
	case errors.Is(err, service.ErrMedicalReportNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, "Medical report not found")
	default:
		utils.ErrorResponse(c, http.StatusInternalServerError, err.Error())
	}
}

// List returns all patients, newest first
func (h *PatientHandler) List(c *gin.Context) {
	patients, err := h.patientService.ListPatients()
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to fetch patients")
		return
	}
	utils.SuccessResponse(c, patients)
}

// Create registers a new patient
func (h *PatientHandler) Create(c *gin.Context) {
	var req CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	patient := &models.Patient{
		Name:           req.Name,
		Age:            req.Age,
		Gender:         req.Gender,
		Phone:          req.Phone,
		Email:          req.Email,
		Address:        req.Address,
		MedicalHistory: req.MedicalHistory,
	}
	if err := h.patientService.CreatePatient(patient); err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to create patient")
		return
	}

	utils.CreatedResponse(c, patient)
}

// Get returns one patient
func (h *PatientHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	patient, err := h.patientService.GetPatient(id)
	if err != nil {
		patientError(c, err)
		return
	}
	utils.SuccessResponse(c, patient)
}

// Update applies a partial update to a patient
func (h *PatientHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req service.UpdatePatientInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	patient, err := h.patientService.UpdatePatient(id, req)
	if err != nil {
		patientError(c, err)
		return
	}
	utils.SuccessResponse(c, patient)
}

// Delete removes a patient and everything owned by it
func (h *PatientHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.patientService.DeletePatient(id); err != nil {
		patientError(c, err)
		return
	}
	utils.MessageResponse(c, "Patient deleted successfully")
}

// Details returns the full patient bundle
func (h *PatientHandler) Details(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	bundle, err := h.patientService.GetPatientBundle(id)
	if err != nil {
		patientError(c, err)
		return
	}
	utils.SuccessResponse(c, bundle)
}

// BillingHistory returns the patient's bills, newest first
func (h *PatientHandler) BillingHistory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	bills, err := h.patientService.BillingHistory(id)
	if err != nil {
		patientError(c, err)
		return
	}
	utils.SuccessResponse(c, bills)
}

// AddMedicalRecord creates a clinical note and returns the full bundle
func (h *PatientHandler) AddMedicalRecord(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req service.MedicalRecordInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Missing required fields")
		return
	}

	bundle, err := h.patientService.AddMedicalRecord(id, req)
	if err != nil {
		patientError(c, err)
		return
	}
	utils.SuccessResponse(c, bundle)
}

// DeleteMedicalRecord removes a clinical note and returns the full bundle
func (h *PatientHandler) DeleteMedicalRecord(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	recordID, ok := parseIDParam(c, "record_id")
	if !ok {
		return
	}

	bundle, err := h.patientService.DeleteMedicalRecord(id, recordID)
	if err != nil {
		patientError(c, err)
		return
	}
	utils.SuccessResponse(c, bundle)
}

// AddMedicalReport uploads a report file and returns the full bundle
func (h *PatientHandler) AddMedicalReport(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "No file provided")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	uploadedBy := c.PostForm("uploadedBy")
	if uploadedBy == "" {
		uploadedBy = c.GetString("username")
	}

	bundle, err := h.patientService.AddMedicalReport(id, service.MedicalReportInput{
		FileName:   fileHeader.Filename,
		File:       file,
		Title:      c.PostForm("title"),
		Type:       c.PostForm("type"),
		UploadedBy: uploadedBy,
	})
	if err != nil {
		patientError(c, err)
		return
	}
	utils.SuccessResponse(c, bundle)
}

// DeleteMedicalReport removes a report and its file, returns the full bundle
func (h *PatientHandler) DeleteMedicalReport(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	reportID, ok := parseIDParam(c, "report_id")
	if !ok {
		return
	}

	bundle, err := h.patientService.DeleteMedicalReport(id, reportID)
	if err != nil {
		patientError(c, err)
		return
	}
	utils.SuccessResponse(c, bundle)
}

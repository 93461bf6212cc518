package service

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"clinic-records-backend/internal/models"
	"clinic-records-backend/internal/repository"
	"clinic-records-backend/internal/storage"

	"github.com/rs/zerolog"
)

var (
	// ErrMedicalRecordNotFound is returned when a record id does not exist
	// under the given patient.
	ErrMedicalRecordNotFound = errors.New("medical record not found")
	// ErrMedicalReportNotFound is returned when a report id does not exist
	// under the given patient.
	ErrMedicalReportNotFound = errors.New("medical report not found")
)

type PatientService struct {
	patientRepo *repository.PatientRepository
	billRepo    *repository.BillRepository
	store       storage.FileStore
	baseURL     string
	logger      zerolog.Logger
}

func NewPatientService(
	patientRepo *repository.PatientRepository,
	billRepo *repository.BillRepository,
	store storage.FileStore,
	baseURL string,
	logger zerolog.Logger,
) *PatientService {
	return &PatientService{
		patientRepo: patientRepo,
		billRepo:    billRepo,
		store:       store,
		baseURL:     baseURL,
		logger:      logger,
	}
}

// PatientBundle is the full snapshot returned after every mutation of a
// patient's sub-resources, so clients always see consistent state instead
// of a delta.
type PatientBundle struct {
	Patient        *models.Patient        `json:"patient"`
	MedicalRecords []models.MedicalRecord `json:"medicalRecords"`
	BillingHistory []models.Bill          `json:"billingHistory"`
	MedicalReports []models.MedicalReport `json:"medicalReports"`
}

// CreatePatient creates a new patient
func (s *PatientService) CreatePatient(patient *models.Patient) error {
	if err := s.patientRepo.CreatePatient(patient); err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	s.logger.Info().Uint("patient_id", patient.ID).Msg("Patient created")
	return nil
}

// ListPatients returns all patients, newest first
func (s *PatientService) ListPatients() ([]models.Patient, error) {
	return s.patientRepo.ListPatients()
}

// GetPatient returns one patient
func (s *PatientService) GetPatient(id uint) (*models.Patient, error) {
	patient, err := s.patientRepo.FindPatientByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	return patient, nil
}

// UpdatePatientInput carries the mutable patient fields.
type UpdatePatientInput struct {
	Name           *string `json:"name"`
	Age            *int    `json:"age" binding:"omitempty,min=0"`
	Gender         *string `json:"gender" binding:"omitempty,oneof=Male Female Other"`
	Phone          *string `json:"phone"`
	Email          *string `json:"email"`
	Address        *string `json:"address"`
	MedicalHistory *string `json:"medical_history"`
}

// UpdatePatient applies a partial update. Saving bumps last_visit.
func (s *PatientService) UpdatePatient(id uint, input UpdatePatientInput) (*models.Patient, error) {
	patient, err := s.GetPatient(id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		patient.Name = *input.Name
	}
	if input.Age != nil {
		patient.Age = *input.Age
	}
	if input.Gender != nil {
		patient.Gender = *input.Gender
	}
	if input.Phone != nil {
		patient.Phone = *input.Phone
	}
	if input.Email != nil {
		patient.Email = input.Email
	}
	if input.Address != nil {
		patient.Address = *input.Address
	}
	if input.MedicalHistory != nil {
		patient.MedicalHistory = input.MedicalHistory
	}

	if err := s.patientRepo.SavePatient(patient); err != nil {
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}
	return patient, nil
}

// DeletePatient removes a patient with all dependent rows, then removes the
// stored files of its reports. File removal is best effort: the rows are
// already gone, a leftover file is picked up by the startup sweep.
func (s *PatientService) DeletePatient(id uint) error {
	fileNames, err := s.patientRepo.DeletePatient(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPatientNotFound
		}
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	for _, name := range fileNames {
		if err := s.store.Remove(name); err != nil && !errors.Is(err, storage.ErrFileNotFound) {
			s.logger.Warn().Err(err).Str("file", name).Msg("Failed to remove report file")
		}
	}

	s.logger.Info().Uint("patient_id", id).Msg("Patient deleted")
	return nil
}

// GetPatientBundle returns the patient with all medical records, bills and
// reports, each newest first.
func (s *PatientService) GetPatientBundle(id uint) (*PatientBundle, error) {
	patient, err := s.GetPatient(id)
	if err != nil {
		return nil, err
	}

	records, err := s.patientRepo.ListMedicalRecords(id)
	if err != nil {
		return nil, err
	}

	bills, err := s.billRepo.ListBills(&id, nil)
	if err != nil {
		return nil, err
	}
	decorateBills(bills)

	reports, err := s.patientRepo.ListMedicalReports(id)
	if err != nil {
		return nil, err
	}

	return &PatientBundle{
		Patient:        patient,
		MedicalRecords: records,
		BillingHistory: bills,
		MedicalReports: reports,
	}, nil
}

// BillingHistory returns a patient's bills, newest first
func (s *PatientService) BillingHistory(id uint) ([]models.Bill, error) {
	if _, err := s.GetPatient(id); err != nil {
		return nil, err
	}
	bills, err := s.billRepo.ListBills(&id, nil)
	if err != nil {
		return nil, err
	}
	decorateBills(bills)
	return bills, nil
}

// MedicalRecordInput carries a new clinical encounter note.
type MedicalRecordInput struct {
	Diagnosis string  `json:"diagnosis" binding:"required"`
	Treatment string  `json:"treatment" binding:"required"`
	Doctor    string  `json:"doctor" binding:"required"`
	Notes     *string `json:"notes"`
}

// AddMedicalRecord creates a record and returns the full bundle
func (s *PatientService) AddMedicalRecord(patientID uint, input MedicalRecordInput) (*PatientBundle, error) {
	patient, err := s.GetPatient(patientID)
	if err != nil {
		return nil, err
	}

	record := &models.MedicalRecord{
		PatientID: patient.ID,
		Diagnosis: input.Diagnosis,
		Treatment: input.Treatment,
		Doctor:    input.Doctor,
		Notes:     input.Notes,
	}
	if err := s.patientRepo.CreateMedicalRecord(record); err != nil {
		return nil, fmt.Errorf("failed to create medical record: %w", err)
	}

	return s.GetPatientBundle(patientID)
}

// DeleteMedicalRecord removes a record owned by the patient and returns the
// full bundle.
func (s *PatientService) DeleteMedicalRecord(patientID, recordID uint) (*PatientBundle, error) {
	if _, err := s.GetPatient(patientID); err != nil {
		return nil, err
	}

	if err := s.patientRepo.DeleteMedicalRecord(patientID, recordID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMedicalRecordNotFound
		}
		return nil, fmt.Errorf("failed to delete medical record: %w", err)
	}

	return s.GetPatientBundle(patientID)
}

// MedicalReportInput carries a new uploaded report. Title, Type and
// UploadedBy are optional; defaults are derived from the file and the
// authenticated user.
type MedicalReportInput struct {
	FileName   string
	File       io.Reader
	Title      string
	Type       string
	UploadedBy string
}

// inferReportType classifies a file as image or document by extension.
func inferReportType(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".jpg", ".jpeg", ".png", ".gif":
		return "image"
	default:
		return "document"
	}
}

// AddMedicalReport stores the file, creates the report row and returns the
// full bundle. If the row cannot be created the stored file is removed again.
func (s *PatientService) AddMedicalReport(patientID uint, input MedicalReportInput) (*PatientBundle, error) {
	patient, err := s.GetPatient(patientID)
	if err != nil {
		return nil, err
	}

	storedName, err := s.store.Save(input.FileName, input.File)
	if err != nil {
		return nil, fmt.Errorf("failed to store report file: %w", err)
	}

	title := input.Title
	if title == "" {
		title = input.FileName
	}
	reportType := input.Type
	if reportType == "" {
		reportType = inferReportType(input.FileName)
	}

	report := &models.MedicalReport{
		PatientID:  patient.ID,
		Title:      title,
		Type:       reportType,
		FileName:   storedName,
		FileURL:    s.baseURL + s.store.URL(storedName),
		UploadedBy: input.UploadedBy,
	}
	if err := s.patientRepo.CreateMedicalReport(report); err != nil {
		if removeErr := s.store.Remove(storedName); removeErr != nil {
			s.logger.Warn().Err(removeErr).Str("file", storedName).Msg("Failed to remove report file")
		}
		return nil, fmt.Errorf("failed to create medical report: %w", err)
	}

	return s.GetPatientBundle(patientID)
}

// DeleteMedicalReport removes the report row, then its stored file, and
// returns the full bundle. The row delete commits first; if the file removal
// then fails the orphan is logged and left for the startup sweep.
func (s *PatientService) DeleteMedicalReport(patientID, reportID uint) (*PatientBundle, error) {
	if _, err := s.GetPatient(patientID); err != nil {
		return nil, err
	}

	report, err := s.patientRepo.FindMedicalReport(patientID, reportID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMedicalReportNotFound
		}
		return nil, err
	}

	if err := s.patientRepo.DeleteMedicalReport(report.ID); err != nil {
		return nil, fmt.Errorf("failed to delete medical report: %w", err)
	}

	if report.FileName != "" {
		if err := s.store.Remove(report.FileName); err != nil && !errors.Is(err, storage.ErrFileNotFound) {
			s.logger.Warn().Err(err).Str("file", report.FileName).Msg("Failed to remove report file")
		}
	}

	return s.GetPatientBundle(patientID)
}

// SweepOrphanedFiles deletes stored files no report row references. Run at
// startup to reconcile crashes between a row delete and its file delete.
func (s *PatientService) SweepOrphanedFiles() error {
	referenced, err := s.patientRepo.ReferencedFileNames()
	if err != nil {
		return fmt.Errorf("failed to list referenced files: %w", err)
	}
	if _, err := s.store.Sweep(referenced); err != nil {
		return fmt.Errorf("failed to sweep orphaned files: %w", err)
	}
	return nil
}

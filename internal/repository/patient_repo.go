package repository

import (
	"errors"

	"clinic-records-backend/internal/models"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("record not found")

type PatientRepository struct {
	db *gorm.DB
}

func NewPatientRepo(db *gorm.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

// CreatePatient creates a new patient
func (r *PatientRepository) CreatePatient(patient *models.Patient) error {
	return r.db.Create(patient).Error
}

// ListPatients returns all patients, newest first
func (r *PatientRepository) ListPatients() ([]models.Patient, error) {
	var patients []models.Patient
	err := r.db.Order("created_at DESC").Find(&patients).Error
	return patients, err
}

// FindPatientByID finds a patient by id
func (r *PatientRepository) FindPatientByID(id uint) (*models.Patient, error) {
	var patient models.Patient
	err := r.db.First(&patient, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &patient, nil
}

// SavePatient persists changes to a patient. Saving bumps last_visit via the
// model's autoUpdateTime tag.
func (r *PatientRepository) SavePatient(patient *models.Patient) error {
	return r.db.Save(patient).Error
}

// DeletePatient removes a patient and all dependent rows in one transaction:
// bill items under the patient's bills, the bills, medical records and
// medical reports. Referenced services and users are untouched. It returns
// the stored file names of the patient's reports so the caller can clean up
// the file store after the commit.
func (r *PatientRepository) DeletePatient(id uint) ([]string, error) {
	var fileNames []string

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var patient models.Patient
		if err := tx.First(&patient, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := tx.Model(&models.MedicalReport{}).
			Where("patient_id = ? AND file_name <> ''", id).
			Pluck("file_name", &fileNames).Error; err != nil {
			return err
		}

		if err := tx.Where("bill_id IN (?)",
			tx.Model(&models.Bill{}).Select("id").Where("patient_id = ?", id),
		).Delete(&models.BillItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("patient_id = ?", id).Delete(&models.Bill{}).Error; err != nil {
			return err
		}
		if err := tx.Where("patient_id = ?", id).Delete(&models.MedicalRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("patient_id = ?", id).Delete(&models.MedicalReport{}).Error; err != nil {
			return err
		}

		return tx.Delete(&patient).Error
	})

	if err != nil {
		return nil, err
	}
	return fileNames, nil
}

// CountPatients returns the total number of patients
func (r *PatientRepository) CountPatients() (int64, error) {
	var count int64
	err := r.db.Model(&models.Patient{}).Count(&count).Error
	return count, err
}

// RecentPatients returns the latest patients by last visit
func (r *PatientRepository) RecentPatients(limit int) ([]models.Patient, error) {
	var patients []models.Patient
	err := r.db.Order("last_visit DESC").Limit(limit).Find(&patients).Error
	return patients, err
}

// CreateMedicalRecord creates a medical record for a patient
func (r *PatientRepository) CreateMedicalRecord(record *models.MedicalRecord) error {
	return r.db.Create(record).Error
}

// ListMedicalRecords returns a patient's medical records, newest first
func (r *PatientRepository) ListMedicalRecords(patientID uint) ([]models.MedicalRecord, error) {
	var records []models.MedicalRecord
	err := r.db.Where("patient_id = ?", patientID).Order("date DESC").Find(&records).Error
	return records, err
}

// DeleteMedicalRecord removes a record belonging to the given patient.
// Returns ErrNotFound when no such record exists under that patient.
func (r *PatientRepository) DeleteMedicalRecord(patientID, recordID uint) error {
	result := r.db.Where("id = ? AND patient_id = ?", recordID, patientID).
		Delete(&models.MedicalRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateMedicalReport creates a medical report row for a patient
func (r *PatientRepository) CreateMedicalReport(report *models.MedicalReport) error {
	return r.db.Create(report).Error
}

// ListMedicalReports returns a patient's medical reports, newest first
func (r *PatientRepository) ListMedicalReports(patientID uint) ([]models.MedicalReport, error) {
	var reports []models.MedicalReport
	err := r.db.Where("patient_id = ?", patientID).Order("date DESC").Find(&reports).Error
	return reports, err
}

// FindMedicalReport finds a report belonging to the given patient
func (r *PatientRepository) FindMedicalReport(patientID, reportID uint) (*models.MedicalReport, error) {
	var report models.MedicalReport
	err := r.db.Where("id = ? AND patient_id = ?", reportID, patientID).First(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &report, nil
}

// DeleteMedicalReport removes a report row
func (r *PatientRepository) DeleteMedicalReport(reportID uint) error {
	return r.db.Delete(&models.MedicalReport{}, reportID).Error
}

// ReferencedFileNames returns the stored file names of every report row,
// used by the startup orphan sweep.
func (r *PatientRepository) ReferencedFileNames() (map[string]bool, error) {
	var names []string
	err := r.db.Model(&models.MedicalReport{}).
		Where("file_name <> ''").
		Pluck("file_name", &names).Error
	if err != nil {
		return nil, err
	}

	referenced := make(map[string]bool, len(names))
	for _, name := range names {
		referenced[name] = true
	}
	return referenced, nil
}

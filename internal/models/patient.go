package models

import "time"

// Patient represents the patients table.
// LastVisit is bumped on every save, matching the front desk's expectation
// that any edit to a patient counts as contact.
type Patient struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"not null;size:100" json:"name"`
	Age            int       `gorm:"not null" json:"age"`
	Gender         string    `gorm:"type:varchar(10);not null" json:"gender"` // Male, Female, Other
	Phone          string    `gorm:"not null;size:15" json:"phone"`
	Email          *string   `gorm:"size:100" json:"email"`
	Address        string    `gorm:"type:text" json:"address"`
	MedicalHistory *string   `gorm:"type:text" json:"medical_history"`
	LastVisit      time.Time `gorm:"autoUpdateTime" json:"last_visit"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	MedicalRecords []MedicalRecord `gorm:"foreignKey:PatientID;constraint:OnDelete:CASCADE" json:"-"`
	MedicalReports []MedicalReport `gorm:"foreignKey:PatientID;constraint:OnDelete:CASCADE" json:"-"`
	Bills          []Bill          `gorm:"foreignKey:PatientID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for Patient model
func (Patient) TableName() string {
	return "patients"
}

// MedicalRecord represents the medical_records table
type MedicalRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PatientID uint      `gorm:"not null;index" json:"patient_id"`
	Date      time.Time `gorm:"autoCreateTime" json:"date"`
	Doctor    string    `gorm:"not null;size:100" json:"doctor"`
	Diagnosis string    `gorm:"not null;size:200" json:"diagnosis"`
	Treatment string    `gorm:"type:text;not null" json:"treatment"`
	Notes     *string   `gorm:"type:text" json:"notes"`
}

// TableName specifies the table name for MedicalRecord model
func (MedicalRecord) TableName() string {
	return "medical_records"
}

// MedicalReport represents the medical_reports table.
// FileName is the object name in the file store; FileURL is what clients
// use to fetch the file. JSON keys are camelCase for frontend compatibility.
type MedicalReport struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PatientID  uint      `gorm:"not null;index" json:"patient_id"`
	Title      string    `gorm:"not null;size:200" json:"title"`
	Date       time.Time `gorm:"autoCreateTime" json:"date"`
	Type       string    `gorm:"type:varchar(20);not null" json:"type"` // image, document
	FileName   string    `gorm:"size:255" json:"-"`
	FileURL    string    `gorm:"size:500" json:"fileUrl"`
	UploadedBy string    `gorm:"size:100" json:"uploadedBy"`
}

// TableName specifies the table name for MedicalReport model
func (MedicalReport) TableName() string {
	return "medical_reports"
}

package models

import "time"

// Service categories offered by the clinic.
var ServiceCategories = []string{
	"Consultation",
	"Laboratory",
	"Radiology",
	"Cardiology",
	"Therapy",
	"Vaccination",
	"Dental",
}

// ValidServiceCategory reports whether name is a known category.
func ValidServiceCategory(name string) bool {
	for _, category := range ServiceCategories {
		if category == name {
			return true
		}
	}
	return false
}

// Service represents the services table
type Service struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"not null;size:100" json:"name"`
	Description string  `gorm:"type:text" json:"description"`
	Price       float64 `gorm:"type:decimal(10,2);not null" json:"price"`
	Category    string  `gorm:"type:varchar(20);not null" json:"category"`
	IsActive    bool    `gorm:"default:true" json:"is_active"`
}

// TableName specifies the table name for Service model
func (Service) TableName() string {
	return "services"
}

// Bill statuses. No transition rules are enforced; a bill moves freely
// between these via update.
const (
	BillStatusPaid      = "Paid"
	BillStatusPending   = "Pending"
	BillStatusCancelled = "Cancelled"
)

// Discount types accepted on a bill.
const (
	DiscountPercentage = "percentage"
	DiscountAmount     = "amount"
)

// Bill represents the bills table.
// GrandTotal = subtotal - DiscountAmount. No floor is applied: a discount
// larger than the subtotal produces a negative total.
type Bill struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	BillNumber     string    `gorm:"uniqueIndex;not null;size:20" json:"bill_number"`
	Date           time.Time `gorm:"autoCreateTime" json:"date"`
	PatientID      uint      `gorm:"not null;index" json:"patient"`
	DiscountType   *string   `gorm:"type:varchar(10)" json:"discount_type"` // percentage, amount
	DiscountValue  float64   `gorm:"type:decimal(10,2);default:0" json:"discount_value"`
	DiscountAmount float64   `gorm:"type:decimal(10,2);default:0" json:"discount_amount"`
	GrandTotal     float64   `gorm:"type:decimal(12,2);not null" json:"grand_total"`
	Status         string    `gorm:"type:varchar(10);default:'Pending'" json:"status"`
	CreatedByID    uint      `gorm:"not null;index" json:"created_by"`
	Notes          string    `gorm:"type:text" json:"notes"`

	Patient   Patient    `gorm:"foreignKey:PatientID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedBy User       `gorm:"foreignKey:CreatedByID;constraint:OnDelete:RESTRICT" json:"-"`
	Items     []BillItem `gorm:"foreignKey:BillID;constraint:OnDelete:CASCADE" json:"items"`

	PatientName string `gorm:"-" json:"patient_name,omitempty"`
}

// TableName specifies the table name for Bill model
func (Bill) TableName() string {
	return "bills"
}

// BillItem represents the bill_items table.
// Price is a snapshot of the service price at billing time, never a live
// reference; later service price changes do not touch historical bills.
type BillItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	BillID    uint    `gorm:"not null;index" json:"bill_id"`
	ServiceID uint    `gorm:"not null;index" json:"service"`
	Quantity  int     `gorm:"not null;default:1" json:"quantity"`
	Price     float64 `gorm:"type:decimal(10,2);not null" json:"price"`
	Total     float64 `gorm:"type:decimal(10,2);not null" json:"total"`

	Service Service `gorm:"foreignKey:ServiceID;constraint:OnDelete:RESTRICT" json:"-"`

	ServiceName string `gorm:"-" json:"service_name,omitempty"`
}

// TableName specifies the table name for BillItem model
func (BillItem) TableName() string {
	return "bill_items"
}

// BillSequence is a single-row counter backing invoice numbering. The row is
// locked and incremented inside the bill-creation transaction, so two
// concurrent creations can never draw the same number.
type BillSequence struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	LastNumber uint `gorm:"not null;default:0" json:"last_number"`
}

// TableName specifies the table name for BillSequence model
func (BillSequence) TableName() string {
	return "bill_sequences"
}

package service

import (
	"errors"
	"fmt"
	"time"

	"clinic-records-backend/internal/models"
	"clinic-records-backend/internal/repository"

	"github.com/rs/zerolog"
)

var (
	// ErrPatientNotFound is returned when a referenced patient does not exist.
	ErrPatientNotFound = errors.New("patient not found")
	// ErrServiceNotFound is returned when a bill references an unknown service.
	ErrServiceNotFound = errors.New("service not found")
	// ErrBillNotFound is returned when a requested bill does not exist.
	ErrBillNotFound = errors.New("bill not found")
	// ErrDateRequired is returned when the daily report is asked for without a date.
	ErrDateRequired = errors.New("date parameter is required (YYYY-MM-DD format)")
	// ErrInvalidCategory is returned when a service carries an unknown category.
	ErrInvalidCategory = errors.New("unknown service category")
)

type BillingService struct {
	billRepo    *repository.BillRepository
	serviceRepo *repository.ServiceRepository
	patientRepo *repository.PatientRepository
	logger      zerolog.Logger
}

func NewBillingService(
	billRepo *repository.BillRepository,
	serviceRepo *repository.ServiceRepository,
	patientRepo *repository.PatientRepository,
	logger zerolog.Logger,
) *BillingService {
	return &BillingService{
		billRepo:    billRepo,
		serviceRepo: serviceRepo,
		patientRepo: patientRepo,
		logger:      logger,
	}
}

// BillItemInput is one requested line item.
type BillItemInput struct {
	ServiceID uint `json:"serviceId" binding:"required"`
	Quantity  int  `json:"quantity" binding:"omitempty,min=1"`
}

// CreateBillInput carries everything needed to compute and persist a bill.
type CreateBillInput struct {
	PatientID     uint            `json:"patientId" binding:"required"`
	Items         []BillItemInput `json:"items" binding:"required,min=1,dive"`
	DiscountType  string          `json:"discountType" binding:"required,oneof=percentage amount"`
	DiscountValue float64         `json:"discountValue" binding:"min=0"`
	Notes         string          `json:"notes"`
}

// CreateBill resolves every referenced row, computes the totals and persists
// the bill with its items in a single transaction. Each item's price is a
// snapshot of the service price at this moment; later price changes never
// alter the bill. The discount may exceed the subtotal, leaving a negative
// grand total.
func (s *BillingService) CreateBill(input CreateBillInput, createdByID uint) (*models.Bill, error) {
	patient, err := s.patientRepo.FindPatientByID(input.PatientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	// Resolve all services up front so nothing is written when any item
	// references a missing one.
	subtotal := 0.0
	items := make([]models.BillItem, 0, len(input.Items))
	for _, item := range input.Items {
		svc, err := s.serviceRepo.FindServiceByID(item.ServiceID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: service with ID %d", ErrServiceNotFound, item.ServiceID)
			}
			return nil, err
		}

		quantity := item.Quantity
		if quantity < 1 {
			quantity = 1
		}

		itemTotal := svc.Price * float64(quantity)
		subtotal += itemTotal

		items = append(items, models.BillItem{
			ServiceID:   svc.ID,
			Quantity:    quantity,
			Price:       svc.Price,
			Total:       itemTotal,
			ServiceName: svc.Name,
		})
	}

	var discountAmount float64
	if input.DiscountType == models.DiscountPercentage {
		discountAmount = subtotal * input.DiscountValue / 100
	} else {
		discountAmount = input.DiscountValue
	}

	discountType := input.DiscountType
	bill := &models.Bill{
		PatientID:      patient.ID,
		DiscountType:   &discountType,
		DiscountValue:  input.DiscountValue,
		DiscountAmount: discountAmount,
		GrandTotal:     subtotal - discountAmount,
		Status:         models.BillStatusPending,
		CreatedByID:    createdByID,
		Notes:          input.Notes,
		Items:          items,
	}

	if err := s.billRepo.CreateBill(bill); err != nil {
		return nil, fmt.Errorf("failed to create bill: %w", err)
	}

	s.logger.Info().
		Str("bill_number", bill.BillNumber).
		Uint("patient_id", patient.ID).
		Float64("grand_total", bill.GrandTotal).
		Msg("Bill created")

	bill.PatientName = patient.Name
	return bill, nil
}

// decorateBills fills the display-only name fields from preloaded relations.
func decorateBills(bills []models.Bill) {
	for i := range bills {
		bills[i].PatientName = bills[i].Patient.Name
		for j := range bills[i].Items {
			bills[i].Items[j].ServiceName = bills[i].Items[j].Service.Name
		}
	}
}

// ListBills returns bills newest first, optionally filtered by patient and day
func (s *BillingService) ListBills(patientID *uint, day *time.Time) ([]models.Bill, error) {
	bills, err := s.billRepo.ListBills(patientID, day)
	if err != nil {
		return nil, err
	}
	decorateBills(bills)
	return bills, nil
}

// GetBill returns one bill with its items
func (s *BillingService) GetBill(id uint) (*models.Bill, error) {
	bill, err := s.billRepo.FindBillByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBillNotFound
		}
		return nil, err
	}
	bill.PatientName = bill.Patient.Name
	for j := range bill.Items {
		bill.Items[j].ServiceName = bill.Items[j].Service.Name
	}
	return bill, nil
}

// UpdateBillInput carries the mutable bill fields. Status moves freely
// between Paid, Pending and Cancelled; there is no transition checking.
// Changing the discount recomputes discount_amount and grand_total from the
// stored item totals; bill_number and date never change.
type UpdateBillInput struct {
	Status        *string  `json:"status" binding:"omitempty,oneof=Paid Pending Cancelled"`
	Notes         *string  `json:"notes"`
	DiscountType  *string  `json:"discountType" binding:"omitempty,oneof=percentage amount"`
	DiscountValue *float64 `json:"discountValue" binding:"omitempty,min=0"`
}

// UpdateBill applies a partial update and returns the fresh bill
func (s *BillingService) UpdateBill(id uint, input UpdateBillInput) (*models.Bill, error) {
	bill, err := s.billRepo.FindBillByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBillNotFound
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Status != nil {
		updates["status"] = *input.Status
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}

	if input.DiscountType != nil || input.DiscountValue != nil {
		discountType := models.DiscountAmount
		if bill.DiscountType != nil {
			discountType = *bill.DiscountType
		}
		if input.DiscountType != nil {
			discountType = *input.DiscountType
		}
		discountValue := bill.DiscountValue
		if input.DiscountValue != nil {
			discountValue = *input.DiscountValue
		}

		subtotal := 0.0
		for _, item := range bill.Items {
			subtotal += item.Total
		}

		discountAmount := discountValue
		if discountType == models.DiscountPercentage {
			discountAmount = subtotal * discountValue / 100
		}

		updates["discount_type"] = discountType
		updates["discount_value"] = discountValue
		updates["discount_amount"] = discountAmount
		updates["grand_total"] = subtotal - discountAmount
	}

	if len(updates) > 0 {
		if err := s.billRepo.UpdateBillFields(id, updates); err != nil {
			return nil, err
		}
	}

	return s.GetBill(id)
}

// DailyReport summarizes the bills of one calendar day.
type DailyReport struct {
	Date    string             `json:"date"`
	Bills   []models.Bill      `json:"bills"`
	Summary DailyReportSummary `json:"summary"`
}

type DailyReportSummary struct {
	TotalAmount   float64 `json:"total_amount"`
	BillCount     int     `json:"bill_count"`
	AverageAmount float64 `json:"average_amount"`
	HighestAmount float64 `json:"highest_amount"`
}

// GetDailyReport computes the report for the given date string. The date is
// required; an empty day yields zero averages and maxima instead of an error.
func (s *BillingService) GetDailyReport(dateStr string) (*DailyReport, error) {
	if dateStr == "" {
		return nil, ErrDateRequired
	}
	day, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, ErrDateRequired
	}

	bills, err := s.ListBills(nil, &day)
	if err != nil {
		return nil, err
	}

	var total, highest float64
	for i, bill := range bills {
		total += bill.GrandTotal
		// Seed from the first bill: grand totals can be negative, so 0 is
		// not a safe floor. An empty day keeps highest at 0.
		if i == 0 || bill.GrandTotal > highest {
			highest = bill.GrandTotal
		}
	}

	average := 0.0
	if len(bills) > 0 {
		average = total / float64(len(bills))
	}

	return &DailyReport{
		Date:  dateStr,
		Bills: bills,
		Summary: DailyReportSummary{
			TotalAmount:   total,
			BillCount:     len(bills),
			AverageAmount: average,
			HighestAmount: highest,
		},
	}, nil
}

// CreateService creates a billable service
func (s *BillingService) CreateService(service *models.Service) error {
	if !models.ValidServiceCategory(service.Category) {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, service.Category)
	}
	return s.serviceRepo.CreateService(service)
}

// ListServices returns active services ordered by name
func (s *BillingService) ListServices() ([]models.Service, error) {
	return s.serviceRepo.ListActiveServices()
}

// GetService returns one service
func (s *BillingService) GetService(id uint) (*models.Service, error) {
	svc, err := s.serviceRepo.FindServiceByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	return svc, nil
}

// UpdateServiceInput carries the mutable service fields.
type UpdateServiceInput struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" binding:"omitempty,min=0"`
	Category    *string  `json:"category"`
	IsActive    *bool    `json:"is_active"`
}

// UpdateService applies a partial update. Price changes only affect future
// bills; existing bill items keep their snapshot.
func (s *BillingService) UpdateService(id uint, input UpdateServiceInput) (*models.Service, error) {
	svc, err := s.GetService(id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		svc.Name = *input.Name
	}
	if input.Description != nil {
		svc.Description = *input.Description
	}
	if input.Price != nil {
		svc.Price = *input.Price
	}
	if input.Category != nil {
		if !models.ValidServiceCategory(*input.Category) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, *input.Category)
		}
		svc.Category = *input.Category
	}
	if input.IsActive != nil {
		svc.IsActive = *input.IsActive
	}

	if err := s.serviceRepo.SaveService(svc); err != nil {
		return nil, err
	}
	return svc, nil
}

// DeleteService removes a service; refused while any bill references it
func (s *BillingService) DeleteService(id uint) error {
	err := s.serviceRepo.DeleteService(id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrServiceNotFound
	}
	return err
}

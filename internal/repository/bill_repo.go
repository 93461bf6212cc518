package repository

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"clinic-records-backend/internal/models"

	"gorm.io/gorm"
)

type BillRepository struct {
	db *gorm.DB
}

func NewBillRepo(db *gorm.DB) *BillRepository {
	return &BillRepository{db: db}
}

// CreateBill persists a bill and its items in one transaction, drawing the
// next invoice number from the bill_sequences counter row. The counter
// update takes a row write lock, so concurrent creations serialize on it and
// can never draw the same number.
func (r *BillRepository) CreateBill(bill *models.Bill) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.BillSequence{}).
			Where("id = ?", 1).
			Update("last_number", gorm.Expr("last_number + 1")).Error; err != nil {
			return fmt.Errorf("failed to advance bill sequence: %w", err)
		}

		var seq models.BillSequence
		if err := tx.First(&seq, 1).Error; err != nil {
			return fmt.Errorf("failed to read bill sequence: %w", err)
		}

		bill.BillNumber = fmt.Sprintf("BILL-%03d", seq.LastNumber)

		// Creating the bill cascades to its Items association.
		return tx.Create(bill).Error
	})
}

// dayRange translates a calendar day into the half-open interval covering it.
func dayRange(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1)
}

func (r *BillRepository) billQuery(patientID *uint, day *time.Time) *gorm.DB {
	query := r.db.Model(&models.Bill{}).
		Preload("Items").
		Preload("Items.Service").
		Preload("Patient")

	if patientID != nil {
		query = query.Where("patient_id = ?", *patientID)
	}
	if day != nil {
		start, end := dayRange(*day)
		query = query.Where("date >= ? AND date < ?", start, end)
	}
	return query
}

// ListBills returns bills newest first, optionally filtered by patient
// and/or calendar day.
func (r *BillRepository) ListBills(patientID *uint, day *time.Time) ([]models.Bill, error) {
	var bills []models.Bill
	err := r.billQuery(patientID, day).Order("date DESC").Find(&bills).Error
	return bills, err
}

// FindBillByID finds a bill with its items, services and patient loaded
func (r *BillRepository) FindBillByID(id uint) (*models.Bill, error) {
	var bill models.Bill
	err := r.billQuery(nil, nil).First(&bill, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &bill, nil
}

// UpdateBillFields applies a partial update to a bill. BillNumber and Date
// are never among the updates; callers only pass mutable fields. Existence
// is checked by the caller, since MySQL reports zero affected rows for
// no-op updates.
func (r *BillRepository) UpdateBillFields(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.Bill{}).Where("id = ?", id).Updates(updates).Error
}

// CountBills returns the total number of bills
func (r *BillRepository) CountBills() (int64, error) {
	var count int64
	err := r.db.Model(&models.Bill{}).Count(&count).Error
	return count, err
}

// RecentBills returns the latest bills, newest first. The stored grand_total
// is pre-checked as a string before the model scan: a non-numeric value would
// break scanning into the float64 field, so such rows are skipped and their
// raw values returned for the caller to log.
func (r *BillRepository) RecentBills(limit int) ([]models.Bill, []string, error) {
	type billRow struct {
		ID         uint
		GrandTotal string
	}

	var rows []billRow
	err := r.db.Model(&models.Bill{}).
		Select("id", "grand_total").
		Order("date DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, nil, err
	}

	ids := make([]uint, 0, len(rows))
	var skipped []string
	for _, row := range rows {
		if _, err := strconv.ParseFloat(row.GrandTotal, 64); err != nil {
			skipped = append(skipped, row.GrandTotal)
			continue
		}
		ids = append(ids, row.ID)
	}

	if len(ids) == 0 {
		return nil, skipped, nil
	}

	var bills []models.Bill
	err = r.billQuery(nil, nil).
		Where("id IN ?", ids).
		Order("date DESC").
		Find(&bills).Error
	return bills, skipped, err
}

// GrandTotalValues returns the stored grand_total of every bill, optionally
// scoped to one day, as raw strings. Scanning to string instead of float
// lets the caller decide what to do with a malformed stored value rather
// than failing the whole query.
func (r *BillRepository) GrandTotalValues(day *time.Time) ([]string, error) {
	query := r.db.Model(&models.Bill{})
	if day != nil {
		start, end := dayRange(*day)
		query = query.Where("date >= ? AND date < ?", start, end)
	}

	var values []string
	err := query.Pluck("grand_total", &values).Error
	return values, err
}

// CountBillsOnDay returns the number of bills on a calendar day
func (r *BillRepository) CountBillsOnDay(day time.Time) (int64, error) {
	start, end := dayRange(day)
	var count int64
	err := r.db.Model(&models.Bill{}).
		Where("date >= ? AND date < ?", start, end).
		Count(&count).Error
	return count, err
}

// DistinctPatientCountOnDay returns how many different patients were billed
// on a calendar day.
func (r *BillRepository) DistinctPatientCountOnDay(day time.Time) (int64, error) {
	start, end := dayRange(day)
	var count int64
	err := r.db.Model(&models.Bill{}).
		Where("date >= ? AND date < ?", start, end).
		Distinct("patient_id").
		Count(&count).Error
	return count, err
}

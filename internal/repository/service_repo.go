package repository

import (
	"errors"

	"clinic-records-backend/internal/models"

	"gorm.io/gorm"
)

// ErrServiceReferenced is returned when deleting a service that existing
// bill items still point at.
var ErrServiceReferenced = errors.New("service is referenced by existing bills")

type ServiceRepository struct {
	db *gorm.DB
}

func NewServiceRepo(db *gorm.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

// CreateService creates a new billable service
func (r *ServiceRepository) CreateService(service *models.Service) error {
	return r.db.Create(service).Error
}

// ListActiveServices returns active services ordered by name
func (r *ServiceRepository) ListActiveServices() ([]models.Service, error) {
	var services []models.Service
	err := r.db.Where("is_active = ?", true).Order("name ASC").Find(&services).Error
	return services, err
}

// FindServiceByID finds a service by id
func (r *ServiceRepository) FindServiceByID(id uint) (*models.Service, error) {
	var service models.Service
	err := r.db.First(&service, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &service, nil
}

// SaveService persists changes to a service
func (r *ServiceRepository) SaveService(service *models.Service) error {
	return r.db.Save(service).Error
}

// DeleteService removes a service unless any bill item references it
// (delete-protect: billed services must survive for historical bills).
func (r *ServiceRepository) DeleteService(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var service models.Service
		if err := tx.First(&service, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var count int64
		if err := tx.Model(&models.BillItem{}).
			Where("service_id = ?", id).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrServiceReferenced
		}

		return tx.Delete(&service).Error
	})
}

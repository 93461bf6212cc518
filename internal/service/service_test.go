package service

import (
	"fmt"
	"testing"

	"clinic-records-backend/internal/database"
	"clinic-records-backend/internal/models"
	"clinic-records-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires the repositories and services against a fresh in-memory
// database, mirroring the wiring in cmd/server.
type testEnv struct {
	db          *gorm.DB
	userRepo    *repository.UserRepository
	patientRepo *repository.PatientRepository
	serviceRepo *repository.ServiceRepository
	billRepo    *repository.BillRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, database.Migrate(db))

	return &testEnv{
		db:          db,
		userRepo:    repository.NewUserRepo(db),
		patientRepo: repository.NewPatientRepo(db),
		serviceRepo: repository.NewServiceRepo(db),
		billRepo:    repository.NewBillRepo(db),
	}
}

func (e *testEnv) billingService(t *testing.T) *BillingService {
	t.Helper()
	return NewBillingService(e.billRepo, e.serviceRepo, e.patientRepo, zerolog.Nop())
}

func (e *testEnv) seedUser(t *testing.T) *models.User {
	t.Helper()
	user := &models.User{
		Username:     "frontdesk",
		PasswordHash: "x",
		Role:         models.RoleReceptionist,
	}
	require.NoError(t, e.userRepo.CreateUser(user))
	return user
}

func (e *testEnv) seedPatient(t *testing.T, name string) *models.Patient {
	t.Helper()
	patient := &models.Patient{
		Name:    name,
		Age:     34,
		Gender:  "Female",
		Phone:   "0400000000",
		Address: "12 High St",
	}
	require.NoError(t, e.patientRepo.CreatePatient(patient))
	return patient
}

func (e *testEnv) seedService(t *testing.T, name string, price float64) *models.Service {
	t.Helper()
	svc := &models.Service{
		Name:     name,
		Price:    price,
		Category: "Consultation",
		IsActive: true,
	}
	require.NoError(t, e.serviceRepo.CreateService(svc))
	return svc
}

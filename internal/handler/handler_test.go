package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clinic-records-backend/internal/database"
	"clinic-records-backend/internal/middleware"
	"clinic-records-backend/internal/models"
	"clinic-records-backend/internal/repository"
	"clinic-records-backend/internal/service"
	"clinic-records-backend/internal/storage"
	"clinic-records-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
}

// newTestServer wires the handlers against an in-memory database with the
// same routes as cmd/server.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.InitJWT("test-access", "test-refresh", 15*time.Minute, time.Hour)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	store, err := storage.NewLocalStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)

	userRepo := repository.NewUserRepo(db)
	patientRepo := repository.NewPatientRepo(db)
	serviceRepo := repository.NewServiceRepo(db)
	billRepo := repository.NewBillRepo(db)

	authService := service.NewAuthService(userRepo, zerolog.Nop())
	patientService := service.NewPatientService(patientRepo, billRepo, store, "http://clinic.local", zerolog.Nop())
	billingService := service.NewBillingService(billRepo, serviceRepo, patientRepo, zerolog.Nop())
	dashboardService := service.NewDashboardService(patientRepo, billRepo, zerolog.Nop())

	authHandler := NewAuthHandler(authService)
	patientHandler := NewPatientHandler(patientService)
	serviceHandler := NewServiceHandler(billingService)
	billHandler := NewBillHandler(billingService)
	dashboardHandler := NewDashboardHandler(dashboardService)

	r := gin.New()

	auth := r.Group("/auth")
	{
		auth.POST("/login/", authHandler.Login)
		auth.POST("/token/refresh/", authHandler.Refresh)
		auth.GET("/user/", middleware.AuthMiddleware(), authHandler.CurrentUser)
		auth.POST("/register/", middleware.AuthMiddleware(), middleware.RequireAdmin(), authHandler.Register)
	}

	patients := r.Group("/patients")
	patients.Use(middleware.AuthMiddleware())
	{
		patients.GET("/", patientHandler.List)
		patients.POST("/", patientHandler.Create)
		patients.GET("/:id/details/", patientHandler.Details)
		patients.POST("/:id/add_medical_record/", patientHandler.AddMedicalRecord)
	}

	services := r.Group("/services")
	services.Use(middleware.AuthMiddleware())
	{
		services.POST("/", serviceHandler.Create)
		services.GET("/", serviceHandler.List)
	}

	bills := r.Group("/bills")
	bills.Use(middleware.AuthMiddleware())
	{
		bills.POST("/", billHandler.Create)
		bills.GET("/list/", billHandler.List)
		bills.GET("/daily-report/", billHandler.DailyReport)
	}

	r.GET("/dashboard/", middleware.AuthMiddleware(), dashboardHandler.Get)

	return &testServer{router: r, db: db}
}

func (s *testServer) seedUser(t *testing.T, username string, role models.Role) string {
	t.Helper()
	hash, err := utils.HashPassword("password123")
	require.NoError(t, err)
	user := &models.User{Username: username, PasswordHash: hash, Role: role}
	require.NoError(t, s.db.Create(user).Error)

	token, err := utils.GenerateAccessToken(user.ID, user.Username, string(user.Role))
	require.NoError(t, err)
	return token
}

func (s *testServer) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/patients/", "/bills/list/", "/dashboard/", "/auth/user/"} {
		w := srv.request(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	w := srv.request(t, http.MethodGet, "/patients/", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginAndCurrentUser(t *testing.T) {
	srv := newTestServer(t)
	srv.seedUser(t, "frontdesk", models.RoleReceptionist)

	w := srv.request(t, http.MethodPost, "/auth/login/", "", gin.H{
		"username": "frontdesk",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var login struct {
		Data struct {
			Access   string `json:"access"`
			Refresh  string `json:"refresh"`
			Username string `json:"username"`
			Role     string `json:"role"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	assert.NotEmpty(t, login.Data.Access)
	assert.NotEmpty(t, login.Data.Refresh)
	assert.Equal(t, "frontdesk", login.Data.Username)
	assert.Equal(t, "receptionist", login.Data.Role)

	w = srv.request(t, http.MethodGet, "/auth/user/", login.Data.Access, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"frontdesk"`)

	// Refresh via body token.
	w = srv.request(t, http.MethodPost, "/auth/token/refresh/", "", gin.H{"refresh": login.Data.Refresh})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"access"`)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv := newTestServer(t)
	srv.seedUser(t, "frontdesk", models.RoleReceptionist)

	w := srv.request(t, http.MethodPost, "/auth/login/", "", gin.H{
		"username": "frontdesk",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterIsAdminOnly(t *testing.T) {
	srv := newTestServer(t)
	adminToken := srv.seedUser(t, "boss", models.RoleAdmin)
	staffToken := srv.seedUser(t, "frontdesk", models.RoleReceptionist)

	body := gin.H{"username": "newstaff", "password": "password123", "role": "receptionist"}

	w := srv.request(t, http.MethodPost, "/auth/register/", staffToken, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = srv.request(t, http.MethodPost, "/auth/register/", adminToken, body)
	assert.Equal(t, http.StatusCreated, w.Code)

	// Roles outside the closed set are rejected at binding time.
	w = srv.request(t, http.MethodPost, "/auth/register/", adminToken, gin.H{
		"username": "hacker", "password": "password123", "role": "superuser",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBillCreationFlow(t *testing.T) {
	srv := newTestServer(t)
	token := srv.seedUser(t, "frontdesk", models.RoleReceptionist)

	w := srv.request(t, http.MethodPost, "/patients/", token, gin.H{
		"name": "Jane Roe", "age": 34, "gender": "Female",
		"phone": "0400000000", "address": "12 High St",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Data models.Patient `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = srv.request(t, http.MethodPost, "/services/", token, gin.H{
		"name": "Consultation", "price": 100.0, "category": "Consultation",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var svcResp struct {
		Data models.Service `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &svcResp))

	w = srv.request(t, http.MethodPost, "/bills/", token, gin.H{
		"patientId":     created.Data.ID,
		"items":         []gin.H{{"serviceId": svcResp.Data.ID, "quantity": 2}},
		"discountType":  "percentage",
		"discountValue": 10,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var billResp struct {
		Data models.Bill `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &billResp))
	assert.Equal(t, "BILL-001", billResp.Data.BillNumber)
	assert.Equal(t, 180.0, billResp.Data.GrandTotal)

	// Unknown service id is a 404 naming the id, nothing persisted.
	w = srv.request(t, http.MethodPost, "/bills/", token, gin.H{
		"patientId":     created.Data.ID,
		"items":         []gin.H{{"serviceId": 9999}},
		"discountType":  "amount",
		"discountValue": 0,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "9999")

	// Missing discountType fails validation before persistence.
	w = srv.request(t, http.MethodPost, "/bills/", token, gin.H{
		"patientId": created.Data.ID,
		"items":     []gin.H{{"serviceId": svcResp.Data.ID}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDailyReportRequiresDateParam(t *testing.T) {
	srv := newTestServer(t)
	token := srv.seedUser(t, "frontdesk", models.RoleReceptionist)

	w := srv.request(t, http.MethodGet, "/bills/daily-report/", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.request(t, http.MethodGet, "/bills/daily-report/?date=2026-01-15", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"bill_count":0`)
}

func TestAddMedicalRecordValidation(t *testing.T) {
	srv := newTestServer(t)
	token := srv.seedUser(t, "frontdesk", models.RoleReceptionist)

	w := srv.request(t, http.MethodPost, "/patients/", token, gin.H{
		"name": "Jane Roe", "age": 34, "gender": "Female",
		"phone": "0400000000", "address": "12 High St",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Data models.Patient `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	path := fmt.Sprintf("/patients/%d/add_medical_record/", created.Data.ID)

	// doctor is required
	w = srv.request(t, http.MethodPost, path, token, gin.H{
		"diagnosis": "flu", "treatment": "fluids",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.request(t, http.MethodPost, path, token, gin.H{
		"diagnosis": "flu", "treatment": "fluids", "doctor": "Dr. Adams",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"medicalRecords"`)
	assert.Contains(t, w.Body.String(), `"billingHistory"`)
	assert.Contains(t, w.Body.String(), `"medicalReports"`)

	// Unknown patient
	w = srv.request(t, http.MethodPost, "/patients/9999/add_medical_record/", token, gin.H{
		"diagnosis": "flu", "treatment": "fluids", "doctor": "Dr. Adams",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

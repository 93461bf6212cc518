package service

import (
	"strconv"
	"time"

	"clinic-records-backend/internal/models"
	"clinic-records-backend/internal/repository"

	"github.com/rs/zerolog"
)

type DashboardService struct {
	patientRepo *repository.PatientRepository
	billRepo    *repository.BillRepository
	logger      zerolog.Logger
	// now is swappable so tests can pin "today".
	now func() time.Time
}

func NewDashboardService(
	patientRepo *repository.PatientRepository,
	billRepo *repository.BillRepository,
	logger zerolog.Logger,
) *DashboardService {
	return &DashboardService{
		patientRepo: patientRepo,
		billRepo:    billRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// DashboardData is the aggregate snapshot shown on the landing page.
type DashboardData struct {
	TotalPatients  int64            `json:"totalPatients"`
	TotalBills     int64            `json:"totalBills"`
	TotalRevenue   float64          `json:"totalRevenue"`
	TodayPatients  int64            `json:"todayPatients"`
	TodayBills     int64            `json:"todayBills"`
	TodayRevenue   float64          `json:"todayRevenue"`
	RecentBills    []models.Bill    `json:"recentBills"`
	RecentPatients []models.Patient `json:"recentPatients"`
	DailyStats     []DailyStat      `json:"dailyStats"`
}

// DailyStat is one entry of the trailing 7-day series.
type DailyStat struct {
	Date     string  `json:"date"`
	Patients int64   `json:"patients"`
	Revenue  float64 `json:"revenue"`
}

// sumRevenue adds up stored grand_total values. A value that does not parse
// as a number is logged and skipped; one malformed row must never sink the
// whole aggregation.
func (s *DashboardService) sumRevenue(values []string) float64 {
	total := 0.0
	for _, value := range values {
		amount, err := strconv.ParseFloat(value, 64)
		if err != nil {
			s.logger.Warn().Str("grand_total", value).Msg("Skipping bill with non-numeric grand total")
			continue
		}
		total += amount
	}
	return total
}

// GetDashboard computes the full dashboard aggregate for "today".
func (s *DashboardService) GetDashboard() (*DashboardData, error) {
	today := s.now()

	totalPatients, err := s.patientRepo.CountPatients()
	if err != nil {
		return nil, err
	}

	totalBills, err := s.billRepo.CountBills()
	if err != nil {
		return nil, err
	}

	allTotals, err := s.billRepo.GrandTotalValues(nil)
	if err != nil {
		return nil, err
	}

	todayTotals, err := s.billRepo.GrandTotalValues(&today)
	if err != nil {
		return nil, err
	}

	todayBills, err := s.billRepo.CountBillsOnDay(today)
	if err != nil {
		return nil, err
	}

	todayPatients, err := s.billRepo.DistinctPatientCountOnDay(today)
	if err != nil {
		return nil, err
	}

	recentBills, skipped, err := s.billRepo.RecentBills(5)
	if err != nil {
		return nil, err
	}
	for _, value := range skipped {
		s.logger.Warn().Str("grand_total", value).Msg("Skipping bill with non-numeric grand total")
	}
	decorateBills(recentBills)

	recentPatients, err := s.patientRepo.RecentPatients(5)
	if err != nil {
		return nil, err
	}

	// Today first, then the prior six days.
	dailyStats := make([]DailyStat, 0, 7)
	for i := 0; i < 7; i++ {
		day := today.AddDate(0, 0, -i)

		patients, err := s.billRepo.DistinctPatientCountOnDay(day)
		if err != nil {
			return nil, err
		}

		dayTotals, err := s.billRepo.GrandTotalValues(&day)
		if err != nil {
			return nil, err
		}

		dailyStats = append(dailyStats, DailyStat{
			Date:     day.Format("2006-01-02"),
			Patients: patients,
			Revenue:  s.sumRevenue(dayTotals),
		})
	}

	return &DashboardData{
		TotalPatients:  totalPatients,
		TotalBills:     totalBills,
		TotalRevenue:   s.sumRevenue(allTotals),
		TodayPatients:  todayPatients,
		TodayBills:     todayBills,
		TodayRevenue:   s.sumRevenue(todayTotals),
		RecentBills:    recentBills,
		RecentPatients: recentPatients,
		DailyStats:     dailyStats,
	}, nil
}

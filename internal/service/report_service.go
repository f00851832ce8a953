package service

import (
	"context"
	"math"
	"time"

	"crm-backend/internal/domain"
	"crm-backend/internal/repository"

	"github.com/shopspring/decimal"
)

// CRMReport summarises the store
type CRMReport struct {
	TotalCustomers int
	TotalOrders    int
	TotalRevenue   decimal.Decimal
}

// ReportService defines the read-only reporting queries
type ReportService interface {
	RecentOrders(ctx context.Context, hours int) ([]*domain.Order, error)
	CRMReport(ctx context.Context) (CRMReport, error)
}

type reportService struct {
	store repository.Store
	now   func() time.Time
}

// NewReportService creates a new instance of ReportService
func NewReportService(store repository.Store) ReportService {
	return &reportService{
		store: store,
		now:   time.Now,
	}
}

// MaxRecentHours is the widest window whose cutoff fits in a time.Duration.
const MaxRecentHours = int(math.MaxInt64 / int64(time.Hour))

// RecentOrders returns orders placed within the last hours, newest first
func (s *reportService) RecentOrders(ctx context.Context, hours int) ([]*domain.Order, error) {
	if hours <= 0 {
		return nil, invalid("hours must be positive")
	}
	if hours > MaxRecentHours {
		return nil, invalid("hours must not exceed %d", MaxRecentHours)
	}

	since := s.now().Add(-time.Duration(hours) * time.Hour)
	orders, err := s.store.Orders().ListSince(ctx, since)
	if err != nil {
		return nil, storeFailure("failed to load recent orders", err)
	}
	return orders, nil
}

// CRMReport counts customers and orders and sums revenue of non-cancelled orders
func (s *reportService) CRMReport(ctx context.Context) (CRMReport, error) {
	var report CRMReport
	var err error

	if report.TotalCustomers, err = s.store.Customers().Count(ctx); err != nil {
		return CRMReport{}, storeFailure("failed to count customers", err)
	}
	if report.TotalOrders, err = s.store.Orders().Count(ctx); err != nil {
		return CRMReport{}, storeFailure("failed to count orders", err)
	}
	if report.TotalRevenue, err = s.store.Orders().Revenue(ctx); err != nil {
		return CRMReport{}, storeFailure("failed to sum revenue", err)
	}
	return report, nil
}

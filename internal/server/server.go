package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"crm-backend/internal/config"
	"crm-backend/internal/database"
	custommiddleware "crm-backend/internal/middleware"
	"crm-backend/internal/repository"
	"crm-backend/internal/service"
	"crm-backend/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// HealthChecker reports the state of a backing dependency
type HealthChecker interface {
	Health(ctx context.Context) map[string]string
}

// Services bundles the business services exposed over HTTP
type Services struct {
	Customers service.CustomerService
	Products  service.ProductService
	Orders    service.OrderService
	Inventory service.InventoryService
	Reports   service.ReportService
}

// NewServices wires every service over one store
func NewServices(store repository.Store, cfg *config.Config) Services {
	return Services{
		Customers: service.NewCustomerService(store),
		Products:  service.NewProductService(store),
		Orders:    service.NewOrderService(store, cfg.Orders.DecrementStock),
		Inventory: service.NewInventoryService(store),
		Reports:   service.NewReportService(store),
	}
}

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *database.Service
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *database.Service) *Server {
	var rdb *redis.Client
	if addr := cfg.Redis.Addr(); addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	services := NewServices(repository.NewStore(db.DB()), cfg)

	return &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      NewRouter(cfg, logger, services, db, rdb),
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  rdb,
	}
}

// NewRouter builds the HTTP routes. rdb may be nil, which disables rate limiting.
func NewRouter(cfg *config.Config, logger *zap.Logger, services Services, health HealthChecker, rdb *redis.Client) http.Handler {
	router := chi.NewRouter()

	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.Server.Env == "development"))

	router.Get("/health", healthHandler(health))

	router.Group(func(r chi.Router) {
		if rdb != nil {
			r.Use(custommiddleware.RateLimitMiddleware(rdb, custommiddleware.RateLimitConfig{
				RequestsPerWindow: cfg.RateLimit.RequestsPerWindow,
				Window:            cfg.RateLimit.Window,
				KeyPrefix:         "crm:ratelimit",
			}, logger))
		}

		transport.NewCustomerHandler(services.Customers, logger).RegisterRoutes(r)
		transport.NewProductHandler(services.Products, logger).RegisterRoutes(r)
		transport.NewOrderHandler(services.Orders, services.Reports, logger).RegisterRoutes(r)
		transport.NewInventoryHandler(services.Inventory, services.Reports, logger).RegisterRoutes(r)
	})

	return router
}

func healthHandler(health HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		db := health.Health(r.Context())

		status, code := "ok", http.StatusOK
		if db["status"] != "up" {
			status, code = "degraded", http.StatusServiceUnavailable
		}

		custommiddleware.RespondWithJSON(w, code, map[string]interface{}{
			"status":   status,
			"database": db,
		})
	}
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	_ = s.logger.Sync()
	return nil
}

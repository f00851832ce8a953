package transport

import (
	"errors"
	"io"
	"net/http"

	"crm-backend/internal/middleware"
	"crm-backend/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// InventoryHandler exposes stock maintenance and reporting
type InventoryHandler struct {
	inventoryService service.InventoryService
	reportService    service.ReportService
	logger           *zap.Logger
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventoryService service.InventoryService, reportService service.ReportService, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
		reportService:    reportService,
		logger:           logger,
	}
}

// RegisterRoutes registers inventory and report routes
func (h *InventoryHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/inventory/replenish", h.Replenish)
	r.Get("/api/reports/crm", h.CRMReport)
}

// Replenish raises the stock of every low-stock product. The body is optional.
func (h *InventoryHandler) Replenish(w http.ResponseWriter, r *http.Request) {
	var req ReplenishRequest
	if err := middleware.DecodeAndValidate(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		middleware.RespondWithJSON(w, http.StatusBadRequest, ReplenishPayload{Message: requestError(err)})
		return
	}

	minStock, incrementBy := service.DefaultMinStock, service.DefaultIncrementBy
	if req.MinStock != nil {
		minStock = *req.MinStock
	}
	if req.IncrementBy != nil {
		incrementBy = *req.IncrementBy
	}

	result, err := h.inventoryService.ReplenishLowStock(r.Context(), minStock, incrementBy)
	if err != nil {
		logFailure(h.logger, "Stock replenishment failed", err,
			zap.Int("min_stock", minStock),
			zap.Int("increment_by", incrementBy),
		)
		middleware.RespondWithJSON(w, statusFor(err), ReplenishPayload{Message: result.Message})
		return
	}

	h.logger.Info("Stock replenished",
		zap.Int("updated_count", result.UpdatedCount),
		zap.Int("min_stock", minStock),
		zap.Int("increment_by", incrementBy),
	)
	middleware.RespondWithJSON(w, http.StatusOK, ReplenishPayload{
		Success:      result.Success,
		Message:      result.Message,
		UpdatedCount: result.UpdatedCount,
	})
}

// CRMReport returns customer, order and revenue totals
func (h *InventoryHandler) CRMReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportService.CRMReport(r.Context())
	if err != nil {
		logFailure(h.logger, "Failed to build CRM report", err)
		respondServiceError(w, r, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toReportResponse(report))
}

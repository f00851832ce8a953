package transport

import (
	"net/http"
	"strconv"

	"crm-backend/internal/middleware"
	"crm-backend/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultRecentHours = 24

// OrderHandler handles HTTP requests for orders
type OrderHandler struct {
	orderService  service.OrderService
	reportService service.ReportService
	logger        *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService, reportService service.ReportService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService:  orderService,
		reportService: reportService,
		logger:        logger,
	}
}

// RegisterRoutes registers all order routes
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Post("/", h.CreateOrder)
		r.Get("/", h.ListOrders)
		r.Get("/recent", h.RecentOrders)
		r.Get("/{id}", h.GetOrder)
	})
}

// CreateOrder assembles an order from a customer and a list of products
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := middleware.DecodeAndValidate(w, r, &req); err != nil {
		h.logger.Debug("Order validation failed", zap.Error(err))
		middleware.RespondWithJSON(w, http.StatusBadRequest, OrderPayload{Errors: errorText(requestError(err))})
		return
	}

	// Both parse: the validator already checked the uuid format.
	customerID := uuid.MustParse(req.CustomerID)
	productIDs := make([]uuid.UUID, len(req.ProductIDs))
	for i, id := range req.ProductIDs {
		productIDs[i] = uuid.MustParse(id)
	}

	order, err := h.orderService.CreateOrder(r.Context(), customerID, productIDs, req.Quantities)
	if err != nil {
		logFailure(h.logger, "Order creation failed", err,
			zap.String("customer_id", req.CustomerID),
			zap.Int("lines", len(productIDs)),
		)
		middleware.RespondWithJSON(w, statusFor(err), OrderPayload{Errors: errorText(service.Message(err))})
		return
	}

	h.logger.Info("Order created",
		zap.String("order_id", order.ID.String()),
		zap.String("total", money(order.TotalAmount)),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, OrderPayload{
		Order:   toOrderResponse(order),
		Success: true,
	})
}

// GetOrder returns one order with its lines
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), id)
	if err != nil {
		logFailure(h.logger, "Failed to get order", err)
		respondServiceError(w, r, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toOrderResponse(order))
}

// ListOrders returns one page of orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)

	orders, total, err := h.orderService.ListOrders(r.Context(), page, pageSize)
	if err != nil {
		logFailure(h.logger, "Failed to list orders", err)
		respondServiceError(w, r, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ListResponse[*OrderResponse]{
		Items:    mapSlice(orders, toOrderResponse),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// RecentOrders returns orders placed within ?hours= (default 24)
func (h *OrderHandler) RecentOrders(w http.ResponseWriter, r *http.Request) {
	hours := defaultRecentHours
	if raw := r.URL.Query().Get("hours"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			middleware.RespondWithError(w, r, http.StatusBadRequest, "hours must be an integer")
			return
		}
		hours = v
	}

	orders, err := h.reportService.RecentOrders(r.Context(), hours)
	if err != nil {
		logFailure(h.logger, "Failed to load recent orders", err)
		respondServiceError(w, r, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, mapSlice(orders, toOrderResponse))
}

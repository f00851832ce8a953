package transport

import (
	"net/http"

	"crm-backend/internal/middleware"
	"crm-backend/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CustomerHandler handles HTTP requests for customer operations
type CustomerHandler struct {
	customerService service.CustomerService
	logger          *zap.Logger
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService service.CustomerService, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		logger:          logger,
	}
}

// RegisterRoutes registers all customer routes
func (h *CustomerHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/customers", func(r chi.Router) {
		r.Post("/", h.CreateCustomer)
		r.Get("/", h.ListCustomers)
		r.Get("/{id}", h.GetCustomer)
	})
}

// CreateCustomer handles customer creation
func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if err := middleware.DecodeAndValidate(w, r, &req); err != nil {
		h.logger.Debug("Customer validation failed", zap.Error(err))
		middleware.RespondWithJSON(w, http.StatusBadRequest, CustomerPayload{Errors: errorText(requestError(err))})
		return
	}

	customer, err := h.customerService.CreateCustomer(r.Context(), service.CreateCustomerInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
	})
	if err != nil {
		logFailure(h.logger, "Customer creation failed", err, zap.String("email", req.Email))
		middleware.RespondWithJSON(w, statusFor(err), CustomerPayload{Errors: errorText(service.Message(err))})
		return
	}

	h.logger.Info("Customer created", zap.String("customer_id", customer.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, CustomerPayload{
		Customer: toCustomerResponse(customer),
		Success:  true,
	})
}

// GetCustomer returns one customer
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	customer, err := h.customerService.GetCustomer(r.Context(), id)
	if err != nil {
		logFailure(h.logger, "Failed to get customer", err)
		respondServiceError(w, r, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toCustomerResponse(customer))
}

// ListCustomers returns one page of customers
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)

	customers, total, err := h.customerService.ListCustomers(r.Context(), page, pageSize)
	if err != nil {
		logFailure(h.logger, "Failed to list customers", err)
		respondServiceError(w, r, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ListResponse[*CustomerResponse]{
		Items:    mapSlice(customers, toCustomerResponse),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

package transport

import (
	"net/http"

	"crm-backend/internal/middleware"
	"crm-backend/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductHandler handles HTTP requests for catalog products
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Post("/", h.CreateProduct)
		r.Get("/", h.ListProducts)
		r.Get("/{id}", h.GetProduct)
	})
}

// CreateProduct handles product creation
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := middleware.DecodeAndValidate(w, r, &req); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))
		middleware.RespondWithJSON(w, http.StatusBadRequest, ProductPayload{Errors: errorText(requestError(err))})
		return
	}

	product, err := h.productService.CreateProduct(r.Context(), service.CreateProductInput{
		Name:          req.Name,
		Description:   req.Description,
		Price:         *req.Price,
		StockQuantity: req.StockQuantity,
		IsAvailable:   req.IsAvailable,
	})
	if err != nil {
		logFailure(h.logger, "Product creation failed", err, zap.String("name", req.Name))
		middleware.RespondWithJSON(w, statusFor(err), ProductPayload{Errors: errorText(service.Message(err))})
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, ProductPayload{
		Product: toProductResponse(product),
		Success: true,
	})
}

// GetProduct returns one product
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(r.Context(), id)
	if err != nil {
		logFailure(h.logger, "Failed to get product", err)
		respondServiceError(w, r, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toProductResponse(product))
}

// ListProducts returns one page of products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)

	products, total, err := h.productService.ListProducts(r.Context(), page, pageSize)
	if err != nil {
		logFailure(h.logger, "Failed to list products", err)
		respondServiceError(w, r, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ListResponse[*ProductResponse]{
		Items:    mapSlice(products, toProductResponse),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

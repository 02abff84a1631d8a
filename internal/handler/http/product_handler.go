package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/quickmemo/internal/product"
)

type CreateProductRequest struct {
	Name        string            `json:"name" validate:"required"`
	SKU         string            `json:"sku"`
	Description string            `json:"description"`
	Price       float64           `json:"price" validate:"gte=0"`
	Stock       int               `json:"stock" validate:"gte=0"`
	Attributes  map[string]string `json:"attributes"`
	IsActive    *bool             `json:"is_active"`
}

type UpdateProductRequest struct {
	Name        *string           `json:"name" validate:"omitempty,min=1"`
	SKU         *string           `json:"sku"`
	Description *string           `json:"description"`
	Price       *float64          `json:"price" validate:"omitempty,gte=0"`
	Attributes  map[string]string `json:"attributes"`
	IsActive    *bool             `json:"is_active"`
}

type ProductHandler struct {
	svc      product.Service
	validate *validator.Validate
}

func NewProductHandler(svc product.Service) *ProductHandler {
	return &ProductHandler{svc: svc, validate: validator.New()}
}

func (h *ProductHandler) RegisterRoutes(router chi.Router) {
	router.Post("/products", h.handleCreateProduct)
	router.Get("/products", h.handleListProducts)
	router.Get("/products/{id}", h.handleGetProductByID)
	router.Patch("/products/{id}", h.handleUpdateProduct)
	router.Delete("/products/{id}", h.handleDeleteProduct)
}

func (h *ProductHandler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var requestPayload CreateProductRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&requestPayload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode create product request")
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithValidationError(w, err)
		return
	}

	isActive := true
	if requestPayload.IsActive != nil {
		isActive = *requestPayload.IsActive
	}

	p := &product.Product{
		SellerID:    sellerIDFromContext(r.Context()),
		Name:        requestPayload.Name,
		SKU:         requestPayload.SKU,
		Description: requestPayload.Description,
		Price:       requestPayload.Price,
		Stock:       requestPayload.Stock,
		Attributes:  requestPayload.Attributes,
		IsActive:    isActive,
	}

	created, err := h.svc.CreateProduct(r.Context(), p)
	if err != nil {
		respondWithServiceError(w, err, "failed to create product")
		return
	}

	respondWithData(w, http.StatusCreated, created)
}

func (h *ProductHandler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.ListProducts(r.Context(), sellerIDFromContext(r.Context()))
	if err != nil {
		respondWithServiceError(w, err, "failed to list products")
		return
	}

	respondWithData(w, http.StatusOK, products)
}

func (h *ProductHandler) handleGetProductByID(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	found, err := h.svc.GetProductByID(r.Context(), sellerIDFromContext(r.Context()), productID)
	if err != nil {
		respondWithServiceError(w, err, "failed to get product")
		return
	}

	respondWithData(w, http.StatusOK, found)
}

func (h *ProductHandler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var requestPayload UpdateProductRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithValidationError(w, err)
		return
	}

	patch := product.Patch{
		Name:        requestPayload.Name,
		SKU:         requestPayload.SKU,
		Description: requestPayload.Description,
		Price:       requestPayload.Price,
		Attributes:  requestPayload.Attributes,
		IsActive:    requestPayload.IsActive,
	}

	updated, err := h.svc.UpdateProduct(r.Context(), sellerIDFromContext(r.Context()), productID, patch)
	if err != nil {
		respondWithServiceError(w, err, "failed to update product")
		return
	}

	respondWithData(w, http.StatusOK, updated)
}

func (h *ProductHandler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteProduct(r.Context(), sellerIDFromContext(r.Context()), productID); err != nil {
		respondWithServiceError(w, err, "failed to delete product")
		return
	}

	respondWithData(w, http.StatusOK, map[string]string{"id": productID.String()})
}

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vasiliy-maslov/quickmemo/internal/storefront"
)

// StorefrontHandler отдаёт публичную витрину по slug магазина.
// Эти маршруты не требуют X-Seller-ID.
type StorefrontHandler struct {
	svc storefront.Service
}

func NewStorefrontHandler(svc storefront.Service) *StorefrontHandler {
	return &StorefrontHandler{svc: svc}
}

func (h *StorefrontHandler) RegisterRoutes(router chi.Router) {
	router.Get("/store/{slug}", h.handleGetShop)
	router.Get("/store/{slug}/products", h.handleGetCatalog)
}

func (h *StorefrontHandler) handleGetShop(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		respondWithError(w, http.StatusBadRequest, "slug is required")
		return
	}

	shop, err := h.svc.GetShop(r.Context(), slug)
	if err != nil {
		respondWithServiceError(w, err, "failed to get shop")
		return
	}

	respondWithData(w, http.StatusOK, shop)
}

func (h *StorefrontHandler) handleGetCatalog(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		respondWithError(w, http.StatusBadRequest, "slug is required")
		return
	}

	catalog, err := h.svc.GetCatalog(r.Context(), slug)
	if err != nil {
		respondWithServiceError(w, err, "failed to get catalog")
		return
	}

	respondWithData(w, http.StatusOK, catalog)
}

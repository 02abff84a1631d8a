package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/quickmemo/internal/customer"
	"github.com/vasiliy-maslov/quickmemo/internal/invoice"
	"github.com/vasiliy-maslov/quickmemo/internal/order"
	"github.com/vasiliy-maslov/quickmemo/internal/product"
	"github.com/vasiliy-maslov/quickmemo/internal/storefront"
)

type successResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func respondWithData(w http.ResponseWriter, code int, data any) {
	respondWithJSON(w, code, successResponse{Success: true, Data: data})
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, errorResponse{Success: false, Error: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"error":"failed to marshal response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func mapErrorToStatusCode(err error) int {
	var stockErr *order.InsufficientStockError

	switch {
	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, order.ErrCustomerNotFound),
		errors.Is(err, order.ErrProductNotFound),
		errors.Is(err, invoice.ErrInvoiceNotFound),
		errors.Is(err, invoice.ErrOrderNotFound),
		errors.Is(err, product.ErrProductNotFound),
		errors.Is(err, customer.ErrCustomerNotFound),
		errors.Is(err, storefront.ErrShopNotFound):
		return http.StatusNotFound
	case errors.Is(err, invoice.ErrInvoiceExists),
		errors.Is(err, invoice.ErrInvoiceVoid),
		errors.Is(err, customer.ErrCustomerInUse):
		return http.StatusConflict
	case errors.As(err, &stockErr):
		return http.StatusConflict
	case errors.Is(err, order.ErrOrderCancelled),
		errors.Is(err, order.ErrEmptyOrder),
		errors.Is(err, order.ErrInvalidStatusTransition),
		errors.Is(err, invoice.ErrInvalidStatus):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondWithServiceError отдаёт клиенту текст известных доменных ошибок,
// для неожиданных — только fallback, без внутренних деталей.
func respondWithServiceError(w http.ResponseWriter, err error, fallback string) {
	statusCode := mapErrorToStatusCode(err)
	if statusCode == http.StatusInternalServerError {
		respondWithError(w, statusCode, fallback)
		return
	}
	respondWithError(w, statusCode, err.Error())
}

func formatValidationErrors(validationErrors validator.ValidationErrors) string {
	details := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		details = append(details, fmt.Sprintf("field '%s' failed on the '%s' rule", fieldErr.Field(), fieldErr.Tag()))
	}
	return "validation failed: " + strings.Join(details, "; ")
}

func respondWithValidationError(w http.ResponseWriter, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		respondWithError(w, http.StatusBadRequest, formatValidationErrors(validationErrors))
		return
	}

	log.Error().Err(err).Msg("Unexpected error type during validation")
	respondWithError(w, http.StatusInternalServerError, "internal validation error")
}

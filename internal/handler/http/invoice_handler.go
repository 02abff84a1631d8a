package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/quickmemo/internal/invoice"
)

type CreateInvoiceRequest struct {
	// TransactionID — идентификатор заказа, по которому выписывается счёт.
	TransactionID string `json:"transaction_id" validate:"required,uuid"`
	DueDate       string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Notes         string `json:"notes"`
}

type UpdateInvoiceStatusRequest struct {
	Status string  `json:"status" validate:"required"`
	Notes  *string `json:"notes"`
}

type RecordPaymentRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

type InvoiceHandler struct {
	svc      invoice.Service
	validate *validator.Validate
}

func NewInvoiceHandler(svc invoice.Service) *InvoiceHandler {
	return &InvoiceHandler{svc: svc, validate: validator.New()}
}

func (h *InvoiceHandler) RegisterRoutes(router chi.Router) {
	router.Post("/invoices", h.handleCreateInvoice)
	router.Get("/invoices", h.handleListInvoices)
	router.Get("/invoices/{id}", h.handleGetInvoiceByID)
	router.Patch("/invoices/{id}/status", h.handleUpdateStatus)
	router.Patch("/invoices/{id}/payment", h.handleRecordPayment)
	router.Delete("/invoices/{id}", h.handleVoidInvoice)
}

func (h *InvoiceHandler) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	var requestPayload CreateInvoiceRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&requestPayload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode create invoice request")
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithValidationError(w, err)
		return
	}

	orderID, err := uuid.FromString(requestPayload.TransactionID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid transaction_id")
		return
	}

	input := invoice.CreateInvoiceInput{
		OrderID: orderID,
		Notes:   requestPayload.Notes,
	}

	if requestPayload.DueDate != "" {
		dueDate, err := time.Parse("2006-01-02", requestPayload.DueDate)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid due_date, expected YYYY-MM-DD")
			return
		}
		input.DueDate = &dueDate
	}

	created, err := h.svc.CreateInvoice(r.Context(), sellerIDFromContext(r.Context()), input)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create invoice via service")
		respondWithServiceError(w, err, "failed to create invoice")
		return
	}

	respondWithData(w, http.StatusCreated, created)
}

func (h *InvoiceHandler) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.svc.ListInvoices(r.Context(), sellerIDFromContext(r.Context()))
	if err != nil {
		respondWithServiceError(w, err, "failed to list invoices")
		return
	}

	respondWithData(w, http.StatusOK, invoices)
}

func (h *InvoiceHandler) handleGetInvoiceByID(w http.ResponseWriter, r *http.Request) {
	invoiceID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	found, err := h.svc.GetInvoiceByID(r.Context(), sellerIDFromContext(r.Context()), invoiceID)
	if err != nil {
		respondWithServiceError(w, err, "failed to get invoice")
		return
	}

	respondWithData(w, http.StatusOK, found)
}

func (h *InvoiceHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	invoiceID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var requestPayload UpdateInvoiceStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithValidationError(w, err)
		return
	}

	updated, err := h.svc.UpdateInvoiceStatus(
		r.Context(),
		sellerIDFromContext(r.Context()),
		invoiceID,
		invoice.InvoiceStatus(requestPayload.Status),
		requestPayload.Notes,
	)
	if err != nil {
		respondWithServiceError(w, err, "failed to update invoice status")
		return
	}

	respondWithData(w, http.StatusOK, updated)
}

func (h *InvoiceHandler) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	invoiceID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var requestPayload RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithValidationError(w, err)
		return
	}

	updated, err := h.svc.RecordPayment(r.Context(), sellerIDFromContext(r.Context()), invoiceID, requestPayload.Amount)
	if err != nil {
		respondWithServiceError(w, err, "failed to record payment")
		return
	}

	respondWithData(w, http.StatusOK, updated)
}

// handleVoidInvoice гасит счёт, физического удаления нет.
func (h *InvoiceHandler) handleVoidInvoice(w http.ResponseWriter, r *http.Request) {
	invoiceID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	voided, err := h.svc.VoidInvoice(r.Context(), sellerIDFromContext(r.Context()), invoiceID)
	if err != nil {
		respondWithServiceError(w, err, "failed to void invoice")
		return
	}

	respondWithData(w, http.StatusOK, voided)
}

package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/quickmemo/internal/customer"
)

type CreateCustomerRequest struct {
	Name    string `json:"name" validate:"required,min=2"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type UpdateCustomerRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=2"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

type CustomerHandler struct {
	svc      customer.Service
	validate *validator.Validate
}

func NewCustomerHandler(svc customer.Service) *CustomerHandler {
	return &CustomerHandler{svc: svc, validate: validator.New()}
}

func (h *CustomerHandler) RegisterRoutes(router chi.Router) {
	router.Post("/customers", h.handleCreateCustomer)
	router.Get("/customers", h.handleListCustomers)
	router.Get("/customers/{id}", h.handleGetCustomerByID)
	router.Patch("/customers/{id}", h.handleUpdateCustomer)
	router.Delete("/customers/{id}", h.handleDeleteCustomer)
}

func (h *CustomerHandler) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var requestPayload CreateCustomerRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&requestPayload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode create customer request")
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithValidationError(w, err)
		return
	}

	c := &customer.Customer{
		SellerID: sellerIDFromContext(r.Context()),
		Name:     requestPayload.Name,
		Email:    requestPayload.Email,
		Phone:    requestPayload.Phone,
		Address:  requestPayload.Address,
	}

	created, err := h.svc.CreateCustomer(r.Context(), c)
	if err != nil {
		respondWithServiceError(w, err, "failed to create customer")
		return
	}

	respondWithData(w, http.StatusCreated, created)
}

func (h *CustomerHandler) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.svc.ListCustomers(r.Context(), sellerIDFromContext(r.Context()))
	if err != nil {
		respondWithServiceError(w, err, "failed to list customers")
		return
	}

	respondWithData(w, http.StatusOK, customers)
}

func (h *CustomerHandler) handleGetCustomerByID(w http.ResponseWriter, r *http.Request) {
	customerID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	found, err := h.svc.GetCustomerByID(r.Context(), sellerIDFromContext(r.Context()), customerID)
	if err != nil {
		respondWithServiceError(w, err, "failed to get customer")
		return
	}

	respondWithData(w, http.StatusOK, found)
}

func (h *CustomerHandler) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var requestPayload UpdateCustomerRequest

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

	patch := customer.Patch{
		Name:    requestPayload.Name,
		Email:   requestPayload.Email,
		Phone:   requestPayload.Phone,
		Address: requestPayload.Address,
	}

	updated, err := h.svc.UpdateCustomer(r.Context(), sellerIDFromContext(r.Context()), customerID, patch)
	if err != nil {
		respondWithServiceError(w, err, "failed to update customer")
		return
	}

	respondWithData(w, http.StatusOK, updated)
}

func (h *CustomerHandler) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteCustomer(r.Context(), sellerIDFromContext(r.Context()), customerID); err != nil {
		respondWithServiceError(w, err, "failed to delete customer")
		return
	}

	respondWithData(w, http.StatusOK, map[string]string{"id": customerID.String()})
}

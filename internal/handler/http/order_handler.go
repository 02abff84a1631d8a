package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/quickmemo/internal/order"
)

type CreateOrderItemRequest struct {
	ProductID    string  `json:"product_id" validate:"required,uuid"`
	Quantity     int     `json:"quantity" validate:"required,gt=0"`
	UnitPrice    float64 `json:"unit_price" validate:"gte=0"`
	ItemDiscount float64 `json:"item_discount" validate:"gte=0"`
}

type CreateOrderRequest struct {
	CustomerID      string                   `json:"customer_id" validate:"required,uuid"`
	Items           []CreateOrderItemRequest `json:"items" validate:"required,min=1,dive"`
	ShippingAmount  float64                  `json:"shipping_amount" validate:"gte=0"`
	TaxAmount       float64                  `json:"tax_amount" validate:"gte=0"`
	OrderSource     string                   `json:"order_source"`
	PaymentMethodID string                   `json:"payment_method_id"`
	GenerateInvoice bool                     `json:"generate_invoice"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type UpdateOrderChargesRequest struct {
	ShippingAmount *float64 `json:"shipping_amount" validate:"omitempty,gte=0"`
	TaxAmount      *float64 `json:"tax_amount" validate:"omitempty,gte=0"`
}

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	svc      order.Service
	validate *validator.Validate
}

func NewOrderHandler(svc order.Service) *OrderHandler {
	return &OrderHandler{svc: svc, validate: validator.New()}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Post("/orders", h.handleCreateOrder)
	router.Get("/orders", h.handleListOrders)
	router.Get("/orders/{id}", h.handleGetOrderByID)
	router.Patch("/orders/{id}/status", h.handleUpdateStatus)
	router.Patch("/orders/{id}/cancel", h.handleCancelOrder)
	router.Patch("/orders/{id}/charges", h.handleUpdateCharges)
}

func (h *OrderHandler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var requestPayload CreateOrderRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&requestPayload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode create order request")
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithValidationError(w, err)
		return
	}

	customerID, err := uuid.FromString(requestPayload.CustomerID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid customer_id")
		return
	}

	input := order.CreateOrderInput{
		CustomerID:      customerID,
		Items:           make([]order.CreateOrderItemInput, 0, len(requestPayload.Items)),
		ShippingAmount:  requestPayload.ShippingAmount,
		TaxAmount:       requestPayload.TaxAmount,
		OrderSource:     requestPayload.OrderSource,
		PaymentMethodID: requestPayload.PaymentMethodID,
		GenerateInvoice: requestPayload.GenerateInvoice,
	}

	for _, item := range requestPayload.Items {
		productID, err := uuid.FromString(item.ProductID)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid product_id in items")
			return
		}
		input.Items = append(input.Items, order.CreateOrderItemInput{
			ProductID:    productID,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			ItemDiscount: item.ItemDiscount,
		})
	}

	created, err := h.svc.CreateOrder(r.Context(), sellerIDFromContext(r.Context()), input)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create order via service")
		respondWithServiceError(w, err, "failed to create order")
		return
	}

	respondWithData(w, http.StatusCreated, created)
}

func (h *OrderHandler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListOrders(r.Context(), sellerIDFromContext(r.Context()))
	if err != nil {
		log.Error().Err(err).Msg("Failed to list orders via service")
		respondWithServiceError(w, err, "failed to list orders")
		return
	}

	respondWithData(w, http.StatusOK, orders)
}

func (h *OrderHandler) handleGetOrderByID(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	found, err := h.svc.GetOrderByID(r.Context(), sellerIDFromContext(r.Context()), orderID)
	if err != nil {
		respondWithServiceError(w, err, "failed to get order")
		return
	}

	respondWithData(w, http.StatusOK, found)
}

func (h *OrderHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var requestPayload UpdateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithValidationError(w, err)
		return
	}

	updated, err := h.svc.UpdateOrderStatus(r.Context(), sellerIDFromContext(r.Context()), orderID, order.OrderStatus(requestPayload.Status))
	if err != nil {
		respondWithServiceError(w, err, "failed to update order status")
		return
	}

	respondWithData(w, http.StatusOK, updated)
}

func (h *OrderHandler) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	cancelled, err := h.svc.CancelOrder(r.Context(), sellerIDFromContext(r.Context()), orderID)
	if err != nil {
		respondWithServiceError(w, err, "failed to cancel order")
		return
	}

	respondWithData(w, http.StatusOK, cancelled)
}

func (h *OrderHandler) handleUpdateCharges(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var requestPayload UpdateOrderChargesRequest

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

	updated, err := h.svc.UpdateOrderCharges(r.Context(), sellerIDFromContext(r.Context()), orderID, order.ChargesPatch{
		ShippingAmount: requestPayload.ShippingAmount,
		TaxAmount:      requestPayload.TaxAmount,
	})
	if err != nil {
		respondWithServiceError(w, err, "failed to update order charges")
		return
	}

	respondWithData(w, http.StatusOK, updated)
}

func parseIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idParam := chi.URLParam(r, "id")

	id, err := uuid.FromString(idParam)
	if err != nil {
		log.Warn().Err(err).Str("id", idParam).Msg("Failed to parse id parameter from URL")
		respondWithError(w, http.StatusBadRequest, "invalid id parameter")
		return uuid.Nil, false
	}

	return id, true
}

package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrEmptyOrder              = errors.New("order must contain at least one item")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
)

var allowedTransitions = map[OrderStatus]map[OrderStatus]bool{
	StatusPending: {
		StatusConfirmed: true,
	},
	StatusConfirmed: {
		StatusShipped: true,
	},
	StatusShipped: {
		StatusDelivered: true,
	},
	StatusDelivered: {},
	StatusCancelled: {},
}

// InvoiceCreator выписывает счёт по уже зафиксированному заказу.
// Реализация живёт в пакете invoice, интерфейс здесь, чтобы не было цикла.
type InvoiceCreator interface {
	CreateForOrder(ctx context.Context, sellerID, orderID uuid.UUID) error
}

type Service interface {
	CreateOrder(ctx context.Context, sellerID uuid.UUID, input CreateOrderInput) (*Order, error)
	GetOrderByID(ctx context.Context, sellerID, id uuid.UUID) (*Order, error)
	ListOrders(ctx context.Context, sellerID uuid.UUID) ([]Order, error)
	CancelOrder(ctx context.Context, sellerID, id uuid.UUID) (*Order, error)
	UpdateOrderStatus(ctx context.Context, sellerID, id uuid.UUID, newStatus OrderStatus) (*Order, error)
	UpdateOrderCharges(ctx context.Context, sellerID, id uuid.UUID, patch ChargesPatch) (*Order, error)
}

type service struct {
	repo     Repository
	invoices InvoiceCreator
}

// NewService создаёт сервис заказов. invoices может быть nil,
// тогда автоматическая выписка счетов отключена.
func NewService(repo Repository, invoices InvoiceCreator) Service {
	return &service{repo: repo, invoices: invoices}
}

func (s *service) CreateOrder(ctx context.Context, sellerID uuid.UUID, input CreateOrderInput) (*Order, error) {
	if len(input.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	if input.CustomerID == uuid.Nil {
		return nil, errors.New("service: customer id is required")
	}
	if input.ShippingAmount < 0 || input.TaxAmount < 0 {
		return nil, errors.New("service: shipping and tax amounts cannot be negative")
	}

	items := make([]OrderItem, 0, len(input.Items))
	itemsTotal := 0.0

	for _, in := range input.Items {
		if in.ProductID == uuid.Nil {
			return nil, errors.New("service: product id in order item cannot be nil")
		}
		if in.Quantity <= 0 {
			return nil, fmt.Errorf("service: quantity for product %s must be greater than zero", in.ProductID)
		}
		if in.UnitPrice < 0 {
			return nil, fmt.Errorf("service: unit price for product %s cannot be negative", in.ProductID)
		}
		if in.ItemDiscount < 0 {
			return nil, fmt.Errorf("service: discount for product %s cannot be negative", in.ProductID)
		}

		subtotal := float64(in.Quantity)*in.UnitPrice - in.ItemDiscount
		if subtotal < 0 {
			return nil, fmt.Errorf("service: discount for product %s exceeds the line amount", in.ProductID)
		}

		items = append(items, OrderItem{
			ProductID:    in.ProductID,
			Quantity:     in.Quantity,
			UnitPrice:    in.UnitPrice,
			ItemDiscount: in.ItemDiscount,
			Subtotal:     subtotal,
		})
		itemsTotal += subtotal
	}

	orderSource := input.OrderSource
	if orderSource == "" {
		orderSource = "manual"
	}

	o := &Order{
		SellerID:       sellerID,
		CustomerID:     input.CustomerID,
		Status:         StatusPending,
		OrderSource:    orderSource,
		PaymentMethod:  input.PaymentMethodID,
		ShippingAmount: input.ShippingAmount,
		TaxAmount:      input.TaxAmount,
		TotalAmount:    itemsTotal + input.ShippingAmount + input.TaxAmount,
		Items:          items,
	}

	if err := s.repo.CreateOrder(ctx, o); err != nil {
		var stockErr *InsufficientStockError
		if errors.Is(err, ErrCustomerNotFound) || errors.Is(err, ErrProductNotFound) || errors.As(err, &stockErr) {
			return nil, err
		}
		log.Error().Err(err).Stringer("seller_id", sellerID).Msg("service: failed to create order")
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	log.Info().Stringer("order_id", o.ID).Stringer("seller_id", sellerID).Float64("total", o.TotalAmount).Msg("service: order created")

	// Счёт выписывается синхронно в том же запросе. Заказ уже зафиксирован,
	// поэтому неудача выписки его не отменяет.
	if input.GenerateInvoice && s.invoices != nil {
		if err := s.invoices.CreateForOrder(ctx, sellerID, o.ID); err != nil {
			log.Error().Err(err).Stringer("order_id", o.ID).Msg("service: failed to auto-generate invoice for order")
		}
	}

	return o, nil
}

func (s *service) GetOrderByID(ctx context.Context, sellerID, id uuid.UUID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, sellerID, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to fetch order")
		return nil, fmt.Errorf("service: failed to fetch order: %w", err)
	}

	return o, nil
}

func (s *service) ListOrders(ctx context.Context, sellerID uuid.UUID) ([]Order, error) {
	orders, err := s.repo.ListBySeller(ctx, sellerID)
	if err != nil {
		log.Error().Err(err).Stringer("seller_id", sellerID).Msg("service: failed to list orders")
		return nil, fmt.Errorf("service: failed to list orders: %w", err)
	}

	return orders, nil
}

func (s *service) CancelOrder(ctx context.Context, sellerID, id uuid.UUID) (*Order, error) {
	o, err := s.repo.Cancel(ctx, sellerID, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) || errors.Is(err, ErrOrderCancelled) {
			return nil, err
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to cancel order")
		return nil, fmt.Errorf("service: failed to cancel order: %w", err)
	}

	log.Info().Stringer("order_id", id).Msg("service: order cancelled, stock restored")

	return o, nil
}

func (s *service) UpdateOrderStatus(ctx context.Context, sellerID, id uuid.UUID, newStatus OrderStatus) (*Order, error) {
	if newStatus == StatusCancelled {
		// Отмена идёт только через CancelOrder, там возврат остатков.
		return nil, fmt.Errorf("%w: use the cancel operation to cancel an order", ErrInvalidStatusTransition)
	}

	current, err := s.repo.GetByID(ctx, sellerID, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to get order for status update")
		return nil, fmt.Errorf("service: failed to get order for status update: %w", err)
	}

	if current.Status == newStatus {
		return current, nil
	}

	if !allowedTransitions[current.Status][newStatus] {
		log.Warn().
			Stringer("order_id", id).
			Stringer("current_status", current.Status).
			Stringer("new_status", newStatus).
			Msg("service: invalid status transition attempt")
		return nil, fmt.Errorf("%w: from %s to %s", ErrInvalidStatusTransition, current.Status, newStatus)
	}

	if err := s.repo.UpdateStatus(ctx, sellerID, id, newStatus); err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to update order status")
		return nil, fmt.Errorf("service: failed to update order status: %w", err)
	}

	current.Status = newStatus

	log.Info().Stringer("order_id", id).Stringer("new_status", newStatus).Msg("service: order status updated")

	return current, nil
}

func (s *service) UpdateOrderCharges(ctx context.Context, sellerID, id uuid.UUID, patch ChargesPatch) (*Order, error) {
	if patch.ShippingAmount != nil && *patch.ShippingAmount < 0 {
		return nil, errors.New("service: shipping amount cannot be negative")
	}
	if patch.TaxAmount != nil && *patch.TaxAmount < 0 {
		return nil, errors.New("service: tax amount cannot be negative")
	}

	o, err := s.repo.UpdateCharges(ctx, sellerID, id, patch)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) || errors.Is(err, ErrOrderCancelled) {
			return nil, err
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to update order charges")
		return nil, fmt.Errorf("service: failed to update order charges: %w", err)
	}

	return o, nil
}

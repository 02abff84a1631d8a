package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

var ErrInvalidStatus = errors.New("invalid invoice status")

// Срок оплаты по умолчанию для счетов, выписанных автоматически после заказа.
const defaultDueDays = 30

type Service interface {
	CreateInvoice(ctx context.Context, sellerID uuid.UUID, input CreateInvoiceInput) (*Invoice, error)
	CreateForOrder(ctx context.Context, sellerID, orderID uuid.UUID) error
	GetInvoiceByID(ctx context.Context, sellerID, id uuid.UUID) (*Invoice, error)
	ListInvoices(ctx context.Context, sellerID uuid.UUID) ([]Invoice, error)
	UpdateInvoiceStatus(ctx context.Context, sellerID, id uuid.UUID, status InvoiceStatus, notes *string) (*Invoice, error)
	RecordPayment(ctx context.Context, sellerID, id uuid.UUID, amount float64) (*Invoice, error)
	VoidInvoice(ctx context.Context, sellerID, id uuid.UUID) (*Invoice, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateInvoice(ctx context.Context, sellerID uuid.UUID, input CreateInvoiceInput) (*Invoice, error) {
	if input.OrderID == uuid.Nil {
		return nil, errors.New("service: order id is required")
	}

	inv := &Invoice{
		SellerID: sellerID,
		OrderID:  input.OrderID,
		DueDate:  input.DueDate,
		Notes:    input.Notes,
	}

	if err := s.repo.Create(ctx, inv); err != nil {
		if errors.Is(err, ErrInvoiceExists) || errors.Is(err, ErrOrderNotFound) {
			return nil, err
		}
		log.Error().Err(err).Stringer("order_id", input.OrderID).Msg("service: failed to create invoice")
		return nil, fmt.Errorf("service: failed to create invoice: %w", err)
	}

	log.Info().
		Stringer("invoice_id", inv.ID).
		Str("invoice_number", inv.InvoiceNumber).
		Stringer("order_id", inv.OrderID).
		Msg("service: invoice created")

	return inv, nil
}

// CreateForOrder выписывает счёт сразу после оформления заказа
// со сроком оплаты через 30 дней.
func (s *service) CreateForOrder(ctx context.Context, sellerID, orderID uuid.UUID) error {
	dueDate := time.Now().UTC().AddDate(0, 0, defaultDueDays)

	_, err := s.CreateInvoice(ctx, sellerID, CreateInvoiceInput{
		OrderID: orderID,
		DueDate: &dueDate,
	})
	return err
}

func (s *service) GetInvoiceByID(ctx context.Context, sellerID, id uuid.UUID) (*Invoice, error) {
	inv, err := s.repo.GetByID(ctx, sellerID, id)
	if err != nil {
		if errors.Is(err, ErrInvoiceNotFound) {
			return nil, ErrInvoiceNotFound
		}
		log.Error().Err(err).Stringer("invoice_id", id).Msg("service: failed to fetch invoice")
		return nil, fmt.Errorf("service: failed to fetch invoice: %w", err)
	}

	return inv, nil
}

func (s *service) ListInvoices(ctx context.Context, sellerID uuid.UUID) ([]Invoice, error) {
	invoices, err := s.repo.ListBySeller(ctx, sellerID)
	if err != nil {
		log.Error().Err(err).Stringer("seller_id", sellerID).Msg("service: failed to list invoices")
		return nil, fmt.Errorf("service: failed to list invoices: %w", err)
	}

	return invoices, nil
}

func (s *service) UpdateInvoiceStatus(ctx context.Context, sellerID, id uuid.UUID, status InvoiceStatus, notes *string) (*Invoice, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	inv, err := s.repo.UpdateStatus(ctx, sellerID, id, status, notes)
	if err != nil {
		if errors.Is(err, ErrInvoiceNotFound) {
			return nil, ErrInvoiceNotFound
		}
		log.Error().Err(err).Stringer("invoice_id", id).Msg("service: failed to update invoice status")
		return nil, fmt.Errorf("service: failed to update invoice status: %w", err)
	}

	log.Info().Stringer("invoice_id", id).Stringer("status", status).Msg("service: invoice status updated")

	return inv, nil
}

func (s *service) RecordPayment(ctx context.Context, sellerID, id uuid.UUID, amount float64) (*Invoice, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("service: payment amount must be positive, got %f", amount)
	}

	inv, err := s.repo.RecordPayment(ctx, sellerID, id, amount)
	if err != nil {
		if errors.Is(err, ErrInvoiceNotFound) || errors.Is(err, ErrInvoiceVoid) {
			return nil, err
		}
		log.Error().Err(err).Stringer("invoice_id", id).Msg("service: failed to record payment")
		return nil, fmt.Errorf("service: failed to record payment: %w", err)
	}

	return inv, nil
}

// VoidInvoice гасит счёт вместо физического удаления, история остаётся.
func (s *service) VoidInvoice(ctx context.Context, sellerID, id uuid.UUID) (*Invoice, error) {
	current, err := s.repo.GetByID(ctx, sellerID, id)
	if err != nil {
		if errors.Is(err, ErrInvoiceNotFound) {
			return nil, ErrInvoiceNotFound
		}
		log.Error().Err(err).Stringer("invoice_id", id).Msg("service: failed to fetch invoice for void")
		return nil, fmt.Errorf("service: failed to fetch invoice for void: %w", err)
	}

	if current.Status == StatusVoid {
		return nil, ErrInvoiceVoid
	}

	inv, err := s.repo.UpdateStatus(ctx, sellerID, id, StatusVoid, nil)
	if err != nil {
		if errors.Is(err, ErrInvoiceNotFound) {
			return nil, ErrInvoiceNotFound
		}
		log.Error().Err(err).Stringer("invoice_id", id).Msg("service: failed to void invoice")
		return nil, fmt.Errorf("service: failed to void invoice: %w", err)
	}

	log.Info().Stringer("invoice_id", id).Msg("service: invoice voided")

	return inv, nil
}

package customer

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

type Service interface {
	CreateCustomer(ctx context.Context, c *Customer) (*Customer, error)
	GetCustomerByID(ctx context.Context, sellerID, id uuid.UUID) (*Customer, error)
	ListCustomers(ctx context.Context, sellerID uuid.UUID) ([]Customer, error)
	UpdateCustomer(ctx context.Context, sellerID, id uuid.UUID, patch Patch) (*Customer, error)
	DeleteCustomer(ctx context.Context, sellerID, id uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateCustomer(ctx context.Context, c *Customer) (*Customer, error) {
	if c.Name == "" {
		return nil, errors.New("service: customer name is required")
	}
	if c.SellerID == uuid.Nil {
		return nil, errors.New("service: seller id is required")
	}

	if err := s.repo.Create(ctx, c); err != nil {
		log.Error().Err(err).Stringer("seller_id", c.SellerID).Msg("service: failed to create customer")
		return nil, fmt.Errorf("service: failed to create customer: %w", err)
	}

	return c, nil
}

func (s *service) GetCustomerByID(ctx context.Context, sellerID, id uuid.UUID) (*Customer, error) {
	c, err := s.repo.GetByID(ctx, sellerID, id)
	if err != nil {
		if errors.Is(err, ErrCustomerNotFound) {
			return nil, ErrCustomerNotFound
		}
		log.Error().Err(err).Stringer("customer_id", id).Msg("service: failed to fetch customer")
		return nil, fmt.Errorf("service: failed to fetch customer: %w", err)
	}

	return c, nil
}

func (s *service) ListCustomers(ctx context.Context, sellerID uuid.UUID) ([]Customer, error) {
	customers, err := s.repo.ListBySeller(ctx, sellerID)
	if err != nil {
		log.Error().Err(err).Stringer("seller_id", sellerID).Msg("service: failed to list customers")
		return nil, fmt.Errorf("service: failed to list customers: %w", err)
	}

	return customers, nil
}

func (s *service) UpdateCustomer(ctx context.Context, sellerID, id uuid.UUID, patch Patch) (*Customer, error) {
	c, err := s.repo.Update(ctx, sellerID, id, patch)
	if err != nil {
		if errors.Is(err, ErrCustomerNotFound) {
			return nil, ErrCustomerNotFound
		}
		log.Error().Err(err).Stringer("customer_id", id).Msg("service: failed to update customer")
		return nil, fmt.Errorf("service: failed to update customer: %w", err)
	}

	return c, nil
}

func (s *service) DeleteCustomer(ctx context.Context, sellerID, id uuid.UUID) error {
	err := s.repo.Delete(ctx, sellerID, id)
	if err != nil {
		if errors.Is(err, ErrCustomerNotFound) || errors.Is(err, ErrCustomerInUse) {
			return err
		}
		log.Error().Err(err).Stringer("customer_id", id).Msg("service: failed to delete customer")
		return fmt.Errorf("service: failed to delete customer: %w", err)
	}

	return nil
}

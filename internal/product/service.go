package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

// CatalogInvalidator сбрасывает кэш витрины после изменения каталога.
type CatalogInvalidator interface {
	InvalidateCatalog(ctx context.Context, sellerID uuid.UUID)
}

type Service interface {
	CreateProduct(ctx context.Context, p *Product) (*Product, error)
	GetProductByID(ctx context.Context, sellerID, id uuid.UUID) (*Product, error)
	ListProducts(ctx context.Context, sellerID uuid.UUID) ([]Product, error)
	UpdateProduct(ctx context.Context, sellerID, id uuid.UUID, patch Patch) (*Product, error)
	DeleteProduct(ctx context.Context, sellerID, id uuid.UUID) error
}

type service struct {
	repo        Repository
	invalidator CatalogInvalidator
}

// NewService создаёт сервис товаров. invalidator может быть nil,
// тогда кэш витрины живёт только до истечения TTL.
func NewService(repo Repository, invalidator CatalogInvalidator) Service {
	return &service{repo: repo, invalidator: invalidator}
}

func (s *service) CreateProduct(ctx context.Context, p *Product) (*Product, error) {
	if p.Name == "" {
		return nil, errors.New("service: product name is required")
	}
	if p.Price < 0 {
		return nil, fmt.Errorf("service: product price cannot be negative, got %f", p.Price)
	}
	if p.Stock < 0 {
		return nil, fmt.Errorf("service: product stock cannot be negative, got %d", p.Stock)
	}

	if err := s.repo.Create(ctx, p); err != nil {
		log.Error().Err(err).Stringer("seller_id", p.SellerID).Msg("service: failed to create product")
		return nil, fmt.Errorf("service: failed to create product: %w", err)
	}

	s.invalidateCatalog(ctx, p.SellerID)

	return p, nil
}

func (s *service) GetProductByID(ctx context.Context, sellerID, id uuid.UUID) (*Product, error) {
	p, err := s.repo.GetByID(ctx, sellerID, id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to fetch product")
		return nil, fmt.Errorf("service: failed to fetch product: %w", err)
	}

	return p, nil
}

func (s *service) ListProducts(ctx context.Context, sellerID uuid.UUID) ([]Product, error) {
	products, err := s.repo.ListBySeller(ctx, sellerID)
	if err != nil {
		log.Error().Err(err).Stringer("seller_id", sellerID).Msg("service: failed to list products")
		return nil, fmt.Errorf("service: failed to list products: %w", err)
	}

	return products, nil
}

func (s *service) UpdateProduct(ctx context.Context, sellerID, id uuid.UUID, patch Patch) (*Product, error) {
	if patch.Price != nil && *patch.Price < 0 {
		return nil, fmt.Errorf("service: product price cannot be negative, got %f", *patch.Price)
	}

	p, err := s.repo.Update(ctx, sellerID, id, patch)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to update product")
		return nil, fmt.Errorf("service: failed to update product: %w", err)
	}

	s.invalidateCatalog(ctx, sellerID)

	return p, nil
}

func (s *service) DeleteProduct(ctx context.Context, sellerID, id uuid.UUID) error {
	err := s.repo.Deactivate(ctx, sellerID, id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return ErrProductNotFound
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to deactivate product")
		return fmt.Errorf("service: failed to deactivate product: %w", err)
	}

	s.invalidateCatalog(ctx, sellerID)

	return nil
}

func (s *service) invalidateCatalog(ctx context.Context, sellerID uuid.UUID) {
	if s.invalidator == nil {
		return
	}
	s.invalidator.InvalidateCatalog(ctx, sellerID)
}

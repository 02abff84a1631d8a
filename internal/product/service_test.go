package product_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/vasiliy-maslov/quickmemo/internal/product"
)

type mockProductRepository struct {
	createFunc             func(ctx context.Context, p *product.Product) error
	getByIDFunc            func(ctx context.Context, sellerID, id uuid.UUID) (*product.Product, error)
	listBySellerFunc       func(ctx context.Context, sellerID uuid.UUID) ([]product.Product, error)
	listActiveBySellerFunc func(ctx context.Context, sellerID uuid.UUID) ([]product.Product, error)
	updateFunc             func(ctx context.Context, sellerID, id uuid.UUID, patch product.Patch) (*product.Product, error)
	deactivateFunc         func(ctx context.Context, sellerID, id uuid.UUID) error
}

func (m *mockProductRepository) Create(ctx context.Context, p *product.Product) error {
	return m.createFunc(ctx, p)
}

func (m *mockProductRepository) GetByID(ctx context.Context, sellerID, id uuid.UUID) (*product.Product, error) {
	return m.getByIDFunc(ctx, sellerID, id)
}

func (m *mockProductRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]product.Product, error) {
	return m.listBySellerFunc(ctx, sellerID)
}

func (m *mockProductRepository) ListActiveBySeller(ctx context.Context, sellerID uuid.UUID) ([]product.Product, error) {
	return m.listActiveBySellerFunc(ctx, sellerID)
}

func (m *mockProductRepository) Update(ctx context.Context, sellerID, id uuid.UUID, patch product.Patch) (*product.Product, error) {
	return m.updateFunc(ctx, sellerID, id, patch)
}

func (m *mockProductRepository) Deactivate(ctx context.Context, sellerID, id uuid.UUID) error {
	return m.deactivateFunc(ctx, sellerID, id)
}

type mockInvalidator struct {
	calls []uuid.UUID
}

func (m *mockInvalidator) InvalidateCatalog(ctx context.Context, sellerID uuid.UUID) {
	m.calls = append(m.calls, sellerID)
}

func mustUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.FromString(s)
	if err != nil {
		t.Fatalf("invalid uuid %q: %v", s, err)
	}
	return id
}

func TestService_CreateProduct(t *testing.T) {
	sellerID := mustUUID(t, "550e8400-e29b-41d4-a716-446655440000")

	tests := []struct {
		name    string
		input   *product.Product
		wantErr string
	}{
		{
			name:    "missing_name",
			input:   &product.Product{SellerID: sellerID, Price: 9.99},
			wantErr: "service: product name is required",
		},
		{
			name:    "negative_price",
			input:   &product.Product{SellerID: sellerID, Name: "Blue Mug", Price: -1},
			wantErr: "service: product price cannot be negative",
		},
		{
			name:    "negative_stock",
			input:   &product.Product{SellerID: sellerID, Name: "Blue Mug", Price: 9.99, Stock: -5},
			wantErr: "service: product stock cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockProductRepository{
				createFunc: func(ctx context.Context, p *product.Product) error {
					t.Fatal("repository must not be called on validation failure")
					return nil
				},
			}
			svc := product.NewService(repo, nil)

			_, err := svc.CreateProduct(context.Background(), tt.input)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("success_invalidates_catalog", func(t *testing.T) {
		repo := &mockProductRepository{
			createFunc: func(ctx context.Context, p *product.Product) error { return nil },
		}
		invalidator := &mockInvalidator{}
		svc := product.NewService(repo, invalidator)

		created, err := svc.CreateProduct(context.Background(), &product.Product{
			SellerID: sellerID,
			Name:     "Blue Mug",
			Price:    9.99,
			Stock:    5,
		})

		assert.NoError(t, err)
		assert.Equal(t, "Blue Mug", created.Name)
		assert.Equal(t, []uuid.UUID{sellerID}, invalidator.calls)
	})

	t.Run("nil_invalidator_is_fine", func(t *testing.T) {
		repo := &mockProductRepository{
			createFunc: func(ctx context.Context, p *product.Product) error { return nil },
		}
		svc := product.NewService(repo, nil)

		_, err := svc.CreateProduct(context.Background(), &product.Product{
			SellerID: sellerID,
			Name:     "Blue Mug",
			Price:    9.99,
		})
		assert.NoError(t, err)
	})
}

func TestService_UpdateProduct(t *testing.T) {
	sellerID := mustUUID(t, "550e8400-e29b-41d4-a716-446655440000")
	productID := mustUUID(t, "8a9c9a40-21a1-4f67-9a5a-4b7a1d1f0001")

	t.Run("negative_price_rejected", func(t *testing.T) {
		svc := product.NewService(&mockProductRepository{}, nil)

		bad := -3.0
		_, err := svc.UpdateProduct(context.Background(), sellerID, productID, product.Patch{Price: &bad})
		assert.Error(t, err)
	})

	t.Run("success_invalidates_catalog", func(t *testing.T) {
		newPrice := 12.50
		repo := &mockProductRepository{
			updateFunc: func(ctx context.Context, gotSeller, id uuid.UUID, patch product.Patch) (*product.Product, error) {
				assert.Equal(t, &newPrice, patch.Price)
				return &product.Product{ID: id, SellerID: gotSeller, Name: "Blue Mug", Price: newPrice}, nil
			},
		}
		invalidator := &mockInvalidator{}
		svc := product.NewService(repo, invalidator)

		updated, err := svc.UpdateProduct(context.Background(), sellerID, productID, product.Patch{Price: &newPrice})
		assert.NoError(t, err)
		assert.Equal(t, 12.50, updated.Price)
		assert.Len(t, invalidator.calls, 1)
	})

	t.Run("not_found", func(t *testing.T) {
		repo := &mockProductRepository{
			updateFunc: func(ctx context.Context, gotSeller, id uuid.UUID, patch product.Patch) (*product.Product, error) {
				return nil, product.ErrProductNotFound
			},
		}
		invalidator := &mockInvalidator{}
		svc := product.NewService(repo, invalidator)

		_, err := svc.UpdateProduct(context.Background(), sellerID, productID, product.Patch{})
		assert.True(t, errors.Is(err, product.ErrProductNotFound))
		assert.Empty(t, invalidator.calls)
	})
}

func TestService_DeleteProduct(t *testing.T) {
	sellerID := mustUUID(t, "550e8400-e29b-41d4-a716-446655440000")
	productID := mustUUID(t, "8a9c9a40-21a1-4f67-9a5a-4b7a1d1f0001")

	t.Run("deactivates_and_invalidates", func(t *testing.T) {
		deactivated := false
		repo := &mockProductRepository{
			deactivateFunc: func(ctx context.Context, gotSeller, id uuid.UUID) error {
				deactivated = true
				return nil
			},
		}
		invalidator := &mockInvalidator{}
		svc := product.NewService(repo, invalidator)

		err := svc.DeleteProduct(context.Background(), sellerID, productID)
		assert.NoError(t, err)
		assert.True(t, deactivated)
		assert.Len(t, invalidator.calls, 1)
	})

	t.Run("not_found", func(t *testing.T) {
		repo := &mockProductRepository{
			deactivateFunc: func(ctx context.Context, gotSeller, id uuid.UUID) error {
				return product.ErrProductNotFound
			},
		}
		svc := product.NewService(repo, nil)

		err := svc.DeleteProduct(context.Background(), sellerID, productID)
		assert.True(t, errors.Is(err, product.ErrProductNotFound))
	})
}

package storefront_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/vasiliy-maslov/quickmemo/internal/product"
	"github.com/vasiliy-maslov/quickmemo/internal/seller"
	"github.com/vasiliy-maslov/quickmemo/internal/storefront"
)

type mockSellerRepository struct {
	createFunc    func(ctx context.Context, s *seller.Seller) error
	getByIDFunc   func(ctx context.Context, id uuid.UUID) (*seller.Seller, error)
	getBySlugFunc func(ctx context.Context, slug string) (*seller.Seller, error)
}

func (m *mockSellerRepository) Create(ctx context.Context, s *seller.Seller) error {
	return m.createFunc(ctx, s)
}

func (m *mockSellerRepository) GetByID(ctx context.Context, id uuid.UUID) (*seller.Seller, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockSellerRepository) GetBySlug(ctx context.Context, slug string) (*seller.Seller, error) {
	return m.getBySlugFunc(ctx, slug)
}

type mockProductRepository struct {
	listActiveBySellerFunc func(ctx context.Context, sellerID uuid.UUID) ([]product.Product, error)
}

func (m *mockProductRepository) Create(ctx context.Context, p *product.Product) error {
	panic("not implemented")
}

func (m *mockProductRepository) GetByID(ctx context.Context, sellerID, id uuid.UUID) (*product.Product, error) {
	panic("not implemented")
}

func (m *mockProductRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]product.Product, error) {
	panic("not implemented")
}

func (m *mockProductRepository) ListActiveBySeller(ctx context.Context, sellerID uuid.UUID) ([]product.Product, error) {
	return m.listActiveBySellerFunc(ctx, sellerID)
}

func (m *mockProductRepository) Update(ctx context.Context, sellerID, id uuid.UUID, patch product.Patch) (*product.Product, error) {
	panic("not implemented")
}

func (m *mockProductRepository) Deactivate(ctx context.Context, sellerID, id uuid.UUID) error {
	panic("not implemented")
}

// memoryCache — кэш в памяти для тестов, без TTL.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.entries[key]
	return value, ok, nil
}

func (c *memoryCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	return nil
}

func testSeller(t *testing.T) *seller.Seller {
	t.Helper()
	id, err := uuid.FromString("550e8400-e29b-41d4-a716-446655440000")
	if err != nil {
		t.Fatal(err)
	}
	return &seller.Seller{
		ID:       id,
		Name:     "Blue Mug Studio",
		ShopSlug: "blue-mug",
		Currency: "USD",
		IsActive: true,
	}
}

func TestService_GetShop(t *testing.T) {
	t.Run("shop_not_found", func(t *testing.T) {
		sellers := &mockSellerRepository{
			getBySlugFunc: func(ctx context.Context, slug string) (*seller.Seller, error) {
				return nil, seller.ErrSellerNotFound
			},
		}
		svc := storefront.NewService(sellers, &mockProductRepository{}, nil, time.Minute)

		_, err := svc.GetShop(context.Background(), "no-such-shop")
		assert.True(t, errors.Is(err, storefront.ErrShopNotFound))
	})

	t.Run("public_fields_only", func(t *testing.T) {
		sel := testSeller(t)
		sellers := &mockSellerRepository{
			getBySlugFunc: func(ctx context.Context, slug string) (*seller.Seller, error) {
				assert.Equal(t, "blue-mug", slug)
				return sel, nil
			},
		}
		svc := storefront.NewService(sellers, &mockProductRepository{}, nil, time.Minute)

		shop, err := svc.GetShop(context.Background(), "blue-mug")
		assert.NoError(t, err)
		assert.Equal(t, storefront.Shop{Name: "Blue Mug Studio", ShopSlug: "blue-mug", Currency: "USD"}, *shop)
	})

	t.Run("second_read_hits_cache", func(t *testing.T) {
		sel := testSeller(t)
		dbCalls := 0
		sellers := &mockSellerRepository{
			getBySlugFunc: func(ctx context.Context, slug string) (*seller.Seller, error) {
				dbCalls++
				return sel, nil
			},
		}
		svc := storefront.NewService(sellers, &mockProductRepository{}, newMemoryCache(), time.Minute)

		first, err := svc.GetShop(context.Background(), "blue-mug")
		assert.NoError(t, err)

		second, err := svc.GetShop(context.Background(), "blue-mug")
		assert.NoError(t, err)

		assert.Equal(t, 1, dbCalls)
		assert.Equal(t, *first, *second)
	})
}

func TestService_GetCatalog(t *testing.T) {
	sel := testSeller(t)

	t.Run("catalog_with_products", func(t *testing.T) {
		sellers := &mockSellerRepository{
			getBySlugFunc: func(ctx context.Context, slug string) (*seller.Seller, error) {
				return sel, nil
			},
		}
		products := &mockProductRepository{
			listActiveBySellerFunc: func(ctx context.Context, sellerID uuid.UUID) ([]product.Product, error) {
				assert.Equal(t, sel.ID, sellerID)
				return []product.Product{
					{Name: "Blue Mug", Price: 9.99, Stock: 5, IsActive: true},
				}, nil
			},
		}
		svc := storefront.NewService(sellers, products, nil, time.Minute)

		catalog, err := svc.GetCatalog(context.Background(), "blue-mug")
		assert.NoError(t, err)
		assert.Equal(t, "blue-mug", catalog.Shop.ShopSlug)
		assert.Len(t, catalog.Products, 1)
	})

	t.Run("second_read_hits_cache", func(t *testing.T) {
		listCalls := 0
		sellers := &mockSellerRepository{
			getBySlugFunc: func(ctx context.Context, slug string) (*seller.Seller, error) {
				return sel, nil
			},
		}
		products := &mockProductRepository{
			listActiveBySellerFunc: func(ctx context.Context, sellerID uuid.UUID) ([]product.Product, error) {
				listCalls++
				return []product.Product{}, nil
			},
		}
		svc := storefront.NewService(sellers, products, newMemoryCache(), time.Minute)

		_, err := svc.GetCatalog(context.Background(), "blue-mug")
		assert.NoError(t, err)
		_, err = svc.GetCatalog(context.Background(), "blue-mug")
		assert.NoError(t, err)

		assert.Equal(t, 1, listCalls)
	})
}

func TestService_InvalidateCatalog(t *testing.T) {
	sel := testSeller(t)

	t.Run("cache_entries_removed", func(t *testing.T) {
		sellers := &mockSellerRepository{
			getByIDFunc: func(ctx context.Context, id uuid.UUID) (*seller.Seller, error) {
				return sel, nil
			},
			getBySlugFunc: func(ctx context.Context, slug string) (*seller.Seller, error) {
				return sel, nil
			},
		}
		listCalls := 0
		products := &mockProductRepository{
			listActiveBySellerFunc: func(ctx context.Context, sellerID uuid.UUID) ([]product.Product, error) {
				listCalls++
				return []product.Product{}, nil
			},
		}
		svc := storefront.NewService(sellers, products, newMemoryCache(), time.Minute)

		_, err := svc.GetCatalog(context.Background(), "blue-mug")
		assert.NoError(t, err)

		svc.InvalidateCatalog(context.Background(), sel.ID)

		// После сброса кэша каталог читается из базы заново.
		_, err = svc.GetCatalog(context.Background(), "blue-mug")
		assert.NoError(t, err)
		assert.Equal(t, 2, listCalls)
	})

	t.Run("nil_cache_is_noop", func(t *testing.T) {
		sellers := &mockSellerRepository{
			getByIDFunc: func(ctx context.Context, id uuid.UUID) (*seller.Seller, error) {
				t.Fatal("seller lookup must not happen without a cache")
				return nil, nil
			},
		}
		svc := storefront.NewService(sellers, &mockProductRepository{}, nil, time.Minute)

		svc.InvalidateCatalog(context.Background(), sel.ID)
	})
}

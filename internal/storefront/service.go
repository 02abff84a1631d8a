package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/quickmemo/internal/cache"
	"github.com/vasiliy-maslov/quickmemo/internal/product"
	"github.com/vasiliy-maslov/quickmemo/internal/seller"
)

var ErrShopNotFound = errors.New("shop not found")

// Shop — публичное представление магазина, без внутренних полей продавца.
type Shop struct {
	Name     string `json:"name"`
	ShopSlug string `json:"shop_slug"`
	Currency string `json:"currency"`
}

type Catalog struct {
	Shop     Shop              `json:"shop"`
	Products []product.Product `json:"products"`
}

type Service interface {
	GetShop(ctx context.Context, slug string) (*Shop, error)
	GetCatalog(ctx context.Context, slug string) (*Catalog, error)
	InvalidateCatalog(ctx context.Context, sellerID uuid.UUID)
}

type service struct {
	sellers  seller.Repository
	products product.Repository
	cache    cache.Cache
	ttl      time.Duration
}

// NewService собирает витрину. cache может быть nil, тогда каждый запрос
// идёт в базу.
func NewService(sellers seller.Repository, products product.Repository, c cache.Cache, ttl time.Duration) Service {
	return &service{sellers: sellers, products: products, cache: c, ttl: ttl}
}

func shopKey(slug string) string {
	return fmt.Sprintf("storefront:shop:%s", slug)
}

func catalogKey(slug string) string {
	return fmt.Sprintf("storefront:catalog:%s", slug)
}

func (s *service) GetShop(ctx context.Context, slug string) (*Shop, error) {
	if shop, ok := cacheGet[Shop](ctx, s.cache, shopKey(slug)); ok {
		return shop, nil
	}

	sel, err := s.sellers.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, seller.ErrSellerNotFound) {
			return nil, ErrShopNotFound
		}
		log.Error().Err(err).Str("slug", slug).Msg("service: failed to fetch shop")
		return nil, fmt.Errorf("service: failed to fetch shop: %w", err)
	}

	shop := &Shop{Name: sel.Name, ShopSlug: sel.ShopSlug, Currency: sel.Currency}
	s.cacheSet(ctx, shopKey(slug), shop)

	return shop, nil
}

func (s *service) GetCatalog(ctx context.Context, slug string) (*Catalog, error) {
	if catalog, ok := cacheGet[Catalog](ctx, s.cache, catalogKey(slug)); ok {
		return catalog, nil
	}

	sel, err := s.sellers.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, seller.ErrSellerNotFound) {
			return nil, ErrShopNotFound
		}
		log.Error().Err(err).Str("slug", slug).Msg("service: failed to fetch shop for catalog")
		return nil, fmt.Errorf("service: failed to fetch shop for catalog: %w", err)
	}

	products, err := s.products.ListActiveBySeller(ctx, sel.ID)
	if err != nil {
		log.Error().Err(err).Str("slug", slug).Msg("service: failed to list catalog products")
		return nil, fmt.Errorf("service: failed to list catalog products: %w", err)
	}

	catalog := &Catalog{
		Shop:     Shop{Name: sel.Name, ShopSlug: sel.ShopSlug, Currency: sel.Currency},
		Products: products,
	}
	s.cacheSet(ctx, catalogKey(slug), catalog)

	return catalog, nil
}

// InvalidateCatalog сбрасывает кэш витрины продавца после изменения каталога.
// Ошибки кэша не фатальны: записи всё равно истекут по TTL.
func (s *service) InvalidateCatalog(ctx context.Context, sellerID uuid.UUID) {
	if s.cache == nil {
		return
	}

	sel, err := s.sellers.GetByID(ctx, sellerID)
	if err != nil {
		log.Warn().Err(err).Stringer("seller_id", sellerID).Msg("service: failed to resolve seller for cache invalidation")
		return
	}

	if err := s.cache.Delete(ctx, shopKey(sel.ShopSlug), catalogKey(sel.ShopSlug)); err != nil {
		log.Warn().Err(err).Str("slug", sel.ShopSlug).Msg("service: failed to invalidate storefront cache")
	}
}

func cacheGet[T any](ctx context.Context, c cache.Cache, key string) (*T, bool) {
	if c == nil {
		return nil, false
	}

	data, ok, err := c.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("service: storefront cache read failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("service: failed to decode cached storefront entry")
		return nil, false
	}

	return &value, true
}

func (s *service) cacheSet(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("service: failed to encode storefront entry for cache")
		return
	}

	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("service: storefront cache write failed")
	}
}

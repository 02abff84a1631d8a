package seller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrSellerNotFound = errors.New("seller not found")
	ErrSlugExists     = errors.New("shop slug already exists")
)

type Repository interface {
	Create(ctx context.Context, s *Seller) error
	GetByID(ctx context.Context, id uuid.UUID) (*Seller, error)
	GetBySlug(ctx context.Context, slug string) (*Seller, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, s *Seller) error {
	if s.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate seller ID: %w", err)
		}
		s.ID = id
	}

	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now

	query := `
		INSERT INTO sellers (id, name, shop_slug, currency, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query, s.ID, s.Name, s.ShopSlug, s.Currency, s.IsActive, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrSlugExists
		}
		return fmt.Errorf("repository: failed to insert seller: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Seller, error) {
	query := `
		SELECT id, name, shop_slug, currency, is_active, created_at, updated_at
		FROM sellers
		WHERE id = $1
	`

	var s Seller
	err := r.db.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.ShopSlug, &s.Currency, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSellerNotFound
		}
		return nil, fmt.Errorf("repository: failed to select seller by id %s: %w", id, err)
	}

	return &s, nil
}

func (r *postgresRepository) GetBySlug(ctx context.Context, slug string) (*Seller, error) {
	query := `
		SELECT id, name, shop_slug, currency, is_active, created_at, updated_at
		FROM sellers
		WHERE shop_slug = $1 AND is_active = TRUE
	`

	var s Seller
	err := r.db.QueryRow(ctx, query, slug).Scan(
		&s.ID, &s.Name, &s.ShopSlug, &s.Currency, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSellerNotFound
		}
		return nil, fmt.Errorf("repository: failed to select seller by slug %q: %w", slug, err)
	}

	return &s, nil
}

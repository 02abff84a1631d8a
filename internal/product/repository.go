package product

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vasiliy-maslov/quickmemo/internal/db"
)

var ErrProductNotFound = errors.New("product not found")

type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, sellerID, id uuid.UUID) (*Product, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]Product, error)
	ListActiveBySeller(ctx context.Context, sellerID uuid.UUID) ([]Product, error)
	Update(ctx context.Context, sellerID, id uuid.UUID, patch Patch) (*Product, error)
	Deactivate(ctx context.Context, sellerID, id uuid.UUID) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const productColumns = `id, seller_id, name, sku, description, price, stock, attributes, is_active, created_at, updated_at`

func scanProduct(row pgx.Row, p *Product) error {
	return row.Scan(
		&p.ID, &p.SellerID, &p.Name, &p.SKU, &p.Description,
		&p.Price, &p.Stock, &p.Attributes, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
}

func (r *postgresRepository) Create(ctx context.Context, p *Product) error {
	if p.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate product ID: %w", err)
		}
		p.ID = id
	}

	if p.Attributes == nil {
		p.Attributes = map[string]string{}
	}

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `
		INSERT INTO products (id, seller_id, name, sku, description, price, stock, attributes, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.Exec(ctx, query,
		p.ID, p.SellerID, p.Name, p.SKU, p.Description,
		p.Price, p.Stock, p.Attributes, p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert product: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, sellerID, id uuid.UUID) (*Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1 AND seller_id = $2`, productColumns)

	var p Product
	err := scanProduct(r.db.QueryRow(ctx, query, id, sellerID), &p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("repository: failed to select product by id %s: %w", id, err)
	}

	return &p, nil
}

func (r *postgresRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]Product, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM products
		WHERE seller_id = $1
		ORDER BY created_at DESC
	`, productColumns)

	return r.queryProducts(ctx, query, sellerID)
}

func (r *postgresRepository) ListActiveBySeller(ctx context.Context, sellerID uuid.UUID) ([]Product, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM products
		WHERE seller_id = $1 AND is_active = TRUE
		ORDER BY name
	`, productColumns)

	return r.queryProducts(ctx, query, sellerID)
}

func (r *postgresRepository) queryProducts(ctx context.Context, query string, args ...any) ([]Product, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		var p Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("repository: failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating products: %w", err)
	}

	return products, nil
}

func (r *postgresRepository) Update(ctx context.Context, sellerID, id uuid.UUID, patch Patch) (*Product, error) {
	var p db.Patch
	if patch.Name != nil {
		p.Set("name", *patch.Name)
	}
	if patch.SKU != nil {
		p.Set("sku", *patch.SKU)
	}
	if patch.Description != nil {
		p.Set("description", *patch.Description)
	}
	if patch.Price != nil {
		p.Set("price", *patch.Price)
	}
	if patch.Attributes != nil {
		p.Set("attributes", patch.Attributes)
	}
	if patch.IsActive != nil {
		p.Set("is_active", *patch.IsActive)
	}

	if p.Empty() {
		return r.GetByID(ctx, sellerID, id)
	}

	p.Set("updated_at", time.Now().UTC())

	assignments, args := p.Assignments(3)
	query := fmt.Sprintf(`
		UPDATE products
		SET %s
		WHERE id = $1 AND seller_id = $2
		RETURNING %s
	`, assignments, productColumns)

	queryArgs := append([]any{id, sellerID}, args...)

	var updated Product
	err := scanProduct(r.db.QueryRow(ctx, query, queryArgs...), &updated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("repository: failed to update product %s: %w", id, err)
	}

	return &updated, nil
}

func (r *postgresRepository) Deactivate(ctx context.Context, sellerID, id uuid.UUID) error {
	query := `
		UPDATE products
		SET is_active = FALSE, updated_at = $3
		WHERE id = $1 AND seller_id = $2
	`

	cmdTag, err := r.db.Exec(ctx, query, id, sellerID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("repository: failed to deactivate product %s: %w", id, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}

	return nil
}

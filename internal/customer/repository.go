package customer

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
	"github.com/vasiliy-maslov/quickmemo/internal/db"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrCustomerInUse    = errors.New("customer has orders and cannot be deleted")
)

type Repository interface {
	Create(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, sellerID, id uuid.UUID) (*Customer, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]Customer, error)
	Update(ctx context.Context, sellerID, id uuid.UUID, patch Patch) (*Customer, error)
	Delete(ctx context.Context, sellerID, id uuid.UUID) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, c *Customer) error {
	if c.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate customer ID: %w", err)
		}
		c.ID = id
	}

	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	query := `
		INSERT INTO customers (id, seller_id, name, email, phone, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query, c.ID, c.SellerID, c.Name, c.Email, c.Phone, c.Address, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("repository: failed to insert customer: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, sellerID, id uuid.UUID) (*Customer, error) {
	query := `
		SELECT id, seller_id, name, email, phone, address, created_at, updated_at
		FROM customers
		WHERE id = $1 AND seller_id = $2
	`

	var c Customer
	err := r.db.QueryRow(ctx, query, id, sellerID).Scan(
		&c.ID, &c.SellerID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("repository: failed to select customer by id %s: %w", id, err)
	}

	return &c, nil
}

func (r *postgresRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]Customer, error) {
	query := `
		SELECT id, seller_id, name, email, phone, address, created_at, updated_at
		FROM customers
		WHERE seller_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, sellerID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query customers for seller %s: %w", sellerID, err)
	}
	defer rows.Close()

	customers := make([]Customer, 0)
	for rows.Next() {
		var c Customer
		err := rows.Scan(&c.ID, &c.SellerID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan customer for seller %s: %w", sellerID, err)
		}
		customers = append(customers, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating customers for seller %s: %w", sellerID, err)
	}

	return customers, nil
}

func (r *postgresRepository) Update(ctx context.Context, sellerID, id uuid.UUID, patch Patch) (*Customer, error) {
	var p db.Patch
	if patch.Name != nil {
		p.Set("name", *patch.Name)
	}
	if patch.Email != nil {
		p.Set("email", *patch.Email)
	}
	if patch.Phone != nil {
		p.Set("phone", *patch.Phone)
	}
	if patch.Address != nil {
		p.Set("address", *patch.Address)
	}

	if p.Empty() {
		return r.GetByID(ctx, sellerID, id)
	}

	p.Set("updated_at", time.Now().UTC())

	assignments, args := p.Assignments(3)
	query := fmt.Sprintf(`
		UPDATE customers
		SET %s
		WHERE id = $1 AND seller_id = $2
		RETURNING id, seller_id, name, email, phone, address, created_at, updated_at
	`, assignments)

	queryArgs := append([]any{id, sellerID}, args...)

	var c Customer
	err := r.db.QueryRow(ctx, query, queryArgs...).Scan(
		&c.ID, &c.SellerID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("repository: failed to update customer %s: %w", id, err)
	}

	return &c, nil
}

func (r *postgresRepository) Delete(ctx context.Context, sellerID, id uuid.UUID) error {
	query := `DELETE FROM customers WHERE id = $1 AND seller_id = $2`

	cmdTag, err := r.db.Exec(ctx, query, id, sellerID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return ErrCustomerInUse
		}
		return fmt.Errorf("repository: failed to delete customer %s: %w", id, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrCustomerNotFound
	}

	return nil
}

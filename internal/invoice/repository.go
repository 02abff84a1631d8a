package invoice

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
	"github.com/rs/zerolog/log"
)

var (
	ErrInvoiceNotFound = errors.New("invoice not found")
	ErrInvoiceExists   = errors.New("invoice already exists for this order")
	ErrInvoiceVoid     = errors.New("invoice is void")
	ErrOrderNotFound   = errors.New("order not found")
)

type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, sellerID, id uuid.UUID) (*Invoice, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]Invoice, error)
	UpdateStatus(ctx context.Context, sellerID, id uuid.UUID, status InvoiceStatus, notes *string) (*Invoice, error)
	RecordPayment(ctx context.Context, sellerID, id uuid.UUID, amount float64) (*Invoice, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func finishTx(ctx context.Context, tx pgx.Tx, err *error) {
	if p := recover(); p != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			log.Error().Err(rbErr).Msg("repository: failed to rollback transaction after panic")
		}
		panic(p)
	}

	if *err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Error().Err(rbErr).Msg("repository: failed to rollback transaction")
		}
		return
	}

	if commitErr := tx.Commit(ctx); commitErr != nil && !errors.Is(commitErr, pgx.ErrTxClosed) {
		*err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
	}
}

// Create выписывает счёт по заказу: сумма копируется из шапки заказа,
// номер строится из количества счетов продавца за год. Подсчёт идёт в той же
// транзакции, но уникальность при конкурентной выписке страхует только
// ограничение (seller_id, invoice_number).
func (r *postgresRepository) Create(ctx context.Context, inv *Invoice) (err error) {
	if inv.ID == uuid.Nil {
		genID, genErr := uuid.NewV4()
		if genErr != nil {
			return fmt.Errorf("repository: failed to generate invoice ID: %w", genErr)
		}
		inv.ID = genID
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer finishTx(ctx, tx, &err)

	var exists bool
	queryExists := `SELECT EXISTS (SELECT 1 FROM invoices WHERE order_id = $1)`
	if err = tx.QueryRow(ctx, queryExists, inv.OrderID).Scan(&exists); err != nil {
		return fmt.Errorf("repository: failed to check invoice existence for order %s: %w", inv.OrderID, err)
	}
	if exists {
		err = ErrInvoiceExists
		return err
	}

	queryOrder := `
		SELECT total_amount FROM order_headers
		WHERE id = $1 AND seller_id = $2
	`
	err = tx.QueryRow(ctx, queryOrder, inv.OrderID, inv.SellerID).Scan(&inv.TotalAmount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = ErrOrderNotFound
			return err
		}
		return fmt.Errorf("repository: failed to read order %s for invoice: %w", inv.OrderID, err)
	}

	now := time.Now().UTC()

	var count int
	queryCount := `
		SELECT COUNT(*) FROM invoices
		WHERE seller_id = $1 AND EXTRACT(YEAR FROM created_at) = $2
	`
	if err = tx.QueryRow(ctx, queryCount, inv.SellerID, now.Year()).Scan(&count); err != nil {
		return fmt.Errorf("repository: failed to count invoices for seller %s: %w", inv.SellerID, err)
	}

	inv.InvoiceNumber = FormatNumber(now.Year(), count+1)
	inv.Status = StatusDue
	inv.AmountPaid = 0
	inv.CreatedAt = now
	inv.UpdatedAt = now

	queryInsert := `
		INSERT INTO invoices (id, seller_id, order_id, invoice_number, status, total_amount, amount_paid, due_date, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = tx.Exec(ctx, queryInsert,
		inv.ID, inv.SellerID, inv.OrderID, inv.InvoiceNumber, string(inv.Status),
		inv.TotalAmount, inv.AmountPaid, inv.DueDate, inv.Notes, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			err = ErrInvoiceExists
			return err
		}
		return fmt.Errorf("repository: failed to insert invoice for order %s: %w", inv.OrderID, err)
	}

	return nil
}

const invoiceColumns = `id, seller_id, order_id, invoice_number, status, total_amount, amount_paid, due_date, notes, created_at, updated_at`

func scanInvoice(row pgx.Row, inv *Invoice) error {
	return row.Scan(
		&inv.ID, &inv.SellerID, &inv.OrderID, &inv.InvoiceNumber, &inv.Status,
		&inv.TotalAmount, &inv.AmountPaid, &inv.DueDate, &inv.Notes, &inv.CreatedAt, &inv.UpdatedAt,
	)
}

func (r *postgresRepository) GetByID(ctx context.Context, sellerID, id uuid.UUID) (*Invoice, error) {
	query := fmt.Sprintf(`SELECT %s FROM invoices WHERE id = $1 AND seller_id = $2`, invoiceColumns)

	var inv Invoice
	err := scanInvoice(r.db.QueryRow(ctx, query, id, sellerID), &inv)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("repository: failed to select invoice by id %s: %w", id, err)
	}

	return &inv, nil
}

func (r *postgresRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]Invoice, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM invoices
		WHERE seller_id = $1
		ORDER BY created_at DESC
	`, invoiceColumns)

	rows, err := r.db.Query(ctx, query, sellerID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query invoices for seller %s: %w", sellerID, err)
	}
	defer rows.Close()

	invoices := make([]Invoice, 0)
	for rows.Next() {
		var inv Invoice
		if err := scanInvoice(rows, &inv); err != nil {
			return nil, fmt.Errorf("repository: failed to scan invoice for seller %s: %w", sellerID, err)
		}
		invoices = append(invoices, inv)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating invoices for seller %s: %w", sellerID, err)
	}

	return invoices, nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, sellerID, id uuid.UUID, status InvoiceStatus, notes *string) (*Invoice, error) {
	var query string
	var args []any
	if notes != nil {
		query = fmt.Sprintf(`
			UPDATE invoices
			SET status = $1, notes = $2, updated_at = $3
			WHERE id = $4 AND seller_id = $5
			RETURNING %s
		`, invoiceColumns)
		args = []any{string(status), *notes, time.Now().UTC(), id, sellerID}
	} else {
		query = fmt.Sprintf(`
			UPDATE invoices
			SET status = $1, updated_at = $2
			WHERE id = $3 AND seller_id = $4
			RETURNING %s
		`, invoiceColumns)
		args = []any{string(status), time.Now().UTC(), id, sellerID}
	}

	var inv Invoice
	err := scanInvoice(r.db.QueryRow(ctx, query, args...), &inv)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("repository: failed to update status of invoice %s: %w", id, err)
	}

	return &inv, nil
}

// RecordPayment добавляет оплату и пересчитывает статус: PAID при полном
// покрытии, иначе PARTIAL. Оплата по VOID-счёту отклоняется.
func (r *postgresRepository) RecordPayment(ctx context.Context, sellerID, id uuid.UUID, amount float64) (inv *Invoice, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer finishTx(ctx, tx, &err)

	var status InvoiceStatus
	var total, paid float64
	queryLock := `
		SELECT status, total_amount, amount_paid FROM invoices
		WHERE id = $1 AND seller_id = $2
		FOR UPDATE
	`
	err = tx.QueryRow(ctx, queryLock, id, sellerID).Scan(&status, &total, &paid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = ErrInvoiceNotFound
			return nil, err
		}
		return nil, fmt.Errorf("repository: failed to lock invoice %s: %w", id, err)
	}

	if status == StatusVoid {
		err = ErrInvoiceVoid
		return nil, err
	}

	paid += amount
	newStatus := StatusPartial
	if paid >= total {
		newStatus = StatusPaid
	}

	queryUpdate := fmt.Sprintf(`
		UPDATE invoices
		SET amount_paid = $1, status = $2, updated_at = $3
		WHERE id = $4 AND seller_id = $5
		RETURNING %s
	`, invoiceColumns)

	var updated Invoice
	err = scanInvoice(tx.QueryRow(ctx, queryUpdate, paid, string(newStatus), time.Now().UTC(), id, sellerID), &updated)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to record payment for invoice %s: %w", id, err)
	}

	return &updated, nil
}

package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

type Repository interface {
	CreateOrder(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, sellerID, id uuid.UUID) (*Order, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]Order, error)
	Cancel(ctx context.Context, sellerID, id uuid.UUID) (*Order, error)
	UpdateStatus(ctx context.Context, sellerID, id uuid.UUID, newStatus OrderStatus) error
	UpdateCharges(ctx context.Context, sellerID, id uuid.UUID, patch ChargesPatch) (*Order, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

// finishTx откатывает транзакцию при ошибке или панике, иначе коммитит.
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

// CreateOrder выполняет весь сценарий оформления в одной транзакции:
// проверка клиента, блокировка и проверка остатков, вставка шапки и позиций,
// списание остатков. Любая ошибка откатывает всё целиком.
func (r *postgresRepository) CreateOrder(ctx context.Context, o *Order) (err error) {
	if o.ID == uuid.Nil {
		genID, genErr := uuid.NewV4()
		if genErr != nil {
			return fmt.Errorf("repository: failed to generate order ID: %w", genErr)
		}
		o.ID = genID
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer finishTx(ctx, tx, &err)

	// 1. Клиент должен принадлежать продавцу.
	queryCustomer := `
		SELECT name, email FROM customers
		WHERE id = $1 AND seller_id = $2
	`
	err = tx.QueryRow(ctx, queryCustomer, o.CustomerID, o.SellerID).Scan(&o.CustomerName, &o.CustomerEmail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = ErrCustomerNotFound
			return err
		}
		return fmt.Errorf("repository: failed to verify customer %s: %w", o.CustomerID, err)
	}

	// 2. Блокируем строки товаров и проверяем остатки до какого-либо списания.
	// FOR UPDATE закрывает гонку "оба прошли проверку, оба списали".
	queryProduct := `
		SELECT name, stock FROM products
		WHERE id = $1 AND seller_id = $2
		FOR UPDATE
	`
	for i := range o.Items {
		item := &o.Items[i]

		var productName string
		var stock int
		err = tx.QueryRow(ctx, queryProduct, item.ProductID, o.SellerID).Scan(&productName, &stock)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				err = ErrProductNotFound
				return err
			}
			return fmt.Errorf("repository: failed to lock product %s: %w", item.ProductID, err)
		}

		if stock < item.Quantity {
			err = &InsufficientStockError{
				ProductID:   item.ProductID,
				ProductName: productName,
				Requested:   item.Quantity,
				Available:   stock,
			}
			return err
		}

		item.ProductName = productName
	}

	// 3. Шапка заказа.
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	queryOrder := `
		INSERT INTO order_headers (id, seller_id, customer_id, status, order_source, payment_method,
			shipping_amount, tax_amount, total_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = tx.Exec(ctx, queryOrder,
		o.ID, o.SellerID, o.CustomerID, string(o.Status), o.OrderSource, o.PaymentMethod,
		o.ShippingAmount, o.TaxAmount, o.TotalAmount, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert order header: %w", err)
	}

	// 4. Позиции и списание остатков.
	queryItem := `
		INSERT INTO order_items (id, order_id, product_id, product_name, quantity, unit_price, item_discount, subtotal, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	queryDecrement := `
		UPDATE products SET stock = stock - $1, updated_at = $2
		WHERE id = $3 AND seller_id = $4
	`
	for i := range o.Items {
		item := &o.Items[i]

		itemID, genErr := uuid.NewV4()
		if genErr != nil {
			err = fmt.Errorf("repository: failed to generate order item ID: %w", genErr)
			return err
		}
		item.ID = itemID
		item.OrderID = o.ID
		item.CreatedAt = now

		_, err = tx.Exec(ctx, queryItem,
			item.ID, item.OrderID, item.ProductID, item.ProductName,
			item.Quantity, item.UnitPrice, item.ItemDiscount, item.Subtotal, item.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("repository: failed to insert order item for order %s: %w", o.ID, err)
		}

		_, err = tx.Exec(ctx, queryDecrement, item.Quantity, now, item.ProductID, o.SellerID)
		if err != nil {
			return fmt.Errorf("repository: failed to decrement stock for product %s: %w", item.ProductID, err)
		}
	}

	return nil
}

const orderHeaderColumns = `
	o.id, o.seller_id, o.customer_id, o.status, o.order_source, o.payment_method,
	o.shipping_amount, o.tax_amount, o.total_amount, o.created_at, o.updated_at,
	c.name, c.email
`

func scanOrderHeader(row pgx.Row, o *Order) error {
	return row.Scan(
		&o.ID, &o.SellerID, &o.CustomerID, &o.Status, &o.OrderSource, &o.PaymentMethod,
		&o.ShippingAmount, &o.TaxAmount, &o.TotalAmount, &o.CreatedAt, &o.UpdatedAt,
		&o.CustomerName, &o.CustomerEmail,
	)
}

func (r *postgresRepository) GetByID(ctx context.Context, sellerID, id uuid.UUID) (*Order, error) {
	queryOrder := fmt.Sprintf(`
		SELECT %s
		FROM order_headers o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.id = $1 AND o.seller_id = $2
	`, orderHeaderColumns)

	var o Order
	err := scanOrderHeader(r.db.QueryRow(ctx, queryOrder, id, sellerID), &o)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %s: %w", id, err)
	}

	items, err := r.queryItems(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return &o, nil
}

func (r *postgresRepository) queryItems(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, product_name, quantity, unit_price, item_discount, subtotal, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order items for order %s: %w", orderID, err)
	}
	defer rows.Close()

	items := make([]OrderItem, 0)
	for rows.Next() {
		var item OrderItem
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.UnitPrice, &item.ItemDiscount, &item.Subtotal, &item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item for order %s: %w", orderID, err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order items for order %s: %w", orderID, err)
	}

	return items, nil
}

func (r *postgresRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]Order, error) {
	queryOrders := fmt.Sprintf(`
		SELECT %s
		FROM order_headers o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.seller_id = $1
		ORDER BY o.created_at DESC
	`, orderHeaderColumns)

	orderRows, err := r.db.Query(ctx, queryOrders, sellerID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders for seller %s: %w", sellerID, err)
	}
	defer orderRows.Close()

	ordersMap := make(map[uuid.UUID]*Order)
	var orderIDs []uuid.UUID

	for orderRows.Next() {
		var o Order
		if err := scanOrderHeader(orderRows, &o); err != nil {
			return nil, fmt.Errorf("repository: failed to scan order for seller %s: %w", sellerID, err)
		}
		o.Items = make([]OrderItem, 0)
		ordersMap[o.ID] = &o
		orderIDs = append(orderIDs, o.ID)
	}

	if err = orderRows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating orders for seller %s: %w", sellerID, err)
	}

	if len(orderIDs) == 0 {
		return []Order{}, nil
	}

	queryItems := `
		SELECT id, order_id, product_id, product_name, quantity, unit_price, item_discount, subtotal, created_at
		FROM order_items
		WHERE order_id = ANY($1)
	`
	itemRows, err := r.db.Query(ctx, queryItems, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order items for seller %s: %w", sellerID, err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item OrderItem
		err := itemRows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.UnitPrice, &item.ItemDiscount, &item.Subtotal, &item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item for seller %s: %w", sellerID, err)
		}

		if o, ok := ordersMap[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}

	if err = itemRows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order items for seller %s: %w", sellerID, err)
	}

	orders := make([]Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		orders = append(orders, *ordersMap[id])
	}

	return orders, nil
}

// Cancel возвращает остатки по всем позициям и ставит статус CANCELLED.
// Повторная отмена отклоняется, повторного возврата остатков не бывает.
func (r *postgresRepository) Cancel(ctx context.Context, sellerID, id uuid.UUID) (o *Order, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer finishTx(ctx, tx, &err)

	var status OrderStatus
	queryStatus := `
		SELECT status FROM order_headers
		WHERE id = $1 AND seller_id = $2
		FOR UPDATE
	`
	err = tx.QueryRow(ctx, queryStatus, id, sellerID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = ErrOrderNotFound
			return nil, err
		}
		return nil, fmt.Errorf("repository: failed to lock order %s: %w", id, err)
	}

	if status == StatusCancelled {
		err = ErrOrderCancelled
		return nil, err
	}

	queryItems := `
		SELECT product_id, quantity FROM order_items
		WHERE order_id = $1
	`
	rows, err := tx.Query(ctx, queryItems, id)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query items for cancellation of order %s: %w", id, err)
	}

	type restock struct {
		productID uuid.UUID
		quantity  int
	}
	var restocks []restock
	for rows.Next() {
		var rs restock
		if err = rows.Scan(&rs.productID, &rs.quantity); err != nil {
			rows.Close()
			return nil, fmt.Errorf("repository: failed to scan item for cancellation of order %s: %w", id, err)
		}
		restocks = append(restocks, rs)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating items for cancellation of order %s: %w", id, err)
	}

	now := time.Now().UTC()

	queryRestock := `
		UPDATE products SET stock = stock + $1, updated_at = $2
		WHERE id = $3 AND seller_id = $4
	`
	for _, rs := range restocks {
		if _, err = tx.Exec(ctx, queryRestock, rs.quantity, now, rs.productID, sellerID); err != nil {
			return nil, fmt.Errorf("repository: failed to restock product %s: %w", rs.productID, err)
		}
	}

	queryCancel := `
		UPDATE order_headers SET status = $1, updated_at = $2
		WHERE id = $3 AND seller_id = $4
	`
	if _, err = tx.Exec(ctx, queryCancel, string(StatusCancelled), now, id, sellerID); err != nil {
		return nil, fmt.Errorf("repository: failed to mark order %s cancelled: %w", id, err)
	}

	if err = tx.Commit(ctx); err != nil {
		err = fmt.Errorf("repository: failed to commit cancellation of order %s: %w", id, err)
		return nil, err
	}

	return r.GetByID(ctx, sellerID, id)
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, sellerID, id uuid.UUID, newStatus OrderStatus) error {
	query := `
		UPDATE order_headers
		SET status = $1, updated_at = $2
		WHERE id = $3 AND seller_id = $4
	`

	cmdTag, err := r.db.Exec(ctx, query, string(newStatus), time.Now().UTC(), id, sellerID)
	if err != nil {
		return fmt.Errorf("repository: failed to update status of order %s: %w", id, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// UpdateCharges меняет доставку/налог и пересчитывает итог заказа
// из сохранённых позиций в той же транзакции.
func (r *postgresRepository) UpdateCharges(ctx context.Context, sellerID, id uuid.UUID, patch ChargesPatch) (o *Order, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer finishTx(ctx, tx, &err)

	var status OrderStatus
	var shipping, tax float64
	queryHeader := `
		SELECT status, shipping_amount, tax_amount FROM order_headers
		WHERE id = $1 AND seller_id = $2
		FOR UPDATE
	`
	err = tx.QueryRow(ctx, queryHeader, id, sellerID).Scan(&status, &shipping, &tax)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = ErrOrderNotFound
			return nil, err
		}
		return nil, fmt.Errorf("repository: failed to lock order %s: %w", id, err)
	}

	if status == StatusCancelled {
		err = ErrOrderCancelled
		return nil, err
	}

	if patch.ShippingAmount != nil {
		shipping = *patch.ShippingAmount
	}
	if patch.TaxAmount != nil {
		tax = *patch.TaxAmount
	}

	var itemsTotal float64
	queryItemsTotal := `
		SELECT COALESCE(SUM(subtotal), 0) FROM order_items
		WHERE order_id = $1
	`
	if err = tx.QueryRow(ctx, queryItemsTotal, id).Scan(&itemsTotal); err != nil {
		return nil, fmt.Errorf("repository: failed to sum items of order %s: %w", id, err)
	}

	queryUpdate := `
		UPDATE order_headers
		SET shipping_amount = $1, tax_amount = $2, total_amount = $3, updated_at = $4
		WHERE id = $5 AND seller_id = $6
	`
	_, err = tx.Exec(ctx, queryUpdate, shipping, tax, itemsTotal+shipping+tax, time.Now().UTC(), id, sellerID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to update charges of order %s: %w", id, err)
	}

	if err = tx.Commit(ctx); err != nil {
		err = fmt.Errorf("repository: failed to commit charges update of order %s: %w", id, err)
		return nil, err
	}

	return r.GetByID(ctx, sellerID, id)
}

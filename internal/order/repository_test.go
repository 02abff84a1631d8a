package order_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/quickmemo/internal/order"
)

// Интеграционные тесты гоняются против живого Postgres с применёнными
// миграциями. Без TEST_DATABASE_URL они пропускаются.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set, skipping integration test")
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)
	cfg.ConnConfig.RuntimeParams["search_path"] = "quickmemo"

	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(context.Background(),
		`TRUNCATE order_items, order_headers, invoices, products, customers, sellers CASCADE`)
	require.NoError(t, err)

	return pool
}

type fixture struct {
	sellerID   uuid.UUID
	customerID uuid.UUID
	productA   uuid.UUID
	productB   uuid.UUID
}

// seedFixture заводит продавца, клиента и два товара с остатками 5 и 10.
func seedFixture(t *testing.T, pool *pgxpool.Pool) fixture {
	t.Helper()
	ctx := context.Background()

	var f fixture
	for _, id := range []*uuid.UUID{&f.sellerID, &f.customerID, &f.productA, &f.productB} {
		generated, err := uuid.NewV4()
		require.NoError(t, err)
		*id = generated
	}

	_, err := pool.Exec(ctx, `
		INSERT INTO sellers (id, name, shop_slug, currency, is_active, created_at, updated_at)
		VALUES ($1, 'Blue Mug Studio', 'blue-mug', 'USD', TRUE, now(), now())
	`, f.sellerID)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `
		INSERT INTO customers (id, seller_id, name, email, phone, address, created_at, updated_at)
		VALUES ($1, $2, 'Jordan Reeves', 'jordan@example.com', '', '', now(), now())
	`, f.customerID, f.sellerID)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `
		INSERT INTO products (id, seller_id, name, sku, description, price, stock, attributes, is_active, created_at, updated_at)
		VALUES
			($1, $3, 'Blue Mug', 'MUG-01', '', 10.00, 5, '{}', TRUE, now(), now()),
			($2, $3, 'Tea Towel', 'TWL-01', '', 5.00, 10, '{}', TRUE, now(), now())
	`, f.productA, f.productB, f.sellerID)
	require.NoError(t, err)

	return f
}

func productStock(t *testing.T, pool *pgxpool.Pool, productID uuid.UUID) int {
	t.Helper()
	var stock int
	err := pool.QueryRow(context.Background(),
		`SELECT stock FROM products WHERE id = $1`, productID).Scan(&stock)
	require.NoError(t, err)
	return stock
}

func newOrder(f fixture) *order.Order {
	return &order.Order{
		SellerID:       f.sellerID,
		CustomerID:     f.customerID,
		Status:         order.StatusPending,
		OrderSource:    "manual",
		ShippingAmount: 3,
		TaxAmount:      1,
		TotalAmount:    24,
		Items: []order.OrderItem{
			{ProductID: f.productA, Quantity: 1, UnitPrice: 10, Subtotal: 10},
			{ProductID: f.productB, Quantity: 2, UnitPrice: 5, Subtotal: 10},
		},
	}
}

func TestRepository_CreateOrder(t *testing.T) {
	pool := newTestPool(t)
	f := seedFixture(t, pool)
	repo := order.NewRepository(pool)
	ctx := context.Background()

	o := newOrder(f)
	require.NoError(t, repo.CreateOrder(ctx, o))

	// Остатки списаны атомарно с созданием заказа.
	assert.Equal(t, 4, productStock(t, pool, f.productA))
	assert.Equal(t, 8, productStock(t, pool, f.productB))

	fetched, err := repo.GetByID(ctx, f.sellerID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, fetched.Status)
	assert.Equal(t, 24.00, fetched.TotalAmount)
	assert.Equal(t, "Jordan Reeves", fetched.CustomerName)
	assert.Len(t, fetched.Items, 2)
	assert.Equal(t, "Blue Mug", fetched.Items[0].ProductName)
}

func TestRepository_CreateOrder_InsufficientStock(t *testing.T) {
	pool := newTestPool(t)
	f := seedFixture(t, pool)
	repo := order.NewRepository(pool)
	ctx := context.Background()

	o := newOrder(f)
	o.Items[1].Quantity = 100

	err := repo.CreateOrder(ctx, o)

	var stockErr *order.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, f.productB, stockErr.ProductID)
	assert.Equal(t, "Tea Towel", stockErr.ProductName)
	assert.Equal(t, 100, stockErr.Requested)
	assert.Equal(t, 10, stockErr.Available)

	// Отказ по одной позиции откатывает весь заказ, остатки не тронуты.
	assert.Equal(t, 5, productStock(t, pool, f.productA))
	assert.Equal(t, 10, productStock(t, pool, f.productB))

	_, err = repo.GetByID(ctx, f.sellerID, o.ID)
	assert.True(t, errors.Is(err, order.ErrOrderNotFound))
}

func TestRepository_CreateOrder_UnknownCustomer(t *testing.T) {
	pool := newTestPool(t)
	f := seedFixture(t, pool)
	repo := order.NewRepository(pool)

	stranger, err := uuid.NewV4()
	require.NoError(t, err)

	o := newOrder(f)
	o.CustomerID = stranger

	err = repo.CreateOrder(context.Background(), o)
	assert.True(t, errors.Is(err, order.ErrCustomerNotFound))
}

func TestRepository_Cancel(t *testing.T) {
	pool := newTestPool(t)
	f := seedFixture(t, pool)
	repo := order.NewRepository(pool)
	ctx := context.Background()

	o := newOrder(f)
	require.NoError(t, repo.CreateOrder(ctx, o))
	require.Equal(t, 4, productStock(t, pool, f.productA))

	cancelled, err := repo.Cancel(ctx, f.sellerID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, cancelled.Status)

	// Отмена вернула остатки.
	assert.Equal(t, 5, productStock(t, pool, f.productA))
	assert.Equal(t, 10, productStock(t, pool, f.productB))

	// Повторная отмена не проходит и не возвращает остатки второй раз.
	_, err = repo.Cancel(ctx, f.sellerID, o.ID)
	assert.True(t, errors.Is(err, order.ErrOrderCancelled))
	assert.Equal(t, 5, productStock(t, pool, f.productA))
}

func TestRepository_Cancel_WrongSeller(t *testing.T) {
	pool := newTestPool(t)
	f := seedFixture(t, pool)
	repo := order.NewRepository(pool)
	ctx := context.Background()

	o := newOrder(f)
	require.NoError(t, repo.CreateOrder(ctx, o))

	otherSeller, err := uuid.NewV4()
	require.NoError(t, err)

	_, err = repo.Cancel(ctx, otherSeller, o.ID)
	assert.True(t, errors.Is(err, order.ErrOrderNotFound))
}

func TestRepository_UpdateCharges(t *testing.T) {
	pool := newTestPool(t)
	f := seedFixture(t, pool)
	repo := order.NewRepository(pool)
	ctx := context.Background()

	o := newOrder(f)
	require.NoError(t, repo.CreateOrder(ctx, o))

	newShipping := 7.0
	updated, err := repo.UpdateCharges(ctx, f.sellerID, o.ID, order.ChargesPatch{ShippingAmount: &newShipping})
	require.NoError(t, err)

	// Итог пересчитан из позиций: 20 + 7 + 1.
	assert.Equal(t, 7.00, updated.ShippingAmount)
	assert.Equal(t, 1.00, updated.TaxAmount)
	assert.Equal(t, 28.00, updated.TotalAmount)
}

func TestRepository_UpdateCharges_CancelledOrder(t *testing.T) {
	pool := newTestPool(t)
	f := seedFixture(t, pool)
	repo := order.NewRepository(pool)
	ctx := context.Background()

	o := newOrder(f)
	require.NoError(t, repo.CreateOrder(ctx, o))

	_, err := repo.Cancel(ctx, f.sellerID, o.ID)
	require.NoError(t, err)

	newShipping := 7.0
	_, err = repo.UpdateCharges(ctx, f.sellerID, o.ID, order.ChargesPatch{ShippingAmount: &newShipping})
	assert.True(t, errors.Is(err, order.ErrOrderCancelled))
}

func TestRepository_ListBySeller(t *testing.T) {
	pool := newTestPool(t)
	f := seedFixture(t, pool)
	repo := order.NewRepository(pool)
	ctx := context.Background()

	first := newOrder(f)
	require.NoError(t, repo.CreateOrder(ctx, first))

	second := newOrder(f)
	second.Items = second.Items[:1]
	second.TotalAmount = 14
	require.NoError(t, repo.CreateOrder(ctx, second))

	orders, err := repo.ListBySeller(ctx, f.sellerID)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	for _, o := range orders {
		assert.Equal(t, "Jordan Reeves", o.CustomerName)
		assert.NotEmpty(t, o.Items)
	}

	otherSeller, err := uuid.NewV4()
	require.NoError(t, err)

	empty, err := repo.ListBySeller(ctx, otherSeller)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

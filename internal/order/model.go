package order

import (
	"time"

	"github.com/gofrs/uuid"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

func (os OrderStatus) String() string {
	return string(os)
}

// OrderItem — снимок товара на момент оформления.
// После создания строка не меняется, отмена только возвращает остатки.
type OrderItem struct {
	ID           uuid.UUID `json:"id" db:"id"`
	OrderID      uuid.UUID `json:"order_id" db:"order_id"`
	ProductID    uuid.UUID `json:"product_id" db:"product_id"`
	ProductName  string    `json:"product_name" db:"product_name"`
	Quantity     int       `json:"quantity" db:"quantity"`
	UnitPrice    float64   `json:"unit_price" db:"unit_price"`
	ItemDiscount float64   `json:"item_discount" db:"item_discount"`
	Subtotal     float64   `json:"subtotal" db:"subtotal"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type Order struct {
	ID             uuid.UUID   `json:"id" db:"id"`
	SellerID       uuid.UUID   `json:"seller_id" db:"seller_id"`
	CustomerID     uuid.UUID   `json:"customer_id" db:"customer_id"`
	CustomerName   string      `json:"customer_name" db:"-"`
	CustomerEmail  string      `json:"customer_email" db:"-"`
	Status         OrderStatus `json:"status" db:"status"`
	OrderSource    string      `json:"order_source" db:"order_source"`
	PaymentMethod  string      `json:"payment_method" db:"payment_method"`
	ShippingAmount float64     `json:"shipping_amount" db:"shipping_amount"`
	TaxAmount      float64     `json:"tax_amount" db:"tax_amount"`
	TotalAmount    float64     `json:"total_amount" db:"total_amount"`
	Items          []OrderItem `json:"items" db:"-"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`
}

// CreateOrderItemInput — одна позиция запроса на оформление заказа.
type CreateOrderItemInput struct {
	ProductID    uuid.UUID
	Quantity     int
	UnitPrice    float64
	ItemDiscount float64
}

type CreateOrderInput struct {
	CustomerID      uuid.UUID
	Items           []CreateOrderItemInput
	ShippingAmount  float64
	TaxAmount       float64
	OrderSource     string
	PaymentMethodID string
	GenerateInvoice bool
}

// ChargesPatch — изменение доставки/налога. Итог заказа пересчитывается
// в той же транзакции из сохранённых позиций.
type ChargesPatch struct {
	ShippingAmount *float64
	TaxAmount      *float64
}

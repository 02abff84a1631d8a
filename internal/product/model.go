package product

import (
	"time"

	"github.com/gofrs/uuid"
)

type Product struct {
	ID          uuid.UUID         `json:"id" db:"id"`
	SellerID    uuid.UUID         `json:"seller_id" db:"seller_id"`
	Name        string            `json:"name" db:"name"`
	SKU         string            `json:"sku" db:"sku"`
	Description string            `json:"description" db:"description"`
	Price       float64           `json:"price" db:"price"`
	Stock       int               `json:"stock" db:"stock"`
	Attributes  map[string]string `json:"attributes" db:"attributes"`
	IsActive    bool              `json:"is_active" db:"is_active"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at" db:"updated_at"`
}

// Patch — частичное обновление товара, nil-поле не трогаем.
// Остаток намеренно отсутствует: stock меняют только заказы.
type Patch struct {
	Name        *string
	SKU         *string
	Description *string
	Price       *float64
	Attributes  map[string]string
	IsActive    *bool
}

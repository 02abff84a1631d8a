package customer

import (
	"time"

	"github.com/gofrs/uuid"
)

type Customer struct {
	ID        uuid.UUID `json:"id" db:"id"`
	SellerID  uuid.UUID `json:"seller_id" db:"seller_id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone" db:"phone"`
	Address   string    `json:"address" db:"address"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Patch описывает частичное обновление карточки клиента.
// nil-поле означает "не трогать".
type Patch struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
}

package invoice

import (
	"fmt"
	"time"

	"github.com/gofrs/uuid"
)

type InvoiceStatus string

const (
	StatusDue     InvoiceStatus = "DUE"
	StatusPaid    InvoiceStatus = "PAID"
	StatusOverdue InvoiceStatus = "OVERDUE"
	StatusVoid    InvoiceStatus = "VOID"
	StatusPartial InvoiceStatus = "PARTIAL"
)

func (is InvoiceStatus) String() string {
	return string(is)
}

// Valid сообщает, входит ли статус в допустимый набор.
func (is InvoiceStatus) Valid() bool {
	switch is {
	case StatusDue, StatusPaid, StatusOverdue, StatusVoid, StatusPartial:
		return true
	}
	return false
}

type Invoice struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	SellerID      uuid.UUID     `json:"seller_id" db:"seller_id"`
	OrderID       uuid.UUID     `json:"order_id" db:"order_id"`
	InvoiceNumber string        `json:"invoice_number" db:"invoice_number"`
	Status        InvoiceStatus `json:"status" db:"status"`
	TotalAmount   float64       `json:"total_amount" db:"total_amount"`
	AmountPaid    float64       `json:"amount_paid" db:"amount_paid"`
	DueDate       *time.Time    `json:"due_date,omitempty" db:"due_date"`
	Notes         string        `json:"notes" db:"notes"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

type CreateInvoiceInput struct {
	OrderID uuid.UUID
	DueDate *time.Time
	Notes   string
}

// FormatNumber собирает номер счёта вида INV-2024-00001.
// seq — порядковый номер счёта продавца в этом году.
func FormatNumber(year, seq int) string {
	return fmt.Sprintf("INV-%d-%05d", year, seq)
}

package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// OrderLine captures an item at the moment the order was assembled,
// including the quantity that was reserved for it in the cart.
type OrderLine struct {
	ItemID    uuid.UUID       `json:"item_id"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Order is an immutable snapshot of a confirmed purchase. The only allowed
// transition is CONFIRMED -> CANCELLED.
type Order struct {
	ID        uuid.UUID   `json:"id"`
	UserID    uuid.UUID   `json:"user_id"`
	Status    OrderStatus `json:"status"`
	Lines     []OrderLine `json:"lines"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Total is the sum of line subtotals.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

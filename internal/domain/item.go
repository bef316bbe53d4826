package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is an inventory record. AvailableQuantity counts stock that is not
// reserved by any live cart.
type Item struct {
	ID                uuid.UUID       `json:"id"`
	Title             string          `json:"title"`
	Price             decimal.Decimal `json:"price"`
	AvailableQuantity int             `json:"available_quantity"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

package bootstrap

import (
	"context"

	"github.com/MarharytaFilipovych/store-application/internal/domain"
	"github.com/MarharytaFilipovych/store-application/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type seedItem struct {
	title string
	price string
	qty   int
}

var demoItems = []seedItem{
	{"Wireless Mouse", "24.99", 120},
	{"Mechanical Keyboard", "89.50", 45},
	{"USB-C Hub", "39.00", 80},
	{"Desk Lamp", "19.99", 60},
	{"Laptop Stand", "54.25", 30},
	{"Webcam 1080p", "69.90", 25},
	{"Noise-Cancelling Headphones", "199.00", 15},
	{"External SSD 1TB", "129.99", 40},
}

// SeedItems loads the demo catalog into an empty item store. A non-empty
// store is left alone so restarts don't duplicate inventory.
func SeedItems(ctx context.Context, items store.ItemStore) error {
	_, total, err := items.List(ctx, 1, 0)
	if err != nil {
		return err
	}
	if total > 0 {
		log.WithField("items", total).Info("catalog already populated, skipping seed")
		return nil
	}

	for _, s := range demoItems {
		price, err := decimal.NewFromString(s.price)
		if err != nil {
			return err
		}
		item := &domain.Item{
			ID:                uuid.New(),
			Title:             s.title,
			Price:             price,
			AvailableQuantity: s.qty,
		}
		if err := items.Save(ctx, item); err != nil {
			return err
		}
	}
	log.WithField("items", len(demoItems)).Info("seeded demo catalog")
	return nil
}

package cart

import (
	"context"
	"errors"

	"github.com/MarharytaFilipovych/store-application/internal/cache"
	"github.com/MarharytaFilipovych/store-application/internal/domain"
	"github.com/MarharytaFilipovych/store-application/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var (
	ErrItemNotInCart     = errors.New("item is not in the cart")
	ErrItemAlreadyInCart = errors.New("item is already in the cart, modify it instead")
	ErrInvalidQuantity   = errors.New("quantity must be a positive integer")
)

// Config controls engine policy.
type Config struct {
	// LegacyOverwriteOnAdd makes AddItem replace an existing reservation
	// instead of rejecting it. The previous reservation is released before
	// the new one is taken, so stock is conserved either way.
	LegacyOverwriteOnAdd bool
}

// Engine maintains the invariant-preserving mapping between one cart's
// reservations and the shared inventory counts. All inventory writes go
// through ItemStore.AdjustQuantity, the store's atomic update path, so carts
// in different sessions can race on the same item safely.
type Engine struct {
	items           store.ItemStore
	itemCache       cache.ItemCache
	legacyOverwrite bool
}

func NewEngine(items store.ItemStore, itemCache cache.ItemCache, cfg Config) *Engine {
	return &Engine{
		items:           items,
		itemCache:       itemCache,
		legacyOverwrite: cfg.LegacyOverwriteOnAdd,
	}
}

// AddItem reserves qty units of the item for this cart, decrementing the
// inventory's available count. Adding an item that is already in the cart is
// rejected unless the legacy overwrite policy is enabled, in which case the
// reservation is replaced delta-wise.
func (e *Engine) AddItem(ctx context.Context, c *Cart, itemID uuid.UUID, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	prev, exists := c.get(itemID)
	if exists && !e.legacyOverwrite {
		return ErrItemAlreadyInCart
	}

	// A single delta keeps the adjustment atomic even on the overwrite
	// path: there is no intermediate state where the old reservation is
	// released but the new one not yet taken.
	delta := qty - prev
	if err := e.items.AdjustQuantity(ctx, itemID, -delta); err != nil {
		return err
	}

	c.set(itemID, qty)
	e.invalidate(ctx, itemID)
	return nil
}

// ModifyItem changes an existing reservation to newQty, adjusting inventory
// by the difference. Decreases always succeed; increases require enough
// available stock for the delta.
func (e *Engine) ModifyItem(ctx context.Context, c *Cart, itemID uuid.UUID, newQty int) error {
	if newQty < 1 {
		return ErrInvalidQuantity
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	current, exists := c.get(itemID)
	if !exists {
		return ErrItemNotInCart
	}

	delta := newQty - current
	if delta != 0 {
		if err := e.items.AdjustQuantity(ctx, itemID, -delta); err != nil {
			return err
		}
	}

	c.set(itemID, newQty)
	e.invalidate(ctx, itemID)
	return nil
}

// RemoveItem releases the full reservation back to inventory and drops the
// entry. The item must still exist in the inventory store.
func (e *Engine) RemoveItem(ctx context.Context, c *Cart, itemID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	qty, exists := c.get(itemID)
	if !exists {
		return ErrItemNotInCart
	}

	if err := e.items.AdjustQuantity(ctx, itemID, qty); err != nil {
		return err
	}

	c.remove(itemID)
	e.invalidate(ctx, itemID)
	return nil
}

// ReleaseAll returns every reservation to inventory and empties the cart.
// Used when a session dies without ordering. Items that vanished from
// inventory are logged and skipped; their stock cannot be returned anywhere.
func (e *Engine) ReleaseAll(ctx context.Context, c *Cart) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids, quantities := c.snapshot()
	for _, id := range ids {
		if err := e.items.AdjustQuantity(ctx, id, quantities[id]); err != nil {
			log.WithError(err).WithField("item_id", id).Warn("failed to release cart reservation")
			continue
		}
		e.invalidate(ctx, id)
	}
	c.reset()
}

// Clear empties the cart without touching inventory. Used after an order is
// created, when the reservations have been committed to the order.
func (e *Engine) Clear(c *Cart) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

// Line is one rendered cart position.
type Line struct {
	ItemID    uuid.UUID       `json:"item_id"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Ordinal   int             `json:"ordinal"`
}

// View is the read-only rendering of a cart.
type View struct {
	Items         []Line          `json:"items"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	TotalQuantity int             `json:"total_quantity"`
}

// View renders the cart against current inventory records: titles and prices
// are re-fetched at read time, never cached from reservation time. Lines keep
// insertion order; ordinals are 1-based.
func (e *Engine) View(ctx context.Context, c *Cart) (*View, error) {
	c.mu.Lock()
	ids, quantities := c.snapshot()
	c.mu.Unlock()

	items, err := e.items.FindAllByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*domain.Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	view := &View{Items: make([]Line, 0, len(ids)), TotalPrice: decimal.Zero}
	for _, id := range ids {
		item, ok := byID[id]
		if !ok {
			return nil, store.ErrItemNotFound
		}
		qty := quantities[id]
		subtotal := item.Price.Mul(decimal.NewFromInt(int64(qty)))
		view.Items = append(view.Items, Line{
			ItemID:    id,
			Title:     item.Title,
			Quantity:  qty,
			UnitPrice: item.Price,
			Subtotal:  subtotal,
			Ordinal:   len(view.Items) + 1,
		})
		view.TotalPrice = view.TotalPrice.Add(subtotal)
		view.TotalQuantity += qty
	}
	return view, nil
}

// ReservedItem pairs an inventory record with the quantity this cart holds.
type ReservedItem struct {
	Item     *domain.Item
	Quantity int
}

// ReservedItems returns the raw inventory records for everything currently
// reserved, in insertion order. Order assembly reads the cart through this.
func (e *Engine) ReservedItems(ctx context.Context, c *Cart) ([]ReservedItem, error) {
	c.mu.Lock()
	ids, quantities := c.snapshot()
	c.mu.Unlock()

	items, err := e.items.FindAllByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	reserved := make([]ReservedItem, 0, len(items))
	for _, item := range items {
		reserved = append(reserved, ReservedItem{Item: item, Quantity: quantities[item.ID]})
	}
	return reserved, nil
}

func (e *Engine) invalidate(ctx context.Context, itemID uuid.UUID) {
	if e.itemCache == nil {
		return
	}
	if err := e.itemCache.Delete(ctx, itemID); err != nil {
		log.WithError(err).WithField("item_id", itemID).Warn("cache invalidate error")
	}
}

package cart

import (
	"sync"

	"github.com/google/uuid"
)

// Cart holds one session's reserved quantities, keyed by item id.
// Insertion order is preserved because it drives the ordinal in the rendered
// view. The zero quantity never appears: an entry exists iff its reservation
// is positive.
//
// A cart belongs to exactly one session but may be hit by concurrent requests
// from that session (two browser tabs), so every engine operation takes the
// cart's mutex for its whole read-modify-write sequence.
type Cart struct {
	mu       sync.Mutex
	quantity map[uuid.UUID]int
	order    []uuid.UUID
}

func New() *Cart {
	return &Cart{quantity: make(map[uuid.UUID]int)}
}

// get returns the reserved quantity for the item. Caller must hold mu.
func (c *Cart) get(itemID uuid.UUID) (int, bool) {
	qty, ok := c.quantity[itemID]
	return qty, ok
}

// set records a reservation, appending to the iteration order if the item is
// new. Caller must hold mu.
func (c *Cart) set(itemID uuid.UUID, qty int) {
	if _, exists := c.quantity[itemID]; !exists {
		c.order = append(c.order, itemID)
	}
	c.quantity[itemID] = qty
}

// remove deletes the entry and its position. Caller must hold mu.
func (c *Cart) remove(itemID uuid.UUID) {
	delete(c.quantity, itemID)
	for i, id := range c.order {
		if id == itemID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// reset empties the cart. Caller must hold mu.
func (c *Cart) reset() {
	c.quantity = make(map[uuid.UUID]int)
	c.order = nil
}

// snapshot copies the current entries in insertion order. Caller must hold mu.
func (c *Cart) snapshot() ([]uuid.UUID, map[uuid.UUID]int) {
	ids := make([]uuid.UUID, len(c.order))
	copy(ids, c.order)
	quantities := make(map[uuid.UUID]int, len(c.quantity))
	for id, qty := range c.quantity {
		quantities[id] = qty
	}
	return ids, quantities
}

// Len reports the number of distinct items in the cart.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.quantity)
}

// Quantity reports the reserved quantity for an item, zero if absent.
func (c *Cart) Quantity(itemID uuid.UUID) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quantity[itemID]
}

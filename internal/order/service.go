package order

import (
	"context"
	"errors"
	"time"

	"github.com/MarharytaFilipovych/store-application/internal/cart"
	"github.com/MarharytaFilipovych/store-application/internal/domain"
	"github.com/MarharytaFilipovych/store-application/internal/events"
	"github.com/MarharytaFilipovych/store-application/internal/store"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var (
	ErrEmptyCart        = errors.New("cart is empty, nothing to order")
	ErrAccessDenied     = errors.New("order belongs to another user")
	ErrAlreadyCancelled = errors.New("order is already cancelled")
)

// Service assembles orders from cart reservations and manages their
// lifecycle. Inventory is untouched here: stock was committed when the cart
// reserved it, and cancellation does not re-credit it.
type Service struct {
	orders    store.OrderStore
	users     store.UserStore
	engine    *cart.Engine
	publisher events.Publisher
}

func NewService(orders store.OrderStore, users store.UserStore, engine *cart.Engine, publisher events.Publisher) *Service {
	return &Service{
		orders:    orders,
		users:     users,
		engine:    engine,
		publisher: publisher,
	}
}

// CreateOrder snapshots the cart's current reservations into a CONFIRMED
// order. The caller clears the cart afterwards.
func (s *Service) CreateOrder(ctx context.Context, c *cart.Cart, userID uuid.UUID) (*domain.Order, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	reserved, err := s.engine.ReservedItems(ctx, c)
	if err != nil {
		return nil, err
	}
	if len(reserved) == 0 {
		return nil, ErrEmptyCart
	}

	now := time.Now()
	order := &domain.Order{
		ID:        uuid.New(),
		UserID:    userID,
		Status:    domain.OrderStatusConfirmed,
		Lines:     make([]domain.OrderLine, 0, len(reserved)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, r := range reserved {
		order.Lines = append(order.Lines, domain.OrderLine{
			ItemID:    r.Item.ID,
			Title:     r.Item.Title,
			UnitPrice: r.Item.Price,
			Quantity:  r.Quantity,
		})
	}

	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}

	s.publish(ctx, events.TypeOrderCreated, order)
	return order, nil
}

func (s *Service) GetOrderByID(ctx context.Context, id, userID uuid.UUID) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrAccessDenied
	}
	return order, nil
}

// CancelOrder transitions CONFIRMED -> CANCELLED. Cancelling a cancelled
// order is an error, not a no-op.
func (s *Service) CancelOrder(ctx context.Context, id, userID uuid.UUID) error {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if order.UserID != userID {
		return ErrAccessDenied
	}
	if order.Status == domain.OrderStatusCancelled {
		return ErrAlreadyCancelled
	}

	order.Status = domain.OrderStatusCancelled
	order.UpdatedAt = time.Now()
	if err := s.orders.Save(ctx, order); err != nil {
		return err
	}

	s.publish(ctx, events.TypeOrderCancelled, order)
	return nil
}

func (s *Service) ListUserOrders(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Order, int, error) {
	return s.orders.FindConfirmedByUser(ctx, userID, limit, offset)
}

// publish is best-effort: a broker outage must not fail the order.
func (s *Service) publish(ctx context.Context, eventType string, order *domain.Order) {
	err := s.publisher.Publish(ctx, events.OrderEvent{
		Type:       eventType,
		OrderID:    order.ID,
		UserID:     order.UserID,
		OccurredAt: time.Now(),
	})
	if err != nil {
		log.WithError(err).WithField("order_id", order.ID).Warn("failed to publish order event")
	}
}

package order

import (
	"context"
	"sync"
	"testing"

	"github.com/MarharytaFilipovych/store-application/internal/cart"
	"github.com/MarharytaFilipovych/store-application/internal/domain"
	"github.com/MarharytaFilipovych/store-application/internal/events"
	"github.com/MarharytaFilipovych/store-application/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingPublisher struct {
	m      sync.Mutex
	events []events.OrderEvent
}

func (p *capturingPublisher) Publish(_ context.Context, e events.OrderEvent) error {
	p.m.Lock()
	defer p.m.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *capturingPublisher) Close() error { return nil }

func (p *capturingPublisher) published() []events.OrderEvent {
	p.m.Lock()
	defer p.m.Unlock()
	return append([]events.OrderEvent(nil), p.events...)
}

type fixture struct {
	items     *store.MemoryItemStore
	orders    *store.MemoryOrderStore
	users     *store.MemoryUserStore
	engine    *cart.Engine
	publisher *capturingPublisher
	sut       *Service
	userID    uuid.UUID
}

func setup(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		items:     store.NewMemoryItemStore(),
		orders:    store.NewMemoryOrderStore(),
		users:     store.NewMemoryUserStore(),
		publisher: &capturingPublisher{},
		userID:    uuid.New(),
	}
	f.engine = cart.NewEngine(f.items, nil, cart.Config{})
	f.sut = NewService(f.orders, f.users, f.engine, f.publisher)

	require.NoError(t, f.users.Save(context.Background(), &domain.User{
		ID:    f.userID,
		Email: "buyer@example.com",
	}))
	return f
}

func (f *fixture) seedItem(t *testing.T, title string, price float64, qty int) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, f.items.Save(context.Background(), &domain.Item{
		ID:                id,
		Title:             title,
		Price:             decimal.NewFromFloat(price),
		AvailableQuantity: qty,
	}))
	return id
}

func TestCreateOrder_Success(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	first := f.seedItem(t, "first", 9.99, 10)
	second := f.seedItem(t, "second", 5.00, 10)

	c := cart.New()
	require.NoError(t, f.engine.AddItem(ctx, c, first, 2))
	require.NoError(t, f.engine.AddItem(ctx, c, second, 1))

	order, err := f.sut.CreateOrder(ctx, c, f.userID)
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusConfirmed, order.Status)
	assert.Equal(t, f.userID, order.UserID)
	require.Len(t, order.Lines, 2)

	// Quantities from the cart are preserved on the order lines
	assert.Equal(t, first, order.Lines[0].ItemID)
	assert.Equal(t, 2, order.Lines[0].Quantity)
	assert.Equal(t, "first", order.Lines[0].Title)
	assert.True(t, decimal.NewFromFloat(9.99).Equal(order.Lines[0].UnitPrice))
	assert.Equal(t, 1, order.Lines[1].Quantity)

	assert.True(t, decimal.NewFromFloat(24.98).Equal(order.Total()))

	// Persisted
	stored, err := f.orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusConfirmed, stored.Status)

	published := f.publisher.published()
	require.Len(t, published, 1)
	assert.Equal(t, events.TypeOrderCreated, published[0].Type)
	assert.Equal(t, order.ID, published[0].OrderID)
}

func TestCreateOrder_UnknownUser(t *testing.T) {
	f := setup(t)
	c := cart.New()

	_, err := f.sut.CreateOrder(context.Background(), c, uuid.New())
	require.ErrorIs(t, err, store.ErrUserNotFound)
	assert.Empty(t, f.publisher.published())
}

func TestCreateOrder_EmptyCart(t *testing.T) {
	f := setup(t)
	c := cart.New()

	_, err := f.sut.CreateOrder(context.Background(), c, f.userID)
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestGetOrderByID_Success(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := f.seedItem(t, "book", 10.00, 5)

	c := cart.New()
	require.NoError(t, f.engine.AddItem(ctx, c, id, 1))
	created, err := f.sut.CreateOrder(ctx, c, f.userID)
	require.NoError(t, err)

	got, err := f.sut.GetOrderByID(ctx, created.ID, f.userID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestGetOrderByID_NotFound(t *testing.T) {
	f := setup(t)

	_, err := f.sut.GetOrderByID(context.Background(), uuid.New(), f.userID)
	require.ErrorIs(t, err, store.ErrOrderNotFound)
}

func TestGetOrderByID_OtherUser_AccessDenied(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := f.seedItem(t, "book", 10.00, 5)

	c := cart.New()
	require.NoError(t, f.engine.AddItem(ctx, c, id, 1))
	created, err := f.sut.CreateOrder(ctx, c, f.userID)
	require.NoError(t, err)

	_, err = f.sut.GetOrderByID(ctx, created.ID, uuid.New())
	require.ErrorIs(t, err, ErrAccessDenied)
}

func TestCancelOrder_Success(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	itemID := f.seedItem(t, "book", 10.00, 5)

	c := cart.New()
	require.NoError(t, f.engine.AddItem(ctx, c, itemID, 2))
	created, err := f.sut.CreateOrder(ctx, c, f.userID)
	require.NoError(t, err)

	require.NoError(t, f.sut.CancelOrder(ctx, created.ID, f.userID))

	stored, err := f.orders.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, stored.Status)

	// Cancellation does not restore inventory: stock was committed at
	// reservation time.
	item, err := f.items.FindByID(ctx, itemID)
	require.NoError(t, err)
	assert.Equal(t, 3, item.AvailableQuantity)

	published := f.publisher.published()
	require.Len(t, published, 2)
	assert.Equal(t, events.TypeOrderCancelled, published[1].Type)
}

func TestCancelOrder_AlreadyCancelled(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := f.seedItem(t, "book", 10.00, 5)

	c := cart.New()
	require.NoError(t, f.engine.AddItem(ctx, c, id, 1))
	created, err := f.sut.CreateOrder(ctx, c, f.userID)
	require.NoError(t, err)

	require.NoError(t, f.sut.CancelOrder(ctx, created.ID, f.userID))
	err = f.sut.CancelOrder(ctx, created.ID, f.userID)
	require.ErrorIs(t, err, ErrAlreadyCancelled)
}

func TestCancelOrder_OtherUser_AccessDenied(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := f.seedItem(t, "book", 10.00, 5)

	c := cart.New()
	require.NoError(t, f.engine.AddItem(ctx, c, id, 1))
	created, err := f.sut.CreateOrder(ctx, c, f.userID)
	require.NoError(t, err)

	err = f.sut.CancelOrder(ctx, created.ID, uuid.New())
	require.ErrorIs(t, err, ErrAccessDenied)

	stored, err := f.orders.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusConfirmed, stored.Status)
}

func TestListUserOrders_ConfirmedOnly_NewestFirst(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := f.seedItem(t, "book", 10.00, 50)

	var created []*domain.Order
	for i := 0; i < 3; i++ {
		c := cart.New()
		require.NoError(t, f.engine.AddItem(ctx, c, id, 1))
		o, err := f.sut.CreateOrder(ctx, c, f.userID)
		require.NoError(t, err)
		created = append(created, o)
	}
	// Cancel the middle one; it must disappear from the listing
	require.NoError(t, f.sut.CancelOrder(ctx, created[1].ID, f.userID))

	orders, total, err := f.sut.ListUserOrders(ctx, f.userID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, orders, 2)
	for _, o := range orders {
		assert.Equal(t, domain.OrderStatusConfirmed, o.Status)
		assert.NotEqual(t, created[1].ID, o.ID)
	}
}

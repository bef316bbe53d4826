package store

import (
	"context"
	"testing"
	"time"

	"github.com/MarharytaFilipovych/store-application/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newItem(t *testing.T, s *MemoryItemStore, title string, qty int) *domain.Item {
	t.Helper()
	item := &domain.Item{
		ID:                uuid.New(),
		Title:             title,
		Price:             decimal.NewFromFloat(9.99),
		AvailableQuantity: qty,
	}
	require.NoError(t, s.Save(context.Background(), item))
	return item
}

func TestItemStore_FindByID_ReturnsCopy(t *testing.T) {
	s := NewMemoryItemStore()
	item := newItem(t, s, "lamp", 5)

	got, err := s.FindByID(context.Background(), item.ID)
	require.NoError(t, err)
	got.AvailableQuantity = 0

	again, err := s.FindByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, again.AvailableQuantity)
}

func TestItemStore_FindByID_NotFound(t *testing.T) {
	s := NewMemoryItemStore()

	_, err := s.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestItemStore_FindAllByID_PreservesOrderAndSkipsUnknown(t *testing.T) {
	s := NewMemoryItemStore()
	first := newItem(t, s, "first", 1)
	second := newItem(t, s, "second", 1)

	got, err := s.FindAllByID(context.Background(), []uuid.UUID{second.ID, uuid.New(), first.ID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "second", got[0].Title)
	assert.Equal(t, "first", got[1].Title)
}

func TestItemStore_AdjustQuantity(t *testing.T) {
	s := NewMemoryItemStore()
	item := newItem(t, s, "lamp", 5)
	ctx := context.Background()

	require.NoError(t, s.AdjustQuantity(ctx, item.ID, -3))

	got, err := s.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.AvailableQuantity)

	require.NoError(t, s.AdjustQuantity(ctx, item.ID, 4))
	got, err = s.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, got.AvailableQuantity)
}

func TestItemStore_AdjustQuantity_Insufficient(t *testing.T) {
	s := NewMemoryItemStore()
	item := newItem(t, s, "lamp", 5)
	ctx := context.Background()

	err := s.AdjustQuantity(ctx, item.ID, -6)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	got, err := s.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.AvailableQuantity, "failed adjustment must not change the record")
}

func TestItemStore_AdjustQuantity_UnknownItem(t *testing.T) {
	s := NewMemoryItemStore()

	err := s.AdjustQuantity(context.Background(), uuid.New(), -1)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestItemStore_Save_PreservesCreatedAt(t *testing.T) {
	s := NewMemoryItemStore()
	item := newItem(t, s, "lamp", 5)

	saved, err := s.FindByID(context.Background(), item.ID)
	require.NoError(t, err)
	created := saved.CreatedAt

	saved.Title = "brighter lamp"
	require.NoError(t, s.Save(context.Background(), saved))

	again, err := s.FindByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, "brighter lamp", again.Title)
	assert.True(t, again.CreatedAt.Equal(created))
}

func TestItemStore_List_Paging(t *testing.T) {
	s := NewMemoryItemStore()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		item := &domain.Item{
			ID:                uuid.New(),
			Title:             "item",
			Price:             decimal.NewFromInt(1),
			AvailableQuantity: 1,
			CreatedAt:         base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, s.Save(context.Background(), item))
	}

	page, total, err := s.List(context.Background(), 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	assert.True(t, page[0].CreatedAt.Before(page[1].CreatedAt))

	page, total, err = s.List(context.Background(), 2, 4)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, page, 1)

	page, total, err = s.List(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Empty(t, page)
}

func TestOrderStore_FindConfirmedByUser(t *testing.T) {
	s := NewMemoryOrderStore()
	ctx := context.Background()
	userID := uuid.New()

	save := func(status domain.OrderStatus, createdAt time.Time, user uuid.UUID) *domain.Order {
		o := &domain.Order{
			ID:        uuid.New(),
			UserID:    user,
			Status:    status,
			CreatedAt: createdAt,
		}
		require.NoError(t, s.Save(ctx, o))
		return o
	}

	now := time.Now()
	oldest := save(domain.OrderStatusConfirmed, now.Add(-3*time.Hour), userID)
	newest := save(domain.OrderStatusConfirmed, now.Add(-time.Hour), userID)
	save(domain.OrderStatusCancelled, now, userID)
	save(domain.OrderStatusConfirmed, now, uuid.New())

	orders, total, err := s.FindConfirmedByUser(ctx, userID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, orders, 2)
	assert.Equal(t, newest.ID, orders[0].ID)
	assert.Equal(t, oldest.ID, orders[1].ID)

	orders, total, err = s.FindConfirmedByUser(ctx, userID, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, orders, 1)
	assert.Equal(t, oldest.ID, orders[0].ID)
}

func TestOrderStore_SaveReturnsDeepCopies(t *testing.T) {
	s := NewMemoryOrderStore()
	ctx := context.Background()

	order := &domain.Order{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Status: domain.OrderStatusConfirmed,
		Lines: []domain.OrderLine{
			{ItemID: uuid.New(), Title: "lamp", UnitPrice: decimal.NewFromInt(10), Quantity: 2},
		},
	}
	require.NoError(t, s.Save(ctx, order))

	got, err := s.FindByID(ctx, order.ID)
	require.NoError(t, err)
	got.Lines[0].Quantity = 99

	again, err := s.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, again.Lines[0].Quantity)
}

func TestOrderStore_FindByID_NotFound(t *testing.T) {
	s := NewMemoryOrderStore()

	_, err := s.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestUserStore_EmailLookupIsCaseInsensitive(t *testing.T) {
	s := NewMemoryUserStore()
	ctx := context.Background()

	user := &domain.User{ID: uuid.New(), Email: "Kate@Example.com", PasswordHash: "x"}
	require.NoError(t, s.Save(ctx, user))

	got, err := s.FindByEmail(ctx, "kate@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	exists, err := s.ExistsByEmail(ctx, "KATE@EXAMPLE.COM")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUserStore_FindByEmail_NotFound(t *testing.T) {
	s := NewMemoryUserStore()

	_, err := s.FindByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestResetCodeStore_ConsumeIsSingleUse(t *testing.T) {
	s := NewMemoryResetCodeStore()
	ctx := context.Background()

	code := &domain.ResetCode{
		Code:      uuid.New(),
		UserID:    uuid.New(),
		ExpiresAt: time.Now().Add(time.Minute),
	}
	require.NoError(t, s.Save(ctx, code))

	got, err := s.Consume(ctx, code.Code)
	require.NoError(t, err)
	assert.Equal(t, code.UserID, got.UserID)

	_, err = s.Consume(ctx, code.Code)
	assert.ErrorIs(t, err, ErrResetCodeNotFound)
}

func TestResetCodeStore_ExpiredCode(t *testing.T) {
	s := NewMemoryResetCodeStore()
	ctx := context.Background()

	code := &domain.ResetCode{
		Code:      uuid.New(),
		UserID:    uuid.New(),
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, s.Save(ctx, code))

	_, err := s.Consume(ctx, code.Code)
	assert.ErrorIs(t, err, ErrResetCodeNotFound)
}

package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, eventID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	return m.Called().Error(0)
}

func TestIdempotentHandler_FirstDeliveryIsHandled(t *testing.T) {
	store := new(MockIdempotencyStore)
	inner := &testHandler{eventTypes: []string{"order.created"}}
	h := NewIdempotentHandler(inner, store, nil)
	ctx := context.Background()
	event := newTestEvent("order.created")

	store.On("MarkProcessed", ctx, event.EventID().String(), 24*time.Hour).Return(true, nil)

	require.NoError(t, h.Handle(ctx, event))
	assert.Equal(t, 1, inner.count())
	assert.Equal(t, IdempotencyStats{Processed: 1}, h.Stats())
	assert.Equal(t, []string{"order.created"}, h.EventTypes())
	store.AssertExpectations(t)
}

func TestIdempotentHandler_DuplicateIsSkipped(t *testing.T) {
	store := new(MockIdempotencyStore)
	inner := &testHandler{}
	h := NewIdempotentHandler(inner, store, nil)
	ctx := context.Background()

	store.On("MarkProcessed", ctx, mock.Anything, mock.Anything).Return(false, nil)

	require.NoError(t, h.Handle(ctx, newTestEvent("order.created")))
	assert.Equal(t, 0, inner.count())
	assert.Equal(t, IdempotencyStats{Duplicates: 1}, h.Stats())
}

func TestIdempotentHandler_StoreErrorStillProcesses(t *testing.T) {
	store := new(MockIdempotencyStore)
	inner := &testHandler{}
	h := NewIdempotentHandler(inner, store, nil)
	ctx := context.Background()

	store.On("MarkProcessed", ctx, mock.Anything, mock.Anything).Return(false, errors.New("redis timeout"))

	require.NoError(t, h.Handle(ctx, newTestEvent("order.created")))
	assert.Equal(t, 1, inner.count())
}

func TestIdempotentHandler_HandlerErrorIsReturned(t *testing.T) {
	store := new(MockIdempotencyStore)
	inner := &testHandler{err: errors.New("publish failed")}
	h := NewIdempotentHandler(inner, store, nil)
	ctx := context.Background()

	store.On("MarkProcessed", ctx, mock.Anything, mock.Anything).Return(true, nil)

	err := h.Handle(ctx, newTestEvent("order.created"))
	assert.EqualError(t, err, "publish failed")
	assert.Equal(t, IdempotencyStats{Failed: 1}, h.Stats())
}

func TestIdempotentHandler_Disabled(t *testing.T) {
	store := new(MockIdempotencyStore)
	inner := &testHandler{}
	h := NewIdempotentHandler(inner, store, nil,
		WithIdempotencyConfig(shared.IdempotencyConfig{Enabled: false}))

	require.NoError(t, h.Handle(context.Background(), newTestEvent("order.created")))
	assert.Equal(t, 1, inner.count())
	store.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
}

func TestIdempotentHandler_CustomTTL(t *testing.T) {
	store := new(MockIdempotencyStore)
	h := NewIdempotentHandler(&testHandler{}, store, nil,
		WithIdempotencyConfig(shared.IdempotencyConfig{Enabled: true, TTL: time.Hour}))
	ctx := context.Background()
	event := newTestEvent("order.created")

	store.On("MarkProcessed", ctx, event.EventID().String(), time.Hour).Return(true, nil)

	require.NoError(t, h.Handle(ctx, event))
	store.AssertExpectations(t)
}

package order

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helpers
func money(s string) valueobject.Money {
	return valueobject.MustParseMoney(s)
}

func newTestOrder(t *testing.T) *Order {
	t.Helper()
	o, err := NewOrder(NewOrderInput{
		OrderNumber:   "ORD-AB12CD34",
		UserID:        uuid.New(),
		Customer:      CustomerInfo{Name: "Jane Doe", Email: "jane@example.com", Phone: "555-0100"},
		Shipping:      ShippingAddress{City: "Lyon", PostalCode: "69001", StreetAddress: "1 Rue de la République"},
		PaymentMethod: PaymentMethodCashOnDelivery,
		ShippingCost:  money("5.00"),
		TaxAmount:     money("2.00"),
		Lines: []LineInput{
			{ProductID: uuid.New(), ProductName: "Widget", UnitPrice: money("10.00"), Quantity: 3},
		},
	})
	require.NoError(t, err)
	return o
}

// ============================================
// Status Tests
// ============================================

func TestStatus_IsValid(t *testing.T) {
	for _, s := range AllStatuses {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, Status("refunded").IsValid())
	assert.False(t, Status("").IsValid())
}

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
		want bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusShipped, true},
		{StatusPending, StatusCancelled, true},
		{StatusConfirmed, StatusProcessing, true},
		{StatusProcessing, StatusDelivered, true},
		{StatusShipped, StatusCancelled, true},
		{StatusShipped, StatusConfirmed, false},
		{StatusPending, StatusPending, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusDelivered, StatusShipped, false},
		{StatusCancelled, StatusPending, false},
		{StatusPending, Status("lost"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestPaymentMethod_IsValid(t *testing.T) {
	for _, m := range AllPaymentMethods {
		assert.True(t, m.IsValid())
	}
	assert.False(t, PaymentMethod("bitcoin").IsValid())
}

// ============================================
// Order Tests
// ============================================

func TestNewOrder_Totals(t *testing.T) {
	o := newTestOrder(t)

	assert.Equal(t, StatusPending, o.Status)
	assert.False(t, o.IsPaid)
	assert.Nil(t, o.PaidAt)
	assert.Equal(t, "30.00", o.Subtotal.String())
	assert.Equal(t, "37.00", o.TotalPrice.String())
	require.Len(t, o.Items, 1)
	assert.Equal(t, "30.00", o.Items[0].Subtotal.String())
	assert.Equal(t, o.ID, o.Items[0].OrderID)

	events := o.PullDomainEvents()
	require.Len(t, events, 1)
	created, ok := events[0].(*CreatedEvent)
	require.True(t, ok)
	assert.Equal(t, EventTypeCreated, created.EventType())
	assert.Equal(t, "ORD-AB12CD34", created.OrderNumber)
}

func TestNewOrder_MultipleLinesRounding(t *testing.T) {
	o, err := NewOrder(NewOrderInput{
		OrderNumber:   "ORD-00000001",
		Customer:      CustomerInfo{Name: "A"},
		PaymentMethod: PaymentMethodCard,
		ShippingCost:  money("0"),
		TaxAmount:     money("1.99"),
		Lines: []LineInput{
			{ProductID: uuid.New(), ProductName: "A", UnitPrice: money("19.99"), Quantity: 3},
			{ProductID: uuid.New(), ProductName: "B", UnitPrice: money("0.01"), Quantity: 7},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "60.04", o.Subtotal.String())
	assert.Equal(t, "62.03", o.TotalPrice.String())
	assert.True(t, o.TotalPrice.Equals(ComputeTotal(o.Subtotal, o.ShippingCost, o.TaxAmount)))
}

func TestNewOrder_Validation(t *testing.T) {
	base := func() NewOrderInput {
		return NewOrderInput{
			OrderNumber:   "ORD-AAAAAAAA",
			Customer:      CustomerInfo{Name: "A"},
			PaymentMethod: PaymentMethodQuote,
			Lines:         []LineInput{{ProductID: uuid.New(), ProductName: "X", UnitPrice: money("1"), Quantity: 1}},
		}
	}

	tests := []struct {
		name   string
		mutate func(in *NewOrderInput)
	}{
		{name: "bad order number", mutate: func(in *NewOrderInput) { in.OrderNumber = "ORD-abc" }},
		{name: "missing customer", mutate: func(in *NewOrderInput) { in.Customer.Name = "" }},
		{name: "bad payment method", mutate: func(in *NewOrderInput) { in.PaymentMethod = "barter" }},
		{name: "no lines", mutate: func(in *NewOrderInput) { in.Lines = nil }},
		{name: "zero quantity", mutate: func(in *NewOrderInput) { in.Lines[0].Quantity = 0 }},
		{name: "nil product", mutate: func(in *NewOrderInput) { in.Lines[0].ProductID = uuid.Nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base()
			tt.mutate(&in)
			_, err := NewOrder(in)
			assert.ErrorIs(t, err, shared.ErrValidation)
		})
	}
}

func TestOrder_TransitionTo(t *testing.T) {
	o := newTestOrder(t)
	o.PullDomainEvents()

	entry, err := o.TransitionTo(StatusConfirmed, "staff-1")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, o.Status)
	assert.Equal(t, 2, o.Version)
	require.NotNil(t, entry.OldStatus)
	assert.Equal(t, StatusPending, *entry.OldStatus)
	assert.Equal(t, StatusConfirmed, entry.NewStatus)
	assert.Equal(t, "staff-1", entry.Actor)

	events := o.PullDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeStatusChanged, events[0].EventType())

	t.Run("backwards is rejected", func(t *testing.T) {
		_, err := o.TransitionTo(StatusPending, "staff-1")
		assert.ErrorIs(t, err, shared.ErrInvalidStateTransition)
		assert.Equal(t, StatusConfirmed, o.Status)
	})

	t.Run("unknown status is a validation error", func(t *testing.T) {
		_, err := o.TransitionTo(Status("lost"), "staff-1")
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestOrder_SetPaid(t *testing.T) {
	o := newTestOrder(t)
	first := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	changed, err := o.SetPaid(true, first, "staff-1")
	require.NoError(t, err)
	assert.True(t, changed)
	require.NotNil(t, o.PaidAt)
	assert.Equal(t, first, *o.PaidAt)

	changed, err = o.SetPaid(true, first.Add(time.Hour), "staff-1")
	require.NoError(t, err)
	assert.False(t, changed, "second paid=true is idempotent")
	assert.Equal(t, first, *o.PaidAt)

	changed, err = o.SetPaid(false, first, "staff-1")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Nil(t, o.PaidAt)

	_, err = o.TransitionTo(StatusCancelled, "staff-1")
	require.NoError(t, err)
	_, err = o.SetPaid(true, first, "staff-1")
	assert.ErrorIs(t, err, shared.ErrInvalidStateTransition)
}

func TestOrder_CanDelete(t *testing.T) {
	o := newTestOrder(t)
	assert.NoError(t, o.CanDelete())

	_, err := o.SetPaid(true, time.Now(), "staff")
	require.NoError(t, err)
	assert.ErrorIs(t, o.CanDelete(), shared.ErrConflict)

	delivered := newTestOrder(t)
	_, err = delivered.TransitionTo(StatusDelivered, "staff")
	require.NoError(t, err)
	assert.ErrorIs(t, delivered.CanDelete(), shared.ErrConflict)
}

func TestRequestedQuantities(t *testing.T) {
	p := uuid.New()
	q := RequestedQuantities([]LineInput{{ProductID: p, Quantity: 2}, {ProductID: p, Quantity: 3}})
	assert.Equal(t, 5, q[p])
}

// ============================================
// History Tests
// ============================================

func TestReplayHistory(t *testing.T) {
	o := newTestOrder(t)
	entries := []StatusHistory{o.InitialHistory("customer")}
	for _, next := range []Status{StatusConfirmed, StatusShipped, StatusDelivered} {
		e, err := o.TransitionTo(next, "staff")
		require.NoError(t, err)
		entries = append(entries, e)
	}

	final, err := ReplayHistory(entries)
	require.NoError(t, err)
	assert.Equal(t, o.Status, final)

	t.Run("gap is detected", func(t *testing.T) {
		broken := append([]StatusHistory{entries[0]}, entries[2:]...)
		_, err := ReplayHistory(broken)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("missing creation entry", func(t *testing.T) {
		_, err := ReplayHistory(entries[1:])
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ReplayHistory(nil)
		assert.Error(t, err)
	})
}

func TestSortHistory_OrdersBySequence(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	pending := StatusPending
	confirmed := StatusConfirmed

	t.Run("equal timestamps", func(t *testing.T) {
		entries := []StatusHistory{
			{NewStatus: StatusConfirmed, OldStatus: &pending, Sequence: 2, CreatedAt: ts},
			{NewStatus: StatusPending, Sequence: 1, CreatedAt: ts},
		}
		SortHistory(entries)
		assert.Equal(t, 1, entries[0].Sequence)
		assert.Equal(t, 2, entries[1].Sequence)
	})

	t.Run("skewed clocks", func(t *testing.T) {
		entries := []StatusHistory{
			{NewStatus: StatusShipped, OldStatus: &confirmed, Sequence: 3, CreatedAt: ts.Add(-time.Minute)},
			{NewStatus: StatusConfirmed, OldStatus: &pending, Sequence: 2, CreatedAt: ts.Add(-2 * time.Minute)},
			{NewStatus: StatusPending, Sequence: 1, CreatedAt: ts},
		}
		SortHistory(entries)

		status, err := ReplayHistory(entries)
		require.NoError(t, err)
		assert.Equal(t, StatusShipped, status)
	})
}

// ============================================
// Number Generator Tests
// ============================================

func TestNumberGenerator_Generate(t *testing.T) {
	g := NewNumberGenerator()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		n, err := g.Generate()
		require.NoError(t, err)
		assert.True(t, IsValidOrderNumber(n), n)
		seen[n] = true
	}
	assert.Greater(t, len(seen), 95)
}

func TestNumberGenerator_Deterministic(t *testing.T) {
	// bytes >= 252 are skipped
	src := bytes.NewReader([]byte{255, 0, 1, 2, 25, 26, 35, 36, 71, 0, 0, 0, 0, 0, 0, 0})
	n, err := NewNumberGeneratorFrom(src).Generate()
	require.NoError(t, err)
	assert.Equal(t, "ORD-ABCZ09A9", n)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestNumberGenerator_SourceError(t *testing.T) {
	_, err := NewNumberGeneratorFrom(failingReader{}).Generate()
	assert.Error(t, err)
}

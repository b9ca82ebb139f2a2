package order

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const (
	// maxOrderNumberAttempts bounds the order number collision retry loop
	maxOrderNumberAttempts = 5
	maxPageSize            = 100
)

// subtotalTolerance is the largest accepted gap between client and server subtotals
var subtotalTolerance = valueobject.MustParseMoney("0.01")

// NumberGenerator produces order number candidates
type NumberGenerator interface {
	Generate() (string, error)
}

// Service handles checkout and the order lifecycle
type Service struct {
	scope          TransactionScope
	orders         order.Repository
	history        order.HistoryRepository
	numbers        NumberGenerator
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewService creates a new order Service
func NewService(scope TransactionScope, orders order.Repository, history order.HistoryRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		scope:   scope,
		orders:  orders,
		history: history,
		numbers: order.NewNumberGenerator(),
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SetEventPublisher sets the publisher that receives events after commit
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetNumberGenerator replaces the order number generator
func (s *Service) SetNumberGenerator(g NumberGenerator) {
	s.numbers = g
}

// SetClock replaces the time source used for paidAt stamps
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

type parsedCheckout struct {
	paymentMethod order.PaymentMethod
	subtotal      valueobject.Money
	shippingCost  valueobject.Money
	taxAmount     valueobject.Money
}

func validateCheckout(in CreateOrderInput) (parsedCheckout, error) {
	var (
		details []shared.ErrorDetail
		p       parsedCheckout
	)
	parse := func(field, value string) valueobject.Money {
		m, err := valueobject.ParseMoney(value)
		if err != nil {
			details = append(details, shared.ErrorDetail{Field: field, Message: "must be a non-negative amount with at most 2 decimals"})
		}
		return m
	}
	p.subtotal = parse("subtotal", in.Subtotal)
	p.shippingCost = parse("shippingCost", in.ShippingCost)
	p.taxAmount = parse("taxAmount", in.TaxAmount)

	p.paymentMethod = order.PaymentMethod(in.PaymentMethod)
	if !p.paymentMethod.IsValid() {
		details = append(details, shared.ErrorDetail{Field: "paymentMethod", Message: "must be one of quote, cash_on_delivery, card"})
	}
	if in.CustomerName == "" {
		details = append(details, shared.ErrorDetail{Field: "customerName", Message: "is required"})
	}
	if len(in.Items) == 0 {
		details = append(details, shared.ErrorDetail{Field: "items", Message: "must contain at least one item"})
	}
	for i, item := range in.Items {
		if item.ProductID == uuid.Nil {
			details = append(details, shared.ErrorDetail{Field: fmt.Sprintf("items[%d].productId", i), Message: "is required"})
		}
		if item.Quantity <= 0 {
			details = append(details, shared.ErrorDetail{Field: fmt.Sprintf("items[%d].quantity", i), Message: "must be greater than 0"})
		}
	}

	if len(details) > 0 {
		err := shared.NewDomainError(shared.CodeValidation, "Invalid checkout request")
		return parsedCheckout{}, err.WithDetails(details...)
	}
	return p, nil
}

// CreateOrder validates a checkout, re-prices it from the catalog and commits the order,
// its items, the stock decrements and the initial history entry in one transaction.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (_ *OrderReceipt, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "checkout",
		telemetry.SpanAttrUserID, in.UserID.String(),
		telemetry.SpanAttrItemCount, len(in.Items),
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	parsed, err := validateCheckout(in)
	if err != nil {
		return nil, err
	}

	actor := in.UserID.String()
	var created *order.Order

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		lines, err := s.priceLines(ctx, repos.Products(), in.Items, parsed.subtotal)
		if err != nil {
			return err
		}

		number, err := s.allocateOrderNumber(ctx, repos.Orders())
		if err != nil {
			return err
		}

		o, err := order.NewOrder(order.NewOrderInput{
			OrderNumber: number,
			UserID:      in.UserID,
			Customer: order.CustomerInfo{
				Name:  in.CustomerName,
				Email: in.CustomerEmail,
				Phone: in.CustomerPhone,
			},
			Shipping: order.ShippingAddress{
				City:          in.City,
				PostalCode:    in.PostalCode,
				StreetAddress: in.StreetAddress,
			},
			PaymentMethod: parsed.paymentMethod,
			ShippingCost:  parsed.shippingCost,
			TaxAmount:     parsed.taxAmount,
			Lines:         lines,
		})
		if err != nil {
			return err
		}

		if err := repos.Orders().Create(ctx, o); err != nil {
			return err
		}
		if err := decrementStock(ctx, repos.Products(), lines); err != nil {
			return err
		}
		entry := o.InitialHistory(actor)
		if err := repos.History().Append(ctx, &entry); err != nil {
			return err
		}

		created = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order created",
		zap.String("order_id", created.ID.String()),
		zap.String("order_number", created.OrderNumber),
		zap.String("total_price", created.TotalPrice.String()),
		zap.Int("items", len(created.Items)),
	)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, created.ID.String(),
		telemetry.SpanAttrOrderNumber, created.OrderNumber,
	)
	s.publish(ctx, created)

	resp := ToOrderResponse(created)
	return &OrderReceipt{
		OrderID:     created.ID,
		OrderNumber: created.OrderNumber,
		Status:      created.Status,
		TotalPrice:  created.TotalPrice,
		CreatedAt:   created.CreatedAt,
		Order:       &resp,
	}, nil
}

// priceLines loads every referenced product, rebuilds the subtotal from list prices,
// compares it with the client subtotal and checks stock per product.
func (s *Service) priceLines(ctx context.Context, products catalog.ProductRepository, items []CheckoutItem, clientSubtotal valueobject.Money) ([]order.LineInput, error) {
	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]bool, len(items))
	for _, item := range items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}

	found, err := products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}

	lines := make([]order.LineInput, 0, len(items))
	serverSubtotal := valueobject.Zero()
	for _, item := range items {
		p, ok := byID[item.ProductID]
		if !ok {
			return nil, shared.NewNotFoundError("product", item.ProductID)
		}
		serverSubtotal = serverSubtotal.Add(p.Price.MultiplyByInt(int64(item.Quantity)))
		lines = append(lines, order.LineInput{
			ProductID:   p.ID,
			ProductName: p.Name.En,
			UnitPrice:   p.Price,
			Quantity:    item.Quantity,
		})
	}

	if !serverSubtotal.WithinTolerance(clientSubtotal, subtotalTolerance) {
		return nil, shared.NewValidationError("subtotal",
			fmt.Sprintf("Subtotal mismatch: expected %s, got %s", serverSubtotal.Round(), clientSubtotal))
	}

	for productID, requested := range order.RequestedQuantities(lines) {
		p := byID[productID]
		if !p.CanFulfil(requested) {
			return nil, catalog.NewInsufficientStockError(p.ID, p.Name.En, p.Stock, requested)
		}
	}
	return lines, nil
}

// decrementStock applies the conditional decrements in product id order
func decrementStock(ctx context.Context, products catalog.ProductRepository, lines []order.LineInput) error {
	requested := order.RequestedQuantities(lines)
	ids := make([]uuid.UUID, 0, len(requested))
	for id := range requested {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	for _, id := range ids {
		qty := requested[id]
		ok, err := products.DecrementStock(ctx, id, qty)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		// Lost a race since the check; report what is left now.
		current, err := products.FindByID(ctx, id)
		if err != nil {
			return err
		}
		return catalog.NewInsufficientStockError(id, current.Name.En, current.Stock, qty)
	}
	return nil
}

func (s *Service) allocateOrderNumber(ctx context.Context, orders order.Repository) (string, error) {
	for attempt := 1; attempt <= maxOrderNumberAttempts; attempt++ {
		candidate, err := s.numbers.Generate()
		if err != nil {
			return "", err
		}
		exists, err := orders.ExistsByOrderNumber(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		s.logger.Warn("Order number collision",
			zap.String("order_number", candidate),
			zap.Int("attempt", attempt),
		)
	}
	return "", shared.NewConflictError("Could not allocate a unique order number")
}

// UpdateStatus applies a status transition and appends the history entry atomically
func (s *Service) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string, actor string) (_ *OrderResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "update_status",
		telemetry.SpanAttrOrderID, orderID.String(),
		telemetry.SpanAttrOrderStatus, status,
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	target := order.Status(status)
	if !target.IsValid() {
		return nil, shared.NewValidationError("status", fmt.Sprintf("Unknown status %q", status))
	}

	var updated *order.Order
	var from order.Status
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		from = o.Status
		entry, err := o.TransitionTo(target, actor)
		if err != nil {
			return err
		}
		if err := repos.Orders().UpdateState(ctx, o); err != nil {
			return err
		}
		if err := repos.History().Append(ctx, &entry); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order status changed",
		zap.String("order_id", updated.ID.String()),
		zap.String("order_number", updated.OrderNumber),
		zap.String("from", from.String()),
		zap.String("status", updated.Status.String()),
		zap.String("actor", actor),
	)
	s.publish(ctx, updated)

	resp := ToOrderResponse(updated)
	return &resp, nil
}

// UpdatePaymentStatus sets or clears the paid flag
func (s *Service) UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, isPaid bool, actor string) (*OrderResponse, error) {
	var updated *order.Order
	var changed bool
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		changed, err = o.SetPaid(isPaid, s.now(), actor)
		if err != nil {
			return err
		}
		if changed {
			if err := repos.Orders().UpdateState(ctx, o); err != nil {
				return err
			}
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.logger.Info("Order payment updated",
			zap.String("order_id", updated.ID.String()),
			zap.String("order_number", updated.OrderNumber),
			zap.Bool("is_paid", updated.IsPaid),
			zap.String("actor", actor),
		)
		s.publish(ctx, updated)
	}

	resp := ToOrderResponse(updated)
	return &resp, nil
}

// DeleteOrder removes an order with its items and history. Paid and delivered orders are kept.
func (s *Service) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := o.CanDelete(); err != nil {
			return err
		}
		return repos.Orders().Delete(ctx, orderID)
	})
	if err != nil {
		return err
	}
	s.logger.Info("Order deleted", zap.String("order_id", orderID.String()))
	return nil
}

// GetOrder returns an order with its items if the viewer may see it
func (s *Service) GetOrder(ctx context.Context, orderID uuid.UUID, viewer Viewer) (*OrderResponse, error) {
	o, err := s.loadVisible(ctx, orderID, viewer)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// ListOrders pages through orders. Customers only see their own.
func (s *Service) ListOrders(ctx context.Context, q ListOrdersQuery) (shared.Paginated[OrderResponse], error) {
	filter := shared.DefaultFilter()
	filter.Page = q.Page
	filter.PageSize = q.PageSize
	filter = filter.Normalize(maxPageSize)

	if q.Status != "" {
		status := order.Status(q.Status)
		if !status.IsValid() {
			return shared.Paginated[OrderResponse]{}, shared.NewValidationError("status", fmt.Sprintf("Unknown status %q", q.Status))
		}
		filter.Filters["status"] = status
	}
	if !q.Viewer.IsStaff {
		filter.Filters["user_id"] = q.Viewer.UserID
	}

	orders, err := s.orders.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[OrderResponse]{}, err
	}
	total, err := s.orders.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[OrderResponse]{}, err
	}

	items := make([]OrderResponse, len(orders))
	for i := range orders {
		items[i] = ToOrderResponse(&orders[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// GetHistory returns the status history in chronological order
func (s *Service) GetHistory(ctx context.Context, orderID uuid.UUID, viewer Viewer) ([]HistoryResponse, error) {
	if _, err := s.loadVisible(ctx, orderID, viewer); err != nil {
		return nil, err
	}
	entries, err := s.history.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order.SortHistory(entries)
	return ToHistoryResponses(entries), nil
}

func (s *Service) loadVisible(ctx context.Context, orderID uuid.UUID, viewer Viewer) (*order.Order, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("order", orderID)
		}
		return nil, err
	}
	if !viewer.CanSee(o.UserID) {
		return nil, shared.ErrForbidden
	}
	return o, nil
}

// publish hands pending events to the bus. Delivery failures never fail the caller.
func (s *Service) publish(ctx context.Context, o *order.Order) {
	events := o.PullDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(context.WithoutCancel(ctx), events...); err != nil {
		s.logger.Warn("Failed to publish order events",
			zap.String("order_id", o.ID.String()),
			zap.Error(err),
		)
	}
}

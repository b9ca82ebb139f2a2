package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apporder "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// OrderService is the order engine as seen by the HTTP layer
type OrderService interface {
	CreateOrder(ctx context.Context, in apporder.CreateOrderInput) (*apporder.OrderReceipt, error)
	GetOrder(ctx context.Context, orderID uuid.UUID, viewer apporder.Viewer) (*apporder.OrderResponse, error)
	ListOrders(ctx context.Context, q apporder.ListOrdersQuery) (shared.Paginated[apporder.OrderResponse], error)
	GetHistory(ctx context.Context, orderID uuid.UUID, viewer apporder.Viewer) ([]apporder.HistoryResponse, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status string, actor string) (*apporder.OrderResponse, error)
	UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, isPaid bool, actor string) (*apporder.OrderResponse, error)
	DeleteOrder(ctx context.Context, orderID uuid.UUID) error
}

// OrderHandler handles checkout and order management endpoints
type OrderHandler struct {
	BaseHandler
	orders OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// CheckoutItemRequest is one requested line
type CheckoutItemRequest struct {
	ProductID string `json:"productId" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"gt=0"`
}

// CheckoutRequest is the checkout body. Amounts are decimal strings.
type CheckoutRequest struct {
	CustomerName  string                `json:"customerName" binding:"required,max=255"`
	CustomerEmail string                `json:"customerEmail" binding:"required,email,max=255"`
	CustomerPhone string                `json:"customerPhone" binding:"required,max=50"`
	City          string                `json:"city" binding:"required,max=100"`
	PostalCode    string                `json:"postalCode" binding:"required,max=20"`
	StreetAddress string                `json:"streetAddress" binding:"required,max=255"`
	PaymentMethod string                `json:"paymentMethod" binding:"required,oneof=quote cash_on_delivery card"`
	Subtotal      string                `json:"subtotal" binding:"required,money"`
	ShippingCost  string                `json:"shippingCost" binding:"required,money"`
	TaxAmount     string                `json:"taxAmount" binding:"required,money"`
	Items         []CheckoutItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateStatusRequest changes an order's status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdatePaymentRequest sets or clears the paid flag
type UpdatePaymentRequest struct {
	IsPaid *bool `json:"isPaid" binding:"required"`
}

// ListOrdersRequest holds the list query parameters
type ListOrdersRequest struct {
	dto.PageQuery
	Status string `form:"status"`
}

func viewerFrom(c *gin.Context) apporder.Viewer {
	userID, _ := middleware.GetUserID(c)
	return apporder.Viewer{UserID: userID, IsStaff: middleware.IsStaff(c)}
}

// Checkout places an order for the authenticated user
func (h *OrderHandler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(c, err)
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		h.HandleError(c, shared.ErrUnauthorized)
		return
	}

	items := make([]apporder.CheckoutItem, len(req.Items))
	for i, it := range req.Items {
		// binding already checked the uuid format
		items[i] = apporder.CheckoutItem{ProductID: uuid.MustParse(it.ProductID), Quantity: it.Quantity}
	}

	receipt, err := h.orders.CreateOrder(c.Request.Context(), apporder.CreateOrderInput{
		UserID:        userID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		City:          req.City,
		PostalCode:    req.PostalCode,
		StreetAddress: req.StreetAddress,
		PaymentMethod: req.PaymentMethod,
		Subtotal:      req.Subtotal,
		ShippingCost:  req.ShippingCost,
		TaxAmount:     req.TaxAmount,
		Items:         items,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, receipt)
}

// List pages through orders visible to the caller
func (h *OrderHandler) List(c *gin.Context) {
	req := ListOrdersRequest{PageQuery: dto.DefaultPageQuery()}
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleBindError(c, err)
		return
	}

	page, err := h.orders.ListOrders(c.Request.Context(), apporder.ListOrdersQuery{
		Viewer:   viewerFrom(c),
		Status:   req.Status,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, page)
}

// Get returns one order with its items
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	o, err := h.orders.GetOrder(c.Request.Context(), id, viewerFrom(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// History returns the status history, oldest first
func (h *OrderHandler) History(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	entries, err := h.orders.GetHistory(c.Request.Context(), id, viewerFrom(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

// UpdateStatus moves an order along its lifecycle
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(c, err)
		return
	}

	o, err := h.orders.UpdateStatus(c.Request.Context(), id, req.Status, actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// UpdatePayment records whether the order has been paid
func (h *OrderHandler) UpdatePayment(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(c, err)
		return
	}

	o, err := h.orders.UpdatePaymentStatus(c.Request.Context(), id, *req.IsPaid, actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// Delete removes an order with its items and history
func (h *OrderHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.orders.DeleteOrder(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

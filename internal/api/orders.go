package api

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/models"
)

// CreateOrderRequest is the body of POST /orders
type CreateOrderRequest struct {
	UserID    string                 `json:"userId,omitempty"`
	VendorID  string                 `json:"vendorId"`
	BranchID  string                 `json:"branchId"`
	SectionID string                 `json:"sectionId,omitempty"`
	LotID     string                 `json:"lotId,omitempty"`
	StaffID   string                 `json:"staffId"`
	AddressID string                 `json:"addressId,omitempty"`
	Action    models.OrderAction     `json:"action"`
	Type      models.FulfillmentType `json:"type"`
	Delivery  models.DeliveryMode    `json:"delivery"`
	Status    models.OrderStatus     `json:"status"`
	Meta      map[string]interface{} `json:"meta"`
	Items     []models.OrderItem     `json:"items"`
}

// UpdateOrderRequest is the body of PUT /orders/:id
type UpdateOrderRequest struct {
	Status  models.OrderStatus `json:"status"`
	Ref     string             `json:"ref,omitempty"`
	StaffID string             `json:"staffId"`
}

// OrderFilter narrows GET /orders
type OrderFilter struct {
	Status models.OrderStatus
	Start  time.Time
	Page   int
	Per    int
}

// PaymentRequest is the body of POST /payments
type PaymentRequest struct {
	OrderID   string          `json:"orderId"`
	InvoiceID string          `json:"invoiceId,omitempty"`
	VendorID  string          `json:"vendorId,omitempty"`
	UserID    string          `json:"userId,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Payer     string          `json:"payer,omitempty"`
}

// CreateOrder posts a new order. The idempotency key lets the backend drop a
// resubmission of the same draft.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest, idempotencyKey string) (*models.Order, error) {
	var headers map[string]string
	if idempotencyKey != "" {
		headers = map[string]string{"Idempotency-Key": idempotencyKey}
	}

	var order models.Order
	if err := c.post(ctx, "orders", req, headers, &order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return &order, nil
}

func (c *Client) UpdateOrder(ctx context.Context, id string, req UpdateOrderRequest) (*models.Order, error) {
	var order models.Order
	if err := c.put(ctx, "orders/"+url.PathEscape(id), req, &order); err != nil {
		return nil, fmt.Errorf("failed to update order %s: %w", id, err)
	}
	return &order, nil
}

func (c *Client) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := c.get(ctx, "orders/"+url.PathEscape(id), nil, &order); err != nil {
		return nil, fmt.Errorf("failed to get order %s: %w", id, err)
	}
	return &order, nil
}

func (c *Client) ListOrders(ctx context.Context, f OrderFilter) (*models.Page[models.Order], error) {
	params := ListParams{Page: f.Page, Per: f.Per, Extra: url.Values{}}
	if f.Status != "" {
		params.Extra.Set("status", string(f.Status))
	}
	if !f.Start.IsZero() {
		params.Extra.Set("start", f.Start.Format("2006-01-02"))
	}
	return list[models.Order](ctx, c, "orders", params)
}

func (c *Client) CreatePayment(ctx context.Context, req PaymentRequest) (*models.Payment, error) {
	var p models.Payment
	if err := c.post(ctx, "payments", req, nil, &p); err != nil {
		return nil, fmt.Errorf("failed to create payment for order %s: %w", req.OrderID, err)
	}
	return &p, nil
}

func (c *Client) UpdatePayment(ctx context.Context, id string, update models.PaymentUpdate) (*models.Payment, error) {
	var p models.Payment
	if err := c.put(ctx, "payments/"+url.PathEscape(id), update, &p); err != nil {
		return nil, fmt.Errorf("failed to update payment %s: %w", id, err)
	}
	return &p, nil
}

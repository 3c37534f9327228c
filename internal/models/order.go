package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderAction is what the customer is doing with the order
type OrderAction string

const (
	ActionPurchase    OrderAction = "Purchase"
	ActionReservation OrderAction = "Reservation"
)

// FulfillmentType decides whether an order must be scheduled
type FulfillmentType string

const (
	TypeInstant  FulfillmentType = "Instant"
	TypePreorder FulfillmentType = "Preorder"
)

// DeliveryMode decides location requirements and fees
type DeliveryMode string

const (
	DeliveryDinein   DeliveryMode = "Dinein"
	DeliveryTakeaway DeliveryMode = "Takeaway"
	DeliveryDelivery DeliveryMode = "Delivery"
)

// Origin tells whether a takeaway customer is on the premises
type Origin string

const (
	OriginIn  Origin = "in"
	OriginOut Origin = "out"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	StatusPending    OrderStatus = "Pending"
	StatusPlaced     OrderStatus = "Placed"
	StatusProcessing OrderStatus = "Processing"
	StatusDelivering OrderStatus = "Delivering"
	StatusRejected   OrderStatus = "Rejected"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCompleted  OrderStatus = "Completed"
	StatusCancelled  OrderStatus = "Cancelled"
)

// ErrIllegalTransition is returned when a status change is not offered from the current status
var ErrIllegalTransition = errors.New("illegal order status transition")

// transitions is the status graph offered by the staff order screens.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusPlaced},
	StatusPlaced:     {StatusProcessing, StatusRejected, StatusDelivering, StatusDelivered, StatusCompleted, StatusCancelled},
	StatusProcessing: {StatusDelivering, StatusDelivered, StatusCompleted},
	StatusDelivering: {StatusDelivered, StatusCompleted, StatusCancelled},
	StatusDelivered:  {StatusCompleted},
}

// ParseFulfillmentType validates a fulfillment type string
func ParseFulfillmentType(s string) (FulfillmentType, error) {
	switch t := FulfillmentType(s); t {
	case TypeInstant, TypePreorder:
		return t, nil
	default:
		return "", ValidationError{Field: "type", Message: "type must be one of: Instant, Preorder"}
	}
}

// ParseDeliveryMode validates a delivery mode string
func ParseDeliveryMode(s string) (DeliveryMode, error) {
	switch d := DeliveryMode(s); d {
	case DeliveryDinein, DeliveryTakeaway, DeliveryDelivery:
		return d, nil
	default:
		return "", ValidationError{Field: "delivery", Message: "delivery must be one of: Dinein, Takeaway, Delivery"}
	}
}

// ParseOrigin validates a takeaway origin flag
func ParseOrigin(s string) (Origin, error) {
	switch o := Origin(s); o {
	case OriginIn, OriginOut:
		return o, nil
	default:
		return "", ValidationError{Field: "origin", Message: "origin must be one of: in, out"}
	}
}

// ParseOrderStatus validates a status string
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(s); st {
	case StatusPending, StatusPlaced, StatusProcessing, StatusDelivering,
		StatusRejected, StatusDelivered, StatusCompleted, StatusCancelled:
		return st, nil
	default:
		return "", ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", s)}
	}
}

// NextStatuses returns the statuses a staff member may move an order to
func NextStatuses(from OrderStatus) []OrderStatus {
	next := transitions[from]
	out := make([]OrderStatus, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether from -> to is offered
func CanTransition(from, to OrderStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further status change is offered
func (s OrderStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// OrderItem is a line of a persisted order
type OrderItem struct {
	ID        string                 `json:"id,omitempty"`
	ProductID string                 `json:"productId"`
	Name      string                 `json:"name,omitempty"`
	Price     decimal.Decimal        `json:"price"`
	Quantity  int                    `json:"quantity"`
	Meta      map[string]interface{} `json:"meta,omitempty"`
}

// Invoice is a bill raised against an order
type Invoice struct {
	ID      string          `json:"id"`
	OrderID string          `json:"orderId"`
	Amount  decimal.Decimal `json:"amount"`
	Status  string          `json:"status"`
}

// Order represents an order persisted by the backend
type Order struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"userId"`
	VendorID  string                 `json:"vendorId"`
	BranchID  string                 `json:"branchId,omitempty"`
	SectionID string                 `json:"sectionId,omitempty"`
	LotID     string                 `json:"lotId,omitempty"`
	StaffID   string                 `json:"staffId,omitempty"`
	Status    OrderStatus            `json:"status"`
	Action    OrderAction            `json:"action"`
	Type      FulfillmentType        `json:"type"`
	Delivery  DeliveryMode           `json:"delivery"`
	Ref       string                 `json:"ref,omitempty"`
	Meta      map[string]interface{} `json:"meta,omitempty"`
	Total     decimal.Decimal        `json:"total"`
	CreatedAt time.Time              `json:"createdAt,omitempty"`
	UpdatedAt time.Time              `json:"updatedAt,omitempty"`

	Customer *User       `json:"customer,omitempty"`
	Staff    *User       `json:"staff,omitempty"`
	Section  *Section    `json:"section,omitempty"`
	Vendor   *Vendor     `json:"vendor,omitempty"`
	Items    []OrderItem `json:"items"`
	Invoices []Invoice   `json:"invoices,omitempty"`
	Payments []Payment   `json:"payments,omitempty"`
}

// Subtotal sums price * quantity over the items
func (o *Order) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// ComputedTotal is the subtotal plus every charge recorded under meta.charges
func (o *Order) ComputedTotal() decimal.Decimal {
	total := o.Subtotal()

	charges, ok := o.Meta["charges"].(map[string]interface{})
	if !ok {
		return total
	}
	for _, v := range charges {
		if d, ok := toDecimal(v); ok {
			total = total.Add(d)
		}
	}
	return total
}

// FirstInvoiceID returns the id of the first invoice, if any
func (o *Order) FirstInvoiceID() string {
	if len(o.Invoices) == 0 {
		return ""
	}
	return o.Invoices[0].ID
}

func toDecimal(v interface{}) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case float64:
		return decimal.NewFromFloat(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(n)
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}

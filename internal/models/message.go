package models

import (
	"fmt"
	"strings"
	"time"
)

// EventKind names an order lifecycle event published on the bus
type EventKind string

const (
	EventOrderCreated       EventKind = "order.created"
	EventOrderStatusChanged EventKind = "order.status_changed"
	EventPaymentRecorded    EventKind = "payment.recorded"
)

// OrderEventMessage is published whenever the terminal changes an order
type OrderEventMessage struct {
	Kind      EventKind       `json:"kind"`
	OrderID   string          `json:"order_id"`
	VendorID  string          `json:"vendor_id"`
	StaffID   string          `json:"staff_id,omitempty"`
	Type      FulfillmentType `json:"type,omitempty"`
	Delivery  DeliveryMode    `json:"delivery,omitempty"`
	Total     string          `json:"total,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// StatusUpdateMessage represents a status update notification
type StatusUpdateMessage struct {
	OrderID   string      `json:"order_id"`
	OldStatus OrderStatus `json:"old_status"`
	NewStatus OrderStatus `json:"new_status"`
	ChangedBy string      `json:"changed_by"`
	Timestamp time.Time   `json:"timestamp"`
}

// PaymentRecordedMessage is published after a payment reference is confirmed
type PaymentRecordedMessage struct {
	PaymentID string    `json:"payment_id"`
	Ref       string    `json:"ref"`
	Status    string    `json:"status,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// CreateOrderCreatedMessage builds the event for a freshly persisted order
func CreateOrderCreatedMessage(order *Order) *OrderEventMessage {
	return &OrderEventMessage{
		Kind:      EventOrderCreated,
		OrderID:   order.ID,
		VendorID:  order.VendorID,
		StaffID:   order.StaffID,
		Type:      order.Type,
		Delivery:  order.Delivery,
		Total:     order.ComputedTotal().StringFixed(2),
		Timestamp: time.Now().UTC(),
	}
}

// CreateStatusUpdateMessage creates a StatusUpdateMessage for order status changes
func CreateStatusUpdateMessage(orderID string, oldStatus, newStatus OrderStatus, changedBy string) *StatusUpdateMessage {
	return &StatusUpdateMessage{
		OrderID:   orderID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		ChangedBy: changedBy,
		Timestamp: time.Now().UTC(),
	}
}

// GenerateRoutingKey generates a routing key for order events, e.g. order.created.dinein
func GenerateRoutingKey(kind EventKind, delivery DeliveryMode) string {
	if delivery == "" {
		return string(kind)
	}
	return fmt.Sprintf("%s.%s", kind, strings.ToLower(string(delivery)))
}


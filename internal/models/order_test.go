package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{StatusPending, StatusPlaced, true},
		{StatusPending, StatusProcessing, false},
		{StatusPlaced, StatusProcessing, true},
		{StatusPlaced, StatusRejected, true},
		{StatusPlaced, StatusCancelled, true},
		{StatusProcessing, StatusDelivering, true},
		{StatusProcessing, StatusCompleted, true},
		{StatusProcessing, StatusRejected, false},
		{StatusProcessing, StatusPending, false},
		{StatusCompleted, StatusPending, false},
		{StatusRejected, StatusPlaced, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	for _, s := range []OrderStatus{StatusCompleted, StatusCancelled, StatusRejected} {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	if StatusPlaced.IsTerminal() {
		t.Errorf("Placed should not be terminal")
	}
}

func TestNextStatuses_ReturnsCopy(t *testing.T) {
	next := NextStatuses(StatusPending)
	next[0] = StatusCancelled
	if !CanTransition(StatusPending, StatusPlaced) {
		t.Fatalf("mutating the returned slice changed the graph")
	}
}

func TestParsers(t *testing.T) {
	if _, err := ParseFulfillmentType("Preorder"); err != nil {
		t.Errorf("Preorder rejected: %v", err)
	}
	if _, err := ParseFulfillmentType("preorder"); err == nil {
		t.Errorf("lowercase type accepted")
	}
	if _, err := ParseDeliveryMode("Takeaway"); err != nil {
		t.Errorf("Takeaway rejected: %v", err)
	}
	if _, err := ParseDeliveryMode("Drone"); err == nil {
		t.Errorf("unknown delivery accepted")
	}
	if _, err := ParseOrigin("out"); err != nil {
		t.Errorf("out rejected: %v", err)
	}
	if _, err := ParseOrderStatus("Closed"); err == nil {
		t.Errorf("unknown status accepted")
	}
}

func TestOrder_ComputedTotal(t *testing.T) {
	raw := `{
		"id": "O1",
		"vendorId": "V1",
		"status": "Pending",
		"items": [
			{"productId": "P1", "price": 100, "quantity": 2},
			{"productId": "P2", "price": "50.50", "quantity": 1}
		],
		"meta": {"charges": {"AppInApp": 5.01, "Delivery": 25}},
		"invoices": [{"id": "INV1", "orderId": "O1", "amount": 280.51, "status": "Pending"}]
	}`

	var order Order
	if err := json.Unmarshal([]byte(raw), &order); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got := order.Subtotal(); !got.Equal(decimal.RequireFromString("250.50")) {
		t.Errorf("Subtotal = %s", got)
	}
	if got := order.ComputedTotal(); !got.Equal(decimal.RequireFromString("280.51")) {
		t.Errorf("ComputedTotal = %s", got)
	}
	if order.FirstInvoiceID() != "INV1" {
		t.Errorf("FirstInvoiceID = %q", order.FirstInvoiceID())
	}
}

func TestProductForm_MissingAnswers(t *testing.T) {
	form := ProductForm{
		Sections: []FormSection{
			{Fields: []FormField{{Name: "size", Required: true}, {Name: "notes"}}},
			{Skippable: true, Fields: []FormField{{Name: "gift", Required: true}}},
		},
	}

	missing := form.MissingAnswers(map[string]interface{}{"notes": "no onions"})
	if len(missing) != 1 || missing[0] != "size" {
		t.Errorf("missing = %v", missing)
	}
	if missing := form.MissingAnswers(map[string]interface{}{"size": "L"}); len(missing) != 0 {
		t.Errorf("missing = %v", missing)
	}
}

func TestGenerateRoutingKey(t *testing.T) {
	if got := GenerateRoutingKey(EventOrderCreated, DeliveryDinein); got != "order.created.dinein" {
		t.Errorf("routing key = %q", got)
	}
	if got := GenerateRoutingKey(EventPaymentRecorded, ""); got != "payment.recorded" {
		t.Errorf("routing key = %q", got)
	}
}

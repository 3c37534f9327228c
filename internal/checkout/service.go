package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"storefront/internal/access"
	"storefront/internal/api"
	"storefront/internal/cart"
	"storefront/internal/draft"
	"storefront/internal/logger"
	"storefront/internal/models"
	"storefront/internal/navigation"
	"storefront/internal/session"
)

var (
	// ErrMissingSessionContext is returned before any network call when staff, branch or vendor is unknown
	ErrMissingSessionContext = errors.New("missing staff, branch or vendor")

	// ErrEmptyCart is returned when the vendor has nothing to order
	ErrEmptyCart = errors.New("vendor cart is empty")
)

// ActionPay routes a freshly created order to the payment screen
const ActionPay = "pay"

// Backend is the part of the REST backend used by checkout
type Backend interface {
	CreateOrder(ctx context.Context, req api.CreateOrderRequest, idempotencyKey string) (*models.Order, error)
	UpdateOrder(ctx context.Context, id string, req api.UpdateOrderRequest) (*models.Order, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	CreatePayment(ctx context.Context, req api.PaymentRequest) (*models.Payment, error)
	UpdatePayment(ctx context.Context, id string, update models.PaymentUpdate) (*models.Payment, error)
	ListProducts(ctx context.Context, params api.ListParams) (*models.Page[models.Product], error)
	ListSections(ctx context.Context, params api.ListParams) (*models.Page[models.Section], error)
	ListAddresses(ctx context.Context, params api.ListParams) (*models.Page[models.Address], error)
}

// Publisher announces order events to other services
type Publisher interface {
	PublishOrderEvent(ctx context.Context, routingKey string, event interface{}) error
}

// SessionFunc returns the signed-in operator, nil when signed out
type SessionFunc func() *session.Session

// Dependencies wires a Service
type Dependencies struct {
	Backend   Backend
	Cart      *cart.Store
	Draft     *draft.Builder
	Router    navigation.Router
	Session   SessionFunc
	Publisher Publisher
	Pricing   draft.Pricing
	Logger    *logger.Logger
}

// Service turns a ready draft and a vendor cart into a backend order and
// bridges it to payment
type Service struct {
	backend   Backend
	cart      *cart.Store
	draft     *draft.Builder
	router    navigation.Router
	session   SessionFunc
	publisher Publisher
	pricing   draft.Pricing
	logger    *logger.Logger

	mu          sync.Mutex
	pendingKeys map[string]string
}

func NewService(deps Dependencies) *Service {
	return &Service{
		backend:     deps.Backend,
		cart:        deps.Cart,
		draft:       deps.Draft,
		router:      deps.Router,
		session:     deps.Session,
		publisher:   deps.Publisher,
		pricing:     deps.Pricing,
		logger:      deps.Logger,
		pendingKeys: make(map[string]string),
	}
}

// Result is a successful submission
type Result struct {
	Order       *models.Order          `json:"order"`
	Charges     draft.Charges          `json:"charges"`
	Destination access.Screen          `json:"destination"`
	Params      map[string]interface{} `json:"params,omitempty"`
}

// CreateOrder sends the current draft merged with meta for one vendor. A failure
// leaves cart and draft untouched and is returned, never swallowed.
func (s *Service) CreateOrder(ctx context.Context, vendorID string, meta map[string]interface{}) (*models.Order, error) {
	requestID := logger.GenerateRequestID()
	d := s.draft.Draft()

	if vendorID == "" || d.StaffID == "" || d.BranchID == "" {
		s.logger.Error("validation_failed", "Order context incomplete", requestID, ErrMissingSessionContext, map[string]interface{}{
			"vendor_id": vendorID,
			"staff_id":  d.StaffID,
			"branch_id": d.BranchID,
		})
		return nil, ErrMissingSessionContext
	}

	lines := s.cart.Lines(vendorID)
	if len(lines) == 0 {
		return nil, fmt.Errorf("vendor %s: %w", vendorID, ErrEmptyCart)
	}

	req := api.CreateOrderRequest{
		VendorID:  vendorID,
		BranchID:  d.BranchID,
		SectionID: d.SectionID,
		LotID:     d.LotID,
		StaffID:   d.StaffID,
		AddressID: d.AddressID,
		Action:    d.Action,
		Type:      d.Type,
		Delivery:  d.Delivery,
		Status:    models.StatusPending,
		Meta:      mergeMeta(d.Meta, meta),
		Items:     make([]models.OrderItem, 0, len(lines)),
	}
	if customer := s.cart.Customer(); customer != nil {
		req.UserID = customer.ID
	} else {
		req.UserID = d.UserID
	}
	for _, l := range lines {
		req.Items = append(req.Items, l.OrderItem())
	}

	order, err := s.backend.CreateOrder(ctx, req, s.idempotencyKey(vendorID))
	if err != nil {
		s.logger.Error("order_creation_failed", "Failed to create order", requestID, err, map[string]interface{}{
			"vendor_id": vendorID,
			"items":     len(req.Items),
		})
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode < 500 {
			s.clearIdempotencyKey(vendorID)
		}
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.clearIdempotencyKey(vendorID)

	s.logger.Info("order_created", "Order created", requestID, map[string]interface{}{
		"order_id":  order.ID,
		"vendor_id": vendorID,
		"delivery":  string(order.Delivery),
	})

	s.publish(ctx, requestID, models.GenerateRoutingKey(models.EventOrderCreated, order.Delivery), models.CreateOrderCreatedMessage(order))
	return order, nil
}

// Submit validates the draft, prices it, creates the order and routes the
// operator to payment or to the confirmation screen. Nothing is navigated,
// cleared or reset when the order is not created.
func (s *Service) Submit(ctx context.Context, vendorID, action string) (*Result, error) {
	d := s.draft.Draft()
	if err := d.Validate(); err != nil {
		return nil, err
	}

	charges := draft.ComputeCharges(s.cart.Total(vendorID), d, s.pricing)
	meta := map[string]interface{}{
		"charges": charges.Meta(),
	}
	if d.Slot != "" {
		meta["delivery"] = map[string]interface{}{"time": d.Slot}
	}

	order, err := s.CreateOrder(ctx, vendorID, meta)
	if err != nil {
		return nil, err
	}

	result := &Result{Order: order, Charges: charges}
	if action == ActionPay {
		result.Destination = access.Pay
		result.Params = map[string]interface{}{
			"orderId": order.ID,
			"total":   charges.Total.StringFixed(2),
		}
	} else {
		result.Destination = s.confirmationScreen()
	}

	s.cart.ClearVendor(vendorID)
	s.draft.Reset()

	if err := s.router.Navigate(result.Destination, result.Params); err != nil {
		s.logger.Error("navigation_failed", "Order created but navigation was refused", "", err, map[string]interface{}{
			"order_id":    order.ID,
			"destination": string(result.Destination),
		})
		return result, fmt.Errorf("order %s created: %w", order.ID, err)
	}
	return result, nil
}

// confirmationScreen is Notifications, or the order list for roles that
// cannot open Notifications
func (s *Service) confirmationScreen() access.Screen {
	role := s.currentSession().Role()
	if access.HasAccess(role, access.Notifications) {
		return access.Notifications
	}
	return access.OrdersPage
}

// InitiatePayment asks the backend to collect the order total, attaching the
// first invoice when there is one
func (s *Service) InitiatePayment(ctx context.Context, orderID, method, payer string) (*models.Payment, error) {
	requestID := logger.GenerateRequestID()
	sess := s.currentSession()
	if sess.StaffID() == "" {
		return nil, ErrMissingSessionContext
	}

	order, err := s.backend.GetOrder(ctx, orderID)
	if err != nil {
		s.logger.Error("payment_failed", "Failed to load order for payment", requestID, err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}

	payment, err := s.backend.CreatePayment(ctx, api.PaymentRequest{
		OrderID:   order.ID,
		InvoiceID: order.FirstInvoiceID(),
		VendorID:  order.VendorID,
		UserID:    sess.StaffID(),
		Amount:    order.ComputedTotal().Round(2),
		Method:    method,
		Payer:     payer,
	})
	if err != nil {
		s.logger.Error("payment_failed", "Failed to initiate payment", requestID, err, map[string]interface{}{
			"order_id": orderID,
			"method":   method,
		})
		return nil, err
	}

	s.logger.Info("payment_initiated", "Payment initiated", requestID, map[string]interface{}{
		"order_id":   orderID,
		"payment_id": payment.ID,
		"amount":     payment.Amount.StringFixed(2),
	})
	return payment, nil
}

// RecordPayment stores the provider reference on a payment
func (s *Service) RecordPayment(ctx context.Context, paymentID string, update models.PaymentUpdate) (*models.Payment, error) {
	requestID := logger.GenerateRequestID()

	payment, err := s.backend.UpdatePayment(ctx, paymentID, update)
	if err != nil {
		s.logger.Error("payment_record_failed", "Failed to record payment", requestID, err, map[string]interface{}{
			"payment_id": paymentID,
		})
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.logger.Info("payment_recorded", "Payment recorded", requestID, map[string]interface{}{
		"payment_id": payment.ID,
		"ref":        payment.Ref,
	})
	s.publish(ctx, requestID, string(models.EventPaymentRecorded), &models.PaymentRecordedMessage{
		PaymentID: payment.ID,
		Ref:       payment.Ref,
		Status:    payment.Status,
		Timestamp: now(),
	})
	return payment, nil
}

// UpdateOrderStatus moves an order along the status graph shown on the staff screens
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus, ref string) (*models.Order, error) {
	requestID := logger.GenerateRequestID()
	staffID := s.currentSession().StaffID()
	if staffID == "" {
		return nil, ErrMissingSessionContext
	}

	current, err := s.backend.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(current.Status, status) {
		return nil, fmt.Errorf("order %s %s -> %s: %w", orderID, current.Status, status, models.ErrIllegalTransition)
	}

	updated, err := s.backend.UpdateOrder(ctx, orderID, api.UpdateOrderRequest{
		Status:  status,
		Ref:     ref,
		StaffID: staffID,
	})
	if err != nil {
		s.logger.Error("status_update_failed", "Failed to update order status", requestID, err, map[string]interface{}{
			"order_id": orderID,
			"status":   string(status),
		})
		return nil, err
	}

	s.logger.Info("status_updated", "Order status updated", requestID, map[string]interface{}{
		"order_id":   orderID,
		"old_status": string(current.Status),
		"new_status": string(status),
	})
	s.publish(ctx, requestID, models.GenerateRoutingKey(models.EventOrderStatusChanged, current.Delivery),
		models.CreateStatusUpdateMessage(orderID, current.Status, status, staffID))
	return updated, nil
}

func (s *Service) currentSession() *session.Session {
	if s.session == nil {
		return nil
	}
	return s.session()
}

func (s *Service) publish(ctx context.Context, requestID, routingKey string, event interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishOrderEvent(ctx, routingKey, event); err != nil {
		s.logger.Error("event_publish_failed", "Failed to publish order event", requestID, err, map[string]interface{}{
			"routing_key": routingKey,
		})
	}
}

// idempotencyKey is stable across retries of the same vendor order until one succeeds
func (s *Service) idempotencyKey(vendorID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.pendingKeys[vendorID]
	if !ok {
		key = uuid.NewString()
		s.pendingKeys[vendorID] = key
	}
	return key
}

func (s *Service) clearIdempotencyKey(vendorID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.pendingKeys, vendorID)
}

func mergeMeta(base, extra map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

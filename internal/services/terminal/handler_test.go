package terminal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/api"
	"storefront/internal/cart"
	"storefront/internal/draft"
	"storefront/internal/logger"
	"storefront/internal/models"
	"storefront/internal/session"
)

type fakeBackend struct {
	mu sync.Mutex

	products  map[string]models.Product
	forms     map[string][]models.ProductForm
	orders    map[string]*models.Order
	created   []api.CreateOrderRequest
	payments  []api.PaymentRequest
	createErr error

	login   *api.LoginResponse
	profile *api.Profile
	token   string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		products: map[string]models.Product{
			"P1": {ID: "P1", Name: "Jollof", Price: decimal.NewFromInt(1000), VendorID: "V1", Active: true},
			"P2": {ID: "P2", Name: "Shawarma", Price: decimal.NewFromInt(500), VendorID: "V1", Active: true},
		},
		forms: map[string][]models.ProductForm{
			"P2": {{ID: "F1", ProductID: "P2", Sections: []models.FormSection{{
				ID:     "S1",
				Fields: []models.FormField{{ID: "f1", Name: "size", Required: true}},
			}}}},
		},
		orders: map[string]*models.Order{},
	}
}

func notFound(what string) error {
	return &api.Error{StatusCode: http.StatusNotFound, Message: what + " not found"}
}

func (f *fakeBackend) CreateOrder(_ context.Context, req api.CreateOrderRequest, _ string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, req)
	order := &models.Order{
		ID:       fmt.Sprintf("O%d", len(f.created)),
		UserID:   req.UserID,
		VendorID: req.VendorID,
		StaffID:  req.StaffID,
		Status:   req.Status,
		Action:   req.Action,
		Type:     req.Type,
		Delivery: req.Delivery,
		Meta:     req.Meta,
		Items:    req.Items,
	}
	f.orders[order.ID] = order
	c := *order
	return &c, nil
}

func (f *fakeBackend) UpdateOrder(_ context.Context, id string, req api.UpdateOrderRequest) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	order, ok := f.orders[id]
	if !ok {
		return nil, notFound("order")
	}
	order.Status = req.Status
	order.Ref = req.Ref
	c := *order
	return &c, nil
}

func (f *fakeBackend) GetOrder(_ context.Context, id string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	order, ok := f.orders[id]
	if !ok {
		return nil, notFound("order")
	}
	c := *order
	return &c, nil
}

func (f *fakeBackend) CreatePayment(_ context.Context, req api.PaymentRequest) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.payments = append(f.payments, req)
	return &models.Payment{ID: "PAY1", OrderID: req.OrderID, Amount: req.Amount, Method: req.Method}, nil
}

func (f *fakeBackend) UpdatePayment(_ context.Context, id string, update models.PaymentUpdate) (*models.Payment, error) {
	return &models.Payment{ID: id, Ref: update.Ref, Status: update.Status}, nil
}

func (f *fakeBackend) ListProducts(context.Context, api.ListParams) (*models.Page[models.Product], error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	page := &models.Page[models.Product]{}
	for _, p := range f.products {
		page.Data = append(page.Data, p)
	}
	return page, nil
}

func (f *fakeBackend) ListSections(context.Context, api.ListParams) (*models.Page[models.Section], error) {
	return &models.Page[models.Section]{Data: []models.Section{{ID: "SEC1", Name: "Patio"}}}, nil
}

func (f *fakeBackend) ListAddresses(context.Context, api.ListParams) (*models.Page[models.Address], error) {
	return &models.Page[models.Address]{Data: []models.Address{}}, nil
}

func (f *fakeBackend) GetProduct(_ context.Context, id string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.products[id]
	if !ok {
		return nil, notFound("product")
	}
	return &p, nil
}

func (f *fakeBackend) GetProductForms(_ context.Context, id string) ([]models.ProductForm, error) {
	return f.forms[id], nil
}

func (f *fakeBackend) ListOrders(_ context.Context, filter api.OrderFilter) (*models.Page[models.Order], error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	page := &models.Page[models.Order]{Data: []models.Order{}}
	for _, o := range f.orders {
		if filter.Status == "" || o.Status == filter.Status {
			page.Data = append(page.Data, *o)
		}
	}
	return page, nil
}

func (f *fakeBackend) SearchUsers(_ context.Context, q api.UserQuery) (*models.Page[models.User], error) {
	return &models.Page[models.User]{Data: []models.User{{ID: "U1", FirstName: "Ada", Phone: q.Phone}}}, nil
}

func (f *fakeBackend) Register(_ context.Context, req models.RegisterRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &models.User{ID: "U2", FirstName: req.FirstName, Phone: req.Phone}, nil
}

func (f *fakeBackend) LoginStaff(_ context.Context, _ api.Credentials) (*api.LoginResponse, error) {
	if f.login == nil {
		return nil, &api.Error{StatusCode: http.StatusUnauthorized, Message: "invalid credentials"}
	}
	return f.login, nil
}

func (f *fakeBackend) Me(context.Context) (*api.Profile, error) {
	if f.profile == nil {
		return nil, &api.Error{StatusCode: http.StatusUnauthorized, Message: "token expired"}
	}
	return f.profile, nil
}

func (f *fakeBackend) SetToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
}

type memoryCarts struct {
	snapshots map[string]cart.Snapshot
}

func (m *memoryCarts) Save(_ context.Context, id string, s cart.Snapshot) error {
	m.snapshots[id] = s
	return nil
}

func (m *memoryCarts) Load(_ context.Context, id string) (cart.Snapshot, error) {
	s, ok := m.snapshots[id]
	if !ok {
		return cart.Snapshot{}, cart.ErrSnapshotNotFound
	}
	return s, nil
}

func (m *memoryCarts) Delete(_ context.Context, id string) error {
	delete(m.snapshots, id)
	return nil
}

func loginAs(role string) *api.LoginResponse {
	return &api.LoginResponse{
		Token:  "tok-" + role,
		User:   models.User{ID: "S1", FirstName: "Kemi"},
		Vendor: &models.Vendor{ID: "V1", Name: "Mama Put"},
		Branch: &models.Branch{ID: "B1", Name: "Yaba", VendorID: "V1"},
		Roles:  []api.Role{{Name: role}},
	}
}

type fixture struct {
	backend  *fakeBackend
	sessions *session.MemoryStore
	carts    *memoryCarts
	terminal *Terminal
	handler  http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		backend:  newFakeBackend(),
		sessions: session.NewMemoryStore(),
		carts:    &memoryCarts{snapshots: map[string]cart.Snapshot{}},
	}
	f.terminal = New(Options{
		TerminalID: "T1",
		Backend:    f.backend,
		Sessions:   f.sessions,
		Carts:      f.carts,
		Pricing:    draft.DefaultPricing(),
		Logger:     logger.Discard(),
	})
	f.handler = NewHandler(f.terminal, logger.Discard(), nil).SetupRoutes()
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), rec.Body.String())
	}
	return rec, decoded
}

func (f *fixture) signIn(t *testing.T, role string) {
	t.Helper()
	f.backend.login = loginAs(role)
	rec, _ := f.do(t, http.MethodPost, "/auth/login", map[string]string{"email": "kemi@example.com", "password": "secret"})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthCheck(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(f.terminal, logger.Discard(), map[string]HealthFunc{
		"redis":    func(context.Context) error { return nil },
		"database": func(context.Context) error { return errors.New("connection refused") },
	}).SetupRoutes()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"connection refused"`)
	assert.Contains(t, rec.Body.String(), `"redis":"ok"`)
}

func TestRoutesRequireSession(t *testing.T) {
	f := newFixture(t)

	rec, body := f.do(t, http.MethodGet, "/cart", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "not signed in", body["error"])
	assert.NotEmpty(t, body["request_id"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestLogin(t *testing.T) {
	f := newFixture(t)

	rec, _ := f.do(t, http.MethodPost, "/auth/login", map[string]string{"email": "kemi@example.com", "password": "bad"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = f.do(t, http.MethodPost, "/auth/login", map[string]string{"password": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	f.signIn(t, "Cashier")

	stored, err := f.sessions.Get(context.Background(), "T1")
	require.NoError(t, err)
	assert.Equal(t, "cashier", stored.Role())
	assert.Equal(t, "tok-Cashier", f.backend.token)

	d := f.terminal.draft.Draft()
	assert.Equal(t, "S1", d.StaffID)
	assert.Equal(t, "B1", d.BranchID)
	assert.Equal(t, "V1", d.VendorID)
}

func TestScreensFollowRole(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, "Chef")

	rec, body := f.do(t, http.MethodPost, "/screens/tabs", map[string]interface{}{
		"tabs": []string{"Home", "Analytics", "OrdersPage", "Notifications"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{"Home", "OrdersPage"}, body["tabs"])

	rec, body = f.do(t, http.MethodGet, "/screens", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "chef", body["role"])
	assert.NotContains(t, body["screens"], "Analytics")
}

func TestUnknownRoleIsForbidden(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, "Intern")

	rec, body := f.do(t, http.MethodGet, "/cart", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NotEmpty(t, body["error"])

	rec, _ = f.do(t, http.MethodPost, "/checkout/V1", map[string]string{"action": "pay"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, f.backend.created)
}

func TestCartLifecycle(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, "Cashier")

	rec, body := f.do(t, http.MethodPost, "/cart/items", map[string]string{"productId": "P1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "1000", body["grandTotal"])

	rec, _ = f.do(t, http.MethodPost, "/cart/items", map[string]string{"productId": "P1"})
	assert.Equal(t, http.StatusOK, rec.Code, "repeat add is a no-op")
	assert.Equal(t, 1, f.terminal.cart.Len())

	rec, body = f.do(t, http.MethodPost, "/cart/items", map[string]string{"productId": "P2"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"], "size")

	rec, _ = f.do(t, http.MethodPost, "/cart/items", map[string]interface{}{
		"productId": "P2",
		"meta":      map[string]interface{}{"size": "L"},
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = f.do(t, http.MethodPost, "/cart/items", map[string]string{"productId": "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = f.do(t, http.MethodPut, "/cart/items/V1/P1", map[string]int{"quantity": -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = f.do(t, http.MethodPut, "/cart/items/V1/missing", map[string]int{"quantity": 2})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, body = f.do(t, http.MethodPut, "/cart/items/V1/P1", map[string]int{"quantity": 3})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "3500", body["grandTotal"])

	require.Contains(t, f.carts.snapshots, "T1")
	assert.Len(t, f.carts.snapshots["T1"].Carts[0].Lines, 2)

	rec, body = f.do(t, http.MethodDelete, "/cart/items/V1/P2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "3000", body["grandTotal"])

	rec, body = f.do(t, http.MethodDelete, "/cart/V1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body["carts"])
	assert.NotContains(t, f.carts.snapshots, "T1")
}

func TestCustomerSelection(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, "Waiter")

	rec, body := f.do(t, http.MethodGet, "/customers?phone=0803", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["data"], 1)

	rec, _ = f.do(t, http.MethodPost, "/customers", map[string]string{"firstName": "Ada"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = f.do(t, http.MethodPut, "/cart/customer", map[string]interface{}{
		"customer": map[string]string{"id": "U1", "firstName": "Ada"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, f.terminal.cart.Customer())
	assert.Equal(t, "U1", f.terminal.cart.Customer().ID)
}

func TestDraftFields(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, "Manager")

	rec, body := f.do(t, http.MethodGet, "/draft", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(draft.StageNoType), body["stage"])
	assert.Equal(t, false, body["ready"])

	rec, body = f.do(t, http.MethodPost, "/draft/fields", map[string]interface{}{
		"fields": []map[string]interface{}{
			{"field": "type", "value": "Instant"},
			{"field": "delivery", "value": "Dinein"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(draft.StageNeedsSection), body["stage"])
	assert.Equal(t, true, body["showSectionPicker"])

	rec, _ = f.do(t, http.MethodPost, "/draft/fields", map[string]interface{}{
		"fields": []map[string]interface{}{{"field": "delivery", "value": "Drone"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = f.do(t, http.MethodPost, "/draft/fields", map[string]interface{}{
		"fields": []map[string]interface{}{
			{"field": "sectionId", "value": "SEC1"},
			{"field": "lotId", "value": "L1"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["ready"])

	rec, body = f.do(t, http.MethodDelete, "/draft", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "S1", body["draft"].(map[string]interface{})["staffId"], "session defaults survive reset")
}

func TestSlots(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, "Cashier")

	rec, body := f.do(t, http.MethodGet, "/draft/slots?day=2024-05-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	slots := body["slots"].([]interface{})
	require.Len(t, slots, 12)
	assert.Equal(t, "6:00 - 7:00", slots[0].(map[string]interface{})["name"])

	rec, _ = f.do(t, http.MethodGet, "/draft/slots?day=May", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitRoutesToPay(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, "Cashier")

	f.do(t, http.MethodPost, "/cart/items", map[string]string{"productId": "P1"})
	rec, _ := f.do(t, http.MethodPost, "/draft/fields", map[string]interface{}{
		"fields": []map[string]interface{}{
			{"field": "type", "value": "Instant"},
			{"field": "delivery", "value": "Delivery"},
			{"field": "slot", "value": "9:00 - 10:00"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := f.do(t, http.MethodGet, "/draft/charges/V1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1045", body["total"])

	rec, body = f.do(t, http.MethodPost, "/checkout/V1", map[string]string{"action": "pay"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Pay", body["destination"])
	assert.Equal(t, map[string]interface{}{"orderId": "O1", "total": "1045.00"}, body["params"])

	require.Len(t, f.backend.created, 1)
	assert.Equal(t, map[string]interface{}{"time": "9:00 - 10:00"}, f.backend.created[0].Meta["delivery"])

	assert.Zero(t, f.terminal.cart.Len())
	assert.Equal(t, draft.StageNoType, f.terminal.draft.Stage())

	rec, body = f.do(t, http.MethodGet, "/navigation", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["transitions"], 1)

	rec, body = f.do(t, http.MethodPost, "/payments", map[string]string{"orderId": "O1", "method": "card"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "PAY1", body["id"])
	require.Len(t, f.backend.payments, 1)
	assert.Equal(t, "1045", f.backend.payments[0].Amount.String())

	rec, _ = f.do(t, http.MethodPut, "/payments/PAY1", map[string]string{"status": "Paid"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = f.do(t, http.MethodPut, "/payments/PAY1", map[string]string{"ref": "R-1", "status": "Paid"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "R-1", body["ref"])
}

func TestSubmitBackendFailureKeepsState(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, "Cashier")
	f.backend.createErr = &api.Error{StatusCode: http.StatusServiceUnavailable, Message: "maintenance"}

	f.do(t, http.MethodPost, "/cart/items", map[string]string{"productId": "P1"})
	f.do(t, http.MethodPost, "/draft/fields", map[string]interface{}{
		"fields": []map[string]interface{}{
			{"field": "type", "value": "Instant"},
			{"field": "delivery", "value": "Takeaway"},
			{"field": "origin", "value": "out"},
		},
	})

	rec, body := f.do(t, http.MethodPost, "/checkout/V1", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "backend unavailable", body["error"])

	assert.Equal(t, 1, f.terminal.cart.Len())
	assert.Equal(t, models.DeliveryTakeaway, f.terminal.draft.Draft().Delivery)
	assert.Empty(t, f.terminal.recorder.Transitions())
}

func TestSubmitIncompleteDraft(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, "Cashier")
	f.do(t, http.MethodPost, "/cart/items", map[string]string{"productId": "P1"})

	rec, body := f.do(t, http.MethodPost, "/checkout/V1", map[string]string{"action": "pay"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"], "type")
	assert.Empty(t, f.backend.created)
}

func TestOrderStatusUpdate(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, "Rider")
	f.backend.orders["O9"] = &models.Order{ID: "O9", VendorID: "V1", Status: models.StatusPending, Delivery: models.DeliveryDinein}

	rec, body := f.do(t, http.MethodGet, "/orders?status=Pending", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["data"], 1)

	rec, _ = f.do(t, http.MethodGet, "/orders?status=Sleeping", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = f.do(t, http.MethodGet, "/orders/O9", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{"Placed"}, body["nextStatuses"])

	rec, _ = f.do(t, http.MethodPut, "/orders/O9/status", map[string]string{"status": "Completed"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, body = f.do(t, http.MethodPut, "/orders/O9/status", map[string]string{"status": "Placed", "ref": "R-7"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Placed", body["status"])

	rec, _ = f.do(t, http.MethodGet, "/orders/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReferenceData(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, "Barista")

	rec, body := f.do(t, http.MethodGet, "/checkout/reference", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["products"], 2)
	assert.Len(t, body["sections"], 1)
}

func TestMeRefreshesProfile(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, "Cashier")

	rec, _ := f.do(t, http.MethodGet, "/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	f.backend.profile = &api.Profile{
		User:  models.User{ID: "S1", FirstName: "Kemi", LastName: "Ade"},
		Roles: []api.Role{{Name: "Manager"}},
	}
	rec, body := f.do(t, http.MethodGet, "/auth/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tok-Cashier", body["sessionToken"])
	assert.Equal(t, "manager", f.terminal.Session().Role())
}

func TestLogoutClearsTerminal(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, "Cashier")
	f.do(t, http.MethodPost, "/cart/items", map[string]string{"productId": "P1"})

	rec, _ := f.do(t, http.MethodPost, "/auth/logout", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	_, err := f.sessions.Get(context.Background(), "T1")
	assert.ErrorIs(t, err, session.ErrNotFound)
	assert.Zero(t, f.terminal.cart.Len())
	assert.Empty(t, f.backend.token)
	assert.NotContains(t, f.carts.snapshots, "T1")

	rec, _ = f.do(t, http.MethodGet, "/cart", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestResume(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.sessions.Save(ctx, "T1", loginAs("Waiter").Session()))
	f.carts.snapshots["T1"] = cart.Snapshot{Carts: []cart.VendorCart{{
		VendorID: "V1",
		Lines:    []cart.Line{{ProductID: "P1", VendorID: "V1", Name: "Jollof", Price: decimal.NewFromInt(1000), Quantity: 2}},
	}}}

	require.NoError(t, f.terminal.Resume(ctx))

	require.NotNil(t, f.terminal.Session())
	assert.Equal(t, "waiter", f.terminal.Session().Role())
	assert.Equal(t, "tok-Waiter", f.backend.token)
	assert.Equal(t, "2000", f.terminal.cart.GrandTotal().String())
	assert.Equal(t, "B1", f.terminal.draft.Draft().BranchID)
}

func TestResumeWithoutStoredState(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.terminal.Resume(context.Background()))
	assert.Nil(t, f.terminal.Session())
	assert.Zero(t, f.terminal.cart.Len())
}

func TestResumeDiscardsInvalidCheckpoint(t *testing.T) {
	f := newFixture(t)
	f.carts.snapshots["T1"] = cart.Snapshot{Carts: []cart.VendorCart{{
		VendorID: "V1",
		Lines:    []cart.Line{{ProductID: "P1", VendorID: "V2", Quantity: 1}},
	}}}

	require.NoError(t, f.terminal.Resume(context.Background()))
	assert.Zero(t, f.terminal.cart.Len())
}

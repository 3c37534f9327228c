package terminal

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"storefront/internal/api"
	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/draft"
	"storefront/internal/logger"
	"storefront/internal/models"
	"storefront/internal/navigation"
	"storefront/internal/session"
)

// Backend is the part of the REST backend the terminal talks to directly
type Backend interface {
	checkout.Backend
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	GetProductForms(ctx context.Context, id string) ([]models.ProductForm, error)
	ListOrders(ctx context.Context, f api.OrderFilter) (*models.Page[models.Order], error)
	SearchUsers(ctx context.Context, q api.UserQuery) (*models.Page[models.User], error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	LoginStaff(ctx context.Context, creds api.Credentials) (*api.LoginResponse, error)
	Me(ctx context.Context) (*api.Profile, error)
	SetToken(token string)
}

// Options wires a Terminal
type Options struct {
	TerminalID string
	Backend    Backend
	Sessions   session.Store
	// Carts, when set, checkpoints the cart after every change
	Carts     cart.Repository
	Publisher checkout.Publisher
	Pricing   draft.Pricing
	Logger    *logger.Logger
}

// Terminal is one operator session: the signed-in staff member, their carts,
// the order draft and the screen they were last routed to
type Terminal struct {
	id       string
	backend  Backend
	sessions session.Store
	carts    cart.Repository
	logger   *logger.Logger

	cart     *cart.Store
	draft    *draft.Builder
	recorder *navigation.Recorder
	checkout *checkout.Service
	pricing  draft.Pricing

	mu      sync.RWMutex
	current *session.Session
}

// New assembles the terminal state; nothing is loaded until Resume
func New(opts Options) *Terminal {
	t := &Terminal{
		id:       opts.TerminalID,
		backend:  opts.Backend,
		sessions: opts.Sessions,
		carts:    opts.Carts,
		logger:   opts.Logger,
		cart:     cart.NewStore(),
		draft:    draft.NewBuilder(),
		recorder: navigation.NewRecorder(),
		pricing:  opts.Pricing,
	}

	router := navigation.NewGuarded(t.recorder, func() string { return t.Session().Role() })
	t.checkout = checkout.NewService(checkout.Dependencies{
		Backend:   opts.Backend,
		Cart:      t.cart,
		Draft:     t.draft,
		Router:    router,
		Session:   t.Session,
		Publisher: opts.Publisher,
		Pricing:   opts.Pricing,
		Logger:    opts.Logger,
	})
	return t
}

// Session returns the signed-in operator, nil when signed out
func (t *Terminal) Session() *session.Session {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

func (t *Terminal) setSession(s *session.Session) {
	t.mu.Lock()
	t.current = s
	t.mu.Unlock()

	token := ""
	if s != nil {
		token = s.Token
	}
	t.backend.SetToken(token)
	t.draft.Hydrate(s)
}

// Resume restores the persisted session and cart checkpoint of this terminal.
// A missing session or checkpoint is not an error.
func (t *Terminal) Resume(ctx context.Context) error {
	requestID := logger.GenerateRequestID()

	s, err := t.sessions.Get(ctx, t.id)
	switch {
	case errors.Is(err, session.ErrNotFound):
		t.logger.Info("session_missing", "No stored session for terminal", requestID, map[string]interface{}{
			"terminal_id": t.id,
		})
	case err != nil:
		return fmt.Errorf("failed to load session: %w", err)
	default:
		t.setSession(s)
		t.logger.Info("session_resumed", "Resumed stored session", requestID, map[string]interface{}{
			"terminal_id": t.id,
			"staff_id":    s.StaffID(),
			"role":        s.Role(),
		})
	}

	if t.carts == nil {
		return nil
	}
	snap, err := t.carts.Load(ctx, t.id)
	if errors.Is(err, cart.ErrSnapshotNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load cart checkpoint: %w", err)
	}
	if err := t.cart.Restore(snap); err != nil {
		t.logger.Error("cart_restore_failed", "Discarding invalid cart checkpoint", requestID, err, nil)
		return nil
	}

	t.logger.Info("cart_restored", "Restored cart checkpoint", requestID, map[string]interface{}{
		"lines": t.cart.Len(),
	})
	return nil
}

// SignIn authenticates the staff member and persists the session for this terminal
func (t *Terminal) SignIn(ctx context.Context, creds api.Credentials) (*session.Session, error) {
	resp, err := t.backend.LoginStaff(ctx, creds)
	if err != nil {
		return nil, err
	}

	s := resp.Session()
	if err := t.sessions.Save(ctx, t.id, s); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	t.setSession(s)
	return s, nil
}

// Refresh reloads the staff profile and keeps the current token
func (t *Terminal) Refresh(ctx context.Context) (*session.Session, error) {
	current := t.Session()
	if current == nil {
		return nil, session.ErrNotFound
	}

	profile, err := t.backend.Me(ctx)
	if err != nil {
		return nil, err
	}

	s := profile.Session(current.Token)
	if err := t.sessions.Save(ctx, t.id, s); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	t.setSession(s)
	return s, nil
}

// SignOut forgets the operator together with their carts and draft
func (t *Terminal) SignOut(ctx context.Context) error {
	if err := t.sessions.Delete(ctx, t.id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	t.setSession(nil)
	t.cart.Clear()
	t.cart.SetCurrentCustomer(nil)
	t.draft.Reset()
	t.checkpoint(ctx)
	return nil
}

// checkpoint saves the cart when a repository is configured. Failures are logged only.
func (t *Terminal) checkpoint(ctx context.Context) {
	if t.carts == nil {
		return
	}

	var err error
	if t.cart.Len() == 0 && t.cart.Customer() == nil {
		err = t.carts.Delete(ctx, t.id)
	} else {
		err = t.carts.Save(ctx, t.id, t.cart.Snapshot())
	}
	if err != nil {
		t.logger.Error("cart_checkpoint_failed", "Failed to checkpoint cart", "", err, map[string]interface{}{
			"terminal_id": t.id,
		})
	}
}

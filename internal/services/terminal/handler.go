package terminal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"storefront/internal/access"
	"storefront/internal/api"
	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/draft"
	"storefront/internal/logger"
	"storefront/internal/models"
	"storefront/internal/session"
)

type ctxKey int

const requestIDKey ctxKey = iota

const requestTimeout = 30 * time.Second

// HealthFunc reports whether a dependency is reachable
type HealthFunc func(ctx context.Context) error

// Handler serves the terminal HTTP API
type Handler struct {
	terminal *Terminal
	logger   *logger.Logger
	health   map[string]HealthFunc
}

// NewHandler creates a new terminal handler. health checks are keyed by dependency name.
func NewHandler(t *Terminal, log *logger.Logger, health map[string]HealthFunc) *Handler {
	return &Handler{
		terminal: t,
		logger:   log,
		health:   health,
	}
}

// SetupRoutes sets up the HTTP routes
func (h *Handler) SetupRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(h.withLogging)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/health", h.HealthCheck)

	r.Post("/auth/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(h.requireSession)

		r.Get("/auth/me", h.Me)
		r.Post("/auth/logout", h.Logout)
		r.Get("/screens", h.AllowedScreens)
		r.Post("/screens/tabs", h.FilterTabs)
		r.Get("/navigation", h.Navigation)

		r.With(h.requireScreen(access.CheckoutCartPage)).Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)
			r.Post("/items", h.AddItem)
			r.Put("/items/{vendorID}/{productID}", h.UpdateItem)
			r.Delete("/items/{vendorID}/{productID}", h.RemoveItem)
			r.Delete("/{vendorID}", h.ClearVendor)
			r.Put("/customer", h.SetCustomer)
		})

		r.With(h.requireScreen(access.CheckoutCartPage)).Route("/customers", func(r chi.Router) {
			r.Get("/", h.SearchCustomers)
			r.Post("/", h.RegisterCustomer)
		})

		r.With(h.requireScreen(access.CheckoutOrderPage)).Route("/draft", func(r chi.Router) {
			r.Get("/", h.GetDraft)
			r.Delete("/", h.ResetDraft)
			r.Post("/fields", h.PrepareFields)
			r.Get("/slots", h.Slots)
			r.Get("/charges/{vendorID}", h.PreviewCharges)
		})

		r.With(h.requireScreen(access.CheckoutOrderPage)).Route("/checkout", func(r chi.Router) {
			r.Get("/reference", h.ReferenceData)
			r.Post("/{vendorID}", h.Submit)
		})

		r.With(h.requireScreen(access.Pay)).Route("/payments", func(r chi.Router) {
			r.Post("/", h.InitiatePayment)
			r.Put("/{paymentID}", h.RecordPayment)
		})

		r.With(h.requireScreen(access.OrdersPage)).Get("/orders", h.ListOrders)
		r.With(h.requireScreen(access.OrderDetails)).Route("/orders/{orderID}", func(r chi.Router) {
			r.Get("/", h.GetOrder)
			r.Put("/status", h.UpdateOrderStatus)
		})
	})

	return r
}

// HealthCheck handles GET /health requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string, len(h.health))
	healthy := true
	for name, check := range h.health {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			healthy = false
			continue
		}
		checks[name] = "ok"
	}

	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "terminal-service",
		"healthy":   healthy,
		"checks":    checks,
	}

	if !healthy {
		response["status"] = "unhealthy"
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, response)
}

// Login handles POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(r.Context())

	var creds api.Credentials
	if !h.decode(w, r, &creds) {
		return
	}
	if creds.Password == "" || (creds.Email == "" && creds.Phone == "") {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "email or phone and password are required")
		return
	}

	s, err := h.terminal.SignIn(r.Context(), creds)
	if err != nil {
		h.logger.Error("login_failed", "Staff login failed", requestID, err, nil)
		h.writeError(w, r, err)
		return
	}

	h.logger.Info("staff_signed_in", "Staff signed in", requestID, map[string]interface{}{
		"staff_id": s.StaffID(),
		"role":     s.Role(),
	})
	render.JSON(w, r, s)
}

// Me handles GET /auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	s, err := h.terminal.Refresh(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, s)
}

// Logout handles POST /auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.terminal.SignOut(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

// AllowedScreens handles GET /screens
func (h *Handler) AllowedScreens(w http.ResponseWriter, r *http.Request) {
	role := h.terminal.Session().Role()
	render.JSON(w, r, map[string]interface{}{
		"role":    role,
		"screens": access.AllowedScreens(role),
	})
}

// FilterTabs handles POST /screens/tabs
func (h *Handler) FilterTabs(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tabs []access.Screen `json:"tabs"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"tabs": access.FilterTabs(h.terminal.Session().Role(), req.Tabs),
	})
}

// Navigation handles GET /navigation
func (h *Handler) Navigation(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"transitions": h.terminal.recorder.Transitions(),
	})
}

// requireSession rejects requests while nobody is signed in
func (h *Handler) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.terminal.Session() == nil {
			h.writeErrorResponse(w, r, http.StatusUnauthorized, "not signed in")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireScreen rejects requests from roles that may not open the screen behind the route
func (h *Handler) requireScreen(screen access.Screen) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := h.terminal.Session().Role()
			if err := access.Guard(role, screen); err != nil {
				h.logger.Debug("access_denied", "Role may not open screen", requestIDFrom(r.Context()), map[string]interface{}{
					"role":   role,
					"screen": string(screen),
					"path":   r.URL.Path,
				})
				h.writeError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// withLogging adds request logging middleware
func (h *Handler) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := logger.GenerateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		h.logger.Debug("request_started",
			fmt.Sprintf("%s %s", r.Method, r.URL.Path),
			requestID,
			map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"remote_addr": r.RemoteAddr,
				"user_agent":  r.Header.Get("User-Agent"),
			})

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		h.logger.Debug("request_completed",
			fmt.Sprintf("%s %s - %d", r.Method, r.URL.Path, status),
			requestID,
			map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status_code": status,
				"duration_ms": time.Since(start).Milliseconds(),
			})
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// decode reads a JSON body, answering 400 when it cannot be parsed
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		h.logger.Error("validation_failed", "Failed to parse request body", requestIDFrom(r.Context()), err, nil)
		h.writeErrorResponse(w, r, http.StatusBadRequest, "Invalid JSON format")
		return false
	}
	return true
}

// writeError maps a domain error to its HTTP status
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request_failed", "Request failed", requestIDFrom(r.Context()), err, map[string]interface{}{
			"path": r.URL.Path,
		})
	}
	h.writeErrorResponse(w, r, status, message)
}

func statusFor(err error) (int, string) {
	var (
		apiErr     *api.Error
		validation models.ValidationError
		fields     draft.ValidationErrors
	)

	switch {
	case errors.As(err, &fields), errors.As(err, &validation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, cart.ErrNegativeQuantity), errors.Is(err, checkout.ErrEmptyCart):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, checkout.ErrMissingSessionContext), errors.Is(err, session.ErrIncomplete):
		return http.StatusConflict, err.Error()
	case errors.Is(err, models.ErrIllegalTransition):
		return http.StatusConflict, err.Error()
	case errors.Is(err, access.ErrAccessDenied):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, session.ErrNotFound):
		return http.StatusUnauthorized, "not signed in"
	case errors.As(err, &apiErr):
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			return apiErr.StatusCode, apiErr.Message
		}
		return http.StatusBadGateway, "backend unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "request timed out"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// writeErrorResponse writes an error response in JSON format
func (h *Handler) writeErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	render.Status(r, statusCode)
	render.JSON(w, r, map[string]interface{}{
		"error":      message,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"request_id": requestIDFrom(r.Context()),
	})
}

package terminal

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/shopspring/decimal"

	"storefront/internal/api"
	"storefront/internal/cart"
	"storefront/internal/models"
)

type vendorCartResponse struct {
	VendorID string          `json:"vendorId"`
	Lines    []cart.Line     `json:"lines"`
	Total    decimal.Decimal `json:"total"`
}

type cartResponse struct {
	Customer   *models.User         `json:"customer,omitempty"`
	Carts      []vendorCartResponse `json:"carts"`
	GrandTotal decimal.Decimal      `json:"grandTotal"`
}

func (h *Handler) cartState() cartResponse {
	store := h.terminal.cart
	resp := cartResponse{
		Customer:   store.Customer(),
		Carts:      []vendorCartResponse{},
		GrandTotal: store.GrandTotal(),
	}
	for _, vendorID := range store.Vendors() {
		resp.Carts = append(resp.Carts, vendorCartResponse{
			VendorID: vendorID,
			Lines:    store.Lines(vendorID),
			Total:    store.Total(vendorID),
		})
	}
	return resp
}

// GetCart handles GET /cart
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.cartState())
}

// AddItem handles POST /cart/items. The product is loaded from the catalog and
// required form answers are checked before the line is added.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(r.Context())

	var req struct {
		ProductID string                 `json:"productId"`
		Meta      map[string]interface{} `json:"meta"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.ProductID == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "productId is required")
		return
	}

	product, err := h.terminal.backend.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	forms, err := h.terminal.backend.GetProductForms(r.Context(), req.ProductID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var missing []string
	for i := range forms {
		missing = append(missing, forms[i].MissingAnswers(req.Meta)...)
	}
	if len(missing) > 0 {
		h.writeErrorResponse(w, r, http.StatusBadRequest, fmt.Sprintf("missing answers: %s", strings.Join(missing, ", ")))
		return
	}

	added := h.terminal.cart.AddItem(*product, req.Meta)
	h.terminal.checkpoint(r.Context())

	h.logger.Debug("cart_item_added", "Product added to cart", requestID, map[string]interface{}{
		"product_id": product.ID,
		"vendor_id":  product.VendorID,
		"added":      added,
	})

	if added {
		render.Status(r, http.StatusCreated)
	}
	render.JSON(w, r, h.cartState())
}

// UpdateItem handles PUT /cart/items/{vendorID}/{productID}
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity *int `json:"quantity"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.Quantity == nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "quantity is required")
		return
	}

	found, err := h.terminal.cart.UpdateItem(lineKey(r), *req.Quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !found {
		h.writeErrorResponse(w, r, http.StatusNotFound, "line not found")
		return
	}

	h.terminal.checkpoint(r.Context())
	render.JSON(w, r, h.cartState())
}

// RemoveItem handles DELETE /cart/items/{vendorID}/{productID}
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if h.terminal.cart.RemoveItem(lineKey(r)) {
		h.terminal.checkpoint(r.Context())
	}
	render.JSON(w, r, h.cartState())
}

// ClearVendor handles DELETE /cart/{vendorID}
func (h *Handler) ClearVendor(w http.ResponseWriter, r *http.Request) {
	h.terminal.cart.ClearVendor(chi.URLParam(r, "vendorID"))
	h.terminal.checkpoint(r.Context())
	render.JSON(w, r, h.cartState())
}

// ClearCart handles DELETE /cart
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.terminal.cart.Clear()
	h.terminal.checkpoint(r.Context())
	render.JSON(w, r, h.cartState())
}

// SetCustomer handles PUT /cart/customer; a null customer clears it
func (h *Handler) SetCustomer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Customer *models.User `json:"customer"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.Customer != nil && req.Customer.ID == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "customer id is required")
		return
	}

	h.terminal.cart.SetCurrentCustomer(req.Customer)
	h.terminal.checkpoint(r.Context())
	render.JSON(w, r, h.cartState())
}

// SearchCustomers handles GET /customers?phone=&s=&per=
func (h *Handler) SearchCustomers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := api.UserQuery{
		Phone:  q.Get("phone"),
		Search: q.Get("s"),
	}
	if per := q.Get("per"); per != "" {
		n, err := strconv.Atoi(per)
		if err != nil || n <= 0 {
			h.writeErrorResponse(w, r, http.StatusBadRequest, "per must be a positive integer")
			return
		}
		query.Per = n
	}

	page, err := h.terminal.backend.SearchUsers(r.Context(), query)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, page)
}

// RegisterCustomer handles POST /customers
func (h *Handler) RegisterCustomer(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.terminal.backend.Register(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.Info("customer_registered", "Customer registered", requestIDFrom(r.Context()), map[string]interface{}{
		"user_id": user.ID,
	})
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, user)
}

func lineKey(r *http.Request) cart.Key {
	return cart.Key{
		VendorID:  chi.URLParam(r, "vendorID"),
		ProductID: chi.URLParam(r, "productID"),
	}
}

package terminal

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"storefront/internal/api"
	"storefront/internal/checkout"
	"storefront/internal/draft"
	"storefront/internal/models"
)

type draftResponse struct {
	Draft             draft.Draft `json:"draft"`
	Stage             draft.Stage `json:"stage"`
	Ready             bool        `json:"ready"`
	ShowSectionPicker bool        `json:"showSectionPicker"`
	NeedsSchedule     bool        `json:"needsSchedule"`
	Errors            []string    `json:"errors,omitempty"`
}

func (h *Handler) draftState() draftResponse {
	d := h.terminal.draft.Draft()
	resp := draftResponse{
		Draft:             d,
		Stage:             d.Stage(),
		ShowSectionPicker: d.ShowSectionPicker(),
		NeedsSchedule:     d.NeedsSchedule(),
	}
	err := d.Validate()
	resp.Ready = err == nil
	if errs, ok := err.(draft.ValidationErrors); ok {
		for _, e := range errs {
			resp.Errors = append(resp.Errors, e.Error())
		}
	}
	return resp
}

// GetDraft handles GET /draft
func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.draftState())
}

// ResetDraft handles DELETE /draft
func (h *Handler) ResetDraft(w http.ResponseWriter, r *http.Request) {
	h.terminal.draft.Reset()
	render.JSON(w, r, h.draftState())
}

// PrepareFields handles POST /draft/fields. Fields are applied in order and
// the first rejected one stops the batch.
func (h *Handler) PrepareFields(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Fields []struct {
			Field draft.Field `json:"field"`
			Value interface{} `json:"value"`
		} `json:"fields"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	for _, f := range req.Fields {
		if err := h.terminal.draft.Prepare(f.Field, f.Value); err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	render.JSON(w, r, h.draftState())
}

// Slots handles GET /draft/slots?day=YYYY-MM-DD, defaulting to today
func (h *Handler) Slots(w http.ResponseWriter, r *http.Request) {
	day := time.Now()
	if v := r.URL.Query().Get("day"); v != "" {
		parsed, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			h.writeErrorResponse(w, r, http.StatusBadRequest, "day must be formatted YYYY-MM-DD")
			return
		}
		day = parsed
	}
	render.JSON(w, r, map[string]interface{}{
		"slots": draft.SlotsForDay(day),
	})
}

// PreviewCharges handles GET /draft/charges/{vendorID}
func (h *Handler) PreviewCharges(w http.ResponseWriter, r *http.Request) {
	vendorID := chi.URLParam(r, "vendorID")
	charges := draft.ComputeCharges(h.terminal.cart.Total(vendorID), h.terminal.draft.Draft(), h.terminal.pricing)
	render.JSON(w, r, charges)
}

// ReferenceData handles GET /checkout/reference
func (h *Handler) ReferenceData(w http.ResponseWriter, r *http.Request) {
	data, err := h.terminal.checkout.LoadReferenceData(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, data)
}

type submitResponse struct {
	*checkout.Result
	NavigationError string `json:"navigationError,omitempty"`
}

// Submit handles POST /checkout/{vendorID}
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action string `json:"action"`
	}
	if r.ContentLength != 0 && !h.decode(w, r, &req) {
		return
	}

	result, err := h.terminal.checkout.Submit(r.Context(), chi.URLParam(r, "vendorID"), req.Action)
	if result == nil {
		h.writeError(w, r, err)
		return
	}
	h.terminal.checkpoint(r.Context())

	resp := submitResponse{Result: result}
	if err != nil {
		resp.NavigationError = err.Error()
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, resp)
}

// InitiatePayment handles POST /payments
func (h *Handler) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID string `json:"orderId"`
		Method  string `json:"method"`
		Payer   string `json:"payer"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.OrderID == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "orderId is required")
		return
	}

	payment, err := h.terminal.checkout.InitiatePayment(r.Context(), req.OrderID, req.Method, req.Payer)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, payment)
}

// RecordPayment handles PUT /payments/{paymentID}
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var update models.PaymentUpdate
	if !h.decode(w, r, &update) {
		return
	}
	if update.Ref == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "ref is required")
		return
	}

	payment, err := h.terminal.checkout.RecordPayment(r.Context(), chi.URLParam(r, "paymentID"), update)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, payment)
}

// ListOrders handles GET /orders?status=&start=YYYY-MM-DD&page=&per=
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter api.OrderFilter

	if v := q.Get("status"); v != "" {
		status, err := models.ParseOrderStatus(v)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		filter.Status = status
	}
	if v := q.Get("start"); v != "" {
		start, err := time.Parse("2006-01-02", v)
		if err != nil {
			h.writeErrorResponse(w, r, http.StatusBadRequest, "start must be formatted YYYY-MM-DD")
			return
		}
		filter.Start = start
	}
	for name, dst := range map[string]*int{"page": &filter.Page, "per": &filter.Per} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			h.writeErrorResponse(w, r, http.StatusBadRequest, name+" must be a positive integer")
			return
		}
		*dst = n
	}

	page, err := h.terminal.backend.ListOrders(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, page)
}

// GetOrder handles GET /orders/{orderID}
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.terminal.backend.GetOrder(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"order":         order,
		"total":         order.ComputedTotal().StringFixed(2),
		"nextStatuses":  models.NextStatuses(order.Status),
		"invoiceId":     order.FirstInvoiceID(),
		"statusIsFinal": order.Status.IsTerminal(),
	})
}

// UpdateOrderStatus handles PUT /orders/{orderID}/status
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
		Ref    string `json:"ref"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	status, err := models.ParseOrderStatus(req.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	order, err := h.terminal.checkout.UpdateOrderStatus(r.Context(), chi.URLParam(r, "orderID"), status, req.Ref)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, order)
}

package draft

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"storefront/internal/models"
	"storefront/internal/session"
)

// Field names a draft attribute set through Prepare
type Field string

const (
	FieldUserID    Field = "userId"
	FieldVendorID  Field = "vendorId"
	FieldBranchID  Field = "branchId"
	FieldSectionID Field = "sectionId"
	FieldLotID     Field = "lotId"
	FieldStaffID   Field = "staffId"
	FieldAddressID Field = "addressId"
	FieldAction    Field = "action"
	FieldType      Field = "type"
	FieldDelivery  Field = "delivery"
	FieldOrigin    Field = "origin"
	FieldSlot      Field = "slot"
	FieldTip       Field = "tip"
	FieldStatus    Field = "status"
	FieldMeta      Field = "meta"
)

// Draft is an order under construction on the terminal
type Draft struct {
	UserID    string                 `json:"userId,omitempty"`
	VendorID  string                 `json:"vendorId,omitempty"`
	BranchID  string                 `json:"branchId,omitempty"`
	SectionID string                 `json:"sectionId,omitempty"`
	LotID     string                 `json:"lotId,omitempty"`
	StaffID   string                 `json:"staffId,omitempty"`
	AddressID string                 `json:"addressId,omitempty"`
	Action    models.OrderAction     `json:"action"`
	Type      models.FulfillmentType `json:"type,omitempty"`
	Delivery  models.DeliveryMode    `json:"delivery,omitempty"`
	Origin    models.Origin          `json:"origin,omitempty"`
	Slot      string                 `json:"slot,omitempty"`
	Tip       decimal.Decimal        `json:"tip"`
	Status    models.OrderStatus     `json:"status"`
	Meta      map[string]interface{} `json:"meta,omitempty"`
}

// NeedsSchedule reports whether a time slot must be chosen
func (d Draft) NeedsSchedule() bool {
	return d.Type == models.TypePreorder || d.Delivery == models.DeliveryDelivery
}

// ShowSectionPicker reports whether the section and lot pickers are offered.
// They are offered when the customer is on the premises or eats in.
func (d Draft) ShowSectionPicker() bool {
	return d.Origin == models.OriginIn || d.Delivery == models.DeliveryDinein
}

// OutOfPremises reports whether a takeaway customer is collecting from outside
func (d Draft) OutOfPremises() bool {
	return d.Delivery == models.DeliveryTakeaway && d.Origin == models.OriginOut
}

// Builder accumulates a single draft across checkout steps.
// Fields hydrated from the session survive Reset.
type Builder struct {
	mu       sync.RWMutex
	draft    Draft
	defaults defaults
}

type defaults struct {
	staffID  string
	branchID string
	vendorID string
}

// NewBuilder returns a builder holding an empty Pending purchase
func NewBuilder() *Builder {
	b := &Builder{}
	b.draft = b.fresh()
	return b
}

func (b *Builder) fresh() Draft {
	return Draft{
		StaffID:  b.defaults.staffID,
		BranchID: b.defaults.branchID,
		VendorID: b.defaults.vendorID,
		Action:   models.ActionPurchase,
		Status:   models.StatusPending,
		Tip:      decimal.Zero,
	}
}

// Hydrate copies the operator's staff, branch and vendor into the draft and
// remembers them as the defaults for later drafts
func (b *Builder) Hydrate(s *session.Session) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.defaults = defaults{
		staffID:  s.StaffID(),
		branchID: s.BranchID(),
		vendorID: s.VendorID(),
	}
	b.draft.StaffID = b.defaults.staffID
	b.draft.BranchID = b.defaults.branchID
	if b.draft.VendorID == "" {
		b.draft.VendorID = b.defaults.vendorID
	}
}

// Prepare sets one field, leaving every other field untouched. Completeness is
// not checked here; only the value's type and enum membership are.
func (b *Builder) Prepare(field Field, value interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	d := &b.draft
	switch field {
	case FieldUserID, FieldVendorID, FieldBranchID, FieldSectionID, FieldLotID,
		FieldStaffID, FieldAddressID, FieldSlot:
		s, err := asString(field, value)
		if err != nil {
			return err
		}
		*stringField(d, field) = s
	case FieldAction:
		s, err := asString(field, value)
		if err != nil {
			return err
		}
		d.Action = models.OrderAction(s)
	case FieldType:
		s, err := asString(field, value)
		if err != nil {
			return err
		}
		if s == "" {
			d.Type = ""
			return nil
		}
		t, err := models.ParseFulfillmentType(s)
		if err != nil {
			return err
		}
		d.Type = t
	case FieldDelivery:
		s, err := asString(field, value)
		if err != nil {
			return err
		}
		if s == "" {
			d.Delivery = ""
			return nil
		}
		m, err := models.ParseDeliveryMode(s)
		if err != nil {
			return err
		}
		d.Delivery = m
	case FieldOrigin:
		s, err := asString(field, value)
		if err != nil {
			return err
		}
		if s == "" {
			d.Origin = ""
			return nil
		}
		o, err := models.ParseOrigin(s)
		if err != nil {
			return err
		}
		d.Origin = o
	case FieldTip:
		tip, err := asDecimal(field, value)
		if err != nil {
			return err
		}
		if tip.IsNegative() {
			return models.ValidationError{Field: string(field), Message: "tip must not be negative"}
		}
		d.Tip = tip
	case FieldStatus:
		s, err := asString(field, value)
		if err != nil {
			return err
		}
		if models.OrderStatus(s) != models.StatusPending {
			return models.ValidationError{Field: string(field), Message: "a new order can only be Pending"}
		}
	case FieldMeta:
		meta, ok := value.(map[string]interface{})
		if !ok {
			return models.ValidationError{Field: string(field), Message: fmt.Sprintf("expected an object, got %T", value)}
		}
		d.Meta = mergeMeta(d.Meta, meta)
	default:
		return models.ValidationError{Field: string(field), Message: "unknown field"}
	}
	return nil
}

// SetType selects Instant or Preorder
func (b *Builder) SetType(t models.FulfillmentType) error {
	return b.Prepare(FieldType, string(t))
}

// SetDelivery selects Dinein, Takeaway or Delivery
func (b *Builder) SetDelivery(m models.DeliveryMode) error {
	return b.Prepare(FieldDelivery, string(m))
}

// SetOrigin records whether a takeaway customer is on the premises
func (b *Builder) SetOrigin(o models.Origin) error {
	return b.Prepare(FieldOrigin, string(o))
}

func (b *Builder) SetSection(sectionID string) error {
	return b.Prepare(FieldSectionID, sectionID)
}

func (b *Builder) SetLot(lotID string) error {
	return b.Prepare(FieldLotID, lotID)
}

// SetSlot records the scheduled slot, e.g. "9:00 - 10:00"
func (b *Builder) SetSlot(slot string) error {
	return b.Prepare(FieldSlot, slot)
}

// SetMeta merges keys into the draft meta
func (b *Builder) SetMeta(meta map[string]interface{}) error {
	return b.Prepare(FieldMeta, meta)
}

// Draft returns a copy of the current draft
func (b *Builder) Draft() Draft {
	b.mu.RLock()
	defer b.mu.RUnlock()

	d := b.draft
	d.Meta = mergeMeta(nil, b.draft.Meta)
	return d
}

// Reset discards the draft. Session defaults are kept.
func (b *Builder) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.draft = b.fresh()
}

func stringField(d *Draft, field Field) *string {
	switch field {
	case FieldUserID:
		return &d.UserID
	case FieldVendorID:
		return &d.VendorID
	case FieldBranchID:
		return &d.BranchID
	case FieldSectionID:
		return &d.SectionID
	case FieldLotID:
		return &d.LotID
	case FieldStaffID:
		return &d.StaffID
	case FieldAddressID:
		return &d.AddressID
	default:
		return &d.Slot
	}
}

func asString(field Field, value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case models.FulfillmentType:
		return string(v), nil
	case models.DeliveryMode:
		return string(v), nil
	case models.Origin:
		return string(v), nil
	case models.OrderAction:
		return string(v), nil
	case models.OrderStatus:
		return string(v), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", models.ValidationError{Field: string(field), Message: fmt.Sprintf("expected a string, got %T", value)}
	}
}

func asDecimal(field Field, value interface{}) (decimal.Decimal, error) {
	switch v := value.(type) {
	case nil:
		return decimal.Zero, nil
	case decimal.Decimal:
		return v, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, models.ValidationError{Field: string(field), Message: "not a number"}
		}
		return d, nil
	default:
		return decimal.Zero, models.ValidationError{Field: string(field), Message: fmt.Sprintf("expected a number, got %T", value)}
	}
}

func mergeMeta(dst, src map[string]interface{}) map[string]interface{} {
	if dst == nil && src == nil {
		return nil
	}
	out := make(map[string]interface{}, len(dst)+len(src))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range src {
		out[k] = v
	}
	return out
}

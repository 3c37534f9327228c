package draft

import (
	"strings"

	"storefront/internal/models"
)

// ValidationErrors lists every problem found on a draft
type ValidationErrors []models.ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return strings.Join(msgs, "; ")
}

// Has reports whether a field failed validation
func (e ValidationErrors) Has(field Field) bool {
	for _, v := range e {
		if v.Field == string(field) {
			return true
		}
	}
	return false
}

// Validate checks the draft is complete for submission
func (d Draft) Validate() error {
	var errs ValidationErrors

	validateContext(d, &errs)
	validateSelection(d, &errs)
	validateLocation(d, &errs)
	validateSchedule(d, &errs)

	if d.Status != "" && d.Status != models.StatusPending {
		errs = append(errs, models.ValidationError{
			Field:   string(FieldStatus),
			Message: "a new order can only be Pending",
		})
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Validate checks the current draft
func (b *Builder) Validate() error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.draft.Validate()
}

func validateContext(d Draft, errs *ValidationErrors) {
	if d.StaffID == "" {
		*errs = append(*errs, models.ValidationError{
			Field:   string(FieldStaffID),
			Message: "staff is required",
		})
	}
	if d.BranchID == "" {
		*errs = append(*errs, models.ValidationError{
			Field:   string(FieldBranchID),
			Message: "branch is required",
		})
	}
}

func validateSelection(d Draft, errs *ValidationErrors) {
	if d.Type == "" {
		*errs = append(*errs, models.ValidationError{
			Field:   string(FieldType),
			Message: "order type is required",
		})
	}
	if d.Delivery == "" {
		*errs = append(*errs, models.ValidationError{
			Field:   string(FieldDelivery),
			Message: "delivery mode is required",
		})
	}
}

func validateLocation(d Draft, errs *ValidationErrors) {
	switch d.Delivery {
	case models.DeliveryDinein:
		if d.SectionID == "" {
			*errs = append(*errs, models.ValidationError{
				Field:   string(FieldSectionID),
				Message: "section is required for dine-in orders",
			})
		}
		if d.LotID == "" {
			*errs = append(*errs, models.ValidationError{
				Field:   string(FieldLotID),
				Message: "table is required for dine-in orders",
			})
		}
	case models.DeliveryTakeaway:
		if d.Origin == "" {
			*errs = append(*errs, models.ValidationError{
				Field:   string(FieldOrigin),
				Message: "origin is required for takeaway orders",
			})
		}
	}
}

func validateSchedule(d Draft, errs *ValidationErrors) {
	if d.NeedsSchedule() && d.Slot == "" {
		*errs = append(*errs, models.ValidationError{
			Field:   string(FieldSlot),
			Message: "a time slot is required for preorders and deliveries",
		})
	}
}

package draft

import "storefront/internal/models"

// Stage is the step of the checkout flow the draft is waiting on
type Stage string

const (
	StageNoType        Stage = "no_type"
	StageTypeSelected  Stage = "type_selected"
	StageNeedsSection  Stage = "needs_section"
	StageNeedsLot      Stage = "needs_lot"
	StageNeedsOrigin   Stage = "needs_origin"
	StageNeedsSchedule Stage = "needs_schedule"
	StageReady         Stage = "ready"
)

// Stage derives the current step from the fields set so far
func (d Draft) Stage() Stage {
	if d.Type == "" {
		return StageNoType
	}
	if d.Delivery == "" {
		return StageTypeSelected
	}

	switch d.Delivery {
	case models.DeliveryDinein:
		if d.SectionID == "" {
			return StageNeedsSection
		}
		if d.LotID == "" {
			return StageNeedsLot
		}
	case models.DeliveryTakeaway:
		if d.Origin == "" {
			return StageNeedsOrigin
		}
	}

	if d.NeedsSchedule() && d.Slot == "" {
		return StageNeedsSchedule
	}
	return StageReady
}

// Stage returns the step the current draft is waiting on
func (b *Builder) Stage() Stage {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.draft.Stage()
}

// Ready reports whether the draft can be submitted
func (b *Builder) Ready() bool {
	return b.Stage() == StageReady
}

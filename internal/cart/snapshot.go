package cart

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/models"
)

// ErrSnapshotNotFound is returned by repositories when nothing was saved under a key
var ErrSnapshotNotFound = errors.New("cart snapshot not found")

// VendorCart is one vendor's lines in a snapshot
type VendorCart struct {
	VendorID string `json:"vendorId"`
	Lines    []Line `json:"lines"`
}

// Snapshot is a point-in-time copy of the store
type Snapshot struct {
	Customer *models.User `json:"customer,omitempty"`
	Carts    []VendorCart `json:"carts"`
}

// Repository checkpoints snapshots outside the process
type Repository interface {
	Save(ctx context.Context, terminalID string, snapshot Snapshot) error
	Load(ctx context.Context, terminalID string) (Snapshot, error)
	Delete(ctx context.Context, terminalID string) error
}

// Snapshot copies the current state
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{Carts: make([]VendorCart, 0, len(s.vendors))}
	if s.customer != nil {
		c := *s.customer
		snap.Customer = &c
	}
	for _, vendorID := range s.vendors {
		snap.Carts = append(snap.Carts, VendorCart{
			VendorID: vendorID,
			Lines:    copyLines(s.lines[vendorID]),
		})
	}
	return snap
}

// Restore replaces the current state with a snapshot after checking its invariants
func (s *Store) Restore(snap Snapshot) error {
	vendors := make([]string, 0, len(snap.Carts))
	lines := make(map[string][]Line, len(snap.Carts))

	for _, vc := range snap.Carts {
		if vc.VendorID == "" {
			return models.ValidationError{Field: "vendorId", Message: "vendor id is required"}
		}
		if _, dup := lines[vc.VendorID]; dup {
			return models.ValidationError{Field: "vendorId", Message: fmt.Sprintf("vendor %s appears twice", vc.VendorID)}
		}
		if len(vc.Lines) == 0 {
			continue
		}

		seen := make(map[string]bool, len(vc.Lines))
		for i, l := range vc.Lines {
			field := fmt.Sprintf("carts[%s].lines[%d]", vc.VendorID, i)
			if l.VendorID != vc.VendorID {
				return models.ValidationError{Field: field, Message: "line vendor does not match cart vendor"}
			}
			if l.ProductID == "" {
				return models.ValidationError{Field: field, Message: "product id is required"}
			}
			if seen[l.ProductID] {
				return models.ValidationError{Field: field, Message: "duplicate product"}
			}
			if l.Quantity < 0 {
				return models.ValidationError{Field: field, Message: ErrNegativeQuantity.Error()}
			}
			seen[l.ProductID] = true
		}

		vendors = append(vendors, vc.VendorID)
		lines[vc.VendorID] = copyLines(vc.Lines)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.vendors = vendors
	s.lines = lines
	if snap.Customer != nil {
		c := *snap.Customer
		s.customer = &c
	} else {
		s.customer = nil
	}
	return nil
}

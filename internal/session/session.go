package session

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/models"
)

var (
	// ErrNotFound is returned when no session is stored for the terminal
	ErrNotFound = errors.New("session not found")

	// ErrIncomplete is returned when staff, branch or vendor is missing from a session
	ErrIncomplete = errors.New("session is missing staff, branch or vendor")
)

// Staff is the operator signed in on the terminal
type Staff struct {
	ID        string         `json:"id"`
	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	Email     string         `json:"email,omitempty"`
	Phone     string         `json:"phone,omitempty"`
	AvatarURL string         `json:"avatarUrl,omitempty"`
	Role      string         `json:"role"`
	Vendor    *models.Vendor `json:"vendor,omitempty"`
	Branch    *models.Branch `json:"branch,omitempty"`
}

// Session is the persisted auth state of a terminal
type Session struct {
	Token string `json:"sessionToken"`
	Staff Staff  `json:"session"`
}

// StaffID returns the operator id, empty for a nil session
func (s *Session) StaffID() string {
	if s == nil {
		return ""
	}
	return s.Staff.ID
}

// BranchID returns the operator's branch id
func (s *Session) BranchID() string {
	if s == nil || s.Staff.Branch == nil {
		return ""
	}
	return s.Staff.Branch.ID
}

// VendorID returns the operator's vendor id
func (s *Session) VendorID() string {
	if s == nil || s.Staff.Vendor == nil {
		return ""
	}
	return s.Staff.Vendor.ID
}

// Role returns the operator role in lower case
func (s *Session) Role() string {
	if s == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(s.Staff.Role))
}

// RequireContext fails when a field needed to submit orders is absent
func (s *Session) RequireContext() error {
	if s.StaffID() == "" || s.BranchID() == "" || s.VendorID() == "" {
		return ErrIncomplete
	}
	return nil
}

// Store persists the session of each terminal
type Store interface {
	Get(ctx context.Context, terminalID string) (*Session, error)
	Save(ctx context.Context, terminalID string, s *Session) error
	Delete(ctx context.Context, terminalID string) error
}

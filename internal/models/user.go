package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// User is a customer or staff member
type User struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// FullName joins first and last name
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// RegisterRequest creates a customer account from the terminal
type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone"`
	Password  string `json:"password,omitempty"`
}

// Validate checks the fields needed to register a customer
func (r *RegisterRequest) Validate() error {
	if strings.TrimSpace(r.FirstName) == "" {
		return ValidationError{Field: "firstName", Message: "first name is required"}
	}
	if strings.TrimSpace(r.Phone) == "" {
		return ValidationError{Field: "phone", Message: "phone is required"}
	}
	return nil
}

// Payment is created by the backend and confirmed by the terminal
type Payment struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"orderId,omitempty"`
	InvoiceID string          `json:"invoiceId,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Ref       string          `json:"ref,omitempty"`
	Method    string          `json:"method,omitempty"`
	Status    string          `json:"status,omitempty"`
	URL       string          `json:"url,omitempty"`
	CreatedAt time.Time       `json:"createdAt,omitempty"`
	UpdatedAt time.Time       `json:"updatedAt,omitempty"`
}

// PaymentUpdate is the partial payload sent after a provider callback
type PaymentUpdate struct {
	Ref    string `json:"ref,omitempty"`
	Status string `json:"status,omitempty"`
}

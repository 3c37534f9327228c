package cart

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"storefront/internal/models"
)

// ErrNegativeQuantity is returned when a line quantity below zero is requested
var ErrNegativeQuantity = errors.New("quantity must not be negative")

// Key identifies a line within the cart
type Key struct {
	VendorID  string
	ProductID string
}

// ProductKey returns the cart key of a product
func ProductKey(p models.Product) Key {
	return Key{VendorID: p.VendorID, ProductID: p.ID}
}

// Line is a product snapshot plus the attributes collected when it was added
type Line struct {
	ProductID string                 `json:"productId"`
	VendorID  string                 `json:"vendorId"`
	Name      string                 `json:"name"`
	Price     decimal.Decimal        `json:"price"`
	Image     string                 `json:"image,omitempty"`
	Quantity  int                    `json:"quantity"`
	Meta      map[string]interface{} `json:"meta,omitempty"`
}

// Key returns the identity of the line
func (l Line) Key() Key {
	return Key{VendorID: l.VendorID, ProductID: l.ProductID}
}

// Amount is price * quantity
func (l Line) Amount() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// OrderItem converts the line into the item shape sent with an order
func (l Line) OrderItem() models.OrderItem {
	return models.OrderItem{
		ProductID: l.ProductID,
		Name:      l.Name,
		Price:     l.Price,
		Quantity:  l.Quantity,
		Meta:      copyMeta(l.Meta),
	}
}

// Store holds per-vendor carts for one operator session.
// Vendors and lines keep their insertion order. A vendor is present only while it has lines.
type Store struct {
	mu       sync.RWMutex
	vendors  []string
	lines    map[string][]Line
	customer *models.User
}

// NewStore creates an empty cart store
func NewStore() *Store {
	return &Store{lines: make(map[string][]Line)}
}

// AddItem appends a quantity 1 line for the product unless one already exists.
// Repeat adds are no-ops; quantity changes go through UpdateItem.
func (s *Store) AddItem(product models.Product, meta map[string]interface{}) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	vendorLines, ok := s.lines[product.VendorID]
	if ok && indexOf(vendorLines, product.ID) >= 0 {
		return false
	}
	if !ok {
		s.vendors = append(s.vendors, product.VendorID)
	}

	s.lines[product.VendorID] = append(vendorLines, Line{
		ProductID: product.ID,
		VendorID:  product.VendorID,
		Name:      product.Name,
		Price:     product.Price,
		Image:     product.ImageURL(),
		Quantity:  1,
		Meta:      copyMeta(meta),
	})
	return true
}

// UpdateItem replaces the quantity of a line. It reports false when the vendor
// has no cart or the line is absent. A zero quantity keeps the line.
func (s *Store) UpdateItem(key Key, quantity int) (bool, error) {
	if quantity < 0 {
		return false, fmt.Errorf("update %s/%s: %w", key.VendorID, key.ProductID, ErrNegativeQuantity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	vendorLines, ok := s.lines[key.VendorID]
	if !ok {
		return false, nil
	}
	i := indexOf(vendorLines, key.ProductID)
	if i < 0 {
		return false, nil
	}
	vendorLines[i].Quantity = quantity
	return true, nil
}

// RemoveItem drops a line; removing an absent line changes nothing
func (s *Store) RemoveItem(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	vendorLines, ok := s.lines[key.VendorID]
	if !ok {
		return false
	}
	i := indexOf(vendorLines, key.ProductID)
	if i < 0 {
		return false
	}

	remaining := make([]Line, 0, len(vendorLines)-1)
	remaining = append(remaining, vendorLines[:i]...)
	remaining = append(remaining, vendorLines[i+1:]...)

	if len(remaining) == 0 {
		s.dropVendor(key.VendorID)
		return true
	}
	s.lines[key.VendorID] = remaining
	return true
}

// ClearVendor empties one vendor cart, typically after its order was placed
func (s *Store) ClearVendor(vendorID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lines[vendorID]; ok {
		s.dropVendor(vendorID)
	}
}

// Clear empties every vendor cart
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.vendors = nil
	s.lines = make(map[string][]Line)
}

// Total sums price * quantity over one vendor cart; zero when absent
func (s *Store) Total(vendorID string) decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sum(s.lines[vendorID])
}

// GrandTotal sums every vendor cart
func (s *Store) GrandTotal() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	for _, vendorID := range s.vendors {
		total = total.Add(sum(s.lines[vendorID]))
	}
	return total
}

// Lines returns a copy of one vendor cart in insertion order
func (s *Store) Lines(vendorID string) []Line {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return copyLines(s.lines[vendorID])
}

// Line looks up a single line
func (s *Store) Line(key Key) (Line, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vendorLines := s.lines[key.VendorID]
	i := indexOf(vendorLines, key.ProductID)
	if i < 0 {
		return Line{}, false
	}
	line := vendorLines[i]
	line.Meta = copyMeta(line.Meta)
	return line, true
}

// Vendors returns the vendors with a cart, in the order they were first added
func (s *Store) Vendors() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.vendors))
	copy(out, s.vendors)
	return out
}

// Len counts lines across all vendors
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, vendorLines := range s.lines {
		n += len(vendorLines)
	}
	return n
}

// SetCurrentCustomer associates the customer shared by every vendor cart
func (s *Store) SetCurrentCustomer(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user == nil {
		s.customer = nil
		return
	}
	c := *user
	s.customer = &c
}

// Customer returns the current customer or nil
func (s *Store) Customer() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.customer == nil {
		return nil
	}
	c := *s.customer
	return &c
}

func (s *Store) dropVendor(vendorID string) {
	delete(s.lines, vendorID)
	for i, v := range s.vendors {
		if v == vendorID {
			s.vendors = append(s.vendors[:i:i], s.vendors[i+1:]...)
			return
		}
	}
}

func indexOf(lines []Line, productID string) int {
	for i, l := range lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

func sum(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Amount())
	}
	return total
}

func copyLines(lines []Line) []Line {
	if lines == nil {
		return nil
	}
	out := make([]Line, len(lines))
	for i, l := range lines {
		l.Meta = copyMeta(l.Meta)
		out[i] = l
	}
	return out
}

func copyMeta(meta map[string]interface{}) map[string]interface{} {
	if meta == nil {
		return nil
	}
	out := make(map[string]interface{}, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Attachment is a stored file reference such as a product image
type Attachment struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Size     int64  `json:"size,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
}

// Vendor is a shop or restaurant taking orders
type Vendor struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	Email            string      `json:"email,omitempty"`
	Phone            string      `json:"phone,omitempty"`
	Details          string      `json:"details,omitempty"`
	Logo             *Attachment `json:"logo,omitempty"`
	LogoURL          string      `json:"logoUrl,omitempty"`
	VendorCategoryID string      `json:"vendorCategoryId,omitempty"`
	CreatedAt        time.Time   `json:"createdAt,omitempty"`
	UpdatedAt        time.Time   `json:"updatedAt,omitempty"`
}

// Branch is a physical location of a vendor
type Branch struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Details  string `json:"details,omitempty"`
	VendorID string `json:"vendorId"`
}

// Section is a table, room or hall within a branch
type Section struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Details  string `json:"details,omitempty"`
	BranchID string `json:"branchId"`
	Lots     []Lot  `json:"lots,omitempty"`
}

// Lot is a single table within a section
type Lot struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SectionID string `json:"sectionId"`
}

// Address is a delivery address
type Address struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Details string `json:"details,omitempty"`
	Primary bool   `json:"primary,omitempty"`
	Phone   string `json:"phone,omitempty"`
	UserID  string `json:"userId,omitempty"`
}

// ProductCategory groups products on the menu
type ProductCategory struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Details       string `json:"details,omitempty"`
	ProductTypeID string `json:"productTypeId,omitempty"`
}

// ProductType groups categories
type ProductType struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Details string `json:"details,omitempty"`
}

// Product is sold by a vendor
type Product struct {
	ID                string                 `json:"id"`
	Name              string                 `json:"name"`
	Details           string                 `json:"details,omitempty"`
	Image             *Attachment            `json:"image,omitempty"`
	Price             decimal.Decimal        `json:"price"`
	Discounted        decimal.Decimal        `json:"discounted,omitempty"`
	Unit              string                 `json:"unit,omitempty"`
	SKU               string                 `json:"sku,omitempty"`
	Active            bool                   `json:"active"`
	Featured          bool                   `json:"featured,omitempty"`
	VendorID          string                 `json:"vendorId"`
	ProductCategoryID string                 `json:"productCategoryId,omitempty"`
	Meta              map[string]interface{} `json:"meta,omitempty"`
}

// ImageURL returns the product image reference, empty when none
func (p *Product) ImageURL() string {
	if p.Image == nil {
		return ""
	}
	return p.Image.URL
}

// FormField is a question asked on the product detail screen
type FormField struct {
	ID           string                   `json:"id"`
	Name         string                   `json:"name"`
	Label        string                   `json:"label"`
	DefaultValue string                   `json:"defaultValue,omitempty"`
	Type         string                   `json:"type"`
	Required     bool                     `json:"required"`
	Options      []map[string]interface{} `json:"options,omitempty"`
}

// FormSection groups form fields
type FormSection struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Details   string      `json:"details,omitempty"`
	Skippable bool        `json:"skippable,omitempty"`
	Fields    []FormField `json:"fields"`
}

// ProductForm collects line item answers stored in the cart line meta
type ProductForm struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Details   string        `json:"details,omitempty"`
	ProductID string        `json:"productId"`
	Sections  []FormSection `json:"sections"`
}

// MissingAnswers returns the names of required fields that have no answer in meta
func (f *ProductForm) MissingAnswers(meta map[string]interface{}) []string {
	var missing []string
	for _, section := range f.Sections {
		if section.Skippable {
			continue
		}
		for _, field := range section.Fields {
			if !field.Required {
				continue
			}
			v, ok := meta[field.Name]
			if !ok || v == nil || v == "" {
				missing = append(missing, field.Name)
			}
		}
	}
	return missing
}

// PaginationMeta describes a page of a list endpoint
type PaginationMeta struct {
	Total       int    `json:"total"`
	PerPage     int    `json:"perPage"`
	CurrentPage int    `json:"currentPage"`
	LastPage    int    `json:"lastPage"`
	FirstPage   int    `json:"firstPage"`
	NextPageURL string `json:"nextPageUrl,omitempty"`
}

// Page is the envelope returned by list endpoints
type Page[T any] struct {
	Data []T            `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

package receipt

import (
	"fmt"
	"strings"
	"time"
)

// Receipt represents a single recorded purchase.
type Receipt struct {
	ID         string    `json:"id"`
	Date       string    `json:"date"` // Calendar date, YYYY-MM-DD
	Merchant   string    `json:"merchant"`
	TotalCents int64     `json:"totalCents"` // Amount in cents
	Category   string    `json:"category"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"createdAt"` // Assigned by the store at insertion
}

// NewReceiptFields holds the caller-supplied fields for Create. The store
// assigns ID and CreatedAt itself.
type NewReceiptFields struct {
	Date       string `json:"date"`
	Merchant   string `json:"merchant"`
	TotalCents int64  `json:"totalCents"`
	Category   string `json:"category"`
	Notes      string `json:"notes,omitempty"`
}

// Patch describes a partial update. Nil fields are left untouched.
type Patch struct {
	Date       *string `json:"date,omitempty"`
	Merchant   *string `json:"merchant,omitempty"`
	TotalCents *int64  `json:"totalCents,omitempty"`
	Category   *string `json:"category,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

// ValidationError reports a rejected field on Create or Update.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validate checks the minimal structural constraints the store enforces.
// Richer rules (future dates, note length) belong to the form layer.
func (f NewReceiptFields) Validate() error {
	if _, err := ParseDate(f.Date); err != nil {
		return &ValidationError{Field: "date", Reason: "must be a YYYY-MM-DD calendar date"}
	}
	if strings.TrimSpace(f.Merchant) == "" {
		return &ValidationError{Field: "merchant", Reason: "must not be empty"}
	}
	if f.TotalCents < 0 {
		return &ValidationError{Field: "totalCents", Reason: "must not be negative"}
	}
	if strings.TrimSpace(f.Category) == "" {
		return &ValidationError{Field: "category", Reason: "must not be empty"}
	}
	return nil
}

// apply returns a copy of r with the patched fields replaced. ID and
// CreatedAt are immutable and never touched.
func (p Patch) apply(r Receipt) Receipt {
	if p.Date != nil {
		r.Date = *p.Date
	}
	if p.Merchant != nil {
		r.Merchant = *p.Merchant
	}
	if p.TotalCents != nil {
		r.TotalCents = *p.TotalCents
	}
	if p.Category != nil {
		r.Category = *p.Category
	}
	if p.Notes != nil {
		r.Notes = *p.Notes
	}
	return r
}

// validate checks the patched fields against the same constraints as Create.
func (p Patch) validate() error {
	if p.Date != nil {
		if _, err := ParseDate(*p.Date); err != nil {
			return &ValidationError{Field: "date", Reason: "must be a YYYY-MM-DD calendar date"}
		}
	}
	if p.Merchant != nil && strings.TrimSpace(*p.Merchant) == "" {
		return &ValidationError{Field: "merchant", Reason: "must not be empty"}
	}
	if p.TotalCents != nil && *p.TotalCents < 0 {
		return &ValidationError{Field: "totalCents", Reason: "must not be negative"}
	}
	if p.Category != nil && strings.TrimSpace(*p.Category) == "" {
		return &ValidationError{Field: "category", Reason: "must not be empty"}
	}
	return nil
}

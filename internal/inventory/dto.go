package inventory

import (
	"github.com/shopspring/decimal"
)

// MatchMode selects how a product name search compares values.
type MatchMode string

const (
	MatchPrefix   MatchMode = "prefix"
	MatchExact    MatchMode = "exact"
	MatchContains MatchMode = "contains"
)

// IsValid reports whether the mode is one of the supported comparisons.
func (m MatchMode) IsValid() bool {
	switch m {
	case MatchPrefix, MatchExact, MatchContains:
		return true
	}
	return false
}

// CreateItemInput carries the fields accepted when adding an item.
type CreateItemInput struct {
	ProductName string          `json:"product_name" validate:"required,min=1,max=255"`
	Quantity    int             `json:"quantity" validate:"gte=0"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Category    string          `json:"category" validate:"max=255"`
	Description string          `json:"description" validate:"max=2000"`
}

// UpdateItemInput carries partial updates. Nil fields are left untouched.
type UpdateItemInput struct {
	ProductName *string          `json:"product_name" validate:"omitempty,min=1,max=255"`
	Quantity    *int             `json:"quantity" validate:"omitempty,gte=0"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	Category    *string          `json:"category" validate:"omitempty,max=255"`
	Description *string          `json:"description" validate:"omitempty,max=2000"`
}

// IsEmpty reports whether the update carries no changes at all.
func (u UpdateItemInput) IsEmpty() bool {
	return u.ProductName == nil && u.Quantity == nil && u.UnitPrice == nil &&
		u.Category == nil && u.Description == nil
}

// ListParams filters and paginates inventory listings.
type ListParams struct {
	Query  string
	Match  MatchMode
	Limit  int
	Cursor string
}

// RowError describes why a single CSV row was rejected during import.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportResult summarizes a CSV import run. Header and Samples feed the
// optional schema analysis and stay out of the response body.
type ImportResult struct {
	Imported int        `json:"imported"`
	Skipped  int        `json:"skipped"`
	Replaced bool       `json:"replaced"`
	Errors   []RowError `json:"errors,omitempty"`
	Analysis string     `json:"analysis,omitempty"`

	Header  []string   `json:"-"`
	Samples [][]string `json:"-"`
}

package transaction

import (
	"strings"
	"time"

	"github.com/salesdash/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Transaction is a single product sale record.
// Records are written in bulk by the seed import and are read-only afterwards.
type Transaction struct {
	shared.BaseEntity
	ExternalID  int64
	Title       string
	Description string
	Price       decimal.Decimal
	Category    string
	Sold        int64
	Image       string
	DateOfSale  time.Time
}

// Attributes holds the raw fields used to build a Transaction
type Attributes struct {
	ExternalID  int64
	Title       string
	Description string
	Price       decimal.Decimal
	Category    string
	Sold        int64
	Image       string
	DateOfSale  time.Time
}

// NewTransaction creates a transaction from imported attributes.
// The sale date is normalized to UTC so month bucketing does not depend on
// the offset the record was published with.
func NewTransaction(attrs Attributes) (*Transaction, error) {
	if attrs.DateOfSale.IsZero() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Date of sale is required")
	}
	if attrs.Sold < 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Sold count cannot be negative")
	}

	return &Transaction{
		BaseEntity:  shared.NewBaseEntity(),
		ExternalID:  attrs.ExternalID,
		Title:       strings.TrimSpace(attrs.Title),
		Description: attrs.Description,
		Price:       attrs.Price,
		Category:    strings.TrimSpace(attrs.Category),
		Sold:        attrs.Sold,
		Image:       attrs.Image,
		DateOfSale:  attrs.DateOfSale.UTC(),
	}, nil
}

// IsSold reports whether at least one unit was sold
func (t *Transaction) IsSold() bool {
	return t.Sold > 0
}

// SaleMonth returns the calendar month of the sale in UTC
func (t *Transaction) SaleMonth() time.Month {
	return t.DateOfSale.UTC().Month()
}

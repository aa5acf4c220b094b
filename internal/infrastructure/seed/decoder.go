package seed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/salesdash/backend/internal/domain/transaction"
	"github.com/shopspring/decimal"
)

// record mirrors one element of the published dataset
type record struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Price       flexDecimal `json:"price"`
	Category    string      `json:"category"`
	Sold        flexCount   `json:"sold"`
	Image       string      `json:"image"`
	DateOfSale  flexTime    `json:"dateOfSale"`
}

// Decode parses a JSON array of dataset records into transactions.
// A single malformed record fails the whole payload.
func Decode(r io.Reader) ([]*transaction.Transaction, error) {
	var records []record
	dec := json.NewDecoder(r)
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}

	result := make([]*transaction.Transaction, 0, len(records))
	for i, rec := range records {
		tx, err := transaction.NewTransaction(transaction.Attributes{
			ExternalID:  rec.ID,
			Title:       rec.Title,
			Description: rec.Description,
			Price:       rec.Price.Decimal,
			Category:    rec.Category,
			Sold:        rec.Sold.Value,
			Image:       rec.Image,
			DateOfSale:  rec.DateOfSale.Time,
		})
		if err != nil {
			return nil, fmt.Errorf("record %d (id %d): %w", i, rec.ID, err)
		}
		result = append(result, tx)
	}
	return result, nil
}

var null = []byte("null")

// flexDecimal accepts a JSON number or a numeric string
type flexDecimal struct {
	decimal.Decimal
}

func (d *flexDecimal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, null) {
		d.Decimal = decimal.Zero
		return nil
	}
	s := string(data)
	if len(data) > 0 && data[0] == '"' {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return fmt.Errorf("price: %w", err)
		}
		s = unquoted
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("price %q: %w", s, err)
	}
	d.Decimal = v
	return nil
}

// flexCount accepts a boolean sold flag or a whole-number sold count
type flexCount struct {
	Value int64
}

func (c *flexCount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, null), bytes.Equal(data, []byte("false")):
		c.Value = 0
		return nil
	case bytes.Equal(data, []byte("true")):
		c.Value = 1
		return nil
	}

	v, err := decimal.NewFromString(string(data))
	if err != nil {
		return fmt.Errorf("sold %s: not a boolean or number", data)
	}
	if !v.Equal(v.Truncate(0)) {
		return fmt.Errorf("sold %s: not a whole number", data)
	}
	c.Value = v.IntPart()
	return nil
}

// flexTime accepts RFC 3339 timestamps with or without an offset, and plain
// dates. Values without an offset are taken as UTC.
type flexTime struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

func (t *flexTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), null) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("dateOfSale: %w", err)
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("dateOfSale %q: unrecognized format", s)
}

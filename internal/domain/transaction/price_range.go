package transaction

import (
	"strconv"

	"github.com/shopspring/decimal"
)

const (
	priceRangeWidth = 100
	priceRangeCount = 10
)

// PriceRange is one histogram bucket. Bounds are whole currency units:
// a bucket labelled "101-200" holds prices in (100, 200].
type PriceRange struct {
	Min  int64
	Max  int64
	Open bool
}

// DefaultPriceRanges are the ten buckets used by the bar chart:
// 0-100, 101-200, ..., 801-900 and 901-above.
var DefaultPriceRanges = BuildPriceRanges(priceRangeWidth, priceRangeCount)

// BuildPriceRanges returns count contiguous buckets of the given width.
// The first bucket starts at zero and the last one is open-ended.
func BuildPriceRanges(width int64, count int) []PriceRange {
	ranges := make([]PriceRange, 0, count)
	for i := 0; i < count; i++ {
		lower := int64(i) * width
		r := PriceRange{Min: lower, Max: lower + width}
		if i > 0 {
			r.Min = lower + 1
		}
		if i == count-1 {
			r.Open = true
			r.Max = 0
		}
		ranges = append(ranges, r)
	}
	return ranges
}

// Label renders the bucket the way the dashboard chart displays it
func (r PriceRange) Label() string {
	if r.Open {
		return strconv.FormatInt(r.Min, 10) + "-above"
	}
	return strconv.FormatInt(r.Min, 10) + "-" + strconv.FormatInt(r.Max, 10)
}

// LowerExclusive is the price above which the bucket starts. The first
// bucket is closed at zero instead.
func (r PriceRange) LowerExclusive() int64 {
	if r.Min == 0 {
		return 0
	}
	return r.Min - 1
}

// Contains reports whether price falls into the bucket.
// Negative prices never match any bucket.
func (r PriceRange) Contains(price decimal.Decimal) bool {
	if price.IsNegative() {
		return false
	}
	if r.Min > 0 && price.LessThanOrEqual(decimal.NewFromInt(r.LowerExclusive())) {
		return false
	}
	return r.Open || price.LessThanOrEqual(decimal.NewFromInt(r.Max))
}

// BucketIndex returns the index of the bucket holding price, or -1
func BucketIndex(ranges []PriceRange, price decimal.Decimal) int {
	for i, r := range ranges {
		if r.Contains(price) {
			return i
		}
	}
	return -1
}

package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Unordered is the position reported for records without a usable order
// value. Sorting does not rely on it: absent orders always sort last.
const Unordered = math.MaxInt32

// Order is an optional display position. The backend sends numbers, numeric
// strings or null; fractional values round to the nearest integer and
// anything that is not numeric is absent.
type Order struct {
	Value   int
	Present bool
}

// NewOrder returns a present order value.
func NewOrder(v int) Order {
	return Order{Value: v, Present: true}
}

// Position returns the order value, or Unordered when absent.
func (o Order) Position() int {
	if !o.Present {
		return Unordered
	}
	return o.Value
}

// Or returns the order value, or def when absent.
func (o Order) Or(def int) int {
	if !o.Present {
		return def
	}
	return o.Value
}

func (o Order) MarshalJSON() ([]byte, error) {
	if !o.Present {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(o.Value)), nil
}

func (o *Order) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*o = Order{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case float64:
		*o = NewOrder(int(math.Round(t)))
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			*o = NewOrder(int(math.Round(f)))
		}
	}
	return nil
}

// Ordered is implemented by records shown in a client-computed order.
type Ordered interface {
	SortOrder() Order
	SortCategory() string
	SortID() int64
}

// SortRecords orders items in place: present order ascending (absent last),
// then category label, then identifier ascending.
func SortRecords[T Ordered](items []T) {
	// Collators keep scratch buffers and are not safe to share.
	cl := collate.New(language.Spanish)
	sort.SliceStable(items, func(i, j int) bool {
		return lessRecord(cl, items[i], items[j])
	})
}

func lessRecord[T Ordered](cl *collate.Collator, a, b T) bool {
	oa, ob := a.SortOrder(), b.SortOrder()
	if oa.Present != ob.Present {
		return oa.Present
	}
	if oa.Present && oa.Value != ob.Value {
		return oa.Value < ob.Value
	}

	if c := cl.CompareString(a.SortCategory(), b.SortCategory()); c != 0 {
		return c < 0
	}
	return a.SortID() < b.SortID()
}

package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// LooseInt accepts a JSON number or numeric string and never fails to decode:
// anything else leaves it invalid with a zero value.
type LooseInt struct {
	Value int64
	Valid bool
}

func NewLooseInt(v int64) LooseInt {
	return LooseInt{Value: v, Valid: true}
}

func (n *LooseInt) UnmarshalJSON(data []byte) error {
	n.Value, n.Valid = 0, false

	var raw interface{}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		return nil
	}

	var text string
	switch v := raw.(type) {
	case json.Number:
		text = v.String()
	case string:
		text = strings.TrimSpace(v)
	default:
		return nil
	}

	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		n.Value, n.Valid = i, true
		return nil
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil
	}
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
		return nil
	}

	n.Value = int64(math.Trunc(f))
	n.Valid = true
	return nil
}

func (n LooseInt) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(n.Value, 10)), nil
}

// Ptr returns nil for an invalid value or one outside the int range.
func (n LooseInt) Ptr() *int {
	if !n.Valid || n.Value > math.MaxInt || n.Value < math.MinInt {
		return nil
	}
	v := int(n.Value)
	return &v
}

// OrZero is the coerced value: the number when valid, otherwise 0.
func (n LooseInt) OrZero() int64 {
	if !n.Valid {
		return 0
	}
	return n.Value
}

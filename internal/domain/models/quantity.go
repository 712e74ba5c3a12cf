package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Quantity is the number of meal units covered by one attendance entry.
//
// Stored data is not trusted: numbers, numeric strings, null and garbage all
// decode without error. Anything that does not yield a positive integer is
// kept as 0 and counted as a single unit by Units. Values beyond the int32
// range are capped at math.MaxInt32.
type Quantity int

// Units returns the billable units, never less than one.
func (q Quantity) Units() int {
	if q < 1 {
		return 1
	}
	return int(q)
}

// ParseQuantity reads the leading integer of s the way a lenient form field would.
// "3", " 3 ", "3.9" and "3 plates" all give 3; "", "abc" and "-" give 0.
func ParseQuantity(s string) Quantity {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		// Only a range error is possible here; keep the sign of the input.
		if s[0] == '-' {
			return 0
		}
		return math.MaxInt32
	}
	return clampQuantity(n)
}

// clampQuantity caps n at MaxInt32, the width quantities are stored with.
func clampQuantity(n int64) Quantity {
	switch {
	case n > math.MaxInt32:
		return math.MaxInt32
	case n < math.MinInt32:
		return 0
	default:
		return Quantity(n)
	}
}

func quantityFromFloat(f float64) Quantity {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f < math.MinInt32:
		return 0
	default:
		return Quantity(int(f))
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		*q = 0
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*q = 0
			return nil
		}
		*q = ParseQuantity(s)
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			*q = 0
			return nil
		}
		*q = quantityFromFloat(f)
	}
	return nil
}

// MarshalBSONValue stores the quantity as a 32-bit integer.
func (q Quantity) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(int32(q))
}

// UnmarshalBSONValue implements bson.ValueUnmarshaler.
func (q *Quantity) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.Int32:
		*q = Quantity(raw.Int32())
	case bsontype.Int64:
		*q = clampQuantity(raw.Int64())
	case bsontype.Double:
		*q = quantityFromFloat(raw.Double())
	case bsontype.String:
		*q = ParseQuantity(raw.StringValue())
	default:
		*q = 0
	}
	return nil
}

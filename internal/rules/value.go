package rules

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Value is an int-or-string selection code as it appears in rule payloads.
type Value struct {
	Number   float64
	Text     string
	IsNumber bool
}

// Num returns a numeric Value.
func Num(f float64) Value { return Value{Number: f, IsNumber: true} }

// Str returns a textual Value.
func Str(s string) Value { return Value{Text: s} }

// ParseValue turns a raw code into a numeric Value when it parses as a
// number, and a textual Value otherwise.
func ParseValue(raw string) Value {
	raw = strings.TrimSpace(raw)
	if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return Num(f)
	}
	return Str(raw)
}

// String renders numbers without a trailing ".0" for integral values.
func (v Value) String() string {
	if v.IsNumber {
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	}
	return v.Text
}

// MarshalJSON writes numbers as JSON numbers and text as JSON strings.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsNumber {
		return []byte(v.String()), nil
	}
	return json.Marshal(v.Text)
}

// UnmarshalJSON accepts a JSON number or string.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return eris.New("rules: value must not be null")
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return eris.Wrap(err, "rules: decode value")
		}
		*v = Str(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return eris.Wrapf(err, "rules: value must be a number or string, got %s", string(data))
	}
	*v = Num(f)
	return nil
}

// Strings renders a slice of values.
func Strings(vals []Value) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = v.String()
	}
	return out
}

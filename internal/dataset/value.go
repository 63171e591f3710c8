// Package dataset holds survey response tables: typed cells, data columns
// in source order, and lazily created error-tag columns.
package dataset

import (
	"math"
	"strconv"
	"strings"
)

// Kind is the dynamic type of a cell.
type Kind uint8

// Cell kinds.
const (
	KindAbsent Kind = iota
	KindNumber
	KindText
)

// Value is one cell: absent, a number, or text.
type Value struct {
	kind Kind
	num  float64
	text string
}

// Null is the absent cell.
var Null = Value{}

// Num returns a numeric cell.
func Num(f float64) Value { return Value{kind: KindNumber, num: f} }

// Text returns a text cell.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Parse converts a raw spreadsheet string into a cell. Blank strings and
// NA/NaN markers are absent; numeric strings become numbers.
func Parse(raw string) Value {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "na") || strings.EqualFold(s, "nan") {
		return Null
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return Num(f)
	}
	return Text(s)
}

// Kind reports the cell kind.
func (v Value) Kind() Kind { return v.kind }

// Present reports whether the cell holds a value.
func (v Value) Present() bool { return v.kind != KindAbsent }

// IsNumber reports whether the cell is numeric.
func (v Value) IsNumber() bool { return v.kind == KindNumber }

// Float returns the numeric value. Text that parses as a number is accepted.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindText:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.text), 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// String renders the cell. Integral numbers print without a fraction and
// absent cells print as "".
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindText:
		return v.text
	}
	return ""
}

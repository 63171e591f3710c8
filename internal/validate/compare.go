package validate

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/skiplogic/internal/dataset"
)

// Comparison is one of the six relational operators.
type Comparison uint8

// Comparison operators. The zero value is invalid.
const (
	LT Comparison = iota + 1
	LE
	GT
	GE
	EQ
	NE
)

var comparisonSymbols = map[Comparison]string{
	LT: "<", LE: "<=", GT: ">", GE: ">=", EQ: "==", NE: "!=",
}

// Labelled forms used by the validation cart.
var comparisonForms = map[string]Comparison{
	"<":  LT,
	"<=": LE,
	">":  GT,
	">=": GE,
	"==": EQ,
	"!=": NE,

	"<(작다)":     LT,
	"<=(작거나같다)": LE,
	">(크다)":     GT,
	">=(크거나같다)": GE,
	"==(같다)":    EQ,
	"!=(다르다)":   NE,
}

// ParseComparison resolves an operator string once, accepting the bare
// symbol and the labelled cart form.
func ParseComparison(s string) (Comparison, error) {
	c, ok := comparisonForms[strings.TrimSpace(s)]
	if !ok {
		return 0, eris.Wrapf(ErrUnknownComparison, "validate: %q", s)
	}
	return c, nil
}

// Valid reports whether c is one of the six operators.
func (c Comparison) Valid() bool {
	_, ok := comparisonSymbols[c]
	return ok
}

func (c Comparison) String() string {
	if s, ok := comparisonSymbols[c]; ok {
		return s
	}
	return "invalid"
}

// holds compares two cells. Absent operands satisfy only NE. Numbers compare
// numerically and text lexically; a text cell that parses as a number is
// compared numerically against a number, otherwise mixed kinds satisfy
// only NE.
func (c Comparison) holds(a, b dataset.Value) bool {
	if !a.Present() || !b.Present() {
		return c == NE
	}
	if a.IsNumber() || b.IsNumber() {
		x, okA := a.Float()
		y, okB := b.Float()
		if !okA || !okB {
			return c == NE
		}
		return c.floats(x, y)
	}
	return c.strings(a.String(), b.String())
}

func (c Comparison) floats(x, y float64) bool {
	switch c {
	case LT:
		return x < y
	case LE:
		return x <= y
	case GT:
		return x > y
	case GE:
		return x >= y
	case EQ:
		return x == y
	case NE:
		return x != y
	}
	return false
}

func (c Comparison) strings(x, y string) bool {
	switch c {
	case LT:
		return x < y
	case LE:
		return x <= y
	case GT:
		return x > y
	case GE:
		return x >= y
	case EQ:
		return x == y
	case NE:
		return x != y
	}
	return false
}

func equal(a, b dataset.Value) bool { return EQ.holds(a, b) }

func in(v dataset.Value, set []dataset.Value) bool {
	for _, s := range set {
		if equal(v, s) {
			return true
		}
	}
	return false
}

package validate

import (
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Expression compares two arithmetic token lists, e.g.
// {Left: ["Q1", "+", "Q2"], Compare: GT, Right: ["Q3"]}.
//
// Each side is folded strictly left to right with no operator precedence:
// ["Q1", "+", "Q2", "*", "Q3"] is (Q1+Q2)*Q3. Tokens naming a data column
// read that column; other tokens must be numeric literals.
type Expression struct {
	Left    []string
	Compare Comparison
	Right   []string
}

func isArith(tok string) bool {
	switch tok {
	case "+", "-", "*", "/":
		return true
	}
	return false
}

// Target is the column tagged on failure: the first right-hand operand.
func (e Expression) Target() (string, bool) {
	for _, tok := range e.Right {
		if !isArith(tok) {
			return tok, true
		}
	}
	return "", false
}

// series is a per-row numeric vector; NaN marks absent rows.
type series []float64

// Compare tags the target column on every row where the expression holds.
// Rows where either side is absent compare false, except under NE.
func (v *Validator) Compare(e Expression) error {
	ok, err := v.checkComparison("comparison", e.Compare)
	if !ok {
		return err
	}
	target, found := e.Target()
	if !found {
		return eris.New("validate: comparison: right-hand side has no operand")
	}
	left, err := v.eval(e.Left)
	if err != nil {
		return eris.Wrap(err, "validate: comparison: left")
	}
	right, err := v.eval(e.Right)
	if err != nil {
		return eris.Wrap(err, "validate: comparison: right")
	}

	rows := v.rowsWhere(func(r int) bool {
		if math.IsNaN(left[r]) || math.IsNaN(right[r]) {
			return e.Compare == NE
		}
		return e.Compare.floats(left[r], right[r])
	})
	return v.addError(rows, target, CategoryItemValueIntegrated)
}

// eval folds tokens left to right. The most recent operator stays in effect
// until another one appears; a trailing operator is ignored.
func (v *Validator) eval(tokens []string) (series, error) {
	var acc series
	var op string
	for _, tok := range tokens {
		if isArith(tok) {
			op = tok
			continue
		}
		operand, err := v.operand(tok)
		if err != nil {
			return nil, err
		}
		if acc == nil {
			acc = operand
			continue
		}
		if op == "" {
			return nil, eris.Errorf("validate: missing operator before %q", tok)
		}
		for r := range acc {
			acc[r] = apply(op, acc[r], operand[r])
		}
	}
	if acc == nil {
		return nil, eris.New("validate: empty expression")
	}
	return acc, nil
}

func (v *Validator) operand(tok string) (series, error) {
	n := v.table.Len()
	out := make(series, n)
	if vals, ok := v.table.Column(tok); ok {
		for r, cell := range vals {
			f, ok := cell.Float()
			if !ok {
				f = math.NaN()
			}
			out[r] = f
		}
		return out, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(tok), 64)
	if err != nil {
		return nil, eris.Wrapf(ErrColumnNotFound, "validate: %q is neither a column nor a number", tok)
	}
	for r := range out {
		out[r] = f
	}
	return out, nil
}

// apply propagates NaN; division by zero follows IEEE 754.
func apply(op string, a, b float64) float64 {
	switch op {
	case "+":
		return a + b
	case "-":
		return a - b
	case "*":
		return a * b
	case "/":
		return a / b
	}
	return math.NaN()
}

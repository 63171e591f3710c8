package validate

import (
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/sells-group/skiplogic/internal/dataset"
)

// MissValue tags absent cells.
func (v *Validator) MissValue(cols []string) error {
	for _, col := range cols {
		vals, err := v.column("miss_value", col)
		if err != nil {
			return err
		}
		rows := v.rowsWhere(func(r int) bool { return !vals[r].Present() })
		if err := v.addError(rows, col, CategoryMissing); err != nil {
			return err
		}
	}
	return nil
}

// BetweenAB tags present cells outside the inclusive range [lo, hi]. Cells
// that are not numeric are out of range. Absent cells are left to MissValue.
func (v *Validator) BetweenAB(cols []string, lo, hi float64) error {
	return v.between(cols, Bounds{Min: lo, Max: hi})
}

// Bounds is a numeric range with per-end inclusivity.
type Bounds struct {
	Min, Max                   float64
	ExclusiveMin, ExclusiveMax bool
}

func (b Bounds) contains(f float64) bool {
	if f < b.Min || (b.ExclusiveMin && f == b.Min) {
		return false
	}
	if f > b.Max || (b.ExclusiveMax && f == b.Max) {
		return false
	}
	return true
}

func (v *Validator) between(cols []string, b Bounds) error {
	for _, col := range cols {
		vals, err := v.column("between_a_b", col)
		if err != nil {
			return err
		}
		rows := v.rowsWhere(func(r int) bool {
			if !vals[r].Present() {
				return false
			}
			f, ok := vals[r].Float()
			return !ok || !b.contains(f)
		})
		if err := v.addError(rows, col, CategoryRange); err != nil {
			return err
		}
	}
	return nil
}

// MultipleResponseCheck tags single-response cells whose canonical text is
// longer than one character, such as "13" or "1,3".
func (v *Validator) MultipleResponseCheck(cols []string) error {
	for _, col := range cols {
		vals, err := v.column("multiple_response_check", col)
		if err != nil {
			return err
		}
		rows := v.rowsWhere(func(r int) bool {
			return utf8.RuneCountInString(canonical(vals[r])) > 1
		})
		if err := v.addError(rows, col, CategoryDuplicateResponse); err != nil {
			return err
		}
	}
	return nil
}

// canonical renders integral numbers as plain integers and everything else
// as its original text.
func canonical(val dataset.Value) string {
	if !val.Present() {
		return ""
	}
	f, ok := val.Float()
	if !ok || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return val.String()
	}
	return strconv.FormatInt(int64(f), 10)
}

// EarlyEnd tags rows where col equals value but some later data column is
// still answered.
func (v *Validator) EarlyEnd(col string, value dataset.Value) error {
	vals, err := v.column("early_end", col)
	if err != nil {
		return err
	}
	names, pos, err := v.dataPosition("early_end", col)
	if err != nil {
		return err
	}
	later, err := v.columns("early_end", names[pos+1:])
	if err != nil {
		return err
	}
	rows := v.rowsWhere(func(r int) bool {
		return equal(vals[r], value) && anyPresent(later, r)
	})
	return v.addError(rows, col, CategoryEarlyTermination)
}

// SkipPattern tags rows where start equals value and any column strictly
// between start and end is answered. When end does not come after start
// nothing lies between them and no row is tagged.
func (v *Validator) SkipPattern(start string, value dataset.Value, end string) error {
	vals, err := v.column("skip_pattern", start)
	if err != nil {
		return err
	}
	names, from, err := v.dataPosition("skip_pattern", start)
	if err != nil {
		return err
	}
	_, to, err := v.dataPosition("skip_pattern", end)
	if err != nil {
		return err
	}
	var skipped [][]dataset.Value
	if to > from+1 {
		if skipped, err = v.columns("skip_pattern", names[from+1:to]); err != nil {
			return err
		}
	}
	rows := v.rowsWhere(func(r int) bool {
		return equal(vals[r], value) && anyPresent(skipped, r)
	})
	return v.addError(rows, start, CategoryItemSkip)
}

// SameValue tags rows where both columns hold the same value.
func (v *Validator) SameValue(col1, col2 string) error {
	a, err := v.column("same_value", col1)
	if err != nil {
		return err
	}
	b, err := v.column("same_value", col2)
	if err != nil {
		return err
	}
	rows := v.rowsWhere(func(r int) bool { return equal(a[r], b[r]) })
	return v.addError(rows, col1, CategoryIdenticalValue)
}

// CompareColumns tags rows where col1 <op> col2 holds.
func (v *Validator) CompareColumns(col1, col2 string, op Comparison) error {
	ok, err := v.checkComparison("comparison_columns", op)
	if !ok {
		return err
	}
	a, err := v.column("comparison_columns", col1)
	if err != nil {
		return err
	}
	b, err := v.column("comparison_columns", col2)
	if err != nil {
		return err
	}
	rows := v.rowsWhere(func(r int) bool { return op.holds(a[r], b[r]) })
	return v.addError(rows, col1, CategoryItemSizeComparison)
}

// CompareValue tags rows where col <op> val holds.
func (v *Validator) CompareValue(col string, val dataset.Value, op Comparison) error {
	ok, err := v.checkComparison("comparison_value", op)
	if !ok {
		return err
	}
	a, err := v.column("comparison_value", col)
	if err != nil {
		return err
	}
	rows := v.rowsWhere(func(r int) bool { return op.holds(a[r], val) })
	return v.addError(rows, col, CategoryItemValueComparison)
}

// RequireMissing tags rows where col1 is in vals and col2 is absent.
func (v *Validator) RequireMissing(col1 string, vals []dataset.Value, col2 string) error {
	a, err := v.column("require_missing", col1)
	if err != nil {
		return err
	}
	b, err := v.column("require_missing", col2)
	if err != nil {
		return err
	}
	rows := v.rowsWhere(func(r int) bool { return in(a[r], vals) && !b[r].Present() })
	return v.addError(rows, col1, CategoryConditionalMissing)
}

// RequireValue tags rows where col1 is in vals and col2 is answered.
func (v *Validator) RequireValue(col1 string, vals []dataset.Value, col2 string) error {
	a, err := v.column("require_value", col1)
	if err != nil {
		return err
	}
	b, err := v.column("require_value", col2)
	if err != nil {
		return err
	}
	rows := v.rowsWhere(func(r int) bool { return in(a[r], vals) && b[r].Present() })
	return v.addError(rows, col1, CategoryConditionalRequired)
}

// ConditionalMapping tags rows where col1 is in vals1 and col2 is in vals2.
func (v *Validator) ConditionalMapping(col1 string, vals1 []dataset.Value, col2 string, vals2 []dataset.Value) error {
	a, err := v.column("conditional_mapping", col1)
	if err != nil {
		return err
	}
	b, err := v.column("conditional_mapping", col2)
	if err != nil {
		return err
	}
	rows := v.rowsWhere(func(r int) bool { return in(a[r], vals1) && in(b[r], vals2) })
	return v.addError(rows, col1, CategoryConditionalLogic)
}

// ExclusiveMultiValue tags rows where one of cols holds value and another
// holds a different answer. The first column carries the tag.
func (v *Validator) ExclusiveMultiValue(cols []string, value dataset.Value) error {
	if len(cols) == 0 {
		return nil
	}
	data, err := v.columns("exclusive_multi_value", cols)
	if err != nil {
		return err
	}
	rows := v.rowsWhere(func(r int) bool {
		var hit, other bool
		for _, c := range data {
			switch {
			case equal(c[r], value):
				hit = true
			case c[r].Present():
				other = true
			}
		}
		return hit && other
	})
	return v.addError(rows, cols[0], CategoryExclusiveMultiValue)
}

func anyPresent(cols [][]dataset.Value, r int) bool {
	for _, c := range cols {
		if c[r].Present() {
			return true
		}
	}
	return false
}

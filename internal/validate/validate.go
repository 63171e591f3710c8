// Package validate applies survey validation rules to a dataset and tags
// failing rows in per-category error columns.
//
// Operations are not idempotent: running one twice appends its tags twice.
package validate

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/skiplogic/internal/dataset"
)

// Error categories. The error column name is the table's error prefix
// followed by the category.
const (
	CategoryMissing             = "결측"
	CategoryRange               = "범위"
	CategoryDuplicateResponse   = "중복응답"
	CategoryEarlyTermination    = "조기종료"
	CategoryItemSkip            = "문항스킵"
	CategoryIdenticalValue      = "동일값금지"
	CategoryItemSizeComparison  = "문항크기비교"
	CategoryItemValueComparison = "문항과값비교"
	CategoryConditionalMissing  = "조건부결측"
	CategoryConditionalRequired = "조건부필수"
	CategoryConditionalLogic    = "조건부로직"
	CategoryItemValueIntegrated = "문항값통합"
	CategoryExclusiveMultiValue = "특정값존재(다중응답)"
)

var (
	// ErrColumnNotFound is returned when a rule names a column the dataset
	// does not have.
	ErrColumnNotFound = eris.New("validate: column not found")

	// ErrUnknownComparison is returned for an unrecognised operator.
	ErrUnknownComparison = eris.New("validate: unknown comparison operator")
)

// Validator owns a table and mutates it only by appending error tags.
// It is not safe for concurrent use.
type Validator struct {
	table  *dataset.Table
	strict bool
	tagged map[string]int
}

// Option configures a Validator.
type Option func(*Validator)

// WithStrictComparisons makes an unknown comparison operator an error
// instead of a logged no-op.
func WithStrictComparisons() Option {
	return func(v *Validator) { v.strict = true }
}

// New takes ownership of t.
func New(t *dataset.Table, opts ...Option) *Validator {
	v := &Validator{table: t, tagged: make(map[string]int)}
	for _, o := range opts {
		o(v)
	}
	return v
}

// Table returns the owned table.
func (v *Validator) Table() *dataset.Table { return v.table }

// ErrorColumn returns the column name used for category.
func (v *Validator) ErrorColumn(category string) string {
	return v.table.ErrorPrefix() + category
}

// addError makes sure the category's error column exists, then appends col
// to the tags of every listed row.
func (v *Validator) addError(rows []int, col, category string) error {
	name := v.ErrorColumn(category)
	if err := v.table.AppendError(rows, col, name); err != nil {
		return eris.Wrapf(err, "validate: tag %s", name)
	}
	v.tagged[name] += len(rows)
	zap.L().Debug("validate: tagged rows",
		zap.String("category", category),
		zap.String("column", col),
		zap.Int("rows", len(rows)),
	)
	return nil
}

// column fetches a data column or fails with ErrColumnNotFound.
func (v *Validator) column(op, name string) ([]dataset.Value, error) {
	vals, ok := v.table.Column(name)
	if !ok {
		return nil, eris.Wrapf(ErrColumnNotFound, "validate: %s: %q", op, name)
	}
	return vals, nil
}

func (v *Validator) columns(op string, names []string) ([][]dataset.Value, error) {
	out := make([][]dataset.Value, len(names))
	for i, n := range names {
		vals, err := v.column(op, n)
		if err != nil {
			return nil, err
		}
		out[i] = vals
	}
	return out, nil
}

// dataPosition returns the index of name among the data columns.
func (v *Validator) dataPosition(op, name string) ([]string, int, error) {
	cols := v.table.DataColumns()
	for i, c := range cols {
		if c == name {
			return cols, i, nil
		}
	}
	return nil, 0, eris.Wrapf(ErrColumnNotFound, "validate: %s: %q", op, name)
}

// checkComparison applies the unknown-operator policy. It returns false when
// the operation should be skipped.
func (v *Validator) checkComparison(op string, c Comparison) (bool, error) {
	if c.Valid() {
		return true, nil
	}
	if v.strict {
		return false, eris.Wrapf(ErrUnknownComparison, "validate: %s", op)
	}
	zap.L().Warn("validate: unknown comparison operator, skipping",
		zap.String("operation", op),
		zap.Uint8("comparison", uint8(c)),
	)
	return false, nil
}

func (v *Validator) rowsWhere(pred func(r int) bool) []int {
	var rows []int
	for r := 0; r < v.table.Len(); r++ {
		if pred(r) {
			rows = append(rows, r)
		}
	}
	return rows
}

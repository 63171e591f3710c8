package validate

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/skiplogic/internal/dataset"
	"github.com/sells-group/skiplogic/internal/rules"
)

// Report summarises one Apply call.
type Report struct {
	Rows    int            `json:"rows"`
	Applied int            `json:"applied"`
	Skipped int            `json:"skipped"`
	Tags    map[string]int `json:"tags"` // error column -> tags appended
}

// Summary lists every error column with its tag count, sorted by name.
func (r Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "rows=%d applied=%d skipped=%d", r.Rows, r.Applied, r.Skipped)
	names := make([]string, 0, len(r.Tags))
	for n := range r.Tags {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(&b, "\n%s: %d", n, r.Tags[n])
	}
	return b.String()
}

// Apply runs every rule of every item in order. Payload columns default to
// the item id. Unknown rule kinds are skipped with a warning; a missing
// column or malformed payload stops the run.
func (v *Validator) Apply(rs rules.RuleSet) (Report, error) {
	before := make(map[string]int, len(v.tagged))
	for k, n := range v.tagged {
		before[k] = n
	}
	rep := Report{Rows: v.table.Len()}

	for _, item := range rs.Items {
		for i, rule := range item.Rules {
			applied, err := v.applyRule(item, rule)
			if err != nil {
				return rep, eris.Wrapf(err, "validate: item %s rule %d (%s)", item.Item, i, ruleName(rule))
			}
			if applied {
				rep.Applied++
			} else {
				rep.Skipped++
			}
		}
	}

	rep.Tags = make(map[string]int)
	for k, n := range v.tagged {
		rep.Tags[k] = n - before[k]
	}
	zap.L().Info("validate: rules applied",
		zap.Int("rows", rep.Rows),
		zap.Int("applied", rep.Applied),
		zap.Int("skipped", rep.Skipped),
	)
	return rep, nil
}

func ruleName(r rules.Rule) string {
	if r.RuleID != "" {
		return r.RuleID
	}
	return string(r.Kind)
}

// applyRule dispatches one rule. It reports false when the rule was skipped.
func (v *Validator) applyRule(item rules.ItemSpec, r rules.Rule) (bool, error) {
	p, err := resolve(item, r)
	if err != nil {
		return false, err
	}

	switch r.Kind {
	case rules.KindMissValue:
		return true, v.MissValue(p.columns)

	case rules.KindBetweenAB:
		b, ok := RuleBounds(item, r)
		if !ok {
			zap.L().Warn("validate: range rule without bounds, skipping",
				zap.String("item", item.Item), zap.String("rule", ruleName(r)))
			return false, nil
		}
		return true, v.between(p.columns, b)

	case rules.KindMultipleResponse:
		return true, v.MultipleResponseCheck(p.columns)

	case rules.KindEarlyEnd:
		val, err := p.single()
		if err != nil {
			return false, err
		}
		return true, v.EarlyEnd(p.column, val)

	case rules.KindSkipPattern:
		if r.EndCol == "" {
			return false, eris.New("end_col is required")
		}
		if len(p.values) == 0 {
			return false, eris.New("value is required")
		}
		for _, val := range p.values {
			if err := v.SkipPattern(p.column, val, r.EndCol); err != nil {
				return false, err
			}
		}
		return true, nil

	case rules.KindSameValue:
		if r.OtherColumn == "" {
			return false, eris.New("other_column is required")
		}
		return true, v.SameValue(p.column, r.OtherColumn)

	case rules.KindCompareColumns:
		if r.OtherColumn == "" {
			return false, eris.New("other_column is required")
		}
		op, ok, err := v.parseComparison(r)
		if !ok {
			return false, err
		}
		return true, v.CompareColumns(p.column, r.OtherColumn, op)

	case rules.KindCompareValue:
		val, err := p.single()
		if err != nil {
			return false, err
		}
		op, ok, err := v.parseComparison(r)
		if !ok {
			return false, err
		}
		return true, v.CompareValue(p.column, val, op)

	case rules.KindRequireMissing, rules.KindRequireValue:
		if r.OtherColumn == "" {
			return false, eris.New("other_column is required")
		}
		if len(p.values) == 0 {
			return false, eris.New("values are required")
		}
		if r.Kind == rules.KindRequireMissing {
			return true, v.RequireMissing(p.column, p.values, r.OtherColumn)
		}
		return true, v.RequireValue(p.column, p.values, r.OtherColumn)

	case rules.KindConditionalMapping:
		if r.OtherColumn == "" {
			return false, eris.New("other_column is required")
		}
		if len(p.values) == 0 || len(r.OtherValues) == 0 {
			return false, eris.New("values and other_values are required")
		}
		return true, v.ConditionalMapping(p.column, p.values, r.OtherColumn, cells(r.OtherValues))

	case rules.KindComparison:
		if len(r.Left) == 0 || len(r.Right) == 0 {
			return false, eris.New("left and right are required")
		}
		op, ok, err := v.parseComparison(r)
		if !ok {
			return false, err
		}
		return true, v.Compare(Expression{Left: r.Left, Compare: op, Right: r.Right})

	case rules.KindExclusiveMultiValue:
		val, err := p.single()
		if err != nil {
			return false, err
		}
		return true, v.ExclusiveMultiValue(p.columns, val)
	}

	zap.L().Warn("validate: unknown rule kind, skipping",
		zap.String("item", item.Item), zap.String("kind", string(r.Kind)))
	return false, nil
}

// parseComparison resolves the rule's operator under the validator's
// unknown-operator policy.
func (v *Validator) parseComparison(r rules.Rule) (Comparison, bool, error) {
	op, err := ParseComparison(r.Compare)
	if err == nil {
		return op, true, nil
	}
	if v.strict {
		return 0, false, err
	}
	zap.L().Warn("validate: unknown comparison operator, skipping",
		zap.String("rule", ruleName(r)), zap.String("compare", r.Compare))
	return 0, false, nil
}

// payload is a rule's operands with item defaults filled in.
type payload struct {
	columns []string
	column  string
	values  []dataset.Value
}

func (p payload) single() (dataset.Value, error) {
	if len(p.values) == 0 {
		return dataset.Null, eris.New("value is required")
	}
	return p.values[0], nil
}

func resolve(item rules.ItemSpec, r rules.Rule) (payload, error) {
	p := payload{column: r.Column, columns: r.Columns}

	if c := r.Condition; c != nil {
		switch c.Op {
		case "==", "in":
		default:
			return p, eris.Errorf("unsupported condition operator %q", c.Op)
		}
		if p.column == "" {
			p.column = c.Left
		}
		if r.Value == nil && len(r.Values) == 0 {
			p.values = cells(c.Right)
		}
	}

	if p.column == "" {
		p.column = item.Item
	}
	if len(p.columns) == 0 {
		p.columns = []string{p.column}
	}
	if r.Value != nil {
		p.values = append(p.values, cell(*r.Value))
	}
	p.values = append(p.values, cells(r.Values)...)
	return p, nil
}

// RuleBounds picks explicit min/max, else the numeric extent of the rule's
// allowed values, else of the item's domain codes.
func RuleBounds(item rules.ItemSpec, r rules.Rule) (Bounds, bool) {
	var b Bounds
	if r.InclusiveMin != nil {
		b.ExclusiveMin = !*r.InclusiveMin
	}
	if r.InclusiveMax != nil {
		b.ExclusiveMax = !*r.InclusiveMax
	}
	if r.Min != nil && r.Max != nil {
		b.Min, b.Max = *r.Min, *r.Max
		return b, true
	}

	codes := r.AllowedValues
	if len(codes) == 0 {
		codes = item.Domain.AllowedCodes
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, c := range codes {
		f, ok := cell(c).Float()
		if !ok {
			continue
		}
		lo = math.Min(lo, f)
		hi = math.Max(hi, f)
	}
	if r.Min != nil {
		lo = *r.Min
	}
	if r.Max != nil {
		hi = *r.Max
	}
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return b, false
	}
	b.Min, b.Max = lo, hi
	return b, true
}

// cell converts a rule code to a dataset cell with the same typing the
// dataset readers apply.
func cell(v rules.Value) dataset.Value {
	if v.IsNumber {
		return dataset.Num(v.Number)
	}
	if c := dataset.Parse(v.Text); c.Present() {
		return c
	}
	return dataset.Text(v.Text)
}

func cells(vals []rules.Value) []dataset.Value {
	out := make([]dataset.Value, len(vals))
	for i, v := range vals {
		out[i] = cell(v)
	}
	return out
}

var kindCategory = map[rules.Kind]string{
	rules.KindMissValue:           CategoryMissing,
	rules.KindBetweenAB:           CategoryRange,
	rules.KindMultipleResponse:    CategoryDuplicateResponse,
	rules.KindEarlyEnd:            CategoryEarlyTermination,
	rules.KindSkipPattern:         CategoryItemSkip,
	rules.KindSameValue:           CategoryIdenticalValue,
	rules.KindCompareColumns:      CategoryItemSizeComparison,
	rules.KindCompareValue:        CategoryItemValueComparison,
	rules.KindRequireMissing:      CategoryConditionalMissing,
	rules.KindRequireValue:        CategoryConditionalRequired,
	rules.KindConditionalMapping:  CategoryConditionalLogic,
	rules.KindComparison:          CategoryItemValueIntegrated,
	rules.KindExclusiveMultiValue: CategoryExclusiveMultiValue,
}

// CategoryFor returns the error category a rule kind tags.
func CategoryFor(k rules.Kind) (string, bool) {
	c, ok := kindCategory[k]
	return c, ok
}

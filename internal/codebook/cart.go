package codebook

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/skiplogic/internal/rules"
	"github.com/sells-group/skiplogic/internal/validate"
)

// Cart column titles that differ from the validator's category names.
const (
	TitleMissing  = "결측"
	TitleMulti    = "중복 응답"
	TitleRange    = "범위"
	TitleSkip     = "문항스킵"
	cartSheetName = "Sheet"
)

// CartColumn is one column of the validation cart: a title, the items it
// applies to, and the rule parameters.
type CartColumn struct {
	Title  string `json:"title"`
	Items  string `json:"items"`
	Values string `json:"values"`
}

// CartColumns lays out the cart for a codebook.
func CartColumns(entries []Entry) []CartColumn {
	return CartFromRuleSet(BuildRuleSet(entries))
}

type rangeGroup struct {
	lo, hi float64
	items  []string
}

// CartFromRuleSet lays out a cart for any rule set: missing and
// multiple-response columns first, then one range column per distinct
// (min, max) in ascending order, then one column per remaining rule.
func CartFromRuleSet(rs rules.RuleSet) []CartColumn {
	var missing, multi []string
	groups := make(map[[2]float64]*rangeGroup)
	var rest []CartColumn

	for _, it := range rs.Items {
		for _, r := range it.Rules {
			cols := r.Columns
			if len(cols) == 0 {
				c := r.Column
				if c == "" {
					c = it.Item
				}
				cols = []string{c}
			}

			switch r.Kind {
			case rules.KindMissValue:
				missing = append(missing, cols...)
			case rules.KindMultipleResponse:
				multi = append(multi, cols...)
			case rules.KindBetweenAB:
				b, ok := validate.RuleBounds(it, r)
				if !ok {
					continue
				}
				key := [2]float64{b.Min, b.Max}
				g, ok := groups[key]
				if !ok {
					g = &rangeGroup{lo: b.Min, hi: b.Max}
					groups[key] = g
				}
				g.items = append(g.items, cols...)
			default:
				if c, ok := ruleColumn(cols[0], r); ok {
					rest = append(rest, c)
				}
			}
		}
	}

	var out []CartColumn
	if len(missing) > 0 {
		out = append(out, CartColumn{Title: TitleMissing, Items: strings.Join(missing, ",")})
	}
	if len(multi) > 0 {
		out = append(out, CartColumn{Title: TitleMulti, Items: strings.Join(multi, ",")})
	}

	sorted := make([]*rangeGroup, 0, len(groups))
	for _, g := range groups {
		sorted = append(sorted, g)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].lo != sorted[j].lo {
			return sorted[i].lo < sorted[j].lo
		}
		return sorted[i].hi < sorted[j].hi
	})
	for _, g := range sorted {
		out = append(out, CartColumn{
			Title:  TitleRange,
			Items:  strings.Join(g.items, ", "),
			Values: num(g.lo) + ", " + num(g.hi),
		})
	}
	return append(out, rest...)
}

// ruleColumn describes a rule that gets a cart column of its own.
func ruleColumn(col string, r rules.Rule) (CartColumn, bool) {
	title, ok := validate.CategoryFor(r.Kind)
	if !ok {
		return CartColumn{}, false
	}
	vals := r.Values
	if r.Value != nil {
		vals = append([]rules.Value{*r.Value}, vals...)
	}
	joined := strings.Join(rules.Strings(vals), ", ")

	c := CartColumn{Title: title, Items: col}
	switch r.Kind {
	case rules.KindSkipPattern:
		c.Values = joined + " -> " + r.EndCol
	case rules.KindEarlyEnd:
		c.Values = joined
	case rules.KindSameValue:
		c.Items = col + ", " + r.OtherColumn
	case rules.KindCompareColumns:
		c.Items = col + ", " + r.OtherColumn
		c.Values = r.Compare
	case rules.KindCompareValue:
		c.Values = r.Compare + ", " + joined
	case rules.KindRequireMissing, rules.KindRequireValue:
		c.Items = col + ", " + r.OtherColumn
		c.Values = joined
	case rules.KindConditionalMapping:
		c.Items = col + ", " + r.OtherColumn
		c.Values = joined + " | " + strings.Join(rules.Strings(r.OtherValues), ", ")
	case rules.KindComparison:
		if target, ok := (validate.Expression{Right: r.Right}).Target(); ok {
			c.Items = target
		}
		c.Values = strings.Join(r.Left, " ") + " " + r.Compare + " " + strings.Join(r.Right, " ")
	case rules.KindExclusiveMultiValue:
		c.Items = strings.Join(r.Columns, ", ")
		c.Values = joined
	}
	return c, true
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// ExportCart writes the cart to the first three rows of a new workbook,
// one column per CartColumn starting at startCol (1 = A).
func ExportCart(columns []CartColumn, path string, startCol int) error {
	if startCol < 1 {
		startCol = 1
	}
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(cartSheetName)
	if err != nil {
		return eris.Wrap(err, "codebook: add cart sheet")
	}
	for i, c := range columns {
		col := startCol - 1 + i
		sheet.Cell(0, col).SetString(c.Title)
		sheet.Cell(1, col).SetString(c.Items)
		sheet.Cell(2, col).SetString(c.Values)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "codebook: create dir %s", dir)
		}
	}
	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "codebook: save cart %s", path)
	}
	zap.L().Info("codebook: cart written", zap.String("path", path), zap.Int("columns", len(columns)))
	return nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "codebook: create dir %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "codebook: write %s", path)
	}
	return nil
}

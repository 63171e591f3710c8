// Package codebook turns a questionnaire codebook sheet into rule sets and
// validation carts.
package codebook

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/skiplogic/internal/dataset"
	"github.com/sells-group/skiplogic/internal/rules"
)

// Codebook sheet headers.
const (
	ColumnItem     = "문항"
	ColumnQuestion = "질문"
	ColumnAnswers  = "응답"
)

// Option is one numbered answer choice.
type Option struct {
	Code  int    `json:"code"`
	Label string `json:"label"`
}

// Entry is one codebook row.
type Entry struct {
	Item     string   `json:"item"`
	Question string   `json:"question"`
	Options  []Option `json:"options"`
}

// Range returns the smallest and largest option code.
func (e Entry) Range() (lo, hi int, ok bool) {
	if len(e.Options) == 0 {
		return 0, 0, false
	}
	lo, hi = e.Options[0].Code, e.Options[0].Code
	for _, o := range e.Options[1:] {
		lo = min(lo, o.Code)
		hi = max(hi, o.Code)
	}
	return lo, hi, true
}

// ParseOptions reads "code: label" lines. Lines without a colon or with a
// non-numeric code are ignored.
func ParseOptions(text string) []Option {
	var out []Option
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		code, label, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		code = strings.TrimSpace(code)
		if !isDigits(code) {
			continue
		}
		n, err := strconv.Atoi(code)
		if err != nil {
			continue
		}
		out = append(out, Option{Code: n, Label: strings.TrimSpace(label)})
	}
	return out
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ReadSheet loads codebook entries from an XLSX sheet. The header row must
// contain 문항, 질문 and 응답; rows without an item id are dropped.
func ReadSheet(path, sheet string) ([]Entry, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "codebook: open file")
	}
	sh, err := dataset.Sheet(f, sheet, 0)
	if err != nil {
		return nil, eris.Wrap(err, "codebook: select sheet")
	}
	if len(sh.Rows) == 0 {
		return nil, eris.Errorf("codebook: sheet %q is empty", sh.Name)
	}

	header := dataset.RowStrings(sh.Rows[0])
	idx := make(map[string]int)
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, col := range []string{ColumnItem, ColumnQuestion, ColumnAnswers} {
		if _, ok := idx[col]; !ok {
			return nil, eris.Errorf("codebook: sheet %q has no %q column", sh.Name, col)
		}
	}

	var entries []Entry
	for _, row := range sh.Rows[1:] {
		cells := dataset.RowStrings(row)
		get := func(col string) string {
			if i := idx[col]; i < len(cells) {
				return strings.TrimSpace(cells[i])
			}
			return ""
		}
		item := get(ColumnItem)
		if item == "" {
			continue
		}
		entries = append(entries, Entry{
			Item:     item,
			Question: get(ColumnQuestion),
			Options:  ParseOptions(get(ColumnAnswers)),
		})
	}

	zap.L().Info("codebook: sheet loaded",
		zap.String("path", path),
		zap.String("sheet", sh.Name),
		zap.Int("items", len(entries)),
	)
	return entries, nil
}

// SaveEntries writes the parsed codebook as JSON.
func SaveEntries(entries []Entry, path string) error {
	data, err := rules.MarshalIndent(entries)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// BuildRuleSet derives codebook rules: every item gets a missing-value and a
// multiple-response check, and items with numbered options also get a
// domain and a range rule over the option codes.
func BuildRuleSet(entries []Entry) rules.RuleSet {
	rs := rules.RuleSet{
		Version:  rules.CurrentVersion,
		Metadata: map[string]any{"source": string(rules.SourceCodebook)},
	}
	for _, e := range entries {
		spec := rules.ItemSpec{
			Item:      e.Item,
			TypeHints: rules.TypeHints{DType: rules.DTypeUnknown},
			Rules: []rules.Rule{
				codebookRule(e.Item, "missing", rules.KindMissValue),
				codebookRule(e.Item, "multi", rules.KindMultipleResponse),
			},
		}
		if lo, hi, ok := e.Range(); ok {
			spec.TypeHints.DType = rules.DTypeCategorical
			spec.Domain.CodeLabelMap = make(map[string]string, len(e.Options))
			for _, o := range e.Options {
				spec.Domain.AllowedCodes = append(spec.Domain.AllowedCodes, rules.Num(float64(o.Code)))
				spec.Domain.CodeLabelMap[strconv.Itoa(o.Code)] = o.Label
			}
			r := codebookRule(e.Item, "range", rules.KindBetweenAB)
			fl, fh := float64(lo), float64(hi)
			r.Min, r.Max = &fl, &fh
			spec.Rules = append(spec.Rules, r)
		}
		rs.Items = append(rs.Items, spec)
	}
	return rs
}

func codebookRule(item, suffix string, kind rules.Kind) rules.Rule {
	return rules.Rule{
		RuleID:     item + ":" + suffix,
		Kind:       kind,
		Source:     rules.SourceCodebook,
		Confidence: 1,
	}
}

// Package rules defines the normalized rule set consumed by the validator and
// the skip-logic schema produced by structured extraction.
package rules

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// CurrentVersion is written into rule sets built by this module.
const CurrentVersion = "1.0"

// Kind names a validation rule.
type Kind string

// Rule kinds.
const (
	KindMissValue           Kind = "miss_value"
	KindBetweenAB           Kind = "between_a_b"
	KindMultipleResponse    Kind = "multiple_response_check"
	KindEarlyEnd            Kind = "early_end"
	KindSkipPattern         Kind = "skip_pattern"
	KindSameValue           Kind = "same_value"
	KindCompareColumns      Kind = "comparison_columns"
	KindCompareValue        Kind = "comparison_value"
	KindRequireMissing      Kind = "require_missing"
	KindRequireValue        Kind = "require_value"
	KindConditionalMapping  Kind = "conditional_mapping"
	KindComparison          Kind = "comparison"
	KindExclusiveMultiValue Kind = "exclusive_multi_value"
)

var kinds = map[Kind]struct{}{
	KindMissValue: {}, KindBetweenAB: {}, KindMultipleResponse: {}, KindEarlyEnd: {},
	KindSkipPattern: {}, KindSameValue: {}, KindCompareColumns: {}, KindCompareValue: {},
	KindRequireMissing: {}, KindRequireValue: {}, KindConditionalMapping: {},
	KindComparison: {}, KindExclusiveMultiValue: {},
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	_, ok := kinds[k]
	return ok
}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", eris.Errorf("rules: unknown rule kind %q", s)
	}
	return k, nil
}

// Source records where a rule came from.
type Source string

// Rule sources.
const (
	SourceCodebook Source = "codebook"
	SourceLLM      Source = "llm"
	SourceManual   Source = "manual"
)

// DType is a coarse type hint for an item.
type DType string

// Type hints.
const (
	DTypeCategorical DType = "categorical"
	DTypeNumeric     DType = "numeric"
	DTypeText        DType = "text"
	DTypeUnknown     DType = "unknown"
)

// Condition is a minimal predicate used by conditional rules as an
// alternative to Column/Values. Op is one of "==", "in".
type Condition struct {
	Left  string  `json:"left"`
	Op    string  `json:"op"`
	Right []Value `json:"right"`
}

// Rule is one declarative validation unit. Which payload fields are read
// depends on Kind; unused fields are omitted on output.
type Rule struct {
	RuleID     string  `json:"rule_id,omitempty"`
	Kind       Kind    `json:"rule_type"`
	Source     Source  `json:"source,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`

	AllowedValues []Value    `json:"allowed_values,omitempty"`
	Min           *float64   `json:"min,omitempty"`
	Max           *float64   `json:"max,omitempty"`
	InclusiveMin  *bool      `json:"inclusive_min,omitempty"`
	InclusiveMax  *bool      `json:"inclusive_max,omitempty"`
	Condition     *Condition `json:"condition,omitempty"`
	Description   string     `json:"description,omitempty"`

	Columns     []string `json:"columns,omitempty"`
	Column      string   `json:"column,omitempty"`
	OtherColumn string   `json:"other_column,omitempty"`
	Value       *Value   `json:"value,omitempty"`
	Values      []Value  `json:"values,omitempty"`
	OtherValues []Value  `json:"other_values,omitempty"`
	EndCol      string   `json:"end_col,omitempty"`
	Compare     string   `json:"compare,omitempty"`
	Left        []string `json:"left,omitempty"`
	Right       []string `json:"right,omitempty"`
}

// TypeHints describes an item's expected data shape.
type TypeHints struct {
	DType DType `json:"dtype,omitempty"`
	Multi bool  `json:"multi,omitempty"`
}

// Domain is the set of codes an item may take.
type Domain struct {
	AllowedCodes []Value          `json:"allowed_codes,omitempty"`
	CodeLabelMap map[string]string `json:"code_label_map,omitempty"`
}

// ItemSpec groups the rules for one survey item.
type ItemSpec struct {
	Item      string    `json:"item"`
	TypeHints TypeHints `json:"type_hints"`
	Domain    Domain    `json:"domain"`
	Rules     []Rule    `json:"rules"`
}

// RuleSet is the versioned container the validator consumes.
type RuleSet struct {
	Version  string         `json:"version"`
	Items    []ItemSpec     `json:"items"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// RuleCount returns the total number of rules across items.
func (rs RuleSet) RuleCount() int {
	n := 0
	for _, it := range rs.Items {
		n += len(it.Rules)
	}
	return n
}

// Validate checks that every rule has a known kind and every item an id.
func (rs RuleSet) Validate() error {
	for i, it := range rs.Items {
		if it.Item == "" {
			return eris.Errorf("rules: item %d has no id", i)
		}
		for j, r := range it.Rules {
			if !r.Kind.Valid() {
				return eris.Errorf("rules: item %s rule %d: unknown rule kind %q", it.Item, j, r.Kind)
			}
		}
	}
	return nil
}

// Load reads a rule set JSON file.
func Load(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "rules: read %s", path)
	}
	var rs RuleSet
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, eris.Wrapf(err, "rules: parse %s", path)
	}
	return &rs, nil
}

// Save writes the rule set as pretty-printed UTF-8 JSON.
func (rs RuleSet) Save(path string) error {
	data, err := MarshalIndent(rs)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "rules: create dir %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "rules: write %s", path)
	}
	return nil
}

// MarshalIndent encodes v with two-space indentation and without escaping
// non-ASCII or HTML characters.
func MarshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, eris.Wrap(err, "rules: encode json")
	}
	return buf.Bytes(), nil
}

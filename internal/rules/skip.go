package rules

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/skiplogic/internal/textnorm"
)

// SkipSchemaType is the fixed discriminator of an extraction result.
const SkipSchemaType = "스킵"

// SkipRuleType is the only rule type an extraction result may carry.
const SkipRuleType = "skip"

// SkipRule says: when StartCol holds one of Value, jump to EndCol.
type SkipRule struct {
	Type     string  `json:"type"`
	StartCol string  `json:"start_col"`
	Value    []Value `json:"value"`
	EndCol   string  `json:"end_col"`
	Note     string  `json:"note,omitempty"`
}

// RuleGroup binds a skip rule to the items it applies to. Items is
// informational: the rule is keyed by its StartCol, so listing further items
// does not duplicate it.
type RuleGroup struct {
	Items []string `json:"items"`
	Rule  SkipRule `json:"rule"`
}

// SkipSchema is the JSON object the structured extractor must return.
type SkipSchema struct {
	Type   string      `json:"type"`
	Groups []RuleGroup `json:"groups"`
}

// ParseSkipSchema decodes and validates an extraction result. Unknown fields,
// trailing data and missing required fields are errors.
func ParseSkipSchema(data []byte) (*SkipSchema, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var s SkipSchema
	if err := dec.Decode(&s); err != nil {
		return nil, eris.Wrap(err, "rules: decode skip schema")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, eris.New("rules: trailing data after skip schema")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the schema invariants. An empty rule type defaults to skip.
func (s *SkipSchema) Validate() error {
	if s.Type != SkipSchemaType {
		return eris.Errorf("rules: skip schema type must be %q, got %q", SkipSchemaType, s.Type)
	}
	for i := range s.Groups {
		r := &s.Groups[i].Rule
		if r.Type == "" {
			r.Type = SkipRuleType
		}
		if r.Type != SkipRuleType {
			return eris.Errorf("rules: group %d: rule type must be %q, got %q", i, SkipRuleType, r.Type)
		}
		if strings.TrimSpace(r.StartCol) == "" {
			return eris.Errorf("rules: group %d: start_col is required", i)
		}
		if strings.TrimSpace(r.EndCol) == "" {
			return eris.Errorf("rules: group %d: end_col is required", i)
		}
		if len(r.Value) == 0 {
			return eris.Errorf("rules: group %d: value is required", i)
		}
	}
	return nil
}

// FromSkipSchema converts extracted skip groups into skip_pattern rules, one
// per selection code, attached to the start column's item. Group items are
// not copied: a skip is checked once, from its start column.
func FromSkipSchema(s *SkipSchema, confidence float64) RuleSet {
	rs := RuleSet{Version: CurrentVersion}
	if s == nil {
		return rs
	}
	index := make(map[string]int)
	seen := make(map[string]bool)

	for _, g := range s.Groups {
		start := strings.TrimSpace(g.Rule.StartCol)
		end := strings.TrimSpace(g.Rule.EndCol)

		pos, ok := index[start]
		if !ok {
			pos = len(rs.Items)
			index[start] = pos
			rs.Items = append(rs.Items, ItemSpec{Item: start, TypeHints: TypeHints{DType: DTypeCategorical}})
		}

		for _, raw := range g.Rule.Value {
			code := raw
			if !raw.IsNumber {
				code = ParseValue(textnorm.OptionCode(raw.Text))
			}
			id := "skip:" + start + ":" + code.String() + ":" + end
			if seen[id] {
				continue
			}
			seen[id] = true

			v := code
			rs.Items[pos].Rules = append(rs.Items[pos].Rules, Rule{
				RuleID:      id,
				Kind:        KindSkipPattern,
				Source:      SourceLLM,
				Confidence:  confidence,
				Column:      start,
				Value:       &v,
				EndCol:      end,
				Description: g.Rule.Note,
			})
		}
	}
	return rs
}

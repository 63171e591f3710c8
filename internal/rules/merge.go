package rules

// Merge joins rule sets by item id. Rules carrying a rule_id replace an
// earlier rule with the same id in place; rules without an id are appended.
// Later sets win for version, type hints and non-empty domain fields. Item
// order follows first appearance.
func Merge(base RuleSet, overlays ...RuleSet) RuleSet {
	out := RuleSet{Version: base.Version}
	index := make(map[string]int)
	ruleIndex := make(map[string]map[string]int)

	apply := func(rs RuleSet) {
		if rs.Version != "" {
			out.Version = rs.Version
		}
		for k, v := range rs.Metadata {
			if out.Metadata == nil {
				out.Metadata = make(map[string]any)
			}
			out.Metadata[k] = v
		}
		for _, it := range rs.Items {
			pos, ok := index[it.Item]
			if !ok {
				pos = len(out.Items)
				index[it.Item] = pos
				ruleIndex[it.Item] = make(map[string]int)
				out.Items = append(out.Items, ItemSpec{Item: it.Item})
			}
			dst := &out.Items[pos]
			mergeItem(dst, it, ruleIndex[it.Item])
		}
	}

	apply(base)
	for _, o := range overlays {
		apply(o)
	}
	if out.Version == "" {
		out.Version = CurrentVersion
	}
	return out
}

func mergeItem(dst *ItemSpec, src ItemSpec, ids map[string]int) {
	if src.TypeHints.DType != "" {
		dst.TypeHints.DType = src.TypeHints.DType
	}
	if src.TypeHints.Multi {
		dst.TypeHints.Multi = true
	}
	if len(src.Domain.AllowedCodes) > 0 {
		dst.Domain.AllowedCodes = append([]Value(nil), src.Domain.AllowedCodes...)
	}
	for code, label := range src.Domain.CodeLabelMap {
		if dst.Domain.CodeLabelMap == nil {
			dst.Domain.CodeLabelMap = make(map[string]string)
		}
		dst.Domain.CodeLabelMap[code] = label
	}
	for _, r := range src.Rules {
		if r.RuleID != "" {
			if i, ok := ids[r.RuleID]; ok {
				dst.Rules[i] = r
				continue
			}
			ids[r.RuleID] = len(dst.Rules)
		}
		dst.Rules = append(dst.Rules, r)
	}
}

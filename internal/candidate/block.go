package candidate

import (
	"fmt"
	"sort"
	"strings"
)

// Block rendering constants. These strings are part of the text contract
// with the structured extractor.
const (
	DefaultDocTitle         = "SKIP LOGIC CANDIDATE BLOCKS"
	DefaultMaxLinesPerBlock = 80

	headerQID      = "[문항ID] "
	headerTriggers = "[이동지시 라인]"
	headerContext  = "[원문 컨텍스트]"
	truncated      = "...(생략)"
	blockDivider   = "\n---\n"
)

// QuestionBlock is the unit of work handed to structured extraction.
type QuestionBlock struct {
	QID        string          `json:"qid"`
	Candidates []SkipCandidate `json:"candidates"`
	MergedText string          `json:"merged_text"`
}

// BlockOptions controls block rendering. MaxLinesPerBlock <= 0 disables
// truncation.
type BlockOptions struct {
	IncludeLineNumbers bool
	MaxLinesPerBlock   int
}

// DefaultBlockOptions returns line-numbered blocks capped at
// DefaultMaxLinesPerBlock lines.
func DefaultBlockOptions() BlockOptions {
	return BlockOptions{IncludeLineNumbers: true, MaxLinesPerBlock: DefaultMaxLinesPerBlock}
}

// GroupByQID partitions candidates by enclosing question id. Candidates
// without an id are dropped: nothing downstream can act on them.
func GroupByQID(cands []SkipCandidate) map[string][]SkipCandidate {
	grouped := make(map[string][]SkipCandidate)
	for _, c := range cands {
		if !c.Grounded() {
			continue
		}
		grouped[c.StartCol] = append(grouped[c.StartCol], c)
	}
	return grouped
}

// BuildQuestionBlocks renders one block per question id, ordered by the
// earliest line on which the id's candidates appear.
func BuildQuestionBlocks(grouped map[string][]SkipCandidate, opts BlockOptions) []QuestionBlock {
	type firstSeen struct {
		qid  string
		line int
	}
	order := make([]firstSeen, 0, len(grouped))
	for id, items := range grouped {
		if len(items) == 0 {
			continue
		}
		first := items[0].LineNo
		for _, c := range items[1:] {
			if c.LineNo < first {
				first = c.LineNo
			}
		}
		order = append(order, firstSeen{qid: id, line: first})
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].line != order[j].line {
			return order[i].line < order[j].line
		}
		return order[i].qid < order[j].qid
	})

	blocks := make([]QuestionBlock, 0, len(order))
	for _, o := range order {
		items := make([]SkipCandidate, len(grouped[o.qid]))
		copy(items, grouped[o.qid])
		sort.SliceStable(items, func(i, j int) bool { return items[i].LineNo < items[j].LineNo })

		blocks = append(blocks, QuestionBlock{
			QID:        o.qid,
			Candidates: items,
			MergedText: renderBlock(o.qid, items, opts),
		})
	}
	return blocks
}

func renderBlock(id string, items []SkipCandidate, opts BlockOptions) string {
	body := []string{headerQID + id, headerTriggers}
	for _, it := range items {
		if opts.IncludeLineNumbers {
			body = append(body, fmt.Sprintf("- L%d: %s", it.LineNo, it.TriggerLine))
		} else {
			body = append(body, "- "+it.TriggerLine)
		}
	}
	body = append(body, "", headerContext)

	for _, ctx := range dedupeContexts(items) {
		for _, ln := range strings.Split(ctx, "\n") {
			if strings.TrimSpace(ln) != "" {
				body = append(body, strings.TrimRight(ln, " \t"))
			}
		}
		body = append(body, "")
	}

	if opts.MaxLinesPerBlock > 0 && len(body) > opts.MaxLinesPerBlock {
		body = append(body[:opts.MaxLinesPerBlock:opts.MaxLinesPerBlock], truncated)
	}
	return strings.TrimSpace(strings.Join(body, "\n"))
}

// dedupeContexts keeps the first occurrence of each non-blank context.
func dedupeContexts(items []SkipCandidate) []string {
	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, it := range items {
		if strings.TrimSpace(it.Context) == "" {
			continue
		}
		if _, ok := seen[it.Context]; ok {
			continue
		}
		seen[it.Context] = struct{}{}
		out = append(out, it.Context)
	}
	return out
}

// BuildLLMInput concatenates rendered blocks under one document header.
func BuildLLMInput(blocks []QuestionBlock, docTitle string) string {
	if docTitle == "" {
		docTitle = DefaultDocTitle
	}
	parts := []string{fmt.Sprintf("=== %s ===", docTitle)}
	for _, b := range blocks {
		parts = append(parts, b.MergedText, blockDivider)
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

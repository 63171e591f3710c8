// Package candidate finds skip-logic instructions in questionnaire text and
// groups them into bounded per-question blocks for structured extraction.
package candidate

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/skiplogic/internal/qid"
)

// Default scan parameters.
const (
	DefaultContextLines = 2
	DefaultLookbackQID  = 40
)

// SkipCandidate is one line that looks like a conditional move instruction.
type SkipCandidate struct {
	LineNo      int      `json:"line_no"`
	StartCol    string   `json:"start_col,omitempty"` // empty when no enclosing id was found
	TriggerLine string   `json:"trigger_line"`
	Context     string   `json:"context"`
	Targets     []string `json:"targets"`
}

// Grounded reports whether the candidate has an enclosing question id.
func (c SkipCandidate) Grounded() bool {
	return c.StartCol != ""
}

// ScanOptions tunes the scanner windows. Zero values take the defaults.
type ScanOptions struct {
	ContextLines int
	LookbackQID  int
}

func (o ScanOptions) withDefaults() ScanOptions {
	if o.ContextLines == 0 {
		o.ContextLines = DefaultContextLines
	}
	if o.ContextLines < 0 {
		o.ContextLines = 0
	}
	if o.LookbackQID <= 0 {
		o.LookbackQID = DefaultLookbackQID
	}
	return o
}

// Scanner detects candidate lines using a compiled marker set.
type Scanner struct {
	trigger      *regexp.Regexp
	parenExpand  *regexp.Regexp
	displayNoise *regexp.Regexp
	explicitMove *regexp.Regexp
	moveOrSkip   *regexp.Regexp
}

// NewScanner compiles the marker set.
func NewScanner(m Markers) (*Scanner, error) {
	var s Scanner
	for _, spec := range []struct {
		name    string
		phrases []string
		dst     **regexp.Regexp
	}{
		{"trigger", m.Trigger, &s.trigger},
		{"paren_expand", m.ParenExpand, &s.parenExpand},
		{"display_noise", m.DisplayNoise, &s.displayNoise},
		{"explicit_move", m.ExplicitMove, &s.explicitMove},
		{"move_or_skip", m.MoveOrSkip, &s.moveOrSkip},
	} {
		re, err := compilePhrases(spec.name, spec.phrases)
		if err != nil {
			return nil, err
		}
		*spec.dst = re
	}
	return &s, nil
}

var defaultScanner *Scanner

func init() {
	s, err := NewScanner(DefaultMarkers())
	if err != nil {
		panic(err)
	}
	defaultScanner = s
}

// ExtractSkipCandidates scans text with the built-in markers.
func ExtractSkipCandidates(text string, opts ScanOptions) []SkipCandidate {
	return defaultScanner.Scan(text, opts)
}

// Scan returns one candidate per qualifying line, in document order.
func (s *Scanner) Scan(text string, opts ScanOptions) []SkipCandidate {
	opts = opts.withDefaults()
	lines := splitLines(text)

	var out []SkipCandidate
	var rejected int
	for i, line := range lines {
		raw := strings.TrimSpace(line)
		if raw == "" || !s.trigger.MatchString(raw) {
			continue
		}

		if !s.accept(raw) {
			rejected++
			continue
		}

		targets := qid.MoveTargets(raw)
		if len(targets) == 0 && !s.moveOrSkip.MatchString(raw) {
			rejected++
			continue
		}

		out = append(out, SkipCandidate{
			LineNo:      i + 1,
			StartCol:    nearestQID(lines, i, opts.LookbackQID),
			TriggerLine: raw,
			Context:     contextWindow(lines, i, opts.ContextLines),
			Targets:     targets,
		})
	}

	zap.L().Debug("candidate: scan complete",
		zap.Int("lines", len(lines)),
		zap.Int("candidates", len(out)),
		zap.Int("rejected", rejected),
	)
	return out
}

// accept applies the negative filters to a line that carries a trigger.
func (s *Scanner) accept(raw string) bool {
	if s.parenExpand.MatchString(raw) {
		return false
	}
	if s.displayNoise.MatchString(raw) && !s.explicitMove.MatchString(raw) {
		return false
	}
	return true
}

// nearestQID walks upward from idx (inclusive) over at most lookback lines.
func nearestQID(lines []string, idx, lookback int) string {
	stop := idx - lookback
	if stop < -1 {
		stop = -1
	}
	for j := idx; j > stop; j-- {
		if id, ok := qid.AtLineStart(lines[j]); ok {
			return id
		}
	}
	return ""
}

func contextWindow(lines []string, idx, radius int) string {
	start := idx - radius
	if start < 0 {
		start = 0
	}
	end := idx + radius + 1
	if end > len(lines) {
		end = len(lines)
	}
	window := make([]string, 0, end-start)
	for _, ln := range lines[start:end] {
		window = append(window, strings.TrimSpace(ln))
	}
	return strings.TrimSpace(strings.Join(window, "\n"))
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

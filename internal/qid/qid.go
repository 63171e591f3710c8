// Package qid holds the token grammar for questionnaire item identifiers.
//
// Grammar version 1 accepts three surface forms, each optionally followed by
// one or more "-digits" sub-index groups:
//
//	prefixed   문 <spaces>? digits    e.g. "문4", "문 4-2"
//	lettered   [A-Za-z] digits        e.g. "B2", "q10-1"
//	numeric    digits                 e.g. "3", "3-1-1"
//
// A move target is an identifier optionally followed by "~ identifier", which
// names a range. Identifiers compare as opaque strings with all whitespace
// removed; no numeric ordering is implied.
package qid

import (
	"regexp"
	"strings"
)

// GrammarVersion identifies the identifier grammar below. Bump it whenever a
// character class changes so stored rule sets can be traced to the grammar
// that produced them.
const GrammarVersion = "1"

const (
	prefixed = `문\s*\d+(?:-\d+)*`
	lettered = `[A-Za-z]\d+(?:-\d+)*`
	numeric  = `\d+(?:-\d+)*`
)

var (
	// Token matches one identifier in any surface form.
	Token = regexp.MustCompile(`(?:` + prefixed + `|` + lettered + `|` + numeric + `)`)

	// MoveTarget matches an identifier with an optional "~ identifier" range end.
	MoveTarget = regexp.MustCompile(
		`(` + prefixed + `|` + lettered + `|` + numeric + `)` +
			`(?:\s*~\s*(` + prefixed + `|` + lettered + `|` + numeric + `))?`,
	)

	// LineStart matches an identifier anchored at the start of a line and
	// closed by a period or a closing parenthesis.
	LineStart = regexp.MustCompile(
		`^\s*(` + prefixed + `|` + numeric + `|` + lettered + `)\s*[.)]`,
	)

	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Normalize strips all whitespace from a raw identifier.
func Normalize(raw string) string {
	return whitespaceRe.ReplaceAllString(raw, "")
}

// MoveTargets returns every normalized identifier on the line in order of
// appearance. A range "A ~ B" contributes both ends.
func MoveTargets(line string) []string {
	var out []string
	for _, m := range MoveTarget.FindAllStringSubmatch(line, -1) {
		if m[1] != "" {
			out = append(out, Normalize(m[1]))
		}
		if m[2] != "" {
			out = append(out, Normalize(m[2]))
		}
	}
	return out
}

// AtLineStart reports the normalized identifier that opens the line, if any.
func AtLineStart(line string) (string, bool) {
	m := LineStart.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return Normalize(m[1]), true
}

// Equal reports whether two raw identifiers name the same item.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// IsToken reports whether s as a whole is a single identifier.
func IsToken(s string) bool {
	s = strings.TrimSpace(s)
	loc := Token.FindStringIndex(s)
	return loc != nil && loc[0] == 0 && loc[1] == len(s)
}

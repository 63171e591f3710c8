// Package textnorm canonicalizes raw text extracted from scanned questionnaires
// and maps circled numeral glyphs to option codes.
package textnorm

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var (
	horizontalSpaceRe = regexp.MustCompile(`[ \t]+`)
	leadingDigitsRe   = regexp.MustCompile(`^\d+`)
)

// circledCodes maps circled numeral glyphs (0-50) to decimal strings.
var circledCodes = map[string]string{
	"⓪": "0",
	"①": "1", "②": "2", "③": "3", "④": "4", "⑤": "5",
	"⑥": "6", "⑦": "7", "⑧": "8", "⑨": "9", "⑩": "10",
	"⑪": "11", "⑫": "12", "⑬": "13", "⑭": "14", "⑮": "15",
	"⑯": "16", "⑰": "17", "⑱": "18", "⑲": "19", "⑳": "20",
	"㉑": "21", "㉒": "22", "㉓": "23", "㉔": "24", "㉕": "25",
	"㉖": "26", "㉗": "27", "㉘": "28", "㉙": "29", "㉚": "30",
	"㉛": "31", "㉜": "32", "㉝": "33", "㉞": "34", "㉟": "35",
	"㊱": "36", "㊲": "37", "㊳": "38", "㊴": "39", "㊵": "40",
	"㊶": "41", "㊷": "42", "㊸": "43", "㊹": "44", "㊺": "45",
	"㊻": "46", "㊼": "47", "㊽": "48", "㊾": "49", "㊿": "50",
}

// Normalize composes Hangul jamo, replaces non-breaking spaces, unifies line
// endings to "\n", collapses horizontal whitespace and trims every line and
// the whole text.
func Normalize(s string) string {
	return strings.TrimSpace(NormalizeLines(s))
}

// NormalizeLines is Normalize without the outer trim: line n of the result is
// line n of the input, so line numbers stay valid against the source text.
func NormalizeLines(s string) string {
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = horizontalSpaceRe.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimSpace(ln)
	}
	return strings.Join(lines, "\n")
}

// CircledToCode returns the decimal code for a single circled numeral glyph.
func CircledToCode(s string) (string, bool) {
	code, ok := circledCodes[strings.TrimSpace(s)]
	return code, ok
}

// ReplaceCircled replaces every circled numeral glyph in s with its code.
func ReplaceCircled(s string) string {
	var b strings.Builder
	for _, r := range s {
		if code, ok := circledCodes[string(r)]; ok {
			b.WriteString(code)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// OptionCode extracts the option code from a label such as "① 있음" or
// "2: 여자". Labels without a leading glyph or number are returned trimmed.
func OptionCode(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return ""
	}
	first, _ := utf8.DecodeRuneInString(label)
	if code, ok := circledCodes[string(first)]; ok {
		return code
	}
	if m := leadingDigitsRe.FindString(label); m != "" {
		return m
	}
	return label
}

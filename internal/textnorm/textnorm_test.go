package textnorm

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_Whitespace(t *testing.T) {
	in := "  B2.  귀하는   \t 있습니까?  \r\n① 예 ☞ B3로 이동\r② 아니오\n\n"
	got := Normalize(in)
	assert.Equal(t, "B2. 귀하는 있습니까?\n① 예 ☞ B3로 이동\n② 아니오", got)
}

func TestNormalize_ComposesHangulJamo(t *testing.T) {
	// "이동" written as conjoining jamo, as some PDF extractors emit it.
	decomposed := "\u110b\u1175\u1103\u1169\u11bc"
	assert.Equal(t, "이동", Normalize(decomposed))
}

func TestNormalize_KeepsBlankLinesBetweenContent(t *testing.T) {
	assert.Equal(t, "a\n\nb", Normalize("a\n   \nb"))
}

func TestNormalizeLines_KeepsLineCount(t *testing.T) {
	in := "\n\n===== PAGE 1 =====\n  B2.  일하십니까?\r\n① 예 ☞ B3로 이동  \n"
	got := NormalizeLines(in)
	assert.Equal(t, "\n\n===== PAGE 1 =====\nB2. 일하십니까?\n① 예 ☞ B3로 이동\n", got)
	assert.Equal(t, strings.Count(strings.ReplaceAll(in, "\r\n", "\n"), "\n"), strings.Count(got, "\n"))
	assert.Equal(t, strings.TrimSpace(got), Normalize(in))
}

func TestCircledToCode_FullTable(t *testing.T) {
	glyphs := []rune("⓪①②③④⑤⑥⑦⑧⑨⑩⑪⑫⑬⑭⑮⑯⑰⑱⑲⑳")
	for i, g := range glyphs {
		code, ok := CircledToCode(string(g))
		assert.True(t, ok, "glyph %q", g)
		assert.Equal(t, strconv.Itoa(i), code)
	}
	for i := 21; i <= 35; i++ {
		code, ok := CircledToCode(string(rune(0x3251 + i - 21)))
		assert.True(t, ok)
		assert.Equal(t, strconv.Itoa(i), code)
	}
	for i := 36; i <= 50; i++ {
		code, ok := CircledToCode(string(rune(0x32B1 + i - 36)))
		assert.True(t, ok)
		assert.Equal(t, strconv.Itoa(i), code)
	}
}

func TestCircledToCode_Unknown(t *testing.T) {
	_, ok := CircledToCode("A")
	assert.False(t, ok)

	code, ok := CircledToCode("  ③ ")
	assert.True(t, ok)
	assert.Equal(t, "3", code)
}

func TestReplaceCircled(t *testing.T) {
	assert.Equal(t, "1 있음 2 없음", ReplaceCircled("① 있음 ② 없음"))
}

func TestOptionCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"① 있음", "1"},
		{"⑫기타", "12"},
		{"2: 여자", "2"},
		{"  10 ", "10"},
		{"모름", "모름"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OptionCode(tt.in), tt.in)
	}
}

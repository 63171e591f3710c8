package qid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "문4-2", Normalize("문 4-2"))
	assert.Equal(t, "B2", Normalize(" B2 "))
}

func TestMoveTargets(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"lettered", "① 예 ☞ B3로 이동", []string{"B3"}},
		{"prefixed with space", "② 없음 ☞ 문 5로 이동", []string{"문5"}},
		{"range", "① 있음 ☞ 문4-3~문4-6로 이동", []string{"문4-3", "문4-6"}},
		{"spaced range", "⇒ A4-1 ~ A7 이동", []string{"A4-1", "A7"}},
		{"sub index", "☞ 3-2-1로 이동", []string{"3-2-1"}},
		{"none", "☞ 해당 사항으로 이동", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MoveTargets(tt.line))
		})
	}
}

func TestAtLineStart(t *testing.T) {
	tests := []struct {
		line string
		want string
		ok   bool
	}{
		{"B2. 귀하는 현재 일하고 있습니까?", "B2", true},
		{"  문 4-2) 다음 중", "문4-2", true},
		{"3-1. 최근 1년간", "3-1", true},
		{"A10 .", "A10", true},
		{"B2 귀하는", "", false},
		{"① 예 ☞ B3로 이동", "", false},
		{"응답자 특성", "", false},
	}
	for _, tt := range tests {
		got, ok := AtLineStart(tt.line)
		assert.Equal(t, tt.ok, ok, tt.line)
		assert.Equal(t, tt.want, got, tt.line)
	}
}

func TestEqualAndIsToken(t *testing.T) {
	assert.True(t, Equal("문 4", "문4"))
	assert.False(t, Equal("4", "문4"))

	assert.True(t, IsToken("B2-1"))
	assert.True(t, IsToken("문 3"))
	assert.True(t, IsToken("12"))
	assert.False(t, IsToken("12a"))
	assert.False(t, IsToken("END"))
}

package candidate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupByQID_DropsUngrounded(t *testing.T) {
	cands := []SkipCandidate{
		{LineNo: 3, StartCol: "A1", TriggerLine: "☞ A3로 이동"},
		{LineNo: 4, TriggerLine: "☞ B3로 이동"},
		{LineNo: 9, StartCol: "A1", TriggerLine: "☞ A5로 이동"},
	}
	grouped := GroupByQID(cands)
	require.Len(t, grouped, 1)
	assert.Len(t, grouped["A1"], 2)
}

func TestBuildQuestionBlocks_OrderByFirstLine(t *testing.T) {
	grouped := GroupByQID([]SkipCandidate{
		{LineNo: 50, StartCol: "B2", TriggerLine: "① 예 ☞ B4로 이동", Context: "B2. 질문"},
		{LineNo: 10, StartCol: "A10", TriggerLine: "② 아니오 ☞ A12로 이동", Context: "A10. 질문"},
	})

	blocks := BuildQuestionBlocks(grouped, DefaultBlockOptions())
	require.Len(t, blocks, 2)
	assert.Equal(t, "A10", blocks[0].QID)
	assert.Equal(t, "B2", blocks[1].QID)
}

func TestBuildQuestionBlocks_RoundTrip(t *testing.T) {
	cands := ExtractSkipCandidates(sampleQuestionnaire+"\n응답자 안내 없음\n\n\n\n\n\n\n\n"+
		strings.Repeat("설명\n", 41)+"① 예 ☞ Z9로 이동", ScanOptions{})

	var grounded int
	for _, c := range cands {
		if c.Grounded() {
			grounded++
		}
	}
	require.Less(t, grounded, len(cands), "fixture needs one ungrounded candidate")

	blocks := BuildQuestionBlocks(GroupByQID(cands), DefaultBlockOptions())
	seen := make(map[int]int)
	for _, b := range blocks {
		for _, c := range b.Candidates {
			assert.True(t, c.Grounded())
			assert.Equal(t, b.QID, c.StartCol)
			seen[c.LineNo]++
		}
	}
	assert.Len(t, seen, grounded)
	for line, n := range seen {
		assert.Equal(t, 1, n, "line %d", line)
	}
}

func TestBuildQuestionBlocks_Render(t *testing.T) {
	cands := ExtractSkipCandidates(sampleQuestionnaire, ScanOptions{})
	blocks := BuildQuestionBlocks(GroupByQID(cands), DefaultBlockOptions())
	require.Len(t, blocks, 2)

	b2 := blocks[0]
	assert.Equal(t, "B2", b2.QID)
	assert.Equal(t, []int{4, 5}, []int{b2.Candidates[0].LineNo, b2.Candidates[1].LineNo})

	want := strings.Join([]string{
		"[문항ID] B2",
		"[이동지시 라인]",
		"- L4: ① 예 ☞ B3로 이동",
		"- L5: ② 아니오 ☞ B5로 이동",
		"",
		"[원문 컨텍스트]",
		"① 남자 ② 여자",
		"B2. 현재 일하고 있습니까?",
		"① 예 ☞ B3로 이동",
		"② 아니오 ☞ B5로 이동",
		"B3. 직장 유형",
		"",
		"B2. 현재 일하고 있습니까?",
		"① 예 ☞ B3로 이동",
		"② 아니오 ☞ B5로 이동",
		"B3. 직장 유형",
		"☞ 해당 사항 모두 표시",
	}, "\n")
	assert.Equal(t, want, b2.MergedText)
}

func TestBuildQuestionBlocks_DedupesContext(t *testing.T) {
	grouped := map[string][]SkipCandidate{
		"A1": {
			{LineNo: 7, StartCol: "A1", TriggerLine: "② ☞ A5로 이동", Context: "same"},
			{LineNo: 6, StartCol: "A1", TriggerLine: "① ☞ A3로 이동", Context: "same"},
		},
	}
	blocks := BuildQuestionBlocks(grouped, BlockOptions{})
	require.Len(t, blocks, 1)
	assert.Equal(t,
		"[문항ID] A1\n[이동지시 라인]\n- ① ☞ A3로 이동\n- ② ☞ A5로 이동\n\n[원문 컨텍스트]\nsame",
		blocks[0].MergedText)
	assert.Equal(t, 1, strings.Count(blocks[0].MergedText, "same"))
}

func TestBuildQuestionBlocks_Truncates(t *testing.T) {
	grouped := map[string][]SkipCandidate{
		"A1": {{LineNo: 1, StartCol: "A1", TriggerLine: "☞ A3로 이동", Context: "a\nb\nc\nd"}},
	}
	blocks := BuildQuestionBlocks(grouped, BlockOptions{IncludeLineNumbers: true, MaxLinesPerBlock: 3})
	require.Len(t, blocks, 1)
	assert.Equal(t, "[문항ID] A1\n[이동지시 라인]\n- L1: ☞ A3로 이동\n...(생략)", blocks[0].MergedText)
}

func TestBuildLLMInput(t *testing.T) {
	blocks := []QuestionBlock{
		{QID: "A1", MergedText: "block one"},
		{QID: "B2", MergedText: "block two"},
	}
	got := BuildLLMInput(blocks, "요양시설 스킵 후보 블록")
	assert.Equal(t, "=== 요양시설 스킵 후보 블록 ===\nblock one\n\n---\n\nblock two\n\n---", got)

	assert.Equal(t, "=== SKIP LOGIC CANDIDATE BLOCKS ===", BuildLLMInput(nil, ""))
}

func TestDefaultBlockOptions(t *testing.T) {
	opts := DefaultBlockOptions()
	assert.True(t, opts.IncludeLineNumbers)
	assert.Equal(t, 80, opts.MaxLinesPerBlock)
}

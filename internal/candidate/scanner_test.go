package candidate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleQuestionnaire = `1. 귀하의 성별은?
① 남자 ② 여자
B2. 현재 일하고 있습니까?
① 예 ☞ B3로 이동
② 아니오 ☞ B5로 이동
B3. 직장 유형
☞ 해당 사항 모두 표시
(☞ ① 있음)
B4. 근무 시간
① 있음 ☞ 문4-3~문4-6로 이동`

func TestExtractSkipCandidates_Sample(t *testing.T) {
	cands := ExtractSkipCandidates(sampleQuestionnaire, ScanOptions{})
	require.Len(t, cands, 3)

	assert.Equal(t, 4, cands[0].LineNo)
	assert.Equal(t, "B2", cands[0].StartCol)
	assert.Equal(t, "① 예 ☞ B3로 이동", cands[0].TriggerLine)
	assert.Equal(t, []string{"B3"}, cands[0].Targets)
	assert.Equal(t,
		"① 남자 ② 여자\nB2. 현재 일하고 있습니까?\n① 예 ☞ B3로 이동\n② 아니오 ☞ B5로 이동\nB3. 직장 유형",
		cands[0].Context)

	assert.Equal(t, 5, cands[1].LineNo)
	assert.Equal(t, "B2", cands[1].StartCol)
	assert.Equal(t, []string{"B5"}, cands[1].Targets)

	assert.Equal(t, 10, cands[2].LineNo)
	assert.Equal(t, "B4", cands[2].StartCol)
	assert.Equal(t, []string{"문4-3", "문4-6"}, cands[2].Targets)
}

func TestScan_EveryCandidateCarriesEvidence(t *testing.T) {
	text := strings.Join([]string{
		sampleQuestionnaire,
		"C1. 흡연 여부",
		"① 예 ⇒ C2 ② 아니오 → C4",
		"☞ 건너뛰기",
		"☞ 요양시설 최초 설치년도",
		"-> 다음 페이지",
	}, "\n")

	cands := ExtractSkipCandidates(text, ScanOptions{})
	require.NotEmpty(t, cands)
	for _, c := range cands {
		assert.Regexp(t, `(?i)☞|⇒|->|→|로\s*이동|건너뛰기|skip`, c.TriggerLine)
		if len(c.Targets) == 0 {
			assert.Regexp(t, `로\s*이동|건너뛰기`, c.TriggerLine)
		}
	}
}

func TestScan_ParenExpansionRejected(t *testing.T) {
	assert.Empty(t, ExtractSkipCandidates("(☞ ① 있음)", ScanOptions{}))
	assert.Empty(t, ExtractSkipCandidates("A1. 자격\n( ☞① 있음 ② 없음 ) 3-1로 이동", ScanOptions{}))
}

func TestScan_DisplayAllNeedsExplicitMove(t *testing.T) {
	noMove := "B1. 병설 기관\n☞ 병설 기관 유형 모두 표시"
	assert.Empty(t, ExtractSkipCandidates(noMove, ScanOptions{}))

	withMove := "B1. 병설 기관\n☞ 병설 기관 유형 모두 표시 후 B3로 이동"
	cands := ExtractSkipCandidates(withMove, ScanOptions{})
	require.Len(t, cands, 1)
	assert.Equal(t, "B1", cands[0].StartCol)
	assert.Equal(t, []string{"B3"}, cands[0].Targets)
}

func TestScan_BareTriggerRejected(t *testing.T) {
	assert.Empty(t, ExtractSkipCandidates("A3. 설치\n☞ 요양시설 최초 설치년도", ScanOptions{}))
}

func TestScan_MovePhraseWithoutTarget(t *testing.T) {
	cands := ExtractSkipCandidates("A3. 질문\n② 없음 ☞ 다음 문항으로 건너뛰기", ScanOptions{})
	require.Len(t, cands, 1)
	assert.Empty(t, cands[0].Targets)
	assert.Equal(t, "A3", cands[0].StartCol)
}

func TestScan_MultipleMarkersOneCandidate(t *testing.T) {
	cands := ExtractSkipCandidates("C1. 흡연\n① 예 ☞ C2로 이동 ② 아니오 ⇒ C5로 이동", ScanOptions{})
	require.Len(t, cands, 1)
	assert.Equal(t, []string{"C2", "C5"}, cands[0].Targets)
}

func TestScan_UngroundedCandidateStillEmitted(t *testing.T) {
	cands := ExtractSkipCandidates("응답자 안내\n① 예 ☞ B3로 이동", ScanOptions{})
	require.Len(t, cands, 1)
	assert.False(t, cands[0].Grounded())
	assert.Equal(t, 2, cands[0].LineNo)
}

func TestScan_LookbackWindow(t *testing.T) {
	text := "D1. 질문\n설명1\n설명2\n설명3\n① 예 ☞ D4로 이동"

	cands := ExtractSkipCandidates(text, ScanOptions{LookbackQID: 3})
	require.Len(t, cands, 1)
	assert.Empty(t, cands[0].StartCol)

	cands = ExtractSkipCandidates(text, ScanOptions{LookbackQID: 5})
	require.Len(t, cands, 1)
	assert.Equal(t, "D1", cands[0].StartCol)
}

func TestScan_CurrentLineIsSearchedForQID(t *testing.T) {
	cands := ExtractSkipCandidates("Q3. Do you smoke? (No SKIP to Q5)", ScanOptions{})
	require.Len(t, cands, 1)
	assert.Equal(t, "Q3", cands[0].StartCol)
	assert.Equal(t, []string{"Q3", "Q5"}, cands[0].Targets)
}

func TestScan_ContextWindowClipped(t *testing.T) {
	cands := ExtractSkipCandidates("A1. 질문\n① 예 ☞ A3로 이동", ScanOptions{ContextLines: 5})
	require.Len(t, cands, 1)
	assert.Equal(t, "A1. 질문\n① 예 ☞ A3로 이동", cands[0].Context)

	cands = ExtractSkipCandidates("A1. 질문\n① 예 ☞ A3로 이동\n다음", ScanOptions{ContextLines: -1})
	require.Len(t, cands, 1)
	assert.Equal(t, "① 예 ☞ A3로 이동", cands[0].Context)
}

func TestScan_BlankLinesSkipped(t *testing.T) {
	cands := ExtractSkipCandidates("\r\n\r\nA1. 질문\r\n\r\n① 예 ☞ A3로 이동\r\n", ScanOptions{})
	require.Len(t, cands, 1)
	assert.Equal(t, 5, cands[0].LineNo)
	assert.Equal(t, "A1", cands[0].StartCol)
}

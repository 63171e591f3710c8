package codebook

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/skiplogic/internal/rules"
)

func createTestXLSX(t *testing.T, sheets map[string][][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	for name, rows := range sheets {
		sheet, err := f.AddSheet(name)
		require.NoError(t, err)
		for _, rowData := range rows {
			row := sheet.AddRow()
			for _, cellData := range rowData {
				cell := row.AddCell()
				cell.SetString(cellData)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "test.xlsx")
	err := f.Save(path)
	require.NoError(t, err)
	return path
}

func TestParseOptions(t *testing.T) {
	got := ParseOptions("1: 남자\n 2 : 여자 \n\n기타 설명\n①: 동그라미\nx: 문자\n3:기타: 직접 입력")
	assert.Equal(t, []Option{
		{Code: 1, Label: "남자"},
		{Code: 2, Label: "여자"},
		{Code: 3, Label: "기타: 직접 입력"},
	}, got)

	assert.Empty(t, ParseOptions(""))
	assert.Empty(t, ParseOptions("자유 응답"))
}

func TestEntry_Range(t *testing.T) {
	lo, hi, ok := Entry{Options: []Option{{Code: 3}, {Code: 1}, {Code: 5}}}.Range()
	require.True(t, ok)
	assert.Equal(t, 1, lo)
	assert.Equal(t, 5, hi)

	_, _, ok = Entry{}.Range()
	assert.False(t, ok)
}

var sampleSheet = [][]string{
	{"문항", "질문", "응답"},
	{"A1", "성별", "1: 남자\n2: 여자"},
	{"", "소제목", ""},
	{"A2", "만족도", "1: 매우 불만\n5: 매우 만족"},
	{"A3", "나이", ""},
	{"A4", "지역", "1: 서울\n2: 부산"},
}

func TestReadSheet(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{"codebook": sampleSheet})

	entries, err := ReadSheet(path, "codebook")
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, "A1", entries[0].Item)
	assert.Equal(t, "성별", entries[0].Question)
	assert.Len(t, entries[0].Options, 2)
	assert.Empty(t, entries[2].Options)

	_, err = ReadSheet(path, "missing")
	require.Error(t, err)

	bad := createTestXLSX(t, map[string][][]string{"codebook": {{"문항", "응답"}}})
	_, err = ReadSheet(bad, "codebook")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"질문"`)
}

func TestBuildRuleSet(t *testing.T) {
	entries := []Entry{
		{Item: "A1", Options: []Option{{Code: 1, Label: "남자"}, {Code: 2, Label: "여자"}}},
		{Item: "A3"},
	}
	rs := BuildRuleSet(entries)
	require.NoError(t, rs.Validate())
	require.Len(t, rs.Items, 2)

	a1 := rs.Items[0]
	assert.Equal(t, rules.DTypeCategorical, a1.TypeHints.DType)
	assert.Equal(t, []rules.Value{rules.Num(1), rules.Num(2)}, a1.Domain.AllowedCodes)
	assert.Equal(t, "여자", a1.Domain.CodeLabelMap["2"])
	require.Len(t, a1.Rules, 3)
	assert.Equal(t, "A1:range", a1.Rules[2].RuleID)
	assert.Equal(t, 1.0, *a1.Rules[2].Min)
	assert.Equal(t, 2.0, *a1.Rules[2].Max)
	for _, r := range a1.Rules {
		assert.Equal(t, rules.SourceCodebook, r.Source)
		assert.Equal(t, 1.0, r.Confidence)
	}

	a3 := rs.Items[1]
	assert.Equal(t, rules.DTypeUnknown, a3.TypeHints.DType)
	assert.Len(t, a3.Rules, 2)
}

func TestCartColumns(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{"codebook": sampleSheet})
	entries, err := ReadSheet(path, "codebook")
	require.NoError(t, err)

	cols := CartColumns(entries)
	assert.Equal(t, []CartColumn{
		{Title: "결측", Items: "A1,A2,A3,A4"},
		{Title: "중복 응답", Items: "A1,A2,A3,A4"},
		{Title: "범위", Items: "A1, A4", Values: "1, 2"},
		{Title: "범위", Items: "A2", Values: "1, 5"},
	}, cols)
}

func TestCartFromRuleSet_OtherKinds(t *testing.T) {
	two := rules.Num(2)
	rs := rules.RuleSet{Items: []rules.ItemSpec{{
		Item: "B2",
		Rules: []rules.Rule{
			{Kind: rules.KindSkipPattern, Value: &two, EndCol: "B5"},
			{Kind: rules.KindCompareColumns, OtherColumn: "B3", Compare: "<="},
			{Kind: rules.KindComparison, Left: []string{"B3", "+", "B4"}, Compare: ">", Right: []string{"B9"}},
			{Kind: rules.KindBetweenAB},
		},
	}}}

	assert.Equal(t, []CartColumn{
		{Title: "문항스킵", Items: "B2", Values: "2 -> B5"},
		{Title: "문항크기비교", Items: "B2, B3", Values: "<="},
		{Title: "문항값통합", Items: "B9", Values: "B3 + B4 > B9"},
	}, CartFromRuleSet(rs))
}

func TestExportCart(t *testing.T) {
	cols := []CartColumn{
		{Title: "결측", Items: "A1,A2"},
		{Title: "범위", Items: "A1", Values: "1, 5"},
	}
	path := filepath.Join(t.TempDir(), "data", "validation_cart.xlsx")
	require.NoError(t, ExportCart(cols, path, 2))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)
	sheet := f.Sheets[0]
	require.Len(t, sheet.Rows, 3)

	assert.Equal(t, "", sheet.Cell(0, 0).String())
	assert.Equal(t, "결측", sheet.Cell(0, 1).String())
	assert.Equal(t, "A1,A2", sheet.Cell(1, 1).String())
	assert.Equal(t, "범위", sheet.Cell(0, 2).String())
	assert.Equal(t, "1, 5", sheet.Cell(2, 2).String())
}

func TestSaveEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codebook.json")
	require.NoError(t, SaveEntries([]Entry{{Item: "A1", Question: "성별", Options: []Option{{Code: 1, Label: "남자"}}}}, path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"label": "남자"`)
	assert.Contains(t, string(raw), `"question": "성별"`)
}

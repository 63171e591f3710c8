package validate

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/skiplogic/internal/dataset"
)

var (
	na  = dataset.Null
	num = dataset.Num
	txt = dataset.Text
)

func newTable(t *testing.T, cols []string, rows ...[]dataset.Value) *dataset.Table {
	t.Helper()
	tbl, err := dataset.New(cols)
	require.NoError(t, err)
	for _, r := range rows {
		require.NoError(t, tbl.AppendRow(r))
	}
	return tbl
}

func errorsOf(t *testing.T, v *Validator, category string) []string {
	t.Helper()
	errs, ok := v.Table().ErrorColumn(v.ErrorColumn(category))
	require.True(t, ok, "error column %s missing", category)
	return errs
}

func TestParseComparison(t *testing.T) {
	tests := map[string]Comparison{
		"<": LT, "<=": LE, ">": GT, ">=": GE, "==": EQ, "!=": NE,
		"<(작다)": LT, "<=(작거나같다)": LE, ">(크다)": GT,
		">=(크거나같다)": GE, "==(같다)": EQ, " !=(다르다) ": NE,
	}
	for in, want := range tests {
		got, err := ParseComparison(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseComparison("=<")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrUnknownComparison))

	assert.Equal(t, "<=", LE.String())
	assert.Equal(t, "invalid", Comparison(0).String())
}

func TestComparison_Holds(t *testing.T) {
	assert.True(t, LT.holds(num(1), num(2)))
	assert.False(t, LT.holds(na, num(2)))
	assert.False(t, EQ.holds(na, na))
	assert.True(t, NE.holds(na, num(2)))
	assert.True(t, NE.holds(na, na))
	assert.True(t, LT.holds(txt("a"), txt("b")))
	assert.True(t, EQ.holds(txt("3"), num(3)))
	assert.False(t, EQ.holds(txt("x"), num(3)))
	assert.True(t, NE.holds(txt("x"), num(3)))
}

func TestMissValue(t *testing.T) {
	v := New(newTable(t, []string{"Q1", "Q2"},
		[]dataset.Value{num(1), na},
		[]dataset.Value{na, na},
	))
	require.NoError(t, v.MissValue([]string{"Q1", "Q2"}))
	assert.Equal(t, []string{"Q2", "Q1,Q2"}, errorsOf(t, v, CategoryMissing))
}

func TestBetweenAB(t *testing.T) {
	v := New(newTable(t, []string{"Q1"},
		[]dataset.Value{num(1)},
		[]dataset.Value{num(3)},
		[]dataset.Value{num(6)},
		[]dataset.Value{na},
	))
	require.NoError(t, v.BetweenAB([]string{"Q1"}, 1, 5))
	assert.Equal(t, []string{"", "", "Q1", ""}, errorsOf(t, v, CategoryRange))
}

func TestBetweenAB_TextOutOfRange(t *testing.T) {
	v := New(newTable(t, []string{"Q1"}, []dataset.Value{txt("모름")}, []dataset.Value{num(5)}))
	require.NoError(t, v.BetweenAB([]string{"Q1"}, 1, 5))
	assert.Equal(t, []string{"Q1", ""}, errorsOf(t, v, CategoryRange))
}

func TestBetween_ExclusiveBounds(t *testing.T) {
	v := New(newTable(t, []string{"Q1"}, []dataset.Value{num(1)}, []dataset.Value{num(2)}, []dataset.Value{num(5)}))
	require.NoError(t, v.between([]string{"Q1"}, Bounds{Min: 1, Max: 5, ExclusiveMin: true, ExclusiveMax: true}))
	assert.Equal(t, []string{"Q1", "", "Q1"}, errorsOf(t, v, CategoryRange))
}

func TestRepeatedOperationAppendsAgain(t *testing.T) {
	v := New(newTable(t, []string{"Q1"}, []dataset.Value{num(6)}, []dataset.Value{num(2)}))
	require.NoError(t, v.BetweenAB([]string{"Q1"}, 1, 5))
	require.NoError(t, v.BetweenAB([]string{"Q1"}, 1, 5))
	assert.Equal(t, []string{"Q1,Q1", ""}, errorsOf(t, v, CategoryRange))
}

func TestMultipleResponseCheck(t *testing.T) {
	v := New(newTable(t, []string{"Q1"},
		[]dataset.Value{num(3)},
		[]dataset.Value{num(3.0)},
		[]dataset.Value{num(13)},
		[]dataset.Value{txt("1,3")},
		[]dataset.Value{num(1.5)},
		[]dataset.Value{txt("예")},
		[]dataset.Value{na},
	))
	require.NoError(t, v.MultipleResponseCheck([]string{"Q1"}))
	assert.Equal(t, []string{"", "", "Q1", "Q1", "Q1", "", ""}, errorsOf(t, v, CategoryDuplicateResponse))
}

func TestEarlyEnd(t *testing.T) {
	v := New(newTable(t, []string{"Q1", "Q2", "Q3", "Q4", "Q5"},
		[]dataset.Value{num(1), num(3), na, na, na},
		[]dataset.Value{num(1), num(3), na, na, num(2)},
		[]dataset.Value{num(1), num(1), num(1), num(1), num(1)},
	))
	require.NoError(t, v.EarlyEnd("Q2", num(3)))
	assert.Equal(t, []string{"", "Q2", ""}, errorsOf(t, v, CategoryEarlyTermination))
}

func TestEarlyEnd_IgnoresErrorColumns(t *testing.T) {
	v := New(newTable(t, []string{"Q1", "Q2"}, []dataset.Value{num(3), na}))
	require.NoError(t, v.MissValue([]string{"Q2"}))
	require.NoError(t, v.EarlyEnd("Q1", num(3)))
	assert.Equal(t, []string{""}, errorsOf(t, v, CategoryEarlyTermination))
}

func TestSkipPattern(t *testing.T) {
	v := New(newTable(t, []string{"Q3", "Q4", "Q5", "Q6"},
		[]dataset.Value{num(2), na, na, num(1)},
		[]dataset.Value{num(2), na, num(4), num(1)},
		[]dataset.Value{num(1), num(1), num(1), num(1)},
	))
	require.NoError(t, v.SkipPattern("Q3", num(2), "Q6"))
	assert.Equal(t, []string{"", "Q3", ""}, errorsOf(t, v, CategoryItemSkip))

	// End before start: nothing in between.
	require.NoError(t, v.SkipPattern("Q5", num(4), "Q3"))
	assert.Equal(t, []string{"", "Q3", ""}, errorsOf(t, v, CategoryItemSkip))
}

func TestSameValue(t *testing.T) {
	v := New(newTable(t, []string{"A", "B"},
		[]dataset.Value{num(1), num(1)},
		[]dataset.Value{num(1), num(2)},
		[]dataset.Value{na, na},
	))
	require.NoError(t, v.SameValue("A", "B"))
	assert.Equal(t, []string{"A", "", ""}, errorsOf(t, v, CategoryIdenticalValue))
}

func TestCompareColumns(t *testing.T) {
	v := New(newTable(t, []string{"A", "B"},
		[]dataset.Value{num(1), num(2)},
		[]dataset.Value{num(3), num(2)},
		[]dataset.Value{na, num(2)},
	))
	require.NoError(t, v.CompareColumns("A", "B", GT))
	assert.Equal(t, []string{"", "A", ""}, errorsOf(t, v, CategoryItemSizeComparison))

	require.NoError(t, v.CompareColumns("A", "B", NE))
	assert.Equal(t, []string{"A", "A,A", "A"}, errorsOf(t, v, CategoryItemSizeComparison))
}

func TestCompareValue(t *testing.T) {
	v := New(newTable(t, []string{"AGE"}, []dataset.Value{num(15)}, []dataset.Value{num(40)}))
	require.NoError(t, v.CompareValue("AGE", num(19), LT))
	assert.Equal(t, []string{"AGE", ""}, errorsOf(t, v, CategoryItemValueComparison))
}

func TestUnknownComparison(t *testing.T) {
	tbl := newTable(t, []string{"A", "B"}, []dataset.Value{num(1), num(2)})

	v := New(tbl)
	require.NoError(t, v.CompareColumns("A", "B", Comparison(42)))
	assert.False(t, tbl.HasColumn(v.ErrorColumn(CategoryItemSizeComparison)))

	strict := New(tbl, WithStrictComparisons())
	err := strict.CompareValue("A", num(1), Comparison(0))
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrUnknownComparison))
}

func TestConditionalRules(t *testing.T) {
	v := New(newTable(t, []string{"Q1", "Q2"},
		[]dataset.Value{num(1), na},
		[]dataset.Value{num(1), num(5)},
		[]dataset.Value{num(2), num(3)},
		[]dataset.Value{num(3), na},
	))
	sel := []dataset.Value{num(1), num(2)}

	require.NoError(t, v.RequireMissing("Q1", sel, "Q2"))
	assert.Equal(t, []string{"Q1", "", "", ""}, errorsOf(t, v, CategoryConditionalMissing))

	require.NoError(t, v.RequireValue("Q1", sel, "Q2"))
	assert.Equal(t, []string{"", "Q1", "Q1", ""}, errorsOf(t, v, CategoryConditionalRequired))

	require.NoError(t, v.ConditionalMapping("Q1", []dataset.Value{num(1)}, "Q2", []dataset.Value{num(1), num(5)}))
	assert.Equal(t, []string{"", "Q1", "", ""}, errorsOf(t, v, CategoryConditionalLogic))
}

func TestCompare_LeftToRightFold(t *testing.T) {
	v := New(newTable(t, []string{"Q1", "Q2", "Q3", "T"},
		// (1+2)*3 = 9; precedence would give 7.
		[]dataset.Value{num(1), num(2), num(3), num(9)},
		[]dataset.Value{num(1), num(2), num(3), num(7)},
	))
	err := v.Compare(Expression{Left: []string{"Q1", "+", "Q2", "*", "Q3"}, Compare: NE, Right: []string{"T"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"", "T"}, errorsOf(t, v, CategoryItemValueIntegrated))
}

func TestCompare_LiteralsAndAbsent(t *testing.T) {
	v := New(newTable(t, []string{"A", "B", "TOTAL"},
		[]dataset.Value{num(30), num(40), num(100)},
		[]dataset.Value{num(50), num(50), num(100)},
		[]dataset.Value{na, num(50), num(100)},
	))
	// A + B + 10 > TOTAL, tagged on TOTAL.
	err := v.Compare(Expression{Left: []string{"A", "+", "B", "+", "10"}, Compare: GT, Right: []string{"TOTAL"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"", "TOTAL", ""}, errorsOf(t, v, CategoryItemValueIntegrated))
}

func TestCompare_TargetIsFirstRightOperand(t *testing.T) {
	e := Expression{Right: []string{"-", "Q9", "*", "2"}}
	target, ok := e.Target()
	assert.True(t, ok)
	assert.Equal(t, "Q9", target)

	_, ok = Expression{Right: []string{"+"}}.Target()
	assert.False(t, ok)
}

func TestCompare_Errors(t *testing.T) {
	v := New(newTable(t, []string{"A"}, []dataset.Value{num(1)}))

	err := v.Compare(Expression{Left: []string{"A"}, Compare: EQ, Right: []string{"nope"}})
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrColumnNotFound))

	err = v.Compare(Expression{Left: []string{"A", "A"}, Compare: EQ, Right: []string{"A"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing operator")

	err = v.Compare(Expression{Left: []string{"+"}, Compare: EQ, Right: []string{"A"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty expression")
}

func TestExclusiveMultiValue(t *testing.T) {
	v := New(newTable(t, []string{"M1", "M2", "M3"},
		[]dataset.Value{num(99), na, num(5)},
		[]dataset.Value{num(99), na, na},
		[]dataset.Value{num(1), num(2), na},
		[]dataset.Value{na, num(99), num(99)},
	))
	require.NoError(t, v.ExclusiveMultiValue([]string{"M1", "M2", "M3"}, num(99)))
	assert.Equal(t, []string{"M1", "", "", ""}, errorsOf(t, v, CategoryExclusiveMultiValue))
}

func TestMissingColumnFails(t *testing.T) {
	v := New(newTable(t, []string{"Q1"}, []dataset.Value{num(1)}))

	checks := map[string]error{
		"miss":      v.MissValue([]string{"Q9"}),
		"early":     v.EarlyEnd("Q9", num(1)),
		"skip":      v.SkipPattern("Q1", num(1), "Q9"),
		"same":      v.SameValue("Q1", "Q9"),
		"mapping":   v.ConditionalMapping("Q1", nil, "Q9", nil),
		"exclusive": v.ExclusiveMultiValue([]string{"Q1", "Q9"}, num(1)),
	}
	for name, err := range checks {
		require.Error(t, err, name)
		assert.True(t, eris.Is(err, ErrColumnNotFound), name)
	}
	assert.Equal(t, []string{"Q1"}, v.Table().Columns())
}

func TestDataColumnsNeverMutated(t *testing.T) {
	tbl := newTable(t, []string{"Q1", "Q2"}, []dataset.Value{num(6), num(6)}, []dataset.Value{na, txt("x")})
	v := New(tbl)
	require.NoError(t, v.MissValue([]string{"Q1", "Q2"}))
	require.NoError(t, v.BetweenAB([]string{"Q1", "Q2"}, 1, 5))
	require.NoError(t, v.SameValue("Q1", "Q2"))

	assert.Equal(t, []string{"Q1", "Q2"}, tbl.DataColumns())
	assert.Equal(t, num(6), tbl.Value(0, "Q1"))
	assert.Equal(t, txt("x"), tbl.Value(1, "Q2"))
	assert.False(t, tbl.Value(1, "Q1").Present())
}

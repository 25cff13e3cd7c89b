package qail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileBatchTemplate(t *testing.T) {
	c := Add("events").ColumnNamesFor("seq", "label")
	c = c.Values(1, "a").Values(2, "b").Values(3, "c")

	plan, err := CompileBatch(c)
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO events(seq, label) VALUES ($1, $2)`, plan.SQL)
	assert.Equal(t, 2, plan.ParamCount)
	require.Len(t, plan.RowValues, 3)
	assert.Equal(t, int64(1), plan.RowValues[0][0].Int64())
	assert.Equal(t, "b", plan.RowValues[1][1].Text())
}

func TestCompileBatchRejectsMapsRows(t *testing.T) {
	c := Add("events").ColumnNamesFor("seq")
	c.Maps = append(c.Maps, map[string]Expr{"seq": Literal(Int64(1))})

	_, err := CompileBatch(c)
	require.Error(t, err)
	kind, _ := KindOf(err)
	assert.Equal(t, InvalidAst, kind)
}

func TestCompileBatchRejectsRowArityMismatch(t *testing.T) {
	c := Add("events").ColumnNamesFor("seq", "label").Values(1)
	_, err := CompileBatch(c)
	require.Error(t, err)
}

func TestCompileBatchRejectsNonLiteralRows(t *testing.T) {
	c := Add("events").ColumnNamesFor("seq")
	c.Rows = append(c.Rows, ValueRow{Values: []Expr{Named("other_col")}})
	_, err := CompileBatch(c)
	require.Error(t, err)
}

func TestBuildBatchFramesEmptyPlanAppendsNothing(t *testing.T) {
	plan := &BatchPlan{SQL: "INSERT INTO x(a) VALUES ($1)", ParamCount: 1}
	buf, err := BuildBatchFrames(nil, "qail_stmt_0", plan)
	require.NoError(t, err)
	assert.Empty(t, buf)
}

func TestBuildBatchFramesNonEmpty(t *testing.T) {
	c := Add("events").ColumnNamesFor("seq").Values(1).Values(2)
	plan, err := CompileBatch(c)
	require.NoError(t, err)

	buf, err := BuildBatchFrames(nil, "qail_stmt_1", plan)
	require.NoError(t, err)
	assert.NotEmpty(t, buf)
	// One Parse ('P'), two Bind+Execute pairs ('B','E' each), one Sync ('S').
	tagCounts := map[byte]int{}
	for i := 0; i < len(buf); {
		tag := buf[i]
		tagCounts[tag]++
		length := int(buf[i+1])<<24 | int(buf[i+2])<<16 | int(buf[i+3])<<8 | int(buf[i+4])
		i += 1 + length
	}
	assert.Equal(t, 1, tagCounts['P'])
	assert.Equal(t, 2, tagCounts['B'])
	assert.Equal(t, 2, tagCounts['E'])
	assert.Equal(t, 1, tagCounts['S'])
}

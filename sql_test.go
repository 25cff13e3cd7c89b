package qail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileSelectAll(t *testing.T) {
	c := Get("harbors").WhereEq("active", true).OrderDesc("created_at").Limit(10)
	sql, maxParam, err := Compile(c)
	require.NoError(t, err)
	assert.Equal(t, -1, maxParam)
	assert.Equal(t, `SELECT * FROM harbors WHERE (active = TRUE) ORDER BY created_at DESC LIMIT 10`, sql)
}

func TestCompileSelectColumns(t *testing.T) {
	c := Get("ships").Columns("id", "name").Filter("tonnage", Gt, 500)
	sql, _, err := Compile(c)
	require.NoError(t, err)
	assert.Equal(t, `SELECT id, name FROM ships WHERE (tonnage > 500)`, sql)
}

func TestCompileInsertSingleRow(t *testing.T) {
	c := Add("ships").ColumnNamesFor("name", "tonnage").Values("Nautilus", 1200)
	sql, _, err := Compile(c)
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO ships(name, tonnage) VALUES ('Nautilus', 1200)`, sql)
}

func TestCompileInsertReturning(t *testing.T) {
	c := Add("ships").ColumnNamesFor("name").Values("Argo").Returning("id")
	sql, _, err := Compile(c)
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO ships(name) VALUES ('Argo') RETURNING id`, sql)
}

func TestCompileUpdate(t *testing.T) {
	c := Set("ships").SetValue("tonnage", 1500).WhereEq("id", 1)
	sql, _, err := Compile(c)
	require.NoError(t, err)
	assert.Equal(t, `UPDATE ships SET tonnage = 1500 WHERE (id = 1)`, sql)
}

func TestCompileDelete(t *testing.T) {
	c := Del("ships").WhereEq("id", 1)
	sql, _, err := Compile(c)
	require.NoError(t, err)
	assert.Equal(t, `DELETE FROM ships WHERE (id = 1)`, sql)
}

func TestCompileCreateTable(t *testing.T) {
	c := Make("ships").
		ColumnExpr(Cast(Named("id"), BigSerialType(), "")).
		ColumnExpr(Cast(Named("name"), VarcharType(120), ""))
	c.IndexCol = "id"
	sql, _, err := Compile(c)
	require.NoError(t, err)
	assert.Equal(t, `CREATE TABLE ships (id bigserial PRIMARY KEY, name varchar(120))`, sql)
}

func TestCompileParamPlaceholder(t *testing.T) {
	c := Get("ships").FilterCond(Cmp(Named("id"), Eq, Param(0)))
	sql, maxParam, err := Compile(c)
	require.NoError(t, err)
	assert.Equal(t, 0, maxParam)
	assert.Equal(t, `SELECT * FROM ships WHERE (id = $1)`, sql)
}

func TestCompileInClause(t *testing.T) {
	c := Get("ships").FilterCond(CmpIn(Named("id"), Literal(Int64(1)), Literal(Int64(2))))
	sql, _, err := Compile(c)
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM ships WHERE (id IN (1, 2))`, sql)
}

func TestCompileJoin(t *testing.T) {
	c := Get("ships").SetTableAlias("s").
		Columns("s.name").
		InnerJoin("harbors", "s.harbor_id", "h.id")
	sql, _, err := Compile(c)
	require.NoError(t, err)
	assert.Equal(t, `SELECT s.name FROM ships AS s INNER JOIN harbors ON s.harbor_id = h.id`, sql)
}

func TestValidateRejectsMismatchedRhs(t *testing.T) {
	bad := Condition{Kind: CondCmp, Lhs: Named("x"), Op: Between, RhsKind: RhsExpr}
	err := bad.Validate()
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, InvalidAst, kind)
}

package qail

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAffectedInsert(t *testing.T) {
	assert.Equal(t, int64(3), parseAffected("INSERT 0 3"))
}

func TestParseAffectedUpdate(t *testing.T) {
	assert.Equal(t, int64(5), parseAffected("UPDATE 5"))
}

func TestParseAffectedDDLHasNoCount(t *testing.T) {
	assert.Equal(t, int64(0), parseAffected("CREATE TABLE"))
}

func TestParseAffectedEmpty(t *testing.T) {
	assert.Equal(t, int64(0), parseAffected(""))
}

func TestColumnListSQL(t *testing.T) {
	assert.Equal(t, `(a, b)`, columnListSQL([]string{"a", "b"}))
	assert.Equal(t, "", columnListSQL(nil))
}

func TestEncodeCopyLineEscapesSpecialBytes(t *testing.T) {
	line, err := encodeCopyLine([]Value{Text("a\tb"), Null(), Text("c\nd")})
	require.NoError(t, err)
	assert.Equal(t, "a\\tb\t\\N\tc\\nd\n", string(line))
}

// TestLiveDriverRoundTrip exercises Connect/Query/Execute/Batch/Transaction
// against a real PostgreSQL instance. It is skipped unless QAIL_TEST_DSN is
// set, since no server is available in the default test environment.
func TestLiveDriverRoundTrip(t *testing.T) {
	dsn := os.Getenv("QAIL_TEST_DSN")
	if dsn == "" {
		t.Skip("QAIL_TEST_DSN not set; skipping live driver test")
	}

	ctx := context.Background()
	driver, err := Connect(ctx, dsn)
	require.NoError(t, err)
	defer driver.Close()

	_, err = driver.Execute(ctx, Drop("qail_roundtrip_test"))
	_ = err // table may not exist yet

	_, err = driver.Execute(ctx, Make("qail_roundtrip_test").
		ColumnExpr(Cast(Named("id"), BigSerialType(), "")).
		ColumnExpr(Cast(Named("label"), TextType(), "")))
	require.NoError(t, err)

	res, err := driver.Execute(ctx, Add("qail_roundtrip_test").ColumnNamesFor("label").Values("hello"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Affected)

	rows, err := driver.Query(ctx, Get("qail_roundtrip_test").WhereEq("label", "hello"))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	_, err = driver.Execute(ctx, Drop("qail_roundtrip_test"))
	require.NoError(t, err)
}

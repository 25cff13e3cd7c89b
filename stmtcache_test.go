package qail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStmtCacheLookupMiss(t *testing.T) {
	c := newStmtCache(2)
	_, ok := c.Lookup(PreparedKey{Fingerprint: [2]uint64{1, 2}})
	assert.False(t, ok)
}

func TestStmtCacheInsertAndLookup(t *testing.T) {
	c := newStmtCache(2)
	key := PreparedKey{Fingerprint: [2]uint64{1, 2}, ParamOIDs: "23"}
	name := c.nextStatementName()
	evicted, didEvict := c.Insert(&preparedEntry{key: key, StatementName: name})
	assert.False(t, didEvict)
	assert.Empty(t, evicted)

	got, ok := c.Lookup(key)
	require.True(t, ok)
	assert.Equal(t, name, got.StatementName)
	assert.Equal(t, 1, c.Len())
}

func TestStmtCacheEvictsLRU(t *testing.T) {
	c := newStmtCache(2)
	keyA := PreparedKey{Fingerprint: [2]uint64{1, 0}}
	keyB := PreparedKey{Fingerprint: [2]uint64{2, 0}}
	keyC := PreparedKey{Fingerprint: [2]uint64{3, 0}}

	c.Insert(&preparedEntry{key: keyA, StatementName: "a"})
	c.Insert(&preparedEntry{key: keyB, StatementName: "b"})
	// touch A so B becomes least-recently-used
	c.Lookup(keyA)

	evicted, didEvict := c.Insert(&preparedEntry{key: keyC, StatementName: "c"})
	require.True(t, didEvict)
	assert.Equal(t, "b", evicted)
	assert.Equal(t, 2, c.Len())

	_, ok := c.Lookup(keyB)
	assert.False(t, ok)
	_, ok = c.Lookup(keyA)
	assert.True(t, ok)
}

func TestStmtCacheNextStatementNamesAreUnique(t *testing.T) {
	c := newStmtCache(4)
	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		name := c.nextStatementName()
		assert.False(t, seen[name])
		seen[name] = true
	}
}

package qail

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprintDeterministic(t *testing.T) {
	build := func() *Command {
		return Get("ships").Columns("id", "name").WhereEq("active", true).OrderDesc("id").Limit(5)
	}
	a, b := Fingerprint(build()), Fingerprint(build())
	assert.Equal(t, a, b)
}

func TestFingerprintDiffersOnLiteralValue(t *testing.T) {
	a := Fingerprint(Get("ships").WhereEq("id", 1))
	b := Fingerprint(Get("ships").WhereEq("id", 2))
	assert.NotEqual(t, a, b)
}

func TestFingerprintDiffersOnTable(t *testing.T) {
	a := Fingerprint(Get("ships"))
	b := Fingerprint(Get("harbors"))
	assert.NotEqual(t, a, b)
}

func TestFingerprintSameAcrossParamValue(t *testing.T) {
	// Param(i) carries no value of its own, so two commands that differ
	// only in which value is later bound to $1 fingerprint identically —
	// that's the whole point of using Param over Literal for cache reuse.
	build := func() *Command {
		return Get("ships").FilterCond(Cmp(Named("id"), Eq, Param(0)))
	}
	a, b := Fingerprint(build()), Fingerprint(build())
	assert.Equal(t, a, b)
}

func TestFingerprintDistinguishesNamedFromLiteralText(t *testing.T) {
	a := Fingerprint(Get("ships").ColumnExpr(Named("x")))
	b := Fingerprint(Get("ships").ColumnExpr(Literal(Text("x"))))
	assert.NotEqual(t, a, b)
}

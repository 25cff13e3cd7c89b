package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextState(t *testing.T) {
	assert.Equal(t, StateIdle, NextState('I'))
	assert.Equal(t, StateInTransaction, NextState('T'))
	assert.Equal(t, StateTransactionFailed, NextState('E'))
	assert.Equal(t, StateUnknown, NextState('?'))
}

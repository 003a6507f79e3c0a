package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequentialFlowGenerator(t *testing.T) {
	gen := NewSequentialFlowGenerator("test")

	assert.Equal(t, "test-0001", gen.Generate())
	assert.Equal(t, "test-0002", gen.Generate())

	gen.Reset()
	assert.Equal(t, "test-0001", gen.Generate())
}

func TestSequentialFlowGenerator_DefaultPrefix(t *testing.T) {
	assert.Equal(t, "flow-0001", NewSequentialFlowGenerator("").Generate())
}

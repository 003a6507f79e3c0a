package testutil

import (
	"fmt"
	"sync"
)

// SequentialFlowGenerator hands out numbered flow tokens:
// "<prefix>-0001", "<prefix>-0002", ...
//
// Every dispatch needs a distinct token while it is pending, so unlike a
// fixed token this generator works with any number of in-flight dispatches
// and still yields byte-identical journals across runs.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequentialFlowGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialFlowGenerator creates a generator with the given prefix.
// An empty prefix becomes "flow".
func NewSequentialFlowGenerator(prefix string) *SequentialFlowGenerator {
	if prefix == "" {
		prefix = "flow"
	}
	return &SequentialFlowGenerator{prefix: prefix}
}

// Generate returns the next token. Implements engine.FlowTokenGenerator.
func (g *SequentialFlowGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}

// Reset restarts numbering at 1.
func (g *SequentialFlowGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n = 0
}

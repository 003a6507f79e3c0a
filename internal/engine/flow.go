package engine

import (
	"sync"

	"github.com/google/uuid"
)

// FlowTokenGenerator generates a correlation token for each Dispatch call.
// Implemented by UUIDv7Generator (production), FixedGenerator and
// testutil.SequentialFlowGenerator (tests).
type FlowTokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 flow tokens, so journal
// entries for a dispatch sort by when it was issued.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7.
// Panics if the system random source fails.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator hands out a predetermined list of tokens, for tests that
// compare journal output byte for byte.
//
// Thread-safety: safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu     sync.Mutex
	tokens []string
	next   int
}

// NewFixedGenerator creates a generator returning tokens in order.
func NewFixedGenerator(tokens ...string) *FixedGenerator {
	return &FixedGenerator{tokens: tokens}
}

// Generate returns the next token.
// Panics once the list is exhausted: a test dispatched more than it declared.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.next >= len(g.tokens) {
		panic("FixedGenerator: all tokens exhausted")
	}
	token := g.tokens[g.next]
	g.next++
	return token
}

package journal

import (
	"path/filepath"
	"testing"

	"github.com/roach88/multistore/internal/ir"
)

// openTestJournal creates a fresh journal in a temp dir.
func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func testRound(flowToken string, attempt int, seq int64, status Status) Round {
	return Round{
		Seq:        seq,
		FlowToken:  flowToken,
		Attempt:    attempt,
		ActionType: "INC",
		Action:     ir.NewAction("INC"),
		Status:     status,
		Stores:     []string{"counter", "log"},
		Changed:    []string{"counter"},
	}
}

// ABOUTME: Tests for the badger-backed promotion intent journal
// ABOUTME: Verifies persistence, state transitions and pending iteration
package bridge

import (
	"path/filepath"
	"testing"
)

func TestJournalRoundTrip(t *testing.T) {
	j, err := OpenIntentJournal("")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer j.Close()

	in := PromotionIntent{ID: "i-1", RowIndex: 5, CoreID: "C01ABC", Actor: "alice", State: IntentPending}
	if err := j.Put(in); err != nil {
		t.Fatalf("put: %v", err)
	}

	out, err := j.Get("i-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if out.RowIndex != 5 || out.CoreID != "C01ABC" || out.State != IntentPending {
		t.Errorf("round trip mismatch: %+v", out)
	}

	if err := j.MarkDone("i-1"); err != nil {
		t.Fatalf("mark done: %v", err)
	}
	out, err = j.Get("i-1")
	if err != nil {
		t.Fatalf("get after done: %v", err)
	}
	if out.State != IntentDone {
		t.Errorf("expected done state, got %q", out.State)
	}
}

func TestJournalPendingSkipsDone(t *testing.T) {
	j, err := OpenIntentJournal("")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer j.Close()

	for _, in := range []PromotionIntent{
		{ID: "i-1", RowIndex: 1, State: IntentPending},
		{ID: "i-2", RowIndex: 2, State: IntentDone},
		{ID: "i-3", RowIndex: 3, State: IntentPending},
	} {
		if err := j.Put(in); err != nil {
			t.Fatalf("put %s: %v", in.ID, err)
		}
	}

	pending, err := j.Pending()
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending, got %d", len(pending))
	}
}

func TestJournalPersistsToDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intents")

	j, err := OpenIntentJournal(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := j.Put(PromotionIntent{ID: "i-1", RowIndex: 9, State: IntentPending}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	j2, err := OpenIntentJournal(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer j2.Close()

	out, err := j2.Get("i-1")
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if out.RowIndex != 9 {
		t.Errorf("expected persisted row 9, got %d", out.RowIndex)
	}
}

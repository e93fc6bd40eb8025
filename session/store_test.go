package session

import (
	"errors"
	"sync"
	"testing"

	"dive-roast/dive"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	samples := []dive.Sample{{DiveNumber: "1", Time: 0, Depth: 10}}

	sess := store.Create(samples)
	if sess.ID == "" {
		t.Fatal("Create returned a session without an ID")
	}

	got, err := store.Get(sess.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if len(got.Samples) != 1 {
		t.Fatalf("session has %d samples, want 1", len(got.Samples))
	}

	if err := store.AppendHistory(sess.ID, Message{Role: "user", Content: "hi"}); err != nil {
		t.Fatalf("AppendHistory returned error: %v", err)
	}
	history, err := store.History(sess.ID)
	if err != nil {
		t.Fatalf("History returned error: %v", err)
	}
	if len(history) != 1 || history[0].Content != "hi" {
		t.Fatalf("history = %+v, want one user message", history)
	}

	store.Delete(sess.ID)
	if _, err := store.Get(sess.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after Delete = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreUnknownSession(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	if _, err := store.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get = %v, want ErrNotFound", err)
	}
	if err := store.AppendHistory("missing", Message{Role: "user", Content: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("AppendHistory = %v, want ErrNotFound", err)
	}
	if _, err := store.History("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("History = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreRestoreKeepsID(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	samples := []dive.Sample{{DiveNumber: "7", Time: 0, Depth: 20}}

	sess := store.Restore("persisted-id", samples)
	if sess.ID != "persisted-id" {
		t.Fatalf("Restore changed the ID to %s", sess.ID)
	}
	if _, err := store.Get("persisted-id"); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	history, err := store.History("persisted-id")
	if err != nil {
		t.Fatalf("History returned error: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("restored session has %d history entries, want 0", len(history))
	}
}

func TestMemoryStoreDistinctIDs(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	a := store.Create(nil)
	b := store.Create(nil)
	if a.ID == b.ID {
		t.Fatalf("two sessions share ID %s", a.ID)
	}
}

func TestMemoryStoreConcurrentAppends(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	sess := store.Create(nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.AppendHistory(sess.ID, Message{Role: "user", Content: "m"})
		}()
	}
	wg.Wait()

	history, _ := store.History(sess.ID)
	if len(history) != 50 {
		t.Fatalf("history has %d entries, want 50", len(history))
	}
}

func TestMemoryStoreHistorySnapshot(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	sess := store.Create(nil)
	_ = store.AppendHistory(sess.ID, Message{Role: "user", Content: "first"})

	snapshot, err := store.History(sess.ID)
	if err != nil {
		t.Fatalf("History returned error: %v", err)
	}

	_ = store.AppendHistory(sess.ID, Message{Role: "model", Content: "second"})
	if len(snapshot) != 1 {
		t.Fatalf("snapshot grew to %d entries after append", len(snapshot))
	}

	snapshot[0].Content = "mutated"
	fresh, _ := store.History(sess.ID)
	if fresh[0].Content != "first" {
		t.Fatalf("mutating a snapshot leaked into the store: %+v", fresh)
	}
}

func TestMemoryStoreConcurrentReadersAndWriters(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	sess := store.Create(nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.AppendHistory(sess.ID, Message{Role: "user", Content: "m"})
		}()
		go func() {
			defer wg.Done()
			history, err := store.History(sess.ID)
			if err != nil {
				t.Errorf("History returned error: %v", err)
				return
			}
			for _, msg := range history {
				if msg.Content != "m" {
					t.Errorf("unexpected message %+v", msg)
				}
			}
		}()
	}
	wg.Wait()

	history, _ := store.History(sess.ID)
	if len(history) != 20 {
		t.Fatalf("history has %d entries, want 20", len(history))
	}
}

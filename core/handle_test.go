package core

import (
	"sync"
	"testing"
)

func TestTaskTable_InsertGetRemove(t *testing.T) {
	table := NewTaskTable()
	task := NewTask("a", "", DefaultRenderOptions())

	h := table.Insert(task)
	if h.IsNil() {
		t.Fatal("Insert returned the nil handle")
	}
	if task.Handle() != h {
		t.Errorf("task handle = %v, want %v", task.Handle(), h)
	}

	got, ok := table.Get(h)
	if !ok || got != task {
		t.Fatalf("Get(%v) = %v, %v; want the inserted task", h, got, ok)
	}
	if table.Len() != 1 {
		t.Errorf("Len() = %d, want 1", table.Len())
	}

	if !table.Remove(h) {
		t.Fatal("Remove returned false for a live handle")
	}
	if _, ok := table.Get(h); ok {
		t.Error("Get succeeded after Remove")
	}
	if table.Len() != 0 {
		t.Errorf("Len() = %d, want 0", table.Len())
	}

	// Removing again is a no-op.
	if table.Remove(h) {
		t.Error("second Remove returned true")
	}
}

func TestTaskTable_StaleHandleAfterSlotReuse(t *testing.T) {
	// Given: a task is freed and its slot is reused by a new task
	table := NewTaskTable()
	first := NewTask("first", "", DefaultRenderOptions())
	stale := table.Insert(first)
	table.Remove(stale)

	second := NewTask("second", "", DefaultRenderOptions())
	fresh := table.Insert(second)

	// Then: the slot is reused but the stale handle stays invalid
	if stale.index() != fresh.index() {
		t.Fatalf("expected slot reuse, got index %d then %d", stale.index(), fresh.index())
	}
	if stale == fresh {
		t.Fatal("stale handle equals fresh handle; generation was not bumped")
	}
	if _, ok := table.Get(stale); ok {
		t.Error("stale handle resolved after slot reuse")
	}
	if got, ok := table.Get(fresh); !ok || got != second {
		t.Error("fresh handle failed to resolve")
	}
}

func TestTaskTable_NilHandleNeverResolves(t *testing.T) {
	table := NewTaskTable()
	table.Insert(NewTask("a", "", DefaultRenderOptions()))

	if _, ok := table.Get(NilHandle); ok {
		t.Error("NilHandle resolved to a task")
	}
}

func TestTaskTable_Clear(t *testing.T) {
	table := NewTaskTable()
	handles := make([]Handle, 0, 8)
	for i := 0; i < 8; i++ {
		handles = append(handles, table.Insert(NewTask("a", "", DefaultRenderOptions())))
	}

	table.Clear()

	if table.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", table.Len())
	}
	for _, h := range handles {
		if _, ok := table.Get(h); ok {
			t.Errorf("handle %v resolved after Clear", h)
		}
	}

	// The table stays usable after Clear.
	h := table.Insert(NewTask("b", "", DefaultRenderOptions()))
	if _, ok := table.Get(h); !ok {
		t.Error("Insert after Clear failed to resolve")
	}
}

func TestTaskTable_ConcurrentInsertDistinctHandles(t *testing.T) {
	// Given: many goroutines inserting concurrently
	table := NewTaskTable()
	const goroutines = 8
	const perGoroutine = 40

	var mu sync.Mutex
	seen := make(map[Handle]struct{}, goroutines*perGoroutine)

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				h := table.Insert(NewTask("a", "", DefaultRenderOptions()))
				mu.Lock()
				seen[h] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// Then: every handle is distinct
	if len(seen) != goroutines*perGoroutine {
		t.Fatalf("got %d distinct handles, want %d", len(seen), goroutines*perGoroutine)
	}
	if table.Len() != goroutines*perGoroutine {
		t.Errorf("Len() = %d, want %d", table.Len(), goroutines*perGoroutine)
	}
}

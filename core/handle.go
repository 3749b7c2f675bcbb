package core

import "sync"

// Handle is the opaque identity external callers use to refer to a task.
// It packs a slot index in the low 32 bits and a generation counter in the
// high 32 bits. The generation is bumped every time a slot is vacated, so
// a handle kept past FreeTask misses its lookup instead of silently
// resolving to an unrelated task that happens to reuse the slot.
type Handle uint64

// NilHandle never resolves to a task. Generations start at 1, so the zero
// value cannot collide with a live handle.
const NilHandle Handle = 0

func makeHandle(index, generation uint32) Handle {
	return Handle(uint64(generation)<<32 | uint64(index))
}

func (h Handle) index() uint32      { return uint32(h) }
func (h Handle) generation() uint32 { return uint32(h >> 32) }

// IsNil reports whether the handle is the zero handle.
func (h Handle) IsNil() bool { return h == NilHandle }

type taskSlot struct {
	generation uint32
	task       *Task
}

// TaskTable is the single authority resolving handles to live tasks.
// Slots are recycled through a free list; a slot's generation changes on
// every removal, invalidating stale handles.
//
// Removing a task only drops the table's reference. A worker or caller
// still holding the *Task keeps it alive until they release it, which is
// what lets FreeTask run safely while a render is in flight.
type TaskTable struct {
	mu    sync.RWMutex
	slots []taskSlot
	free  []uint32
	count int
}

// NewTaskTable creates an empty table.
func NewTaskTable() *TaskTable {
	return &TaskTable{}
}

// Insert registers the task, binds its handle, and returns it. Handles are
// unique among currently-live tasks.
func (tb *TaskTable) Insert(task *Task) Handle {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	var index uint32
	if n := len(tb.free); n > 0 {
		index = tb.free[n-1]
		tb.free = tb.free[:n-1]
	} else {
		index = uint32(len(tb.slots))
		tb.slots = append(tb.slots, taskSlot{generation: 1})
	}

	slot := &tb.slots[index]
	slot.task = task
	tb.count++

	h := makeHandle(index, slot.generation)
	task.bind(h)
	return h
}

// Get resolves a handle to its task. Stale or unknown handles return
// (nil, false).
func (tb *TaskTable) Get(h Handle) (*Task, bool) {
	tb.mu.RLock()
	defer tb.mu.RUnlock()

	idx := h.index()
	if int(idx) >= len(tb.slots) {
		return nil, false
	}
	slot := &tb.slots[idx]
	if slot.task == nil || slot.generation != h.generation() {
		return nil, false
	}
	return slot.task, true
}

// Remove drops the table's reference to the task. It reports whether the
// handle resolved; removing an unknown handle is a no-op.
func (tb *TaskTable) Remove(h Handle) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	idx := h.index()
	if int(idx) >= len(tb.slots) {
		return false
	}
	slot := &tb.slots[idx]
	if slot.task == nil || slot.generation != h.generation() {
		return false
	}

	slot.task = nil
	slot.generation++
	tb.free = append(tb.free, idx)
	tb.count--
	return true
}

// Clear drops every tracked task, invalidating all outstanding handles.
func (tb *TaskTable) Clear() {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	for i := range tb.slots {
		if tb.slots[i].task != nil {
			tb.slots[i].task = nil
			tb.slots[i].generation++
			tb.free = append(tb.free, uint32(i))
		}
	}
	tb.count = 0
}

// Len returns the number of live tasks.
func (tb *TaskTable) Len() int {
	tb.mu.RLock()
	defer tb.mu.RUnlock()
	return tb.count
}

package core

import "testing"

func TestJobQueue_FIFOOrder(t *testing.T) {
	q := NewJobQueue()

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		q.Push(func() { order = append(order, i) })
	}

	for {
		job, ok := q.Pop()
		if !ok {
			break
		}
		job()
	}

	if len(order) != 5 {
		t.Fatalf("executed %d jobs, want 5", len(order))
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("order = %v, want ascending", order)
		}
	}
}

func TestJobQueue_PopEmpty(t *testing.T) {
	q := NewJobQueue()
	if _, ok := q.Pop(); ok {
		t.Error("Pop on empty queue returned ok")
	}
	if !q.IsEmpty() {
		t.Error("IsEmpty() = false for empty queue")
	}
}

func TestJobQueue_Clear(t *testing.T) {
	q := NewJobQueue()
	for i := 0; i < 10; i++ {
		q.Push(func() {})
	}

	if n := q.Clear(); n != 10 {
		t.Errorf("Clear() = %d, want 10", n)
	}
	if q.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", q.Len())
	}
	if n := q.Clear(); n != 0 {
		t.Errorf("second Clear() = %d, want 0", n)
	}
}

func TestJobQueue_CompactionKeepsContents(t *testing.T) {
	// Push enough to exceed the compaction threshold, drain most of it,
	// and verify the remaining jobs survive in order.
	q := NewJobQueue()

	const total = 200
	results := make(chan int, total)
	for i := 0; i < total; i++ {
		i := i
		q.Push(func() { results <- i })
	}

	for i := 0; i < total-5; i++ {
		job, ok := q.Pop()
		if !ok {
			t.Fatalf("Pop %d failed", i)
		}
		job()
	}

	if q.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", q.Len())
	}
	for i := total - 5; i < total; i++ {
		job, ok := q.Pop()
		if !ok {
			t.Fatalf("Pop of tail job failed")
		}
		job()
	}
	close(results)

	want := 0
	for got := range results {
		if got != want {
			t.Fatalf("job order broken after compaction: got %d, want %d", got, want)
		}
		want++
	}
}

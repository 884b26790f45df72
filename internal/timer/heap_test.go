package timer

import (
	"testing"
	"time"
)

var epoch = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func TestQueue_Due(t *testing.T) {
	q := NewQueue()
	q.Schedule("sample", epoch.Add(2*time.Second))
	q.Schedule("bell", epoch.Add(time.Second))
	q.Schedule("scan", epoch.Add(5*time.Second))

	if got := q.Due(epoch); len(got) != 0 {
		t.Fatalf("expected nothing due at epoch, got %v", got)
	}

	got := q.Due(epoch.Add(2 * time.Second))
	if len(got) != 2 || got[0] != "bell" || got[1] != "sample" {
		t.Fatalf("expected [bell sample], got %v", got)
	}

	if q.Pending("sample") {
		t.Error("sample should no longer be pending after firing")
	}
	if !q.Pending("scan") {
		t.Error("scan should still be pending")
	}
}

func TestQueue_Cancel(t *testing.T) {
	q := NewQueue()
	q.Schedule("scan", epoch.Add(time.Second))

	if !q.Cancel("scan") {
		t.Error("Cancel returned false")
	}
	if q.Cancel("scan") {
		t.Error("second Cancel should return false")
	}

	if got := q.Due(epoch.Add(time.Minute)); len(got) != 0 {
		t.Errorf("cancelled deadline fired: %v", got)
	}
}

func TestQueue_Reschedule(t *testing.T) {
	q := NewQueue()
	q.Schedule("sample", epoch.Add(time.Second))
	q.Schedule("sample", epoch.Add(3*time.Second))

	if stats := q.Stats(); stats.Scheduled != 1 {
		t.Errorf("expected 1 scheduled deadline, got %d", stats.Scheduled)
	}

	if got := q.Due(epoch.Add(2 * time.Second)); len(got) != 0 {
		t.Errorf("rescheduled deadline fired early: %v", got)
	}

	next, ok := q.Next()
	if !ok || !next.Equal(epoch.Add(3*time.Second)) {
		t.Errorf("expected next at +3s, got %v (ok=%v)", next, ok)
	}
}

func TestQueue_SameInstantKeepsInsertionOrder(t *testing.T) {
	q := NewQueue()
	for _, id := range []string{"a", "b", "c", "d"} {
		q.Schedule(id, epoch)
	}

	got := q.Due(epoch)
	want := []string{"a", "b", "c", "d"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestQueue_Empty(t *testing.T) {
	q := NewQueue()
	if _, ok := q.Next(); ok {
		t.Error("empty queue reported a next deadline")
	}
	if got := q.Due(epoch); got != nil {
		t.Errorf("expected nil from empty queue, got %v", got)
	}
}

func BenchmarkQueue_ScheduleDue(b *testing.B) {
	q := NewQueue()
	ids := []string{"sample", "bell", "scan", "alert"}
	for i := 0; i < b.N; i++ {
		id := ids[i%len(ids)]
		q.Schedule(id, epoch.Add(time.Duration(i)*time.Millisecond))
		q.Due(epoch.Add(time.Duration(i-2) * time.Millisecond))
	}
}

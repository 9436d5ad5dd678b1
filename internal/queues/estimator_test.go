package queues

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func waitingEntry(priority Priority, createdAt time.Time) *QueueRecord {
	return &QueueRecord{
		ID:        uuid.New(),
		Status:    StatusWaiting,
		Priority:  priority,
		CreatedAt: createdAt,
	}
}

func TestOrderWaitingPriorityBeforeArrival(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	normalFirst := waitingEntry(PriorityNormal, base)
	urgentLater := waitingEntry(PriorityUrgent, base.Add(30*time.Minute))
	highLater := waitingEntry(PriorityHigh, base.Add(20*time.Minute))

	entries := []*QueueRecord{normalFirst, urgentLater, highLater}
	OrderWaiting(entries)

	want := []*QueueRecord{urgentLater, highLater, normalFirst}
	for i, entry := range want {
		if entries[i] != entry {
			t.Fatalf("position %d = %s priority, want %s", i, entries[i].Priority, entry.Priority)
		}
	}
}

func TestOrderWaitingArrivalBreaksTies(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	second := waitingEntry(PriorityNormal, base.Add(10*time.Minute))
	first := waitingEntry(PriorityNormal, base)

	entries := []*QueueRecord{second, first}
	OrderWaiting(entries)

	if entries[0] != first || entries[1] != second {
		t.Fatal("earlier arrival should be served first within a priority level")
	}
}

func TestEstimateWaitTimes(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	front := waitingEntry(PriorityUrgent, base.Add(time.Hour))
	middle := waitingEntry(PriorityNormal, base)
	back := waitingEntry(PriorityNormal, base.Add(5*time.Minute))

	estimates := EstimateWaitTimes([]*QueueRecord{middle, back, front}, 15)

	if got := estimates[front]; got != 0 {
		t.Errorf("front estimate = %d, want 0", got)
	}
	if got := estimates[middle]; got != 15 {
		t.Errorf("middle estimate = %d, want 15", got)
	}
	if got := estimates[back]; got != 30 {
		t.Errorf("back estimate = %d, want 30", got)
	}
}

func TestEstimateWaitTimesDoesNotReorderInput(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	a := waitingEntry(PriorityNormal, base)
	b := waitingEntry(PriorityUrgent, base.Add(time.Minute))
	entries := []*QueueRecord{a, b}

	EstimateWaitTimes(entries, 10)

	if entries[0] != a || entries[1] != b {
		t.Fatal("input slice order should be preserved")
	}
}

func TestPositionOf(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	urgent := waitingEntry(PriorityUrgent, base.Add(time.Hour))
	normal := waitingEntry(PriorityNormal, base)
	entries := []*QueueRecord{normal, urgent}

	if pos := PositionOf(entries, urgent.ID); pos != 0 {
		t.Errorf("urgent position = %d, want 0", pos)
	}
	if pos := PositionOf(entries, normal.ID); pos != 1 {
		t.Errorf("normal position = %d, want 1", pos)
	}
	if pos := PositionOf(entries, uuid.New()); pos != -1 {
		t.Errorf("unknown id position = %d, want -1", pos)
	}
}

func TestPriorityRank(t *testing.T) {
	if PriorityUrgent.Rank() >= PriorityHigh.Rank() {
		t.Error("urgent should outrank high")
	}
	if PriorityHigh.Rank() >= PriorityNormal.Rank() {
		t.Error("high should outrank normal")
	}
}

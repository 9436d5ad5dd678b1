package queues

import (
	"sort"

	"github.com/google/uuid"
)

// OrderWaiting sorts waiting entries into serving order in place.
// Higher priority is served first; within a priority level the earlier
// arrival wins. The sort is stable so equal keys keep their input order.
func OrderWaiting(entries []*QueueRecord) {
	sort.SliceStable(entries, func(i, j int) bool {
		ri, rj := entries[i].Priority.Rank(), entries[j].Priority.Rank()
		if ri != rj {
			return ri < rj
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
}

// EstimateWaitTimes computes the estimated wait for every waiting entry
// as position in serving order times the shop's average service minutes.
// The entry at the front of the line gets zero. Returns the estimates
// keyed by entry so callers can persist only the ones that changed.
func EstimateWaitTimes(entries []*QueueRecord, avgServiceMinutes int) map[*QueueRecord]int {
	if avgServiceMinutes < 0 {
		avgServiceMinutes = 0
	}

	ordered := make([]*QueueRecord, len(entries))
	copy(ordered, entries)
	OrderWaiting(ordered)

	estimates := make(map[*QueueRecord]int, len(ordered))
	for position, entry := range ordered {
		estimates[entry] = position * avgServiceMinutes
	}
	return estimates
}

// PositionOf returns the zero-based serving position of the given entry
// among the waiting entries, or -1 if it is not among them.
func PositionOf(entries []*QueueRecord, queueID uuid.UUID) int {
	ordered := make([]*QueueRecord, len(entries))
	copy(ordered, entries)
	OrderWaiting(ordered)

	for position, entry := range ordered {
		if entry.ID == queueID {
			return position
		}
	}
	return -1
}

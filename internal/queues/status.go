package queues

import "time"

// Status represents where a queue entry sits in its lifecycle
type Status string

const (
	StatusWaiting    Status = "WAITING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
	StatusNoShow     Status = "NO_SHOW"
)

// validTransitions is the closed transition table for queue entries.
// Terminal statuses have no outgoing edges.
var validTransitions = map[Status][]Status{
	StatusWaiting:    {StatusInProgress, StatusCancelled, StatusNoShow},
	StatusInProgress: {StatusCompleted, StatusCancelled, StatusNoShow},
	StatusCompleted:  {},
	StatusCancelled:  {},
	StatusNoShow:     {},
}

// IsValid checks whether the status is a known lifecycle status
func (s Status) IsValid() bool {
	switch s {
	case StatusWaiting, StatusInProgress, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed
func (s Status) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// CanTransitionTo checks if a status transition is allowed
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Transition moves a queue entry to the target status and applies the
// lifecycle side effects. A request for the current status is a no-op and
// returns changed=false so callers can skip the write entirely.
func Transition(q *QueueRecord, target Status, now time.Time) (bool, error) {
	if !target.IsValid() {
		return false, NewValidationError("status", "unknown status "+string(target))
	}

	if q.Status == target {
		return false, nil
	}

	if !q.Status.CanTransitionTo(target) {
		return false, NewInvalidTransitionError(q.ID, q.Status, target)
	}

	switch target {
	case StatusInProgress:
		// The customer is being called; the wait is over, record how long it was
		q.CalledAt = &now
		waited := int(now.Sub(q.CreatedAt).Minutes())
		if waited < 0 {
			waited = 0
		}
		q.ActualWaitMinutes = &waited

	case StatusCompleted:
		q.CompletedAt = &now

	case StatusCancelled, StatusNoShow:
		// Closing out of an unserved entry leaves actual wait unset
		q.CompletedAt = &now
	}

	q.Status = target
	q.UpdatedAt = now
	return true, nil
}

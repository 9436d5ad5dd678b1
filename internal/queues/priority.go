package queues

// Priority controls ordering within a shop's waiting queue
type Priority string

const (
	PriorityUrgent Priority = "URGENT"
	PriorityHigh   Priority = "HIGH"
	PriorityNormal Priority = "NORMAL"
)

// IsValid checks whether the priority is a known level
func (p Priority) IsValid() bool {
	switch p {
	case PriorityUrgent, PriorityHigh, PriorityNormal:
		return true
	}
	return false
}

// Rank maps priority to its ordering key. Lower rank is served first.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	default:
		return 2
	}
}

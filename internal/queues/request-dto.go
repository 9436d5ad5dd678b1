package queues

import "github.com/google/uuid"

// ServiceLineRequest is one requested service on a create request
type ServiceLineRequest struct {
	Name      string  `json:"name" validate:"required,min=1,max=255"`
	Quantity  int     `json:"quantity" validate:"required,min=1"`
	UnitPrice float64 `json:"unit_price" validate:"min=0"`
}

// CreateQueueRequest is the payload for joining a shop's queue
type CreateQueueRequest struct {
	CustomerID uuid.UUID            `json:"customer_id" validate:"required"`
	Priority   string               `json:"priority" validate:"omitempty,oneof=URGENT HIGH NORMAL"`
	Notes      string               `json:"notes" validate:"omitempty,max=1000"`
	Services   []ServiceLineRequest `json:"services" validate:"required,min=1,dive"`
}

// UpdateQueueRequest is the payload for mutating a single queue entry.
// All fields are optional; absent fields are left untouched. A non-nil
// Services list replaces the entry's service lines wholesale.
type UpdateQueueRequest struct {
	Status               *string              `json:"status" validate:"omitempty,oneof=WAITING IN_PROGRESS COMPLETED CANCELLED NO_SHOW"`
	Priority             *string              `json:"priority" validate:"omitempty,oneof=URGENT HIGH NORMAL"`
	EmployeeID           *uuid.UUID           `json:"employee_id"`
	Notes                *string              `json:"notes" validate:"omitempty,max=1000"`
	EstimatedWaitMinutes *int                 `json:"estimated_wait_minutes" validate:"omitempty,min=0"`
	Services             []ServiceLineRequest `json:"services" validate:"omitempty,min=1,dive"`
}

// ListQueuesRequest carries pagination and filtering for queue listings
type ListQueuesRequest struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Status string `form:"status" validate:"omitempty,oneof=WAITING IN_PROGRESS COMPLETED CANCELLED NO_SHOW"`
}

// BulkUpdateRequest applies one patch to a set of queue entries
type BulkUpdateRequest struct {
	QueueIDs []uuid.UUID        `json:"queue_ids" validate:"required,min=1,max=100"`
	Updates  UpdateQueueRequest `json:"updates"`
}

// BulkDeleteRequest removes a set of queue entries. Without force,
// in-progress and completed entries are protected and reported as
// failures instead of being removed.
type BulkDeleteRequest struct {
	QueueIDs []uuid.UUID `json:"queue_ids" validate:"required,min=1,max=100"`
	Force    bool        `json:"force"`
}

// BulkReassignRequest moves a set of queue entries to one target
// employee. When PreservePriority is false the shop's waiting order is
// renormalized afterwards.
type BulkReassignRequest struct {
	QueueIDs         []uuid.UUID `json:"queue_ids" validate:"required,min=1,max=100"`
	TargetEmployeeID uuid.UUID   `json:"target_employee_id" validate:"required"`
	Reason           string      `json:"reason" validate:"omitempty,max=500"`
	PreservePriority bool        `json:"preserve_priority"`
}

package queues

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidationError reports a request that failed input validation
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a validation error for a field
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError reports a missing entity
type NotFoundError struct {
	Resource string
	ID       uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// NewNotFoundError creates a not-found error for a resource
func NewNotFoundError(resource string, id uuid.UUID) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// InvalidTransitionError reports a status change the lifecycle forbids
type InvalidTransitionError struct {
	QueueID uuid.UUID
	From    Status
	To      Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("queue %s cannot transition from %s to %s", e.QueueID, e.From, e.To)
}

// NewInvalidTransitionError creates an invalid-transition error
func NewInvalidTransitionError(queueID uuid.UUID, from, to Status) error {
	return &InvalidTransitionError{QueueID: queueID, From: from, To: to}
}

// UnauthorizedError reports an access attempt outside the caller's shop
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string {
	return e.Message
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(message string) error {
	return &UnauthorizedError{Message: message}
}

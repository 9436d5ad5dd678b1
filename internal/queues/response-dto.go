package queues

import (
	"time"

	"github.com/google/uuid"
)

// ServiceLineResponse is one service line on a queue entry response
type ServiceLineResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
	LineTotal float64   `json:"line_total"`
}

// QueueResponse is the API view of a queue entry
type QueueResponse struct {
	ID          uuid.UUID  `json:"id"`
	ShopID      uuid.UUID  `json:"shop_id"`
	CustomerID  uuid.UUID  `json:"customer_id"`
	EmployeeID  *uuid.UUID `json:"employee_id,omitempty"`
	QueueNumber int        `json:"queue_number"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`

	EstimatedWaitMinutes int  `json:"estimated_wait_minutes"`
	ActualWaitMinutes    *int `json:"actual_wait_minutes,omitempty"`

	Notes       string                `json:"notes,omitempty"`
	Services    []ServiceLineResponse `json:"services"`
	Total       float64               `json:"total"`
	CalledAt    *time.Time            `json:"called_at,omitempty"`
	CompletedAt *time.Time            `json:"completed_at,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// ToQueueResponse converts a queue record to its API view
func ToQueueResponse(q *QueueRecord) *QueueResponse {
	services := make([]ServiceLineResponse, 0, len(q.Services))
	for _, line := range q.Services {
		services = append(services, ServiceLineResponse{
			ID:        line.ID,
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			LineTotal: line.LineTotal(),
		})
	}

	return &QueueResponse{
		ID:                   q.ID,
		ShopID:               q.ShopID,
		CustomerID:           q.CustomerID,
		EmployeeID:           q.EmployeeID,
		QueueNumber:          q.QueueNumber,
		Status:               q.Status,
		Priority:             q.Priority,
		EstimatedWaitMinutes: q.EstimatedWaitMinutes,
		ActualWaitMinutes:    q.ActualWaitMinutes,
		Notes:                q.Notes,
		Services:             services,
		Total:                q.Total(),
		CalledAt:             q.CalledAt,
		CompletedAt:          q.CompletedAt,
		CreatedAt:            q.CreatedAt,
		UpdatedAt:            q.UpdatedAt,
	}
}

// ToQueueResponses converts a slice of queue records
func ToQueueResponses(records []*QueueRecord) []*QueueResponse {
	responses := make([]*QueueResponse, 0, len(records))
	for _, q := range records {
		responses = append(responses, ToQueueResponse(q))
	}
	return responses
}

// PaginationMeta describes one page of a listing
type PaginationMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// PaginatedQueuesResponse is one page of a shop's queue listing
type PaginatedQueuesResponse struct {
	Queues     []*QueueResponse `json:"queues"`
	Pagination PaginationMeta   `json:"pagination"`
}

// StatusCounts breaks a period down by lifecycle status
type StatusCounts struct {
	Waiting    int64 `json:"waiting"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
	Cancelled  int64 `json:"cancelled"`
	NoShow     int64 `json:"no_show"`
	Total      int64 `json:"total"`
}

// PeriodStats is the aggregate for one period
type PeriodStats struct {
	Counts         StatusCounts `json:"counts"`
	AvgWaitMinutes float64      `json:"avg_wait_minutes"`
}

// QueueStatsResponse is the per-shop statistics view
type QueueStatsResponse struct {
	ShopID      uuid.UUID   `json:"shop_id"`
	Today       PeriodStats `json:"today"`
	AllTime     PeriodStats `json:"all_time"`
	GeneratedAt time.Time   `json:"generated_at"`
}

// BatchItemError reports why one item in a bulk operation failed
type BatchItemError struct {
	QueueID uuid.UUID `json:"queue_id"`
	Message string    `json:"message"`
}

// BatchSummary aggregates per-item outcomes of a bulk operation
type BatchSummary struct {
	Total                   int     `json:"total"`
	Succeeded               int     `json:"succeeded"`
	Failed                  int     `json:"failed"`
	SuccessRate             float64 `json:"success_rate"`
	AverageProcessingTimeMs float64 `json:"average_processing_time_ms"`
}

// BulkUpdateResult is the outcome of a bulk patch. Success is true only
// when every item succeeded.
type BulkUpdateResult struct {
	Success       bool             `json:"success"`
	UpdatedCount  int              `json:"updated_count"`
	FailedCount   int              `json:"failed_count"`
	UpdatedQueues []*QueueResponse `json:"updated_queues"`
	Errors        []BatchItemError `json:"errors"`
	Summary       BatchSummary     `json:"summary"`
}

// BulkDeleteResult is the outcome of a bulk delete
type BulkDeleteResult struct {
	DeletedQueues []uuid.UUID      `json:"deleted_queues"`
	FailedQueues  []BatchItemError `json:"failed_queues"`
	Summary       BatchSummary     `json:"summary"`
}

// BulkReassignResult is the outcome of a bulk reassignment
type BulkReassignResult struct {
	ReassignedQueues []*QueueResponse `json:"reassigned_queues"`
	FailedQueues     []BatchItemError `json:"failed_queues"`
	Summary          BatchSummary     `json:"summary"`
}

package queues

import (
	"context"
	"errors"
	"time"

	"queueflow/internal/audit"

	"github.com/google/uuid"
)

// BulkUpdateQueues applies one patch to every listed entry. Items are
// processed independently; a failed item never rolls back the others.
func (s *service) BulkUpdateQueues(ctx context.Context, shopID uuid.UUID, req *BulkUpdateRequest) (*BulkUpdateResult, error) {
	if _, err := s.getShop(ctx, shopID); err != nil {
		return nil, err
	}

	started := time.Now()
	result := &BulkUpdateResult{
		UpdatedQueues: make([]*QueueResponse, 0, len(req.QueueIDs)),
		Errors:        []BatchItemError{},
	}

	statusChanged := false
	for _, queueID := range req.QueueIDs {
		record, moved, err := s.applyUpdate(ctx, shopID, queueID, &req.Updates)
		if err != nil {
			result.Errors = append(result.Errors, itemError(queueID, err))
			s.log.LogBatchItemFailure(ctx, "bulk_update", queueID.String(), err)
			continue
		}
		statusChanged = statusChanged || moved
		result.UpdatedQueues = append(result.UpdatedQueues, ToQueueResponse(record))
	}

	result.UpdatedCount = len(result.UpdatedQueues)
	result.FailedCount = len(result.Errors)
	result.Success = result.FailedCount == 0
	result.Summary = summarize(len(req.QueueIDs), result.UpdatedCount, started)

	refresh := statusChanged || req.Updates.Priority != nil
	s.finishBatch(ctx, shopID, "bulk_update", result.Summary, refresh)

	return result, nil
}

// BulkDeleteQueues removes the listed entries. Without force, in-flight
// and completed entries are protected against accidental loss and end up
// in failedQueues instead.
func (s *service) BulkDeleteQueues(ctx context.Context, shopID uuid.UUID, req *BulkDeleteRequest) (*BulkDeleteResult, error) {
	if _, err := s.getShop(ctx, shopID); err != nil {
		return nil, err
	}

	started := time.Now()
	result := &BulkDeleteResult{
		DeletedQueues: make([]uuid.UUID, 0, len(req.QueueIDs)),
		FailedQueues:  []BatchItemError{},
	}

	for _, queueID := range req.QueueIDs {
		record, err := s.getShopQueue(ctx, shopID, queueID)
		if err != nil {
			result.FailedQueues = append(result.FailedQueues, itemError(queueID, err))
			s.log.LogBatchItemFailure(ctx, "bulk_delete", queueID.String(), err)
			continue
		}

		protected := record.Status == StatusInProgress || record.Status == StatusCompleted
		if protected && !req.Force {
			err := NewValidationError("status", "cannot delete active/completed queue without force")
			result.FailedQueues = append(result.FailedQueues, itemError(queueID, err))
			s.log.LogBatchItemFailure(ctx, "bulk_delete", queueID.String(), err)
			continue
		}

		if err := s.repo.Delete(ctx, queueID); err != nil {
			if errors.Is(err, ErrQueueNotFound) {
				err = NewNotFoundError("queue", queueID)
			}
			result.FailedQueues = append(result.FailedQueues, itemError(queueID, err))
			s.log.LogBatchItemFailure(ctx, "bulk_delete", queueID.String(), err)
			continue
		}

		result.DeletedQueues = append(result.DeletedQueues, queueID)
		s.publishEvent(ctx, audit.NewQueueEvent(audit.EventQueueDeleted, shopID, queueID).
			WithPayload(map[string]interface{}{"status": string(record.Status)}))
	}

	result.Summary = summarize(len(req.QueueIDs), len(result.DeletedQueues), started)
	s.finishBatch(ctx, shopID, "bulk_delete", result.Summary, true)

	return result, nil
}

// BulkReassignQueues moves every listed entry to one target employee.
// Only active entries can be reassigned. The target employee is resolved
// up front; an unknown or foreign employee fails the whole call before
// any item is touched.
func (s *service) BulkReassignQueues(ctx context.Context, shopID uuid.UUID, req *BulkReassignRequest) (*BulkReassignResult, error) {
	if _, err := s.getShop(ctx, shopID); err != nil {
		return nil, err
	}
	if err := s.checkEmployee(ctx, shopID, req.TargetEmployeeID); err != nil {
		return nil, err
	}

	started := time.Now()
	result := &BulkReassignResult{
		ReassignedQueues: make([]*QueueResponse, 0, len(req.QueueIDs)),
		FailedQueues:     []BatchItemError{},
	}

	for _, queueID := range req.QueueIDs {
		record, err := s.getShopQueue(ctx, shopID, queueID)
		if err != nil {
			result.FailedQueues = append(result.FailedQueues, itemError(queueID, err))
			s.log.LogBatchItemFailure(ctx, "bulk_reassign", queueID.String(), err)
			continue
		}

		if !record.IsActive() {
			err := NewValidationError("status", "cannot reassign a closed entry")
			result.FailedQueues = append(result.FailedQueues, itemError(queueID, err))
			s.log.LogBatchItemFailure(ctx, "bulk_reassign", queueID.String(), err)
			continue
		}

		employeeID := req.TargetEmployeeID
		record.EmployeeID = &employeeID
		record.UpdatedAt = time.Now().UTC()
		if err := s.repo.Update(ctx, record); err != nil {
			result.FailedQueues = append(result.FailedQueues, itemError(queueID, err))
			s.log.LogBatchItemFailure(ctx, "bulk_reassign", queueID.String(), err)
			continue
		}

		result.ReassignedQueues = append(result.ReassignedQueues, ToQueueResponse(record))
		s.publishEvent(ctx, audit.NewQueueEvent(audit.EventQueueReassigned, shopID, queueID).
			WithPayload(map[string]interface{}{
				"employee_id": req.TargetEmployeeID.String(),
				"reason":      req.Reason,
			}))
	}

	result.Summary = summarize(len(req.QueueIDs), len(result.ReassignedQueues), started)
	s.finishBatch(ctx, shopID, "bulk_reassign", result.Summary, !req.PreservePriority)

	return result, nil
}

// summarize builds the per-operation outcome counters
func summarize(total, succeeded int, started time.Time) BatchSummary {
	summary := BatchSummary{
		Total:     total,
		Succeeded: succeeded,
		Failed:    total - succeeded,
	}
	if total > 0 {
		summary.SuccessRate = float64(succeeded) / float64(total)
		summary.AverageProcessingTimeMs = float64(time.Since(started).Milliseconds()) / float64(total)
	}
	return summary
}

// itemError flattens a typed error into a per-item batch failure
func itemError(queueID uuid.UUID, err error) BatchItemError {
	return BatchItemError{QueueID: queueID, Message: err.Error()}
}

// finishBatch logs the summary, emits the batch event and, when the
// waiting order may have shifted, refreshes estimates
func (s *service) finishBatch(ctx context.Context, shopID uuid.UUID, operation string, summary BatchSummary, refreshEstimates bool) {
	s.log.LogBatchSummary(ctx, operation, summary.Total, summary.Succeeded, summary.Failed)
	s.publishEvent(ctx, audit.NewQueueEvent(audit.EventBatchCompleted, shopID, uuid.Nil).
		WithPayload(map[string]interface{}{
			"operation":    operation,
			"total":        summary.Total,
			"succeeded":    summary.Succeeded,
			"failed":       summary.Failed,
			"success_rate": summary.SuccessRate,
		}))

	if refreshEstimates {
		if _, err := s.RefreshEstimates(ctx, shopID); err != nil {
			s.log.Warn("Failed to refresh estimates", "shop_id", shopID.String(), "error", err)
		}
	}
	s.invalidateCaches(ctx, shopID)
}

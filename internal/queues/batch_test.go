package queues

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func strPtr(s string) *string {
	return &s
}

func TestBulkUpdateMixedOutcomes(t *testing.T) {
	svc, _, shop := setupService(t)

	waiting := createEntry(t, svc, shop.ID, "")
	completed := createEntry(t, svc, shop.ID, "")

	for _, status := range []string{string(StatusInProgress), string(StatusCompleted)} {
		if _, err := svc.UpdateQueue(context.Background(), shop.ID, completed.ID, &UpdateQueueRequest{Status: strPtr(status)}); err != nil {
			t.Fatalf("setup transition failed: %v", err)
		}
	}

	missing := uuid.New()
	result, err := svc.BulkUpdateQueues(context.Background(), shop.ID, &BulkUpdateRequest{
		QueueIDs: []uuid.UUID{waiting.ID, completed.ID, missing},
		Updates:  UpdateQueueRequest{Status: strPtr(string(StatusCancelled))},
	})
	if err != nil {
		t.Fatalf("bulk update failed: %v", err)
	}

	if result.UpdatedCount != 1 {
		t.Fatalf("updated_count = %d, want 1", result.UpdatedCount)
	}
	if result.FailedCount != 2 {
		t.Fatalf("failed_count = %d, want 2", result.FailedCount)
	}
	if result.Success {
		t.Fatal("success should be false with failures present")
	}
	if result.UpdatedCount+result.FailedCount != len(result.UpdatedQueues)+len(result.Errors) {
		t.Fatalf("counts do not match slices: %+v", result)
	}
	if result.Summary.Succeeded+result.Summary.Failed != result.Summary.Total {
		t.Fatalf("summary does not add up: %+v", result.Summary)
	}
	if result.UpdatedQueues[0].Status != StatusCancelled {
		t.Fatalf("status = %s, want %s", result.UpdatedQueues[0].Status, StatusCancelled)
	}

	// The terminal entry and the missing entry keep their own failure records
	failedIDs := map[uuid.UUID]bool{}
	for _, itemErr := range result.Errors {
		failedIDs[itemErr.QueueID] = true
	}
	if !failedIDs[completed.ID] || !failedIDs[missing] {
		t.Fatalf("unexpected failed ids: %v", result.Errors)
	}
}

func TestBulkUpdateDoesNotRollBackOthers(t *testing.T) {
	svc, _, shop := setupService(t)

	first := createEntry(t, svc, shop.ID, "")
	second := createEntry(t, svc, shop.ID, "")

	result, err := svc.BulkUpdateQueues(context.Background(), shop.ID, &BulkUpdateRequest{
		QueueIDs: []uuid.UUID{first.ID, uuid.New(), second.ID},
		Updates:  UpdateQueueRequest{Status: strPtr(string(StatusNoShow))},
	})
	if err != nil {
		t.Fatalf("bulk update failed: %v", err)
	}
	if result.UpdatedCount != 2 {
		t.Fatalf("updated_count = %d, want 2", result.UpdatedCount)
	}

	for _, id := range []uuid.UUID{first.ID, second.ID} {
		reloaded, err := svc.GetQueueByID(context.Background(), shop.ID, id)
		if err != nil {
			t.Fatalf("reload failed: %v", err)
		}
		if reloaded.Status != StatusNoShow {
			t.Fatalf("entry %s status = %s, want %s", id, reloaded.Status, StatusNoShow)
		}
	}
}

func TestBulkUpdateAllSucceedSetsSuccess(t *testing.T) {
	svc, _, shop := setupService(t)

	entry := createEntry(t, svc, shop.ID, "")
	result, err := svc.BulkUpdateQueues(context.Background(), shop.ID, &BulkUpdateRequest{
		QueueIDs: []uuid.UUID{entry.ID},
		Updates:  UpdateQueueRequest{Notes: strPtr("regular customer")},
	})
	if err != nil {
		t.Fatalf("bulk update failed: %v", err)
	}
	if !result.Success {
		t.Fatal("success should be true with no failures")
	}
	if result.UpdatedQueues[0].Notes != "regular customer" {
		t.Fatalf("notes = %q", result.UpdatedQueues[0].Notes)
	}
}

func TestBulkDeleteProtectsInFlightWithoutForce(t *testing.T) {
	svc, _, shop := setupService(t)

	waiting := createEntry(t, svc, shop.ID, "")
	inProgress := createEntry(t, svc, shop.ID, "")

	if _, err := svc.UpdateQueue(context.Background(), shop.ID, inProgress.ID, &UpdateQueueRequest{Status: strPtr(string(StatusInProgress))}); err != nil {
		t.Fatalf("setup transition failed: %v", err)
	}

	result, err := svc.BulkDeleteQueues(context.Background(), shop.ID, &BulkDeleteRequest{
		QueueIDs: []uuid.UUID{waiting.ID, inProgress.ID},
	})
	if err != nil {
		t.Fatalf("bulk delete failed: %v", err)
	}

	if len(result.DeletedQueues) != 1 || result.DeletedQueues[0] != waiting.ID {
		t.Fatalf("deleted = %v, want only %s", result.DeletedQueues, waiting.ID)
	}
	if len(result.FailedQueues) != 1 || result.FailedQueues[0].QueueID != inProgress.ID {
		t.Fatalf("failed = %v, want only %s", result.FailedQueues, inProgress.ID)
	}
	if result.Summary.SuccessRate != 0.5 {
		t.Fatalf("success_rate = %v, want 0.5", result.Summary.SuccessRate)
	}

	// The in-flight entry is still there
	if _, err := svc.GetQueueByID(context.Background(), shop.ID, inProgress.ID); err != nil {
		t.Fatalf("in-flight entry should survive: %v", err)
	}
}

func TestBulkDeleteProtectsCompletedWithoutForce(t *testing.T) {
	svc, _, shop := setupService(t)

	completed := createEntry(t, svc, shop.ID, "")
	for _, status := range []string{string(StatusInProgress), string(StatusCompleted)} {
		if _, err := svc.UpdateQueue(context.Background(), shop.ID, completed.ID, &UpdateQueueRequest{Status: strPtr(status)}); err != nil {
			t.Fatalf("setup transition failed: %v", err)
		}
	}
	cancelled := createEntry(t, svc, shop.ID, "")
	if _, err := svc.UpdateQueue(context.Background(), shop.ID, cancelled.ID, &UpdateQueueRequest{Status: strPtr(string(StatusCancelled))}); err != nil {
		t.Fatalf("setup transition failed: %v", err)
	}

	result, err := svc.BulkDeleteQueues(context.Background(), shop.ID, &BulkDeleteRequest{
		QueueIDs: []uuid.UUID{completed.ID, cancelled.ID},
	})
	if err != nil {
		t.Fatalf("bulk delete failed: %v", err)
	}

	if len(result.DeletedQueues) != 1 || result.DeletedQueues[0] != cancelled.ID {
		t.Fatalf("deleted = %v, want only the cancelled entry", result.DeletedQueues)
	}
	if len(result.FailedQueues) != 1 || result.FailedQueues[0].QueueID != completed.ID {
		t.Fatalf("failed = %v, want only the completed entry", result.FailedQueues)
	}
}

func TestBulkDeleteForceRemovesProtected(t *testing.T) {
	svc, _, shop := setupService(t)

	inProgress := createEntry(t, svc, shop.ID, "")
	if _, err := svc.UpdateQueue(context.Background(), shop.ID, inProgress.ID, &UpdateQueueRequest{Status: strPtr(string(StatusInProgress))}); err != nil {
		t.Fatalf("setup transition failed: %v", err)
	}

	result, err := svc.BulkDeleteQueues(context.Background(), shop.ID, &BulkDeleteRequest{
		QueueIDs: []uuid.UUID{inProgress.ID},
		Force:    true,
	})
	if err != nil {
		t.Fatalf("bulk delete failed: %v", err)
	}
	if len(result.DeletedQueues) != 1 {
		t.Fatalf("deleted = %d, want 1", len(result.DeletedQueues))
	}
	if result.Summary.SuccessRate != 1 {
		t.Fatalf("success_rate = %v, want 1", result.Summary.SuccessRate)
	}
}

func TestBulkReassign(t *testing.T) {
	svc, db, shop := setupService(t)
	employee := seedEmployee(t, db, shop.ID)

	active := createEntry(t, svc, shop.ID, "")
	closed := createEntry(t, svc, shop.ID, "")

	if _, err := svc.UpdateQueue(context.Background(), shop.ID, closed.ID, &UpdateQueueRequest{Status: strPtr(string(StatusNoShow))}); err != nil {
		t.Fatalf("setup transition failed: %v", err)
	}

	result, err := svc.BulkReassignQueues(context.Background(), shop.ID, &BulkReassignRequest{
		QueueIDs:         []uuid.UUID{active.ID, closed.ID},
		TargetEmployeeID: employee.ID,
		Reason:           "shift change",
	})
	if err != nil {
		t.Fatalf("bulk reassign failed: %v", err)
	}

	if len(result.ReassignedQueues) != 1 {
		t.Fatalf("reassigned = %d, want 1", len(result.ReassignedQueues))
	}
	if result.ReassignedQueues[0].EmployeeID == nil || *result.ReassignedQueues[0].EmployeeID != employee.ID {
		t.Fatalf("employee_id = %v, want %s", result.ReassignedQueues[0].EmployeeID, employee.ID)
	}
	if len(result.FailedQueues) != 1 || result.FailedQueues[0].QueueID != closed.ID {
		t.Fatalf("failed = %v, want closed entry failure", result.FailedQueues)
	}
}

func TestBulkReassignRejectsOutsideEmployee(t *testing.T) {
	svc, db, shop := setupService(t)
	other := seedShop(t, db, 15)
	outsider := seedEmployee(t, db, other.ID)

	active := createEntry(t, svc, shop.ID, "")

	// A foreign target employee stops the batch before any item runs
	_, err := svc.BulkReassignQueues(context.Background(), shop.ID, &BulkReassignRequest{
		QueueIDs:         []uuid.UUID{active.ID},
		TargetEmployeeID: outsider.ID,
	})
	if err == nil {
		t.Fatal("expected foreign employee to fail the whole call")
	}

	reloaded, err := svc.GetQueueByID(context.Background(), shop.ID, active.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.EmployeeID != nil {
		t.Fatalf("employee_id = %v, want nil", reloaded.EmployeeID)
	}
}

func TestBulkUpdateUnknownShop(t *testing.T) {
	svc, _, shop := setupService(t)
	queue := createEntry(t, svc, shop.ID, "")

	_, err := svc.BulkUpdateQueues(context.Background(), uuid.New(), &BulkUpdateRequest{
		QueueIDs: []uuid.UUID{queue.ID},
		Updates:  UpdateQueueRequest{Status: strPtr(string(StatusCancelled))},
	})
	if err == nil {
		t.Fatal("expected unknown shop to fail the whole call")
	}
}

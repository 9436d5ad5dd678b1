package queues

import (
	"context"
	"errors"
	"testing"

	"queueflow/internal/shops"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testSchema = []string{
	`CREATE TABLE shops (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		timezone TEXT DEFAULT 'UTC',
		avg_service_minutes INTEGER DEFAULT 15,
		active NUMERIC DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE employees (
		id TEXT PRIMARY KEY,
		shop_id TEXT NOT NULL,
		display_name TEXT NOT NULL,
		role TEXT DEFAULT 'STAFF',
		active NUMERIC DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE queues (
		id TEXT PRIMARY KEY,
		shop_id TEXT NOT NULL,
		customer_id TEXT NOT NULL,
		employee_id TEXT,
		queue_number INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'WAITING',
		priority TEXT NOT NULL DEFAULT 'NORMAL',
		estimated_wait_minutes INTEGER NOT NULL DEFAULT 0,
		actual_wait_minutes INTEGER,
		notes TEXT,
		called_at DATETIME,
		completed_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE queue_services (
		id TEXT PRIMARY KEY,
		queue_id TEXT NOT NULL,
		name TEXT NOT NULL,
		quantity INTEGER NOT NULL DEFAULT 1,
		unit_price REAL NOT NULL DEFAULT 0,
		created_at DATETIME
	)`,
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	for _, stmt := range testSchema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("failed to create schema: %v", err)
		}
	}

	return db
}

func seedShop(t *testing.T, db *gorm.DB, avgServiceMinutes int) *shops.Shop {
	t.Helper()

	shop := &shops.Shop{
		ID:                uuid.New(),
		Name:              "Fade Factory",
		Timezone:          "UTC",
		AvgServiceMinutes: avgServiceMinutes,
		Active:            true,
	}
	if err := db.Create(shop).Error; err != nil {
		t.Fatalf("failed to seed shop: %v", err)
	}
	return shop
}

func seedEmployee(t *testing.T, db *gorm.DB, shopID uuid.UUID) *shops.Employee {
	t.Helper()

	employee := &shops.Employee{
		ID:          uuid.New(),
		ShopID:      shopID,
		DisplayName: "Sam",
		Role:        "STAFF",
		Active:      true,
	}
	if err := db.Create(employee).Error; err != nil {
		t.Fatalf("failed to seed employee: %v", err)
	}
	return employee
}

func setupService(t *testing.T) (Service, *gorm.DB, *shops.Shop) {
	t.Helper()

	db := setupTestDB(t)
	shop := seedShop(t, db, 15)

	repo := NewRepository(db, nil)
	shopsRepo := shops.NewRepository(db)
	svc := NewService(repo, shopsRepo, nil, nil, ServiceConfig{
		DefaultAvgServiceMinutes: 15,
		MaxPageLimit:             100,
	})
	return svc, db, shop
}

func createEntry(t *testing.T, svc Service, shopID uuid.UUID, priority string) *QueueResponse {
	t.Helper()

	req := &CreateQueueRequest{
		CustomerID: uuid.New(),
		Priority:   priority,
		Services: []ServiceLineRequest{
			{Name: "Haircut", Quantity: 1, UnitPrice: 30},
		},
	}
	queue, err := svc.CreateQueue(context.Background(), shopID, req)
	if err != nil {
		t.Fatalf("failed to create queue entry: %v", err)
	}
	return queue
}

func TestCreateQueueStartsWaiting(t *testing.T) {
	svc, _, shop := setupService(t)

	first := createEntry(t, svc, shop.ID, "")
	if first.Status != StatusWaiting {
		t.Fatalf("status = %s, want %s", first.Status, StatusWaiting)
	}
	if first.Priority != PriorityNormal {
		t.Fatalf("priority = %s, want %s", first.Priority, PriorityNormal)
	}
	if first.QueueNumber != 1 {
		t.Fatalf("queue_number = %d, want 1", first.QueueNumber)
	}
	if first.EstimatedWaitMinutes != 0 {
		t.Fatalf("estimate = %d, want 0 for the front of the line", first.EstimatedWaitMinutes)
	}

	second := createEntry(t, svc, shop.ID, "")
	if second.QueueNumber != 2 {
		t.Fatalf("queue_number = %d, want 2", second.QueueNumber)
	}
	if second.EstimatedWaitMinutes != 15 {
		t.Fatalf("estimate = %d, want 15 with one entry ahead", second.EstimatedWaitMinutes)
	}
}

func TestCreateQueueUrgentJumpsLine(t *testing.T) {
	svc, _, shop := setupService(t)

	normal := createEntry(t, svc, shop.ID, "")
	urgent := createEntry(t, svc, shop.ID, string(PriorityUrgent))

	if urgent.EstimatedWaitMinutes != 0 {
		t.Fatalf("urgent estimate = %d, want 0", urgent.EstimatedWaitMinutes)
	}

	reloaded, err := svc.GetQueueByID(context.Background(), shop.ID, normal.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.EstimatedWaitMinutes != 15 {
		t.Fatalf("normal estimate = %d, want 15 after being jumped", reloaded.EstimatedWaitMinutes)
	}
}

func TestCreateQueueComputesTotal(t *testing.T) {
	svc, _, shop := setupService(t)

	queue, err := svc.CreateQueue(context.Background(), shop.ID, &CreateQueueRequest{
		CustomerID: uuid.New(),
		Services: []ServiceLineRequest{
			{Name: "Haircut", Quantity: 1, UnitPrice: 30},
			{Name: "Beard Trim", Quantity: 2, UnitPrice: 10},
		},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if queue.Total != 50 {
		t.Fatalf("total = %v, want 50", queue.Total)
	}
	if len(queue.Services) != 2 {
		t.Fatalf("services = %d, want 2", len(queue.Services))
	}
}

func TestCreateQueueUrgentWithQuantities(t *testing.T) {
	svc, _, shop := setupService(t)

	queue, err := svc.CreateQueue(context.Background(), shop.ID, &CreateQueueRequest{
		CustomerID: uuid.New(),
		Priority:   string(PriorityUrgent),
		Services: []ServiceLineRequest{
			{Name: "Color Treatment", Quantity: 2, UnitPrice: 50},
		},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if queue.Total != 100 {
		t.Fatalf("total = %v, want 100", queue.Total)
	}
	if queue.Status != StatusWaiting {
		t.Fatalf("status = %s, want %s", queue.Status, StatusWaiting)
	}
	if queue.CalledAt != nil || queue.CompletedAt != nil {
		t.Fatal("timestamps should be unset at creation")
	}
}

func TestUpdateQueueReplacesServices(t *testing.T) {
	svc, _, shop := setupService(t)
	queue := createEntry(t, svc, shop.ID, "")

	updated, err := svc.UpdateQueue(context.Background(), shop.ID, queue.ID, &UpdateQueueRequest{
		Services: []ServiceLineRequest{
			{Name: "Shave", Quantity: 1, UnitPrice: 15},
			{Name: "Hot Towel", Quantity: 1, UnitPrice: 5},
		},
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if len(updated.Services) != 2 {
		t.Fatalf("services = %d, want 2", len(updated.Services))
	}
	if updated.Total != 20 {
		t.Fatalf("total = %v, want 20", updated.Total)
	}

	reloaded, err := svc.GetQueueByID(context.Background(), shop.ID, queue.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if len(reloaded.Services) != 2 || reloaded.Total != 20 {
		t.Fatalf("replacement not persisted: %d services, total %v", len(reloaded.Services), reloaded.Total)
	}
}

func TestCreateQueueRejectsBadInput(t *testing.T) {
	svc, db, shop := setupService(t)

	cases := []struct {
		name string
		req  *CreateQueueRequest
	}{
		{"missing customer", &CreateQueueRequest{
			Services: []ServiceLineRequest{{Name: "Haircut", Quantity: 1}},
		}},
		{"nil services", &CreateQueueRequest{
			CustomerID: uuid.New(),
		}},
		{"empty services", &CreateQueueRequest{
			CustomerID: uuid.New(),
			Services:   []ServiceLineRequest{},
		}},
		{"blank service name", &CreateQueueRequest{
			CustomerID: uuid.New(),
			Services:   []ServiceLineRequest{{Name: "", Quantity: 1}},
		}},
		{"zero quantity", &CreateQueueRequest{
			CustomerID: uuid.New(),
			Services:   []ServiceLineRequest{{Name: "Haircut", Quantity: 0}},
		}},
		{"negative price", &CreateQueueRequest{
			CustomerID: uuid.New(),
			Services:   []ServiceLineRequest{{Name: "Haircut", Quantity: 1, UnitPrice: -5}},
		}},
	}

	for _, tc := range cases {
		_, err := svc.CreateQueue(context.Background(), shop.ID, tc.req)
		var validationErr *ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("%s: error = %v, want *ValidationError", tc.name, err)
		}
	}

	// Nothing slipped into the waiting pool
	var count int64
	if err := db.Model(&QueueRecord{}).Where("shop_id = ?", shop.ID).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("queue entries = %d, want 0 after rejected requests", count)
	}
}

func TestUpdateQueueRejectsEmptyServices(t *testing.T) {
	svc, _, shop := setupService(t)
	queue := createEntry(t, svc, shop.ID, "")

	_, err := svc.UpdateQueue(context.Background(), shop.ID, queue.ID, &UpdateQueueRequest{
		Services: []ServiceLineRequest{},
	})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}

	reloaded, err := svc.GetQueueByID(context.Background(), shop.ID, queue.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if len(reloaded.Services) != 1 {
		t.Fatalf("services = %d, want the original line kept", len(reloaded.Services))
	}
}

func TestUpdateWithServicesMissingRecord(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, nil)

	ghost := &QueueRecord{ID: uuid.New(), ShopID: uuid.New(), Status: StatusWaiting, Priority: PriorityNormal}
	lines := []ServiceLine{{ID: uuid.New(), QueueID: ghost.ID, Name: "Shave", Quantity: 1, UnitPrice: 15}}

	err := repo.UpdateWithServices(context.Background(), ghost, lines)
	if !errors.Is(err, ErrQueueNotFound) {
		t.Fatalf("error = %v, want ErrQueueNotFound", err)
	}

	// The rolled back transaction left no orphan lines behind
	var count int64
	if err := db.Model(&ServiceLine{}).Where("queue_id = ?", ghost.ID).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("orphan lines = %d, want 0", count)
	}
}

func TestCreateQueueUnknownShop(t *testing.T) {
	svc, _, _ := setupService(t)

	_, err := svc.CreateQueue(context.Background(), uuid.New(), &CreateQueueRequest{
		CustomerID: uuid.New(),
		Services:   []ServiceLineRequest{{Name: "Haircut", Quantity: 1}},
	})
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %v, want *NotFoundError", err)
	}
}

func TestGetQueueScopedToShop(t *testing.T) {
	svc, db, shop := setupService(t)
	other := seedShop(t, db, 15)

	queue := createEntry(t, svc, shop.ID, "")

	if _, err := svc.GetQueueByID(context.Background(), shop.ID, queue.ID); err != nil {
		t.Fatalf("owner lookup failed: %v", err)
	}

	_, err := svc.GetQueueByID(context.Background(), other.ID, queue.ID)
	var unauthorized *UnauthorizedError
	if !errors.As(err, &unauthorized) {
		t.Fatalf("error = %v, want *UnauthorizedError", err)
	}
}

func TestUpdateQueueCallPersistsSideEffects(t *testing.T) {
	svc, _, shop := setupService(t)
	queue := createEntry(t, svc, shop.ID, "")

	status := string(StatusInProgress)
	updated, err := svc.UpdateQueue(context.Background(), shop.ID, queue.ID, &UpdateQueueRequest{Status: &status})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Status != StatusInProgress {
		t.Fatalf("status = %s, want %s", updated.Status, StatusInProgress)
	}
	if updated.CalledAt == nil {
		t.Fatal("called_at should be set")
	}
	if updated.ActualWaitMinutes == nil {
		t.Fatal("actual_wait_minutes should be set")
	}

	reloaded, err := svc.GetQueueByID(context.Background(), shop.ID, queue.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Status != StatusInProgress || reloaded.CalledAt == nil {
		t.Fatal("call side effects were not persisted")
	}
}

func TestUpdateQueueSameStatusIsNoOp(t *testing.T) {
	svc, _, shop := setupService(t)
	queue := createEntry(t, svc, shop.ID, "")

	before, err := svc.GetQueueByID(context.Background(), shop.ID, queue.ID)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}

	status := string(StatusWaiting)
	if _, err := svc.UpdateQueue(context.Background(), shop.ID, queue.ID, &UpdateQueueRequest{Status: &status}); err != nil {
		t.Fatalf("no-op update failed: %v", err)
	}

	after, err := svc.GetQueueByID(context.Background(), shop.ID, queue.ID)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Fatalf("updated_at moved on a no-op: %v -> %v", before.UpdatedAt, after.UpdatedAt)
	}
}

func TestUpdateQueueTerminalRejected(t *testing.T) {
	svc, _, shop := setupService(t)
	queue := createEntry(t, svc, shop.ID, "")

	for _, status := range []string{string(StatusInProgress), string(StatusCompleted)} {
		s := status
		if _, err := svc.UpdateQueue(context.Background(), shop.ID, queue.ID, &UpdateQueueRequest{Status: &s}); err != nil {
			t.Fatalf("transition to %s failed: %v", s, err)
		}
	}

	status := string(StatusWaiting)
	_, err := svc.UpdateQueue(context.Background(), shop.ID, queue.ID, &UpdateQueueRequest{Status: &status})
	var transitionErr *InvalidTransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("error = %v, want *InvalidTransitionError", err)
	}
}

func TestUpdateQueueAssignEmployee(t *testing.T) {
	svc, db, shop := setupService(t)
	employee := seedEmployee(t, db, shop.ID)
	queue := createEntry(t, svc, shop.ID, "")

	updated, err := svc.UpdateQueue(context.Background(), shop.ID, queue.ID, &UpdateQueueRequest{EmployeeID: &employee.ID})
	if err != nil {
		t.Fatalf("assignment failed: %v", err)
	}
	if updated.EmployeeID == nil || *updated.EmployeeID != employee.ID {
		t.Fatalf("employee_id = %v, want %s", updated.EmployeeID, employee.ID)
	}

	other := seedShop(t, db, 15)
	outsider := seedEmployee(t, db, other.ID)

	_, err = svc.UpdateQueue(context.Background(), shop.ID, queue.ID, &UpdateQueueRequest{EmployeeID: &outsider.ID})
	var unauthorized *UnauthorizedError
	if !errors.As(err, &unauthorized) {
		t.Fatalf("error = %v, want *UnauthorizedError", err)
	}
}

func TestDeleteQueueTwiceReportsNotFound(t *testing.T) {
	svc, _, shop := setupService(t)
	queue := createEntry(t, svc, shop.ID, "")

	if err := svc.DeleteQueue(context.Background(), shop.ID, queue.ID); err != nil {
		t.Fatalf("first delete failed: %v", err)
	}

	err := svc.DeleteQueue(context.Background(), shop.ID, queue.ID)
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %v, want *NotFoundError", err)
	}
}

func TestListQueuesPagination(t *testing.T) {
	svc, _, shop := setupService(t)
	for i := 0; i < 3; i++ {
		createEntry(t, svc, shop.ID, "")
	}

	page, err := svc.GetQueuesPaginated(context.Background(), shop.ID, &ListQueuesRequest{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(page.Queues) != 2 {
		t.Fatalf("page size = %d, want 2", len(page.Queues))
	}
	if page.Pagination.Total != 3 {
		t.Fatalf("total = %d, want 3", page.Pagination.Total)
	}
	if page.Pagination.TotalPages != 2 {
		t.Fatalf("total_pages = %d, want 2", page.Pagination.TotalPages)
	}

	last, err := svc.GetQueuesPaginated(context.Background(), shop.ID, &ListQueuesRequest{Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(last.Queues) != 1 {
		t.Fatalf("last page size = %d, want 1", len(last.Queues))
	}
}

func TestListQueuesRejectsBadPagination(t *testing.T) {
	svc, _, shop := setupService(t)

	var validationErr *ValidationError

	_, err := svc.GetQueuesPaginated(context.Background(), shop.ID, &ListQueuesRequest{Page: -1, Limit: 10})
	if !errors.As(err, &validationErr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}

	_, err = svc.GetQueuesPaginated(context.Background(), shop.ID, &ListQueuesRequest{Page: 1, Limit: -5})
	if !errors.As(err, &validationErr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
}

func TestListQueuesCapsLimit(t *testing.T) {
	svc, _, shop := setupService(t)
	createEntry(t, svc, shop.ID, "")

	page, err := svc.GetQueuesPaginated(context.Background(), shop.ID, &ListQueuesRequest{Page: 1, Limit: 500})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if page.Pagination.Limit != 100 {
		t.Fatalf("limit = %d, want capped at 100", page.Pagination.Limit)
	}
}

func TestListQueuesFiltersByStatus(t *testing.T) {
	svc, _, shop := setupService(t)
	queue := createEntry(t, svc, shop.ID, "")
	createEntry(t, svc, shop.ID, "")

	status := string(StatusInProgress)
	if _, err := svc.UpdateQueue(context.Background(), shop.ID, queue.ID, &UpdateQueueRequest{Status: &status}); err != nil {
		t.Fatalf("transition failed: %v", err)
	}

	page, err := svc.GetQueuesPaginated(context.Background(), shop.ID, &ListQueuesRequest{Status: string(StatusWaiting)})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(page.Queues) != 1 {
		t.Fatalf("filtered page size = %d, want 1", len(page.Queues))
	}
	if page.Queues[0].Status != StatusWaiting {
		t.Fatalf("status = %s, want %s", page.Queues[0].Status, StatusWaiting)
	}
}

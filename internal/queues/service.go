package queues

import (
	"context"
	"errors"
	"fmt"
	"time"

	"queueflow/internal/audit"
	"queueflow/internal/shared/constants"
	"queueflow/internal/shops"
	"queueflow/pkg/cache"
	"queueflow/pkg/logger"

	"github.com/google/uuid"
)

// Service defines the business logic contract for the queue engine
type Service interface {
	CreateQueue(ctx context.Context, shopID uuid.UUID, req *CreateQueueRequest) (*QueueResponse, error)
	GetQueueByID(ctx context.Context, shopID, queueID uuid.UUID) (*QueueResponse, error)
	GetQueuesPaginated(ctx context.Context, shopID uuid.UUID, req *ListQueuesRequest) (*PaginatedQueuesResponse, error)
	UpdateQueue(ctx context.Context, shopID, queueID uuid.UUID, req *UpdateQueueRequest) (*QueueResponse, error)
	DeleteQueue(ctx context.Context, shopID, queueID uuid.UUID) error

	GetQueueStats(ctx context.Context, shopID uuid.UUID) (*QueueStatsResponse, error)
	RefreshEstimates(ctx context.Context, shopID uuid.UUID) (int, error)

	BulkUpdateQueues(ctx context.Context, shopID uuid.UUID, req *BulkUpdateRequest) (*BulkUpdateResult, error)
	BulkDeleteQueues(ctx context.Context, shopID uuid.UUID, req *BulkDeleteRequest) (*BulkDeleteResult, error)
	BulkReassignQueues(ctx context.Context, shopID uuid.UUID, req *BulkReassignRequest) (*BulkReassignResult, error)
}

type service struct {
	repo      Repository
	shopsRepo shops.Repository
	publisher audit.Publisher
	cache     cache.Service

	defaultAvgServiceMinutes int
	maxPageLimit             int
	log                      *logger.Logger
}

// ServiceConfig tunes the queue engine
type ServiceConfig struct {
	DefaultAvgServiceMinutes int
	MaxPageLimit             int
}

// NewService creates a new queue service. Publisher and cache are
// optional; pass nil to run without the audit stream or caching.
func NewService(repo Repository, shopsRepo shops.Repository, publisher audit.Publisher, cacheService cache.Service, cfg ServiceConfig) Service {
	if cfg.DefaultAvgServiceMinutes <= 0 {
		cfg.DefaultAvgServiceMinutes = 15
	}
	if cfg.MaxPageLimit <= 0 {
		cfg.MaxPageLimit = 100
	}

	return &service{
		repo:                     repo,
		shopsRepo:                shopsRepo,
		publisher:                publisher,
		cache:                    cacheService,
		defaultAvgServiceMinutes: cfg.DefaultAvgServiceMinutes,
		maxPageLimit:             cfg.MaxPageLimit,
		log:                      logger.GetDefault(),
	}
}

// CreateQueue adds a customer to a shop's queue. The entry starts out
// waiting with the next daily ticket number and an estimate based on the
// current line length.
func (s *service) CreateQueue(ctx context.Context, shopID uuid.UUID, req *CreateQueueRequest) (*QueueResponse, error) {
	if req.CustomerID == uuid.Nil {
		return nil, NewValidationError("customer_id", "customer is required")
	}
	if err := validateServiceLines(req.Services); err != nil {
		return nil, err
	}

	shop, err := s.getShop(ctx, shopID)
	if err != nil {
		return nil, err
	}

	priority := PriorityNormal
	if req.Priority != "" {
		priority = Priority(req.Priority)
		if !priority.IsValid() {
			return nil, NewValidationError("priority", "unknown priority "+req.Priority)
		}
	}

	now := time.Now().UTC()

	queueNumber, err := s.repo.NextQueueNumber(ctx, shopID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to assign queue number: %w", err)
	}

	waiting, err := s.repo.ListByShop(ctx, shopID, StatusWaiting)
	if err != nil {
		return nil, err
	}

	services := make([]ServiceLine, 0, len(req.Services))
	for _, line := range req.Services {
		services = append(services, ServiceLine{
			ID:        uuid.New(),
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}

	record := &QueueRecord{
		ID:          uuid.New(),
		ShopID:      shopID,
		CustomerID:  req.CustomerID,
		QueueNumber: queueNumber,
		Status:      StatusWaiting,
		Priority:    priority,
		Notes:       req.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
		Services:    services,
	}

	// Slot the newcomer into the serving order; a high-priority arrival
	// lands ahead of the back of the line
	estimates := EstimateWaitTimes(append(waiting, record), s.avgServiceMinutes(shop))
	record.EstimatedWaitMinutes = estimates[record]

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}

	// Entries the newcomer jumped ahead of shifted back one slot
	shifted := make(map[uuid.UUID]int)
	for entry, minutes := range estimates {
		if entry != record && entry.EstimatedWaitMinutes != minutes {
			shifted[entry.ID] = minutes
		}
	}
	if len(shifted) > 0 {
		if err := s.repo.UpdateEstimates(ctx, shifted); err != nil {
			s.log.Warn("Failed to shift estimates", "shop_id", shopID.String(), "error", err)
		}
	}

	s.log.LogQueueCreated(ctx, record.ID.String(), shopID.String(), queueNumber)
	s.publishEvent(ctx, audit.NewQueueEvent(audit.EventQueueCreated, shopID, record.ID).
		WithPayload(map[string]interface{}{
			"queue_number": queueNumber,
			"priority":     string(priority),
		}))
	s.invalidateCaches(ctx, shopID)

	return ToQueueResponse(record), nil
}

// GetQueueByID fetches a single queue entry scoped to the shop
func (s *service) GetQueueByID(ctx context.Context, shopID, queueID uuid.UUID) (*QueueResponse, error) {
	record, err := s.getShopQueue(ctx, shopID, queueID)
	if err != nil {
		return nil, err
	}
	return ToQueueResponse(record), nil
}

// GetQueuesPaginated lists a shop's queue entries, newest first
func (s *service) GetQueuesPaginated(ctx context.Context, shopID uuid.UUID, req *ListQueuesRequest) (*PaginatedQueuesResponse, error) {
	page, limit := req.Page, req.Limit
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = 20
	}
	if page < 1 {
		return nil, NewValidationError("page", "must be at least 1")
	}
	if limit < 1 {
		return nil, NewValidationError("limit", "must be at least 1")
	}
	if limit > s.maxPageLimit {
		limit = s.maxPageLimit
	}

	status := Status(req.Status)
	if req.Status != "" && !status.IsValid() {
		return nil, NewValidationError("status", "unknown status "+req.Status)
	}

	cacheKey := fmt.Sprintf("%s%s:status:%s:page:%d:limit:%d",
		constants.CACHE_KEY_QUEUE_LIST, shopID, req.Status, page, limit)
	if s.cache != nil {
		var cached PaginatedQueuesResponse
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	records, total, err := s.repo.ListPaginated(ctx, shopID, status, page, limit)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	result := &PaginatedQueuesResponse{
		Queues: ToQueueResponses(records),
		Pagination: PaginationMeta{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, result, constants.TTL_QUEUE_LIST); err != nil {
			s.log.Warn("Failed to cache queue list", "error", err)
		}
	}

	return result, nil
}

// UpdateQueue applies a partial update to a queue entry. A status equal
// to the current one is a no-op; nothing is written and the entry is
// returned unchanged.
func (s *service) UpdateQueue(ctx context.Context, shopID, queueID uuid.UUID, req *UpdateQueueRequest) (*QueueResponse, error) {
	record, statusChanged, err := s.applyUpdate(ctx, shopID, queueID, req)
	if err != nil {
		return nil, err
	}

	// Leaving the waiting pool or changing priority shifts everyone behind
	if statusChanged || req.Priority != nil {
		if _, err := s.RefreshEstimates(ctx, shopID); err != nil {
			s.log.Warn("Failed to refresh estimates", "shop_id", shopID.String(), "error", err)
		}
	}
	s.invalidateCaches(ctx, shopID)

	return ToQueueResponse(record), nil
}

// applyUpdate performs the patch on one entry and persists it. It does
// not refresh estimates or invalidate caches; single and bulk callers
// handle that themselves.
func (s *service) applyUpdate(ctx context.Context, shopID, queueID uuid.UUID, req *UpdateQueueRequest) (*QueueRecord, bool, error) {
	record, err := s.getShopQueue(ctx, shopID, queueID)
	if err != nil {
		return nil, false, err
	}

	now := time.Now().UTC()
	changed := false
	statusChanged := false
	fromStatus := record.Status

	if req.Status != nil {
		moved, err := Transition(record, Status(*req.Status), now)
		if err != nil {
			return nil, false, err
		}
		changed = changed || moved
		statusChanged = moved
	}

	if req.Priority != nil {
		priority := Priority(*req.Priority)
		if !priority.IsValid() {
			return nil, false, NewValidationError("priority", "unknown priority "+*req.Priority)
		}
		if record.Priority != priority {
			if !record.IsActive() {
				return nil, false, NewValidationError("priority", "cannot change priority of a closed entry")
			}
			record.Priority = priority
			changed = true
		}
	}

	if req.EmployeeID != nil {
		if err := s.checkEmployee(ctx, shopID, *req.EmployeeID); err != nil {
			return nil, false, err
		}
		if record.EmployeeID == nil || *record.EmployeeID != *req.EmployeeID {
			record.EmployeeID = req.EmployeeID
			changed = true
		}
	}

	if req.Notes != nil && record.Notes != *req.Notes {
		record.Notes = *req.Notes
		changed = true
	}

	if req.EstimatedWaitMinutes != nil && record.EstimatedWaitMinutes != *req.EstimatedWaitMinutes {
		record.EstimatedWaitMinutes = *req.EstimatedWaitMinutes
		changed = true
	}

	var newLines []ServiceLine
	if req.Services != nil {
		if err := validateServiceLines(req.Services); err != nil {
			return nil, false, err
		}
		newLines = make([]ServiceLine, 0, len(req.Services))
		for _, line := range req.Services {
			newLines = append(newLines, ServiceLine{
				ID:        uuid.New(),
				QueueID:   queueID,
				Name:      line.Name,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
			})
		}
		changed = true
	}

	if !changed {
		return record, false, nil
	}

	record.UpdatedAt = now
	if newLines != nil {
		// Line replacement and the record write commit or fail together
		if err := s.repo.UpdateWithServices(ctx, record, newLines); err != nil {
			return nil, false, err
		}
		record.Services = newLines
	} else {
		if err := s.repo.Update(ctx, record); err != nil {
			return nil, false, err
		}
	}

	if statusChanged {
		s.log.LogTransition(ctx, queueID.String(), string(fromStatus), string(record.Status))
		s.publishEvent(ctx, audit.NewQueueEvent(audit.EventQueueTransitioned, shopID, queueID).
			WithStatusChange(string(fromStatus), string(record.Status)))
	} else {
		s.publishEvent(ctx, audit.NewQueueEvent(audit.EventQueueUpdated, shopID, queueID))
	}

	return record, statusChanged, nil
}

// DeleteQueue removes a queue entry. Deleting an already deleted entry
// reports not found.
func (s *service) DeleteQueue(ctx context.Context, shopID, queueID uuid.UUID) error {
	record, err := s.getShopQueue(ctx, shopID, queueID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, queueID); err != nil {
		if errors.Is(err, ErrQueueNotFound) {
			return NewNotFoundError("queue", queueID)
		}
		return err
	}

	s.log.LogQueueDeleted(ctx, queueID.String(), shopID.String())
	s.publishEvent(ctx, audit.NewQueueEvent(audit.EventQueueDeleted, shopID, queueID).
		WithPayload(map[string]interface{}{
			"status":       string(record.Status),
			"queue_number": record.QueueNumber,
		}))

	if record.Status == StatusWaiting {
		if _, err := s.RefreshEstimates(ctx, shopID); err != nil {
			s.log.Warn("Failed to refresh estimates", "shop_id", shopID.String(), "error", err)
		}
	}
	s.invalidateCaches(ctx, shopID)

	return nil
}

// getShop loads the shop or maps its absence to a typed not-found error
func (s *service) getShop(ctx context.Context, shopID uuid.UUID) (*shops.Shop, error) {
	shop, err := s.shopsRepo.GetShop(ctx, shopID)
	if err != nil {
		if errors.Is(err, shops.ErrShopNotFound) {
			return nil, NewNotFoundError("shop", shopID)
		}
		return nil, err
	}
	return shop, nil
}

// getShopQueue loads a queue entry and enforces shop ownership
func (s *service) getShopQueue(ctx context.Context, shopID, queueID uuid.UUID) (*QueueRecord, error) {
	record, err := s.repo.GetByID(ctx, queueID)
	if err != nil {
		if errors.Is(err, ErrQueueNotFound) {
			return nil, NewNotFoundError("queue", queueID)
		}
		return nil, err
	}
	if record.ShopID != shopID {
		return nil, NewUnauthorizedError("queue entry belongs to another shop")
	}
	return record, nil
}

// checkEmployee verifies the employee exists and works at the shop
func (s *service) checkEmployee(ctx context.Context, shopID, employeeID uuid.UUID) error {
	employee, err := s.shopsRepo.GetEmployee(ctx, employeeID)
	if err != nil {
		if errors.Is(err, shops.ErrEmployeeNotFound) {
			return NewNotFoundError("employee", employeeID)
		}
		return err
	}
	if employee.ShopID != shopID {
		return NewUnauthorizedError("employee belongs to another shop")
	}
	return nil
}

// validateServiceLines rejects an empty list and malformed lines. Every
// record that reaches the waiting pool carries at least one valid line.
func validateServiceLines(lines []ServiceLineRequest) error {
	if len(lines) == 0 {
		return NewValidationError("services", "at least one service is required")
	}
	for _, line := range lines {
		if line.Name == "" {
			return NewValidationError("services", "service name is required")
		}
		if line.Quantity < 1 {
			return NewValidationError("services", "quantity must be at least 1")
		}
		if line.UnitPrice < 0 {
			return NewValidationError("services", "unit price cannot be negative")
		}
	}
	return nil
}

func (s *service) avgServiceMinutes(shop *shops.Shop) int {
	if shop.AvgServiceMinutes > 0 {
		return shop.AvgServiceMinutes
	}
	return s.defaultAvgServiceMinutes
}

func (s *service) publishEvent(ctx context.Context, event *audit.QueueEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishQueueEvent(ctx, event); err != nil {
		s.log.ErrorWithContext(ctx, "Failed to publish queue event", err, map[string]interface{}{
			"event_type": string(event.Type),
			"shop_id":    event.ShopID.String(),
		})
	}
}

func (s *service) invalidateCaches(ctx context.Context, shopID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, constants.CACHE_KEY_QUEUE_STATS+shopID.String()); err != nil {
		s.log.Warn("Failed to invalidate stats cache", "error", err)
	}
	if err := s.cache.DeletePattern(ctx, constants.CACHE_KEY_QUEUE_LIST+shopID.String()+":*"); err != nil {
		s.log.Warn("Failed to invalidate list cache", "error", err)
	}
}

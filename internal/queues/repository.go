package queues

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"queueflow/internal/shared/constants"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var ErrQueueNotFound = errors.New("queue entry not found")

// Repository defines the persistence contract for queue entries
type Repository interface {
	Create(ctx context.Context, q *QueueRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*QueueRecord, error)
	Update(ctx context.Context, q *QueueRecord) error
	Delete(ctx context.Context, id uuid.UUID) error

	ListByShop(ctx context.Context, shopID uuid.UUID, statuses ...Status) ([]*QueueRecord, error)
	ListPaginated(ctx context.Context, shopID uuid.UUID, status Status, page, limit int) ([]*QueueRecord, int64, error)

	UpdateWithServices(ctx context.Context, q *QueueRecord, services []ServiceLine) error

	NextQueueNumber(ctx context.Context, shopID uuid.UUID, day time.Time) (int, error)
	UpdateEstimates(ctx context.Context, estimates map[uuid.UUID]int) error

	CountByStatus(ctx context.Context, shopID uuid.UUID, since *time.Time) (map[Status]int64, error)
	AverageActualWait(ctx context.Context, shopID uuid.UUID, since *time.Time) (float64, error)
	ShopsWithWaiting(ctx context.Context) ([]uuid.UUID, error)
}

type repository struct {
	db    *gorm.DB
	redis *redis.Client
}

// NewRepository creates a new queue repository. The Redis client may be
// nil, in which case queue numbers fall back to a database scan.
func NewRepository(db *gorm.DB, redisClient *redis.Client) Repository {
	return &repository{db: db, redis: redisClient}
}

func (r *repository) Create(ctx context.Context, q *QueueRecord) error {
	if err := r.db.WithContext(ctx).Create(q).Error; err != nil {
		return fmt.Errorf("failed to create queue entry: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*QueueRecord, error) {
	var record QueueRecord
	err := r.db.WithContext(ctx).
		Preload("Services").
		Where("id = ?", id).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQueueNotFound
		}
		return nil, fmt.Errorf("failed to get queue entry: %w", err)
	}
	return &record, nil
}

func (r *repository) Update(ctx context.Context, q *QueueRecord) error {
	result := r.db.WithContext(ctx).
		Model(&QueueRecord{}).
		Where("id = ?", q.ID).
		Select("status", "priority", "employee_id", "notes",
			"estimated_wait_minutes", "actual_wait_minutes",
			"called_at", "completed_at", "updated_at").
		Updates(q)
	if result.Error != nil {
		return fmt.Errorf("failed to update queue entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrQueueNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&QueueRecord{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete queue entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrQueueNotFound
	}
	return nil
}

func (r *repository) ListByShop(ctx context.Context, shopID uuid.UUID, statuses ...Status) ([]*QueueRecord, error) {
	query := r.db.WithContext(ctx).
		Preload("Services").
		Where("shop_id = ?", shopID)

	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	var records []*QueueRecord
	if err := query.Order("created_at ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list queue entries: %w", err)
	}
	return records, nil
}

func (r *repository) ListPaginated(ctx context.Context, shopID uuid.UUID, status Status, page, limit int) ([]*QueueRecord, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&QueueRecord{}).
		Where("shop_id = ?", shopID)

	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count queue entries: %w", err)
	}

	var records []*QueueRecord
	err := query.
		Preload("Services").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list queue entries: %w", err)
	}

	return records, total, nil
}

// UpdateWithServices writes the record and swaps its service lines in
// one transaction, so a failed write never leaves the entry with the
// new lines but the old fields or vice versa.
func (r *repository) UpdateWithServices(ctx context.Context, q *QueueRecord, services []ServiceLine) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&QueueRecord{}).
			Where("id = ?", q.ID).
			Select("status", "priority", "employee_id", "notes",
				"estimated_wait_minutes", "actual_wait_minutes",
				"called_at", "completed_at", "updated_at").
			Updates(q)
		if result.Error != nil {
			return fmt.Errorf("failed to update queue entry: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrQueueNotFound
		}

		if err := tx.Where("queue_id = ?", q.ID).Delete(&ServiceLine{}).Error; err != nil {
			return fmt.Errorf("failed to clear service lines: %w", err)
		}
		if err := tx.Create(&services).Error; err != nil {
			return fmt.Errorf("failed to insert service lines: %w", err)
		}
		return nil
	})
}

// NextQueueNumber returns the next ticket number for a shop's day. Redis
// INCR on a daily key keeps the sequence monotonic across instances; the
// key expires after two days so sequences reset naturally.
func (r *repository) NextQueueNumber(ctx context.Context, shopID uuid.UUID, day time.Time) (int, error) {
	if r.redis != nil {
		key := constants.SEQ_KEY_QUEUE_NUMBER + shopID.String() + ":" + day.Format("2006-01-02")
		number, err := r.redis.Incr(ctx, key).Result()
		if err != nil {
			return 0, fmt.Errorf("failed to increment queue number: %w", err)
		}
		if number == 1 {
			r.redis.Expire(ctx, key, constants.TTL_QUEUE_NUMBER)
		}
		return int(number), nil
	}

	// No Redis wired (single-instance and test setups): scan today's max
	startOfDay := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	var max sql.NullInt64
	err := r.db.WithContext(ctx).
		Model(&QueueRecord{}).
		Where("shop_id = ? AND created_at >= ?", shopID, startOfDay).
		Select("MAX(queue_number)").
		Scan(&max).Error
	if err != nil {
		return 0, fmt.Errorf("failed to scan queue numbers: %w", err)
	}
	return int(max.Int64) + 1, nil
}

func (r *repository) UpdateEstimates(ctx context.Context, estimates map[uuid.UUID]int) error {
	if len(estimates) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for id, minutes := range estimates {
			err := tx.Model(&QueueRecord{}).
				Where("id = ?", id).
				Update("estimated_wait_minutes", minutes).Error
			if err != nil {
				return fmt.Errorf("failed to update estimate for %s: %w", id, err)
			}
		}
		return nil
	})
}

func (r *repository) CountByStatus(ctx context.Context, shopID uuid.UUID, since *time.Time) (map[Status]int64, error) {
	type row struct {
		Status Status
		Count  int64
	}

	query := r.db.WithContext(ctx).
		Model(&QueueRecord{}).
		Select("status, COUNT(*) as count").
		Where("shop_id = ?", shopID)

	if since != nil {
		query = query.Where("created_at >= ?", *since)
	}

	var rows []row
	if err := query.Group("status").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[Status]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// AverageActualWait averages the recorded wait of served entries.
// Entries that were never called have no actual wait and are excluded.
func (r *repository) AverageActualWait(ctx context.Context, shopID uuid.UUID, since *time.Time) (float64, error) {
	query := r.db.WithContext(ctx).
		Model(&QueueRecord{}).
		Select("AVG(actual_wait_minutes)").
		Where("shop_id = ? AND actual_wait_minutes IS NOT NULL", shopID)

	if since != nil {
		query = query.Where("created_at >= ?", *since)
	}

	var avg sql.NullFloat64
	if err := query.Scan(&avg).Error; err != nil {
		return 0, fmt.Errorf("failed to average actual wait: %w", err)
	}
	if !avg.Valid {
		return 0, nil
	}
	return avg.Float64, nil
}

func (r *repository) ShopsWithWaiting(ctx context.Context) ([]uuid.UUID, error) {
	var shopIDs []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&QueueRecord{}).
		Where("status = ?", StatusWaiting).
		Distinct("shop_id").
		Pluck("shop_id", &shopIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list shops with waiting entries: %w", err)
	}
	return shopIDs, nil
}

package queues

import (
	"context"
	"time"

	"queueflow/internal/shared/constants"
	"queueflow/internal/shops"

	"github.com/google/uuid"
)

// GetQueueStats aggregates a shop's queue counts and average waits for
// today and all time. Today starts at midnight in the shop's timezone.
func (s *service) GetQueueStats(ctx context.Context, shopID uuid.UUID) (*QueueStatsResponse, error) {
	shop, err := s.getShop(ctx, shopID)
	if err != nil {
		return nil, err
	}

	cacheKey := constants.CACHE_KEY_QUEUE_STATS + shopID.String()
	if s.cache != nil {
		var cached QueueStatsResponse
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	startOfDay := shopStartOfDay(shop, time.Now())

	today, err := s.periodStats(ctx, shopID, &startOfDay)
	if err != nil {
		return nil, err
	}
	allTime, err := s.periodStats(ctx, shopID, nil)
	if err != nil {
		return nil, err
	}

	stats := &QueueStatsResponse{
		ShopID:      shopID,
		Today:       *today,
		AllTime:     *allTime,
		GeneratedAt: time.Now().UTC(),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, stats, constants.TTL_QUEUE_STATS); err != nil {
			s.log.Warn("Failed to cache queue stats", "error", err)
		}
	}

	return stats, nil
}

// periodStats computes the aggregate for one period. A nil since means
// all time.
func (s *service) periodStats(ctx context.Context, shopID uuid.UUID, since *time.Time) (*PeriodStats, error) {
	counts, err := s.repo.CountByStatus(ctx, shopID, since)
	if err != nil {
		return nil, err
	}

	avgWait, err := s.repo.AverageActualWait(ctx, shopID, since)
	if err != nil {
		return nil, err
	}

	statusCounts := StatusCounts{
		Waiting:    counts[StatusWaiting],
		InProgress: counts[StatusInProgress],
		Completed:  counts[StatusCompleted],
		Cancelled:  counts[StatusCancelled],
		NoShow:     counts[StatusNoShow],
	}
	statusCounts.Total = statusCounts.Waiting + statusCounts.InProgress +
		statusCounts.Completed + statusCounts.Cancelled + statusCounts.NoShow

	return &PeriodStats{
		Counts:         statusCounts,
		AvgWaitMinutes: avgWait,
	}, nil
}

// RefreshEstimates recomputes estimated waits for a shop's waiting
// entries and persists only the ones that moved. Returns how many
// entries were updated.
func (s *service) RefreshEstimates(ctx context.Context, shopID uuid.UUID) (int, error) {
	shop, err := s.getShop(ctx, shopID)
	if err != nil {
		return 0, err
	}

	waiting, err := s.repo.ListByShop(ctx, shopID, StatusWaiting)
	if err != nil {
		return 0, err
	}
	if len(waiting) == 0 {
		return 0, nil
	}

	estimates := EstimateWaitTimes(waiting, s.avgServiceMinutes(shop))

	changed := make(map[uuid.UUID]int)
	for entry, minutes := range estimates {
		if entry.EstimatedWaitMinutes != minutes {
			changed[entry.ID] = minutes
		}
	}
	if len(changed) == 0 {
		return 0, nil
	}

	if err := s.repo.UpdateEstimates(ctx, changed); err != nil {
		return 0, err
	}
	return len(changed), nil
}

// shopStartOfDay computes midnight today in the shop's timezone,
// falling back to UTC when the timezone is missing or invalid
func shopStartOfDay(shop *shops.Shop, now time.Time) time.Time {
	loc := time.UTC
	if shop.Timezone != "" {
		if parsed, err := time.LoadLocation(shop.Timezone); err == nil {
			loc = parsed
		}
	}
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

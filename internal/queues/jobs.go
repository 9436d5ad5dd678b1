package queues

import (
	"context"
	"time"

	"queueflow/pkg/logger"
)

// EstimateRefresher periodically recomputes estimated waits for every
// shop that has customers waiting. Estimates drift as entries complete
// or cancel between writes; the refresher keeps them honest.
type EstimateRefresher struct {
	service  Service
	repo     Repository
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
	log      *logger.Logger
}

// NewEstimateRefresher creates the background estimate job
func NewEstimateRefresher(service Service, repo Repository, interval time.Duration) *EstimateRefresher {
	if interval <= 0 {
		interval = time.Minute
	}
	return &EstimateRefresher{
		service:  service,
		repo:     repo,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		log:      logger.GetDefault(),
	}
}

// Start launches the refresh loop in its own goroutine
func (j *EstimateRefresher) Start() {
	go j.run()
	j.log.Info("Estimate refresher started", "interval", j.interval.String())
}

// Stop signals the loop to exit and waits for the current pass to finish
func (j *EstimateRefresher) Stop() {
	close(j.stop)
	<-j.done
	j.log.Info("Estimate refresher stopped")
}

func (j *EstimateRefresher) run() {
	defer close(j.done)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.stop:
			return
		case <-ticker.C:
			j.refreshAll()
		}
	}
}

func (j *EstimateRefresher) refreshAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	shopIDs, err := j.repo.ShopsWithWaiting(ctx)
	if err != nil {
		j.log.Error("Failed to list shops with waiting entries", "error", err)
		return
	}

	for _, shopID := range shopIDs {
		updated, err := j.service.RefreshEstimates(ctx, shopID)
		if err != nil {
			j.log.Error("Failed to refresh estimates", "shop_id", shopID.String(), "error", err)
			continue
		}
		if updated > 0 {
			j.log.Debug("Estimates refreshed", "shop_id", shopID.String(), "updated", updated)
		}
	}
}

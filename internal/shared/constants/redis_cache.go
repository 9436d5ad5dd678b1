package constants

import "time"

// Redis key and TTL conventions for the queueflow application.
// Pattern: queueflow:{module}:{operation}:{identifier}

const (
	CACHE_PREFIX = "queueflow"
)

// ================== QUEUES MODULE ==================

const (
	// Per-shop queue statistics
	CACHE_KEY_QUEUE_STATS = CACHE_PREFIX + ":queues:stats:shop:" // + shop-id

	// Paginated queue listings
	CACHE_KEY_QUEUE_LIST = CACHE_PREFIX + ":queues:list:shop:" // + shop-id:page:X:limit:Y

	// Per-shop daily queue number sequence
	SEQ_KEY_QUEUE_NUMBER = CACHE_PREFIX + ":queues:number:shop:" // + shop-id:day
)

const (
	TTL_QUEUE_STATS = 1 * time.Minute
	TTL_QUEUE_LIST  = 30 * time.Second

	// Daily sequence keys survive one rollover before expiring
	TTL_QUEUE_NUMBER = 48 * time.Hour
)

// ================== SHOPS MODULE ==================

const (
	CACHE_KEY_SHOP_DETAIL = CACHE_PREFIX + ":shops:detail:uuid:" // + shop-id
)

const (
	TTL_SHOP_DETAIL = 1 * time.Hour
)

package queues

import (
	"time"

	"github.com/google/uuid"
)

// QueueRecord is one customer's place in a shop's queue for a single day
type QueueRecord struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ShopID     uuid.UUID  `json:"shop_id" gorm:"type:uuid;not null;index:idx_queues_shop_status"`
	CustomerID uuid.UUID  `json:"customer_id" gorm:"type:uuid;not null;index"`
	EmployeeID *uuid.UUID `json:"employee_id" gorm:"type:uuid;index"`

	QueueNumber int      `json:"queue_number" gorm:"not null"`
	Status      Status   `json:"status" gorm:"type:varchar(20);not null;default:'WAITING';index:idx_queues_shop_status"`
	Priority    Priority `json:"priority" gorm:"type:varchar(10);not null;default:'NORMAL'"`

	EstimatedWaitMinutes int    `json:"estimated_wait_minutes" gorm:"not null;default:0"`
	ActualWaitMinutes    *int   `json:"actual_wait_minutes"`
	Notes                string `json:"notes" gorm:"type:text"`

	CalledAt    *time.Time `json:"called_at"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	Services []ServiceLine `json:"services" gorm:"foreignKey:QueueID;constraint:OnDelete:CASCADE"`
}

func (QueueRecord) TableName() string {
	return "queues"
}

// IsActive reports whether the entry still occupies a queue slot
func (q *QueueRecord) IsActive() bool {
	return q.Status == StatusWaiting || q.Status == StatusInProgress
}

// Total sums the line totals of all requested services
func (q *QueueRecord) Total() float64 {
	var total float64
	for _, line := range q.Services {
		total += line.LineTotal()
	}
	return total
}

// ServiceLine is one requested service on a queue entry
type ServiceLine struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	QueueID   uuid.UUID `json:"queue_id" gorm:"type:uuid;not null;index"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Quantity  int       `json:"quantity" gorm:"not null;default:1"`
	UnitPrice float64   `json:"unit_price" gorm:"type:decimal(10,2);not null;default:0"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (ServiceLine) TableName() string {
	return "queue_services"
}

// LineTotal is quantity times unit price
func (s *ServiceLine) LineTotal() float64 {
	return float64(s.Quantity) * s.UnitPrice
}

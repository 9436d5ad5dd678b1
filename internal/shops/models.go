package shops

import (
	"time"

	"github.com/google/uuid"
)

// Shop represents a tenant whose service line the queue engine manages.
// AvgServiceMinutes feeds the wait-time estimator; it is maintained by the
// shop owner (or derived from historical stats) outside the queue core.
type Shop struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name              string    `gorm:"type:varchar(120);not null" json:"name"`
	Timezone          string    `gorm:"type:varchar(64);default:'UTC'" json:"timezone"`
	AvgServiceMinutes int       `gorm:"not null;default:15" json:"avg_service_minutes"`
	Active            bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Employee represents a staff member who can serve queues and be the target
// of a bulk reassignment.
type Employee struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ShopID      uuid.UUID `gorm:"type:uuid;not null;index" json:"shop_id"`
	DisplayName string    `gorm:"type:varchar(120);not null" json:"display_name"`
	Role        string    `gorm:"type:varchar(20);default:'STAFF'" json:"role"`
	Active      bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName sets the table name for Shop
func (Shop) TableName() string {
	return "shops"
}

// TableName sets the table name for Employee
func (Employee) TableName() string {
	return "employees"
}

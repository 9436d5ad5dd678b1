package database

import (
	"queueflow/internal/queues"
	"queueflow/internal/shops"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&shops.Shop{},
		&shops.Employee{},
		&queues.QueueRecord{},
		&queues.ServiceLine{},
	)
}

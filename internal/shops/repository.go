package shops

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrShopNotFound     = errors.New("shop not found")
	ErrEmployeeNotFound = errors.New("employee not found")
)

// Repository exposes the read-side the queue engine needs from the shop domain
type Repository interface {
	GetShop(ctx context.Context, id uuid.UUID) (*Shop, error)
	GetEmployee(ctx context.Context, id uuid.UUID) (*Employee, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new shops repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetShop(ctx context.Context, id uuid.UUID) (*Shop, error) {
	var shop Shop
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&shop).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShopNotFound
		}
		return nil, fmt.Errorf("failed to get shop: %w", err)
	}
	return &shop, nil
}

func (r *repository) GetEmployee(ctx context.Context, id uuid.UUID) (*Employee, error) {
	var employee Employee
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&employee).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return &employee, nil
}

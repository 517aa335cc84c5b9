package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"promptmarket/internal/model"
)

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, orderID string) (*model.Order, error)
	// MarkCaptured transitions an order into CAPTURED, guarded on the
	// current status still being non-terminal. Returns the number of rows
	// updated; zero means a concurrent call won the transition.
	MarkCaptured(ctx context.Context, tx *gorm.DB, orderID string) (int64, error)
	MarkFailed(ctx context.Context, orderID string) error
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepoImpl) FindByID(ctx context.Context, orderID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("id = ?", orderID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) MarkCaptured(ctx context.Context, tx *gorm.DB, orderID string) (int64, error) {
	result := tx.WithContext(ctx).Model(&model.Order{}).
		Where(`
			id = ?
			AND status IN ?
		`,
			orderID,
			[]model.OrderStatus{model.OrderInitiated, model.OrderApproved},
		).
		Updates(map[string]interface{}{
			"status":     model.OrderCaptured,
			"updated_at": time.Now(),
		})

	return result.RowsAffected, result.Error
}

func (r *orderRepoImpl) MarkFailed(ctx context.Context, orderID string) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Where("status IN ?", []model.OrderStatus{model.OrderInitiated, model.OrderApproved}).
		Updates(map[string]interface{}{
			"status":     model.OrderFailed,
			"updated_at": time.Now(),
		}).Error
}

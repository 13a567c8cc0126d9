package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type OrderLineGormRepository struct {
	db *gorm.DB
}

func NewOrderLineGormRepository(db *gorm.DB) *OrderLineGormRepository {
	return &OrderLineGormRepository{db: db}
}

// 挿入順で返す（伝票の表示順）。
func (r *OrderLineGormRepository) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderLine, error) {
	var lines []model.OrderLine
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id asc").
		Find(&lines).Error
	if err != nil {
		return []model.OrderLine{}, err
	}
	return lines, nil
}

func (r *OrderLineGormRepository) FindByID(ctx context.Context, lineID int64) (model.OrderLine, error) {
	var l model.OrderLine
	err := r.db.WithContext(ctx).Where("id = ?", lineID).First(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.OrderLine{}, repo.ErrNotFound
	}
	if err != nil {
		return model.OrderLine{}, err
	}
	return l, nil
}

func (r *OrderLineGormRepository) FindByOrderAndMenuItem(ctx context.Context, orderID int64, menuItemID int64) (model.OrderLine, bool, error) {
	var l model.OrderLine
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND menu_item_id = ?", orderID, menuItemID).
		First(&l).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.OrderLine{}, false, nil
	}
	if err != nil {
		return model.OrderLine{}, false, err
	}
	return l, true, nil
}

func (r *OrderLineGormRepository) Create(ctx context.Context, line model.OrderLine) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&line).Error; err != nil {
		return 0, err
	}
	return line.ID, nil
}

func (r *OrderLineGormRepository) UpdateQuantity(ctx context.Context, lineID int64, qty int64) error {
	res := r.db.WithContext(ctx).Model(&model.OrderLine{}).
		Where("id = ?", lineID).
		Update("quantity", qty)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderLineGormRepository) DeleteByID(ctx context.Context, lineID int64) error {
	res := r.db.WithContext(ctx).
		Where("id = ?", lineID).
		Delete(&model.OrderLine{})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

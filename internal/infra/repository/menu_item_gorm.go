package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type MenuItemGormRepository struct {
	db *gorm.DB
}

// DI
func NewMenuItemGormRepository(db *gorm.DB) *MenuItemGormRepository {
	return &MenuItemGormRepository{db: db}
}

func (r *MenuItemGormRepository) FindByID(ctx context.Context, menuItemID int64) (model.MenuItem, error) {
	var m model.MenuItem
	err := r.db.WithContext(ctx).Where("id = ?", menuItemID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.MenuItem{}, repo.ErrNotFound
	}
	if err != nil {
		return model.MenuItem{}, err
	}
	return m, nil
}

func (r *MenuItemGormRepository) List(ctx context.Context, q repo.MenuItemListQuery) ([]model.MenuItem, error) {
	db := r.db.WithContext(ctx).Model(&model.MenuItem{})

	//カテゴリ絞り込み
	if q.CategoryID != nil {
		db = db.Where("category_id = ?", *q.CategoryID)
	}
	//品切れを除外するか
	if q.AvailableOnly {
		db = db.Where("is_available = ?", true)
	}

	var items []model.MenuItem
	if err := db.Order("category_id asc, id asc").Find(&items).Error; err != nil {
		return []model.MenuItem{}, err
	}
	return items, nil
}

func (r *MenuItemGormRepository) ListCategories(ctx context.Context) ([]model.MenuCategory, error) {
	var cats []model.MenuCategory
	err := r.db.WithContext(ctx).
		Order("sort_order asc, id asc").
		Find(&cats).Error
	if err != nil {
		return []model.MenuCategory{}, err
	}
	return cats, nil
}

func (r *MenuItemGormRepository) SetAvailability(ctx context.Context, menuItemID int64, available bool) error {
	res := r.db.WithContext(ctx).Model(&model.MenuItem{}).
		Where("id = ?", menuItemID).
		Update("is_available", available)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

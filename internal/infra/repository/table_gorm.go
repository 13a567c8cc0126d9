package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TableGormRepository struct {
	db *gorm.DB
}

// DI
func NewTableGormRepository(db *gorm.DB) *TableGormRepository {
	return &TableGormRepository{db: db}
}

func (r *TableGormRepository) FindByID(ctx context.Context, tableID int64) (model.Table, error) {
	var t model.Table
	err := r.db.WithContext(ctx).Where("id = ?", tableID).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Table{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Table{}, err
	}
	return t, nil
}

// SELECT ... FOR UPDATE。同じテーブルを同時に開く競合を直列化する。
func (r *TableGormRepository) FindByIDForUpdate(ctx context.Context, tableID int64) (model.Table, error) {
	var t model.Table
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", tableID).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Table{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Table{}, err
	}
	return t, nil
}

func (r *TableGormRepository) List(ctx context.Context) ([]model.Table, error) {
	var tables []model.Table
	if err := r.db.WithContext(ctx).Order("id asc").Find(&tables).Error; err != nil {
		return []model.Table{}, err
	}
	return tables, nil
}

func (r *TableGormRepository) UpdateOccupancy(ctx context.Context, tableID int64, occ model.TableOccupancy) error {
	res := r.db.WithContext(ctx).Model(&model.Table{}).
		Where("id = ?", tableID).
		Update("occupancy", occ)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

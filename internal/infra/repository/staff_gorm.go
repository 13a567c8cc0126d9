package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type StaffGormRepository struct {
	db *gorm.DB
}

func NewStaffGormRepository(db *gorm.DB) *StaffGormRepository {
	return &StaffGormRepository{db: db}
}

func (r *StaffGormRepository) FindByEmail(ctx context.Context, email string) (model.Staff, error) {
	var s model.Staff
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Staff{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Staff{}, err
	}
	return s, nil
}

func (r *StaffGormRepository) Create(ctx context.Context, s model.Staff) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&s).Error; err != nil {
		return 0, err
	}
	return s.ID, nil
}

func (r *StaffGormRepository) CountAll(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Staff{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

package repository

import (
	"context"

	"app/internal/domain/model"
)

type StaffRepository interface {
	FindByEmail(ctx context.Context, email string) (model.Staff, error)
	Create(ctx context.Context, s model.Staff) (int64, error)
	CountAll(ctx context.Context) (int64, error)
}

package repository

import (
	"context"

	"app/internal/domain/model"
)

type TableRepository interface {
	FindByID(ctx context.Context, tableID int64) (model.Table, error)
	// 行ロック付き取得。開店/解放の遷移はこちらを使う。
	FindByIDForUpdate(ctx context.Context, tableID int64) (model.Table, error)
	List(ctx context.Context) ([]model.Table, error)
	UpdateOccupancy(ctx context.Context, tableID int64, occ model.TableOccupancy) error
}

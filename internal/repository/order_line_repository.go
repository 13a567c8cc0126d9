package repository

import (
	"context"

	"app/internal/domain/model"
)

type OrderLineRepository interface {
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderLine, error)
	FindByID(ctx context.Context, lineID int64) (model.OrderLine, error)
	// 同一商品の明細は1行にまとめるための検索。
	FindByOrderAndMenuItem(ctx context.Context, orderID int64, menuItemID int64) (model.OrderLine, bool, error)
	Create(ctx context.Context, line model.OrderLine) (int64, error)
	UpdateQuantity(ctx context.Context, lineID int64, qty int64) error
	DeleteByID(ctx context.Context, lineID int64) error
}

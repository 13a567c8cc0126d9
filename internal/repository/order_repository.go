package repository

import (
	"context"

	"app/internal/domain/model"
)

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	// 行ロック付き取得。1注文への変更を直列化するため、
	// 全ての変更系ユースケースはこちらで取得してから書く。
	FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error)
	// テーブルに紐づくOPEN注文（高々1件）。
	FindOpenByTableID(ctx context.Context, tableID int64) (model.Order, bool, error)
	Create(ctx context.Context, order model.Order) (int64, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
	UpdateTotals(ctx context.Context, orderID int64, subtotal, tax, total int64) error
	SetIdempotencyKey(ctx context.Context, orderID int64, key string) error
	ListByStatus(ctx context.Context, status model.OrderStatus) ([]model.Order, error)
}

package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

type MenuItemListQuery struct {
	CategoryID    *int64
	AvailableOnly bool
}

// メニューカタログの約束。項目は実行中ほぼ read-only で、
// 書き込みは提供可否の切り替えだけ。
type MenuItemRepository interface {
	FindByID(ctx context.Context, menuItemID int64) (model.MenuItem, error)
	List(ctx context.Context, q MenuItemListQuery) ([]model.MenuItem, error)
	ListCategories(ctx context.Context) ([]model.MenuCategory, error)
	SetAvailability(ctx context.Context, menuItemID int64, available bool) error
}

package repository

import (
	"context"

	repo "app/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	tables     repo.TableRepository
	orders     repo.OrderRepository
	orderLines repo.OrderLineRepository
	menuItems  repo.MenuItemRepository
	audit      repo.AuditLogRepository
}

func (r *txReposGorm) Tables() repo.TableRepository         { return r.tables }
func (r *txReposGorm) Orders() repo.OrderRepository         { return r.orders }
func (r *txReposGorm) OrderLines() repo.OrderLineRepository { return r.orderLines }
func (r *txReposGorm) MenuItems() repo.MenuItemRepository   { return r.menuItems }
func (r *txReposGorm) Audit() repo.AuditLogRepository       { return r.audit }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			tables:     NewTableGormRepository(tx),
			orders:     NewOrderGormRepository(tx),
			orderLines: NewOrderLineGormRepository(tx),
			menuItems:  NewMenuItemGormRepository(tx),
			audit:      NewAuditLogGormRepository(tx),
		}
		return fn(r)
	})
}

package main

import (
	"context"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// デモ用の初期データ。空のDBにだけ入れる（既存データは触らない）。
func seedDemoData(db *gorm.DB, staffRepo repo.StaffRepository) error {
	ctx := context.Background()

	n, err := staffRepo.CountAll(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	//スタッフ
	adminHash, err := bcrypt.GenerateFromPassword([]byte("admin1234"), 12)
	if err != nil {
		return err
	}
	serverHash, err := bcrypt.GenerateFromPassword([]byte("server1234"), 12)
	if err != nil {
		return err
	}
	if _, err := staffRepo.Create(ctx, model.Staff{
		Email: "admin@pos.local", Name: "Admin", PasswordHash: string(adminHash), Role: model.RoleAdmin, IsActive: true,
	}); err != nil {
		return err
	}
	if _, err := staffRepo.Create(ctx, model.Staff{
		Email: "server@pos.local", Name: "Server", PasswordHash: string(serverHash), Role: model.RoleServer, IsActive: true,
	}); err != nil {
		return err
	}

	//カテゴリとメニュー
	cats := []model.MenuCategory{
		{Name: "Appetizers", SortOrder: 1},
		{Name: "Entrees", SortOrder: 2},
		{Name: "Drinks", SortOrder: 3},
		{Name: "Desserts", SortOrder: 4},
	}
	if err := db.WithContext(ctx).Create(&cats).Error; err != nil {
		return err
	}

	items := []model.MenuItem{
		{CategoryID: cats[0].ID, Name: "Garlic Bread", UnitPriceCents: 599, Popular: false, IsAvailable: true},
		{CategoryID: cats[0].ID, Name: "Calamari", UnitPriceCents: 999, Popular: true, IsAvailable: true},
		{CategoryID: cats[1].ID, Name: "Margherita Pizza", UnitPriceCents: 1299, Popular: true, IsAvailable: true},
		{CategoryID: cats[1].ID, Name: "Ribeye Steak", UnitPriceCents: 2899, Popular: false, IsAvailable: true},
		{CategoryID: cats[1].ID, Name: "Grilled Salmon", UnitPriceCents: 1499, Popular: true, IsAvailable: true},
		{CategoryID: cats[2].ID, Name: "House Red (glass)", UnitPriceCents: 850, Popular: false, IsAvailable: true},
		{CategoryID: cats[2].ID, Name: "Craft Lager", UnitPriceCents: 650, Popular: true, IsAvailable: true},
		{CategoryID: cats[3].ID, Name: "Tiramisu", UnitPriceCents: 799, Popular: true, IsAvailable: true},
	}
	if err := db.WithContext(ctx).Create(&items).Error; err != nil {
		return err
	}

	//テーブル
	tables := []model.Table{
		{Name: "T1", SeatCount: 2, Occupancy: model.TableAvailable},
		{Name: "T2", SeatCount: 2, Occupancy: model.TableAvailable},
		{Name: "T3", SeatCount: 4, Occupancy: model.TableAvailable},
		{Name: "T4", SeatCount: 4, Occupancy: model.TableAvailable},
		{Name: "T5", SeatCount: 6, Occupancy: model.TableAvailable},
		{Name: "T6", SeatCount: 8, Occupancy: model.TableAvailable},
	}
	return db.WithContext(ctx).Create(&tables).Error
}

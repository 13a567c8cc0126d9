package main

import (
	"log"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/gateway"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/server"
	"app/internal/usecase"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		log.Fatal(err)
	}
	if err := gormDB.AutoMigrate(
		&model.MenuCategory{},
		&model.MenuItem{},
		&model.Table{},
		&model.Order{},
		&model.OrderLine{},
		&model.Staff{},
		&model.AuditLog{},
	); err != nil {
		log.Fatal(err)
	}

	//Repository（GORM実装）生成
	menuRepo := infraRepo.NewMenuItemGormRepository(gormDB)
	staffRepo := infraRepo.NewStaffGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//デモデータ（明示的なスイッチでだけ入れる）
	if cfg.SeedDemo {
		if err := seedDemoData(gormDB, staffRepo); err != nil {
			log.Fatal(err)
		}
	}

	//税率
	taxRate, err := decimal.NewFromString(cfg.TaxRate)
	if err != nil {
		log.Fatalf("TAX_RATE must be decimal: %v", err)
	}

	//決済ゲートウェイ（未設定ならcash運用のみ）
	var pg usecase.PaymentGateway
	if cfg.PaymentAPIURL != "" {
		pg = gateway.New(cfg.PaymentAPIURL, cfg.PaymentAPIToken)
	}
	chargeTimeout := time.Duration(cfg.PaymentTimeoutMS) * time.Millisecond

	//Usecase生成
	authUC := usecase.NewAuthUsecase(staffRepo, cfg.JWTSecret)
	menuUC := usecase.NewMenuUsecase(menuRepo, auditRepo)
	sessionUC := usecase.NewSessionUsecase(txm, taxRate)
	paymentUC := usecase.NewPaymentUsecase(txm, pg, chargeTimeout)
	auditUC := usecase.NewAuditUsecase(auditRepo)

	//Handler生成とルート登録
	e := server.New()
	handler.NewAuthHandler(authUC).RegisterRoutes(e)
	menuH := handler.NewMenuHandler(menuUC)
	menuH.RegisterRoutes(e)
	menuH.RegisterAdminRoutes(e, cfg)
	handler.NewSessionHandler(sessionUC).RegisterRoutes(e, cfg)
	handler.NewPaymentHandler(paymentUC).RegisterRoutes(e, cfg)
	handler.NewAuditHandler(auditUC).RegisterRoutes(e, cfg)

	//Server起動
	addr := ":8080"
	if cfg.Port != "" {
		if cfg.Port[0] != ':' {
			addr = ":" + cfg.Port
		} else {
			addr = cfg.Port
		}
	}

	if err := server.Start(e, addr); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"printshop/internal/config"
	"printshop/internal/handler"
	"printshop/internal/infra/cache"
	"printshop/internal/infra/db"
	"printshop/internal/infra/gateway"
	"printshop/internal/infra/pdf"
	infraRepo "printshop/internal/infra/repository"
	"printshop/internal/infra/storage"
	"printshop/internal/logger"
	"printshop/internal/metrics"
	"printshop/internal/server"
	"printshop/internal/usecase"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger.Setup(cfg.LogLevel, cfg.IsProduction())

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return serve(ctx, cfg)
	},
}

func serve(ctx context.Context, cfg config.Config) error {
	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		return err
	}
	if cfg.AutoMigrate {
		if err := db.Migrate(gormDB); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	m := metrics.New()

	//Repository（GORM実装）
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	storeRepo := infraRepo.NewStoreGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	eventRepo := infraRepo.NewWebhookEventGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//外部サービス
	blobs, err := storage.NewS3Store(ctx, cfg, m)
	if err != nil {
		return err
	}
	razorpay := gateway.NewRazorpay(cfg, m)
	pages := pdf.NewPageCounter()

	var dedupe usecase.EventDeduper = cache.NoopEventDeduper{}
	if cfg.RedisAddr != "" {
		rdb := cache.NewRedisClient(cfg)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, webhook dedupe runs without cache")
		}
		dedupe = cache.NewRedisEventDeduper(rdb, cache.DefaultEventTTL)
	}

	//Usecase
	authUC := usecase.NewAuthUsecase(cfg, userRepo)
	userUC := usecase.NewUserUsecase(userRepo, blobs, cfg.SignedURLTTL)
	storeUC := usecase.NewStoreUsecase(txm, storeRepo, blobs, razorpay)
	orderUC := usecase.NewOrderUsecase(txm, orderRepo, storeRepo, userRepo, blobs, pages, cfg.SignedURLTTL)
	paymentUC := usecase.NewPaymentUsecase(orderRepo, razorpay)
	webhookUC := usecase.NewWebhookUsecase(razorpay, orderRepo, storeRepo, eventRepo, dedupe, m)
	auditUC := usecase.NewAuditLogUsecase(auditRepo)

	e := server.New(cfg, server.Deps{
		Metrics: m,
		Health:  sqlDB.PingContext,
		Handlers: []server.RouteRegistrar{
			handler.NewAuthHandler(authUC),
			handler.NewUserHandler(userUC),
			handler.NewStoreHandler(storeUC),
			handler.NewOrderHandler(orderUC),
			handler.NewPaymentHandler(paymentUC, webhookUC),
			handler.NewAdminAuditHandler(auditUC),
		},
	})

	return server.Run(ctx, e, cfg.Addr())
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xela07ax/corpadmin-portal/internal/approval"
	"github.com/xela07ax/corpadmin-portal/internal/audit"
	"github.com/xela07ax/corpadmin-portal/internal/console/handler"
	"github.com/xela07ax/corpadmin-portal/internal/console/server"
	"github.com/xela07ax/corpadmin-portal/internal/console/service"
	"github.com/xela07ax/corpadmin-portal/internal/gateway"
	"github.com/xela07ax/corpadmin-portal/internal/infra"
	"github.com/xela07ax/corpadmin-portal/internal/infra/auth"
	"github.com/xela07ax/corpadmin-portal/internal/lockout"
	"github.com/xela07ax/corpadmin-portal/internal/otp"
	"github.com/xela07ax/corpadmin-portal/internal/repository/postgres"
)

func main() {
	// 1. Конфигурация и логгер
	cfg, err := infra.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := infra.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	// RSA ключи: приватный подписывает токены, публичный их проверяет
	privateKey, err := auth.ParseRSAPrivateKey(cfg.Auth.PrivateKey)
	if err != nil {
		logger.Fatal("Failed to parse private key", zap.Error(err))
	}
	publicKey, err := auth.ParseRSAPublicKey(cfg.Auth.PublicKey)
	if err != nil {
		logger.Fatal("Failed to parse public key", zap.Error(err))
	}

	// Контекст для управления жизненным циклом фоновых горутин
	// При завершении main() или срабатывании SIGTERM, cancel() остановит слушателей
	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Инфраструктура и ресурсы
	repo, err := postgres.New(appCtx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to init postgres pool", zap.Error(err))
	}
	defer repo.Close()

	// Проверяем соединение с таймаутом
	pingCtx, pingCancel := context.WithTimeout(appCtx, 5*time.Second)
	if err := repo.Ping(pingCtx); err != nil {
		logger.Fatal("Database unreachable", zap.Error(err))
	}
	pingCancel()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(appCtx).Err(); err != nil {
		logger.Fatal("Redis unreachable", zap.Error(err))
	}

	// 3. Журнал аудита (асинхронная пакетная запись в Postgres)
	trail := audit.NewTrail(repo, cfg.Audit.BufferSize, cfg.Audit.BatchSize, cfg.Audit.FlushInterval, logger)
	trail.Start()

	// 4. Менеджер блокировок (L1 кэш + Redis set + Pub/Sub)
	locks := lockout.NewManager(rdb, repo, logger)
	if err := locks.Init(appCtx); err != nil {
		logger.Fatal("Failed to init lockout manager", zap.Error(err))
	}
	go locks.StartListener(appCtx)

	// 5. Клиент банковского шлюза. Пустой BaseURL включает мок-режим
	var bankClient gateway.Client
	if cfg.Gateway.BaseURL != "" {
		bankClient = gateway.NewHTTPClient(cfg.Gateway.BaseURL, cfg.Gateway.APIKey, cfg.Gateway.Timeout)
	} else {
		logger.Warn("Gateway base_url is empty, using mock gateway")
		bankClient = &gateway.MockGateway{}
	}
	// Оборачиваем в Reliability (Rate Limit, Circuit Breaker, Retries)
	bank := gateway.NewReliabilityWrapper(bankClient, cfg.Gateway)

	// Метрики
	reg := prometheus.NewRegistry()
	metrics := approval.NewMetrics(reg)

	// Экспортируем метрики для Prometheus
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		addr := fmt.Sprintf(":%d", cfg.Server.MetricsPort)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("Metrics server stopped", zap.Error(err))
		}
	}()

	// 6. Ядро maker-checker
	factory := approval.NewFactory(repo, repo, repo)
	applier := approval.NewApplier(repo, repo, locks, logger)
	signals := approval.NewRedisDecisionPublisher(rdb)
	engine := approval.NewEngine(repo, applier, signals, metrics, cfg.Approval.EnforceDualControl, logger)
	approvals := approval.NewService(repo, factory, engine, metrics, trail, logger)

	// 7. OTP: код живет в Redis с TTL, доставка пока через лог
	otpStore := otp.NewRedisStore(rdb)
	otpIssuer := otp.NewIssuer(otpStore, otp.NewLogDelivery(logger), cfg.OTP.TTL, logger)

	// 8. Сервисы и обработчики (Dependency Injection)
	authSvc := service.NewAuthService(repo, otpIssuer, privateKey, publicKey, cfg.Auth.TokenTTL, cfg.Auth.BcryptCost, trail, logger)
	companySvc := service.NewCompanyService(repo, approvals, bank, trail, logger)
	userSvc := service.NewUserService(repo, approvals, locks, trail, logger)
	auditSvc := service.NewAuditService(repo)
	dashSvc := service.NewDashboardService(repo)

	srvHandler := server.NewPortalServer(
		cfg,
		logger,
		authSvc, // AuthService реализует TokenValidator через BaseValidator
		handler.NewAuthHandler(authSvc),
		handler.NewApprovalHandler(approvals),
		handler.NewCompanyHandler(companySvc),
		handler.NewUserHandler(userSvc),
		handler.NewDashboardHandler(dashSvc),
		handler.NewAuditHandler(auditSvc),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      srvHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("Admin portal started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	<-stop
	logger.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	// Останавливаем фоновые слушатели и дожимаем буфер аудита в базу
	cancel()
	trail.Stop()

	logger.Info("Bye")
}

// Package financetracker собирает HTTP-приложение трекера финансов:
// хранилище, миграции, кэш, очередь, платёжный провайдер и маршруты.
package financetracker

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/finance-tracker/internal/cache"
	"github.com/magabrotheeeer/finance-tracker/internal/config"
	"github.com/magabrotheeeer/finance-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/finance-tracker/internal/migrations"
	"github.com/magabrotheeeer/finance-tracker/internal/paymentprovider"
	"github.com/magabrotheeeer/finance-tracker/internal/rabbitmq"
	"github.com/magabrotheeeer/finance-tracker/internal/report"
	analyticsservice "github.com/magabrotheeeer/finance-tracker/internal/services/analytics"
	authservice "github.com/magabrotheeeer/finance-tracker/internal/services/auth"
	billingservice "github.com/magabrotheeeer/finance-tracker/internal/services/billing"
	exportservice "github.com/magabrotheeeer/finance-tracker/internal/services/export"
	recordservice "github.com/magabrotheeeer/finance-tracker/internal/services/record"
	"github.com/magabrotheeeer/finance-tracker/internal/storage"
)

// App инкапсулирует собранный HTTP-сервер и его зависимости.
type App struct {
	server     *http.Server
	logger     *slog.Logger
	db         *storage.Storage
	rabbitConn *amqp.Connection
	rabbitCh   *amqp.Channel
}

// New собирает приложение из конфигурации: подключает хранилище,
// применяет миграции, поднимает кэш и очередь, регистрирует маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	rabbitConn, err := rabbitmq.Connect(cfg.AddressRabbit, cfg.RetriesRabbit, cfg.DelayRabbit)
	if err != nil {
		return nil, err
	}
	rabbitCh, err := rabbitmq.SetupChannel(rabbitConn, rabbitmq.GetReportQueues())
	if err != nil {
		return nil, err
	}
	publisher := rabbitmq.NewPublisher(rabbitCh)

	providerClient := paymentprovider.NewClient(cfg.ProviderSecretKey)
	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	authService := authservice.NewAuthService(db, jwtMaker)
	recordService := recordservice.NewRecordService(db, db, cacheRedis, logger)
	analyticsService := analyticsservice.NewAnalyticsService(db, db, cacheRedis, logger)
	billingService := billingservice.NewBillingService(db, providerClient, cfg.PaymentProvider, logger)
	exportService := exportservice.NewExportService(db, db, report.NewGenerator(), publisher, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, &RouteServices{
		DB:        db,
		JWTMaker:  jwtMaker,
		Auth:      authService,
		Records:   recordService,
		Analytics: analyticsService,
		Billing:   billingService,
		Export:    exportService,
		Provider:  cfg.PaymentProvider,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:     srv,
		logger:     logger,
		db:         db,
		rabbitConn: rabbitConn,
		rabbitCh:   rabbitCh,
	}, nil
}

// Run запускает HTTP-сервер и блокируется до ошибки или отмены контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		_ = a.rabbitCh.Close()
		_ = a.rabbitConn.Close()
		_ = a.db.DB.Close()
		return err
	}
}

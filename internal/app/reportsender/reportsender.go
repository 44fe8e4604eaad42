// Package reportsender собирает воркер почтовой рассылки отчётов:
// очередь, SMTP-транспорт и генератор PDF.
package reportsender

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/finance-tracker/internal/config"
	"github.com/magabrotheeeer/finance-tracker/internal/lib/smtp"
	"github.com/magabrotheeeer/finance-tracker/internal/rabbitmq"
	"github.com/magabrotheeeer/finance-tracker/internal/report"
	senderservice "github.com/magabrotheeeer/finance-tracker/internal/services/sender"
)

// App инкапсулирует подключение к очереди и сервис отправки отчётов.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.SenderService
	logger        *slog.Logger
}

// New собирает воркер из конфигурации.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.AddressRabbit, cfg.RetriesRabbit, cfg.DelayRabbit)
	if err != nil {
		return nil, err
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetReportQueues())
	if err != nil {
		conn.Close()
		return nil, err
	}

	transport := smtp.NewTransport(cfg.SMTPConnection, logger)
	senderService := senderservice.NewSenderService(transport, report.NewGenerator(), logger)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		logger:        logger,
	}, nil
}

// Run запускает потребителя очереди отчётов и блокируется до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.ch, "reports.email", a.senderService.SendMonthlyReport)
	if err != nil {
		a.logger.Error("failed to start reports.email consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("report sender shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}

	return nil
}

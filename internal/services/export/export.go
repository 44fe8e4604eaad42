// Package services содержит бизнес-логику экспорта месячных отчётов:
// предпросмотр, выгрузку PDF и постановку письма в очередь рассылки.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/finance-tracker/internal/models"
	"github.com/magabrotheeeer/finance-tracker/internal/plan"
	"github.com/magabrotheeeer/finance-tracker/internal/storage"
)

// RecordRepository отдаёт запись за период для отчёта.
type RecordRepository interface {
	GetRecordByPeriod(ctx context.Context, userUID string, year, month int) (*models.Record, error)
}

// UserRepository отдаёт профиль пользователя для шапки отчёта и проверки тарифа.
type UserRepository interface {
	GetUserByUID(ctx context.Context, uid string) (*models.User, error)
}

// PDFGenerator отрисовывает PDF по заданию на отчёт.
type PDFGenerator interface {
	Generate(job models.ReportJob) ([]byte, error)
}

// Publisher ставит задание на отправку отчёта в очередь.
type Publisher interface {
	Publish(message any) error
}

// ExportService реализует экспорт отчётов с проверкой лимитов тарифа.
type ExportService struct {
	records   RecordRepository
	users     UserRepository
	generator PDFGenerator
	publisher Publisher
	log       *slog.Logger
}

// NewExportService создает новый экземпляр ExportService.
func NewExportService(records RecordRepository, users UserRepository, generator PDFGenerator, publisher Publisher, log *slog.Logger) *ExportService {
	return &ExportService{
		records:   records,
		users:     users,
		generator: generator,
		publisher: publisher,
		log:       log,
	}
}

// Preview собирает данные отчёта без отрисовки PDF. Доступен на любом тарифе.
func (s *ExportService) Preview(ctx context.Context, userUID string, year, month int) (*models.ReportJob, error) {
	return s.buildJob(ctx, userUID, year, month)
}

// GeneratePDF отрисовывает месячный отчёт. Требует тарифа с выгрузкой PDF.
func (s *ExportService) GeneratePDF(ctx context.Context, userUID string, year, month int) ([]byte, string, error) {
	user, err := s.users.GetUserByUID(ctx, userUID)
	if err != nil {
		return nil, "", err
	}
	if !plan.HasFeature(user.SubscriptionPlan, plan.FeaturePDFExport) {
		return nil, "", fmt.Errorf("%w: pdf export is not available on the %s plan", plan.ErrLimitExceeded, user.SubscriptionPlan)
	}

	job, err := s.buildJob(ctx, userUID, year, month)
	if err != nil {
		return nil, "", err
	}

	data, err := s.generator.Generate(*job)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate pdf: %w", err)
	}

	filename := fmt.Sprintf("financial-report-%d-%02d.pdf", year, month)
	s.log.Info("generated pdf report",
		slog.String("user_uid", userUID),
		slog.String("filename", filename),
		slog.Int("size", len(data)))
	return data, filename, nil
}

// SendEmail ставит отчёт в очередь почтовой рассылки. Требует тарифа
// с почтовыми отчётами. Письмо отправляет отдельный воркер.
func (s *ExportService) SendEmail(ctx context.Context, userUID string, year, month int) error {
	user, err := s.users.GetUserByUID(ctx, userUID)
	if err != nil {
		return err
	}
	if !plan.HasFeature(user.SubscriptionPlan, plan.FeatureEmailReports) {
		return fmt.Errorf("%w: email reports are not available on the %s plan", plan.ErrLimitExceeded, user.SubscriptionPlan)
	}

	job, err := s.buildJob(ctx, userUID, year, month)
	if err != nil {
		return err
	}

	if err := s.publisher.Publish(job); err != nil {
		return fmt.Errorf("failed to publish report job: %w", err)
	}

	s.log.Info("queued email report",
		slog.String("user_uid", userUID),
		slog.Int("year", year),
		slog.Int("month", month))
	return nil
}

// buildJob собирает задание на отчёт: профиль пользователя и запись за период.
// Отсутствие записи не ошибка, отчёт выйдет пустым.
func (s *ExportService) buildJob(ctx context.Context, userUID string, year, month int) (*models.ReportJob, error) {
	user, err := s.users.GetUserByUID(ctx, userUID)
	if err != nil {
		return nil, err
	}

	rec, err := s.records.GetRecordByPeriod(ctx, userUID, year, month)
	if err != nil && !errors.Is(err, storage.ErrRecordNotFound) {
		return nil, err
	}

	return &models.ReportJob{
		Email:        user.Email,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		BusinessName: user.BusinessName,
		BusinessType: user.BusinessType,
		Year:         year,
		Month:        month,
		Record:       rec,
	}, nil
}

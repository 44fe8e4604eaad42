// Package services содержит бизнес-логику работы с месячными финансовыми записями.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/finance-tracker/internal/models"
	"github.com/magabrotheeeer/finance-tracker/internal/plan"
)

// ErrInvalidPeriod возвращается для периода вне допустимого диапазона:
// год раньше 2000 либо позже следующего календарного года.
var ErrInvalidPeriod = errors.New("period is out of allowed range")

// RecordRepository определяет методы для работы с записями в хранилище.
type RecordRepository interface {
	// CreateRecord добавляет новую запись и возвращает её ID.
	CreateRecord(ctx context.Context, rec models.Record) (int, error)
	// GetRecordByID возвращает запись по ID в пределах пользователя.
	GetRecordByID(ctx context.Context, id int, userUID string) (*models.Record, error)
	// GetRecordByPeriod возвращает запись пользователя за (год, месяц).
	GetRecordByPeriod(ctx context.Context, userUID string, year, month int) (*models.Record, error)
	// UpdateRecord применяет частичное обновление и возвращает новое состояние.
	UpdateRecord(ctx context.Context, id int, userUID string, fields models.UpdateRecordFields) (*models.Record, error)
	// DeleteRecord удаляет запись пользователя.
	DeleteRecord(ctx context.Context, id int, userUID string) error
	// ListRecords возвращает записи пользователя с необязательными фильтрами.
	ListRecords(ctx context.Context, userUID string, year, month *int) ([]*models.Record, error)
}

// UserRepository отдаёт пользователя для проверки лимитов тарифа.
type UserRepository interface {
	GetUserByUID(ctx context.Context, uid string) (*models.User, error)
}

// Cache описывает инвалидацию кэша агрегатов пользователя.
type Cache interface {
	InvalidateUser(userUID string) error
}

// RecordService реализует бизнес-логику месячных записей с проверкой
// календарного периода и лимитов тарифа.
type RecordService struct {
	repo  RecordRepository
	users UserRepository
	cache Cache
	log   *slog.Logger
}

// NewRecordService создает новый экземпляр RecordService.
func NewRecordService(repo RecordRepository, users UserRepository, cache Cache, log *slog.Logger) *RecordService {
	return &RecordService{
		repo:  repo,
		users: users,
		cache: cache,
		log:   log,
	}
}

// Create создает новую запись за месяц. Период проходит две проверки:
// допустимый календарный диапазон и окно истории тарифа пользователя.
func (s *RecordService) Create(ctx context.Context, userUID string, req models.DummyRecord) (int, error) {
	if err := s.checkPeriod(ctx, userUID, req.Year, req.Month); err != nil {
		return 0, err
	}

	rec := models.Record{
		UserUID:           userUID,
		Year:              req.Year,
		Month:             req.Month,
		ServicesRevenue:   req.ServicesRevenue,
		ProductsRevenue:   req.ProductsRevenue,
		OtherRevenue:      req.OtherRevenue,
		GoodsCost:         req.GoodsCost,
		Commissions:       req.Commissions,
		VariableMarketing: req.VariableMarketing,
		Rent:              req.Rent,
		Salaries:          req.Salaries,
		Utilities:         req.Utilities,
		FixedMarketing:    req.FixedMarketing,
		OtherFixedCosts:   req.OtherFixedCosts,
	}

	id, err := s.repo.CreateRecord(ctx, rec)
	if err != nil {
		return 0, err
	}
	s.log.Info("created new record", slog.Int("id", id), slog.Int("year", req.Year), slog.Int("month", req.Month))

	s.invalidate(userUID)
	return id, nil
}

// Update применяет частичное обновление записи: трогаются только
// присутствующие поля, остальные сохраняют значения.
func (s *RecordService) Update(ctx context.Context, userUID string, id int, fields models.UpdateRecordFields) (*models.Record, error) {
	existing, err := s.repo.GetRecordByID(ctx, id, userUID)
	if err != nil {
		return nil, err
	}
	if err := s.checkPeriod(ctx, userUID, existing.Year, existing.Month); err != nil {
		return nil, err
	}

	rec, err := s.repo.UpdateRecord(ctx, id, userUID, fields)
	if err != nil {
		return nil, err
	}
	s.log.Info("updated record", slog.Int("id", id))

	s.invalidate(userUID)
	return rec, nil
}

// Delete удаляет запись пользователя и инвалидирует кэш агрегатов.
func (s *RecordService) Delete(ctx context.Context, userUID string, id int) error {
	if err := s.repo.DeleteRecord(ctx, id, userUID); err != nil {
		return err
	}
	s.log.Info("deleted record", slog.Int("id", id))

	s.invalidate(userUID)
	return nil
}

// List возвращает записи пользователя, отсортированные от новых к старым.
// Фильтры по году и месяцу необязательны.
func (s *RecordService) List(ctx context.Context, userUID string, year, month *int) ([]*models.Record, error) {
	return s.repo.ListRecords(ctx, userUID, year, month)
}

// GetByPeriod возвращает запись пользователя за конкретный (год, месяц).
func (s *RecordService) GetByPeriod(ctx context.Context, userUID string, year, month int) (*models.Record, error) {
	return s.repo.GetRecordByPeriod(ctx, userUID, year, month)
}

// checkPeriod валидирует календарный диапазон периода и окно истории тарифа.
func (s *RecordService) checkPeriod(ctx context.Context, userUID string, year, month int) error {
	now := time.Now().UTC()
	if year < 2000 || year > now.Year()+1 {
		return fmt.Errorf("%w: year %d", ErrInvalidPeriod, year)
	}
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: month %d", ErrInvalidPeriod, month)
	}

	user, err := s.users.GetUserByUID(ctx, userUID)
	if err != nil {
		return err
	}
	if !plan.IsWithinHistoryWindow(user.SubscriptionPlan, year, month, now.Year(), int(now.Month())) {
		return fmt.Errorf("%w: period %d-%02d is outside the history window", plan.ErrLimitExceeded, year, month)
	}
	return nil
}

func (s *RecordService) invalidate(userUID string) {
	if err := s.cache.InvalidateUser(userUID); err != nil {
		s.log.Warn("failed to invalidate dashboard cache", slog.String("user_uid", userUID), slog.Any("err", err))
	}
}

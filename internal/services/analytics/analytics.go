// Package services содержит бизнес-логику дашборда: месячная сводка,
// данные для графиков и агрегированные тренды. Все показатели считаются
// из сырых записей при чтении, результаты кэшируются до первой записи.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/finance-tracker/internal/lib/period"
	"github.com/magabrotheeeer/finance-tracker/internal/models"
	"github.com/magabrotheeeer/finance-tracker/internal/plan"
	"github.com/magabrotheeeer/finance-tracker/internal/storage"
)

// trendWindowDefault — окно трендов по умолчанию в месяцах.
const trendWindowDefault = 12

// cacheTTL — время жизни агрегатов в кэше. Кэш дополнительно
// инвалидируется при любой записи пользователя.
const cacheTTL = time.Hour

// AnalyticsRepository определяет методы чтения записей для агрегатов.
type AnalyticsRepository interface {
	// GetRecordByPeriod возвращает запись пользователя за (год, месяц).
	GetRecordByPeriod(ctx context.Context, userUID string, year, month int) (*models.Record, error)
	// ListRecordsSinceYear возвращает записи с заданного года по возрастанию периода.
	ListRecordsSinceYear(ctx context.Context, userUID string, year int) ([]*models.Record, error)
}

// UserRepository отдаёт пользователя для проверки лимитов тарифа.
type UserRepository interface {
	GetUserByUID(ctx context.Context, uid string) (*models.User, error)
}

// Cache описывает методы для кэширования агрегатов.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
}

// AnalyticsService реализует вычисление показателей дашборда.
type AnalyticsService struct {
	repo  AnalyticsRepository
	users UserRepository
	cache Cache
	log   *slog.Logger
}

// NewAnalyticsService создает новый экземпляр AnalyticsService.
func NewAnalyticsService(repo AnalyticsRepository, users UserRepository, cache Cache, log *slog.Logger) *AnalyticsService {
	return &AnalyticsService{
		repo:  repo,
		users: users,
		cache: cache,
		log:   log,
	}
}

// Summary возвращает производные показатели месяца и процентные изменения
// к предыдущему месяцу. Изменение равно nil, когда предыдущего месяца нет
// либо предыдущее значение нулевое. При отсутствии записи возвращается
// сводка с HasData=false и нулевыми показателями.
func (s *AnalyticsService) Summary(ctx context.Context, userUID string, year, month int) (*models.Summary, error) {
	if err := s.checkWindow(ctx, userUID, year, month); err != nil {
		return nil, err
	}

	var cached models.Summary
	cacheKey := fmt.Sprintf("dashboard:%s:summary:%d-%02d", userUID, year, month)
	if found, err := s.cache.Get(cacheKey, &cached); err == nil && found {
		return &cached, nil
	}

	rec, err := s.getRecord(ctx, userUID, year, month)
	if err != nil {
		return nil, err
	}

	summary := &models.Summary{Year: year, Month: month}
	if rec != nil {
		summary.HasData = true
		summary.TotalRevenue = rec.TotalRevenue()
		summary.FixedCosts = rec.FixedCosts()
		summary.VariableCosts = rec.VariableCosts()
		summary.TotalCosts = rec.TotalCosts()
		summary.NetProfit = rec.NetProfit()
		summary.MarginPercent = rec.MarginPercent()

		prevYear, prevMonth := period.Prev(year, month)
		prev, err := s.getRecord(ctx, userUID, prevYear, prevMonth)
		if err != nil {
			return nil, err
		}
		if prev != nil {
			summary.Changes = &models.SummaryChanges{
				TotalRevenue:  percentChange(rec.TotalRevenue(), prev.TotalRevenue()),
				FixedCosts:    percentChange(rec.FixedCosts(), prev.FixedCosts()),
				VariableCosts: percentChange(rec.VariableCosts(), prev.VariableCosts()),
				NetProfit:     percentChange(rec.NetProfit(), prev.NetProfit()),
				MarginPercent: percentChange(rec.MarginPercent(), prev.MarginPercent()),
			}
		}
	}

	s.cacheSet(cacheKey, summary)
	return summary, nil
}

// Charts возвращает данные для графиков: разбивку выручки и расходов
// за запрошенный месяц и помесячный тренд за скользящее окно,
// урезанное лимитом тарифа.
func (s *AnalyticsService) Charts(ctx context.Context, userUID string, year, month int) (*models.ChartData, error) {
	if err := s.checkWindow(ctx, userUID, year, month); err != nil {
		return nil, err
	}

	var cached models.ChartData
	cacheKey := fmt.Sprintf("dashboard:%s:charts:%d-%02d", userUID, year, month)
	if found, err := s.cache.Get(cacheKey, &cached); err == nil && found {
		return &cached, nil
	}

	user, err := s.users.GetUserByUID(ctx, userUID)
	if err != nil {
		return nil, err
	}
	window := plan.EffectiveWindowMonths(user.SubscriptionPlan, trendWindowDefault)

	windowStart := period.Start(year, month).AddDate(0, -window, 0)
	recs, err := s.repo.ListRecordsSinceYear(ctx, userUID, windowStart.Year())
	if err != nil {
		return nil, err
	}

	data := &models.ChartData{
		CurrentPeriod: models.Period{Year: year, Month: month},
		MonthlyTrend:  make([]models.MonthPoint, 0, window),
	}
	for _, rec := range recs {
		d := period.Distance(rec.Year, rec.Month, year, month)
		if d < 0 || d >= window {
			continue
		}
		data.MonthlyTrend = append(data.MonthlyTrend, models.MonthPoint{
			Year:          rec.Year,
			Month:         rec.Month,
			Label:         period.Label(rec.Year, rec.Month),
			TotalRevenue:  rec.TotalRevenue(),
			TotalCosts:    rec.TotalCosts(),
			NetProfit:     rec.NetProfit(),
			MarginPercent: rec.MarginPercent(),
		})
		if d == 0 {
			data.RevenueVsCosts = &models.RevenueVsCosts{
				ServicesRevenue: rec.ServicesRevenue,
				ProductsRevenue: rec.ProductsRevenue,
				OtherRevenue:    rec.OtherRevenue,
				FixedCosts:      rec.FixedCosts(),
				VariableCosts:   rec.VariableCosts(),
				NetProfit:       rec.NetProfit(),
			}
		}
	}

	s.cacheSet(cacheKey, data)
	return data, nil
}

// Trends возвращает агрегированную статистику: суммы выручки, расходов
// и прибыли, среднюю маржу без взвешивания и лучший/худший месяцы по
// чистой прибыли. Запрошенное окно урезается лимитом тарифа и задаёт
// год начала сканирования; агрегируются все записи начиная с этого года.
func (s *AnalyticsService) Trends(ctx context.Context, userUID string, months int) (*models.TrendStats, error) {
	if months <= 0 {
		months = trendWindowDefault
	}

	user, err := s.users.GetUserByUID(ctx, userUID)
	if err != nil {
		return nil, err
	}
	window := plan.EffectiveWindowMonths(user.SubscriptionPlan, months)

	now := time.Now().UTC()
	var cached models.TrendStats
	cacheKey := fmt.Sprintf("dashboard:%s:trends:%d-%02d:%d", userUID, now.Year(), int(now.Month()), window)
	if found, err := s.cache.Get(cacheKey, &cached); err == nil && found {
		return &cached, nil
	}

	// Окно определяет только год начала сканирования: записи граничного
	// года старше окна всё равно попадают в агрегаты.
	windowStart := now.AddDate(0, 0, -window*30)
	recs, err := s.repo.ListRecordsSinceYear(ctx, userUID, windowStart.Year())
	if err != nil {
		return nil, err
	}

	stats := &models.TrendStats{}
	var marginSum float64
	for _, rec := range recs {
		profit := rec.NetProfit()
		stats.TotalRevenue += rec.TotalRevenue()
		stats.TotalCosts += rec.TotalCosts()
		stats.TotalProfit += profit
		marginSum += rec.MarginPercent()
		stats.MonthsCount++

		// При равенстве прибыли остаётся более ранний месяц
		if stats.BestMonth == nil || profit > stats.BestMonth.NetProfit {
			stats.BestMonth = &models.MonthResult{Year: rec.Year, Month: rec.Month, NetProfit: profit}
		}
		if stats.WorstMonth == nil || profit < stats.WorstMonth.NetProfit {
			stats.WorstMonth = &models.MonthResult{Year: rec.Year, Month: rec.Month, NetProfit: profit}
		}
	}
	if stats.MonthsCount > 0 {
		stats.AvgMargin = marginSum / float64(stats.MonthsCount)
	}

	s.cacheSet(cacheKey, stats)
	return stats, nil
}

// checkWindow проверяет, что тариф пользователя разрешает просмотр периода.
func (s *AnalyticsService) checkWindow(ctx context.Context, userUID string, year, month int) error {
	user, err := s.users.GetUserByUID(ctx, userUID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if !plan.IsWithinHistoryWindow(user.SubscriptionPlan, year, month, now.Year(), int(now.Month())) {
		return fmt.Errorf("%w: period %d-%02d is outside the history window", plan.ErrLimitExceeded, year, month)
	}
	return nil
}

// getRecord возвращает запись или nil, если её нет за период.
func (s *AnalyticsService) getRecord(ctx context.Context, userUID string, year, month int) (*models.Record, error) {
	rec, err := s.repo.GetRecordByPeriod(ctx, userUID, year, month)
	if errors.Is(err, storage.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *AnalyticsService) cacheSet(key string, value any) {
	if err := s.cache.Set(key, value, cacheTTL); err != nil {
		s.log.Warn("failed to cache dashboard data", slog.String("key", key), slog.Any("err", err))
	}
}

// percentChange возвращает относительное изменение в процентах.
// Nil означает неопределённость: предыдущее значение нулевое.
func percentChange(current, previous float64) *float64 {
	if previous == 0 {
		return nil
	}
	change := (current - previous) / previous * 100
	return &change
}

package services_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/finance-tracker/internal/models"
	"github.com/magabrotheeeer/finance-tracker/internal/plan"
	services "github.com/magabrotheeeer/finance-tracker/internal/services/analytics"
	"github.com/magabrotheeeer/finance-tracker/internal/storage"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) GetRecordByPeriod(ctx context.Context, userUID string, year, month int) (*models.Record, error) {
	args := m.Called(ctx, userUID, year, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Record), args.Error(1)
}

func (m *RepoMock) ListRecordsSinceYear(ctx context.Context, userUID string, year int) ([]*models.Record, error) {
	args := m.Called(ctx, userUID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Record), args.Error(1)
}

type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) GetUserByUID(ctx context.Context, uid string) (*models.User, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// Кэш-заглушка: всегда промах, запись не сохраняется
type CacheMock struct{}

func (CacheMock) Get(_ string, _ any) (bool, error)          { return false, nil }
func (CacheMock) Set(_ string, _ any, _ time.Duration) error { return nil }

// Кэш-заглушка, запоминающая ключи обращений
type recordingCache struct {
	keys []string
}

func (c *recordingCache) Get(key string, _ any) (bool, error) {
	c.keys = append(c.keys, key)
	return false, nil
}

func (c *recordingCache) Set(key string, _ any, _ time.Duration) error {
	c.keys = append(c.keys, key)
	return nil
}

func newService(repo *RepoMock, users *UserRepoMock) *services.AnalyticsService {
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	return services.NewAnalyticsService(repo, users, CacheMock{}, log)
}

func userWithPlan(tier string) *models.User {
	return &models.User{UID: "uid-123", SubscriptionPlan: tier}
}

func TestSummary_DerivedMetrics(t *testing.T) {
	now := time.Now().UTC()
	year, month := now.Year(), int(now.Month())

	repo := new(RepoMock)
	users := new(UserRepoMock)
	users.On("GetUserByUID", mock.Anything, "uid-123").Return(userWithPlan(plan.TierPro), nil)

	// Выручка 1500, переменные 300, постоянные 200: прибыль 1000, маржа 66.67%
	rec := &models.Record{
		Year: year, Month: month,
		ServicesRevenue: 1000, ProductsRevenue: 500,
		GoodsCost: 300,
		Rent:      200,
	}
	repo.On("GetRecordByPeriod", mock.Anything, "uid-123", year, month).Return(rec, nil).Once()
	prevYear, prevMonth := year, month-1
	if prevMonth == 0 {
		prevYear, prevMonth = year-1, 12
	}
	repo.On("GetRecordByPeriod", mock.Anything, "uid-123", prevYear, prevMonth).
		Return(nil, fmt.Errorf("storage.GetRecordByPeriod: %w", storage.ErrRecordNotFound)).Once()

	svc := newService(repo, users)
	summary, err := svc.Summary(context.Background(), "uid-123", year, month)

	require.NoError(t, err)
	assert.True(t, summary.HasData)
	assert.InDelta(t, 1500.0, summary.TotalRevenue, 1e-9)
	assert.InDelta(t, 300.0, summary.VariableCosts, 1e-9)
	assert.InDelta(t, 200.0, summary.FixedCosts, 1e-9)
	assert.InDelta(t, 500.0, summary.TotalCosts, 1e-9)
	assert.InDelta(t, 1000.0, summary.NetProfit, 1e-9)
	assert.InDelta(t, 66.6666, summary.MarginPercent, 0.001)
	// Предыдущего месяца нет: изменения не определены
	assert.Nil(t, summary.Changes)
}

func TestSummary_ChangesAgainstPreviousMonth(t *testing.T) {
	now := time.Now().UTC()
	year, month := now.Year(), int(now.Month())
	prevYear, prevMonth := year, month-1
	if prevMonth == 0 {
		prevYear, prevMonth = year-1, 12
	}

	repo := new(RepoMock)
	users := new(UserRepoMock)
	users.On("GetUserByUID", mock.Anything, "uid-123").Return(userWithPlan(plan.TierPro), nil)

	current := &models.Record{Year: year, Month: month, ServicesRevenue: 1200, Rent: 300}
	previous := &models.Record{Year: prevYear, Month: prevMonth, ServicesRevenue: 1000}
	repo.On("GetRecordByPeriod", mock.Anything, "uid-123", year, month).Return(current, nil).Once()
	repo.On("GetRecordByPeriod", mock.Anything, "uid-123", prevYear, prevMonth).Return(previous, nil).Once()

	svc := newService(repo, users)
	summary, err := svc.Summary(context.Background(), "uid-123", year, month)

	require.NoError(t, err)
	require.NotNil(t, summary.Changes)
	require.NotNil(t, summary.Changes.TotalRevenue)
	assert.InDelta(t, 20.0, *summary.Changes.TotalRevenue, 1e-9)
	// Постоянные расходы в прошлом месяце нулевые: изменение не определено
	assert.Nil(t, summary.Changes.FixedCosts)
}

func TestSummary_NoData(t *testing.T) {
	now := time.Now().UTC()
	year, month := now.Year(), int(now.Month())

	repo := new(RepoMock)
	users := new(UserRepoMock)
	users.On("GetUserByUID", mock.Anything, "uid-123").Return(userWithPlan(plan.TierFree), nil)
	repo.On("GetRecordByPeriod", mock.Anything, "uid-123", year, month).
		Return(nil, fmt.Errorf("storage.GetRecordByPeriod: %w", storage.ErrRecordNotFound)).Once()

	svc := newService(repo, users)
	summary, err := svc.Summary(context.Background(), "uid-123", year, month)

	require.NoError(t, err)
	assert.False(t, summary.HasData)
	assert.Zero(t, summary.TotalRevenue)
	assert.Nil(t, summary.Changes)
}

func TestSummary_OutsideHistoryWindow(t *testing.T) {
	now := time.Now().UTC()
	oldDate := now.AddDate(0, -5, 0)

	repo := new(RepoMock)
	users := new(UserRepoMock)
	users.On("GetUserByUID", mock.Anything, "uid-123").Return(userWithPlan(plan.TierFree), nil)

	svc := newService(repo, users)
	_, err := svc.Summary(context.Background(), "uid-123", oldDate.Year(), int(oldDate.Month()))

	assert.ErrorIs(t, err, plan.ErrLimitExceeded)
}

func TestCharts_TrailingWindow(t *testing.T) {
	now := time.Now().UTC()
	year, month := now.Year(), int(now.Month())
	prev := now.AddDate(0, -1, 0)
	old := now.AddDate(0, -13, 0)

	repo := new(RepoMock)
	users := new(UserRepoMock)
	users.On("GetUserByUID", mock.Anything, "uid-123").Return(userWithPlan(plan.TierPro), nil)

	recs := []*models.Record{
		{Year: old.Year(), Month: int(old.Month()), ServicesRevenue: 999},
		{Year: prev.Year(), Month: int(prev.Month()), ServicesRevenue: 800, Rent: 100},
		{Year: year, Month: month, ServicesRevenue: 1000, ProductsRevenue: 500, GoodsCost: 300},
	}
	repo.On("ListRecordsSinceYear", mock.Anything, "uid-123", mock.AnythingOfType("int")).Return(recs, nil).Once()

	svc := newService(repo, users)
	data, err := svc.Charts(context.Background(), "uid-123", year, month)

	require.NoError(t, err)
	// Запись старше 12 месяцев не попадает в тренд
	require.Len(t, data.MonthlyTrend, 2)
	assert.Equal(t, int(prev.Month()), data.MonthlyTrend[0].Month)
	assert.Equal(t, month, data.MonthlyTrend[1].Month)

	require.NotNil(t, data.RevenueVsCosts)
	assert.InDelta(t, 1000.0, data.RevenueVsCosts.ServicesRevenue, 1e-9)
	assert.InDelta(t, 300.0, data.RevenueVsCosts.VariableCosts, 1e-9)
	assert.Equal(t, models.Period{Year: year, Month: month}, data.CurrentPeriod)
}

func TestCharts_FreePlanCapsTrend(t *testing.T) {
	now := time.Now().UTC()
	year, month := now.Year(), int(now.Month())
	prev := now.AddDate(0, -1, 0)
	old := now.AddDate(0, -4, 0)

	repo := new(RepoMock)
	users := new(UserRepoMock)
	users.On("GetUserByUID", mock.Anything, "uid-123").Return(userWithPlan(plan.TierFree), nil)

	recs := []*models.Record{
		{Year: old.Year(), Month: int(old.Month()), ServicesRevenue: 999},
		{Year: prev.Year(), Month: int(prev.Month()), ServicesRevenue: 800},
	}
	repo.On("ListRecordsSinceYear", mock.Anything, "uid-123", mock.AnythingOfType("int")).Return(recs, nil).Once()

	svc := newService(repo, users)
	data, err := svc.Charts(context.Background(), "uid-123", year, month)

	require.NoError(t, err)
	// Тренд на free-тарифе ограничен окном истории в 3 месяца
	require.Len(t, data.MonthlyTrend, 1)
	assert.Equal(t, int(prev.Month()), data.MonthlyTrend[0].Month)
}

func TestTrends_Aggregates(t *testing.T) {
	now := time.Now().UTC()
	prev := now.AddDate(0, -1, 0)

	repo := new(RepoMock)
	users := new(UserRepoMock)
	users.On("GetUserByUID", mock.Anything, "uid-123").Return(userWithPlan(plan.TierPro), nil)

	recs := []*models.Record{
		// Маржа 50%, прибыль 500
		{Year: prev.Year(), Month: int(prev.Month()), ServicesRevenue: 1000, Rent: 500},
		// Маржа 25%, прибыль 500
		{Year: now.Year(), Month: int(now.Month()), ServicesRevenue: 2000, Rent: 1500},
	}
	repo.On("ListRecordsSinceYear", mock.Anything, "uid-123", mock.AnythingOfType("int")).Return(recs, nil).Once()

	svc := newService(repo, users)
	stats, err := svc.Trends(context.Background(), "uid-123", 6)

	require.NoError(t, err)
	assert.Equal(t, 2, stats.MonthsCount)
	assert.InDelta(t, 3000.0, stats.TotalRevenue, 1e-9)
	assert.InDelta(t, 2000.0, stats.TotalCosts, 1e-9)
	assert.InDelta(t, 1000.0, stats.TotalProfit, 1e-9)
	// Средняя маржа невзвешенная: (50 + 25) / 2
	assert.InDelta(t, 37.5, stats.AvgMargin, 1e-9)

	// При равной прибыли лучшим остаётся более ранний месяц
	require.NotNil(t, stats.BestMonth)
	assert.Equal(t, int(prev.Month()), stats.BestMonth.Month)
	require.NotNil(t, stats.WorstMonth)
	assert.Equal(t, int(prev.Month()), stats.WorstMonth.Month)
}

func TestTrends_EmptyWindow(t *testing.T) {
	repo := new(RepoMock)
	users := new(UserRepoMock)
	users.On("GetUserByUID", mock.Anything, "uid-123").Return(userWithPlan(plan.TierPro), nil)
	repo.On("ListRecordsSinceYear", mock.Anything, "uid-123", mock.AnythingOfType("int")).
		Return([]*models.Record{}, nil).Once()

	svc := newService(repo, users)
	stats, err := svc.Trends(context.Background(), "uid-123", 6)

	require.NoError(t, err)
	assert.Zero(t, stats.MonthsCount)
	assert.Zero(t, stats.TotalRevenue)
	assert.Zero(t, stats.AvgMargin)
	assert.Nil(t, stats.BestMonth)
	assert.Nil(t, stats.WorstMonth)
}

func TestTrends_BoundaryYearRecordCounted(t *testing.T) {
	now := time.Now().UTC()
	inWindow := now.AddDate(0, -1, 0)
	// Январь граничного года сканирования: всегда старше окна в 6 месяцев
	boundaryYear := now.AddDate(0, 0, -6*30).Year()

	repo := new(RepoMock)
	users := new(UserRepoMock)
	users.On("GetUserByUID", mock.Anything, "uid-123").Return(userWithPlan(plan.TierPro), nil)

	recs := []*models.Record{
		{Year: boundaryYear, Month: 1, ServicesRevenue: 700},
		{Year: inWindow.Year(), Month: int(inWindow.Month()), ServicesRevenue: 300},
	}
	repo.On("ListRecordsSinceYear", mock.Anything, "uid-123", boundaryYear).Return(recs, nil).Once()

	svc := newService(repo, users)
	stats, err := svc.Trends(context.Background(), "uid-123", 6)

	require.NoError(t, err)
	// Запись граничного года старше окна всё равно входит в агрегаты
	assert.Equal(t, 2, stats.MonthsCount)
	assert.InDelta(t, 1000.0, stats.TotalRevenue, 1e-9)
}

func TestTrends_FreePlanCapsScanStart(t *testing.T) {
	now := time.Now().UTC()
	inside := now.AddDate(0, -2, 0)
	// Запрошенные 12 месяцев урезаны окном free-тарифа до 3
	cappedYear := now.AddDate(0, 0, -3*30).Year()

	repo := new(RepoMock)
	users := new(UserRepoMock)
	users.On("GetUserByUID", mock.Anything, "uid-123").Return(userWithPlan(plan.TierFree), nil)

	recs := []*models.Record{
		{Year: inside.Year(), Month: int(inside.Month()), ServicesRevenue: 400},
	}
	repo.On("ListRecordsSinceYear", mock.Anything, "uid-123", cappedYear).Return(recs, nil).Once()

	svc := newService(repo, users)
	stats, err := svc.Trends(context.Background(), "uid-123", 12)

	require.NoError(t, err)
	assert.Equal(t, 1, stats.MonthsCount)
	assert.InDelta(t, 400.0, stats.TotalRevenue, 1e-9)
	repo.AssertExpectations(t)
}

func TestTrends_CacheKeyCarriesCurrentPeriod(t *testing.T) {
	now := time.Now().UTC()

	repo := new(RepoMock)
	users := new(UserRepoMock)
	users.On("GetUserByUID", mock.Anything, "uid-123").Return(userWithPlan(plan.TierPro), nil)
	repo.On("ListRecordsSinceYear", mock.Anything, "uid-123", mock.AnythingOfType("int")).
		Return([]*models.Record{}, nil).Once()

	cache := &recordingCache{}
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	svc := services.NewAnalyticsService(repo, users, cache, log)

	_, err := svc.Trends(context.Background(), "uid-123", 6)

	require.NoError(t, err)
	// Смена календарного месяца меняет ключ: агрегаты прошлого месяца не отдаются
	require.NotEmpty(t, cache.keys)
	period := fmt.Sprintf("%d-%02d", now.Year(), int(now.Month()))
	for _, key := range cache.keys {
		assert.Contains(t, key, period)
	}
}

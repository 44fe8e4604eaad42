package services_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/finance-tracker/internal/models"
	"github.com/magabrotheeeer/finance-tracker/internal/plan"
	services "github.com/magabrotheeeer/finance-tracker/internal/services/record"
)

type RecordRepoMock struct {
	mock.Mock
}

func (m *RecordRepoMock) CreateRecord(ctx context.Context, rec models.Record) (int, error) {
	args := m.Called(ctx, rec)
	return args.Int(0), args.Error(1)
}

func (m *RecordRepoMock) GetRecordByID(ctx context.Context, id int, userUID string) (*models.Record, error) {
	args := m.Called(ctx, id, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Record), args.Error(1)
}

func (m *RecordRepoMock) GetRecordByPeriod(ctx context.Context, userUID string, year, month int) (*models.Record, error) {
	args := m.Called(ctx, userUID, year, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Record), args.Error(1)
}

func (m *RecordRepoMock) UpdateRecord(ctx context.Context, id int, userUID string, fields models.UpdateRecordFields) (*models.Record, error) {
	args := m.Called(ctx, id, userUID, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Record), args.Error(1)
}

func (m *RecordRepoMock) DeleteRecord(ctx context.Context, id int, userUID string) error {
	args := m.Called(ctx, id, userUID)
	return args.Error(0)
}

func (m *RecordRepoMock) ListRecords(ctx context.Context, userUID string, year, month *int) ([]*models.Record, error) {
	args := m.Called(ctx, userUID, year, month)
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

type CacheMock struct {
	mock.Mock
}

func (m *CacheMock) InvalidateUser(userUID string) error {
	args := m.Called(userUID)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newService(repo *RecordRepoMock, users *UserRepoMock, cache *CacheMock) *services.RecordService {
	return services.NewRecordService(repo, users, cache, newNoopLogger())
}

func freeUser() *models.User {
	return &models.User{UID: "uid-123", SubscriptionPlan: plan.TierFree}
}

func proUser() *models.User {
	return &models.User{UID: "uid-123", SubscriptionPlan: plan.TierPro}
}

func TestRecordService_Create(t *testing.T) {
	now := time.Now().UTC()
	// Период на 4 месяца раньше текущего, за пределами окна free-тарифа
	oldDate := now.AddDate(0, -4, 0)

	tests := []struct {
		name       string
		req        models.DummyRecord
		user       *models.User
		setupMocks func(r *RecordRepoMock, c *CacheMock)
		wantErr    error
		wantID     int
	}{
		{
			name: "успешное создание записи за текущий месяц",
			req:  models.DummyRecord{Year: now.Year(), Month: int(now.Month()), ServicesRevenue: 1000},
			user: freeUser(),
			setupMocks: func(r *RecordRepoMock, c *CacheMock) {
				r.On("CreateRecord", mock.Anything, mock.MatchedBy(func(rec models.Record) bool {
					return rec.UserUID == "uid-123" && rec.ServicesRevenue == 1000
				})).Return(7, nil).Once()
				c.On("InvalidateUser", "uid-123").Return(nil).Once()
			},
			wantID: 7,
		},
		{
			name:    "год раньше 2000 отклоняется",
			req:     models.DummyRecord{Year: 1999, Month: 5},
			user:    freeUser(),
			wantErr: services.ErrInvalidPeriod,
		},
		{
			name:    "год дальше следующего отклоняется",
			req:     models.DummyRecord{Year: now.Year() + 2, Month: 1},
			user:    freeUser(),
			wantErr: services.ErrInvalidPeriod,
		},
		{
			name:    "free-тариф не пускает за пределы окна истории",
			req:     models.DummyRecord{Year: oldDate.Year(), Month: int(oldDate.Month())},
			user:    freeUser(),
			wantErr: plan.ErrLimitExceeded,
		},
		{
			name: "pro-тариф пишет в любой месяц",
			req:  models.DummyRecord{Year: oldDate.Year(), Month: int(oldDate.Month())},
			user: proUser(),
			setupMocks: func(r *RecordRepoMock, c *CacheMock) {
				r.On("CreateRecord", mock.Anything, mock.Anything).Return(8, nil).Once()
				c.On("InvalidateUser", "uid-123").Return(nil).Once()
			},
			wantID: 8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RecordRepoMock)
			users := new(UserRepoMock)
			cache := new(CacheMock)
			if tt.req.Year >= 2000 && tt.req.Year <= now.Year()+1 {
				users.On("GetUserByUID", mock.Anything, "uid-123").Return(tt.user, nil).Once()
			}
			if tt.setupMocks != nil {
				tt.setupMocks(repo, cache)
			}
			svc := newService(repo, users, cache)

			id, err := svc.Create(context.Background(), "uid-123", tt.req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, id)
			}
			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestRecordService_Update(t *testing.T) {
	now := time.Now().UTC()
	rent := 250.0

	repo := new(RecordRepoMock)
	users := new(UserRepoMock)
	cache := new(CacheMock)

	existing := &models.Record{ID: 7, Year: now.Year(), Month: int(now.Month()), ServicesRevenue: 1000, Rent: 200}
	updated := &models.Record{ID: 7, Year: now.Year(), Month: int(now.Month()), ServicesRevenue: 1000, Rent: 250}

	repo.On("GetRecordByID", mock.Anything, 7, "uid-123").Return(existing, nil).Once()
	users.On("GetUserByUID", mock.Anything, "uid-123").Return(freeUser(), nil).Once()
	repo.On("UpdateRecord", mock.Anything, 7, "uid-123", models.UpdateRecordFields{Rent: &rent}).Return(updated, nil).Once()
	cache.On("InvalidateUser", "uid-123").Return(nil).Once()

	svc := newService(repo, users, cache)
	got, err := svc.Update(context.Background(), "uid-123", 7, models.UpdateRecordFields{Rent: &rent})

	require.NoError(t, err)
	assert.Equal(t, 250.0, got.Rent)
	assert.Equal(t, 1000.0, got.ServicesRevenue)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestRecordService_Update_OutsideHistoryWindow(t *testing.T) {
	now := time.Now().UTC()
	oldDate := now.AddDate(0, -6, 0)
	rent := 250.0

	repo := new(RecordRepoMock)
	users := new(UserRepoMock)
	cache := new(CacheMock)

	existing := &models.Record{ID: 7, Year: oldDate.Year(), Month: int(oldDate.Month())}
	repo.On("GetRecordByID", mock.Anything, 7, "uid-123").Return(existing, nil).Once()
	users.On("GetUserByUID", mock.Anything, "uid-123").Return(freeUser(), nil).Once()

	svc := newService(repo, users, cache)
	_, err := svc.Update(context.Background(), "uid-123", 7, models.UpdateRecordFields{Rent: &rent})

	assert.ErrorIs(t, err, plan.ErrLimitExceeded)
	repo.AssertExpectations(t)
}

func TestRecordService_Delete(t *testing.T) {
	repo := new(RecordRepoMock)
	users := new(UserRepoMock)
	cache := new(CacheMock)

	repo.On("DeleteRecord", mock.Anything, 7, "uid-123").Return(nil).Once()
	cache.On("InvalidateUser", "uid-123").Return(nil).Once()

	svc := newService(repo, users, cache)
	err := svc.Delete(context.Background(), "uid-123", 7)

	require.NoError(t, err)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

package summary

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/finance-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/finance-tracker/internal/models"
	"github.com/magabrotheeeer/finance-tracker/internal/plan"
)

// MockService реализует интерфейс summary.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Summary(ctx context.Context, userUID string, year, month int) (*models.Summary, error) {
	args := m.Called(ctx, userUID, year, month)
	if res := args.Get(0); res != nil {
		return res.(*models.Summary), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestSummaryHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		url            string
		userUID        string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:    "успешная сводка за явный период",
			url:     "/dashboard/summary?year=2026&month=7",
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("Summary", mock.Anything, "uid-1", 2026, 7).Return(&models.Summary{
					Year:         2026,
					Month:        7,
					HasData:      true,
					TotalRevenue: 1500,
					NetProfit:    1000,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"net_profit":1000`,
		},
		{
			name:           "некорректный месяц в запросе",
			url:            "/dashboard/summary?year=2026&month=15",
			userUID:        "uid-1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `invalid period`,
		},
		{
			name:           "нет пользователя в контексте",
			url:            "/dashboard/summary",
			userUID:        "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `unauthorized`,
		},
		{
			name:    "период вне окна тарифа",
			url:     "/dashboard/summary?year=2020&month=1",
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("Summary", mock.Anything, "uid-1", 2020, 1).Return(nil, plan.ErrLimitExceeded)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `plan history window`,
		},
		{
			name:    "внутренняя ошибка сервиса",
			url:     "/dashboard/summary?year=2026&month=7",
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("Summary", mock.Anything, "uid-1", 2026, 7).Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `could not build summary`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.userUID != "" {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserUID, tt.userUID))
			}

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}

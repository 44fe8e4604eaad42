package register

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

	"github.com/magabrotheeeer/finance-tracker/internal/models"
	"github.com/magabrotheeeer/finance-tracker/internal/storage"
)

// MockService реализует интерфейс register.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Register(ctx context.Context, email, rawPassword, firstName, lastName, businessName, businessType string) (string, *models.User, error) {
	args := m.Called(ctx, email, rawPassword, firstName, lastName, businessName, businessType)
	if res := args.Get(1); res != nil {
		return args.String(0), res.(*models.User), args.Error(2)
	}
	return args.String(0), nil, args.Error(2)
}

func TestRegisterHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	validBody := `{"email":"owner@example.com","password":"secret-password","first_name":"Anna","last_name":"Rossi","business_name":"Caffe Roma","business_type":"restaurant"}`

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешная регистрация",
			body: validBody,
			setupMock: func(m *MockService) {
				user := &models.User{
					UID:              "uid-1",
					Email:            "owner@example.com",
					SubscriptionPlan: "free",
				}
				m.On("Register", mock.Anything, "owner@example.com", "secret-password",
					"Anna", "Rossi", "Caffe Roma", "restaurant").Return("jwt-token", user, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"token":"jwt-token"`,
		},
		{
			name:           "некорректный JSON",
			body:           `{"email":`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `invalid request body`,
		},
		{
			name:           "некорректная почта",
			body:           `{"email":"not-an-email","password":"secret-password","first_name":"Anna","last_name":"Rossi"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Email`,
		},
		{
			name:           "слишком короткий пароль",
			body:           `{"email":"owner@example.com","password":"short","first_name":"Anna","last_name":"Rossi"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Password`,
		},
		{
			name: "почта уже занята",
			body: validBody,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, "owner@example.com", "secret-password",
					"Anna", "Rossi", "Caffe Roma", "restaurant").Return("", nil, storage.ErrUserExists)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `email already registered`,
		},
		{
			name: "внутренняя ошибка сервиса",
			body: validBody,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, "owner@example.com", "secret-password",
					"Anna", "Rossi", "Caffe Roma", "restaurant").Return("", nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `failed to register user`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}

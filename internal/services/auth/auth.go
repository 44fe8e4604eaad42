// Package services содержит логику бизнес-уровня для работы с пользователями и аутентификацией.
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/finance-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/finance-tracker/internal/lib/password"
	"github.com/magabrotheeeer/finance-tracker/internal/models"
	"github.com/magabrotheeeer/finance-tracker/internal/plan"
)

// ErrInvalidCredentials возвращается при неверной паре почта/пароль.
// Текст ошибки одинаков для несуществующей почты и неверного пароля.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его UID.
	RegisterUser(ctx context.Context, user models.User) (string, error)

	// GetUserByEmail возвращает пользователя по почте или ошибку, если не найден.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByUID возвращает пользователя по идентификатору.
	GetUserByUID(ctx context.Context, uid string) (*models.User, error)

	// UpdateUserProfile применяет частичное обновление профиля.
	UpdateUserProfile(ctx context.Context, uid string, fields models.UpdateProfileFields) (*models.User, error)
}

// AuthService отвечает за регистрацию, авторизацию и профиль пользователя.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Register создает нового пользователя с хэшированием пароля и бесплатным
// тарифом по умолчанию, затем сразу выдаёт JWT.
func (s *AuthService) Register(ctx context.Context, email, rawPassword, firstName, lastName, businessName, businessType string) (string, *models.User, error) {
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", nil, err
	}
	user := models.User{
		UID:                uuid.NewString(),
		Email:              NormalizeEmail(email),
		PasswordHash:       hashed,
		FirstName:          strings.TrimSpace(firstName),
		LastName:           strings.TrimSpace(lastName),
		BusinessName:       strings.TrimSpace(businessName),
		BusinessType:       strings.TrimSpace(businessType),
		SubscriptionPlan:   plan.TierFree, // дефолтный тариф при регистрации
		SubscriptionStatus: "active",
	}
	uid, err := s.users.RegisterUser(ctx, user)
	if err != nil {
		return "", nil, err
	}
	user.UID = uid

	token, err := s.jwtMaker.GenerateToken(user.UID, user.Email)
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}

// Login проверяет пароль пользователя и генерирует JWT.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (string, *models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	token, err := s.jwtMaker.GenerateToken(user.UID, user.Email)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Me возвращает профиль текущего пользователя.
func (s *AuthService) Me(ctx context.Context, userUID string) (*models.User, error) {
	return s.users.GetUserByUID(ctx, userUID)
}

// UpdateProfile применяет частичное обновление профиля и возвращает
// актуальное состояние пользователя.
func (s *AuthService) UpdateProfile(ctx context.Context, userUID string, fields models.UpdateProfileFields) (*models.User, error) {
	return s.users.UpdateUserProfile(ctx, userUID, fields)
}

// NormalizeEmail приводит почту к канонической форме:
// без пробелов по краям и в нижнем регистре.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

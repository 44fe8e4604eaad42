// Package services содержит бизнес-логику тарифов и платных подписок:
// список тарифов, создание сессии оплаты, статус и отмена.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/finance-tracker/internal/config"
	"github.com/magabrotheeeer/finance-tracker/internal/models"
	"github.com/magabrotheeeer/finance-tracker/internal/paymentprovider"
	"github.com/magabrotheeeer/finance-tracker/internal/plan"
)

// ErrUnknownTier возвращается при попытке оформить подписку
// на несуществующий или бесплатный тариф.
var ErrUnknownTier = errors.New("unknown or non-purchasable tier")

// ErrNoActiveSubscription возвращается при отмене без платной подписки.
var ErrNoActiveSubscription = errors.New("no active paid subscription")

// UserRepository описывает методы работы с подпиской пользователя в базе.
type UserRepository interface {
	GetUserByUID(ctx context.Context, uid string) (*models.User, error)
	// ActivateSubscription включает платный тариф и привязывает клиента провайдера.
	ActivateSubscription(ctx context.Context, userUID, planName, customerID string, endDate *time.Time) error
	// UpdateSubscriptionByCustomerID меняет тариф и/или статус по клиенту провайдера.
	UpdateSubscriptionByCustomerID(ctx context.Context, customerID, planName, status string, endDate *time.Time) error
	// CancelSubscriptionByCustomerID возвращает пользователя на бесплатный тариф.
	CancelSubscriptionByCustomerID(ctx context.Context, customerID string) error
}

// ProviderClient описывает операции платёжного провайдера.
type ProviderClient interface {
	CreateCheckoutSession(req paymentprovider.CreateCheckoutRequest) (*paymentprovider.CreateCheckoutResponse, error)
	CancelSubscription(customerID string) (*paymentprovider.CancelSubscriptionResponse, error)
}

// SubscriptionStatus — состояние подписки пользователя для выдачи наружу.
type SubscriptionStatus struct {
	Plan    string      `json:"plan"`
	Status  string      `json:"status"`
	EndDate *time.Time  `json:"end_date"`
	Limits  plan.Limits `json:"limits"`
}

// BillingService реализует операции с тарифами и платёжным провайдером.
type BillingService struct {
	users    UserRepository
	provider ProviderClient
	cfg      config.PaymentProvider
	log      *slog.Logger
}

// NewBillingService создает новый экземпляр BillingService.
func NewBillingService(users UserRepository, provider ProviderClient, cfg config.PaymentProvider, log *slog.Logger) *BillingService {
	return &BillingService{
		users:    users,
		provider: provider,
		cfg:      cfg,
		log:      log,
	}
}

// Plans возвращает публичную таблицу тарифов.
func (s *BillingService) Plans() map[string]plan.Plan {
	return plan.All()
}

// CreateCheckout создает сессию оплаты для перехода на платный тариф
// и возвращает URL платёжной страницы.
func (s *BillingService) CreateCheckout(ctx context.Context, userUID, tier string) (string, error) {
	var priceID string
	switch tier {
	case plan.TierPro:
		priceID = s.cfg.ProPriceID
	case plan.TierPremium:
		priceID = s.cfg.PremiumPriceID
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownTier, tier)
	}

	user, err := s.users.GetUserByUID(ctx, userUID)
	if err != nil {
		return "", err
	}

	resp, err := s.provider.CreateCheckoutSession(paymentprovider.CreateCheckoutRequest{
		PriceID:           priceID,
		Mode:              "subscription",
		SuccessURL:        s.cfg.CheckoutSuccessURL,
		CancelURL:         s.cfg.CheckoutCancelURL,
		CustomerEmail:     user.Email,
		ClientReferenceID: user.UID,
		Metadata:          map[string]string{"plan": tier},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	s.log.Info("created checkout session",
		slog.String("user_uid", userUID),
		slog.String("tier", tier),
		slog.String("session_id", resp.ID))
	return resp.URL, nil
}

// Status возвращает текущее состояние подписки пользователя вместе
// с лимитами его тарифа.
func (s *BillingService) Status(ctx context.Context, userUID string) (*SubscriptionStatus, error) {
	user, err := s.users.GetUserByUID(ctx, userUID)
	if err != nil {
		return nil, err
	}
	return &SubscriptionStatus{
		Plan:    user.SubscriptionPlan,
		Status:  user.SubscriptionStatus,
		EndDate: user.SubscriptionEndDate,
		Limits:  plan.Get(user.SubscriptionPlan).Limits,
	}, nil
}

// Cancel запрашивает у провайдера отмену подписки в конце оплаченного
// периода. Тариф в базе меняется вебхуком после подтверждения провайдером.
func (s *BillingService) Cancel(ctx context.Context, userUID string) error {
	user, err := s.users.GetUserByUID(ctx, userUID)
	if err != nil {
		return err
	}
	if user.SubscriptionPlan == plan.TierFree || user.ProviderCustomerID == nil {
		return ErrNoActiveSubscription
	}

	if _, err := s.provider.CancelSubscription(*user.ProviderCustomerID); err != nil {
		return fmt.Errorf("failed to cancel subscription: %w", err)
	}

	s.log.Info("requested subscription cancellation", slog.String("user_uid", userUID))
	return nil
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/finance-tracker/internal/paymentprovider"
	"github.com/magabrotheeeer/finance-tracker/internal/plan"
)

// ProcessWebhookEvent применяет событие платёжного провайдера к подписке
// пользователя. Неизвестные типы событий игнорируются без ошибки:
// провайдер шлёт больше типов, чем нам нужно.
func (s *BillingService) ProcessWebhookEvent(ctx context.Context, event paymentprovider.Event) error {
	log := s.log.With(slog.String("event_id", event.ID), slog.String("event_type", event.Type))

	switch event.Type {
	case paymentprovider.EventCheckoutCompleted:
		var session paymentprovider.CheckoutSession
		if err := json.Unmarshal(event.Data.Object, &session); err != nil {
			return fmt.Errorf("failed to unmarshal checkout session: %w", err)
		}
		tier := session.Metadata["plan"]
		if !plan.Exists(tier) || tier == plan.TierFree {
			return fmt.Errorf("%w: %q in checkout metadata", ErrUnknownTier, tier)
		}
		if err := s.users.ActivateSubscription(ctx, session.ClientReferenceID, tier, session.Customer, nil); err != nil {
			return err
		}
		log.Info("subscription activated",
			slog.String("user_uid", session.ClientReferenceID),
			slog.String("tier", tier))

	case paymentprovider.EventSubscriptionUpdated:
		var sub paymentprovider.Subscription
		if err := json.Unmarshal(event.Data.Object, &sub); err != nil {
			return fmt.Errorf("failed to unmarshal subscription: %w", err)
		}
		endDate := unixDate(sub.CurrentPeriodEnd)
		if err := s.users.UpdateSubscriptionByCustomerID(ctx, sub.Customer, sub.Metadata["plan"], mapProviderStatus(sub.Status), endDate); err != nil {
			return err
		}
		log.Info("subscription updated", slog.String("customer", sub.Customer), slog.String("status", sub.Status))

	case paymentprovider.EventSubscriptionDeleted:
		var sub paymentprovider.Subscription
		if err := json.Unmarshal(event.Data.Object, &sub); err != nil {
			return fmt.Errorf("failed to unmarshal subscription: %w", err)
		}
		if err := s.users.CancelSubscriptionByCustomerID(ctx, sub.Customer); err != nil {
			return err
		}
		log.Info("subscription canceled", slog.String("customer", sub.Customer))

	case paymentprovider.EventInvoicePaymentSucceeded:
		var invoice paymentprovider.Invoice
		if err := json.Unmarshal(event.Data.Object, &invoice); err != nil {
			return fmt.Errorf("failed to unmarshal invoice: %w", err)
		}
		endDate := unixDate(invoice.PeriodEnd)
		if err := s.users.UpdateSubscriptionByCustomerID(ctx, invoice.Customer, "", "active", endDate); err != nil {
			return err
		}
		log.Info("invoice paid", slog.String("customer", invoice.Customer))

	case paymentprovider.EventInvoicePaymentFailed:
		var invoice paymentprovider.Invoice
		if err := json.Unmarshal(event.Data.Object, &invoice); err != nil {
			return fmt.Errorf("failed to unmarshal invoice: %w", err)
		}
		if err := s.users.UpdateSubscriptionByCustomerID(ctx, invoice.Customer, "", "past_due", nil); err != nil {
			return err
		}
		log.Warn("invoice payment failed", slog.String("customer", invoice.Customer))

	default:
		log.Info("ignoring unsupported webhook event")
	}
	return nil
}

// mapProviderStatus сводит статусы провайдера к трём внутренним.
func mapProviderStatus(status string) string {
	switch status {
	case "active", "trialing":
		return "active"
	case "past_due", "unpaid", "incomplete":
		return "past_due"
	case "canceled", "incomplete_expired":
		return "canceled"
	default:
		return status
	}
}

func unixDate(ts int64) *time.Time {
	if ts == 0 {
		return nil
	}
	t := time.Unix(ts, 0).UTC()
	return &t
}

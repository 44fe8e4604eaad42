package paymentprovider

import "encoding/json"

// Типы событий, приходящих от платёжного провайдера в вебхук
const (
	EventCheckoutCompleted       = "checkout.session.completed"
	EventSubscriptionUpdated     = "customer.subscription.updated"
	EventSubscriptionDeleted     = "customer.subscription.deleted"
	EventInvoicePaymentSucceeded = "invoice.payment_succeeded"
	EventInvoicePaymentFailed    = "invoice.payment_failed"
)

// Event событие вебхука, полезная нагрузка разбирается по типу
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// CheckoutSession данные сессии оплаты из события checkout.session.completed
type CheckoutSession struct {
	ID                string            `json:"id"`
	Customer          string            `json:"customer"`
	Subscription      string            `json:"subscription"`
	ClientReferenceID string            `json:"client_reference_id"`
	Metadata          map[string]string `json:"metadata"`
}

// Subscription данные подписки из событий customer.subscription.*
type Subscription struct {
	ID               string            `json:"id"`
	Customer         string            `json:"customer"`
	Status           string            `json:"status"`
	CurrentPeriodEnd int64             `json:"current_period_end"`
	Metadata         map[string]string `json:"metadata"`
}

// Invoice данные счёта из событий invoice.payment_*
type Invoice struct {
	ID           string `json:"id"`
	Customer     string `json:"customer"`
	Subscription string `json:"subscription"`
	PeriodEnd    int64  `json:"period_end"`
}

// CreateCheckoutRequest запрос на создание сессии оплаты
type CreateCheckoutRequest struct {
	PriceID           string            `json:"price_id" validate:"required"`
	Mode              string            `json:"mode"`
	SuccessURL        string            `json:"success_url" validate:"required"`
	CancelURL         string            `json:"cancel_url" validate:"required"`
	CustomerEmail     string            `json:"customer_email"`
	ClientReferenceID string            `json:"client_reference_id"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

// CreateCheckoutResponse ответ провайдера с URL страницы оплаты
type CreateCheckoutResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CancelSubscriptionResponse ответ на запрос отмены подписки
type CancelSubscriptionResponse struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	CancelAtPeriodEnd bool   `json:"cancel_at_period_end"`
}

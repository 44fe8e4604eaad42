// Package webhook реализует HTTP-обработчик событий платёжного провайдера.
//
// Подпись тела проверяется до разбора JSON. Обработчик открыт без JWT,
// аутентификация происходит по HMAC-подписи запроса.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/finance-tracker/internal/config"
	"github.com/magabrotheeeer/finance-tracker/internal/http/response"
	"github.com/magabrotheeeer/finance-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/finance-tracker/internal/paymentprovider"
	services "github.com/magabrotheeeer/finance-tracker/internal/services/billing"
)

// maxBodySize ограничивает тело вебхука, провайдер шлёт события много меньше.
const maxBodySize = 1 << 20

// SignatureHeader содержит HMAC-подпись тела запроса.
const SignatureHeader = "X-Provider-Signature"

// Service описывает интерфейс применения событий провайдера.
type Service interface {
	ProcessWebhookEvent(ctx context.Context, event paymentprovider.Event) error
}

// Handler управляет HTTP-запросами вебхуков провайдера.
type Handler struct {
	log     *slog.Logger
	service Service
	cfg     config.PaymentProvider
}

// New создает новый Handler с переданными логгером, сервисом и настройками провайдера.
func New(log *slog.Logger, service Service, cfg config.PaymentProvider) *Handler {
	return &Handler{log: log, service: service, cfg: cfg}
}

// ServeHTTP godoc
// @Summary Вебхук платёжного провайдера
// @Description Принимает события подписки от провайдера. Запрос должен быть подписан HMAC-SHA256 в заголовке X-Provider-Signature.
// @Tags Billing
// @Accept  json
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректное тело события"
// @Failure 401 {object} response.ErrorResponse "Неверная подпись"
// @Failure 500 {object} response.ErrorResponse "Ошибка обработки события"
// @Router /billing/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.webhook"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to read body"))
		return
	}

	signature := r.Header.Get(SignatureHeader)
	if !paymentprovider.VerifySignature(h.cfg.WebhookSecret, body, signature) {
		log.Error("invalid webhook signature")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid signature"))
		return
	}

	var event paymentprovider.Event
	if err := json.Unmarshal(body, &event); err != nil {
		log.Error("failed to decode webhook event", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode event"))
		return
	}

	log.Info("received webhook event",
		slog.String("event_id", event.ID),
		slog.String("event_type", event.Type))

	if err := h.service.ProcessWebhookEvent(r.Context(), event); err != nil {
		if errors.Is(err, services.ErrUnknownTier) {
			log.Error("event references unknown tier", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("unknown tier in event"))
			return
		}
		log.Error("failed to process webhook event", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not process event"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]bool{"received": true}))
}

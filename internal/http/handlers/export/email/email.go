// Package email реализует HTTP-обработчик постановки отчёта в почтовую рассылку.
package email

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/finance-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/finance-tracker/internal/http/response"
	"github.com/magabrotheeeer/finance-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/finance-tracker/internal/plan"
)

// Service описывает интерфейс постановки отчёта в очередь рассылки.
type Service interface {
	SendEmail(ctx context.Context, userUID string, year, month int) error
}

// Handler управляет HTTP-запросами отправки отчёта на почту.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Отправка отчёта на почту
// @Description Ставит месячный отчёт в очередь рассылки. Письмо с PDF отправляет фоновый воркер. Доступно на тарифе premium.
// @Tags Export
// @Produce  json
// @Param year query int false "Год (по умолчанию текущий)"
// @Param month query int false "Месяц (по умолчанию текущий)"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный период"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Почтовые отчёты недоступны на тарифе"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /export/email [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.export.email"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	year, month, err := periodFromQuery(r)
	if err != nil {
		log.Error("invalid period", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid period"))
		return
	}

	if err := h.service.SendEmail(r.Context(), userUID, year, month); err != nil {
		if errors.Is(err, plan.ErrLimitExceeded) {
			log.Error("plan limit exceeded", sl.Err(err))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("email reports are not available on your plan"))
			return
		}
		log.Error("failed to queue email report", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not queue report"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]bool{"queued": true}))
}

func periodFromQuery(r *http.Request) (int, int, error) {
	now := time.Now().UTC()
	year, month := now.Year(), int(now.Month())

	if raw := r.URL.Query().Get("year"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, err
		}
		year = v
	}
	if raw := r.URL.Query().Get("month"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, err
		}
		if v < 1 || v > 12 {
			return 0, 0, errors.New("month out of range")
		}
		month = v
	}
	return year, month, nil
}

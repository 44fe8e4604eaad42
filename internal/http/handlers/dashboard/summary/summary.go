// Package summary реализует HTTP-обработчик месячной сводки дашборда.
//
// Показатели считаются из сырой записи при чтении, процентные изменения
// берутся к предыдущему месяцу. Без параметров запроса отдаётся текущий месяц.
package summary

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
	"github.com/magabrotheeeer/finance-tracker/internal/models"
	"github.com/magabrotheeeer/finance-tracker/internal/plan"
)

// Service описывает интерфейс вычисления сводки.
type Service interface {
	Summary(ctx context.Context, userUID string, year, month int) (*models.Summary, error)
}

// Handler управляет HTTP-запросами сводки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Месячная сводка
// @Description Производные показатели месяца и изменения к предыдущему месяцу.
// @Tags Dashboard
// @Produce  json
// @Param year query int false "Год (по умолчанию текущий)"
// @Param month query int false "Месяц (по умолчанию текущий)"
// @Success 200 {object} models.Summary
// @Failure 400 {object} response.ErrorResponse "Некорректный период"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Период вне окна тарифа"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /dashboard/summary [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.dashboard.summary"
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

	summary, err := h.service.Summary(r.Context(), userUID, year, month)
	if err != nil {
		if errors.Is(err, plan.ErrLimitExceeded) {
			log.Error("plan limit exceeded", sl.Err(err))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("period is outside your plan history window"))
			return
		}
		log.Error("failed to build summary", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not build summary"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(summary))
}

// periodFromQuery читает (год, месяц) из query-параметров,
// по умолчанию текущий месяц UTC.
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

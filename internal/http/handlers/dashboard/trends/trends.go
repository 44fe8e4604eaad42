// Package trends реализует HTTP-обработчик агрегатов за скользящее окно месяцев.
package trends

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/finance-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/finance-tracker/internal/http/response"
	"github.com/magabrotheeeer/finance-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/finance-tracker/internal/models"
)

// Service описывает интерфейс расчета трендов.
type Service interface {
	Trends(ctx context.Context, userUID string, months int) (*models.TrendStats, error)
}

// Handler управляет HTTP-запросами трендов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Тренды за период
// @Description Суммарная выручка, затраты, прибыль, средняя маржа, лучший и худший месяц.
// @Tags Dashboard
// @Produce  json
// @Param months query int false "Размер окна в месяцах (по умолчанию 12, обрезается тарифом)"
// @Success 200 {object} models.TrendStats
// @Failure 400 {object} response.ErrorResponse "Некорректный параметр months"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /dashboard/trends [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.dashboard.trends"
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

	months := 0
	if raw := r.URL.Query().Get("months"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			log.Error("invalid months param", slog.String("months", raw))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid months param"))
			return
		}
		months = v
	}

	trends, err := h.service.Trends(r.Context(), userUID, months)
	if err != nil {
		log.Error("failed to build trends", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not build trends"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(trends))
}

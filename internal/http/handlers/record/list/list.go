// Package list реализует HTTP-обработчик списка записей пользователя
// с необязательными фильтрами по году и месяцу.
package list

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

// Service описывает интерфейс бизнес-логики списка записей.
type Service interface {
	List(ctx context.Context, userUID string, year, month *int) ([]*models.Record, error)
}

// Handler управляет HTTP-запросами списка записей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список записей
// @Description Возвращает записи от новых к старым, опционально за год и месяц.
// @Tags Records
// @Produce  json
// @Param year query int false "Фильтр по году"
// @Param month query int false "Фильтр по месяцу"
// @Success 200 {array} models.Record
// @Failure 400 {object} response.ErrorResponse "Некорректный фильтр"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /records [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.record.list"
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

	var year, month *int
	if raw := r.URL.Query().Get("year"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			log.Error("invalid year filter", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid year filter"))
			return
		}
		year = &v
	}
	if raw := r.URL.Query().Get("month"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 12 {
			log.Error("invalid month filter", slog.String("month", raw))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid month filter"))
			return
		}
		month = &v
	}

	records, err := h.service.List(r.Context(), userUID, year, month)
	if err != nil {
		log.Error("failed to list records", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list records"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(records))
}

// Package readperiod реализует HTTP-обработчик чтения записи за конкретный
// (год, месяц) из параметров пути.
package readperiod

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/finance-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/finance-tracker/internal/http/response"
	"github.com/magabrotheeeer/finance-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/finance-tracker/internal/models"
	"github.com/magabrotheeeer/finance-tracker/internal/storage"
)

// Service описывает интерфейс чтения записи за период.
type Service interface {
	GetByPeriod(ctx context.Context, userUID string, year, month int) (*models.Record, error)
}

// Handler управляет HTTP-запросами чтения записи за период.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Запись за период
// @Tags Records
// @Produce  json
// @Param year path int true "Год"
// @Param month path int true "Месяц (1-12)"
// @Success 200 {object} models.Record
// @Failure 400 {object} response.ErrorResponse "Некорректный период"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Записи за период нет"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /records/{year}/{month} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.record.readperiod"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	year, errYear := strconv.Atoi(chi.URLParam(r, "year"))
	month, errMonth := strconv.Atoi(chi.URLParam(r, "month"))
	if errYear != nil || errMonth != nil || month < 1 || month > 12 {
		log.Error("invalid period in path")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid period"))
		return
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	rec, err := h.service.GetByPeriod(r.Context(), userUID, year, month)
	if err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("record not found"))
			return
		}
		log.Error("failed to read record", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read record"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(rec))
}

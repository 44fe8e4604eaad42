// Package plans реализует HTTP-обработчик каталога тарифов.
package plans

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/finance-tracker/internal/http/response"
	"github.com/magabrotheeeer/finance-tracker/internal/plan"
)

// Service описывает интерфейс каталога тарифов.
type Service interface {
	Plans() map[string]plan.Plan
}

// Handler управляет HTTP-запросами каталога тарифов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Каталог тарифов
// @Description Все доступные тарифы с лимитами и возможностями. Авторизация не требуется.
// @Tags Billing
// @Produce  json
// @Success 200 {object} response.Response
// @Router /billing/plans [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.plans"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	log.Debug("serving plan catalog")
	render.JSON(w, r, response.StatusOKWithData(h.service.Plans()))
}

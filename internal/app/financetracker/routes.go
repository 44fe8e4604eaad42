// Package financetracker предоставляет маршруты для основного приложения.
package financetracker

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/finance-tracker/internal/config"
	"github.com/magabrotheeeer/finance-tracker/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/finance-tracker/internal/http/handlers/auth/me"
	"github.com/magabrotheeeer/finance-tracker/internal/http/handlers/auth/profileupdate"
	"github.com/magabrotheeeer/finance-tracker/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/finance-tracker/internal/http/handlers/billing/cancel"
	"github.com/magabrotheeeer/finance-tracker/internal/http/handlers/billing/checkout"
	"github.com/magabrotheeeer/finance-tracker/internal/http/handlers/billing/plans"
	"github.com/magabrotheeeer/finance-tracker/internal/http/handlers/billing/status"
	"github.com/magabrotheeeer/finance-tracker/internal/http/handlers/billing/webhook"
	"github.com/magabrotheeeer/finance-tracker/internal/http/handlers/dashboard/charts"
	"github.com/magabrotheeeer/finance-tracker/internal/http/handlers/dashboard/summary"
	"github.com/magabrotheeeer/finance-tracker/internal/http/handlers/dashboard/trends"
	"github.com/magabrotheeeer/finance-tracker/internal/http/handlers/export/email"
	"github.com/magabrotheeeer/finance-tracker/internal/http/handlers/export/pdf"
	"github.com/magabrotheeeer/finance-tracker/internal/http/handlers/export/preview"
	"github.com/magabrotheeeer/finance-tracker/internal/http/handlers/health"
	"github.com/magabrotheeeer/finance-tracker/internal/http/handlers/record/create"
	"github.com/magabrotheeeer/finance-tracker/internal/http/handlers/record/list"
	"github.com/magabrotheeeer/finance-tracker/internal/http/handlers/record/readperiod"
	"github.com/magabrotheeeer/finance-tracker/internal/http/handlers/record/remove"
	"github.com/magabrotheeeer/finance-tracker/internal/http/handlers/record/update"
	"github.com/magabrotheeeer/finance-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/finance-tracker/internal/lib/jwt"
	analyticsservice "github.com/magabrotheeeer/finance-tracker/internal/services/analytics"
	authservice "github.com/magabrotheeeer/finance-tracker/internal/services/auth"
	billingservice "github.com/magabrotheeeer/finance-tracker/internal/services/billing"
	exportservice "github.com/magabrotheeeer/finance-tracker/internal/services/export"
	recordservice "github.com/magabrotheeeer/finance-tracker/internal/services/record"
	"github.com/magabrotheeeer/finance-tracker/internal/storage"
)

// RouteServices собирает зависимости, необходимые маршрутам приложения.
type RouteServices struct {
	DB        *storage.Storage
	JWTMaker  jwt.Maker
	Auth      *authservice.AuthService
	Records   *recordservice.RecordService
	Analytics *analyticsservice.AnalyticsService
	Billing   *billingservice.BillingService
	Export    *exportservice.ExportService
	Provider  config.PaymentProvider
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, svc *RouteServices) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, svc.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, svc.Auth).ServeHTTP)
		r.Get("/billing/plans", plans.New(logger, svc.Billing).ServeHTTP)
		r.Get("/health", health.New(logger, svc.DB.DB).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(svc.JWTMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Get("/auth/me", me.New(logger, svc.Auth).ServeHTTP)
			r.Put("/auth/profile", profileupdate.New(logger, svc.Auth).ServeHTTP)

			r.Post("/records", create.New(logger, svc.Records).ServeHTTP)
			r.Get("/records", list.New(logger, svc.Records).ServeHTTP)
			r.Get("/records/{year}/{month}", readperiod.New(logger, svc.Records).ServeHTTP)
			r.Put("/records/{id}", update.New(logger, svc.Records).ServeHTTP)
			r.Delete("/records/{id}", remove.New(logger, svc.Records).ServeHTTP)

			r.Get("/dashboard/summary", summary.New(logger, svc.Analytics).ServeHTTP)
			r.Get("/dashboard/charts", charts.New(logger, svc.Analytics).ServeHTTP)
			r.Get("/dashboard/trends", trends.New(logger, svc.Analytics).ServeHTTP)

			r.Post("/export/pdf", pdf.New(logger, svc.Export).ServeHTTP)
			r.Post("/export/email", email.New(logger, svc.Export).ServeHTTP)
			r.Post("/export/preview", preview.New(logger, svc.Export).ServeHTTP)

			r.Post("/billing/checkout", checkout.New(logger, svc.Billing).ServeHTTP)
			r.Get("/billing/status", status.New(logger, svc.Billing).ServeHTTP)
			r.Post("/billing/cancel", cancel.New(logger, svc.Billing).ServeHTTP)
		})

		// Webhook endpoint (без аутентификации)
		r.Post("/billing/webhook", webhook.New(logger, svc.Billing, svc.Provider).ServeHTTP)
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}

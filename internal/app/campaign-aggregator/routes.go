// Package campaignaggregator предоставляет маршруты для основного приложения.
package campaignaggregator

import (
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/copartnerin/campaign-aggregator/internal/http/handlers/group/groupcreate"
	"github.com/copartnerin/campaign-aggregator/internal/http/handlers/group/grouplist"
	"github.com/copartnerin/campaign-aggregator/internal/http/handlers/group/groupremove"
	"github.com/copartnerin/campaign-aggregator/internal/http/handlers/health"
	"github.com/copartnerin/campaign-aggregator/internal/http/handlers/schedule/schedulecreate"
	"github.com/copartnerin/campaign-aggregator/internal/http/handlers/schedule/scheduleremove"
	"github.com/copartnerin/campaign-aggregator/internal/http/handlers/scheduling/viewclose"
	"github.com/copartnerin/campaign-aggregator/internal/http/handlers/scheduling/viewopen"
	"github.com/copartnerin/campaign-aggregator/internal/http/handlers/scheduling/viewread"
	"github.com/copartnerin/campaign-aggregator/internal/http/handlers/template/templatecreate"
	"github.com/copartnerin/campaign-aggregator/internal/http/handlers/template/templatelist"
	"github.com/copartnerin/campaign-aggregator/internal/http/handlers/template/templateremove"
	"github.com/copartnerin/campaign-aggregator/internal/http/handlers/users/applyfilter"
	"github.com/copartnerin/campaign-aggregator/internal/http/handlers/users/clearfilter"
	"github.com/copartnerin/campaign-aggregator/internal/http/handlers/users/list"
	"github.com/copartnerin/campaign-aggregator/internal/http/handlers/users/refresh"
	"github.com/copartnerin/campaign-aggregator/internal/http/middlewarectx"
	aggregatorservice "github.com/copartnerin/campaign-aggregator/internal/services/aggregator"
	campaignservice "github.com/copartnerin/campaign-aggregator/internal/services/campaign"
	schedulingservice "github.com/copartnerin/campaign-aggregator/internal/services/scheduling"

	"log/slog"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, aggregatorService *aggregatorservice.Service, campaignService *campaignservice.Service, schedulingService *schedulingservice.Service) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/users", list.New(logger, aggregatorService).ServeHTTP)
		r.Post("/users/refresh", refresh.New(logger, aggregatorService).ServeHTTP)
		r.Post("/users/filter", applyfilter.New(logger, aggregatorService).ServeHTTP)
		r.Delete("/users/filter", clearfilter.New(logger, aggregatorService).ServeHTTP)

		// Мутации кампаний ограничены по частоте
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Get("/groups", grouplist.New(logger, campaignService).ServeHTTP)
			r.Post("/groups", groupcreate.New(logger, campaignService).ServeHTTP)
			r.Delete("/groups/{id}", groupremove.New(logger, campaignService).ServeHTTP)
			r.Get("/templates", templatelist.New(logger, campaignService).ServeHTTP)
			r.Post("/templates", templatecreate.New(logger, campaignService).ServeHTTP)
			r.Delete("/templates/{id}", templateremove.New(logger, campaignService).ServeHTTP)
			r.Post("/schedules", schedulecreate.New(logger, campaignService).ServeHTTP)
			r.Delete("/schedules/{id}", scheduleremove.New(logger, campaignService).ServeHTTP)
		})

		r.Post("/scheduling/view", viewopen.New(logger, schedulingService).ServeHTTP)
		r.Get("/scheduling/view", viewread.New(logger, schedulingService).ServeHTTP)
		r.Delete("/scheduling/view", viewclose.New(logger, schedulingService).ServeHTTP)
	})

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}

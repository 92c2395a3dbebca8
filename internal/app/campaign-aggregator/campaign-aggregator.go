package campaignaggregator

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/rs/cors"

	"github.com/copartnerin/campaign-aggregator/internal/cache"
	"github.com/copartnerin/campaign-aggregator/internal/clients/subscriberapi"
	"github.com/copartnerin/campaign-aggregator/internal/clients/userapi"
	"github.com/copartnerin/campaign-aggregator/internal/clients/whatsappapi"
	"github.com/copartnerin/campaign-aggregator/internal/config"
	"github.com/copartnerin/campaign-aggregator/internal/lib/confirm"
	"github.com/copartnerin/campaign-aggregator/internal/lib/sl"
	aggregatorservice "github.com/copartnerin/campaign-aggregator/internal/services/aggregator"
	campaignservice "github.com/copartnerin/campaign-aggregator/internal/services/campaign"
	schedulingservice "github.com/copartnerin/campaign-aggregator/internal/services/scheduling"
)

type App struct {
	server     *http.Server
	logger     *slog.Logger
	cache      *cache.Cache
	aggregator *aggregatorservice.Service
	scheduling *schedulingservice.Service
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	userClient := userapi.New(cfg.UserAPI.BaseURL, cfg.UserAPI.PageSize, cfg.UserAPI.TimeoutUser)
	subscriberClient := subscriberapi.New(cfg.SubscriberAPI.BaseURL, cfg.SubscriberAPI.MaxConcurrency,
		cfg.SubscriberAPI.TimeoutSub, logger)
	whatsappClient := whatsappapi.New(cfg.WhatsappAPI.BaseURL, cfg.WhatsappAPI.TimeoutWap)

	aggregatorService := aggregatorservice.New(userClient, subscriberClient, whatsappClient,
		cacheRedis, cfg.Aggregator.SnapshotTTL, logger)
	// Подтверждение уже получено на HTTP-границе (confirm=true).
	campaignService := campaignservice.NewService(whatsappClient, confirm.Yes, logger)
	schedulingService := schedulingservice.NewService(whatsappClient, whatsappClient, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, aggregatorService, campaignService, schedulingService)

	handler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(router)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      handler,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:     srv,
		logger:     logger,
		cache:      cacheRedis,
		aggregator: aggregatorService,
		scheduling: schedulingService,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	// Первая агрегация запускается в фоне: подъём сервера не ждёт
	// завершения O(N) запросов подписок.
	go func() {
		if _, err := a.aggregator.Refresh(ctx, false); err != nil {
			a.logger.Error("initial aggregation failed", sl.Err(err))
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		a.scheduling.Close()
		err := a.server.Shutdown(timeoutCtx)
		if cerr := a.cache.Db.Close(); cerr != nil {
			a.logger.Warn("failed to close redis client", sl.Err(cerr))
		}
		return err
	}
}

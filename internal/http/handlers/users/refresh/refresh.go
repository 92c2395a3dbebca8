// Package refresh реализует HTTP-обработчик пересборки снапшота
// объединённых пользователей.
package refresh

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/copartnerin/campaign-aggregator/internal/http/response"
	"github.com/copartnerin/campaign-aggregator/internal/lib/sl"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс пересборки снапшота.
type Service interface {
	Refresh(ctx context.Context, force bool) (int, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Пересобрать снапшот пользователей
// @Description Перечитывает роcтер и подписки всех пользователей. force=true пропускает кеш.
// @Tags Users
// @Produce json
// @Param force query bool false "Пропустить кеш снапшота"
// @Success 200 {object} map[string]any "Число пользователей в снапшоте"
// @Failure 502 {object} response.ErrorResponse "Ошибка обращения к внешнему сервису"
// @Router /users/refresh [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.refresh"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	force := r.URL.Query().Get("force") == "true"

	count, err := h.service.Refresh(r.Context(), force)
	if err != nil {
		log.Error("failed to refresh combined snapshot", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("failed to refresh users"))
		return
	}

	log.Info("combined snapshot refreshed", "count", count)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"users_count": count,
	}))
}

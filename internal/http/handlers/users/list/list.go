// Package list реализует HTTP-обработчик выдачи страницы объединённых
// пользователей с учётом активного фильтра сессии.
package list

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/copartnerin/campaign-aggregator/internal/http/response"
	"github.com/copartnerin/campaign-aggregator/internal/lib/sl"
	"github.com/copartnerin/campaign-aggregator/internal/models"
	"github.com/copartnerin/campaign-aggregator/internal/services/aggregator"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс чтения снапшота объединённых пользователей.
type Service interface {
	List(limit, offset int) ([]models.CombinedUser, int, int, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Страница объединённых пользователей
// @Description Возвращает страницу пользователей с подписками, прошедших активный фильтр.
// @Tags Users
// @Produce json
// @Param limit query int false "Размер страницы (по умолчанию 100)"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]any "Страница пользователей"
// @Failure 503 {object} response.ErrorResponse "Снапшот ещё не собран"
// @Router /users [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 100
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	page, total, visible, err := h.service.List(limit, offset)
	if err != nil {
		if errors.Is(err, aggregator.ErrNoSnapshot) {
			log.Warn("snapshot is not ready yet")
			w.WriteHeader(http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("combined users are not ready, refresh first"))
			return
		}
		log.Error("failed to list combined users", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list users"))
		return
	}

	log.Info("listed combined users", "count", len(page))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"total_users":   total,
		"visible_users": visible,
		"list_count":    len(page),
		"users":         page,
	}))
}

// Package grouplist реализует HTTP-обработчик списка групп рассылки.
package grouplist

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/copartnerin/campaign-aggregator/internal/http/response"
	"github.com/copartnerin/campaign-aggregator/internal/lib/sl"
	"github.com/copartnerin/campaign-aggregator/internal/models"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс чтения групп.
type Service interface {
	ListGroups(ctx context.Context, page int, search string) ([]models.Group, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список групп рассылки
// @Tags Groups
// @Produce json
// @Param page query int false "Номер страницы"
// @Param search query string false "Поиск по имени"
// @Success 200 {object} map[string]any "Группы"
// @Failure 502 {object} response.ErrorResponse "Ошибка whatsapp-бэкенда"
// @Router /groups [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.group.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 0 {
		page = 0
	}
	search := r.URL.Query().Get("search")

	groups, err := h.service.ListGroups(r.Context(), page, search)
	if err != nil {
		log.Error("failed to list groups", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("failed to fetch groups"))
		return
	}

	log.Info("listed groups", "count", len(groups))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"list_count": len(groups),
		"groups":     groups,
	}))
}

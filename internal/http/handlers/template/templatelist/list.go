// Package templatelist реализует HTTP-обработчик списка шаблонов кампаний.
package templatelist

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

type Service interface {
	ListTemplates(ctx context.Context, page int, search string) ([]models.Template, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список шаблонов кампаний
// @Tags Templates
// @Produce json
// @Param page query int false "Номер страницы"
// @Param search query string false "Поиск по имени"
// @Success 200 {object} map[string]any "Шаблоны"
// @Failure 502 {object} response.ErrorResponse "Ошибка whatsapp-бэкенда"
// @Router /templates [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.template.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 0 {
		page = 0
	}
	search := r.URL.Query().Get("search")

	templates, err := h.service.ListTemplates(r.Context(), page, search)
	if err != nil {
		log.Error("failed to list templates", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("failed to fetch templates"))
		return
	}

	log.Info("listed templates", "count", len(templates))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"list_count": len(templates),
		"templates":  templates,
	}))
}

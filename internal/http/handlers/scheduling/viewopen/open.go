// Package viewopen реализует HTTP-обработчик открытия представления расписаний.
// Открытие строит сгруппированное представление и запускает тикер отсчётов;
// предыдущее представление при этом закрывается.
package viewopen

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/copartnerin/campaign-aggregator/internal/http/response"
	"github.com/copartnerin/campaign-aggregator/internal/lib/sl"
	"github.com/copartnerin/campaign-aggregator/internal/services/scheduling"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс открытия представления.
type Service interface {
	Open(ctx context.Context) (*scheduling.View, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Открыть представление расписаний
// @Description Загружает расписания, группирует их и запускает обратные отсчёты.
// @Tags Scheduling
// @Produce json
// @Success 200 {object} map[string]any "Идентификатор представления и строки"
// @Failure 502 {object} response.ErrorResponse "Ошибка whatsapp-бэкенда"
// @Router /scheduling/view [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.scheduling.viewopen"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	view, err := h.service.Open(r.Context())
	if err != nil {
		log.Error("failed to open scheduling view", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("failed to fetch schedules"))
		return
	}

	rows := view.Rows()
	log.Info("scheduling view opened", slog.String("view_id", view.ID), "groups", len(rows))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"view_id": view.ID,
		"groups":  rows,
	}))
}

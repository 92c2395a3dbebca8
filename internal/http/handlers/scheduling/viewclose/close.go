// Package viewclose реализует HTTP-обработчик закрытия представления расписаний.
// Закрытие останавливает тикер отсчётов и освобождает кеш имён шаблонов.
package viewclose

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/copartnerin/campaign-aggregator/internal/http/response"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс закрытия представления.
type Service interface {
	Close()
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Закрыть представление расписаний
// @Tags Scheduling
// @Produce json
// @Success 200 {object} response.Response "Представление закрыто"
// @Router /scheduling/view [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.scheduling.viewclose"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	h.service.Close()

	log.Info("scheduling view closed")
	render.JSON(w, r, response.StatusOKWithData(nil))
}

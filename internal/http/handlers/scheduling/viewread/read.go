// Package viewread реализует HTTP-обработчик чтения представления расписаний
// с текущими значениями обратных отсчётов.
package viewread

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/copartnerin/campaign-aggregator/internal/http/response"
	"github.com/copartnerin/campaign-aggregator/internal/services/scheduling"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс доступа к активному представлению.
type Service interface {
	Active() (*scheduling.View, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Прочитать представление расписаний
// @Tags Scheduling
// @Produce json
// @Success 200 {object} map[string]any "Сгруппированные строки с отсчётами"
// @Failure 404 {object} response.ErrorResponse "Представление не открыто"
// @Router /scheduling/view [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.scheduling.viewread"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	view, err := h.service.Active()
	if err != nil {
		if errors.Is(err, scheduling.ErrNoActiveView) {
			log.Warn("scheduling view is not open")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("scheduling view is not open"))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to read scheduling view"))
		return
	}

	rows := view.Rows()
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"view_id": view.ID,
		"groups":  rows,
	}))
}

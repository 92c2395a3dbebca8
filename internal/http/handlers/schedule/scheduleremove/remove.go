// Package scheduleremove реализует HTTP-обработчик удаления расписания отправки.
package scheduleremove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/copartnerin/campaign-aggregator/internal/http/response"
	"github.com/copartnerin/campaign-aggregator/internal/lib/sl"
	"github.com/copartnerin/campaign-aggregator/internal/services/campaign"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	DeleteSchedule(ctx context.Context, id string) error
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удалить расписание отправки
// @Tags Schedules
// @Produce json
// @Param id path string true "Идентификатор расписания"
// @Param confirm query bool true "Подтверждение удаления"
// @Success 200 {object} response.Response "Расписание удалено"
// @Failure 400 {object} response.ErrorResponse "Нет подтверждения"
// @Failure 502 {object} response.ErrorResponse "Ошибка whatsapp-бэкенда"
// @Router /schedules/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.schedule.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	if id == "" {
		log.Error("missing schedule id")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid id"))
		return
	}

	if r.URL.Query().Get("confirm") != "true" {
		log.Warn("delete requested without confirmation", slog.String("id", id))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("confirmation required"))
		return
	}

	if err := h.service.DeleteSchedule(r.Context(), id); err != nil {
		if errors.Is(err, campaign.ErrConfirmDeclined) {
			log.Warn("delete declined", slog.String("id", id))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("confirmation required"))
			return
		}
		log.Error("failed to delete schedule", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("failed to delete schedule"))
		return
	}

	log.Info("schedule deleted", slog.String("id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"deleted_id": id,
	}))
}

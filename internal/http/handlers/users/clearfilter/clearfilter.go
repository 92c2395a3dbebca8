// Package clearfilter реализует HTTP-обработчик сброса фильтра сессии.
package clearfilter

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

// Service описывает интерфейс сброса фильтра.
type Service interface {
	ClearFilter()
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Сбросить фильтр пользователей
// @Tags Users
// @Produce json
// @Success 200 {object} response.Response "Фильтр сброшен"
// @Router /users/filter [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.clearfilter"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	h.service.ClearFilter()

	log.Info("filter cleared")
	render.JSON(w, r, response.StatusOKWithData(nil))
}

// Package applyfilter реализует HTTP-обработчик установки фильтра сессии.
//
// Критерии валидируются до установки: некорректный фильтр не трогает
// текущее состояние и не вызывает внешних запросов.
package applyfilter

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/copartnerin/campaign-aggregator/internal/http/response"
	"github.com/copartnerin/campaign-aggregator/internal/lib/sl"
	"github.com/copartnerin/campaign-aggregator/internal/models"
)

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс установки фильтра.
type Service interface {
	ApplyFilter(ctx context.Context, criteria models.FilterCriteria) error
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Установить фильтр пользователей
// @Description Применяет критерии фильтра к списку объединённых пользователей.
// @Tags Users
// @Accept json
// @Produce json
// @Param request body models.FilterCriteria true "Критерии фильтра"
// @Success 200 {object} response.Response "Фильтр применён"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /users/filter [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.applyfilter"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var criteria models.FilterCriteria
	if err := json.NewDecoder(r.Body).Decode(&criteria); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(criteria); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	if err := h.service.ApplyFilter(r.Context(), criteria); err != nil {
		log.Error("failed to apply filter", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("failed to apply filter"))
		return
	}

	log.Info("filter applied")
	render.JSON(w, r, response.StatusOKWithData(nil))
}

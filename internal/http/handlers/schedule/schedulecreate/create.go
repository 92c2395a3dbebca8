// Package schedulecreate реализует HTTP-обработчик создания расписания отправки.
package schedulecreate

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

type Service interface {
	CreateSchedule(ctx context.Context, req models.DummySchedule) (*models.Schedule, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать расписание отправки
// @Description Привязывает группу к шаблону на заданное время. Статус нового расписания — pending.
// @Tags Schedules
// @Accept json
// @Produce json
// @Param request body models.DummySchedule true "Данные нового расписания"
// @Success 200 {object} map[string]any "Созданное расписание"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или время"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Ошибка whatsapp-бэкенда"
// @Router /schedules [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.schedule.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummySchedule
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	schedule, err := h.service.CreateSchedule(r.Context(), req)
	if err != nil {
		log.Error("failed to create schedule", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("failed to create schedule"))
		return
	}

	log.Info("schedule created", slog.String("id", schedule.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"schedule": schedule,
	}))
}

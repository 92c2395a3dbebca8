// Package groupcreate реализует HTTP-обработчик создания группы рассылки.
//
// Handler принимает JSON-запрос с именем группы и участниками, валидирует его
// до обращения к сети и возвращает созданную группу.
package groupcreate

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

// Service описывает интерфейс создания группы.
type Service interface {
	CreateGroup(ctx context.Context, req models.DummyGroup) (*models.Group, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать группу рассылки
// @Description Создаёт группу из выбранных пользователей. Требуются имя группы и хотя бы один участник.
// @Tags Groups
// @Accept json
// @Produce json
// @Param request body models.DummyGroup true "Данные новой группы"
// @Success 200 {object} map[string]any "Созданная группа"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Ошибка whatsapp-бэкенда"
// @Router /groups [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.group.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyGroup
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

	group, err := h.service.CreateGroup(r.Context(), req)
	if err != nil {
		log.Error("failed to create group", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("failed to create group"))
		return
	}

	log.Info("group created", slog.String("id", group.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"group": group,
	}))
}

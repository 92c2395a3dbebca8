// Package campaign содержит бизнес-логику управления группами рассылки,
// шаблонами сообщений и расписаниями отправок.
package campaign

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/copartnerin/campaign-aggregator/internal/lib/confirm"
	"github.com/copartnerin/campaign-aggregator/internal/models"
)

// ErrConfirmDeclined возвращается, когда удаление не было подтверждено.
var ErrConfirmDeclined = errors.New("operation was not confirmed")

// WhatsappRepository определяет операции whatsapp-бэкенда,
// используемые сервисом кампаний.
type WhatsappRepository interface {
	ListGroups(ctx context.Context, page int, search string) ([]models.Group, error)
	CreateGroup(ctx context.Context, group models.DummyGroup) (*models.Group, error)
	DeleteGroup(ctx context.Context, id string) error
	ListTemplates(ctx context.Context, page int, search string) ([]models.Template, error)
	CreateTemplate(ctx context.Context, template models.DummyTemplate) (*models.Template, error)
	DeleteTemplate(ctx context.Context, id string) error
	CreateSchedule(ctx context.Context, groupID, templateID string, scheduledTime time.Time) (*models.Schedule, error)
	DeleteSchedule(ctx context.Context, id string) error
}

// Service проксирует CRUD-операции кампаний в whatsapp-бэкенд.
// Каждое удаление проходит через внедрённое подтверждение.
type Service struct {
	repo    WhatsappRepository
	confirm confirm.Func
	log     *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(repo WhatsappRepository, confirmFn confirm.Func, log *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		confirm: confirmFn,
		log:     log,
	}
}

// ListGroups возвращает группы рассылки.
func (s *Service) ListGroups(ctx context.Context, page int, search string) ([]models.Group, error) {
	return s.repo.ListGroups(ctx, page, search)
}

// CreateGroup создаёт группу рассылки из валидированного запроса.
func (s *Service) CreateGroup(ctx context.Context, req models.DummyGroup) (*models.Group, error) {
	group, err := s.repo.CreateGroup(ctx, req)
	if err != nil {
		return nil, err
	}
	s.log.Info("created campaign group",
		slog.String("id", group.ID),
		slog.Int("users", len(req.Users)))
	return group, nil
}

// DeleteGroup удаляет группу после подтверждения.
func (s *Service) DeleteGroup(ctx context.Context, id string) error {
	if !s.confirm("Are you sure you want to delete this group?") {
		return ErrConfirmDeclined
	}
	if err := s.repo.DeleteGroup(ctx, id); err != nil {
		return err
	}
	s.log.Info("deleted campaign group", slog.String("id", id))
	return nil
}

// ListTemplates возвращает шаблоны сообщений.
func (s *Service) ListTemplates(ctx context.Context, page int, search string) ([]models.Template, error) {
	return s.repo.ListTemplates(ctx, page, search)
}

// CreateTemplate создаёт шаблон сообщения.
func (s *Service) CreateTemplate(ctx context.Context, req models.DummyTemplate) (*models.Template, error) {
	template, err := s.repo.CreateTemplate(ctx, req)
	if err != nil {
		return nil, err
	}
	s.log.Info("created campaign template", slog.String("id", template.ID))
	return template, nil
}

// DeleteTemplate удаляет шаблон после подтверждения.
func (s *Service) DeleteTemplate(ctx context.Context, id string) error {
	if !s.confirm("Are you sure you want to delete this template?") {
		return ErrConfirmDeclined
	}
	if err := s.repo.DeleteTemplate(ctx, id); err != nil {
		return err
	}
	s.log.Info("deleted campaign template", slog.String("id", id))
	return nil
}

// CreateSchedule создаёт расписание отправки со статусом pending.
// Время приходит строкой RFC3339.
func (s *Service) CreateSchedule(ctx context.Context, req models.DummySchedule) (*models.Schedule, error) {
	scheduledTime, err := time.Parse(time.RFC3339, req.ScheduledTime)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduled time: %w", err)
	}

	schedule, err := s.repo.CreateSchedule(ctx, req.GroupID, req.TemplateID, scheduledTime)
	if err != nil {
		return nil, err
	}
	s.log.Info("created schedule",
		slog.String("id", schedule.ID),
		slog.Time("scheduled_time", scheduledTime))
	return schedule, nil
}

// DeleteSchedule удаляет расписание после подтверждения.
func (s *Service) DeleteSchedule(ctx context.Context, id string) error {
	if !s.confirm("Are you sure you want to delete this schedule?") {
		return ErrConfirmDeclined
	}
	if err := s.repo.DeleteSchedule(ctx, id); err != nil {
		return err
	}
	s.log.Info("deleted schedule", slog.String("id", id))
	return nil
}

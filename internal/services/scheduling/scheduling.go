// Package scheduling реализует сгруппированное представление расписаний
// рассылок с живым обратным отсчётом по каждой группе.
package scheduling

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/copartnerin/campaign-aggregator/internal/lib/sl"
	"github.com/copartnerin/campaign-aggregator/internal/metrics"
	"github.com/copartnerin/campaign-aggregator/internal/models"
)

// ErrNoActiveView возвращается при чтении, когда представление не открыто.
var ErrNoActiveView = errors.New("scheduling view is not open")

// Имя шаблона, подставляемое при ошибке его загрузки.
const unknownTemplateName = "Unknown Template"

// ScheduleRepository определяет доступ к расписаниям отправок.
type ScheduleRepository interface {
	ListSchedules(ctx context.Context) ([]models.Schedule, error)
}

// TemplateRepository определяет загрузку шаблона по идентификатору.
type TemplateRepository interface {
	GetTemplate(ctx context.Context, id string) (*models.Template, error)
}

// ScheduleRow — строка расписания внутри группы.
type ScheduleRow struct {
	ID            string    `json:"id"`
	TemplateID    string    `json:"templateId"`
	TemplateName  string    `json:"templateName"`
	ScheduledTime time.Time `json:"scheduledTime"`
	Status        string    `json:"status"`
}

// GroupRow — группа рассылки с её расписаниями, отсортированными по времени,
// и текущим значением обратного отсчёта.
type GroupRow struct {
	GroupName     string        `json:"groupName"`
	DateCreatedOn time.Time     `json:"dateCreatedOn"`
	Countdown     string        `json:"countdown"`
	Schedules     []ScheduleRow `json:"schedules"`

	// Цель отсчёта: время самого раннего расписания группы плюс 24 часа.
	target time.Time
}

// View — открытое представление расписаний. Владеет тикером пересчёта
// отсчётов и кешем имён шаблонов на время своей жизни.
type View struct {
	ID string

	log       *slog.Logger
	templates TemplateRepository
	clock     func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once

	mu            sync.RWMutex
	closed        bool
	groups        []GroupRow
	templateNames map[string]string
}

// Service управляет жизненным циклом представления расписаний.
// Одновременно открыто не более одного представления; открытие нового
// закрывает предыдущее.
type Service struct {
	schedules ScheduleRepository
	templates TemplateRepository
	log       *slog.Logger
	clock     func() time.Time

	mu     sync.Mutex
	active *View
}

// NewService создает новый экземпляр Service.
func NewService(schedules ScheduleRepository, templates TemplateRepository, log *slog.Logger) *Service {
	return &Service{
		schedules: schedules,
		templates: templates,
		log:       log,
		clock:     time.Now,
	}
}

// Open загружает расписания, строит сгруппированное представление и
// запускает тикер отсчётов. Ошибка загрузки оставляет прежнее
// представление нетронутым.
func (s *Service) Open(ctx context.Context) (*View, error) {
	list, err := s.schedules.ListSchedules(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch schedules: %w", err)
	}

	v := s.buildView(list)

	s.mu.Lock()
	prev := s.active
	s.active = v
	s.mu.Unlock()
	if prev != nil {
		prev.Close()
	}

	go v.resolveTemplateNames()
	go v.runCountdowns()

	s.log.Info("scheduling view opened",
		slog.String("view_id", v.ID),
		slog.Int("groups", len(v.groups)))
	return v, nil
}

// Active возвращает открытое представление.
func (s *Service) Active() (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return nil, ErrNoActiveView
	}
	return s.active, nil
}

// Close закрывает активное представление, если оно открыто.
func (s *Service) Close() {
	s.mu.Lock()
	v := s.active
	s.active = nil
	s.mu.Unlock()
	if v != nil {
		v.Close()
		s.log.Info("scheduling view closed", slog.String("view_id", v.ID))
	}
}

// buildView группирует расписания по имени группы в порядке первого
// появления и сортирует каждую группу по времени отправки. Записи без
// ссылки на группу в представление не попадают.
func (s *Service) buildView(list []models.Schedule) *View {
	byName := make(map[string][]models.Schedule)
	var order []string
	for _, sched := range list {
		if sched.GroupID == nil || sched.GroupID.GroupName == "" {
			s.log.Warn("schedule has no resolvable group reference",
				slog.String("schedule_id", sched.ID))
			metrics.ScheduleRowsSkipped.Inc()
			continue
		}
		name := sched.GroupID.GroupName
		if _, ok := byName[name]; !ok {
			order = append(order, name)
		}
		byName[name] = append(byName[name], sched)
	}

	now := s.clock()
	groups := make([]GroupRow, 0, len(order))
	for _, name := range order {
		scheds := byName[name]
		sort.SliceStable(scheds, func(i, j int) bool {
			return scheds[i].ScheduledTime.Before(scheds[j].ScheduledTime)
		})

		rows := make([]ScheduleRow, 0, len(scheds))
		for _, sched := range scheds {
			rows = append(rows, ScheduleRow{
				ID:            sched.ID,
				TemplateID:    sched.TemplateID,
				ScheduledTime: sched.ScheduledTime,
				Status:        sched.Status,
			})
		}

		target := scheds[0].ScheduledTime.Add(24 * time.Hour)
		groups = append(groups, GroupRow{
			GroupName:     name,
			DateCreatedOn: scheds[0].GroupID.DateCreatedOn,
			Countdown:     FormatCountdown(now, target),
			Schedules:     rows,
			target:        target,
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &View{
		ID:            uuid.NewString(),
		log:           s.log,
		templates:     s.templates,
		clock:         s.clock,
		ctx:           ctx,
		cancel:        cancel,
		groups:        groups,
		templateNames: make(map[string]string),
	}
}

// runCountdowns пересчитывает отсчёты всех групп раз в секунду,
// пока представление не закрыто.
func (v *View) runCountdowns() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-v.ctx.Done():
			return
		case <-ticker.C:
			now := v.clock()
			v.mu.Lock()
			for i := range v.groups {
				v.groups[i].Countdown = FormatCountdown(now, v.groups[i].target)
			}
			v.mu.Unlock()
		}
	}
}

// resolveTemplateNames загружает имя каждого уникального шаблона один раз
// на жизнь представления. Ошибка загрузки даёт "Unknown Template".
// Результаты, пришедшие после закрытия представления, отбрасываются.
func (v *View) resolveTemplateNames() {
	seen := make(map[string]struct{})
	for _, group := range v.Rows() {
		for _, row := range group.Schedules {
			if _, ok := seen[row.TemplateID]; ok || row.TemplateID == "" {
				continue
			}
			seen[row.TemplateID] = struct{}{}

			name := unknownTemplateName
			template, err := v.templates.GetTemplate(v.ctx, row.TemplateID)
			if err != nil {
				if v.ctx.Err() != nil {
					return
				}
				v.log.Warn("failed to resolve template name",
					slog.String("template_id", row.TemplateID), sl.Err(err))
			} else {
				name = template.Name
			}
			v.applyTemplateName(row.TemplateID, name)
		}
	}
}

// applyTemplateName обновляет имя шаблона во всех строках.
// После закрытия представления вызов — no-op.
func (v *View) applyTemplateName(templateID, name string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.templateNames[templateID] = name
	for gi := range v.groups {
		for si := range v.groups[gi].Schedules {
			if v.groups[gi].Schedules[si].TemplateID == templateID {
				v.groups[gi].Schedules[si].TemplateName = name
			}
		}
	}
}

// TemplateName возвращает закешированное имя шаблона.
func (v *View) TemplateName(templateID string) (string, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	name, ok := v.templateNames[templateID]
	return name, ok
}

// Rows возвращает копию сгруппированных строк с текущими отсчётами.
func (v *View) Rows() []GroupRow {
	v.mu.RLock()
	defer v.mu.RUnlock()

	rows := make([]GroupRow, len(v.groups))
	copy(rows, v.groups)
	for i := range rows {
		schedules := make([]ScheduleRow, len(rows[i].Schedules))
		copy(schedules, rows[i].Schedules)
		rows[i].Schedules = schedules
	}
	return rows
}

// Close останавливает тикер и помечает представление закрытым.
// Повторные вызовы безопасны.
func (v *View) Close() {
	v.once.Do(func() {
		v.mu.Lock()
		v.closed = true
		v.mu.Unlock()
		v.cancel()
	})
}

// FormatCountdown форматирует оставшееся до цели время как "HH:MM".
// Часы отображаются по модулю 24, как на исходном экране; истёкший
// отсчёт застывает на "00:00".
func FormatCountdown(now, target time.Time) string {
	remaining := target.Sub(now)
	if remaining <= 0 {
		return "00:00"
	}
	hours := int(remaining.Hours()) % 24
	minutes := int(remaining.Minutes()) % 60
	return fmt.Sprintf("%02d:%02d", hours, minutes)
}

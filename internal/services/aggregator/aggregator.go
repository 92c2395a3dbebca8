// Package aggregator содержит бизнес-логику объединения роcтера пользователей
// с их подписками в единый снапшот и выдачи отфильтрованных страниц.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/copartnerin/campaign-aggregator/internal/lib/sl"
	"github.com/copartnerin/campaign-aggregator/internal/metrics"
	"github.com/copartnerin/campaign-aggregator/internal/models"
	"github.com/copartnerin/campaign-aggregator/internal/services/filterengine"
)

// ErrNoSnapshot возвращается, пока не завершилась ни одна агрегация.
var ErrNoSnapshot = errors.New("combined snapshot is not ready")

const snapshotCacheKey = "campaign:combined_users"

// UserRepository определяет доступ к роcтеру пользователей.
type UserRepository interface {
	// ListUsers возвращает полный роcтер, отсортированный по дате регистрации.
	ListUsers(ctx context.Context) ([]models.User, error)
}

// SubscriptionRepository определяет пакетный доступ к подпискам.
// Реализация обязана вернуть запись для каждого переданного id,
// деградируя отдельные ошибки до пустых списков.
type SubscriptionRepository interface {
	ListByUserIDs(ctx context.Context, userIDs []string) (map[string][]models.Subscription, error)
}

// GroupRepository отдаёт группы рассылки для критерия фильтра по группам.
type GroupRepository interface {
	ListGroups(ctx context.Context, page int, search string) ([]models.Group, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// Service хранит снапшот объединённых пользователей и активный фильтр сессии.
//
// Снапшот публикуется атомарно: пока не завершились запросы подписок по всем
// пользователям роcтера, потребители продолжают видеть предыдущие данные.
type Service struct {
	users       UserRepository
	subs        SubscriptionRepository
	groups      GroupRepository
	cache       Cache
	snapshotTTL time.Duration
	log         *slog.Logger

	mu         sync.RWMutex
	generation uint64
	ready      bool
	snapshot   []models.CombinedUser
	criteria   *models.FilterCriteria
	engine     filterengine.Engine
}

// New создает новый экземпляр Service.
func New(users UserRepository, subs SubscriptionRepository, groups GroupRepository,
	cache Cache, snapshotTTL time.Duration, log *slog.Logger) *Service {
	return &Service{
		users:       users,
		subs:        subs,
		groups:      groups,
		cache:       cache,
		snapshotTTL: snapshotTTL,
		log:         log,
		engine:      filterengine.New(nil),
	}
}

// Refresh перечитывает роcтер и собирает снапшот заново. Возвращает число
// пользователей в собранном снапшоте. При force=true кеш снапшота пропускается.
//
// Обновление стоит один запрос подписок на каждого пользователя роcтера,
// поэтому результат кешируется на snapshotTTL.
func (s *Service) Refresh(ctx context.Context, force bool) (int, error) {
	gen := s.beginRefresh()

	if !force {
		var cached []models.CombinedUser
		found, err := s.cache.Get(snapshotCacheKey, &cached)
		if err != nil {
			s.log.Warn("failed to read snapshot cache", sl.Err(err))
		}
		if found {
			if !s.commit(gen, cached) {
				s.log.Info("stale snapshot discarded", slog.Uint64("generation", gen))
				return 0, nil
			}
			s.log.Info("combined snapshot restored from cache", slog.Int("users", len(cached)))
			return len(cached), nil
		}
	}

	start := time.Now()

	roster, err := s.users.ListUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch roster: %w", err)
	}

	ids := make([]string, 0, len(roster))
	seen := make(map[string]struct{}, len(roster))
	for _, u := range roster {
		if _, ok := seen[u.ID]; ok {
			continue
		}
		seen[u.ID] = struct{}{}
		ids = append(ids, u.ID)
	}

	subsByID, err := s.subs.ListByUserIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("fetch subscriptions: %w", err)
	}

	combined := make([]models.CombinedUser, 0, len(ids))
	appended := make(map[string]struct{}, len(ids))
	for _, u := range roster {
		if _, ok := appended[u.ID]; ok {
			continue
		}
		appended[u.ID] = struct{}{}
		subs := subsByID[u.ID]
		if subs == nil {
			subs = []models.Subscription{}
		}
		combined = append(combined, models.CombinedUser{User: u, Subscriptions: subs})
	}

	metrics.AggregationDuration.Observe(time.Since(start).Seconds())

	if !s.commit(gen, combined) {
		s.log.Info("stale aggregation discarded", slog.Uint64("generation", gen))
		return 0, nil
	}

	if err := s.cache.Set(snapshotCacheKey, combined, s.snapshotTTL); err != nil {
		s.log.Warn("failed to cache snapshot", sl.Err(err))
	}

	s.log.Info("combined snapshot published",
		slog.Int("users", len(combined)),
		slog.Duration("took", time.Since(start)))
	return len(combined), nil
}

// beginRefresh открывает новое поколение снапшота. Коммит более старого
// поколения после этого становится no-op.
func (s *Service) beginRefresh() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	return s.generation
}

func (s *Service) commit(gen uint64, snapshot []models.CombinedUser) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return false
	}
	s.snapshot = snapshot
	s.ready = true
	return true
}

// Reset сбрасывает снапшот, фильтр и кеш: сессия просмотра закрыта.
// Ответы запросов, начатых до сброса, будут отброшены по поколению.
func (s *Service) Reset() {
	s.mu.Lock()
	s.generation++
	s.ready = false
	s.snapshot = nil
	s.criteria = nil
	s.engine = filterengine.New(nil)
	s.mu.Unlock()

	if err := s.cache.Invalidate(snapshotCacheKey); err != nil {
		s.log.Warn("failed to invalidate snapshot cache", sl.Err(err))
	}
}

// ApplyFilter устанавливает фильтр сессии. Для критерия по группам
// загружается актуальный состав групп рассылки.
func (s *Service) ApplyFilter(ctx context.Context, criteria models.FilterCriteria) error {
	var groups []models.Group
	if len(criteria.Groups) > 0 {
		var err error
		groups, err = s.groups.ListGroups(ctx, 0, "")
		if err != nil {
			return fmt.Errorf("fetch groups for filter: %w", err)
		}
	}

	s.mu.Lock()
	s.criteria = &criteria
	s.engine = filterengine.New(groups)
	s.mu.Unlock()

	s.log.Info("filter applied")
	return nil
}

// ClearFilter снимает фильтр сессии.
func (s *Service) ClearFilter() {
	s.mu.Lock()
	s.criteria = nil
	s.engine = filterengine.New(nil)
	s.mu.Unlock()

	s.log.Info("filter cleared")
}

// List возвращает страницу видимых (прошедших фильтр) пользователей,
// общее число пользователей снапшота и число видимых.
func (s *Service) List(limit, offset int) ([]models.CombinedUser, int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.ready {
		return nil, 0, 0, ErrNoSnapshot
	}

	visible := s.snapshot
	if s.criteria != nil {
		visible = make([]models.CombinedUser, 0, len(s.snapshot))
		for _, u := range s.snapshot {
			if s.engine.Matches(u, *s.criteria) {
				visible = append(visible, u)
			}
		}
	}

	if offset < 0 {
		offset = 0
	}
	if offset > len(visible) {
		offset = len(visible)
	}
	end := len(visible)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	page := make([]models.CombinedUser, end-offset)
	copy(page, visible[offset:end])
	return page, len(s.snapshot), len(visible), nil
}

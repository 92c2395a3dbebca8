package aggregator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/copartnerin/campaign-aggregator/internal/models"
)

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

type SubsRepoMock struct{ mock.Mock }

func (m *SubsRepoMock) ListByUserIDs(ctx context.Context, userIDs []string) (map[string][]models.Subscription, error) {
	args := m.Called(ctx, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]models.Subscription), args.Error(1)
}

type GroupRepoMock struct{ mock.Mock }

func (m *GroupRepoMock) ListGroups(ctx context.Context, page int, search string) ([]models.Group, error) {
	args := m.Called(ctx, page, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Group), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}
func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}
func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newService(users *UserRepoMock, subs *SubsRepoMock, groups *GroupRepoMock, cache *CacheMock) *Service {
	return New(users, subs, groups, cache, 10*time.Minute, newNoopLogger())
}

func roster() []models.User {
	return []models.User{
		{ID: "u1", Name: "Ravi", CreatedOn: time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)},
		{ID: "u2", Name: "Priya", CreatedOn: time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)},
		{ID: "u3", Name: "Amit", CreatedOn: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)},
	}
}

func TestRefresh_SnapshotIsComplete(t *testing.T) {
	users := new(UserRepoMock)
	subs := new(SubsRepoMock)
	cache := new(CacheMock)
	svc := newService(users, subs, new(GroupRepoMock), cache)

	cache.On("Get", snapshotCacheKey, mock.Anything).Return(false, nil).Once()
	users.On("ListUsers", mock.Anything).Return(roster(), nil).Once()
	subs.On("ListByUserIDs", mock.Anything, []string{"u1", "u2", "u3"}).Return(map[string][]models.Subscription{
		"u1": {{Amount: 999, PlanType: "Monthly"}},
		"u2": {},
		"u3": {},
	}, nil).Once()
	cache.On("Set", snapshotCacheKey, mock.Anything, 10*time.Minute).Return(nil).Once()

	count, err := svc.Refresh(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	page, total, visible, err := svc.List(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, 3, visible)
	require.Len(t, page, 3)
	// У каждого пользователя список подписок, пусть и пустой.
	for _, u := range page {
		assert.NotNil(t, u.Subscriptions)
	}
	assert.Equal(t, float64(999), page[0].TotalAmount())

	users.AssertExpectations(t)
	subs.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestRefresh_RosterErrorKeepsPreviousSnapshot(t *testing.T) {
	users := new(UserRepoMock)
	subs := new(SubsRepoMock)
	cache := new(CacheMock)
	svc := newService(users, subs, new(GroupRepoMock), cache)

	cache.On("Get", snapshotCacheKey, mock.Anything).Return(false, nil)
	cache.On("Set", snapshotCacheKey, mock.Anything, mock.Anything).Return(nil)
	users.On("ListUsers", mock.Anything).Return(roster(), nil).Once()
	subs.On("ListByUserIDs", mock.Anything, mock.Anything).Return(map[string][]models.Subscription{}, nil).Once()

	_, err := svc.Refresh(context.Background(), false)
	require.NoError(t, err)

	users.On("ListUsers", mock.Anything).Return(nil, errors.New("upstream down")).Once()
	_, err = svc.Refresh(context.Background(), false)
	require.Error(t, err)

	// Старый снапшот продолжает обслуживаться.
	_, total, _, err := svc.List(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func TestRefresh_CacheHitSkipsUpstream(t *testing.T) {
	users := new(UserRepoMock)
	subs := new(SubsRepoMock)
	cache := new(CacheMock)
	svc := newService(users, subs, new(GroupRepoMock), cache)

	cached := []models.CombinedUser{
		{User: models.User{ID: "u1"}, Subscriptions: []models.Subscription{}},
	}
	cache.On("Get", snapshotCacheKey, mock.Anything).Run(func(args mock.Arguments) {
		ptr := args.Get(1).(*[]models.CombinedUser)
		*ptr = cached
	}).Return(true, nil).Once()

	count, err := svc.Refresh(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	users.AssertNotCalled(t, "ListUsers", mock.Anything)
	subs.AssertNotCalled(t, "ListByUserIDs", mock.Anything, mock.Anything)
}

func TestRefresh_ForceBypassesCache(t *testing.T) {
	users := new(UserRepoMock)
	subs := new(SubsRepoMock)
	cache := new(CacheMock)
	svc := newService(users, subs, new(GroupRepoMock), cache)

	users.On("ListUsers", mock.Anything).Return(roster(), nil).Once()
	subs.On("ListByUserIDs", mock.Anything, mock.Anything).Return(map[string][]models.Subscription{}, nil).Once()
	cache.On("Set", snapshotCacheKey, mock.Anything, mock.Anything).Return(nil).Once()

	_, err := svc.Refresh(context.Background(), true)
	require.NoError(t, err)

	cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestRefresh_StaleGenerationIsDiscarded(t *testing.T) {
	users := new(UserRepoMock)
	subs := new(SubsRepoMock)
	cache := new(CacheMock)
	svc := newService(users, subs, new(GroupRepoMock), cache)

	users.On("ListUsers", mock.Anything).Return(roster(), nil).Once()
	// Сброс сессии во время агрегации открывает новое поколение.
	subs.On("ListByUserIDs", mock.Anything, mock.Anything).Run(func(_ mock.Arguments) {
		svc.Reset()
	}).Return(map[string][]models.Subscription{}, nil).Once()
	cache.On("Invalidate", snapshotCacheKey).Return(nil).Once()

	count, err := svc.Refresh(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// Устаревший результат не опубликован.
	_, _, _, err = svc.List(0, 0)
	assert.ErrorIs(t, err, ErrNoSnapshot)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func TestList_BeforeFirstRefresh(t *testing.T) {
	svc := newService(new(UserRepoMock), new(SubsRepoMock), new(GroupRepoMock), new(CacheMock))

	_, _, _, err := svc.List(0, 0)
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestList_Pagination(t *testing.T) {
	users := new(UserRepoMock)
	subs := new(SubsRepoMock)
	cache := new(CacheMock)
	svc := newService(users, subs, new(GroupRepoMock), cache)

	users.On("ListUsers", mock.Anything).Return(roster(), nil)
	subs.On("ListByUserIDs", mock.Anything, mock.Anything).Return(map[string][]models.Subscription{}, nil)
	cache.On("Set", snapshotCacheKey, mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Refresh(context.Background(), true)
	require.NoError(t, err)

	page, total, visible, err := svc.List(2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, 3, visible)
	require.Len(t, page, 2)
	assert.Equal(t, "u1", page[0].ID)

	page, _, _, err = svc.List(2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "u3", page[0].ID)

	// Смещение за пределами списка даёт пустую страницу, не ошибку.
	page, _, _, err = svc.List(2, 10)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestApplyFilter_NarrowsVisibleUsers(t *testing.T) {
	users := new(UserRepoMock)
	subs := new(SubsRepoMock)
	groups := new(GroupRepoMock)
	cache := new(CacheMock)
	svc := newService(users, subs, groups, cache)

	users.On("ListUsers", mock.Anything).Return([]models.User{
		{ID: "u1", IsKYC: true},
		{ID: "u2", IsKYC: false},
	}, nil)
	subs.On("ListByUserIDs", mock.Anything, mock.Anything).Return(map[string][]models.Subscription{}, nil)
	cache.On("Set", snapshotCacheKey, mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Refresh(context.Background(), true)
	require.NoError(t, err)

	err = svc.ApplyFilter(context.Background(), models.FilterCriteria{KYC: []string{"Yes"}})
	require.NoError(t, err)

	page, total, visible, err := svc.List(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, visible)
	require.Len(t, page, 1)
	assert.Equal(t, "u1", page[0].ID)

	// Группы не запрашивались: критерий по группам пуст.
	groups.AssertNotCalled(t, "ListGroups", mock.Anything, mock.Anything, mock.Anything)

	svc.ClearFilter()
	_, _, visible, err = svc.List(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, visible)
}

func TestApplyFilter_FetchesGroupsForGroupCriterion(t *testing.T) {
	users := new(UserRepoMock)
	subs := new(SubsRepoMock)
	groups := new(GroupRepoMock)
	cache := new(CacheMock)
	svc := newService(users, subs, groups, cache)

	users.On("ListUsers", mock.Anything).Return([]models.User{{ID: "u1"}, {ID: "u2"}}, nil)
	subs.On("ListByUserIDs", mock.Anything, mock.Anything).Return(map[string][]models.Subscription{}, nil)
	cache.On("Set", snapshotCacheKey, mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Refresh(context.Background(), true)
	require.NoError(t, err)

	groups.On("ListGroups", mock.Anything, 0, "").Return([]models.Group{
		{GroupName: "Diwali Promo", Users: []models.GroupUser{{UserID: "u2"}}},
	}, nil).Once()

	err = svc.ApplyFilter(context.Background(), models.FilterCriteria{Groups: []string{"Diwali Promo"}})
	require.NoError(t, err)

	page, _, visible, err := svc.List(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, visible)
	assert.Equal(t, "u2", page[0].ID)
	groups.AssertExpectations(t)
}

func TestApplyFilter_GroupFetchErrorLeavesFilterUntouched(t *testing.T) {
	users := new(UserRepoMock)
	subs := new(SubsRepoMock)
	groups := new(GroupRepoMock)
	cache := new(CacheMock)
	svc := newService(users, subs, groups, cache)

	users.On("ListUsers", mock.Anything).Return([]models.User{{ID: "u1"}}, nil)
	subs.On("ListByUserIDs", mock.Anything, mock.Anything).Return(map[string][]models.Subscription{}, nil)
	cache.On("Set", snapshotCacheKey, mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Refresh(context.Background(), true)
	require.NoError(t, err)

	groups.On("ListGroups", mock.Anything, 0, "").Return(nil, errors.New("whatsapp backend down")).Once()

	err = svc.ApplyFilter(context.Background(), models.FilterCriteria{Groups: []string{"Diwali Promo"}})
	require.Error(t, err)

	_, _, visible, err := svc.List(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, visible)
}

func TestDuplicateRosterEntriesAreCollapsed(t *testing.T) {
	users := new(UserRepoMock)
	subs := new(SubsRepoMock)
	cache := new(CacheMock)
	svc := newService(users, subs, new(GroupRepoMock), cache)

	users.On("ListUsers", mock.Anything).Return([]models.User{
		{ID: "u1"}, {ID: "u1"}, {ID: "u2"},
	}, nil)
	subs.On("ListByUserIDs", mock.Anything, []string{"u1", "u2"}).
		Return(map[string][]models.Subscription{}, nil).Once()
	cache.On("Set", snapshotCacheKey, mock.Anything, mock.Anything).Return(nil)

	count, err := svc.Refresh(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	subs.AssertExpectations(t)
}

package campaign

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

	"github.com/copartnerin/campaign-aggregator/internal/lib/confirm"
	"github.com/copartnerin/campaign-aggregator/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) ListGroups(ctx context.Context, page int, search string) ([]models.Group, error) {
	args := m.Called(ctx, page, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Group), args.Error(1)
}
func (m *RepoMock) CreateGroup(ctx context.Context, group models.DummyGroup) (*models.Group, error) {
	args := m.Called(ctx, group)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Group), args.Error(1)
}
func (m *RepoMock) DeleteGroup(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
func (m *RepoMock) ListTemplates(ctx context.Context, page int, search string) ([]models.Template, error) {
	args := m.Called(ctx, page, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Template), args.Error(1)
}
func (m *RepoMock) CreateTemplate(ctx context.Context, template models.DummyTemplate) (*models.Template, error) {
	args := m.Called(ctx, template)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Template), args.Error(1)
}
func (m *RepoMock) DeleteTemplate(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
func (m *RepoMock) CreateSchedule(ctx context.Context, groupID, templateID string, scheduledTime time.Time) (*models.Schedule, error) {
	args := m.Called(ctx, groupID, templateID, scheduledTime)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Schedule), args.Error(1)
}
func (m *RepoMock) DeleteSchedule(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestCreateGroup(t *testing.T) {
	repo := new(RepoMock)
	svc := NewService(repo, confirm.Yes, newNoopLogger())

	req := models.DummyGroup{
		GroupName: "Diwali Promo",
		Users:     []models.GroupUser{{UserID: "u1", Name: "Ravi", MobileNumber: "9999999999"}},
	}
	repo.On("CreateGroup", mock.Anything, req).Return(&models.Group{ID: "g1", GroupName: "Diwali Promo"}, nil).Once()

	group, err := svc.CreateGroup(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "g1", group.ID)
	repo.AssertExpectations(t)
}

func TestDeleteGroup_Confirmation(t *testing.T) {
	tests := []struct {
		name      string
		confirmFn confirm.Func
		wantErr   error
		deleted   bool
	}{
		{"confirmed", confirm.Yes, nil, true},
		{"declined", confirm.No, ErrConfirmDeclined, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			svc := NewService(repo, tt.confirmFn, newNoopLogger())

			if tt.deleted {
				repo.On("DeleteGroup", mock.Anything, "g1").Return(nil).Once()
			}

			err := svc.DeleteGroup(context.Background(), "g1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				repo.AssertNotCalled(t, "DeleteGroup", mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestDeleteTemplate_Declined(t *testing.T) {
	repo := new(RepoMock)
	svc := NewService(repo, confirm.No, newNoopLogger())

	err := svc.DeleteTemplate(context.Background(), "t1")
	assert.ErrorIs(t, err, ErrConfirmDeclined)
	repo.AssertNotCalled(t, "DeleteTemplate", mock.Anything, mock.Anything)
}

func TestDeleteSchedule_BackendError(t *testing.T) {
	repo := new(RepoMock)
	svc := NewService(repo, confirm.Yes, newNoopLogger())

	repo.On("DeleteSchedule", mock.Anything, "s1").Return(errors.New("backend down")).Once()

	err := svc.DeleteSchedule(context.Background(), "s1")
	assert.Error(t, err)
}

func TestCreateSchedule(t *testing.T) {
	scheduled := time.Date(2024, 3, 20, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		req     models.DummySchedule
		setup   func(r *RepoMock)
		wantErr bool
	}{
		{
			name: "success",
			req: models.DummySchedule{
				GroupID:       "g1",
				TemplateID:    "t1",
				ScheduledTime: scheduled.Format(time.RFC3339),
			},
			setup: func(r *RepoMock) {
				r.On("CreateSchedule", mock.Anything, "g1", "t1", scheduled).
					Return(&models.Schedule{ID: "s1", Status: models.ScheduleStatusPending}, nil).Once()
			},
		},
		{
			name: "invalid time format",
			req: models.DummySchedule{
				GroupID:       "g1",
				TemplateID:    "t1",
				ScheduledTime: "20-03-2024 15:00",
			},
			setup:   func(_ *RepoMock) {},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setup(repo)
			svc := NewService(repo, confirm.Yes, newNoopLogger())

			schedule, err := svc.CreateSchedule(context.Background(), tt.req)
			if tt.wantErr {
				require.Error(t, err)
				repo.AssertNotCalled(t, "CreateSchedule", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.ScheduleStatusPending, schedule.Status)
			repo.AssertExpectations(t)
		})
	}
}

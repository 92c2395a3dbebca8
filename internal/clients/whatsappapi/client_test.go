package whatsappapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copartnerin/campaign-aggregator/internal/models"
)

func TestListGroups(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/groups", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "promo", r.URL.Query().Get("search"))

		_, _ = w.Write([]byte(`[
			{"_id": "g1", "groupName": "Diwali Promo", "users": [{"userId": "u1", "name": "Ravi", "mobileNumber": "9999999999"}]}
		]`))
	}))
	defer server.Close()

	client := New(server.URL, 5*time.Second)

	groups, err := client.ListGroups(context.Background(), 2, "promo")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "g1", groups[0].ID)
	assert.Equal(t, "Diwali Promo", groups[0].GroupName)
	require.Len(t, groups[0].Users, 1)
	assert.Equal(t, "u1", groups[0].Users[0].UserID)
}

func TestCreateGroup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/groups", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req models.DummyGroup
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Diwali Promo", req.GroupName)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"group": {"_id": "g1", "groupName": "Diwali Promo"}}`))
	}))
	defer server.Close()

	client := New(server.URL, 5*time.Second)

	group, err := client.CreateGroup(context.Background(), models.DummyGroup{
		GroupName: "Diwali Promo",
		Users:     []models.GroupUser{{UserID: "u1", Name: "Ravi", MobileNumber: "9999999999"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "g1", group.ID)
}

func TestDeleteGroup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/groups/g1", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(server.URL, 5*time.Second)

	require.NoError(t, client.DeleteGroup(context.Background(), "g1"))
}

func TestGetTemplate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/templates/t1", r.URL.Path)
		_, _ = w.Write([]byte(`{"_id": "t1", "name": "Offer", "campaignName": "Diwali"}`))
	}))
	defer server.Close()

	client := New(server.URL, 5*time.Second)

	template, err := client.GetTemplate(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "Offer", template.Name)
}

func TestCreateSchedule_SendsPendingStatus(t *testing.T) {
	scheduled := time.Date(2024, 3, 20, 15, 0, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/schedule", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "g1", req["groupId"])
		assert.Equal(t, "t1", req["templateId"])
		assert.Equal(t, models.ScheduleStatusPending, req["status"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"_id": "s1", "templateId": "t1", "status": "pending"}`))
	}))
	defer server.Close()

	client := New(server.URL, 5*time.Second)

	schedule, err := client.CreateSchedule(context.Background(), "g1", "t1", scheduled)
	require.NoError(t, err)
	assert.Equal(t, "s1", schedule.ID)
	assert.Equal(t, models.ScheduleStatusPending, schedule.Status)
}

func TestListSchedules_NestedGroupRef(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/schedule", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{
				"_id": "s1",
				"groupId": {"_id": "g1", "groupName": "Diwali Promo", "dateCreatedOn": "2024-03-10T12:00:00Z"},
				"templateId": "t1",
				"scheduledTime": "2024-03-20T15:00:00Z",
				"status": "pending"
			},
			{"_id": "s2", "groupId": null, "templateId": "t1", "scheduledTime": "2024-03-21T15:00:00Z", "status": "pending"}
		]`))
	}))
	defer server.Close()

	client := New(server.URL, 5*time.Second)

	schedules, err := client.ListSchedules(context.Background())
	require.NoError(t, err)
	require.Len(t, schedules, 2)
	require.NotNil(t, schedules[0].GroupID)
	assert.Equal(t, "Diwali Promo", schedules[0].GroupID.GroupName)
	// Осиротевшее расписание приходит без ссылки на группу.
	assert.Nil(t, schedules[1].GroupID)
}

func TestDo_UnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := New(server.URL, 5*time.Second)

	_, err := client.ListGroups(context.Background(), 0, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status")
}

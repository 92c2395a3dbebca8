// Package whatsappapi реализует клиент whatsapp-бэкенда:
// группы рассылки, шаблоны сообщений и расписания отправок.
package whatsappapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/copartnerin/campaign-aggregator/internal/metrics"
	"github.com/copartnerin/campaign-aggregator/internal/models"
)

// Client — HTTP-клиент whatsapp-бэкенда.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New создаёт клиент с таймаутом.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("whatsappapi", "error").Inc()
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		metrics.UpstreamRequests.WithLabelValues("whatsappapi", "error").Inc()
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}
	metrics.UpstreamRequests.WithLabelValues("whatsappapi", "ok").Inc()

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func listQuery(page int, search string) string {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if search != "" {
		q.Set("search", search)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// ListGroups возвращает группы рассылки; page и search опциональны.
func (c *Client) ListGroups(ctx context.Context, page int, search string) ([]models.Group, error) {
	const op = "clients.whatsappapi.ListGroups"
	req, err := c.newRequest(ctx, http.MethodGet, "/groups"+listQuery(page, search), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var groups []models.Group
	if err := c.do(req, &groups); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return groups, nil
}

type createGroupResponse struct {
	Group models.Group `json:"group"`
}

// CreateGroup создаёт группу и возвращает созданную запись.
func (c *Client) CreateGroup(ctx context.Context, group models.DummyGroup) (*models.Group, error) {
	const op = "clients.whatsappapi.CreateGroup"
	req, err := c.newRequest(ctx, http.MethodPost, "/groups", group)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var body createGroupResponse
	if err := c.do(req, &body); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &body.Group, nil
}

// DeleteGroup удаляет группу по идентификатору.
func (c *Client) DeleteGroup(ctx context.Context, id string) error {
	const op = "clients.whatsappapi.DeleteGroup"
	req, err := c.newRequest(ctx, http.MethodDelete, "/groups/"+id, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListTemplates возвращает шаблоны сообщений; page и search опциональны.
func (c *Client) ListTemplates(ctx context.Context, page int, search string) ([]models.Template, error) {
	const op = "clients.whatsappapi.ListTemplates"
	req, err := c.newRequest(ctx, http.MethodGet, "/templates"+listQuery(page, search), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var templates []models.Template
	if err := c.do(req, &templates); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return templates, nil
}

// GetTemplate возвращает шаблон по идентификатору.
func (c *Client) GetTemplate(ctx context.Context, id string) (*models.Template, error) {
	const op = "clients.whatsappapi.GetTemplate"
	req, err := c.newRequest(ctx, http.MethodGet, "/templates/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var template models.Template
	if err := c.do(req, &template); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &template, nil
}

// CreateTemplate создаёт шаблон и возвращает созданную запись.
func (c *Client) CreateTemplate(ctx context.Context, template models.DummyTemplate) (*models.Template, error) {
	const op = "clients.whatsappapi.CreateTemplate"
	req, err := c.newRequest(ctx, http.MethodPost, "/templates", template)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var created models.Template
	if err := c.do(req, &created); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &created, nil
}

// DeleteTemplate удаляет шаблон по идентификатору.
func (c *Client) DeleteTemplate(ctx context.Context, id string) error {
	const op = "clients.whatsappapi.DeleteTemplate"
	req, err := c.newRequest(ctx, http.MethodDelete, "/templates/"+id, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListSchedules возвращает все расписания отправок.
func (c *Client) ListSchedules(ctx context.Context) ([]models.Schedule, error) {
	const op = "clients.whatsappapi.ListSchedules"
	req, err := c.newRequest(ctx, http.MethodGet, "/schedule", nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var schedules []models.Schedule
	if err := c.do(req, &schedules); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return schedules, nil
}

type createScheduleRequest struct {
	GroupID       string    `json:"groupId"`
	TemplateID    string    `json:"templateId"`
	ScheduledTime time.Time `json:"scheduledTime"`
	Status        string    `json:"status"`
}

// CreateSchedule создаёт расписание со статусом pending.
func (c *Client) CreateSchedule(ctx context.Context, groupID, templateID string, scheduledTime time.Time) (*models.Schedule, error) {
	const op = "clients.whatsappapi.CreateSchedule"
	req, err := c.newRequest(ctx, http.MethodPost, "/schedule", createScheduleRequest{
		GroupID:       groupID,
		TemplateID:    templateID,
		ScheduledTime: scheduledTime,
		Status:        models.ScheduleStatusPending,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var created models.Schedule
	if err := c.do(req, &created); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &created, nil
}

// DeleteSchedule удаляет расписание по идентификатору.
func (c *Client) DeleteSchedule(ctx context.Context, id string) error {
	const op = "clients.whatsappapi.DeleteSchedule"
	req, err := c.newRequest(ctx, http.MethodDelete, "/schedule/"+id, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Package userapi реализует клиент сервиса пользователей,
// отдающего общий роcтер AP/пользователей.
package userapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/copartnerin/campaign-aggregator/internal/metrics"
	"github.com/copartnerin/campaign-aggregator/internal/models"
)

// Client — HTTP-клиент сервиса пользователей.
type Client struct {
	baseURL    string
	pageSize   int
	httpClient *http.Client
}

// New создаёт клиент с таймаутом и размером страницы.
// Роcтер запрашивается одной страницей большого размера.
func New(baseURL string, pageSize int, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		pageSize:   pageSize,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type listResponse struct {
	IsSuccess bool          `json:"isSuccess"`
	Data      []models.User `json:"data"`
}

// ListUsers возвращает роcтер пользователей, отсортированный по дате
// регистрации по убыванию. Ответ с isSuccess=false означает пустой роcтер.
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	const op = "clients.userapi.ListUsers"

	url := fmt.Sprintf("%s/User?page=1&pageSize=%d", c.baseURL, c.pageSize)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("userapi", "error").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamRequests.WithLabelValues("userapi", "error").Inc()
		return nil, fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}

	var body listResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		metrics.UpstreamRequests.WithLabelValues("userapi", "error").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	metrics.UpstreamRequests.WithLabelValues("userapi", "ok").Inc()

	if !body.IsSuccess {
		return []models.User{}, nil
	}

	users := body.Data
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CreatedOn.After(users[j].CreatedOn)
	})
	return users, nil
}

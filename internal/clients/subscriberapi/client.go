// Package subscriberapi реализует клиент сервиса подписок.
// Бэкенд отдаёт подписки только по одному пользователю за запрос,
// поэтому клиент дополнительно предоставляет пакетный метод,
// который внутри выполняет ограниченное число параллельных запросов.
package subscriberapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/copartnerin/campaign-aggregator/internal/lib/sl"
	"github.com/copartnerin/campaign-aggregator/internal/metrics"
	"github.com/copartnerin/campaign-aggregator/internal/models"
)

// Client — HTTP-клиент сервиса подписок.
type Client struct {
	baseURL        string
	maxConcurrency int
	httpClient     *http.Client
	log            *slog.Logger
}

// New создаёт клиент. maxConcurrency ограничивает число одновременных
// запросов пакетного метода.
func New(baseURL string, maxConcurrency int, timeout time.Duration, log *slog.Logger) *Client {
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	return &Client{
		baseURL:        baseURL,
		maxConcurrency: maxConcurrency,
		httpClient:     &http.Client{Timeout: timeout},
		log:            log,
	}
}

type subscriberResponse struct {
	Data []struct {
		TotalAmount  float64 `json:"totalAmount"`
		Subscription struct {
			Experts struct {
				Name string `json:"name"`
			} `json:"experts"`
			PlanType    string `json:"planType"`
			ServiceType string `json:"serviceType"`
		} `json:"subscription"`
	} `json:"data"`
}

// ListByUserID возвращает подписки одного пользователя.
func (c *Client) ListByUserID(ctx context.Context, userID string) ([]models.Subscription, error) {
	const op = "clients.subscriberapi.ListByUserID"

	url := fmt.Sprintf("%s/Subscriber/GetByUserId/%s", c.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("subscriberapi", "error").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamRequests.WithLabelValues("subscriberapi", "error").Inc()
		return nil, fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}

	var body subscriberResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		metrics.UpstreamRequests.WithLabelValues("subscriberapi", "error").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	metrics.UpstreamRequests.WithLabelValues("subscriberapi", "ok").Inc()

	subs := make([]models.Subscription, 0, len(body.Data))
	for _, item := range body.Data {
		sub := models.Subscription{
			Amount:      item.TotalAmount,
			RAName:      item.Subscription.Experts.Name,
			PlanType:    item.Subscription.PlanType,
			ServiceType: item.Subscription.ServiceType,
		}
		if sub.RAName == "" {
			sub.RAName = "N/A"
		}
		if sub.PlanType == "" {
			sub.PlanType = "N/A"
		}
		if sub.ServiceType == "" {
			sub.ServiceType = "N/A"
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

// ListByUserIDs загружает подписки для всех переданных пользователей.
// Запросы выполняются параллельно с ограничением, ошибка по отдельному
// пользователю деградирует его список до пустого и не роняет пачку.
// В результате есть запись для каждого переданного id.
func (c *Client) ListByUserIDs(ctx context.Context, userIDs []string) (map[string][]models.Subscription, error) {
	result := make(map[string][]models.Subscription, len(userIDs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxConcurrency)

	for _, userID := range userIDs {
		userID := userID
		g.Go(func() error {
			subs, err := c.ListByUserID(gctx, userID)
			if err != nil {
				// Отмена всей пачки — единственная ошибка, которую нельзя деградировать.
				if gctx.Err() != nil {
					return gctx.Err()
				}
				c.log.Warn("subscription fetch degraded to empty",
					slog.String("user_id", userID), sl.Err(err))
				metrics.SubscriptionFetchFailures.Inc()
				subs = []models.Subscription{}
			}
			mu.Lock()
			result[userID] = subs
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

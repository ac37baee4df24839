package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Sunny-JP/hw-ba-cafe/internal/domain"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.onesignal.com"

// OneSignalProvider implements Provider against the OneSignal REST API.
// Notifications are addressed by external alias so every device a profile
// has registered receives them. Outbound calls are rate-limited to stay
// inside the shared app quota.
type OneSignalProvider struct {
	httpClient *http.Client
	baseURL    string
	appID      string
	restAPIKey string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

func NewOneSignalProvider(appID, restAPIKey string, requestsPerMinute int, logger *slog.Logger) *OneSignalProvider {
	rps := float64(requestsPerMinute) / 60.0
	return &OneSignalProvider{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultBaseURL,
		appID:      appID,
		restAPIKey: restAPIKey,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger.With("component", "onesignal"),
	}
}

// NewProvider returns a LogProvider for ENV=local, OneSignalProvider otherwise.
func NewProvider(env, appID, restAPIKey string, requestsPerMinute int, logger *slog.Logger) Provider {
	if env == "local" {
		return NewLogProvider(logger)
	}
	return NewOneSignalProvider(appID, restAPIKey, requestsPerMinute, logger)
}

type osSubscription struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	CreatedAt    int64  `json:"created_at"`
	LastActiveAt int64  `json:"last_active_at"`
}

type osUserResponse struct {
	Subscriptions []osSubscription `json:"subscriptions"`
}

func (p *OneSignalProvider) ListSubscriptions(ctx context.Context, externalAlias string) ([]domain.PushSubscription, error) {
	path := fmt.Sprintf("/apps/%s/users/by/external_id/%s",
		url.PathEscape(p.appID), url.PathEscape(externalAlias))

	body, err := p.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var resp osUserResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode subscriptions: %w", err)
	}

	subs := make([]domain.PushSubscription, 0, len(resp.Subscriptions))
	for _, s := range resp.Subscriptions {
		sub := domain.PushSubscription{
			ID:        s.ID,
			Kind:      kindFromType(s.Type),
			CreatedAt: time.Unix(s.CreatedAt, 0),
		}
		if s.LastActiveAt > 0 {
			la := time.Unix(s.LastActiveAt, 0)
			sub.LastActive = &la
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

func (p *OneSignalProvider) DeleteSubscription(ctx context.Context, subscriptionID string) error {
	path := fmt.Sprintf("/apps/%s/subscriptions/%s",
		url.PathEscape(p.appID), url.PathEscape(subscriptionID))
	_, err := p.do(ctx, http.MethodDelete, path, nil)
	return err
}

type osNotificationRequest struct {
	AppID          string              `json:"app_id"`
	IncludeAliases map[string][]string `json:"include_aliases"`
	TargetChannel  string              `json:"target_channel"`
	Headings       map[string]string   `json:"headings"`
	Contents       map[string]string   `json:"contents"`
	SendAfter      string              `json:"send_after"`
}

func (p *OneSignalProvider) ScheduleNotification(ctx context.Context, n domain.ScheduledNotification) error {
	req := osNotificationRequest{
		AppID:          p.appID,
		IncludeAliases: map[string][]string{"external_id": {n.ExternalAlias}},
		TargetChannel:  "push",
		Headings:       map[string]string{"en": n.Title, "ja": n.Title},
		Contents:       map[string]string{"en": n.Body, "ja": n.Body},
		SendAfter:      n.FireAt.UTC().Format(time.RFC3339),
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	_, err = p.do(ctx, http.MethodPost, "/notifications", payload)
	return err
}

func (p *OneSignalProvider) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+p.restAPIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, respBody)
	}
	return respBody, nil
}

// kindFromType maps OneSignal subscription types to channel kinds. Push
// types all carry the Push suffix (iOSPush, AndroidPush, ChromePush, ...);
// email and SMS channels are left alone by the lifecycle policy.
func kindFromType(t string) domain.SubscriptionKind {
	if strings.HasSuffix(t, "Push") {
		return domain.SubscriptionKindPush
	}
	return domain.SubscriptionKindOther
}

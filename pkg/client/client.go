// Package client is the learner-side API client. Reads of the progress record never
// fail: when the backend cannot be reached the client switches to offline mode,
// serves defaults and keeps later mutations in local memory only.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"roboquest_backend/internal/gamification"
	"roboquest_backend/internal/model"
	"roboquest_backend/pkg/logger"

	"go.uber.org/zap"
)

var ErrNoSession = errors.New("client: no session token")

// APIError is a non-2xx envelope returned by the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("roboquest api: %d %s", e.Status, e.Message)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Snapshot is what FetchProgress hands back: live data, or defaults when Offline.
type Snapshot struct {
	Progress *model.UserProgress
	Settings *model.UserSettings
	Offline  bool
}

type Client struct {
	baseURL string
	http    *http.Client
	rules   gamification.Rules
	now     func() time.Time

	mu       sync.Mutex
	token    string
	offline  bool
	lastErr  error
	progress *model.UserProgress
	settings *model.UserSettings
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithRules(r gamification.Rules) Option {
	return func(c *Client) { c.rules = r }
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		rules:   gamification.DefaultRules(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) IsOffline() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offline
}

// LastError is the failure that put the client offline, nil while online.
func (c *Client) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Client) defaultProgress() *model.UserProgress {
	return &model.UserProgress{
		LoginDates:         []string{},
		CoursesCompleted:   []string{},
		CoursesInProgress:  map[string][]int{},
		Achievements:       []string{},
		CompletedTutorials: []string{},
		CompletedProjects:  []string{},
		DailyGoal:          c.rules.DefaultDailyGoal,
	}
}

func (c *Client) goOffline(err error) {
	c.offline = true
	c.lastErr = err
	if c.progress == nil {
		c.progress = c.defaultProgress()
	}
	if c.settings == nil {
		c.settings = model.DefaultUserSettings()
	}
	logger.Log.Warn("Backend unavailable, using offline mode", zap.Error(err))
}

func (c *Client) snapshot() *Snapshot {
	return &Snapshot{
		Progress: c.progress.Clone(),
		Settings: cloneSettings(c.settings),
		Offline:  c.offline,
	}
}

func cloneSettings(s *model.UserSettings) *model.UserSettings {
	cp := *s
	return &cp
}

// FetchProgress never returns an error. Any failure yields default progress and
// settings with Offline set; the cause is available from LastError.
func (c *Client) FetchProgress(ctx context.Context) *Snapshot {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()

	var data struct {
		Progress *model.UserProgress `json:"progress"`
		Settings *model.UserSettings `json:"settings"`
	}
	err := ErrNoSession
	if token != "" {
		err = c.do(ctx, http.MethodGet, "/api/user/progress", token, nil, &data)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		// 读失败时丢弃旧数据，回到默认值
		c.progress = nil
		c.settings = nil
		c.goOffline(err)
		return c.snapshot()
	}

	c.offline = false
	c.lastErr = nil
	c.progress = data.Progress
	if c.progress == nil {
		c.progress = c.defaultProgress()
	}
	c.progress.Normalize(c.rules.DefaultDailyGoal)
	c.settings = data.Settings
	if c.settings == nil {
		c.settings = model.DefaultUserSettings()
	}
	return c.snapshot()
}

// CompleteTutorial posts the completion. Offline, or when the request fails, the
// completion is applied to local state with xpReward and not sent anywhere.
func (c *Client) CompleteTutorial(ctx context.Context, tutorialID string, xpReward int) (*model.UserProgress, error) {
	c.mu.Lock()
	offline, token := c.offline, c.token
	c.mu.Unlock()

	if !offline && token != "" {
		var result struct {
			Progress *model.UserProgress `json:"progress"`
		}
		path := "/api/tutorial/" + url.PathEscape(tutorialID) + "/complete"
		err := c.do(ctx, http.MethodPost, path, token, nil, &result)
		var apiErr *APIError
		switch {
		case err == nil:
			c.mu.Lock()
			defer c.mu.Unlock()
			if result.Progress == nil {
				return nil, fmt.Errorf("decode response: missing progress")
			}
			c.progress = result.Progress
			return c.progress.Clone(), nil
		case errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError:
			// 4xx 是业务错误，不切换离线
			return nil, err
		default:
			c.mu.Lock()
			c.goOffline(err)
			c.mu.Unlock()
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.progress == nil {
		c.goOffline(ErrNoSession)
	}
	next, _ := c.rules.Apply(c.progress, gamification.TutorialCompleted{
		TutorialID: tutorialID,
		XPReward:   xpReward,
	}, c.now())
	c.progress = next
	return next.Clone(), nil
}

// UpdateSettings saves a settings patch. Offline it only merges into local state.
func (c *Client) UpdateSettings(ctx context.Context, patch model.SettingsPatch) (*model.UserSettings, error) {
	c.mu.Lock()
	offline, token := c.offline, c.token
	c.mu.Unlock()

	if !offline && token != "" {
		var data struct {
			Settings *model.UserSettings `json:"settings"`
		}
		err := c.do(ctx, http.MethodPut, "/api/user/settings", token, patch, &data)
		var apiErr *APIError
		switch {
		case err == nil:
			c.mu.Lock()
			defer c.mu.Unlock()
			if data.Settings == nil {
				return nil, fmt.Errorf("decode response: missing settings")
			}
			c.settings = data.Settings
			if patch.DailyGoal != nil && c.progress != nil {
				c.progress.DailyGoal = *patch.DailyGoal
			}
			return cloneSettings(c.settings), nil
		case errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError:
			return nil, err
		default:
			c.mu.Lock()
			c.goOffline(err)
			c.mu.Unlock()
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.settings == nil || c.progress == nil {
		c.goOffline(ErrNoSession)
	}
	c.settings.Apply(patch)
	if patch.DailyGoal != nil && *patch.DailyGoal >= 1 {
		c.progress.DailyGoal = *patch.DailyGoal
	}
	return cloneSettings(c.settings), nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= http.StatusMultipleChoices {
			return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return &APIError{Status: resp.StatusCode, Message: env.Message}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

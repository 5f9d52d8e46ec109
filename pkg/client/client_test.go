package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"roboquest_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 10, 9, 0, 0, 0, time.Local)

func writeEnvelope(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    status,
		"message": message,
		"data":    data,
	})
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := New(srv.URL, WithToken("token"), WithClock(func() time.Time { return fixedNow }))
	return c, srv
}

func TestFetchProgress_ServerErrorFallsBackToDefaults(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusServiceUnavailable, "Service temporarily unavailable", nil)
	})

	snap := c.FetchProgress(context.Background())

	require.NotNil(t, snap)
	assert.True(t, snap.Offline)
	assert.True(t, c.IsOffline())
	assert.Equal(t, 0, snap.Progress.TotalXP)
	assert.Equal(t, 0, snap.Progress.Level)
	assert.Equal(t, 2, snap.Progress.DailyGoal)
	assert.Empty(t, snap.Progress.CompletedTutorials)
	assert.Equal(t, "en", snap.Settings.Language)
	assert.Equal(t, "light", snap.Settings.Theme)

	var apiErr *APIError
	require.True(t, errors.As(c.LastError(), &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
}

func TestFetchProgress_UnreachableServer(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	snap := c.FetchProgress(context.Background())
	assert.True(t, snap.Offline)
	assert.Error(t, c.LastError())
}

func TestFetchProgress_NoToken(t *testing.T) {
	c := New("http://127.0.0.1:1")
	snap := c.FetchProgress(context.Background())
	assert.True(t, snap.Offline)
	assert.ErrorIs(t, c.LastError(), ErrNoSession)
}

func TestFetchProgress_Online(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/user/progress", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		writeEnvelope(w, http.StatusOK, "success", map[string]interface{}{
			"progress": map[string]interface{}{"totalXP": 250, "level": 2, "dailyGoal": 3},
			"settings": map[string]interface{}{"language": "es", "theme": "dark"},
		})
	})

	snap := c.FetchProgress(context.Background())
	assert.False(t, snap.Offline)
	assert.NoError(t, c.LastError())
	assert.Equal(t, 250, snap.Progress.TotalXP)
	assert.Equal(t, 3, snap.Progress.DailyGoal)
	assert.NotNil(t, snap.Progress.CoursesInProgress)
	assert.Equal(t, "es", snap.Settings.Language)
}

func TestCompleteTutorial_OfflineAppliesLocally(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeEnvelope(w, http.StatusInternalServerError, "Internal server error", nil)
	})
	c.FetchProgress(context.Background())
	require.True(t, c.IsOffline())

	p, err := c.CompleteTutorial(context.Background(), "tutorial_python_1", 75)
	require.NoError(t, err)
	assert.Equal(t, 75, p.TotalXP)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, 1, p.LessonsCompleted)
	assert.Equal(t, 1, p.DailyProgress)
	assert.Equal(t, []string{"tutorial_python_1"}, p.CompletedTutorials)

	p, err = c.CompleteTutorial(context.Background(), "tutorial_python_1", 75)
	require.NoError(t, err)
	assert.Equal(t, 75, p.TotalXP)

	// offline mutations never reach the server
	assert.Equal(t, int32(1), calls.Load())
}

func TestCompleteTutorial_ServerFailureSwitchesOffline(t *testing.T) {
	var fail atomic.Bool
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			writeEnvelope(w, http.StatusBadGateway, "bad gateway", nil)
			return
		}
		writeEnvelope(w, http.StatusOK, "success", map[string]interface{}{
			"progress": map[string]interface{}{"totalXP": 10, "dailyGoal": 2},
		})
	})
	c.FetchProgress(context.Background())
	require.False(t, c.IsOffline())

	fail.Store(true)
	p, err := c.CompleteTutorial(context.Background(), "tutorial_arduino_1", 0)
	require.NoError(t, err)
	assert.True(t, c.IsOffline())
	assert.Equal(t, 60, p.TotalXP)
}

func TestCompleteTutorial_Online(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/user/progress":
			writeEnvelope(w, http.StatusOK, "success", map[string]interface{}{
				"progress": map[string]interface{}{"dailyGoal": 2},
			})
		case "/api/tutorial/tutorial_scratch_1/complete":
			assert.Equal(t, http.MethodPost, r.Method)
			writeEnvelope(w, http.StatusOK, "Tutorial completed successfully", map[string]interface{}{
				"progress":  map[string]interface{}{"totalXP": 50, "level": 1, "completedTutorials": []string{"tutorial_scratch_1"}},
				"xpEarned":  50,
				"leveledUp": true,
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			writeEnvelope(w, http.StatusNotFound, "not found", nil)
		}
	})
	c.FetchProgress(context.Background())

	p, err := c.CompleteTutorial(context.Background(), "tutorial_scratch_1", 50)
	require.NoError(t, err)
	assert.Equal(t, 50, p.TotalXP)
	assert.Equal(t, []string{"tutorial_scratch_1"}, p.CompletedTutorials)
	assert.False(t, c.IsOffline())
}

func TestCompleteTutorial_NotFoundStaysOnline(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/user/progress" {
			writeEnvelope(w, http.StatusOK, "success", map[string]interface{}{})
			return
		}
		writeEnvelope(w, http.StatusNotFound, "tutorial not found", nil)
	})
	c.FetchProgress(context.Background())

	_, err := c.CompleteTutorial(context.Background(), "nope", 50)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "tutorial not found", apiErr.Message)
	assert.False(t, c.IsOffline())
}

func TestUpdateSettings_OfflineMergesLocally(t *testing.T) {
	c := New("http://127.0.0.1:1")
	c.FetchProgress(context.Background())

	goal := 5
	theme := "dark"
	s, err := c.UpdateSettings(context.Background(), model.SettingsPatch{DailyGoal: &goal, Theme: &theme})
	require.NoError(t, err)
	assert.Equal(t, "dark", s.Theme)
	assert.Equal(t, 5, s.DailyGoal)
	assert.True(t, s.SoundEffects)

	snap := c.snapshot()
	assert.Equal(t, 5, snap.Progress.DailyGoal)
}

func TestUpdateSettings_LocalAfterLogoutWithoutFetch(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/user/settings", r.URL.Path)
		writeEnvelope(w, http.StatusOK, "Settings updated", map[string]interface{}{
			"settings": map[string]interface{}{"language": "es", "theme": "dark", "dailyGoal": 3},
		})
	})

	theme := "dark"
	s, err := c.UpdateSettings(context.Background(), model.SettingsPatch{Theme: &theme})
	require.NoError(t, err)
	assert.Equal(t, "es", s.Language)

	c.SetToken("")
	goal := 4
	s, err = c.UpdateSettings(context.Background(), model.SettingsPatch{DailyGoal: &goal})
	require.NoError(t, err)
	assert.Equal(t, 4, s.DailyGoal)
	assert.Equal(t, "es", s.Language)

	snap := c.snapshot()
	assert.True(t, snap.Offline)
	assert.Equal(t, 4, snap.Progress.DailyGoal)
}

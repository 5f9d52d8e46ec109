package configwatcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"roboquest_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchConfig_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	write := func(admin string) {
		body := "jwt:\n  secret: dev\nstorage:\n  local_path: " + dir + "\nadmin:\n  emails:\n    - " + admin + "\n"
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	}
	write("first@roboquest.dev")

	reloaded := make(chan *config.Config, 4)
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		WatchConfig(path, func(cfg *config.Config) { reloaded <- cfg }, stop)
		close(done)
	}()
	t.Cleanup(func() {
		close(stop)
		<-done
	})

	// 等 watcher 就绪
	time.Sleep(200 * time.Millisecond)
	write("second@roboquest.dev")

	select {
	case cfg := <-reloaded:
		assert.Equal(t, []string{"second@roboquest.dev"}, cfg.Admin.Emails)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}
}

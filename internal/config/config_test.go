package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "client.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestMustLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "server:\n  base_url: http://localhost:8080\n  socket_url: ws://localhost:8080/socket\n")

	cfg := MustLoad(path)

	assert.Equal(t, 4, cfg.Upload.MaxFiles)
	assert.Equal(t, int64(8<<20), cfg.Upload.MaxFileSizeBytes)
	assert.Equal(t, time.Second, cfg.Realtime.InitialDelay.Std())
	assert.Equal(t, 5*time.Second, cfg.Realtime.MaxDelay.Std())
	assert.Equal(t, 5, cfg.Realtime.MaxAttempts)
	assert.Equal(t, 20*time.Second, cfg.Realtime.DialTimeout.Std())
	assert.Equal(t, 30*time.Second, cfg.PollInterval.Std())
	assert.Equal(t, "ru", cfg.Locale)
}

func TestMustLoad_Overrides(t *testing.T) {
	path := writeConfig(t, `
server:
  base_url: http://board.example
  socket_url: ws://board.example/socket
upload:
  max_files: 2
  max_file_size_bytes: 1048576
poll_interval: 10s
locale: en
`)

	cfg := MustLoad(path)

	assert.Equal(t, 2, cfg.Upload.MaxFiles)
	assert.Equal(t, int64(1<<20), cfg.Upload.MaxFileSizeBytes)
	assert.Equal(t, 10*time.Second, cfg.PollInterval.Std())
	assert.Equal(t, "en", cfg.Locale)
}

func TestMustLoad_MissingServer(t *testing.T) {
	path := writeConfig(t, "locale: en\n")

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic due to missing server section, got none")
		}
	}()

	_ = MustLoad(path)
}

func TestMustLoad_MissingFile(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic for missing file, got none")
		}
	}()

	_ = MustLoad(filepath.Join(t.TempDir(), "nope.yaml"))
}

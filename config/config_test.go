package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YaoZengzeng/yusend/config"
)

func TestDefault(t *testing.T) {
	cfg := config.Default("file.mp3")

	assert.Equal(t, "0.0.0.0:5002", cfg.BindAddr)
	assert.Equal(t, "127.0.0.1:5001", cfg.PeerAddr)
	assert.Equal(t, "file.mp3", cfg.File)
	assert.Equal(t, 1*time.Second, cfg.RecvTimeout.Std())
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "yusend.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"peer_addr: 10.0.0.7:9001\n"+
			"recv_timeout: 250ms\n"+
			"progress: true\n"), 0o644))

	cfg := config.Default("file.mp3")
	require.NoError(t, cfg.LoadFile(path))

	// Only the keys present in the file are overridden
	assert.Equal(t, "10.0.0.7:9001", cfg.PeerAddr)
	assert.Equal(t, 250*time.Millisecond, cfg.RecvTimeout.Std())
	assert.True(t, cfg.Progress)
	assert.Equal(t, "0.0.0.0:5002", cfg.BindAddr)
	assert.Equal(t, "file.mp3", cfg.File)
}

func TestLoadFileMissing(t *testing.T) {
	cfg := config.Default("file.mp3")
	assert.Error(t, cfg.LoadFile(filepath.Join(t.TempDir(), "absent.yaml")))
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("YUSEND_FILE", "../file.mp3")
	t.Setenv("YUSEND_LOG_LEVEL", "debug")
	t.Setenv("YUSEND_RECV_TIMEOUT", "2s")

	cfg := config.Default("file.mp3")
	require.NoError(t, cfg.LoadEnv(context.Background()))

	assert.Equal(t, "../file.mp3", cfg.File)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2*time.Second, cfg.RecvTimeout.Std())
	assert.Equal(t, "127.0.0.1:5001", cfg.PeerAddr)
}

package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remote-sync/internal/config"
	"remote-sync/internal/history"
	"remote-sync/internal/tui"
)

func writeSSHConfig(t *testing.T, content string) *config.Config {
	t.Helper()
	home := t.TempDir()
	cfg := config.Default(home)
	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.SSHConfig), 0700))
	require.NoError(t, os.WriteFile(cfg.SSHConfig, []byte(content), 0600))
	return cfg
}

func failPicker(t *testing.T) func([]string) (string, error) {
	return func([]string) (string, error) {
		t.Fatal("picker must not be called")
		return "", nil
	}
}

func TestResolveHostPrefersArgument(t *testing.T) {
	cfg := config.Default(t.TempDir())
	cfg.DefaultHost = "fallback"
	host, err := resolveHost([]string{"src", "devbox"}, cfg, failPicker(t))
	require.NoError(t, err)
	assert.Equal(t, "devbox", host)
}

func TestResolveHostUsesDefaultHost(t *testing.T) {
	cfg := config.Default(t.TempDir())
	cfg.DefaultHost = "fallback"
	host, err := resolveHost([]string{"src"}, cfg, failPicker(t))
	require.NoError(t, err)
	assert.Equal(t, "fallback", host)
}

func TestResolveHostPicksFromSSHConfig(t *testing.T) {
	cfg := writeSSHConfig(t, "Host prod devbox\nHost *\n")
	var offered []string
	host, err := resolveHost([]string{"src"}, cfg, func(hosts []string) (string, error) {
		offered = hosts
		return hosts[0], nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"devbox", "prod"}, offered)
	assert.Equal(t, "devbox", host)
}

func TestResolveHostEmptyListIsFatal(t *testing.T) {
	cfg := config.Default(t.TempDir())
	_, err := resolveHost([]string{"src"}, cfg, failPicker(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no hosts found")
}

func TestResolveHostCancelled(t *testing.T) {
	cfg := writeSSHConfig(t, "Host devbox\n")
	_, err := resolveHost([]string{"src"}, cfg, func([]string) (string, error) {
		return "", tui.ErrCancelled
	})
	assert.EqualError(t, err, "no host selected")

	boom := errors.New("tty gone")
	_, err = resolveHost([]string{"src"}, cfg, func([]string) (string, error) {
		return "", boom
	})
	assert.ErrorIs(t, err, boom)
}

var _ func([]string) (string, error) = pickHost

func TestPickHostWithoutHostsFails(t *testing.T) {
	_, err := pickHost(nil)
	assert.ErrorContains(t, err, "no hosts")
}

func TestRenderHostsMarksDefault(t *testing.T) {
	var buf bytes.Buffer
	renderHosts(&buf, []string{"devbox", "prod"}, "prod")
	out := buf.String()
	assert.Contains(t, out, "HOST")
	assert.Contains(t, out, "devbox")
	assert.Regexp(t, `prod\s*\|\s*\*`, out)
}

func TestRenderHistory(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	renderHistory(&buf, []history.HistoryEntry{
		{ID: "0123456789abcdef", LocalPath: "/home/u/site", Host: "prod", LastRun: now.Add(-3 * time.Minute)},
		{ID: "short", LocalPath: "/home/u/db", Host: "devbox", Pull: true, Failed: true, LastRun: now.Add(-2 * time.Hour)},
	}, now)

	out := buf.String()
	assert.Contains(t, out, "01234567 ")
	assert.NotContains(t, out, "0123456789abcdef")
	assert.Contains(t, out, "3 minutes ago")
	assert.Contains(t, out, "2 hours ago")
	assert.Regexp(t, `pull\s*\|\s*devbox\s*\|\s*/home/u/db`, out)
	assert.Contains(t, out, "failed")
}

func TestWriteDefaultSettingsLoadsBack(t *testing.T) {
	home := t.TempDir()
	path := config.GlobalConfigPath(home)

	require.NoError(t, writeDefaultSettings(path, home, false))

	cfg, err := config.LoadFile(path, home)
	require.NoError(t, err)
	assert.Equal(t, config.Default(home).SSHConfig, cfg.SSHConfig)
	assert.Equal(t, "60s", cfg.ControlPersist)

	err = writeDefaultSettings(path, home, false)
	assert.ErrorContains(t, err, "already exists")
	assert.NoError(t, writeDefaultSettings(path, home, true))
}

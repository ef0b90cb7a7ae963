package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestStartupsUntilPushPrompt(t *testing.T) {
	store := "file:" + filepath.Join(t.TempDir(), "prompts.json")

	out, err := execute(t, "--store", store, "show", "push")
	require.NoError(t, err)
	assert.Equal(t, "false\n", out)

	for i := 0; i < 3; i++ {
		_, err := execute(t, "--store", store, "startup")
		require.NoError(t, err)
	}

	out, err = execute(t, "--store", store, "show", "push")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	_, err = execute(t, "--store", store, "seen", "push")
	require.NoError(t, err)

	out, err = execute(t, "--store", store, "--format", "json", "show", "push")
	require.NoError(t, err)
	var decision struct {
		Prompt string `json:"prompt"`
		Show   bool   `json:"show"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decision))
	assert.Equal(t, "push", decision.Prompt)
	assert.False(t, decision.Show)
}

func TestStateJSON(t *testing.T) {
	store := "sqlite:" + filepath.Join(t.TempDir(), "prompts.db")

	_, err := execute(t, "--store", store, "first-run")
	require.NoError(t, err)
	_, err = execute(t, "--store", store, "seen", "in-app")
	require.NoError(t, err)

	out, err := execute(t, "--store", store, "--format", "json", "state")
	require.NoError(t, err)

	var got stateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.NotEmpty(t, got.Instance)
	assert.True(t, got.State.FirstRunDone)
	assert.True(t, got.State.InAppSeen)
	assert.Zero(t, got.State.Startups)
}

func TestConfigFilePolicy(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "promptkit.yaml")
	cfg := "store:\n  descriptor: file:" + filepath.Join(dir, "prompts.json") + "\npolicy:\n  in_app:\n    min_startups: 1\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	out, err := execute(t, "--config", cfgPath, "show", "in-app")
	require.NoError(t, err)
	assert.Equal(t, "false\n", out)

	out, err = execute(t, "--config", cfgPath, "startup")
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "show_in_app=true"), out)
}

func TestMetricsTextfile(t *testing.T) {
	dir := t.TempDir()
	prom := filepath.Join(dir, "promptkit.prom")
	t.Setenv("PROMPTKIT_METRICS_ENABLED", "true")
	t.Setenv("PROMPTKIT_METRICS_TEXTFILE_PATH", prom)

	_, err := execute(t, "--store", "memory:", "startup")
	require.NoError(t, err)

	data, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(data), `promptkit_lifecycle_events_total{changed="true",event="startup"} 1`)
	assert.Contains(t, string(data), "promptkit_live_cores 0")
}

func TestErrors(t *testing.T) {
	_, err := execute(t, "--store", "s3://bucket/x", "state")
	assert.Error(t, err)

	_, err = execute(t, "--store", "memory:", "show", "banner")
	assert.Error(t, err)

	_, err = execute(t, "--store", "memory:", "--format", "xml", "state")
	assert.Error(t, err)
}

func TestStoreFlagFillsEmptyDescriptor(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "promptkit.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("store:\n  descriptor: \"\"\n"), 0o644))

	_, err := execute(t, "--config", cfgPath, "state")
	assert.Error(t, err)

	out, err := execute(t, "--config", cfgPath, "--store", "memory:", "state")
	require.NoError(t, err)
	assert.Contains(t, out, "startups=0")
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, logLevel("debug"))
	assert.Equal(t, slog.LevelWarn, logLevel("warn"))
	assert.Equal(t, slog.LevelInfo, logLevel("verbose"))
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
user: maya
llm:
  provider: openrouter
  openrouter:
    model: google/gemini-2.0-flash-exp
practice:
  question_count: 5
  time_limit: 90s
  dedupe_on_write: true
redis:
  addr: localhost:6379
`)

	cfg, err := Load(path, false)
	require.NoError(t, err)

	assert.Equal(t, "maya", cfg.User)
	assert.Equal(t, "openrouter", cfg.LLM.Provider)
	assert.Equal(t, "google/gemini-2.0-flash-exp", cfg.LLM.OpenRouter.Model)
	assert.Equal(t, 5, cfg.Practice.QuestionCount)
	assert.Equal(t, 90*time.Second, cfg.Practice.TimeLimit)
	assert.True(t, cfg.Practice.DedupeOnWrite)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)

	// untouched defaults survive
	assert.Equal(t, 10, cfg.Practice.RevisionSize)
	assert.Equal(t, 1, cfg.LLM.Retry.MaxAttempts)
}

func TestLoad_EnvWinsOverFile(t *testing.T) {
	path := writeConfig(t, "user: maya\ndb: /tmp/file.db\n")
	t.Setenv("STUDYLOOP_USER", "ravi")
	t.Setenv("STUDYLOOP_DB", "/tmp/env.db")
	t.Setenv("STUDYLOOP_LLM_PROVIDER", "mock")

	cfg, err := Load(path, false)
	require.NoError(t, err)
	assert.Equal(t, "ravi", cfg.User)
	assert.Equal(t, "/tmp/env.db", cfg.DB)
	assert.Equal(t, "mock", cfg.LLM.Provider)
}

func TestLoad_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	cfg, err := Load(missing, true)
	require.NoError(t, err)
	assert.Equal(t, Default().Practice.QuestionCount, cfg.Practice.QuestionCount)

	_, err = Load(missing, false)
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad yaml", "user: [unterminated"},
		{"zero count", "practice:\n  question_count: 0\n"},
		{"negative bonus", "rewards:\n  perfect_bonus: -1\n"},
		{"empty user", "user: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body), false)
			assert.Error(t, err)
		})
	}
}

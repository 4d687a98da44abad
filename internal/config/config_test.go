package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "8080")
	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "proviQuiz", cfg.MongoDB.Database)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.ExpiresIn)
	assert.Equal(t, 20, cfg.Exam.DefaultLimit)
	assert.InDelta(t, 0.6, cfg.Exam.PassThreshold, 1e-9)
	assert.Equal(t, 100, cfg.RateLimit.AuthMax)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.AuthWindow)
}

func TestEnvHelpers(t *testing.T) {
	testCases := []struct {
		name  string
		key   string
		value string
		check func(t *testing.T)
	}{
		{"int parses", "TEST_INT", "42", func(t *testing.T) {
			assert.Equal(t, 42, getEnvAsInt("TEST_INT", 1))
		}},
		{"int falls back", "TEST_INT", "nope", func(t *testing.T) {
			assert.Equal(t, 1, getEnvAsInt("TEST_INT", 1))
		}},
		{"duration parses", "TEST_DUR", "90s", func(t *testing.T) {
			assert.Equal(t, 90*time.Second, getEnvAsDuration("TEST_DUR", time.Second))
		}},
		{"duration falls back", "TEST_DUR", "soon", func(t *testing.T) {
			assert.Equal(t, time.Second, getEnvAsDuration("TEST_DUR", time.Second))
		}},
		{"bool parses", "TEST_BOOL", "true", func(t *testing.T) {
			assert.True(t, getEnvAsBool("TEST_BOOL", false))
		}},
		{"float parses", "TEST_FLOAT", "0.75", func(t *testing.T) {
			assert.InDelta(t, 0.75, getEnvAsFloat("TEST_FLOAT", 0.6), 1e-9)
		}},
		{"list trims", "TEST_LIST", " a, ,b ", func(t *testing.T) {
			assert.Equal(t, []string{"a", "b"}, getEnvAsList("TEST_LIST", nil))
		}},
		{"empty list falls back", "TEST_LIST", " , ", func(t *testing.T) {
			assert.Equal(t, []string{"*"}, getEnvAsList("TEST_LIST", []string{"*"}))
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			tc.check(t)
		})
	}
}

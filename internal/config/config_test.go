package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/receiptmatch/internal/config"
	"github.com/MrJamesThe3rd/receiptmatch/internal/escalation"
	"github.com/MrJamesThe3rd/receiptmatch/internal/matching"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "receiptmatch", cfg.App.Name)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "none", cfg.Verifier.Provider)
	assert.Equal(t, "postgres://postgres:@localhost:5432/receiptmatch?sslmode=disable", cfg.ConnectionString())

	engine, router := cfg.MatchingOptions()
	assert.Equal(t, matching.DefaultConfig(), engine)
	assert.Equal(t, escalation.DefaultConfig(), router)
	assert.Positive(t, cfg.Workers())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MATCH_AUTO_THRESHOLD", "0.95")
	t.Setenv("MATCH_DATE_WINDOW", "7")
	t.Setenv("VERIFIER_TIMEOUT", "3s")
	t.Setenv("MATCH_WORKERS", "2")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := config.Load()
	require.NoError(t, err)

	engine, router := cfg.MatchingOptions()
	assert.Equal(t, 7, engine.DateWindow)
	assert.InDelta(t, 0.95, router.AutoThreshold, 1e-9)
	assert.Equal(t, 3*time.Second, router.Timeout)
	assert.Equal(t, 2, cfg.Workers())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantMsg string
	}{
		{name: "Tolerance out of range", env: map[string]string{"MATCH_AMOUNT_TOLERANCE": "1.5"}, wantMsg: "MATCH_AMOUNT_TOLERANCE"},
		{name: "Negative window", env: map[string]string{"MATCH_DATE_WINDOW": "-1"}, wantMsg: "MATCH_DATE_WINDOW"},
		{name: "Review above auto", env: map[string]string{"MATCH_REVIEW_THRESHOLD": "0.95"}, wantMsg: "thresholds"},
		{name: "Zero weights", env: map[string]string{"MATCH_VENDOR_WEIGHT": "0", "MATCH_CATEGORY_WEIGHT": "0"}, wantMsg: "weights"},
		{name: "Gemini without key", env: map[string]string{"VERIFIER_PROVIDER": "gemini"}, wantMsg: "GEMINI_API_KEY"},
		{name: "Unknown verifier", env: map[string]string{"VERIFIER_PROVIDER": "gpt"}, wantMsg: "VERIFIER_PROVIDER"},
		{name: "Fiken without token", env: map[string]string{"POSTER_PROVIDER": "fiken"}, wantMsg: "FIKEN_TOKEN"},
		{name: "Malformed number", env: map[string]string{"MATCH_DATE_WINDOW": "two weeks"}, wantMsg: "failed to process config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBatchRules(t *testing.T) {
	rules, err := ParseBatchRules(" 0815@08:15:00 , 0850@08:50:00")
	require.NoError(t, err)
	assert.Equal(t, []BatchRule{
		{Name: "0815", LateAfter: "08:15:00"},
		{Name: "0850", LateAfter: "08:50:00"},
	}, rules)
}

func TestParseBatchRulesRejectsInvalidInput(t *testing.T) {
	cases := map[string]string{
		"empty":     "",
		"no time":   "0815",
		"bad time":  "0815@8am",
		"duplicate": "0815@08:15:00,0815@08:20:00",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseBatchRules(raw)
			assert.Error(t, err)
		})
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("ENV", EnvDevelopment)
	t.Setenv("ATTENDANCE_QUERY_TIMEOUT", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Equal(t, "admin_session", cfg.Session.CookieName)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 10*time.Second, cfg.Attendance.QueryTimeout)
	assert.True(t, cfg.Attendance.SyntheticFallback)
	assert.False(t, cfg.Admin.PublicConfigRead)
	assert.Len(t, cfg.Attendance.Batches, 2)
	assert.Equal(t, "dashboard", cfg.Redis.KeyPrefix)
	assert.Equal(t, 10*time.Minute, cfg.CORS.MaxAge)
	assert.Empty(t, cfg.CORS.AllowedMethods)
}

func TestLoadRejectsDefaultSecretInProduction(t *testing.T) {
	t.Setenv("ENV", EnvProduction)
	t.Setenv("SESSION_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

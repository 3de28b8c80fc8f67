package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/attendance-dashboard-api/pkg/config"
)

func TestKeyspace(t *testing.T) {
	assert.Equal(t, "dashboard:session:revoked:abc", Keyspace("dashboard").Key("session", "revoked", "abc"))
	assert.Equal(t, "session:abc", Keyspace("").Key("session", "abc"))
}

func TestEnabled(t *testing.T) {
	assert.False(t, Enabled(config.RedisConfig{Port: 6379}))
	assert.True(t, Enabled(config.RedisConfig{Host: "redis", Port: 6379}))
}

func TestNewRedisFailsWithoutServer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRedis(ctx, config.RedisConfig{Host: "127.0.0.1", Port: 1})
	assert.Error(t, err)
}

package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": testSecret,
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreMongo, cfg.StoreDriver)
	assert.Equal(t, 8, cfg.PetWorkers)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, "virtual-pets", cfg.JWT.Issuer)
	assert.Equal(t, "virtual_pets", cfg.Mongo.Database)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 20, cfg.RateLimit.PerMinute)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":     testSecret,
		"JWT_TTL":        "90m",
		"STORE_DRIVER":   "Postgres",
		"REDIS_ADDR":     "redis:6379",
		"ENV":            "production",
		"ADMIN_USERNAME": "root",
		"ADMIN_PASSWORD": "rootpass",
	}))
	require.NoError(t, err)

	assert.Equal(t, 90*time.Minute, cfg.JWT.TTL)
	assert.Equal(t, StorePostgres, cfg.StoreDriver)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "root", cfg.Admin.Username)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_Errors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing secret", map[string]string{}, "JWT_SECRET"},
		{"short secret", map[string]string{"JWT_SECRET": "short"}, "at least 32 bytes"},
		{"bad driver", map[string]string{"JWT_SECRET": testSecret, "STORE_DRIVER": "sqlite"}, "STORE_DRIVER"},
		{"half admin", map[string]string{"JWT_SECRET": testSecret, "ADMIN_USERNAME": "root"}, "ADMIN_PASSWORD"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := load(context.Background(), envconfig.MapLookuper(tc.env))
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tc.want), err.Error())
		})
	}
}

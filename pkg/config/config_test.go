package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.True(t, cfg.Server.IsDevelopment())
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, 24, cfg.Tokens.VerifyEmailTTLHours)
	assert.Equal(t, 15, cfg.Tokens.ResetPasswordTTLMins)
	assert.Contains(t, cfg.Database.DSN(), "dbname=sanad")
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "complete config",
			mutate: func(c *Config) { c.JWT.Secret = "secret" },
		},
		{
			name:    "missing jwt secret",
			mutate:  func(c *Config) { c.JWT.Secret = "" },
			wantErr: true,
		},
		{
			name: "non-positive expiry",
			mutate: func(c *Config) {
				c.JWT.Secret = "secret"
				c.JWT.ExpiryHours = 0
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)

			tt.mutate(cfg)

			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}

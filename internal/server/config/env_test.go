package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_ProcessEnvironment(t *testing.T) {
	t.Setenv(EnvPrefix+"ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv(EnvPrefix+"HTTP_ADDR", ":9999")
	t.Setenv(EnvPrefix+"ACCESS_TOKEN_SECRET", "env-access")
	t.Setenv(EnvPrefix+"ACCESS_TOKEN_TTL", "90s")
	t.Setenv(EnvPrefix+"ROTATE_REFRESH_TOKENS", "true")
	t.Setenv(EnvPrefix+"PASSWORD_HASH_COST", "12")
	t.Setenv(EnvPrefix+"PASSWORD_MIN_ENTROPY", "60.5")
	t.Setenv(EnvPrefix+"REDIS_DB", "3")
	t.Setenv(EnvPrefix+"SENDGRID_API_KEY", "")

	cfg := &Config{SendGridAPIKey: "kept"}
	parseEnv(cfg)

	assert.Equal(t, ":9999", cfg.EndpointAddrHTTP)
	assert.Equal(t, "env-access", cfg.AccessTokenSecret)
	assert.Equal(t, 90*time.Second, cfg.AccessTokenValidityDuration)
	assert.True(t, cfg.RotateRefreshTokens)
	assert.Equal(t, 12, cfg.PasswordHashCost)
	assert.Equal(t, 60.5, cfg.PasswordMinEntropy)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, "kept", cfg.SendGridAPIKey, "empty variables are ignored")
}

func TestParseEnv_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("XB_MAIL_PROVIDER=sendgrid\nXB_RATE_LIMIT_REQUESTS=7\n"), 0o600))

	t.Setenv(EnvPrefix+"ENV_FILE", path)
	// t.Setenv restores these after godotenv has written them
	t.Setenv(EnvPrefix+"MAIL_PROVIDER", "")
	t.Setenv(EnvPrefix+"RATE_LIMIT_REQUESTS", "")
	require.NoError(t, os.Unsetenv(EnvPrefix+"MAIL_PROVIDER"))
	require.NoError(t, os.Unsetenv(EnvPrefix+"RATE_LIMIT_REQUESTS"))

	cfg := &Config{MailProvider: MailProviderLog}
	parseEnv(cfg)

	assert.Equal(t, MailProviderSendGrid, cfg.MailProvider)
	assert.Equal(t, 7, cfg.RateLimitRequests)
}

func TestParseEnv_InvalidValuesPanic(t *testing.T) {
	t.Setenv(EnvPrefix+"ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))

	for _, name := range []string{"SMTP_PORT", "ROTATE_REFRESH_TOKENS", "RATE_LIMIT_WINDOW", "PASSWORD_MIN_ENTROPY"} {
		t.Run(name, func(t *testing.T) {
			t.Setenv(EnvPrefix+name, "not-a-value")
			require.Panics(t, func() { parseEnv(&Config{}) })
		})
	}
}

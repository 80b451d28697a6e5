package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every environment variable read by parseEnv.
const EnvPrefix = "XB_"

// parseEnv loads a .env file (or the one named by XB_ENV_FILE) into the
// process environment without overriding variables already set, then copies
// every XB_* variable that is present into config. Malformed numbers,
// booleans and durations panic, matching the JSON loader.
func parseEnv(config *Config) {
	envFile := ".env"
	if v, ok := os.LookupEnv(EnvPrefix + "ENV_FILE"); ok && v != "" {
		envFile = v
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(fmt.Errorf("load %s: %w", envFile, err))
	}

	envString(&config.EndpointAddrHTTP, "HTTP_ADDR")
	envString(&config.EndpointAddrGRPC, "GRPC_ADDR")
	envString(&config.DatabaseDSN, "DATABASE_DSN")
	envString(&config.LogLevel, "LOG_LEVEL")

	envString(&config.AccessTokenSecret, "ACCESS_TOKEN_SECRET")
	envString(&config.RefreshTokenSecret, "REFRESH_TOKEN_SECRET")
	envString(&config.EmailVerifyTokenSecret, "EMAIL_VERIFY_TOKEN_SECRET")
	envString(&config.ForgotPasswordTokenSecret, "FORGOT_PASSWORD_TOKEN_SECRET")
	envDuration(&config.AccessTokenValidityDuration, "ACCESS_TOKEN_TTL")
	envDuration(&config.RefreshTokenValidityDuration, "REFRESH_TOKEN_TTL")
	envDuration(&config.EmailVerifyTokenValidityDuration, "EMAIL_VERIFY_TOKEN_TTL")
	envDuration(&config.ForgotPasswordTokenValidityDuration, "FORGOT_PASSWORD_TOKEN_TTL")
	envBool(&config.RotateRefreshTokens, "ROTATE_REFRESH_TOKENS")
	envDuration(&config.RefreshTokenCleanupInterval, "REFRESH_TOKEN_CLEANUP_INTERVAL")

	envInt(&config.PasswordHashCost, "PASSWORD_HASH_COST")
	envFloat(&config.PasswordMinEntropy, "PASSWORD_MIN_ENTROPY")

	envString(&config.PublicBaseURL, "PUBLIC_BASE_URL")
	envString(&config.MailProvider, "MAIL_PROVIDER")
	envString(&config.MailFrom, "MAIL_FROM")
	envString(&config.SMTPHost, "SMTP_HOST")
	envInt(&config.SMTPPort, "SMTP_PORT")
	envString(&config.SMTPUser, "SMTP_USER")
	envString(&config.SMTPPassword, "SMTP_PASSWORD")
	envString(&config.SendGridAPIKey, "SENDGRID_API_KEY")

	envString(&config.RedisAddr, "REDIS_ADDR")
	envString(&config.RedisPassword, "REDIS_PASSWORD")
	envInt(&config.RedisDB, "REDIS_DB")
	envInt(&config.RateLimitRequests, "RATE_LIMIT_REQUESTS")
	envDuration(&config.RateLimitWindow, "RATE_LIMIT_WINDOW")

	envString(&config.S3RootUser, "S3_ROOT_USER")
	envString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	envString(&config.S3Bucket, "S3_BUCKET")
	envString(&config.S3Region, "S3_REGION")
	envString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func envString(dst *string, name string) {
	if v, ok := lookup(name); ok {
		*dst = v
	}
}

func envInt(dst *int, name string) {
	if v, ok := lookup(name); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
		}
		*dst = n
	}
}

func envFloat(dst *float64, name string) {
	if v, ok := lookup(name); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			panic(fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
		}
		*dst = f
	}
}

func envBool(dst *bool, name string) {
	if v, ok := lookup(name); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
		}
		*dst = b
	}
}

func envDuration(dst *time.Duration, name string) {
	if v, ok := lookup(name); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
		}
		*dst = d
	}
}

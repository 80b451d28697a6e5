package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/xbackend/internal/flagx"
	"github.com/dmitrijs2005/xbackend/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "15m" and integer nanoseconds are accepted.
// Absent fields leave the current value untouched.
type JsonConfig struct {
	EndpointAddrHTTP string `json:"endpoint_addr_http"`
	EndpointAddrGRPC string `json:"endpoint_addr_grpc"`
	DatabaseDSN      string `json:"database_dsn"`
	LogLevel         string `json:"log_level"`

	AccessTokenSecret                   string         `json:"access_token_secret"`
	RefreshTokenSecret                  string         `json:"refresh_token_secret"`
	EmailVerifyTokenSecret              string         `json:"email_verify_token_secret"`
	ForgotPasswordTokenSecret           string         `json:"forgot_password_token_secret"`
	AccessTokenValidityDuration         timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration        timex.Duration `json:"refresh_token_validity_duration"`
	EmailVerifyTokenValidityDuration    timex.Duration `json:"email_verify_token_validity_duration"`
	ForgotPasswordTokenValidityDuration timex.Duration `json:"forgot_password_token_validity_duration"`
	RotateRefreshTokens                 *bool          `json:"rotate_refresh_tokens"`
	RefreshTokenCleanupInterval         timex.Duration `json:"refresh_token_cleanup_interval"`

	PasswordHashCost   int     `json:"password_hash_cost"`
	PasswordMinEntropy float64 `json:"password_min_entropy"`

	PublicBaseURL  string `json:"public_base_url"`
	MailProvider   string `json:"mail_provider"`
	MailFrom       string `json:"mail_from"`
	SMTPHost       string `json:"smtp_host"`
	SMTPPort       int    `json:"smtp_port"`
	SMTPUser       string `json:"smtp_user"`
	SMTPPassword   string `json:"smtp_password"`
	SendGridAPIKey string `json:"sendgrid_api_key"`

	RedisAddr         string         `json:"redis_addr"`
	RedisPassword     string         `json:"redis_password"`
	RedisDB           int            `json:"redis_db"`
	RateLimitRequests int            `json:"rate_limit_requests"`
	RateLimitWindow   timex.Duration `json:"rate_limit_window"`

	S3RootUser     string `json:"s3_root_user"`
	S3RootPassword string `json:"s3_root_password"`
	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`
}

// parseJson loads configuration values from the file named by the -c or
// -config flag, or by XB_CONFIG, into config. Without either nothing is loaded.
// Unreadable files and invalid JSON panic.
func parseJson(config *Config) {

	// flags first, then the environment
	jsonConfigFile := flagx.ConfigFile(EnvPrefix + "CONFIG")

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.LogLevel, c.LogLevel)

	setString(&config.AccessTokenSecret, c.AccessTokenSecret)
	setString(&config.RefreshTokenSecret, c.RefreshTokenSecret)
	setString(&config.EmailVerifyTokenSecret, c.EmailVerifyTokenSecret)
	setString(&config.ForgotPasswordTokenSecret, c.ForgotPasswordTokenSecret)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setDuration(&config.RefreshTokenValidityDuration, c.RefreshTokenValidityDuration)
	setDuration(&config.EmailVerifyTokenValidityDuration, c.EmailVerifyTokenValidityDuration)
	setDuration(&config.ForgotPasswordTokenValidityDuration, c.ForgotPasswordTokenValidityDuration)
	if c.RotateRefreshTokens != nil {
		config.RotateRefreshTokens = *c.RotateRefreshTokens
	}
	setDuration(&config.RefreshTokenCleanupInterval, c.RefreshTokenCleanupInterval)

	if c.PasswordHashCost != 0 {
		config.PasswordHashCost = c.PasswordHashCost
	}
	if c.PasswordMinEntropy != 0 {
		config.PasswordMinEntropy = c.PasswordMinEntropy
	}

	setString(&config.PublicBaseURL, c.PublicBaseURL)
	setString(&config.MailProvider, c.MailProvider)
	setString(&config.MailFrom, c.MailFrom)
	setString(&config.SMTPHost, c.SMTPHost)
	if c.SMTPPort != 0 {
		config.SMTPPort = c.SMTPPort
	}
	setString(&config.SMTPUser, c.SMTPUser)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setString(&config.SendGridAPIKey, c.SendGridAPIKey)

	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)
	if c.RedisDB != 0 {
		config.RedisDB = c.RedisDB
	}
	if c.RateLimitRequests != 0 {
		config.RateLimitRequests = c.RateLimitRequests
	}
	setDuration(&config.RateLimitWindow, c.RateLimitWindow)

	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}

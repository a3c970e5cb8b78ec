// Package config contains code to set the default values and read
// the environment and config files used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	configPath     = pflag.String("config", ".", "Directory containing an optional config.toml")
	validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}
	validDrivers   = []string{"memory", "sqlite", "postgres"}
)

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	if !pflag.Parsed() {
		pflag.Parse()
	}
	v.BindPFlags(pflag.CommandLine)

	// A missing .env is fine, the values can come from the real environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env file, %w", err)
	}

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(*configPath)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file, %w", err)
		}
	}

	bindEnvs()
	setDefaults()

	return Validate()
}

func bindEnvs() {
	v.AutomaticEnv()

	v.BindEnv("app.log_level", "APP_LOG_LEVEL")

	v.BindEnv("host.port", "HOST_PORT", "PORT")
	v.BindEnv("host.base_url", "HOST_BASE_URL", "APP_URL")
	v.BindEnv("host.ssl.enabled", "HOST_SSL_ENABLED")
	v.BindEnv("host.cors_origins", "HOST_CORS_ORIGINS")

	v.BindEnv("mail.host", "MAIL_HOST")
	v.BindEnv("mail.port", "MAIL_PORT")
	v.BindEnv("mail.sender_address", "MAIL_SENDER_ADDRESS")
	v.BindEnv("mail.sender_name", "MAIL_SENDER_NAME")
	v.BindEnv("mail.password", "MAIL_PASSWORD")
	v.BindEnv("mail.max_retries", "MAIL_MAX_RETRIES")

	v.BindEnv("security.session_secret", "SECURITY_SESSION_SECRET")
	v.BindEnv("security.session_max_age", "SECURITY_SESSION_MAX_AGE")
	v.BindEnv("security.rate_limit", "SECURITY_RATE_LIMIT")
	v.BindEnv("security.resend_cooldown", "SECURITY_RESEND_COOLDOWN")

	v.BindEnv("cloudflare.turnstile.enabled", "CLOUDFLARE_TURNSTILE_ENABLED")
	v.BindEnv("cloudflare.turnstile.secret_token", "CLOUDFLARE_TURNSTILE_SECRET_TOKEN")
	v.BindEnv("cloudflare.turnstile.site_key", "CLOUDFLARE_TURNSTILE_SITE_KEY")

	v.BindEnv("db.driver", "DB_DRIVER")
	v.BindEnv("db.dsn", "DB_DSN")
}

func setDefaults() {
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.ssl.enabled", false)

	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.sender_name", "Demo App")
	v.SetDefault("mail.max_retries", 3)

	v.SetDefault("security.session_max_age", 3600)
	v.SetDefault("security.rate_limit", 10)
	v.SetDefault("security.resend_cooldown", 60)

	v.SetDefault("cloudflare.turnstile.enabled", false)

	v.SetDefault("db.driver", "memory")
}

// Validate checks the values currently held by viper. It's split from
// Setup so tests can feed values with viper.Set and check the result.
func Validate() error {
	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	baseURL := v.GetString("host.base_url")
	if baseURL == "" {
		return errors.New("host.base_url is not set")
	}

	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("host.base_url must be an absolute http(s) URL")
	}
	v.Set("host.base_url", strings.TrimRight(baseURL, "/"))
	v.Set("host.domain", u.Hostname())

	for _, key := range []string{"mail.host", "mail.sender_address", "mail.password"} {
		if v.GetString(key) == "" {
			return fmt.Errorf("%s is not set", key)
		}
	}

	if v.GetInt("mail.port") <= 0 {
		return errors.New("invalid mail port provided")
	}

	if v.GetInt("mail.max_retries") < 0 {
		return errors.New("mail.max_retries can't be negative")
	}

	if v.GetString("security.session_secret") == "" {
		return fmt.Errorf("security.session_secret is not set. Here's a random one you can use:\n\n%s", genSecret())
	}

	if v.GetInt("security.session_max_age") <= 0 {
		return errors.New("security.session_max_age must be bigger than 0")
	}

	if v.GetInt("security.rate_limit") <= 0 {
		return errors.New("security.rate_limit must be bigger than 0")
	}

	if v.GetInt("security.resend_cooldown") < 0 {
		return errors.New("security.resend_cooldown can't be negative")
	}

	if v.GetBool("cloudflare.turnstile.enabled") {
		if v.GetString("cloudflare.turnstile.secret_token") == "" {
			return errors.New("turnstile secret token is missing")
		}

		if v.GetString("cloudflare.turnstile.site_key") == "" {
			return errors.New("turnstile site key is missing")
		}
	}

	driver := v.GetString("db.driver")
	if !slices.Contains(validDrivers, driver) {
		return errors.New("invalid database driver provided")
	}

	if driver != "memory" && v.GetString("db.dsn") == "" {
		return fmt.Errorf("db.dsn is required for the %s driver", driver)
	}

	return nil
}

// Package config builds the normalized runtime configuration from the
// process environment.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"paypalmcp/internal/domain"
)

const envPrefix = "PAYPAL"

func newEnvViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", domain.DefaultEnvironment)
	v.SetDefault("token_safety_seconds", domain.DefaultTokenSafetySeconds)
	v.SetDefault("request_timeout_ms", domain.DefaultRequestTimeoutMS)
	v.SetDefault("log_level", domain.DefaultLogLevel)
	v.SetDefault("metrics_addr", "")
}

// Load reads PAYPAL_* environment variables and returns a validated Config.
// All violations are reported in one pass.
func Load() (domain.Config, error) {
	return loadFrom(newEnvViper())
}

func loadFrom(v *viper.Viper) (domain.Config, error) {
	raw := struct {
		ClientID           string `mapstructure:"client_id"`
		ClientSecret       string `mapstructure:"client_secret"`
		Environment        string `mapstructure:"environment"`
		TokenSafetySeconds int    `mapstructure:"token_safety_seconds"`
		RequestTimeoutMS   int    `mapstructure:"request_timeout_ms"`
		LogLevel           string `mapstructure:"log_level"`
		MetricsAddr        string `mapstructure:"metrics_addr"`
	}{}

	// AutomaticEnv does not enumerate keys, so bind the ones we decode.
	for _, key := range []string{
		"client_id", "client_secret", "environment", "token_safety_seconds",
		"request_timeout_ms", "log_level", "metrics_addr",
	} {
		if err := v.BindEnv(key); err != nil {
			return domain.Config{}, domain.E(domain.CodeConfig, "config.load", "", err)
		}
	}
	if err := v.Unmarshal(&raw); err != nil {
		return domain.Config{}, domain.E(domain.CodeConfig, "config.load", "decode environment", err)
	}

	var errs []string

	clientID := strings.TrimSpace(raw.ClientID)
	if clientID == "" {
		errs = append(errs, "PAYPAL_CLIENT_ID is required")
	}
	clientSecret := strings.TrimSpace(raw.ClientSecret)
	if clientSecret == "" {
		errs = append(errs, "PAYPAL_CLIENT_SECRET is required")
	}

	environment := strings.ToLower(strings.TrimSpace(raw.Environment))
	if environment == "" {
		environment = domain.DefaultEnvironment
	}
	var baseURL string
	switch environment {
	case domain.EnvironmentSandbox:
		baseURL = domain.SandboxBaseURL
	case domain.EnvironmentLive:
		baseURL = domain.LiveBaseURL
	default:
		errs = append(errs, "PAYPAL_ENVIRONMENT must be sandbox or live")
	}

	if raw.TokenSafetySeconds < 0 {
		errs = append(errs, "PAYPAL_TOKEN_SAFETY_SECONDS must be >= 0")
	}
	if raw.RequestTimeoutMS <= 0 {
		errs = append(errs, "PAYPAL_REQUEST_TIMEOUT_MS must be > 0")
	}

	logLevel := strings.ToLower(strings.TrimSpace(raw.LogLevel))
	switch logLevel {
	case "error", "warn", "info", "debug":
	default:
		errs = append(errs, "PAYPAL_LOG_LEVEL must be one of error, warn, info, debug")
	}

	if len(errs) > 0 {
		return domain.Config{}, domain.E(domain.CodeConfig, "config.load", strings.Join(errs, "; "), nil)
	}

	return domain.Config{
		ClientID:          clientID,
		ClientSecret:      clientSecret,
		Environment:       environment,
		BaseURL:           baseURL,
		TokenSafetyMargin: time.Duration(raw.TokenSafetySeconds) * time.Second,
		RequestTimeout:    time.Duration(raw.RequestTimeoutMS) * time.Millisecond,
		LogLevel:          logLevel,
		MetricsAddr:       strings.TrimSpace(raw.MetricsAddr),
	}, nil
}

package domain

import "time"

// Config is the normalized startup configuration. It is built once from the
// environment and treated as read-only afterwards.
type Config struct {
	ClientID     string
	ClientSecret string
	Environment  string
	BaseURL      string

	TokenSafetyMargin time.Duration
	RequestTimeout    time.Duration

	LogLevel    string
	MetricsAddr string
}

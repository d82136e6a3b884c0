package config

import (
	"fmt"
	"net/url"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate server config
	if c.Server.URL == "" {
		errors = append(errors, ValidationError{
			Field:   "server.url",
			Message: "backend URL is required",
		})
	} else if u, err := url.Parse(c.Server.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errors = append(errors, ValidationError{
			Field:   "server.url",
			Message: "invalid backend URL",
		})
	}

	// Query answering can legitimately take minutes; anything shorter than a
	// minute times out healthy requests.
	if c.Server.QueryTimeout < 60 {
		errors = append(errors, ValidationError{
			Field:   "server.query_timeout",
			Message: "query_timeout must be at least 60 seconds",
		})
	}

	if c.Server.MetricsTimeout < 1 {
		errors = append(errors, ValidationError{
			Field:   "server.metrics_timeout",
			Message: "metrics_timeout must be positive",
		})
	}

	// Validate poll config
	if c.Poll.Interval < 1 {
		errors = append(errors, ValidationError{
			Field:   "poll.interval",
			Message: "interval must be positive",
		})
	}

	if c.Poll.RateLimit <= 0 {
		errors = append(errors, ValidationError{
			Field:   "poll.rate_limit",
			Message: "rate_limit must be positive",
		})
	}

	// Validate upload config
	for _, ext := range c.Upload.AllowedExtensions {
		if !strings.HasPrefix(ext, ".") {
			errors = append(errors, ValidationError{
				Field:   "upload.allowed_extensions",
				Message: fmt.Sprintf("invalid extension format: %s", ext),
			})
		}
	}

	if c.Upload.SettleSeconds < 1 {
		errors = append(errors, ValidationError{
			Field:   "upload.settle_seconds",
			Message: "settle_seconds must be positive",
		})
	}

	// Validate chat config
	if c.Chat.MaxResults < 1 || c.Chat.MaxResults > 50 {
		errors = append(errors, ValidationError{
			Field:   "chat.max_results",
			Message: "max_results must be between 1 and 50",
		})
	}

	if c.Chat.StatusIntervalMs < 100 {
		errors = append(errors, ValidationError{
			Field:   "chat.status_interval_ms",
			Message: "status_interval_ms must be at least 100",
		})
	}

	return errors
}

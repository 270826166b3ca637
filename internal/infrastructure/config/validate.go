package config

import (
	"fmt"
	"net/url"
)

const maxPort = 65535

// ValidationError reports a single invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateRequired rejects an empty value.
func ValidateRequired(field, value string) error {
	if value == "" {
		return &ValidationError{Field: field, Message: "is required"}
	}
	return nil
}

// ValidatePort rejects ports outside 1-65535.
func ValidatePort(field string, port int) error {
	if port < 1 || port > maxPort {
		return &ValidationError{Field: field, Message: fmt.Sprintf("invalid port: %d", port)}
	}
	return nil
}

// ValidateURL requires an absolute http or https URL.
func ValidateURL(field, raw string) error {
	if err := ValidateRequired(field, raw); err != nil {
		return err
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return &ValidationError{Field: field, Message: fmt.Sprintf("invalid URL: %q", raw)}
	}
	return nil
}

// ValidateLogLevel accepts the levels understood by the logger package.
func ValidateLogLevel(level string) error {
	switch level {
	case "debug", "info", "warn", "warning", "error", "fatal":
		return nil
	default:
		return &ValidationError{Field: "logging.level", Message: "must be one of: debug, info, warn, error, fatal"}
	}
}

// ValidateLogFormat accepts json or console.
func ValidateLogFormat(format string) error {
	switch format {
	case "json", "console":
		return nil
	default:
		return &ValidationError{Field: "logging.format", Message: "must be one of: json, console"}
	}
}

package config

// LoggingConfig is the logging section shared by services.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// SetDefaults fills an unset level and format.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "json"
	}
}

// Validate checks level and format.
func (c *LoggingConfig) Validate() error {
	if err := ValidateLogLevel(c.Level); err != nil {
		return err
	}
	return ValidateLogFormat(c.Format)
}

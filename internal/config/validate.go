package config

import (
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateWhisper(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateWhisper() error {
	if !contains(ModelSizes, c.Whisper.Model) {
		return fmt.Errorf("whisper.model must be one of %s", strings.Join(ModelSizes, ", "))
	}
	if c.Whisper.Device != "" && !contains(Devices, c.Whisper.Device) {
		return fmt.Errorf("whisper.device must be one of %s", strings.Join(Devices, ", "))
	}
	if c.Whisper.ComputeType != "" && !contains(ComputeTypes, c.Whisper.ComputeType) {
		return fmt.Errorf("whisper.compute_type must be one of %s", strings.Join(ComputeTypes, ", "))
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

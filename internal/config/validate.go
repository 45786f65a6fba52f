package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateMother(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateMother() error {
	parsed, err := url.Parse(c.Mother.Endpoint)
	if err != nil {
		return fmt.Errorf("mother.endpoint is not a valid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("mother.endpoint must use http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return errors.New("mother.endpoint must include a host")
	}
	return nil
}

func (c *Config) validateAudio() error {
	if c.Audio.SampleRate < 8000 || c.Audio.SampleRate > 192000 {
		return fmt.Errorf("audio.sample_rate %d outside supported range [8000, 192000]", c.Audio.SampleRate)
	}
	if c.Audio.DefaultTempo < 20 || c.Audio.DefaultTempo > 400 {
		return fmt.Errorf("audio.default_tempo %.1f outside supported range [20, 400]", c.Audio.DefaultTempo)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
}

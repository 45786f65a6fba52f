package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeMother()
	c.normalizeAudio()
	c.normalizeBus()
	c.normalizeWorkers()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkingDir) == "" {
		c.Paths.WorkingDir = defaultWorkingDir
	}
	if c.Paths.WorkingDir, err = expandPath(c.Paths.WorkingDir); err != nil {
		return fmt.Errorf("paths.working_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.SocketPath) == "" {
		c.Paths.SocketPath = defaultSocketPath
	}
	if c.Paths.SocketPath, err = expandPath(c.Paths.SocketPath); err != nil {
		return fmt.Errorf("paths.socket_path: %w", err)
	}
	if trimmed := strings.TrimSpace(c.Paths.NotifySocketPath); trimmed != "" {
		if c.Paths.NotifySocketPath, err = expandPath(trimmed); err != nil {
			return fmt.Errorf("paths.notify_socket_path: %w", err)
		}
	} else {
		c.Paths.NotifySocketPath = ""
	}
	return nil
}

func (c *Config) normalizeMother() {
	c.Mother.Endpoint = strings.TrimRight(strings.TrimSpace(c.Mother.Endpoint), "/")
	if c.Mother.Endpoint == "" {
		c.Mother.Endpoint = defaultMotherEndpoint
	}
	c.Mother.Role = strings.TrimSpace(c.Mother.Role)
	if c.Mother.Role == "" {
		c.Mother.Role = defaultMotherRole
	}
	if c.Mother.RequestTimeout <= 0 {
		c.Mother.RequestTimeout = defaultMotherTimeout
	}
}

func (c *Config) normalizeAudio() {
	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = defaultSampleRate
	}
	if c.Audio.DefaultTempo <= 0 {
		c.Audio.DefaultTempo = defaultTempo
	}
}

func (c *Config) normalizeBus() {
	if c.Bus.DeliveryBuffer <= 0 {
		c.Bus.DeliveryBuffer = defaultDeliveryBuffer
	}
	if c.Bus.RequestTimeout <= 0 {
		c.Bus.RequestTimeout = defaultRequestTimeout
	}
}

func (c *Config) normalizeWorkers() {
	if c.Workers.InboxSize <= 0 {
		c.Workers.InboxSize = defaultWorkerInboxSize
	}
	if c.Workers.SyncTimeout <= 0 {
		c.Workers.SyncTimeout = defaultWorkerSyncTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

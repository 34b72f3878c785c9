package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateRemote(); err != nil {
		return err
	}
	if err := c.validateTransfer(); err != nil {
		return err
	}
	if err := c.validateConversion(); err != nil {
		return err
	}
	if err := c.validateMetadata(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateRemote() error {
	if strings.TrimSpace(c.Remote.Instance) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/bookvoice/config.toml"
		}
		return fmt.Errorf("remote.instance is required. Edit %s (create with 'bookvoice config init')", defaultPath)
	}
	if strings.TrimSpace(c.Remote.Zone) == "" {
		return errors.New("remote.zone must be set")
	}
	if strings.TrimSpace(c.Remote.User) == "" {
		return errors.New("remote.user must be set")
	}
	if c.Remote.SetupTimeoutSeconds <= 0 {
		return errors.New("remote.setup_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateTransfer() error {
	if c.Transfer.Concurrency < 1 {
		return errors.New("transfer.concurrency must be at least 1")
	}
	if c.Transfer.TimeoutSeconds <= 0 {
		return errors.New("transfer.timeout_seconds must be positive")
	}
	if c.Transfer.Retries < 0 {
		return errors.New("transfer.retries must not be negative")
	}
	return nil
}

func (c *Config) validateConversion() error {
	if c.Conversion.TimeoutSeconds <= 0 {
		return errors.New("conversion.timeout_seconds must be positive")
	}
	if c.Conversion.Retries < 0 {
		return errors.New("conversion.retries must not be negative")
	}
	if c.Conversion.Workers < 1 {
		return errors.New("conversion.workers must be at least 1")
	}
	return nil
}

func (c *Config) validateMetadata() error {
	if !c.Metadata.Enabled {
		return nil
	}
	if c.Metadata.RequestTimeout <= 0 {
		return errors.New("metadata.request_timeout must be positive")
	}
	// API credentials may legitimately be absent; lookup degrades to a
	// warning at run time rather than blocking startup.
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

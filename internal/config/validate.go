package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Paths.AssetDir == "" {
		return errors.New("paths.asset_dir must be set")
	}
	if c.Paths.UploadDir == "" {
		return errors.New("paths.upload_dir must be set")
	}
	if c.Paths.QRDir == "" {
		return errors.New("paths.qr_dir must be set")
	}
	if c.Server.QRPublicPath == "/" {
		return errors.New("server.qr_public_path must not be the site root")
	}
	if c.Server.AssetPath == "/" {
		return errors.New("server.asset_path must not be the site root")
	}
	u, err := url.Parse(c.Publisher.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("publisher.endpoint: invalid URL %q", c.Publisher.Endpoint)
	}
	if c.Publisher.TimeoutSeconds < 0 {
		return errors.New("publisher.timeout_seconds must not be negative")
	}
	if c.QR.Version < 1 || c.QR.Version > 40 {
		return fmt.Errorf("qr.version must be between 1 and 40, got %d", c.QR.Version)
	}
	if c.QR.ModuleSize < 1 || c.QR.ModuleSize > 255 {
		return fmt.Errorf("qr.module_size must be between 1 and 255, got %d", c.QR.ModuleSize)
	}
	if c.QR.Border < 0 {
		return fmt.Errorf("qr.border must not be negative, got %d", c.QR.Border)
	}
	switch c.Snapshot.IDStrategy {
	case IDStrategyUnique, IDStrategyTimestamp:
	default:
		return fmt.Errorf("snapshot.id_strategy: unsupported value %q", c.Snapshot.IDStrategy)
	}
	if c.Snapshot.MinBytes < 0 {
		return errors.New("snapshot.min_bytes must not be negative")
	}
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.QR.Version != 1 || cfg.QR.ModuleSize != 10 || cfg.QR.Border != 4 {
		t.Fatalf("unexpected QR defaults: %+v", cfg.QR)
	}
	if cfg.Snapshot.MinBytes != 100 {
		t.Fatalf("expected 100 byte minimum, got %d", cfg.Snapshot.MinBytes)
	}
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gallery.toml")
	writeFile(t, path, `
[paths]
asset_dir = "/srv/assets/"
qr_dir = "/srv/qr"

[server]
qr_public_path = "qr/"

[qr]
version = 3

[snapshot]
id_strategy = "Timestamp"
`)

	cfg, used, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if used != path {
		t.Fatalf("expected config path %q, got %q", path, used)
	}
	if cfg.Paths.AssetDir != "/srv/assets" {
		t.Fatalf("asset dir not cleaned: %q", cfg.Paths.AssetDir)
	}
	if cfg.Server.QRPublicPath != "/qr" {
		t.Fatalf("public path not normalized: %q", cfg.Server.QRPublicPath)
	}
	if cfg.QR.Version != 3 {
		t.Fatalf("expected version 3, got %d", cfg.QR.Version)
	}
	if cfg.QR.ModuleSize != 10 {
		t.Fatalf("defaults should survive partial files, got module size %d", cfg.QR.ModuleSize)
	}
	if cfg.Snapshot.IDStrategy != IDStrategyTimestamp {
		t.Fatalf("expected timestamp strategy, got %q", cfg.Snapshot.IDStrategy)
	}
	if got := cfg.ManifestPath(); got != filepath.Join("/srv/assets", "images.json") {
		t.Fatalf("unexpected manifest path %q", got)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gallery.yaml")
	writeFile(t, path, "publisher:\n  endpoint: http://127.0.0.1:9999/upload\n  api_key: abc\nlogging:\n  format: json\n")

	cfg, _, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Publisher.Endpoint != "http://127.0.0.1:9999/upload" || cfg.Publisher.APIKey != "abc" {
		t.Fatalf("publisher not decoded: %+v", cfg.Publisher)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected json logging, got %q", cfg.Logging.Format)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("IMGBB_API_KEY", "from-env")
	t.Setenv("GALLERY_ASSET_DIR", "/tmp/gallery")

	dir := t.TempDir()
	path := filepath.Join(dir, "gallery.toml")
	writeFile(t, path, "[publisher]\napi_key = \"from-file\"\n")

	cfg, _, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Fatalf("expected PORT override, got %q", cfg.Server.Addr)
	}
	if cfg.Publisher.APIKey != "from-env" {
		t.Fatalf("expected env api key, got %q", cfg.Publisher.APIKey)
	}
	if cfg.Paths.AssetDir != "/tmp/gallery" {
		t.Fatalf("expected env asset dir, got %q", cfg.Paths.AssetDir)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"qr version", func(c *Config) { c.QR.Version = 41 }, "qr.version"},
		{"module size", func(c *Config) { c.QR.ModuleSize = 0 }, "qr.module_size"},
		{"strategy", func(c *Config) { c.Snapshot.IDStrategy = "random" }, "id_strategy"},
		{"endpoint", func(c *Config) { c.Publisher.Endpoint = "ftp://host" }, "publisher.endpoint"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"qr root", func(c *Config) { c.Server.QRPublicPath = "/" }, "qr_public_path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.normalize()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	cfg := Default()
	cfg.Paths.UploadDir = filepath.Join(root, "up", "nested")
	cfg.Paths.QRDir = filepath.Join(root, "qr")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	for _, dir := range []string{cfg.Paths.UploadDir, cfg.Paths.QRDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s", dir)
		}
	}
}

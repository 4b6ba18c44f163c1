package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Paths groups the directories the server reads from and writes to.
type Paths struct {
	AssetDir  string `toml:"asset_dir" yaml:"asset_dir"`
	UploadDir string `toml:"upload_dir" yaml:"upload_dir"`
	QRDir     string `toml:"qr_dir" yaml:"qr_dir"`
	// Manifest is the precomputed catalog file. Relative paths resolve against AssetDir.
	Manifest string `toml:"manifest" yaml:"manifest"`
}

// Server holds the HTTP listener settings.
type Server struct {
	Addr         string `toml:"addr" yaml:"addr"`
	QRPublicPath string `toml:"qr_public_path" yaml:"qr_public_path"`
	AssetPath    string `toml:"asset_path" yaml:"asset_path"`
}

// Publisher configures the third-party image host.
type Publisher struct {
	Endpoint string `toml:"endpoint" yaml:"endpoint"`
	APIKey   string `toml:"api_key" yaml:"api_key"`
	// TimeoutSeconds of zero keeps the default http.Client behaviour (no timeout).
	TimeoutSeconds int `toml:"timeout_seconds" yaml:"timeout_seconds"`
}

// QR configures the generated symbols.
type QR struct {
	Version    int `toml:"version" yaml:"version"`
	ModuleSize int `toml:"module_size" yaml:"module_size"`
	Border     int `toml:"border" yaml:"border"`
}

// Snapshot configures capture persistence.
type Snapshot struct {
	// IDStrategy is "unique" (timestamp plus random token) or "timestamp" (whole seconds).
	IDStrategy string `toml:"id_strategy" yaml:"id_strategy"`
	MinBytes   int64  `toml:"min_bytes" yaml:"min_bytes"`
}

// Logging configures the slog output.
type Logging struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// Config is the full server configuration.
type Config struct {
	Paths     Paths     `toml:"paths" yaml:"paths"`
	Server    Server    `toml:"server" yaml:"server"`
	Publisher Publisher `toml:"publisher" yaml:"publisher"`
	QR        QR        `toml:"qr" yaml:"qr"`
	Snapshot  Snapshot  `toml:"snapshot" yaml:"snapshot"`
	Logging   Logging   `toml:"logging" yaml:"logging"`
}

// Load reads defaults, an optional .env file, an optional config file and environment
// overrides, in that order. An empty path probes gallery.toml and gallery.yaml in the
// working directory. The returned string is the config file that was used, if any.
func Load(path string) (*Config, string, error) {
	// .env is optional; production deployments set the environment directly.
	_ = godotenv.Load()

	cfg := Default()

	resolved, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", err
	}
	if exists {
		if err := decodeFile(resolved, &cfg); err != nil {
			return nil, "", err
		}
	} else {
		resolved = ""
	}

	cfg.applyEnv()
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, resolved, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if strings.TrimSpace(path) != "" {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", false, fmt.Errorf("config file %q not found", path)
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return path, true, nil
	}
	for _, candidate := range []string{"gallery.toml", "gallery.yaml", "gallery.yml"} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true, nil
		}
	}
	return "", false, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
	}
	return nil
}

func (c *Config) applyEnv() {
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
	setString(&c.Paths.AssetDir, "GALLERY_ASSET_DIR")
	setString(&c.Paths.UploadDir, "GALLERY_UPLOAD_DIR")
	setString(&c.Paths.QRDir, "GALLERY_QR_DIR")
	setString(&c.Publisher.Endpoint, "GALLERY_PUBLISH_ENDPOINT")
	setString(&c.Publisher.APIKey, "IMGBB_API_KEY")
	setString(&c.Publisher.APIKey, "GALLERY_PUBLISH_API_KEY")
	setString(&c.Snapshot.IDStrategy, "GALLERY_SNAPSHOT_IDS")
	setString(&c.Logging.Level, "GALLERY_LOG_LEVEL")
	setString(&c.Logging.Format, "GALLERY_LOG_FORMAT")
	if v, err := strconv.Atoi(os.Getenv("GALLERY_PUBLISH_TIMEOUT")); err == nil {
		c.Publisher.TimeoutSeconds = v
	}
}

func setString(dst *string, key string) {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		*dst = strings.TrimSpace(value)
	}
}

func (c *Config) normalize() {
	c.Paths.AssetDir = cleanPath(c.Paths.AssetDir)
	c.Paths.UploadDir = cleanPath(c.Paths.UploadDir)
	c.Paths.QRDir = cleanPath(c.Paths.QRDir)
	c.Server.QRPublicPath = "/" + strings.Trim(strings.TrimSpace(c.Server.QRPublicPath), "/")
	c.Server.AssetPath = "/" + strings.Trim(strings.TrimSpace(c.Server.AssetPath), "/")
	c.Snapshot.IDStrategy = strings.ToLower(strings.TrimSpace(c.Snapshot.IDStrategy))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
}

func cleanPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	return filepath.Clean(p)
}

// ManifestPath returns the manifest location, resolved against the asset directory.
func (c *Config) ManifestPath() string {
	m := strings.TrimSpace(c.Paths.Manifest)
	if m == "" {
		return ""
	}
	if filepath.IsAbs(m) {
		return m
	}
	return filepath.Join(c.Paths.AssetDir, m)
}

// EnsureDirectories creates the writable directories. The asset directory is provisioned
// externally and is never created here.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.UploadDir, c.Paths.QRDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

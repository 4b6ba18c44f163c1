// Package qrforge renders share links as QR code PNGs.
package qrforge

import (
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"

	"github.com/cristianadrielbraun/kioskgallery/internal/logging"
)

const (
	DefaultVersion    = 1
	DefaultModuleSize = 10
	DefaultBorder     = 4
	maxURLLength      = 4096
)

// Code describes a persisted QR image.
type Code struct {
	Path       string
	PublicPath string
	// Version is the symbol version actually encoded, never below the configured floor.
	Version int
}

// Forger writes QR codes into Dir and reports them under PublicPrefix.
type Forger struct {
	Dir          string
	PublicPrefix string
	// Version is a floor: longer data is encoded at whatever larger version it needs.
	Version    int
	ModuleSize int
	// Border is the quiet zone width in modules.
	Border int
	Logger *slog.Logger
}

// New returns a Forger with the default low-EC symbol settings.
func New(dir, publicPrefix string, logger *slog.Logger) *Forger {
	return &Forger{
		Dir:          dir,
		PublicPrefix: publicPrefix,
		Version:      DefaultVersion,
		ModuleSize:   DefaultModuleSize,
		Border:       DefaultBorder,
		Logger:       logging.OrNop(logger),
	}
}

// FileName is the QR image name for a snapshot id.
func FileName(id string) string {
	return id + "_qr.png"
}

// Forge encodes text and writes <Dir>/<id>_qr.png.
func (f *Forger) Forge(text, id string) (Code, error) {
	qrc, err := f.encode(text)
	if err != nil {
		return Code{}, err
	}

	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return Code{}, fmt.Errorf("create qr directory: %w", err)
	}
	name := FileName(id)
	out := filepath.Join(f.Dir, name)

	writer, err := standard.New(out, f.imageOptions()...)
	if err != nil {
		return Code{}, fmt.Errorf("create qr writer: %w", err)
	}
	// Save closes the writer.
	if err := qrc.Save(writer); err != nil {
		return Code{}, fmt.Errorf("write qr image: %w", err)
	}

	info, err := os.Stat(out)
	if err != nil {
		return Code{}, fmt.Errorf("generated qr file not found: %w", err)
	}
	if info.Size() == 0 {
		_ = os.Remove(out)
		return Code{}, fmt.Errorf("generated qr file is empty")
	}

	code := Code{
		Path:       out,
		PublicPath: path.Join("/", f.PublicPrefix, name),
		Version:    versionOf(qrc),
	}
	logging.OrNop(f.Logger).Info("qr code written", "path", out, "version", code.Version)
	return code, nil
}

// Render streams the PNG for text to w without touching the filesystem.
func (f *Forger) Render(w io.Writer, text string) (int, error) {
	qrc, err := f.encode(text)
	if err != nil {
		return 0, err
	}
	writer := standard.NewWithWriter(nopCloser{w}, f.imageOptions()...)
	if err := qrc.Save(writer); err != nil {
		return 0, fmt.Errorf("write qr image: %w", err)
	}
	return versionOf(qrc), nil
}

func (f *Forger) encode(text string) (*qrcode.QRCode, error) {
	if text == "" {
		return nil, fmt.Errorf("qr content is empty")
	}
	qrc, err := qrcode.NewWith(text, qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionLow))
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	if versionOf(qrc) >= f.Version {
		return qrc, nil
	}
	qrc, err = qrcode.NewWith(text,
		qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionLow),
		qrcode.WithVersion(f.Version),
	)
	if err != nil {
		return nil, fmt.Errorf("encode qr at version %d: %w", f.Version, err)
	}
	return qrc, nil
}

func (f *Forger) imageOptions() []standard.ImageOption {
	moduleSize := f.ModuleSize
	if moduleSize < 1 {
		moduleSize = DefaultModuleSize
	}
	if moduleSize > 255 {
		moduleSize = 255
	}
	border := f.Border
	if border < 0 {
		border = 0
	}
	return []standard.ImageOption{
		standard.WithQRWidth(uint8(moduleSize)),
		standard.WithBorderWidth(border * moduleSize),
		standard.WithBgColor(color.RGBA{255, 255, 255, 255}),
		standard.WithFgColor(color.RGBA{0, 0, 0, 255}),
		standard.WithBuiltinImageEncoder(standard.PNG_FORMAT),
	}
}

// versionOf derives the symbol version from the module matrix width (17 + 4v).
func versionOf(qrc *qrcode.QRCode) int {
	return (qrc.Dimension() - 17) / 4
}

// NormalizeURL validates a URL for QR generation. A missing scheme defaults to https.
func NormalizeURL(s string) (string, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return "", fmt.Errorf("URL parameter is required")
	}
	if !strings.Contains(v, "://") {
		v = "https://" + v
	}
	if len(v) > maxURLLength {
		return "", fmt.Errorf("URL is too long")
	}
	u, err := url.ParseRequestURI(v)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("only http and https URLs are supported")
	}
	if u.Host == "" {
		return "", fmt.Errorf("URL must include a valid host")
	}
	return u.String(), nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

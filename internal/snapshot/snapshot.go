// Package snapshot decodes captured canvas payloads and persists them for publishing.
package snapshot

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/cristianadrielbraun/kioskgallery/internal/logging"
)

// DefaultMinBytes is the smallest file accepted as a real capture.
const DefaultMinBytes = 100

// ErrMissingInput reports an empty or absent payload.
var ErrMissingInput = errors.New("no image data provided")

// DecodeError reports a payload that is not valid base64 or a malformed data URL.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid image data: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ValidationError reports a persisted capture too small to be a real image.
type ValidationError struct {
	Path string
	Size int64
	Min  int64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("captured image is empty or corrupt (%d bytes, need at least %d)", e.Size, e.Min)
}

// Snapshot is one persisted capture.
type Snapshot struct {
	ID         string
	Path       string
	Size       int64
	CapturedAt time.Time
}

// TimestampID names captures by whole seconds. Two captures in the same second get
// the same id and the later one overwrites the earlier file.
func TimestampID(now time.Time) string {
	return fmt.Sprintf("image_%d", now.Unix())
}

// UniqueID keeps the timestamp prefix and appends a random token.
func UniqueID(now time.Time) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("image_%d_%s", now.Unix(), token[:12])
}

// Ingester writes decoded captures into Dir.
type Ingester struct {
	Dir      string
	MinBytes int64
	NewID    func(time.Time) string
	Now      func() time.Time
	Logger   *slog.Logger
}

// NewIngester returns an Ingester with the default size floor and unique ids.
func NewIngester(dir string, logger *slog.Logger) *Ingester {
	return &Ingester{
		Dir:      dir,
		MinBytes: DefaultMinBytes,
		NewID:    UniqueID,
		Now:      time.Now,
		Logger:   logging.OrNop(logger),
	}
}

// DecodePayload accepts raw base64 or a data URL and returns the decoded bytes.
func DecodePayload(payload string) ([]byte, error) {
	if strings.TrimSpace(payload) == "" {
		return nil, ErrMissingInput
	}
	// Spaces are never trimmed: form decoding turns unescaped '+' into spaces, so a
	// leading or trailing run of them is still base64 data.
	s := strings.Trim(payload, "\r\n\t")
	if head := strings.TrimLeft(s, " "); strings.HasPrefix(strings.ToLower(head), "data:") {
		_, rest, ok := strings.Cut(head, ",")
		if !ok {
			return nil, &DecodeError{Err: errors.New("data URL has no payload")}
		}
		s = rest
	}

	// Line breaks come from wrapped encoders.
	s = strings.NewReplacer("\r", "", "\n", "", "\t", "", " ", "+").Replace(s)
	if s == "" {
		return nil, &DecodeError{Err: errors.New("empty base64 payload")}
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
		if rawErr != nil {
			return nil, &DecodeError{Err: err}
		}
		data = raw
	}
	return data, nil
}

// Ingest decodes payload, writes it to disk and checks the result.
func (i *Ingester) Ingest(payload string) (Snapshot, error) {
	logger := logging.OrNop(i.Logger)

	data, err := DecodePayload(payload)
	if err != nil {
		return Snapshot{}, err
	}

	now := time.Now()
	if i.Now != nil {
		now = i.Now()
	}
	newID := i.NewID
	if newID == nil {
		newID = UniqueID
	}
	id := newID(now)
	path := filepath.Join(i.Dir, id+".png")

	if err := os.MkdirAll(i.Dir, 0o755); err != nil {
		return Snapshot{}, fmt.Errorf("create upload directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Snapshot{}, fmt.Errorf("save captured image: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("captured image not found after save: %w", err)
	}
	if info.Size() < i.MinBytes {
		logger.Warn("rejecting capture", "id", id, "size", info.Size())
		return Snapshot{}, &ValidationError{Path: path, Size: info.Size(), Min: i.MinBytes}
	}

	logger.Info("capture saved", "id", id, "path", path, "size", humanize.Bytes(uint64(info.Size())))
	return Snapshot{ID: id, Path: path, Size: info.Size(), CapturedAt: now}, nil
}

package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/cristianadrielbraun/kioskgallery/internal/logging"
)

// ReadManifest loads a precomputed image list. Both a bare JSON array and the
// {"images": [...]} object form are accepted. A missing file returns an error
// matching os.ErrNotExist.
func ReadManifest(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)

	var names []string
	if len(data) > 0 && data[0] == '{' {
		var wrapped struct {
			Images []string `json:"images"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("decode manifest %s: %w", path, err)
		}
		names = wrapped.Images
	} else if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// WriteManifest replaces the manifest at path with names. Writers serialize on a
// sidecar lock file and the content lands through a same-directory rename, so
// readers never observe a partial file.
func WriteManifest(path string, names []string) error {
	if names == nil {
		names = []string{}
	}
	data, err := json.MarshalIndent(names, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock manifest: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp manifest: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp manifest: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp manifest: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace manifest: %w", err)
	}
	return nil
}

// Rebuild scans dir and rewrites the manifest, returning the number of entries.
func Rebuild(dir, manifestPath string) (int, error) {
	names, err := List(dir, "")
	if err != nil {
		return 0, err
	}
	if err := WriteManifest(manifestPath, names); err != nil {
		return 0, err
	}
	return len(names), nil
}

// Load returns the manifest contents when present and the live directory listing
// otherwise. An unreadable manifest is logged and the listing is used instead.
func Load(dir, manifestPath string, logger *slog.Logger) ([]string, error) {
	if manifestPath != "" {
		names, err := ReadManifest(manifestPath)
		if err == nil {
			return names, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			logging.OrNop(logger).Warn("ignoring unreadable manifest", "path", manifestPath, "error", err)
		}
	}
	return List(dir, "")
}

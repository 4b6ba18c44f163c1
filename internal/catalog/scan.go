// Package catalog lists the gallery's image assets and maintains the optional
// precomputed images.json manifest.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// UnavailableError reports that the asset directory is missing or unreadable.
type UnavailableError struct {
	Dir string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("image directory %q is unavailable: %v", e.Dir, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// IsUnavailable reports whether err is an UnavailableError.
func IsUnavailable(err error) bool {
	var e *UnavailableError
	return errors.As(err, &e)
}

var imageExts = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".bmp":  {},
	".webp": {},
	".tif":  {},
	".tiff": {},
	".svg":  {},
}

// IsImageName reports whether name carries a recognized image extension.
func IsImageName(name string) bool {
	_, ok := imageExts[strings.ToLower(filepath.Ext(name))]
	return ok
}

// List returns the image filenames in dir whose name contains category. An empty
// category matches everything. Names come back in directory listing order, which
// os.ReadDir sorts by filename.
func List(dir, category string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &UnavailableError{Dir: dir, Err: err}
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if name := e.Name(); IsImageName(name) {
			names = append(names, name)
		}
	}
	return Filter(names, category), nil
}

// Filter keeps the names containing category, preserving order.
func Filter(names []string, category string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if strings.Contains(n, category) {
			out = append(out, n)
		}
	}
	return out
}

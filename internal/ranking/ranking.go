// Package ranking orders catalog images by a color metric.
package ranking

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/cristianadrielbraun/kioskgallery/internal/catalog"
	"github.com/cristianadrielbraun/kioskgallery/internal/colorscore"
	"github.com/cristianadrielbraun/kioskgallery/internal/logging"
)

// Scored pairs a filename with its metric value.
type Scored struct {
	Name  string
	Score float64
}

// Engine scores every candidate on each call; nothing is cached between requests.
type Engine struct {
	Logger *slog.Logger

	// ReadFile and ScoreBytes are replaceable for tests.
	ReadFile   func(string) ([]byte, error)
	ScoreBytes func([]byte, colorscore.Metric) (float64, error)
}

// New returns an Engine backed by the filesystem and colorscore.
func New(logger *slog.Logger) *Engine {
	return &Engine{
		Logger:     logging.OrNop(logger),
		ReadFile:   os.ReadFile,
		ScoreBytes: colorscore.ScoreBytes,
	}
}

// Sort returns the filenames in dir containing category, ordered by descending score.
// A missing dir is an error (catalog.UnavailableError); unscorable files are logged
// and left out.
func (e *Engine) Sort(ctx context.Context, dir string, metric colorscore.Metric, category string) ([]string, error) {
	ranked, err := e.Rank(ctx, dir, metric, category)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(ranked))
	for i, s := range ranked {
		names[i] = s.Name
	}
	return names, nil
}

// Rank is Sort with the scores attached.
func (e *Engine) Rank(ctx context.Context, dir string, metric colorscore.Metric, category string) ([]Scored, error) {
	logger := logging.OrNop(e.Logger)
	readFile := e.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}
	scoreBytes := e.ScoreBytes
	if scoreBytes == nil {
		scoreBytes = colorscore.ScoreBytes
	}

	names, err := catalog.List(dir, category)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	scored := make([]Scored, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := readFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("skipping unreadable image", "file", name, "error", err)
			continue
		}
		score, err := scoreBytes(data, metric)
		if err != nil {
			var skip *colorscore.SkipError
			if !errors.As(err, &skip) {
				logger.Warn("skipping image after scoring error", "file", name, "error", err)
				continue
			}
			logger.Warn("skipping image", "file", name, "reason", skip.Reason, "error", skip.Err)
			continue
		}
		scored = append(scored, Scored{Name: name, Score: score})
	}

	Order(scored)
	logger.Debug("ranked images",
		"dir", dir,
		"metric", string(metric),
		"category", category,
		"candidates", len(names),
		"scored", len(scored),
		"elapsed", time.Since(start),
	)
	return scored, nil
}

// Order sorts descending by score. Equal scores keep their input order.
func Order(scored []Scored) {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
}

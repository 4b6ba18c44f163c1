// Package pipeline runs a captured snapshot through persistence, publishing and QR
// generation, and shapes the outcome for clients.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cristianadrielbraun/kioskgallery/internal/logging"
	"github.com/cristianadrielbraun/kioskgallery/internal/publish"
	"github.com/cristianadrielbraun/kioskgallery/internal/qrforge"
	"github.com/cristianadrielbraun/kioskgallery/internal/snapshot"
)

// Stage is a publish pipeline state.
type Stage int

const (
	Idle Stage = iota
	Decoding
	Persisted
	Uploading
	Published
	QRGenerated
	Done
	Failed
)

var stageNames = [...]string{"idle", "decoding", "persisted", "uploading", "published", "qr_generated", "done", "failed"}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// Ingester persists a capture payload.
type Ingester interface {
	Ingest(payload string) (snapshot.Snapshot, error)
}

// Forger writes a QR code for a URL.
type Forger interface {
	Forge(text, id string) (qrforge.Code, error)
}

// Outcome is the terminal state of one run. Stage is Done or Failed; FailedAt names
// the stage that was active when the run failed.
type Outcome struct {
	Stage    Stage
	FailedAt Stage
	Snapshot snapshot.Snapshot
	URL      string
	QR       qrforge.Code
	Err      error
}

// OK reports whether the run reached Done.
func (o Outcome) OK() bool { return o.Stage == Done }

// ErrInternal replaces unexpected panics in client-facing messages.
var ErrInternal = errors.New("internal error while generating the QR code")

// Pipeline wires the three stages. It holds no per-request state.
type Pipeline struct {
	Ingester  Ingester
	Publisher publish.Publisher
	Forger    Forger
	Logger    *slog.Logger
}

// Run drives payload to Done or Failed. There is no retry or resumption.
func (p *Pipeline) Run(ctx context.Context, payload string) (out Outcome) {
	logger := logging.OrNop(p.Logger)
	start := time.Now()
	out.Stage = Idle

	advance := func(next Stage) {
		logger.Debug("publish pipeline transition", "from", out.Stage.String(), "to", next.String())
		out.Stage = next
	}
	fail := func(err error) Outcome {
		out.FailedAt = out.Stage
		out.Stage = Failed
		out.Err = err
		return out
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("publish pipeline panicked", "stage", out.Stage.String(), "panic", r)
			out = fail(ErrInternal)
		}
		if out.Stage == Failed {
			attrs := []any{"stage", out.FailedAt.String(), "error", out.Err}
			var pubErr *publish.Error
			if errors.As(out.Err, &pubErr) {
				attrs = append(attrs, "detail", pubErr.Detail())
			}
			logger.Warn("publish pipeline failed", attrs...)
			return
		}
		logger.Info("publish pipeline done", "id", out.Snapshot.ID, "qr", out.QR.PublicPath, "elapsed", time.Since(start))
	}()

	advance(Decoding)
	snap, err := p.Ingester.Ingest(payload)
	if err != nil {
		return fail(err)
	}
	out.Snapshot = snap
	advance(Persisted)

	// Once started, an upload runs to completion even if the client goes away.
	advance(Uploading)
	url, err := p.Publisher.Publish(context.WithoutCancel(ctx), snap.Path)
	if err != nil {
		var pubErr *publish.Error
		if !errors.As(err, &pubErr) {
			err = &publish.Error{Err: err}
		}
		return fail(err)
	}
	out.URL = url
	advance(Published)

	code, err := p.Forger.Forge(url, snap.ID)
	if err != nil {
		return fail(fmt.Errorf("failed to generate QR code: %w", err))
	}
	out.QR = code
	advance(QRGenerated)

	advance(Done)
	return out
}

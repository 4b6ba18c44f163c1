package pipeline

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cristianadrielbraun/kioskgallery/internal/publish"
	"github.com/cristianadrielbraun/kioskgallery/internal/qrforge"
	"github.com/cristianadrielbraun/kioskgallery/internal/snapshot"
)

func whiteJPEG(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

type fixture struct {
	uploads string
	qrs     string
	calls   int
	p       *Pipeline
}

func newFixture(t *testing.T, pub func(ctx context.Context, path string) (string, error)) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{uploads: filepath.Join(root, "uploads"), qrs: filepath.Join(root, "qrcodes")}

	ingester := snapshot.NewIngester(f.uploads, nil)
	ingester.NewID = snapshot.TimestampID
	ingester.Now = func() time.Time { return time.Unix(1700000000, 0) }

	f.p = &Pipeline{
		Ingester: ingester,
		Publisher: publish.Func(func(ctx context.Context, path string) (string, error) {
			f.calls++
			return pub(ctx, path)
		}),
		Forger: qrforge.New(f.qrs, "/static/qrcodes", nil),
	}
	return f
}

func TestRunReachesDone(t *testing.T) {
	f := newFixture(t, func(context.Context, string) (string, error) { return "http://x/y.png", nil })

	out := f.p.Run(context.Background(), whiteJPEG(t))
	if !out.OK() {
		t.Fatalf("expected done, got %s (failed at %s): %v", out.Stage, out.FailedAt, out.Err)
	}
	if out.Snapshot.ID != "image_1700000000" {
		t.Fatalf("unexpected id %q", out.Snapshot.ID)
	}
	if _, err := os.Stat(filepath.Join(f.uploads, "image_1700000000.png")); err != nil {
		t.Fatalf("capture not persisted: %v", err)
	}
	if _, err := os.Stat(filepath.Join(f.qrs, "image_1700000000_qr.png")); err != nil {
		t.Fatalf("qr not written: %v", err)
	}

	env := Assemble(out)
	want := Envelope{Success: true, QRCode: "/static/qrcodes/image_1700000000_qr.png", OriginalImage: "http://x/y.png"}
	if env != want {
		t.Fatalf("unexpected envelope %+v", env)
	}
}

func TestRunFailsBeforeUploadOnBadInput(t *testing.T) {
	tiny := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("tiny"))
	tests := []struct {
		name    string
		payload string
		check   func(error) bool
	}{
		{"missing", "", func(err error) bool { return errors.Is(err, snapshot.ErrMissingInput) }},
		{"not base64", "data:image/png;base64,@@@", func(err error) bool {
			var de *snapshot.DecodeError
			return errors.As(err, &de)
		}},
		{"too small", tiny, func(err error) bool {
			var ve *snapshot.ValidationError
			return errors.As(err, &ve)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, func(context.Context, string) (string, error) { return "http://x/y.png", nil })
			out := f.p.Run(context.Background(), tt.payload)
			if out.Stage != Failed || out.FailedAt != Decoding {
				t.Fatalf("expected failure while decoding, got %s/%s", out.Stage, out.FailedAt)
			}
			if !tt.check(out.Err) {
				t.Fatalf("unexpected error %v", out.Err)
			}
			if f.calls != 0 {
				t.Fatalf("publisher must not be called, got %d calls", f.calls)
			}
			env := Assemble(out)
			if env.Success || env.Error == "" || env.QRCode != "" {
				t.Fatalf("unexpected envelope %+v", env)
			}
		})
	}
}

func TestRunPublishFailureIsGeneric(t *testing.T) {
	f := newFixture(t, func(context.Context, string) (string, error) {
		return "", errors.New("status 400: invalid api key abc123")
	})

	out := f.p.Run(context.Background(), whiteJPEG(t))
	if out.Stage != Failed || out.FailedAt != Uploading {
		t.Fatalf("expected failure while uploading, got %s/%s", out.Stage, out.FailedAt)
	}
	var pubErr *publish.Error
	if !errors.As(out.Err, &pubErr) {
		t.Fatalf("expected publish.Error, got %v", out.Err)
	}
	env := Assemble(out)
	if env.Error != "failed to upload image to the image host" {
		t.Fatalf("client message leaked detail: %q", env.Error)
	}
	if f.calls != 1 {
		t.Fatalf("expected exactly one upload attempt, got %d", f.calls)
	}
	entries, _ := os.ReadDir(f.qrs)
	if len(entries) != 0 {
		t.Fatalf("no qr should be written, found %d files", len(entries))
	}
}

func TestRunUploadIgnoresClientCancellation(t *testing.T) {
	f := newFixture(t, func(ctx context.Context, path string) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "http://x/y.png", nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := f.p.Run(ctx, whiteJPEG(t))
	if !out.OK() {
		t.Fatalf("expected done after client cancellation, got %s (failed at %s): %v", out.Stage, out.FailedAt, out.Err)
	}
	if f.calls != 1 {
		t.Fatalf("expected one upload, got %d", f.calls)
	}
}

func TestRunRecoversPanics(t *testing.T) {
	f := newFixture(t, func(context.Context, string) (string, error) { panic("boom") })

	out := f.p.Run(context.Background(), whiteJPEG(t))
	if out.Stage != Failed || out.FailedAt != Uploading {
		t.Fatalf("expected failure while uploading, got %s/%s", out.Stage, out.FailedAt)
	}
	if !errors.Is(out.Err, ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", out.Err)
	}
	if env := Assemble(out); env.Success || env.Error != ErrInternal.Error() {
		t.Fatalf("unexpected envelope %+v", env)
	}
}

func TestRunForgeFailure(t *testing.T) {
	f := newFixture(t, func(context.Context, string) (string, error) { return "", nil })
	f.p.Publisher = publish.Func(func(context.Context, string) (string, error) { return "", nil })

	out := f.p.Run(context.Background(), whiteJPEG(t))
	if out.Stage != Failed || out.FailedAt != Published {
		t.Fatalf("expected failure after publishing, got %s/%s", out.Stage, out.FailedAt)
	}
}

func TestStageString(t *testing.T) {
	if QRGenerated.String() != "qr_generated" || Failed.String() != "failed" {
		t.Fatalf("unexpected names %s %s", QRGenerated, Failed)
	}
	if Stage(42).String() != "stage(42)" {
		t.Fatalf("unexpected fallback %s", Stage(42))
	}
}

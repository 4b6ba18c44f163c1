package qrforge

import (
	"bytes"
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/makiuchi-d/gozxing"
	zxqr "github.com/makiuchi-d/gozxing/qrcode"
)

func decodeQR(t *testing.T, img image.Image) string {
	t.Helper()
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		t.Fatalf("binary bitmap: %v", err)
	}
	result, err := zxqr.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		t.Fatalf("decode qr: %v", err)
	}
	return result.GetText()
}

func decodeFile(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, format, err := image.Decode(f)
	if err != nil {
		t.Fatalf("decode image: %v", err)
	}
	if format != "png" {
		t.Fatalf("expected png, got %s", format)
	}
	return img
}

func TestForgeRoundTrip(t *testing.T) {
	dir := t.TempDir()
	forger := New(dir, "/static/qrcodes", nil)

	for _, url := range []string{
		"http://x/y.png",
		"https://i.ibb.co/abcdEFG/image-1700000000-0123456789ab.png",
		"https://example.com/" + strings.Repeat("long-path-segment/", 12),
	} {
		code, err := forger.Forge(url, "image_1700000000")
		if err != nil {
			t.Fatalf("forge %q: %v", url, err)
		}
		if code.Path != filepath.Join(dir, "image_1700000000_qr.png") {
			t.Fatalf("unexpected path %q", code.Path)
		}
		if code.PublicPath != "/static/qrcodes/image_1700000000_qr.png" {
			t.Fatalf("unexpected public path %q", code.PublicPath)
		}
		if code.Version < forger.Version {
			t.Fatalf("version %d below floor %d", code.Version, forger.Version)
		}
		if got := decodeQR(t, decodeFile(t, code.Path)); got != url {
			t.Fatalf("round trip mismatch: want %q, got %q", url, got)
		}
	}
}

func TestVersionFloorIsUpgradedForLongData(t *testing.T) {
	forger := New(t.TempDir(), "/qr", nil)
	short, err := forger.Forge("http://x/y.png", "short")
	if err != nil {
		t.Fatalf("forge short: %v", err)
	}
	long, err := forger.Forge("https://example.com/"+strings.Repeat("a", 200), "long")
	if err != nil {
		t.Fatalf("forge long: %v", err)
	}
	if long.Version <= short.Version {
		t.Fatalf("expected automatic upgrade, got short=%d long=%d", short.Version, long.Version)
	}
}

func TestVersionFloorRaisesSmallSymbols(t *testing.T) {
	dir := t.TempDir()
	low := New(dir, "/qr", nil)
	high := New(dir, "/qr", nil)
	high.Version = 6

	a, err := low.Forge("http://x/y.png", "low")
	if err != nil {
		t.Fatalf("forge low: %v", err)
	}
	b, err := high.Forge("http://x/y.png", "high")
	if err != nil {
		t.Fatalf("forge high: %v", err)
	}
	if b.Version < 6 {
		t.Fatalf("expected version >= 6, got %d", b.Version)
	}
	imgA, imgB := decodeFile(t, a.Path), decodeFile(t, b.Path)
	if imgB.Bounds().Dx() <= imgA.Bounds().Dx() {
		t.Fatalf("higher floor should produce a larger symbol: %v vs %v", imgA.Bounds(), imgB.Bounds())
	}
	if got := decodeQR(t, imgB); got != "http://x/y.png" {
		t.Fatalf("round trip mismatch: %q", got)
	}
}

func TestRenderStreamsPNG(t *testing.T) {
	var buf bytes.Buffer
	version, err := New(t.TempDir(), "/qr", nil).Render(&buf, "https://example.com/share")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if version < 1 {
		t.Fatalf("unexpected version %d", version)
	}
	img, format, err := image.Decode(&buf)
	if err != nil || format != "png" {
		t.Fatalf("expected png, got %q: %v", format, err)
	}
	if got := decodeQR(t, img); got != "https://example.com/share" {
		t.Fatalf("round trip mismatch: %q", got)
	}
}

func TestForgeEmptyText(t *testing.T) {
	if _, err := New(t.TempDir(), "/qr", nil).Forge("", "id"); err == nil {
		t.Fatal("expected error for empty content")
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "example.com/a", want: "https://example.com/a"},
		{in: "  http://x/y.png ", want: "http://x/y.png"},
		{in: "", wantErr: true},
		{in: "ftp://example.com", wantErr: true},
		{in: "https://" + strings.Repeat("a", maxURLLength), wantErr: true},
	}
	for _, tt := range tests {
		got, err := NormalizeURL(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("NormalizeURL(%q) expected error, got %q", tt.in, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

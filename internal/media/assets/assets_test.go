package assets

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/RaduRS/automan-sub000/internal/testsupport"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestLocate(t *testing.T) {
	f := NewFetcher(time.Second, "/base")
	tests := []struct {
		ref    string
		want   string
		remote bool
		err    bool
	}{
		{"https://cdn.example.com/a.png", "https://cdn.example.com/a.png", true, false},
		{"file:///tmp/a.png", "/tmp/a.png", false, false},
		{"img/a.png", "/base/img/a.png", false, false},
		{"/abs/a.png", "/abs/a.png", false, false},
		{"ftp://host/a.png", "", false, true},
		{"  ", "", false, true},
	}
	for _, tt := range tests {
		got, remote, err := f.Locate(tt.ref)
		if (err != nil) != tt.err {
			t.Fatalf("Locate(%q) err = %v, want err %v", tt.ref, err, tt.err)
		}
		if err == nil && (got != tt.want || remote != tt.remote) {
			t.Fatalf("Locate(%q) = (%q, %v), want (%q, %v)", tt.ref, got, remote, tt.want, tt.remote)
		}
	}
	if _, _, err := f.Locate(""); !errors.Is(err, ErrEmptyReference) {
		t.Fatalf("expected ErrEmptyReference, got %v", err)
	}
}

func TestImageFromHTTP(t *testing.T) {
	body := pngBytes(t, 4, 6)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	f := NewFetcher(time.Second, "").WithClient(srv.Client())
	img, err := f.Image(context.Background(), srv.URL+"/scene.png")
	if err != nil {
		t.Fatalf("Image: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 6 {
		t.Fatalf("unexpected bounds %v", b)
	}
	if _, err := f.Image(context.Background(), srv.URL+"/missing.png"); err == nil {
		t.Fatal("expected error for 404")
	}
}

func TestImageFromRelativePath(t *testing.T) {
	dir := t.TempDir()
	testsupport.WritePNG(t, filepath.Join(dir, "images", "one.png"), 3, 3, color.White)

	f := NewFetcher(time.Second, dir)
	img, err := f.Image(context.Background(), "images/one.png")
	if err != nil {
		t.Fatalf("Image: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 3 {
		t.Fatalf("unexpected bounds %v", b)
	}
}

func TestDecodeImageRejectsGarbage(t *testing.T) {
	if _, _, err := DecodeImage([]byte("<html>rate limited</html>")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestImageRejectsNonImageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.png")
	testsupport.WriteFile(t, path, 32)

	f := NewFetcher(time.Second, "")
	if _, err := f.Image(context.Background(), path); err == nil {
		t.Fatal("expected decode error for non-image file")
	}
}

func TestFetchMissingFile(t *testing.T) {
	f := NewFetcher(time.Second, t.TempDir())
	if _, err := f.Fetch(context.Background(), "nope.png"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

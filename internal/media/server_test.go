package media

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func writeSource(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, []byte("0123456789"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestServe_Full(t *testing.T) {
	path := writeSource(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	if err := NewServer(nil).Serve(rec, req, path); err != nil {
		t.Fatalf("Serve: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != "0123456789" {
		t.Errorf("body = %q", rec.Body.String())
	}
	if rec.Header().Get("Content-Type") != "video/mp4" {
		t.Errorf("content type = %q", rec.Header().Get("Content-Type"))
	}
	if rec.Header().Get("Accept-Ranges") != "bytes" {
		t.Error("missing Accept-Ranges")
	}
}

func TestServe_Partial(t *testing.T) {
	path := writeSource(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Range", "bytes=2-5")
	rec := httptest.NewRecorder()

	if err := NewServer(nil).Serve(rec, req, path); err != nil {
		t.Fatalf("Serve: %v", err)
	}
	if rec.Code != http.StatusPartialContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != "2345" {
		t.Errorf("body = %q", rec.Body.String())
	}
	if got := rec.Header().Get("Content-Range"); got != "bytes 2-5/10" {
		t.Errorf("Content-Range = %q", got)
	}
	if got := rec.Header().Get("Content-Length"); got != "4" {
		t.Errorf("Content-Length = %q", got)
	}
}

func TestServe_Head(t *testing.T) {
	path := writeSource(t)
	req := httptest.NewRequest(http.MethodHead, "/", nil)
	rec := httptest.NewRecorder()

	if err := NewServer(nil).Serve(rec, req, path); err != nil {
		t.Fatalf("Serve: %v", err)
	}
	if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Fatalf("status = %d body = %d bytes", rec.Code, rec.Body.Len())
	}
	if got := rec.Header().Get("Content-Length"); got != "10" {
		t.Errorf("Content-Length = %q", got)
	}
}

func TestServe_Unsatisfiable(t *testing.T) {
	path := writeSource(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Range", "bytes=50-")
	rec := httptest.NewRecorder()

	if err := NewServer(nil).Serve(rec, req, path); err != nil {
		t.Fatalf("Serve: %v", err)
	}
	if rec.Code != http.StatusRequestedRangeNotSatisfiable {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Range"); got != "bytes */10" {
		t.Errorf("Content-Range = %q", got)
	}
}

func TestServe_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	err := NewServer(nil).Serve(httptest.NewRecorder(), req, filepath.Join(t.TempDir(), "gone.mp4"))
	if !errors.Is(err, ErrSourceMissing) {
		t.Fatalf("err = %v, want ErrSourceMissing", err)
	}

	err = NewServer(nil).Serve(httptest.NewRecorder(), req, t.TempDir())
	if !errors.Is(err, ErrSourceMissing) {
		t.Fatalf("directory err = %v, want ErrSourceMissing", err)
	}
}

func TestLocalPath(t *testing.T) {
	tests := []struct {
		src     string
		want    string
		wantErr bool
	}{
		{src: "/media/a.mp4", want: "/media/a.mp4"},
		{src: "file:///media/b.mov", want: "/media/b.mov"},
		{src: "/media/../media/c.wav", want: "/media/c.wav"},
		{src: "https://cdn.example.com/a.mp4", wantErr: true},
		{src: "relative/a.mp4", wantErr: true},
		{src: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := LocalPath(tt.src)
		if tt.wantErr {
			if !errors.Is(err, ErrNotLocal) {
				t.Errorf("LocalPath(%q) err = %v, want ErrNotLocal", tt.src, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("LocalPath(%q) = %q, %v; want %q", tt.src, got, err, tt.want)
		}
	}
}

func TestContentType(t *testing.T) {
	tests := map[string]string{
		"/m/a.MOV":  "video/quicktime",
		"/m/b.wav":  "audio/wav",
		"/m/c.png":  "image/png",
		"/m/d.blob": "application/octet-stream",
	}
	for path, want := range tests {
		if got := ContentType(path); got != want {
			t.Errorf("ContentType(%q) = %q, want %q", path, got, want)
		}
	}
}

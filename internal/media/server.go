// Package media streams clip source files to local preview players with
// byte-range support.
package media

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	ErrSourceMissing = errors.New("source file not found")
	ErrNotLocal      = errors.New("source is not a local file")
)

// Builtin mime tables only cover web types; media extensions are listed here
// so previews do not depend on the host's mime.types.
var mediaTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
}

// ContentType picks a Content-Type from the file extension.
func ContentType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := mediaTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}

// Server serves clip sources from the local filesystem.
type Server struct {
	logger *slog.Logger
}

func NewServer(logger *slog.Logger) *Server {
	return &Server{logger: logger}
}

// LocalPath maps a clip src to a filesystem path. Plain paths and file://
// URLs are accepted; other schemes are not.
func LocalPath(src string) (string, error) {
	if rest, ok := strings.CutPrefix(src, "file://"); ok {
		src = rest
	} else if strings.Contains(src, "://") {
		return "", ErrNotLocal
	}
	if src == "" || !filepath.IsAbs(src) {
		return "", ErrNotLocal
	}
	return filepath.Clean(src), nil
}

// Serve writes the file at path, honoring Range and HEAD. An unsatisfiable
// range is answered with 416 here; any returned error means nothing has been
// written yet.
func (s *Server) Serve(w http.ResponseWriter, r *http.Request, path string) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrSourceMissing
		}
		return fmt.Errorf("open source: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if stat.IsDir() {
		return ErrSourceMissing
	}

	size := stat.Size()
	contentType := ContentType(path)

	h := w.Header()
	h.Set("Accept-Ranges", "bytes")
	h.Set("Content-Type", contentType)

	br, err := ParseByteRange(r.Header.Get("Range"), size)
	switch {
	case errors.Is(err, ErrUnsatisfiable):
		h.Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
		return nil
	case errors.Is(err, ErrInvalidRange):
		// Malformed ranges are ignored and the whole file is sent.
		br = nil
	}

	status := http.StatusOK
	offset, length := int64(0), size
	if br != nil {
		status = http.StatusPartialContent
		offset, length = br.Start, br.Length()
		h.Set("Content-Range", br.ContentRange(size))
	}
	if offset > 0 {
		if _, err := file.Seek(offset, io.SeekStart); err != nil {
			return fmt.Errorf("seek source: %w", err)
		}
	}
	h.Set("Content-Length", strconv.FormatInt(length, 10))
	w.WriteHeader(status)

	if r.Method == http.MethodHead {
		return nil
	}
	if _, err := io.CopyN(w, file, length); err != nil && s.logger != nil {
		s.logger.Debug("source stream ended early", "error", err)
	}
	return nil
}

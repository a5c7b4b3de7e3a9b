package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// DefaultTitle names exports whose project title sanitizes to nothing.
const DefaultTitle = "genesis_export"

// SanitizeName keeps letters, digits and a few punctuation marks, replaces
// everything else with '_', drops control characters and truncates to
// maxLen runes (no limit when maxLen <= 0).
func SanitizeName(s string, maxLen int) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsControl(r) {
			continue
		}
		if isAllowedNameRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}

	cleaned := strings.TrimSpace(b.String())
	if maxLen > 0 {
		runes := []rune(cleaned)
		if len(runes) > maxLen {
			cleaned = strings.TrimSpace(string(runes[:maxLen]))
		}
	}
	return cleaned
}

func isAllowedNameRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	switch r {
	case ' ', '-', '_', '.', ',', '(', ')':
		return true
	default:
		return false
	}
}

// ValidateOutputDir accepts only clean, existing directories with no ".."
// segments.
func ValidateOutputDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return errors.New("output_dir is required")
	}

	for _, part := range strings.Split(filepath.ToSlash(dir), "/") {
		if part == ".." {
			return errors.New("output_dir cannot contain path traversal")
		}
	}

	if filepath.Clean(dir) != dir {
		return errors.New("output_dir must be clean path")
	}

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.New("output_dir does not exist")
		}
		return fmt.Errorf("invalid output_dir: %w", err)
	}
	if !info.IsDir() {
		return errors.New("output_dir is not a directory")
	}

	return nil
}

// WriteEDL writes content to "<dir>/<title>.edl" and returns the path. The
// title is sanitized; dir must pass ValidateOutputDir.
func WriteEDL(dir, title, content string) (string, error) {
	if err := ValidateOutputDir(dir); err != nil {
		return "", err
	}
	name := SanitizeName(title, 120)
	if name == "" {
		name = DefaultTitle
	}
	path := filepath.Join(dir, name+".edl")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write export file: %w", err)
	}
	return path, nil
}

// Package writer persists composed artifacts with a temp-file-then-rename
// discipline: a failed render never leaves a truncated file behind.
package writer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mapposter/mapposter/internal/compose"
	"github.com/mapposter/mapposter/internal/core/model"
)

// Format is an output file format.
type Format string

const (
	PNG Format = "png"
	PDF Format = "pdf"
	EPS Format = "eps"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case PNG, PDF, EPS:
		return Format(s), nil
	case "":
		return PDF, nil
	}
	return "", fmt.Errorf("unsupported format %q (want png, pdf or eps)", s)
}

// PNGFilename follows {city}_{theme}_{timestamp}.png. The timestamp keeps
// concurrent requests from colliding in the shared output directory.
func PNGFilename(city, theme string, now time.Time) string {
	return fmt.Sprintf("%s_%s_%s.png", model.Slug(city), theme, now.Format("20060102_150405"))
}

// PageFilename follows {city}_{theme}_{size}_{orient4}[_printready].{ext};
// size and orientation make the name unique per variant.
func PageFilename(city, theme string, spec compose.PageSpec, format Format) string {
	orient := string(spec.Orientation)
	if len(orient) > 4 {
		orient = orient[:4]
	}
	suffix := ""
	if spec.PrintReady {
		suffix = "_printready"
	}
	return fmt.Sprintf("%s_%s_%s_%s%s.%s",
		model.Slug(city), theme, strings.ToLower(string(spec.Size)), orient, suffix, format)
}

// Write stores data under dir/filename atomically and returns the final path.
// Failures carry the path so the caller can report which location was not
// writable.
func Write(data []byte, dir, filename string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir %q: %w", dir, err)
	}
	final := filepath.Join(dir, filename)

	tmp, err := os.CreateTemp(dir, "."+filename+".tmp*")
	if err != nil {
		return "", fmt.Errorf("create temp file in %q: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer func() {
		// left behind only on failure
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write %q: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %q: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, final); err != nil {
		return "", fmt.Errorf("rename to %q: %w", final, err)
	}
	return final, nil
}

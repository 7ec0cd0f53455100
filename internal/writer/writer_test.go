package writer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mapposter/mapposter/internal/compose"
)

func TestParseFormat(t *testing.T) {
	cases := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"png", PNG, true},
		{"pdf", PDF, true},
		{"eps", EPS, true},
		{"", PDF, true},
		{"svg", "", false},
	}
	for _, tc := range cases {
		got, err := ParseFormat(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Errorf("ParseFormat(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Errorf("ParseFormat(%q) succeeded, want error", tc.in)
		}
	}
}

func TestPNGFilename(t *testing.T) {
	now := time.Date(2026, 8, 26, 14, 30, 5, 0, time.UTC)
	got := PNGFilename("New York", "noir", now)
	if got != "new_york_noir_20260826_143005.png" {
		t.Errorf("PNGFilename = %q", got)
	}
}

func TestPageFilename(t *testing.T) {
	cases := []struct {
		spec   compose.PageSpec
		format Format
		want   string
	}{
		{compose.PageSpec{Size: compose.A4, Orientation: compose.Portrait}, PDF,
			"frankfurt_noir_a4_port.pdf"},
		{compose.PageSpec{Size: compose.A3, Orientation: compose.Landscape, PrintReady: true}, PDF,
			"frankfurt_noir_a3_land_printready.pdf"},
		{compose.PageSpec{Size: compose.A5, Orientation: compose.Square}, EPS,
			"frankfurt_noir_a5_squa.eps"},
	}
	for _, tc := range cases {
		if got := PageFilename("Frankfurt", "noir", tc.spec, tc.format); got != tc.want {
			t.Errorf("PageFilename = %q, want %q", got, tc.want)
		}
	}
}

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	path, err := Write([]byte("payload"), dir, "poster.png")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if path != filepath.Join(dir, "poster.png") {
		t.Errorf("path = %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("content = %q", data)
	}

	// no temp files left behind
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp") {
			t.Errorf("stray temp file %q", e.Name())
		}
	}
}

func TestWriteReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	if _, err := Write([]byte("old"), dir, "poster.png"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	path, err := Write([]byte("new"), dir, "poster.png")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "new" {
		t.Errorf("content = %q, want replacement", data)
	}
}

func TestWriteFailsOnUnwritableDir(t *testing.T) {
	dir := t.TempDir()
	blocked := filepath.Join(dir, "blocked")
	if err := os.MkdirAll(blocked, 0o500); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(blocked, 0o700) })

	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	if _, err := Write([]byte("x"), blocked, "poster.png"); err == nil {
		t.Error("expected error writing to read-only directory")
	}
}

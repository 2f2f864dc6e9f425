package metadata

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain value", "Canon EOS R5", "Canon EOS R5"},
		{"surrounding quotes", `"NIKON D750"`, "NIKON D750"},
		{"path separator", "AC/DC", "AC_DC"},
		{"backslash", `a\b`, "a_b"},
		{"reserved characters", "a:b*c?d<e>f|g", "a_b_c_d_e_f_g"},
		{"nul padding", "SONY\x00\x00", "SONY"},
		{"surrounding whitespace", "  Pixel 8  ", "Pixel 8"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNoneProvider(t *testing.T) {
	p := None{}
	if p.Name() != "none" {
		t.Errorf("Name = %q", p.Name())
	}
	if bag := p.Extract("/tmp/whatever.pdf"); bag != nil {
		t.Errorf("expected nil bag, got %v", bag)
	}
}

func TestEXIFProviderSilence(t *testing.T) {
	dir, err := os.MkdirTemp("", "tidyfs-exif-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	p := EXIF{}

	t.Run("UnsupportedExtension", func(t *testing.T) {
		if bag := p.Extract(filepath.Join(dir, "file.png")); bag != nil {
			t.Errorf("png is not an EXIF format, got %v", bag)
		}
	})

	t.Run("MissingFile", func(t *testing.T) {
		if bag := p.Extract(filepath.Join(dir, "missing.jpg")); bag != nil {
			t.Errorf("expected nil bag for missing file, got %v", bag)
		}
	})

	t.Run("NoEXIFSegment", func(t *testing.T) {
		path := filepath.Join(dir, "plain.jpg")
		if err := os.WriteFile(path, []byte("not a real jpeg"), 0644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		if bag := p.Extract(path); bag != nil {
			t.Errorf("expected nil bag for undecodable file, got %v", bag)
		}
	})
}

func TestAudioProviderSilence(t *testing.T) {
	dir, err := os.MkdirTemp("", "tidyfs-audio-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	p := AudioTags{}

	t.Run("UnsupportedExtension", func(t *testing.T) {
		if bag := p.Extract(filepath.Join(dir, "file.txt")); bag != nil {
			t.Errorf("txt is not an audio format, got %v", bag)
		}
	})

	t.Run("NoTagBlock", func(t *testing.T) {
		path := filepath.Join(dir, "silence.mp3")
		if err := os.WriteFile(path, []byte{0x00, 0x01, 0x02, 0x03}, 0644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		if bag := p.Extract(path); bag != nil {
			t.Errorf("expected nil bag for untagged file, got %v", bag)
		}
	})
}

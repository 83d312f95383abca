package atlasdebug

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
)

type Format int

const (
	FormatPNG Format = iota
	FormatWebP
)

func (f Format) String() string {
	if f == FormatWebP {
		return "webp"
	}
	return "png"
}

// FormatForPath picks the format from the file extension, PNG by default.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".webp") {
		return FormatWebP
	}
	return FormatPNG
}

func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case FormatWebP:
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("webp encode: %w", err)
		}
	default:
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("png encode: %w", err)
		}
	}
	return nil
}

// WriteFile encodes img to path, creating parent directories.
func WriteFile(path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, img, FormatForPath(path)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

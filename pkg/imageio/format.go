package imageio

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// ErrUnsupportedFormat is returned for output formats that cannot be written
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Format names an output encoding
type Format string

const (
	FormatPPM  Format = "ppm"
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

// JPEGQuality is the quality used for JPEG output
const JPEGQuality = 95

// ParseFormat accepts a format name or file extension, with or without the dot
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "ppm":
		return FormatPPM, nil
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// FormatFromFilename picks the format from a file extension
func FormatFromFilename(filename string) (Format, error) {
	return ParseFormat(filepath.Ext(filename))
}

// ContentType returns the MIME type for the format
func (f Format) ContentType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatJPEG:
		return "image/jpeg"
	default:
		return "image/x-portable-pixmap"
	}
}

// Extension returns the file extension for the format, including the dot
func (f Format) Extension() string {
	if f == FormatJPEG {
		return ".jpg"
	}
	return "." + string(f)
}

// Encode writes img to w in the given format
func Encode(w io.Writer, img image.Image, format Format) error {
	switch format {
	case FormatPPM:
		return WritePPM(w, img)
	case FormatPNG:
		return imaging.Encode(w, img, imaging.PNG)
	case FormatJPEG:
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality))
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Save writes img to filename, choosing the encoding from the extension
func Save(filename string, img image.Image) error {
	format, err := FormatFromFilename(filename)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if format != FormatPPM {
		if err := imaging.Save(img, filename, imaging.JPEGQuality(JPEGQuality)); err != nil {
			return fmt.Errorf("failed to save %s: %w", filename, err)
		}
		return nil
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}
	if err := WritePPM(file, img); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

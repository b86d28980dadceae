package imageio

import (
	"image"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
)

// Thumbnail scales img to the given width, keeping its aspect ratio
func Thumbnail(img image.Image, width uint) image.Image {
	return resize.Resize(width, 0, img, resize.Bilinear)
}

// ThumbnailFilename derives "<name>_thumb<ext>" from an output path
func ThumbnailFilename(filename string) string {
	ext := filepath.Ext(filename)
	return strings.TrimSuffix(filename, ext) + "_thumb" + ext
}

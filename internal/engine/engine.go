// Package engine performs the pixel work behind the editing tools: decoding a
// source image, transforming it and encoding the result to a new file.
package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Common errors for engine operations.
var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrOutOfBounds       = errors.New("extract area is outside the image bounds")
	ErrInvalidParameter  = errors.New("invalid parameter")
	ErrSourceTooLarge    = errors.New("source image too large")
)

// Engine transforms images on disk. Every method reads Source and writes a
// complete file at Destination, or leaves no file at Destination.
type Engine interface {
	// Brighten multiplies the luminance of every pixel by Level.
	Brighten(ctx context.Context, req BrightenRequest) error

	// Crop extracts the requested rectangle without rescaling.
	Crop(ctx context.Context, req CropRequest) error

	// Compress re-encodes the source in Format at Quality.
	Compress(ctx context.Context, req CompressRequest) error
}

// BrightenRequest describes a brightness adjustment.
type BrightenRequest struct {
	Source      string
	Destination string

	// Level is the luminance multiplier; 1 leaves the image unchanged.
	Level float64
}

// CropRequest describes a crop of the half-open rectangle
// [Left, Left+Width) x [Top, Top+Height).
type CropRequest struct {
	Source      string
	Destination string

	Left   int
	Top    int
	Width  int
	Height int
}

// CompressRequest describes a lossy re-encode.
type CompressRequest struct {
	Source      string
	Destination string

	// Format selects the encoder.
	Format Format

	// Quality is in [1, 100].
	Quality int
}

// Format identifies an image encoding.
type Format int

const (
	FormatUnknown Format = iota
	FormatJPEG
	FormatPNG
	FormatWebP
	FormatGIF
	FormatTIFF
	FormatBMP
)

// String returns the lowercase format name.
func (f Format) String() string {
	switch f {
	case FormatJPEG:
		return "jpeg"
	case FormatPNG:
		return "png"
	case FormatWebP:
		return "webp"
	case FormatGIF:
		return "gif"
	case FormatTIFF:
		return "tiff"
	case FormatBMP:
		return "bmp"
	default:
		return "unknown"
	}
}

var formatsByExt = map[string]Format{
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".png":  FormatPNG,
	".webp": FormatWebP,
	".gif":  FormatGIF,
	".tif":  FormatTIFF,
	".tiff": FormatTIFF,
	".bmp":  FormatBMP,
}

// FormatFromExtension returns the format for a file extension such as
// ".JPG". The comparison is case-insensitive.
func FormatFromExtension(ext string) (Format, error) {
	f, ok := formatsByExt[strings.ToLower(ext)]
	if !ok {
		return FormatUnknown, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return f, nil
}

// FormatFromPath returns the format implied by path's extension.
func FormatFromPath(path string) (Format, error) {
	return FormatFromExtension(filepath.Ext(path))
}

// CompressibleFormat returns the encoder for a compression request. Only
// JPEG, PNG and WebP can be compressed.
func CompressibleFormat(ext string) (Format, error) {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return FormatJPEG, nil
	case ".png":
		return FormatPNG, nil
	case ".webp":
		return FormatWebP, nil
	default:
		return FormatUnknown, fmt.Errorf("%w: %q (only jpeg, png and webp can be compressed)", ErrUnsupportedFormat, ext)
	}
}

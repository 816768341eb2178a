package editor

import (
	"math"
	"path/filepath"
	"strconv"
	"strings"

	apperrors "github.com/common-creation/image-editor-mcp/internal/errors"
)

// Parameter domains.
const (
	MinBrightness = 0.1
	MaxBrightness = 10.0
	MinQuality    = 1
	MaxQuality    = 100
)

// BrightnessParams configures AdjustBrightness.
type BrightnessParams struct {
	// Level multiplies luminance; 1 leaves the image unchanged.
	Level float64
}

// Validate checks the level is finite and within [MinBrightness, MaxBrightness].
func (p BrightnessParams) Validate() error {
	if math.IsNaN(p.Level) || math.IsInf(p.Level, 0) || p.Level < MinBrightness || p.Level > MaxBrightness {
		return apperrors.Validation("level must be between %g and %g, got %v", MinBrightness, MaxBrightness, p.Level).
			WithDetail("level", p.Level)
	}
	return nil
}

// suffix renders the level in its shortest round-trip form: 1.5 -> "-brightened-1.5".
func (p BrightnessParams) suffix() string {
	return "-brightened-" + strconv.FormatFloat(p.Level, 'f', -1, 64)
}

// CropParams configures CropImage. The rectangle is
// [Left, Left+Width) x [Top, Top+Height) in source pixels.
type CropParams struct {
	Left   int
	Top    int
	Width  int
	Height int
}

// Validate checks offsets are non-negative and the size is at least one pixel.
func (p CropParams) Validate() error {
	if p.Left < 0 || p.Top < 0 {
		return apperrors.Validation("left and top must be non-negative, got left=%d top=%d", p.Left, p.Top)
	}
	if p.Width < 1 || p.Height < 1 {
		return apperrors.Validation("width and height must be at least 1, got width=%d height=%d", p.Width, p.Height)
	}
	return nil
}

// CompressParams configures CompressImage.
type CompressParams struct {
	Quality int
}

// Validate checks the quality is within [MinQuality, MaxQuality].
func (p CompressParams) Validate() error {
	if p.Quality < MinQuality || p.Quality > MaxQuality {
		return apperrors.Validation("quality must be between %d and %d, got %d", MinQuality, MaxQuality, p.Quality).
			WithDetail("quality", p.Quality)
	}
	return nil
}

func (p CompressParams) suffix() string {
	return "-compressed-" + strconv.Itoa(p.Quality)
}

const cropSuffix = "-cropped"

// DeriveOutputPath places the output next to the source, inserting suffix
// between the base name and the extension. The extension keeps its case.
func DeriveOutputPath(resolvedPath, suffix string) string {
	ext := extension(resolvedPath)
	base := strings.TrimSuffix(filepath.Base(resolvedPath), ext)
	return filepath.Join(filepath.Dir(resolvedPath), base+suffix+ext)
}

// extension is filepath.Ext except that a leading dot does not start an
// extension: ".jpg" has none.
func extension(path string) string {
	ext := filepath.Ext(path)
	if ext == filepath.Base(path) {
		return ""
	}
	return ext
}

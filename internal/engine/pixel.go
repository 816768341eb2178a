package engine

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/webp"
)

const (
	defaultQuality        = 90
	defaultMaxSourceBytes = 100 * 1024 * 1024 // 100MB
)

// Options configures the pixel engine.
type Options struct {
	// DefaultQuality is the encode quality used for brightness and crop
	// outputs in lossy formats. 0 selects 90.
	DefaultQuality int

	// MaxSourceBytes rejects larger source files. 0 selects 100MB.
	MaxSourceBytes int64

	// AutoOrient applies the EXIF orientation tag when decoding.
	AutoOrient bool
}

// PixelEngine is the default Engine. It decodes and encodes with
// disintegration/imaging, using gen2brain/webp for WebP.
type PixelEngine struct {
	opts Options
}

// New creates a PixelEngine.
func New(opts Options) *PixelEngine {
	if opts.DefaultQuality <= 0 || opts.DefaultQuality > 100 {
		opts.DefaultQuality = defaultQuality
	}
	if opts.MaxSourceBytes <= 0 {
		opts.MaxSourceBytes = defaultMaxSourceBytes
	}
	return &PixelEngine{opts: opts}
}

// Brighten implements Engine.
func (e *PixelEngine) Brighten(_ context.Context, req BrightenRequest) error {
	if req.Level <= 0 || math.IsNaN(req.Level) || math.IsInf(req.Level, 0) {
		return fmt.Errorf("%w: brightness level %v", ErrInvalidParameter, req.Level)
	}

	format, err := FormatFromPath(req.Destination)
	if err != nil {
		return err
	}

	img, err := e.decode(req.Source)
	if err != nil {
		return err
	}

	level := req.Level
	out := imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{
			R: scaleChannel(c.R, level),
			G: scaleChannel(c.G, level),
			B: scaleChannel(c.B, level),
			A: c.A,
		}
	})

	return e.save(req.Destination, out, format, e.opts.DefaultQuality)
}

// Crop implements Engine.
func (e *PixelEngine) Crop(_ context.Context, req CropRequest) error {
	if req.Left < 0 || req.Top < 0 || req.Width < 1 || req.Height < 1 {
		return fmt.Errorf("%w: crop %dx%d at (%d,%d)", ErrInvalidParameter, req.Width, req.Height, req.Left, req.Top)
	}

	format, err := FormatFromPath(req.Destination)
	if err != nil {
		return err
	}

	img, err := e.decode(req.Source)
	if err != nil {
		return err
	}

	bounds := img.Bounds()
	if req.Left > math.MaxInt32-req.Width || req.Top > math.MaxInt32-req.Height {
		return fmt.Errorf("%w: crop %dx%d at (%d,%d)", ErrOutOfBounds, req.Width, req.Height, req.Left, req.Top)
	}
	rect := image.Rect(req.Left, req.Top, req.Left+req.Width, req.Top+req.Height).Add(bounds.Min)
	if !rect.In(bounds) {
		return fmt.Errorf("%w: crop %dx%d at (%d,%d) on a %dx%d image",
			ErrOutOfBounds, req.Width, req.Height, req.Left, req.Top, bounds.Dx(), bounds.Dy())
	}

	out := imaging.Crop(img, rect)
	return e.save(req.Destination, out, format, e.opts.DefaultQuality)
}

// Compress implements Engine.
func (e *PixelEngine) Compress(_ context.Context, req CompressRequest) error {
	if req.Quality < 1 || req.Quality > 100 {
		return fmt.Errorf("%w: quality %d", ErrInvalidParameter, req.Quality)
	}
	switch req.Format {
	case FormatJPEG, FormatPNG, FormatWebP:
	default:
		return fmt.Errorf("%w: cannot compress to %s", ErrUnsupportedFormat, req.Format)
	}

	img, err := e.decode(req.Source)
	if err != nil {
		return err
	}

	return e.save(req.Destination, img, req.Format, req.Quality)
}

// decode reads the source image, honouring the size limit.
func (e *PixelEngine) decode(path string) (image.Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat source: %w", err)
	}
	if info.Size() > e.opts.MaxSourceBytes {
		return nil, fmt.Errorf("%w: %d bytes (max: %d bytes)", ErrSourceTooLarge, info.Size(), e.opts.MaxSourceBytes)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source: %w", err)
	}
	defer file.Close()

	if format, _ := FormatFromPath(path); format == FormatWebP {
		img, err := webp.Decode(file)
		if err != nil {
			return nil, fmt.Errorf("failed to decode webp image: %w", err)
		}
		return img, nil
	}

	img, err := imaging.Decode(file, imaging.AutoOrientation(e.opts.AutoOrient))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// save encodes img into path through an atomic write.
func (e *PixelEngine) save(path string, img image.Image, format Format, quality int) error {
	return writeAtomic(path, func(w io.Writer) error {
		return encode(w, img, format, quality)
	})
}

func encode(w io.Writer, img image.Image, format Format, quality int) error {
	switch format {
	case FormatJPEG:
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality))
	case FormatPNG:
		return imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(pngCompressionLevel(quality)))
	case FormatWebP:
		return webp.Encode(w, img, webp.Options{Quality: quality})
	case FormatGIF:
		return imaging.Encode(w, img, imaging.GIF)
	case FormatTIFF:
		return imaging.Encode(w, img, imaging.TIFF)
	case FormatBMP:
		return imaging.Encode(w, img, imaging.BMP)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// pngCompressionLevel maps a 1-100 quality onto zlib effort. PNG is
// lossless, so a lower quality buys a smaller file through more effort.
func pngCompressionLevel(quality int) png.CompressionLevel {
	switch {
	case quality <= 50:
		return png.BestCompression
	case quality <= 90:
		return png.DefaultCompression
	default:
		return png.BestSpeed
	}
}

func scaleChannel(v uint8, level float64) uint8 {
	scaled := math.Round(float64(v) * level)
	if scaled > 255 {
		return 255
	}
	if scaled < 0 {
		return 0
	}
	return uint8(scaled)
}

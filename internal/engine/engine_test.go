package engine

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// solidImage returns a w x h image filled with c.
func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// noisyImage returns an image with enough detail for lossy encoders to
// produce quality-dependent sizes.
func noisyImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	seed := uint32(12345)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			seed = seed*1664525 + 1013904223
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(seed >> 24),
				G: uint8(x * 255 / w),
				B: uint8(y * 255 / h),
				A: 255,
			})
		}
	}
	return img
}

func writeImage(t *testing.T, path string, img image.Image) {
	t.Helper()
	require.NoError(t, imaging.Save(img, path))
}

func writeWebP(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, webp.Encode(f, img, webp.Options{Quality: 90}))
}

func fileSize(t *testing.T, path string) int64 {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	return info.Size()
}

// assertOnlyFiles checks that dir holds exactly the named entries, so no
// temp file or partial output was left behind.
func assertOnlyFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var got []string
	for _, e := range entries {
		got = append(got, e.Name())
	}
	assert.ElementsMatch(t, names, got)
}

func TestFormatFromExtension(t *testing.T) {
	tests := []struct {
		ext  string
		want Format
	}{
		{".jpg", FormatJPEG},
		{".JPEG", FormatJPEG},
		{".png", FormatPNG},
		{".WebP", FormatWebP},
		{".gif", FormatGIF},
		{".tif", FormatTIFF},
		{".bmp", FormatBMP},
	}
	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			got, err := FormatFromExtension(tt.ext)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := FormatFromExtension(".svg")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	_, err = FormatFromExtension("")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestCompressibleFormat(t *testing.T) {
	for ext, want := range map[string]Format{
		".jpg":  FormatJPEG,
		".JPG":  FormatJPEG,
		".jpeg": FormatJPEG,
		".png":  FormatPNG,
		".PNG":  FormatPNG,
		".webp": FormatWebP,
	} {
		got, err := CompressibleFormat(ext)
		require.NoError(t, err, ext)
		assert.Equal(t, want, got, ext)
	}

	for _, ext := range []string{".gif", ".tiff", ".bmp", ".txt", ""} {
		_, err := CompressibleFormat(ext)
		assert.True(t, errors.Is(err, ErrUnsupportedFormat), ext)
	}
}

func TestFormatString(t *testing.T) {
	assert.Equal(t, "jpeg", FormatJPEG.String())
	assert.Equal(t, "webp", FormatWebP.String())
	assert.Equal(t, "unknown", FormatUnknown.String())
}

func TestBrighten(t *testing.T) {
	ctx := context.Background()
	eng := New(Options{})

	tests := []struct {
		name  string
		level float64
		in    uint8
		want  uint8
	}{
		{"unchanged", 1.0, 100, 100},
		{"brighter", 1.5, 100, 150},
		{"darker", 0.5, 100, 50},
		{"clamped", 10, 100, 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			src := filepath.Join(dir, "photo.png")
			dst := filepath.Join(dir, "photo-out.png")
			writeImage(t, src, solidImage(8, 8, color.NRGBA{R: tt.in, G: tt.in, B: tt.in, A: 200}))

			err := eng.Brighten(ctx, BrightenRequest{Source: src, Destination: dst, Level: tt.level})
			require.NoError(t, err)

			out, err := imaging.Open(dst)
			require.NoError(t, err)
			c := color.NRGBAModel.Convert(out.At(3, 3)).(color.NRGBA)
			assert.Equal(t, tt.want, c.R)
			assert.Equal(t, tt.want, c.G)
			assert.Equal(t, tt.want, c.B)
			assert.Equal(t, uint8(200), c.A)
		})
	}
}

func TestBrightenKeepsSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "photo.jpg")
	writeImage(t, src, noisyImage(32, 32))
	before, err := os.ReadFile(src)
	require.NoError(t, err)

	dst := filepath.Join(dir, "photo-brightened-1.5.jpg")
	require.NoError(t, New(Options{}).Brighten(context.Background(), BrightenRequest{Source: src, Destination: dst, Level: 1.5}))

	after, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assertOnlyFiles(t, dir, "photo.jpg", "photo-brightened-1.5.jpg")
}

func TestBrightenInvalidLevel(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.png")
	writeImage(t, src, solidImage(4, 4, color.NRGBA{A: 255}))

	err := New(Options{}).Brighten(context.Background(), BrightenRequest{Source: src, Destination: filepath.Join(dir, "b.png"), Level: 0})
	assert.True(t, errors.Is(err, ErrInvalidParameter))
	assertOnlyFiles(t, dir, "a.png")
}

func TestCrop(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "family.png")
	img := solidImage(50, 40, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	img.SetNRGBA(10, 5, color.NRGBA{R: 255, A: 255})
	writeImage(t, src, img)

	dst := filepath.Join(dir, "family-cropped.png")
	err := New(Options{}).Crop(context.Background(), CropRequest{
		Source: src, Destination: dst, Left: 10, Top: 5, Width: 20, Height: 30,
	})
	require.NoError(t, err)

	out, err := imaging.Open(dst)
	require.NoError(t, err)
	assert.Equal(t, 20, out.Bounds().Dx())
	assert.Equal(t, 30, out.Bounds().Dy())

	corner := color.NRGBAModel.Convert(out.At(out.Bounds().Min.X, out.Bounds().Min.Y)).(color.NRGBA)
	assert.Equal(t, uint8(255), corner.R)
}

func TestCropWholeImage(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.png")
	writeImage(t, src, solidImage(50, 50, color.NRGBA{A: 255}))

	dst := filepath.Join(dir, "a-cropped.png")
	require.NoError(t, New(Options{}).Crop(context.Background(), CropRequest{
		Source: src, Destination: dst, Width: 50, Height: 50,
	}))

	out, err := imaging.Open(dst)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 50, 50), out.Bounds())
}

func TestCropOutOfBounds(t *testing.T) {
	tests := []struct {
		name string
		req  CropRequest
	}{
		{"larger than source", CropRequest{Width: 100, Height: 100}},
		{"right edge", CropRequest{Left: 40, Width: 11, Height: 10}},
		{"bottom edge", CropRequest{Top: 45, Width: 5, Height: 6}},
		{"origin outside", CropRequest{Left: 50, Top: 0, Width: 1, Height: 1}},
		{"overflowing", CropRequest{Left: 1 << 30, Width: 1 << 30, Height: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			src := filepath.Join(dir, "small.png")
			writeImage(t, src, solidImage(50, 50, color.NRGBA{A: 255}))

			req := tt.req
			req.Source = src
			req.Destination = filepath.Join(dir, "small-cropped.png")

			err := New(Options{}).Crop(context.Background(), req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrOutOfBounds), "got %v", err)
			assertOnlyFiles(t, dir, "small.png")
		})
	}
}

func TestCropInvalidParameters(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.png")
	writeImage(t, src, solidImage(10, 10, color.NRGBA{A: 255}))

	err := New(Options{}).Crop(context.Background(), CropRequest{
		Source: src, Destination: filepath.Join(dir, "b.png"), Left: -1, Width: 1, Height: 1,
	})
	assert.True(t, errors.Is(err, ErrInvalidParameter))

	err = New(Options{}).Crop(context.Background(), CropRequest{
		Source: src, Destination: filepath.Join(dir, "b.png"), Width: 0, Height: 1,
	})
	assert.True(t, errors.Is(err, ErrInvalidParameter))
}

func TestCompressJPEG(t *testing.T) {
	ctx := context.Background()
	eng := New(Options{})

	dir := t.TempDir()
	src := filepath.Join(dir, "heavy.jpg")
	require.NoError(t, imaging.Save(noisyImage(128, 128), src, imaging.JPEGQuality(100)))

	low := filepath.Join(dir, "heavy-compressed-10.jpg")
	high := filepath.Join(dir, "heavy-compressed-95.jpg")
	require.NoError(t, eng.Compress(ctx, CompressRequest{Source: src, Destination: low, Format: FormatJPEG, Quality: 10}))
	require.NoError(t, eng.Compress(ctx, CompressRequest{Source: src, Destination: high, Format: FormatJPEG, Quality: 95}))

	assert.Less(t, fileSize(t, low), fileSize(t, high))
	assert.Less(t, fileSize(t, low), fileSize(t, src))

	out, err := imaging.Open(low)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 128, 128), out.Bounds())
}

func TestCompressPNG(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.png")
	writeImage(t, src, solidImage(16, 16, color.NRGBA{R: 1, G: 2, B: 3, A: 255}))

	dst := filepath.Join(dir, "a-compressed-40.png")
	require.NoError(t, New(Options{}).Compress(context.Background(), CompressRequest{
		Source: src, Destination: dst, Format: FormatPNG, Quality: 40,
	}))

	out, err := imaging.Open(dst)
	require.NoError(t, err)
	c := color.NRGBAModel.Convert(out.At(5, 5)).(color.NRGBA)
	assert.Equal(t, color.NRGBA{R: 1, G: 2, B: 3, A: 255}, c)
}

func TestCompressWebP(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.webp")
	writeWebP(t, src, noisyImage(64, 48))

	dst := filepath.Join(dir, "a-compressed-30.webp")
	require.NoError(t, New(Options{}).Compress(context.Background(), CompressRequest{
		Source: src, Destination: dst, Format: FormatWebP, Quality: 30,
	}))

	f, err := os.Open(dst)
	require.NoError(t, err)
	defer f.Close()
	out, err := webp.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 64, out.Bounds().Dx())
	assert.Equal(t, 48, out.Bounds().Dy())
}

func TestCompressRejectsFormat(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.gif")
	writeImage(t, src, solidImage(4, 4, color.NRGBA{A: 255}))

	err := New(Options{}).Compress(context.Background(), CompressRequest{
		Source: src, Destination: filepath.Join(dir, "a-compressed-50.gif"), Format: FormatGIF, Quality: 50,
	})
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
	assertOnlyFiles(t, dir, "a.gif")
}

func TestCorruptSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "broken.jpg")
	require.NoError(t, os.WriteFile(src, []byte("definitely not a jpeg"), 0644))

	err := New(Options{}).Compress(context.Background(), CompressRequest{
		Source: src, Destination: filepath.Join(dir, "broken-compressed-80.jpg"), Format: FormatJPEG, Quality: 80,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
	assertOnlyFiles(t, dir, "broken.jpg")
}

func TestSourceTooLarge(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "big.png")
	writeImage(t, src, noisyImage(64, 64))

	eng := New(Options{MaxSourceBytes: 16})
	err := eng.Compress(context.Background(), CompressRequest{
		Source: src, Destination: filepath.Join(dir, "big-compressed-50.png"), Format: FormatPNG, Quality: 50,
	})
	assert.True(t, errors.Is(err, ErrSourceTooLarge))
}

func TestNewDefaults(t *testing.T) {
	eng := New(Options{DefaultQuality: 500})
	assert.Equal(t, defaultQuality, eng.opts.DefaultQuality)
	assert.Equal(t, int64(defaultMaxSourceBytes), eng.opts.MaxSourceBytes)

	eng = New(Options{DefaultQuality: 70, MaxSourceBytes: 1024})
	assert.Equal(t, 70, eng.opts.DefaultQuality)
	assert.Equal(t, int64(1024), eng.opts.MaxSourceBytes)
}

func TestWriteAtomic(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "out.bin")

		err := writeAtomic(path, func(w io.Writer) error {
			_, err := w.Write([]byte("hello"))
			return err
		})
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))
		assertOnlyFiles(t, dir, "out.bin")
	})

	t.Run("failure leaves nothing", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "out.bin")

		err := writeAtomic(path, func(w io.Writer) error {
			_, _ = w.Write([]byte("partial"))
			return errors.New("encoder exploded")
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "encoder exploded")
		assertOnlyFiles(t, dir)
	})

	t.Run("overwrites previous output", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "out.bin")
		require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

		require.NoError(t, writeAtomic(path, func(w io.Writer) error {
			_, err := w.Write([]byte("new"))
			return err
		}))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "new", string(data))
	})

	t.Run("missing directory", func(t *testing.T) {
		err := writeAtomic(filepath.Join(t.TempDir(), "nope", "out.bin"), func(w io.Writer) error { return nil })
		assert.Error(t, err)
	})
}

// Package editor orchestrates a single editing call: it validates the
// parameters, resolves the file inside the image folder, derives the output
// name and hands the pixel work to the engine.
package editor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/common-creation/image-editor-mcp/internal/engine"
	apperrors "github.com/common-creation/image-editor-mcp/internal/errors"
	"github.com/common-creation/image-editor-mcp/internal/logging"
	"github.com/common-creation/image-editor-mcp/internal/recovery"
)

// PathResolver confines caller supplied paths to the image folder.
type PathResolver interface {
	Resolve(relativePath string) (string, error)
	Contains(absolutePath string) bool
}

// Editor runs the editing operations. It holds no mutable state and is safe
// for concurrent use.
type Editor struct {
	sandbox PathResolver
	engine  engine.Engine
	logger  *logging.Logger
}

// New creates an Editor. A nil logger discards log output.
func New(sandbox PathResolver, eng engine.Engine, logger *logging.Logger) *Editor {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Editor{
		sandbox: sandbox,
		engine:  eng,
		logger:  logger.WithField("component", "editor"),
	}
}

// AdjustBrightness writes a copy of filePath with luminance scaled by
// params.Level, named "{base}-brightened-{level}{ext}".
func (e *Editor) AdjustBrightness(ctx context.Context, filePath string, params BrightnessParams) Result {
	inv := e.begin("adjustBrightness", filePath)

	if err := params.Validate(); err != nil {
		return inv.fail(err)
	}

	source, err := e.resolveSource(filePath)
	if err != nil {
		return inv.fail(err)
	}

	output, err := e.outputFor(source, params.suffix())
	if err != nil {
		return inv.fail(err)
	}
	err = e.invoke("adjust brightness", func() error {
		return e.engine.Brighten(ctx, engine.BrightenRequest{
			Source:      source,
			Destination: output,
			Level:       params.Level,
		})
	})
	if err != nil {
		return inv.fail(err)
	}

	return inv.succeed(fmt.Sprintf("Adjusted brightness of %s and saved it as '%s'.", filePath, filepath.Base(output)), output)
}

// CropImage writes the requested rectangle of filePath to "{base}-cropped{ext}".
// A rectangle reaching outside the image fails without writing anything.
func (e *Editor) CropImage(ctx context.Context, filePath string, params CropParams) Result {
	inv := e.begin("cropImage", filePath)

	if err := params.Validate(); err != nil {
		return inv.fail(err)
	}

	source, err := e.resolveSource(filePath)
	if err != nil {
		return inv.fail(err)
	}

	output, err := e.outputFor(source, cropSuffix)
	if err != nil {
		return inv.fail(err)
	}
	err = e.invoke("crop image", func() error {
		return e.engine.Crop(ctx, engine.CropRequest{
			Source:      source,
			Destination: output,
			Left:        params.Left,
			Top:         params.Top,
			Width:       params.Width,
			Height:      params.Height,
		})
	})
	if err != nil {
		return inv.fail(err)
	}

	return inv.succeed(fmt.Sprintf("Cropped %s and saved it as '%s'.", filePath, filepath.Base(output)), output)
}

// CompressImage re-encodes filePath at params.Quality into
// "{base}-compressed-{quality}{ext}". Only JPEG, PNG and WebP sources are
// accepted; anything else is refused before the engine is called.
func (e *Editor) CompressImage(ctx context.Context, filePath string, params CompressParams) Result {
	inv := e.begin("compressImage", filePath)

	if err := params.Validate(); err != nil {
		return inv.fail(err)
	}

	source, err := e.resolveSource(filePath)
	if err != nil {
		return inv.fail(err)
	}

	format, err := engine.CompressibleFormat(extension(source))
	if err != nil {
		return inv.fail(apperrors.Wrap(apperrors.KindUnsupportedFormat, err, "cannot compress %s", filePath))
	}

	output, err := e.outputFor(source, params.suffix())
	if err != nil {
		return inv.fail(err)
	}
	err = e.invoke("compress image", func() error {
		return e.engine.Compress(ctx, engine.CompressRequest{
			Source:      source,
			Destination: output,
			Format:      format,
			Quality:     params.Quality,
		})
	})
	if err != nil {
		return inv.fail(err)
	}

	return inv.succeed(fmt.Sprintf("Compressed %s at quality %d and saved it as '%s'.", filePath, params.Quality, filepath.Base(output)), output)
}

// resolveSource confines filePath and requires it to name a regular file.
func (e *Editor) resolveSource(filePath string) (string, error) {
	source, err := e.sandbox.Resolve(filePath)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(source)
	if os.IsNotExist(err) {
		return "", apperrors.Wrap(apperrors.KindNotFound, err, "file not found: %s", filePath)
	}
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", filePath, err)
	}
	if !info.Mode().IsRegular() {
		return "", apperrors.New(apperrors.KindNotFound, "not an image file: %s", filePath).
			WithDetail("path", filePath)
	}
	return source, nil
}

// outputFor derives the destination and refuses one outside the image folder.
func (e *Editor) outputFor(source, suffix string) (string, error) {
	output := DeriveOutputPath(source, suffix)
	if !e.sandbox.Contains(output) {
		return "", apperrors.New(apperrors.KindSandboxViolation,
			"security error: output %s would be outside the image folder", filepath.Base(output))
	}
	return output, nil
}

// invoke runs an engine call, turning errors and panics into engine failures.
func (e *Editor) invoke(action string, fn func() error) error {
	if err := recovery.Guard(fn); err != nil {
		return apperrors.Wrap(apperrors.KindEngineFailure, err, "failed to %s", action)
	}
	return nil
}

// invocation carries per-call logging state.
type invocation struct {
	logger *logging.Logger
	start  time.Time
}

func (e *Editor) begin(tool, filePath string) *invocation {
	logger := e.logger.With(logging.Fields{
		"invocation_id": uuid.NewString(),
		"tool":          tool,
		"file":          filePath,
	})
	logger.Debug("Tool invoked")
	return &invocation{logger: logger, start: time.Now()}
}

func (inv *invocation) succeed(message, output string) Result {
	inv.logger.InfoWith("Tool succeeded", logging.Fields{
		"output":   output,
		"duration": time.Since(inv.start).String(),
	})
	return Success(message, output)
}

func (inv *invocation) fail(err error) Result {
	res := Failure(err)
	fields := logging.Fields{
		"kind":     res.Kind.String(),
		"error":    err.Error(),
		"duration": time.Since(inv.start).String(),
	}
	if ae, ok := err.(*apperrors.Error); ok {
		for k, v := range ae.Details {
			fields[k] = v
		}
	}
	if res.Kind == apperrors.KindEngineFailure {
		inv.logger.ErrorWith("Tool failed", fields)
	} else {
		inv.logger.WarnWith("Tool failed", fields)
	}
	return res
}

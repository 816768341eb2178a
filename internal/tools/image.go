package tools

import (
	"context"
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/common-creation/image-editor-mcp/internal/editor"
)

// BrightnessTool implements adjustBrightness
type BrightnessTool struct {
	editor  Editor
	decoder *argsDecoder
}

// NewBrightnessTool creates the adjustBrightness tool
func NewBrightnessTool(ed Editor) *BrightnessTool {
	return &BrightnessTool{editor: ed, decoder: newArgsDecoder(brightnessSchema())}
}

// Name implements Tool
func (t *BrightnessTool) Name() string { return NameAdjustBrightness }

// Description implements Tool
func (t *BrightnessTool) Description() string {
	return "Adjust the brightness of an image in the image folder and save the result as a new file next to it"
}

// Schema implements Tool
func (t *BrightnessTool) Schema() *jsonschema.Schema { return t.decoder.schema }

// Execute implements Tool
func (t *BrightnessTool) Execute(ctx context.Context, args json.RawMessage) editor.Result {
	var in BrightnessArgs
	if err := t.decoder.decode(args, &in); err != nil {
		return editor.Failure(err)
	}
	return t.editor.AdjustBrightness(ctx, in.FilePath, editor.BrightnessParams{Level: in.Level})
}

// CropTool implements cropImage
type CropTool struct {
	editor  Editor
	decoder *argsDecoder
}

// NewCropTool creates the cropImage tool
func NewCropTool(ed Editor) *CropTool {
	return &CropTool{editor: ed, decoder: newArgsDecoder(cropSchema())}
}

// Name implements Tool
func (t *CropTool) Name() string { return NameCropImage }

// Description implements Tool
func (t *CropTool) Description() string {
	return "Crop a rectangle out of an image in the image folder and save it as a new file next to it"
}

// Schema implements Tool
func (t *CropTool) Schema() *jsonschema.Schema { return t.decoder.schema }

// Execute implements Tool
func (t *CropTool) Execute(ctx context.Context, args json.RawMessage) editor.Result {
	var in CropArgs
	if err := t.decoder.decode(args, &in); err != nil {
		return editor.Failure(err)
	}
	return t.editor.CropImage(ctx, in.FilePath, editor.CropParams{
		Left:   in.Left,
		Top:    in.Top,
		Width:  in.Width,
		Height: in.Height,
	})
}

// CompressTool implements compressImage
type CompressTool struct {
	editor  Editor
	decoder *argsDecoder
}

// NewCompressTool creates the compressImage tool
func NewCompressTool(ed Editor) *CompressTool {
	return &CompressTool{editor: ed, decoder: newArgsDecoder(compressSchema())}
}

// Name implements Tool
func (t *CompressTool) Name() string { return NameCompressImage }

// Description implements Tool
func (t *CompressTool) Description() string {
	return "Compress a JPEG, PNG or WebP image in the image folder at the given quality and save it as a new file next to it"
}

// Schema implements Tool
func (t *CompressTool) Schema() *jsonschema.Schema { return t.decoder.schema }

// Execute implements Tool
func (t *CompressTool) Execute(ctx context.Context, args json.RawMessage) editor.Result {
	var in CompressArgs
	if err := t.decoder.decode(args, &in); err != nil {
		return editor.Failure(err)
	}
	return t.editor.CompressImage(ctx, in.FilePath, editor.CompressParams{Quality: in.Quality})
}

package tools

import (
	"context"
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/common-creation/image-editor-mcp/internal/editor"
)

// Tool names as exposed to MCP clients.
const (
	NameAdjustBrightness = "adjustBrightness"
	NameCropImage        = "cropImage"
	NameCompressImage    = "compressImage"
)

// Tool defines the interface that all tools must implement
type Tool interface {
	// Name returns the tool name
	Name() string
	// Description returns the tool description
	Description() string
	// Schema returns the JSON Schema of the arguments object
	Schema() *jsonschema.Schema
	// Execute decodes raw arguments and runs the tool. Failures are reported
	// in the Result, never as a Go error.
	Execute(ctx context.Context, args json.RawMessage) editor.Result
}

// Editor is the set of editing operations the tools delegate to.
type Editor interface {
	AdjustBrightness(ctx context.Context, filePath string, params editor.BrightnessParams) editor.Result
	CropImage(ctx context.Context, filePath string, params editor.CropParams) editor.Result
	CompressImage(ctx context.Context, filePath string, params editor.CompressParams) editor.Result
}

// BrightnessArgs are the arguments of adjustBrightness
type BrightnessArgs struct {
	FilePath string  `json:"filePath"`
	Level    float64 `json:"level"`
}

// CropArgs are the arguments of cropImage
type CropArgs struct {
	FilePath string `json:"filePath"`
	Left     int    `json:"left"`
	Top      int    `json:"top"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// CompressArgs are the arguments of compressImage
type CompressArgs struct {
	FilePath string `json:"filePath"`
	Quality  int    `json:"quality"`
}

package tools

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/common-creation/image-editor-mcp/internal/editor"
	apperrors "github.com/common-creation/image-editor-mcp/internal/errors"
)

func ptr[T any](v T) *T {
	return &v
}

// noAdditional rejects properties that are not declared.
func noAdditional() *jsonschema.Schema {
	return &jsonschema.Schema{Not: &jsonschema.Schema{}}
}

func filePathProperty() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "string",
		Description: "Path of the image relative to the image folder",
	}
}

func brightnessSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"filePath": filePathProperty(),
			"level": {
				Type:        "number",
				Description: "Brightness multiplier; 1 keeps the image unchanged, 2 doubles it",
				Minimum:     ptr(editor.MinBrightness),
				Maximum:     ptr(editor.MaxBrightness),
			},
		},
		Required:             []string{"filePath", "level"},
		AdditionalProperties: noAdditional(),
	}
}

func cropSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"filePath": filePathProperty(),
			"left": {
				Type:        "integer",
				Description: "Offset of the left edge in pixels",
				Minimum:     ptr(0.0),
			},
			"top": {
				Type:        "integer",
				Description: "Offset of the top edge in pixels",
				Minimum:     ptr(0.0),
			},
			"width": {
				Type:        "integer",
				Description: "Width of the area in pixels",
				Minimum:     ptr(1.0),
			},
			"height": {
				Type:        "integer",
				Description: "Height of the area in pixels",
				Minimum:     ptr(1.0),
			},
		},
		Required:             []string{"filePath", "left", "top", "width", "height"},
		AdditionalProperties: noAdditional(),
	}
}

func compressSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"filePath": filePathProperty(),
			"quality": {
				Type:        "integer",
				Description: "Encoder quality from 1 (smallest) to 100 (best)",
				Minimum:     ptr(float64(editor.MinQuality)),
				Maximum:     ptr(float64(editor.MaxQuality)),
			},
		},
		Required:             []string{"filePath", "quality"},
		AdditionalProperties: noAdditional(),
	}
}

// argsDecoder validates raw arguments against a schema and decodes them.
type argsDecoder struct {
	schema   *jsonschema.Schema
	resolved *jsonschema.Resolved
}

func newArgsDecoder(schema *jsonschema.Schema) *argsDecoder {
	resolved, err := schema.Resolve(nil)
	if err != nil {
		// Schemas are static; a failure here is a programming error.
		panic(fmt.Sprintf("invalid tool schema: %v", err))
	}
	return &argsDecoder{schema: schema, resolved: resolved}
}

// decode checks args against the schema and unmarshals them into dst.
// Every failure is a validation error.
func (d *argsDecoder) decode(args json.RawMessage, dst interface{}) error {
	if len(bytes.TrimSpace(args)) == 0 {
		args = json.RawMessage("{}")
	}

	var instance map[string]interface{}
	if err := json.Unmarshal(args, &instance); err != nil {
		return apperrors.Wrap(apperrors.KindValidation, err, "invalid arguments")
	}
	if err := d.resolved.Validate(instance); err != nil {
		return apperrors.Wrap(apperrors.KindValidation, err, "invalid arguments")
	}
	if err := json.Unmarshal(args, dst); err != nil {
		return apperrors.Wrap(apperrors.KindValidation, err, "invalid arguments")
	}
	return nil
}

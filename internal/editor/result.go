package editor

import (
	apperrors "github.com/common-creation/image-editor-mcp/internal/errors"
)

// Result is the outcome of one editing call. Exactly one of the success
// fields (OutputFile) or failure fields (Kind, Err) is set.
type Result struct {
	// Message is the text returned to the caller
	Message string

	// OutputFile is the absolute path of the new image on success
	OutputFile string

	// Kind categorises a failure
	Kind apperrors.Kind

	// Err is the underlying failure
	Err error
}

// Failed reports whether the call failed.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Success builds a successful Result.
func Success(message, outputFile string) Result {
	return Result{Message: message, OutputFile: outputFile}
}

// Failure builds a failed Result whose message wraps err.
func Failure(err error) Result {
	return Result{
		Message: "An error occurred: " + err.Error(),
		Kind:    apperrors.KindOf(err),
		Err:     err,
	}
}

// Package recovery turns panics raised by third-party decoders into errors so
// that a single bad image cannot take the server down.
package recovery

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"time"
)

// PanicInfo holds information about a recovered panic.
type PanicInfo struct {
	Value      interface{} `json:"value"`
	StackTrace string      `json:"stack_trace"`
	Timestamp  time.Time   `json:"timestamp"`
	Goroutines int         `json:"goroutines"`
}

// PanicError is returned by Guard when fn panicked.
type PanicError struct {
	Info PanicInfo
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Info.Value)
}

// Unwrap exposes the panic value when it was itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Info.Value.(error); ok {
		return err
	}
	return nil
}

// Guard runs fn and converts a panic into a *PanicError.
func Guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Info: PanicInfo{
				Value:      r,
				StackTrace: string(debug.Stack()),
				Timestamp:  time.Now(),
				Goroutines: runtime.NumGoroutine(),
			}}
		}
	}()
	return fn()
}

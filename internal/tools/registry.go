package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/common-creation/image-editor-mcp/internal/editor"
	"github.com/common-creation/image-editor-mcp/internal/logging"
)

// Registry holds tools in registration order
type Registry struct {
	tools  map[string]Tool
	order  []string
	logger *logging.Logger
	mu     sync.RWMutex
}

// NewRegistry creates a new tool registry. A nil logger discards output.
func NewRegistry(logger *logging.Logger) *Registry {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Registry{
		tools:  make(map[string]Tool),
		logger: logger.WithField("component", "tools"),
	}
}

// NewDefaultRegistry registers the image editing tools backed by ed
func NewDefaultRegistry(ed Editor, logger *logging.Logger) (*Registry, error) {
	r := NewRegistry(logger)
	for _, tool := range []Tool{
		NewBrightnessTool(ed),
		NewCropTool(ed),
		NewCompressTool(ed),
	} {
		if err := r.Register(tool); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a tool to the registry
func (r *Registry) Register(tool Tool) error {
	if tool == nil {
		return fmt.Errorf("tool cannot be nil")
	}

	name := tool.Name()
	if name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool '%s' is already registered", name)
	}

	r.tools[name] = tool
	r.order = append(r.order, name)
	r.logger.DebugWith("Registered tool", logging.Fields{"name": name})
	return nil
}

// Get retrieves a tool by name
func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, exists := r.tools[name]
	if !exists {
		return nil, fmt.Errorf("tool '%s' not found", name)
	}
	return tool, nil
}

// List returns all tools in registration order
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.tools[name])
	}
	return tools
}

// Names returns all tool names in registration order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Execute runs the named tool with raw JSON arguments
func (r *Registry) Execute(ctx context.Context, name string, args json.RawMessage) (editor.Result, error) {
	tool, err := r.Get(name)
	if err != nil {
		return editor.Result{}, err
	}

	r.logger.DebugWith("Executing tool", logging.Fields{"name": name})
	return tool.Execute(ctx, args), nil
}

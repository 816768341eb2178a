package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	apperrors "github.com/common-creation/image-editor-mcp/internal/errors"
)

// Sandbox confines path resolution to a single root directory.
// The root is canonicalised once in NewSandbox and never changes.
type Sandbox struct {
	root string
}

// NewSandbox creates a Sandbox rooted at dir.
// dir must name an existing directory; symlinks in it are resolved.
func NewSandbox(dir string) (*Sandbox, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, apperrors.Configuration("image directory is required")
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindConfiguration, err, "failed to resolve image directory %q", dir)
	}

	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.Configuration("image directory does not exist: %s", dir)
		}
		return nil, apperrors.Wrap(apperrors.KindConfiguration, err, "failed to resolve image directory %q", dir)
	}

	info, err := os.Stat(real)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindConfiguration, err, "failed to stat image directory %q", dir)
	}
	if !info.IsDir() {
		return nil, apperrors.Configuration("image path is not a directory: %s", dir)
	}

	return &Sandbox{root: filepath.Clean(real)}, nil
}

// Root returns the canonical root directory.
func (s *Sandbox) Root() string {
	return s.root
}

// Resolve joins relativePath onto the root and returns the resulting
// absolute path. It fails with a sandbox violation when the path leaves the
// root and with not-found when it does not exist.
func (s *Sandbox) Resolve(relativePath string) (string, error) {
	candidate := filepath.Join(s.root, relativePath)

	if !s.contains(candidate) {
		return "", apperrors.New(apperrors.KindSandboxViolation,
			"security error: access to files outside the image folder is not allowed").
			WithDetail("path", relativePath)
	}

	if _, err := os.Lstat(candidate); err != nil {
		return "", statError(relativePath, "stat", err)
	}

	// A link inside the root may still point elsewhere.
	real, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		return "", statError(relativePath, "resolve", err)
	}
	if !s.contains(real) {
		return "", apperrors.New(apperrors.KindSandboxViolation,
			"security error: %s links outside the image folder", relativePath).
			WithDetail("path", relativePath)
	}

	return candidate, nil
}

// Contains reports whether an absolute path lies inside the root.
func (s *Sandbox) Contains(path string) bool {
	return s.contains(path)
}

// statError maps a failed lookup. Missing files, including a path running
// through a regular file, are not-found; anything else (permissions, I/O)
// keeps its cause and no kind.
func statError(relativePath, op string, err error) error {
	if os.IsNotExist(err) || errors.Is(err, syscall.ENOTDIR) {
		return apperrors.New(apperrors.KindNotFound, "file not found: %s", relativePath).
			WithDetail("path", relativePath)
	}
	return fmt.Errorf("failed to %s %s: %w", op, relativePath, err)
}

// contains reports whether path is the root or lies below it, comparing
// whole path segments so that "/images-evil" is not inside "/images".
func (s *Sandbox) contains(path string) bool {
	rel, err := filepath.Rel(s.root, filepath.Clean(path))
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	if filepath.IsAbs(rel) {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Package staging manages the per-invocation scratch directory used to stage
// the downloaded original and intermediate files.
package staging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Dir is a uniquely-named temporary working directory. Callers must defer
// Release so the directory is removed on every exit path of an invocation.
type Dir struct {
	path string
}

// Acquire creates a fresh scratch directory under the process temp root.
func Acquire() (*Dir, error) {
	path, err := os.MkdirTemp("", "variant-builder-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	return &Dir{path: path}, nil
}

// Path returns the directory's absolute path.
func (d *Dir) Path() string { return d.path }

// Join returns the path of a file inside the scratch directory.
func (d *Dir) Join(name string) string {
	return filepath.Join(d.path, name)
}

// Release removes the directory and everything in it. It tolerates the
// directory already being gone and is safe to call more than once; a failed
// removal is logged rather than propagated since the invocation's outcome is
// already decided by the time cleanup runs.
func (d *Dir) Release() {
	if d.path == "" {
		return
	}
	if err := os.RemoveAll(d.path); err != nil {
		slog.Error("Failed to remove scratch directory.", "path", d.path, "error", err)
		return
	}
	d.path = ""
}

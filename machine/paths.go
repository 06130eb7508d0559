package machine

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bad-mango-solutions/pocket2e/emuerr"
)

// EmbeddedResource loads an embedded://Bundle/Resource.Name reference.
// Callers that never use embedded sources may leave this nil; resolving an
// embedded:// source without one configured is a ResourceError.
type EmbeddedResource func(bundle, resource string) ([]byte, error)

// Resolver implements spec.md §4.9's path resolution schemes:
// library://, app://, embedded://, absolute, and relative paths resolved
// against the profile file's directory (or the app root, for an in-memory
// profile).
type Resolver struct {
	LibraryRoot string
	AppBaseDir  string
	ProfileDir  string // "" if the profile was loaded in-memory
	Embedded    EmbeddedResource
}

// Resolve reads the bytes named by source, applying whichever scheme the
// source string declares.
func (r *Resolver) Resolve(source string) ([]byte, error) {
	switch {
	case strings.HasPrefix(source, "library://"):
		if r.LibraryRoot == "" {
			return nil, emuerr.Resourcef("", "library:// source %q used but no library root is configured", source)
		}
		p := filepath.Join(r.LibraryRoot, strings.TrimPrefix(source, "library://"))
		return r.readFile(p)

	case strings.HasPrefix(source, "app://"):
		p := filepath.Join(r.AppBaseDir, strings.TrimPrefix(source, "app://"))
		return r.readFile(p)

	case strings.HasPrefix(source, "embedded://"):
		rest := strings.TrimPrefix(source, "embedded://")
		bundle, resource, ok := strings.Cut(rest, "/")
		if !ok {
			return nil, emuerr.Resourcef("", "malformed embedded:// source %q (want Bundle/Resource.Name)", source)
		}
		if r.Embedded == nil {
			return nil, emuerr.Resourcef("", "embedded:// source %q used but no embedded resource loader is configured", source)
		}
		data, err := r.Embedded(bundle, resource)
		if err != nil {
			return nil, emuerr.Resourcef("", "embedded resource %q not found: %v", source, err)
		}
		return data, nil

	case filepath.IsAbs(source):
		return r.readFile(filepath.Clean(source))

	default:
		base := r.ProfileDir
		if base == "" {
			base = r.AppBaseDir
		}
		return r.readFile(filepath.Join(base, source))
	}
}

func (r *Resolver) readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, emuerr.Resourcef("", "cannot read %q: %v", path, err)
	}
	return data, nil
}

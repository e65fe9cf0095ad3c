// Package localfs is the local filesystem seam used by the managers for key-pair
// files and object transfers. It is backed by go-billy so tests can run against
// an in-memory filesystem.
package localfs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// File represents an open file handle.
type File interface {
	io.Reader
	io.Writer
	io.Seeker
	io.Closer
	Name() string
}

// Filesystem is the subset of filesystem operations the managers need.
type Filesystem interface {
	Open(name string) (File, error)
	OpenFile(name string, flag int, perm os.FileMode) (File, error)
	Stat(name string) (os.FileInfo, error)
	Exists(path string) (bool, error)
	MkdirAll(path string, perm os.FileMode) error
	Walk(root string, walkFn filepath.WalkFunc) error
	ReadFile(path string) ([]byte, error)
	WriteFile(filename string, data []byte, perm os.FileMode) error
	Remove(name string) error
}

// FS implements Filesystem using go-billy.
type FS struct {
	fs billy.Filesystem

	// absolute resolves relative names against the working directory first
	absolute bool
}

var _ Filesystem = (*FS)(nil)

// NewOS returns the native filesystem. Relative paths are resolved against the
// process working directory.
func NewOS() *FS {
	return &FS{
		fs:       osfs.New("/"),
		absolute: true,
	}
}

// NewInMemory returns an empty in-memory filesystem.
func NewInMemory() *FS {
	return &FS{fs: memfs.New()}
}

// New wraps an arbitrary go-billy filesystem.
func New(fsys billy.Filesystem) *FS {
	return &FS{fs: fsys}
}

func (b *FS) path(name string) (string, error) {
	if !b.absolute || filepath.IsAbs(name) {
		return name, nil
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		return "", fmt.Errorf("localfs: abs %q: %w", name, err)
	}
	return abs, nil
}

// Open opens the named file for reading.
//
//nolint:ireturn // billy returns an interface; callers only need the File subset.
func (b *FS) Open(name string) (File, error) {
	p, err := b.path(name)
	if err != nil {
		return nil, err
	}
	f, err := b.fs.Open(p)
	if err != nil {
		return nil, fmt.Errorf("localfs: open %q: %w", name, err)
	}
	return &file{file: f}, nil
}

// OpenFile opens the named file with the given flags and permissions.
//
//nolint:ireturn // billy returns an interface; callers only need the File subset.
func (b *FS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	p, err := b.path(name)
	if err != nil {
		return nil, err
	}
	f, err := b.fs.OpenFile(p, flag, perm)
	if err != nil {
		return nil, fmt.Errorf("localfs: openfile %q: %w", name, err)
	}
	return &file{file: f}, nil
}

// Stat returns the FileInfo for the named file.
func (b *FS) Stat(name string) (os.FileInfo, error) {
	p, err := b.path(name)
	if err != nil {
		return nil, err
	}
	info, err := b.fs.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("localfs: stat %q: %w", name, err)
	}
	return info, nil
}

// Exists reports whether path exists.
func (b *FS) Exists(path string) (bool, error) {
	p, err := b.path(path)
	if err != nil {
		return false, err
	}
	_, err = b.fs.Stat(p)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("localfs: stat %q: %w", path, err)
	}
}

// MkdirAll creates a directory and any missing parents.
func (b *FS) MkdirAll(path string, perm os.FileMode) error {
	p, err := b.path(path)
	if err != nil {
		return err
	}
	if err := b.fs.MkdirAll(p, perm); err != nil {
		return fmt.Errorf("localfs: mkdirall %q: %w", path, err)
	}
	return nil
}

// Walk walks the tree rooted at root, calling walkFn for each file or directory.
// Paths passed to walkFn are joined onto root as the caller gave it.
func (b *FS) Walk(root string, walkFn filepath.WalkFunc) error {
	p, err := b.path(root)
	if err != nil {
		return err
	}
	fn := walkFn
	if p != root {
		fn = func(path string, info os.FileInfo, err error) error {
			if rel, relErr := filepath.Rel(p, path); relErr == nil {
				path = filepath.Join(root, rel)
			}
			return walkFn(path, info, err)
		}
	}
	if err := util.Walk(b.fs, p, fn); err != nil {
		return fmt.Errorf("localfs: walk %q: %w", root, err)
	}
	return nil
}

// ReadFile reads the named file.
func (b *FS) ReadFile(path string) ([]byte, error) {
	p, err := b.path(path)
	if err != nil {
		return nil, err
	}
	data, err := util.ReadFile(b.fs, p)
	if err != nil {
		return nil, fmt.Errorf("localfs: readfile %q: %w", path, err)
	}
	return data, nil
}

// WriteFile writes data to the named file, creating it if necessary.
func (b *FS) WriteFile(filename string, data []byte, perm os.FileMode) error {
	p, err := b.path(filename)
	if err != nil {
		return err
	}
	if err := util.WriteFile(b.fs, p, data, perm); err != nil {
		return fmt.Errorf("localfs: writefile %q: %w", filename, err)
	}
	return nil
}

// Remove deletes the named file or empty directory.
func (b *FS) Remove(name string) error {
	p, err := b.path(name)
	if err != nil {
		return err
	}
	if err := b.fs.Remove(p); err != nil {
		return fmt.Errorf("localfs: remove %q: %w", name, err)
	}
	return nil
}

// Raw returns the underlying go-billy filesystem.
//
//nolint:ireturn // exposes the adapter target.
func (b *FS) Raw() billy.Filesystem {
	return b.fs
}

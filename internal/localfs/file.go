package localfs

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-git/go-billy/v5"
)

// file wraps a go-billy File, annotating errors with the file name.
type file struct {
	file billy.File
}

func (f *file) Name() string {
	return f.file.Name()
}

func (f *file) Read(p []byte) (int, error) {
	n, err := f.file.Read(p)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return n, io.EOF
		}
		return n, fmt.Errorf("localfs: read %q: %w", f.file.Name(), err)
	}
	return n, nil
}

func (f *file) Write(p []byte) (int, error) {
	n, err := f.file.Write(p)
	if err != nil {
		return n, fmt.Errorf("localfs: write %q: %w", f.file.Name(), err)
	}
	return n, nil
}

func (f *file) Seek(offset int64, whence int) (int64, error) {
	pos, err := f.file.Seek(offset, whence)
	if err != nil {
		return pos, fmt.Errorf("localfs: seek %q off=%d whence=%d: %w", f.file.Name(), offset, whence, err)
	}
	return pos, nil
}

func (f *file) Close() error {
	if err := f.file.Close(); err != nil {
		return fmt.Errorf("localfs: close %q: %w", f.file.Name(), err)
	}
	return nil
}

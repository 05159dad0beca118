package items

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Source is the immutable payload handle of an item. The registry holds the
// handle; content is only read when a collaborator opens it.
type Source interface {
	Name() string
	ModTime() time.Time
	Size() int64
	Open() (io.ReadCloser, error)
}

type fileSource struct {
	path    string
	modTime time.Time
	size    int64
}

// FileSource returns a Source backed by a regular file on disk.
func FileSource(path string) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableSource, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrUnreadableSource, path)
	}
	return &fileSource{
		path:    path,
		modTime: info.ModTime(),
		size:    info.Size(),
	}, nil
}

func (f *fileSource) Name() string { return filepath.Base(f.path) }
func (f *fileSource) ModTime() time.Time { return f.modTime }
func (f *fileSource) Size() int64 { return f.size }

func (f *fileSource) Open() (io.ReadCloser, error) {
	return os.Open(f.path)
}

type bytesSource struct {
	name    string
	modTime time.Time
	data    []byte
}

// BytesSource returns a Source over an in-memory payload such as an upload body.
func BytesSource(name string, modTime time.Time, data []byte) Source {
	return &bytesSource{name: name, modTime: modTime, data: data}
}

func (b *bytesSource) Name() string { return b.name }
func (b *bytesSource) ModTime() time.Time { return b.modTime }
func (b *bytesSource) Size() int64 { return int64(len(b.data)) }

func (b *bytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b.data)), nil
}

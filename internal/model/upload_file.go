package model

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
)

// UploadFile is a file handle picked by the user for upload.
type UploadFile interface {
	Name() string
	Open() (io.ReadCloser, error)
}

type localFile struct {
	path string
}

// LocalFile refers to a file on disk; it is opened only when the batch is submitted.
func LocalFile(path string) UploadFile {
	return localFile{path: path}
}

func (f localFile) Name() string                 { return filepath.Base(f.path) }
func (f localFile) Open() (io.ReadCloser, error) { return os.Open(f.path) }

type memFile struct {
	name string
	data []byte
}

// MemFile holds file content already read into memory.
func MemFile(name string, data []byte) UploadFile {
	return memFile{name: name, data: data}
}

func (f memFile) Name() string { return f.name }
func (f memFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

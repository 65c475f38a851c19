// Package clipboard reads the system clipboard as text.
package clipboard

import (
	"sync"

	"github.com/aleister1102/zeroleaks/internal/common"
	"github.com/atotto/clipboard"
)

// Reader returns the current clipboard text.
type Reader interface {
	ReadText() (string, error)
}

// SystemReader reads the OS clipboard through atotto/clipboard.
type SystemReader struct {
	readAll func() (string, error)
}

// NewSystemReader returns a reader bound to the OS clipboard.
func NewSystemReader() *SystemReader {
	return &SystemReader{readAll: clipboard.ReadAll}
}

// Supported reports whether a clipboard backend is available on this host.
func Supported() bool {
	return !clipboard.Unsupported
}

// ReadText returns the clipboard contents with invalid UTF-8 removed.
func (r *SystemReader) ReadText() (string, error) {
	text, err := r.readAll()
	if err != nil {
		return "", common.WrapError(err, "failed to read clipboard")
	}
	return common.DecodeText([]byte(text)), nil
}

// StaticReader is an in-memory Reader. Useful when no clipboard backend
// exists and in tests.
type StaticReader struct {
	mu   sync.Mutex
	text string
	err  error
}

// Set replaces the stored text and clears any error.
func (r *StaticReader) Set(text string) {
	r.mu.Lock()
	r.text, r.err = text, nil
	r.mu.Unlock()
}

// Fail makes subsequent reads return err.
func (r *StaticReader) Fail(err error) {
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
}

func (r *StaticReader) ReadText() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return "", r.err
	}
	return r.text, nil
}

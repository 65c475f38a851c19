package common

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// FileReadOptions configures file reading behavior
type FileReadOptions struct {
	MaxSize    int64           // Maximum number of bytes to read (0 = no limit)
	BufferSize int             // Buffer size for reading
	Timeout    time.Duration   // Read timeout
	Context    context.Context // Context for cancellation
}

// DefaultFileReadOptions returns default file reading options
func DefaultFileReadOptions() FileReadOptions {
	return FileReadOptions{
		MaxSize:    0,
		BufferSize: 32 * 1024,
		Timeout:    30 * time.Second,
		Context:    context.Background(),
	}
}

// FileReader handles file reading operations
type FileReader struct {
	logger zerolog.Logger
}

// NewFileReader creates a new FileReader instance
func NewFileReader(logger zerolog.Logger) *FileReader {
	return &FileReader{
		logger: logger.With().Str("component", "FileReader").Logger(),
	}
}

// ReadFile reads a file with the given options
func (fr *FileReader) ReadFile(path string, opts FileReadOptions) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, WrapError(err, fmt.Sprintf("failed to stat file: %s", path))
	}
	if info.IsDir() {
		return nil, NewPathError(path, ErrInvalidInput)
	}

	ctx, cancel := fr.setupContextWithTimeout(opts)
	if cancel != nil {
		defer cancel()
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, WrapError(err, fmt.Sprintf("failed to open file: %s", path))
	}
	defer func() {
		if err := file.Close(); err != nil {
			fr.logger.Error().Err(err).Str("path", path).Msg("Failed to close file.")
		}
	}()

	var reader io.Reader = file
	if opts.BufferSize > 0 {
		reader = bufio.NewReaderSize(file, opts.BufferSize)
	}

	return fr.performFileRead(ctx, path, reader, opts.MaxSize)
}

// ReadText reads a file as text. Invalid UTF-8 sequences are dropped
// instead of failing the read.
func (fr *FileReader) ReadText(path string, opts FileReadOptions) (string, error) {
	content, err := fr.ReadFile(path, opts)
	if err != nil {
		return "", err
	}
	return DecodeText(content), nil
}

// DecodeText converts raw bytes to a string, discarding invalid UTF-8.
func DecodeText(content []byte) string {
	return strings.ToValidUTF8(string(content), "")
}

func (fr *FileReader) setupContextWithTimeout(opts FileReadOptions) (context.Context, context.CancelFunc) {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Timeout > 0 {
		return context.WithTimeout(ctx, opts.Timeout)
	}
	return ctx, nil
}

// performFileRead performs the actual file reading operation with context support
func (fr *FileReader) performFileRead(ctx context.Context, path string, reader io.Reader, maxSize int64) ([]byte, error) {
	done := make(chan struct{})
	var content []byte
	var readErr error

	go func() {
		defer close(done)
		if maxSize > 0 {
			reader = io.LimitReader(reader, maxSize)
		}
		content, readErr = io.ReadAll(reader)
	}()

	select {
	case <-ctx.Done():
		fr.logger.Warn().Str("path", path).Msg("File read cancelled")
		return nil, WrapError(ctx.Err(), "file read operation cancelled")
	case <-done:
		if readErr != nil {
			return nil, WrapError(readErr, fmt.Sprintf("failed to read file content: %s", path))
		}
	}

	return content, nil
}

// IsDirectory reports whether path exists and is a directory.
func IsDirectory(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

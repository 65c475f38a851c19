package datastore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aleister1102/zeroleaks/internal/common"
	"github.com/aleister1102/zeroleaks/internal/config"
	"github.com/aleister1102/zeroleaks/internal/models"
	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"
)

const (
	archiveDirName = "alerts"
	partTimeFormat = "20060102T150405"
	// maxPartAttempts bounds the sequence bumps tried when a part name is taken.
	maxPartAttempts = 5
	// maxPendingFlushes caps the buffer at this many flushes worth of alerts
	// while the archive directory is unwritable.
	maxPendingFlushes = 10
)

// AlertArchive buffers alerts and writes them to Parquet files, one file per
// flush. Parquet files cannot be appended to, so each flush is a new
// immutable part under <parquet_base_path>/alerts named
// alerts-<utc time>-<pid>-<seq>.parquet.
type AlertArchive struct {
	dir       string
	codec     string
	flushSize int
	pid       int
	logger    zerolog.Logger

	mu      sync.Mutex
	pending []models.Alert
	seq     int
	closed  bool
	now     func() time.Time
}

// NewAlertArchive creates an archive rooted at cfg.ParquetBasePath.
func NewAlertArchive(cfg *config.StorageConfig, logger zerolog.Logger) (*AlertArchive, error) {
	if cfg == nil || cfg.ParquetBasePath == "" {
		return nil, common.NewValidationError("parquet_base_path", "", "ParquetBasePath is not configured for the alert archive")
	}

	dir := filepath.Join(cfg.ParquetBasePath, archiveDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, common.WrapError(err, "failed to create alert archive directory: "+dir)
	}

	flushSize := cfg.ArchiveFlushSize
	if flushSize <= 0 {
		flushSize = config.DefaultStorageArchiveFlushSize
	}

	return &AlertArchive{
		dir:       dir,
		codec:     cfg.CompressionCodec,
		flushSize: flushSize,
		pid:       os.Getpid(),
		logger:    logger.With().Str("component", "AlertArchive").Logger(),
		now:       time.Now,
	}, nil
}

// Dir returns the directory holding the archive parts.
func (a *AlertArchive) Dir() string {
	return a.dir
}

// WriteAlerts buffers alerts and flushes once the buffer reaches the flush size.
func (a *AlertArchive) WriteAlerts(alerts []models.Alert) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return common.NewError("alert archive is closed")
	}
	a.pending = append(a.pending, alerts...)
	if len(a.pending) < a.flushSize {
		return nil
	}
	return a.flushLocked()
}

// Flush writes any buffered alerts to a new part file.
func (a *AlertArchive) Flush() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.flushLocked()
}

// Close flushes and rejects further writes.
func (a *AlertArchive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	return a.flushLocked()
}

func (a *AlertArchive) flushLocked() error {
	if len(a.pending) == 0 {
		return nil
	}

	var err error
	for attempt := 0; attempt < maxPartAttempts; attempt++ {
		a.seq++
		filePath := a.partPath()
		err = a.writeToParquetFile(filePath, a.pending)
		if err == nil {
			a.logger.Info().Str("file_path", filePath).Int("records_written", len(a.pending)).Msg("Wrote alert archive part")
			a.pending = a.pending[:0]
			return nil
		}
		if !errors.Is(err, fs.ErrExist) {
			break
		}
	}

	a.trimPendingLocked()
	return err
}

func (a *AlertArchive) partPath() string {
	name := fmt.Sprintf("alerts-%s-%d-%04d.parquet", a.now().UTC().Format(partTimeFormat), a.pid, a.seq)
	return filepath.Join(a.dir, name)
}

// trimPendingLocked drops the oldest buffered alerts beyond the cap.
func (a *AlertArchive) trimPendingLocked() {
	limit := a.flushSize * maxPendingFlushes
	excess := len(a.pending) - limit
	if excess <= 0 {
		return
	}
	a.logger.Warn().Int("dropped", excess).Int("kept", limit).Msg("Alert archive buffer full, dropping oldest alerts")
	a.pending = append(a.pending[:0], a.pending[excess:]...)
}

func (a *AlertArchive) writeToParquetFile(filePath string, alerts []models.Alert) error {
	file, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return common.WrapError(err, "failed to create alert archive file: "+filePath)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[models.Alert](file, compressionOption(a.codec))
	if _, err := writer.Write(alerts); err != nil {
		_ = writer.Close()
		return common.WrapError(err, "failed to write alerts to parquet file")
	}
	if err := writer.Close(); err != nil {
		return common.WrapError(err, "failed to finalize parquet file")
	}
	return nil
}

func compressionOption(codec string) parquet.WriterOption {
	switch strings.ToLower(codec) {
	case "snappy":
		return parquet.Compression(&parquet.Snappy)
	case "gzip":
		return parquet.Compression(&parquet.Gzip)
	case "none":
		return parquet.Compression(&parquet.Uncompressed)
	default:
		return parquet.Compression(&parquet.Zstd)
	}
}

// LoadAlerts reads every archived alert, oldest part first.
func (a *AlertArchive) LoadAlerts(ctx context.Context) ([]models.Alert, error) {
	parts, err := filepath.Glob(filepath.Join(a.dir, "alerts-*.parquet"))
	if err != nil {
		return nil, common.WrapError(err, "failed to list alert archive parts")
	}
	sort.Strings(parts)

	var alerts []models.Alert
	for _, part := range parts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		loaded, err := readParquetFile(part)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, loaded...)
	}
	return alerts, nil
}

func readParquetFile(filePath string) ([]models.Alert, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, common.WrapError(err, "failed to open alert archive file for reading: "+filePath)
	}
	defer file.Close()

	reader := parquet.NewGenericReader[models.Alert](file)
	defer reader.Close()

	alerts := make([]models.Alert, 0, reader.NumRows())
	batch := make([]models.Alert, 100)
	for {
		n, err := reader.Read(batch)
		alerts = append(alerts, batch[:n]...)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, common.WrapError(err, "failed to read alerts from parquet file")
		}
		if n == 0 {
			break
		}
	}
	return alerts, nil
}

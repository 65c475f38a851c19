package config

// StorageConfig defines where alerts are persisted
type StorageConfig struct {
	JournalEnabled   bool   `json:"journal_enabled" yaml:"journal_enabled"`
	JournalPath      string `json:"journal_path,omitempty" yaml:"journal_path,omitempty" validate:"required_if=JournalEnabled true"`
	ArchiveEnabled   bool   `json:"archive_enabled" yaml:"archive_enabled"`
	ParquetBasePath  string `json:"parquet_base_path,omitempty" yaml:"parquet_base_path,omitempty" validate:"required_if=ArchiveEnabled true"`
	CompressionCodec string `json:"compression_codec,omitempty" yaml:"compression_codec,omitempty" validate:"omitempty,oneof=zstd snappy gzip none"`
	ArchiveFlushSize int    `json:"archive_flush_size,omitempty" yaml:"archive_flush_size,omitempty" validate:"omitempty,min=1"`
}

// NewDefaultStorageConfig creates default storage configuration
func NewDefaultStorageConfig() StorageConfig {
	return StorageConfig{
		JournalEnabled:   false,
		JournalPath:      DefaultStorageJournalPath,
		ArchiveEnabled:   false,
		ParquetBasePath:  DefaultStorageParquetBasePath,
		CompressionCodec: DefaultStorageCompressionCodec,
		ArchiveFlushSize: DefaultStorageArchiveFlushSize,
	}
}

package models

import (
	"strings"
	"time"
)

// SourceKind classifies where a batch of findings came from.
type SourceKind string

const (
	SourceKindFile      SourceKind = "file"
	SourceKindUSBFile   SourceKind = "usb_file"
	SourceKindClipboard SourceKind = "clipboard"
	SourceKindOther     SourceKind = "other"
)

// Source labels used in alerts.
const (
	ClipboardSource     = "Clipboard"
	fileSourcePrefix    = "file "
	usbFileSourcePrefix = "USB file "
)

// FileSource returns the alert source label for a file path.
func FileSource(path string, onRemovableDrive bool) string {
	if onRemovableDrive {
		return usbFileSourcePrefix + path
	}
	return fileSourcePrefix + path
}

// KindOfSource derives the SourceKind from a source label.
func KindOfSource(source string) SourceKind {
	switch {
	case source == ClipboardSource:
		return SourceKindClipboard
	case strings.HasPrefix(source, usbFileSourcePrefix):
		return SourceKindUSBFile
	case strings.HasPrefix(source, fileSourcePrefix):
		return SourceKindFile
	default:
		return SourceKindOther
	}
}

// Alert is a single de-duplicated finding that was reported.
// Tags are for Parquet storage.
type Alert struct {
	Source       string `parquet:"source" json:"source"`
	SourceKind   string `parquet:"source_kind" json:"source_kind"`
	FindingType  string `parquet:"finding_type" json:"finding_type"`
	Value        string `parquet:"value" json:"value"`
	Method       string `parquet:"method,optional" json:"method,omitempty"`
	DetectedAtMs int64  `parquet:"detected_at_ms" json:"detected_at_ms"`
}

// NewAlerts flattens a batch into alerts stamped with detectedAt.
func NewAlerts(source string, findings []Finding, detectedAt time.Time) []Alert {
	alerts := make([]Alert, 0, len(findings))
	kind := string(KindOfSource(source))
	for _, f := range findings {
		alerts = append(alerts, Alert{
			Source:       source,
			SourceKind:   kind,
			FindingType:  f.Type,
			Value:        f.Value,
			Method:       f.MethodOrUnknown(),
			DetectedAtMs: detectedAt.UnixMilli(),
		})
	}
	return alerts
}

// DetectedAt returns the detection time.
func (a Alert) DetectedAt() time.Time {
	return time.UnixMilli(a.DetectedAtMs)
}

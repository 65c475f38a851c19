package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aleister1102/zeroleaks/internal/models"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// AlertJournal records every reported alert in a SQLite database.
// It is write-mostly; the monitor never reads it back.
type AlertJournal struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewAlertJournal opens (or creates) the journal at dataSourceName and
// ensures the schema exists.
func NewAlertJournal(dataSourceName string, logger zerolog.Logger) (*AlertJournal, error) {
	logger = logger.With().Str("component", "AlertJournal").Logger()
	logger.Info().Str("db_path", dataSourceName).Msg("Initializing alert journal")

	if dbDir := filepath.Dir(dataSourceName); dbDir != "." {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			logger.Error().Err(err).Str("directory", dbDir).Msg("Failed to create alert journal directory")
			return nil, fmt.Errorf("failed to create alert journal directory %s: %w", dbDir, err)
		}
	}

	dbInstance, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		logger.Error().Err(err).Str("db_path", dataSourceName).Msg("Failed to open alert journal")
		return nil, fmt.Errorf("sql.Open failed for %s: %w", dataSourceName, err)
	}
	// SQLite allows one writer at a time.
	dbInstance.SetMaxOpenConns(1)

	j := &AlertJournal{db: dbInstance, logger: logger}
	if err := j.InitSchema(); err != nil {
		j.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return j, nil
}

// Close closes the database connection.
func (j *AlertJournal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// InitSchema creates the alerts table if it doesn't already exist.
func (j *AlertJournal) InitSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS alerts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		source_kind TEXT NOT NULL,
		finding_type TEXT NOT NULL,
		value TEXT NOT NULL,
		method TEXT,
		detected_at_ms INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_alerts_detected_at ON alerts(detected_at_ms);
	`
	if _, err := j.db.Exec(query); err != nil {
		j.logger.Error().Err(err).Msg("Failed to initialize schema")
		return err
	}
	j.logger.Debug().Msg("Schema initialized (alerts table ensured)")
	return nil
}

// WriteAlerts inserts alerts in a single transaction.
func (j *AlertJournal) WriteAlerts(alerts []models.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	tx, err := j.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO alerts (source, source_kind, finding_type, value, method, detected_at_ms) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range alerts {
		method := sql.NullString{String: a.Method, Valid: a.Method != ""}
		if _, err := stmt.Exec(a.Source, a.SourceKind, a.FindingType, a.Value, method, a.DetectedAtMs); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert alert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit alerts: %w", err)
	}
	j.logger.Debug().Int("alerts", len(alerts)).Msg("Recorded alerts")
	return nil
}

// Count returns the number of journaled alerts.
func (j *AlertJournal) Count(ctx context.Context) (int, error) {
	var n int
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM alerts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count alerts: %w", err)
	}
	return n, nil
}

// Recent returns up to limit alerts detected at or after since, newest first.
func (j *AlertJournal) Recent(ctx context.Context, since time.Time, limit int) ([]models.Alert, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT source, source_kind, finding_type, value, method, detected_at_ms
		 FROM alerts WHERE detected_at_ms >= ? ORDER BY detected_at_ms DESC, id DESC LIMIT ?`,
		since.UnixMilli(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent alerts: %w", err)
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var (
			a      models.Alert
			method sql.NullString
		)
		if err := rows.Scan(&a.Source, &a.SourceKind, &a.FindingType, &a.Value, &method, &a.DetectedAtMs); err != nil {
			return nil, fmt.Errorf("failed to scan alert row: %w", err)
		}
		a.Method = method.String
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// DB wraps the database connection
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// Connect establishes a connection to the database
func Connect(connectionString string, logger *zap.Logger) (*DB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// one device writes in small batches
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)

	return &DB{DB: db, logger: logger}, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// RunMigrations executes all SQL migration files in order
func (db *DB) RunMigrations(ctx context.Context, migrationsDir string) error {
	return runMigrations(ctx, db.DB, migrationsDir, db.logger)
}

func runMigrations(ctx context.Context, ex execer, migrationsDir string, logger *zap.Logger) error {
	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var sqlFiles []string
	for _, file := range files {
		if !file.IsDir() && strings.HasSuffix(file.Name(), ".sql") {
			sqlFiles = append(sqlFiles, file.Name())
		}
	}
	sort.Strings(sqlFiles)

	for _, filename := range sqlFiles {
		logger.Info("running migration", zap.String("file", filename))

		content, err := os.ReadFile(filepath.Join(migrationsDir, filename))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", filename, err)
		}

		if _, err := ex.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", filename, err)
		}
	}

	logger.Info("migrations completed", zap.Int("count", len(sqlFiles)))
	return nil
}

var readingColumns = []string{
	"device_id", "recorded_at", "temperature", "humidity", "gas", "smoke",
	"sound", "level", "mood", "fan", "lamp", "received_at",
}

// InsertReadings copies a batch of readings in one transaction
func (db *DB) InsertReadings(ctx context.Context, readings []Reading) error {
	if len(readings) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("readings", readingColumns...))
	if err != nil {
		return fmt.Errorf("failed to prepare copy: %w", err)
	}

	for _, r := range readings {
		if _, err := stmt.ExecContext(ctx, readingRow(r)...); err != nil {
			stmt.Close()
			return fmt.Errorf("failed to copy reading: %w", err)
		}
	}

	// flush the COPY buffer
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return fmt.Errorf("failed to flush readings: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("failed to close copy: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit readings: %w", err)
	}
	return nil
}

func readingRow(r Reading) []interface{} {
	var smoke interface{}
	if r.Smoke != nil {
		smoke = *r.Smoke
	}
	return []interface{}{
		r.DeviceID,
		r.RecordedAt,
		r.Temperature,
		r.Humidity,
		r.Gas,
		smoke,
		r.Sound,
		r.Level,
		r.Mood,
		r.Fan,
		r.Lamp,
		r.ReceivedAt,
	}
}

// OpenAlert inserts a new active alert
func (db *DB) OpenAlert(ctx context.Context, alert *AlertLog) error {
	query := `
		INSERT INTO alerts_log (
			device_id, metric, breach_value, text, start_time, status
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING alert_id
	`

	return db.QueryRowContext(ctx,
		query,
		alert.DeviceID,
		alert.Metric,
		alert.BreachValue,
		alert.Text,
		alert.StartTime,
		AlertStatusActive,
	).Scan(&alert.AlertID)
}

// CloseAlert marks the device's active alert on metric as cleared. It
// reports whether an open alert was found.
func (db *DB) CloseAlert(ctx context.Context, deviceID, metric string, endTime time.Time) (bool, error) {
	query := `
		UPDATE alerts_log
		SET status = $1, end_time = $2, updated_at = CURRENT_TIMESTAMP
		WHERE device_id = $3 AND metric = $4 AND status = $5
	`

	res, err := db.ExecContext(ctx, query, AlertStatusCleared, endTime, deviceID, metric, AlertStatusActive)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// InsertConfigChange records a settings save
func (db *DB) InsertConfigChange(ctx context.Context, change *ConfigChange) error {
	query := `
		INSERT INTO config_changes (device_id, ssid, chat_id, saved_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	return db.QueryRowContext(ctx, query, change.DeviceID, change.SSID, change.ChatID, change.SavedAt).Scan(&change.ID)
}

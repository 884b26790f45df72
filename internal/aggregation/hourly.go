package aggregation

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Execer is satisfied by *database.DB
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

const hourlyQuery = `
	INSERT INTO hourly_readings (
		device_id, hour_start, avg_temp, avg_humidity, max_gas, max_smoke,
		avg_sound, danger_samples, fan_samples, sample_count
	)
	SELECT
		device_id,
		$1 AS hour_start,
		AVG(temperature),
		AVG(humidity),
		MAX(gas),
		MAX(smoke),
		AVG(sound),
		COUNT(*) FILTER (WHERE level = 'danger'),
		COUNT(*) FILTER (WHERE fan),
		COUNT(*)
	FROM readings
	WHERE recorded_at >= $1 AND recorded_at < $2
	GROUP BY device_id
	ON CONFLICT (device_id, hour_start) DO UPDATE
	SET
		avg_temp = EXCLUDED.avg_temp,
		avg_humidity = EXCLUDED.avg_humidity,
		max_gas = EXCLUDED.max_gas,
		max_smoke = EXCLUDED.max_smoke,
		avg_sound = EXCLUDED.avg_sound,
		danger_samples = EXCLUDED.danger_samples,
		fan_samples = EXCLUDED.fan_samples,
		sample_count = EXCLUDED.sample_count
`

// HourlyAggregator rolls raw readings up into one row per classroom and hour
type HourlyAggregator struct {
	db     Execer
	logger *zap.Logger
}

func NewHourlyAggregator(db Execer, logger *zap.Logger) *HourlyAggregator {
	return &HourlyAggregator{db: db, logger: logger}
}

// Aggregate rolls up the hour containing target
func (h *HourlyAggregator) Aggregate(ctx context.Context, target time.Time) error {
	start := target.Truncate(time.Hour)
	end := start.Add(time.Hour)

	result, err := h.db.ExecContext(ctx, hourlyQuery, start, end)
	if err != nil {
		return fmt.Errorf("failed to aggregate hour %s: %w", start.Format(time.RFC3339), err)
	}

	rows, _ := result.RowsAffected()
	h.logger.Info("hourly rollup complete", zap.Time("hour", start), zap.Int64("classrooms", rows))
	return nil
}

// AggregatePreviousHour rolls up the last complete hour before now
func (h *HourlyAggregator) AggregatePreviousHour(ctx context.Context, now time.Time) error {
	return h.Aggregate(ctx, now.Add(-time.Hour))
}

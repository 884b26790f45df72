package aggregation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const dailyQuery = `
	INSERT INTO daily_reports (
		device_id, day, min_temp, max_temp, min_humidity, max_humidity,
		max_gas, max_smoke, danger_samples, alert_count
	)
	SELECT
		h.device_id,
		$1::date,
		MIN(h.avg_temp),
		MAX(h.avg_temp),
		MIN(h.avg_humidity),
		MAX(h.avg_humidity),
		MAX(h.max_gas),
		MAX(h.max_smoke),
		SUM(h.danger_samples),
		(SELECT COUNT(*) FROM alerts_log a
		 WHERE a.device_id = h.device_id AND a.start_time >= $1 AND a.start_time < $2)
	FROM hourly_readings h
	WHERE h.hour_start >= $1 AND h.hour_start < $2
	GROUP BY h.device_id
	ON CONFLICT (device_id, day) DO UPDATE
	SET
		min_temp = EXCLUDED.min_temp,
		max_temp = EXCLUDED.max_temp,
		min_humidity = EXCLUDED.min_humidity,
		max_humidity = EXCLUDED.max_humidity,
		max_gas = EXCLUDED.max_gas,
		max_smoke = EXCLUDED.max_smoke,
		danger_samples = EXCLUDED.danger_samples,
		alert_count = EXCLUDED.alert_count
`

// DailyAggregator summarises a school day from the hourly rollups
type DailyAggregator struct {
	db     Execer
	logger *zap.Logger
}

func NewDailyAggregator(db Execer, logger *zap.Logger) *DailyAggregator {
	return &DailyAggregator{db: db, logger: logger}
}

// Aggregate summarises the local calendar day containing target
func (d *DailyAggregator) Aggregate(ctx context.Context, target time.Time) error {
	start := startOfDay(target)
	end := start.AddDate(0, 0, 1)

	result, err := d.db.ExecContext(ctx, dailyQuery, start, end)
	if err != nil {
		return fmt.Errorf("failed to aggregate day %s: %w", start.Format("2006-01-02"), err)
	}

	rows, _ := result.RowsAffected()
	d.logger.Info("daily report complete", zap.String("day", start.Format("2006-01-02")), zap.Int64("classrooms", rows))
	return nil
}

// AggregatePreviousDay summarises yesterday relative to now
func (d *DailyAggregator) AggregatePreviousDay(ctx context.Context, now time.Time) error {
	return d.Aggregate(ctx, now.AddDate(0, 0, -1))
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

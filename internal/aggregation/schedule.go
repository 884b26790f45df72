package aggregation

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs the rollups on cron schedules
type Scheduler struct {
	cron   *cron.Cron
	hourly *HourlyAggregator
	daily  *DailyAggregator
	logger *zap.Logger
	now    func() time.Time
}

// NewScheduler registers both jobs. Specs are five-field cron expressions,
// e.g. "5 * * * *" for five past every hour.
func NewScheduler(db Execer, hourlySpec, dailySpec string, logger *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:   cron.New(),
		hourly: NewHourlyAggregator(db, logger.Named("hourly")),
		daily:  NewDailyAggregator(db, logger.Named("daily")),
		logger: logger,
		now:    time.Now,
	}

	if _, err := s.cron.AddFunc(hourlySpec, s.runHourly); err != nil {
		return nil, fmt.Errorf("invalid hourly schedule %q: %w", hourlySpec, err)
	}
	if _, err := s.cron.AddFunc(dailySpec, s.runDaily); err != nil {
		return nil, fmt.Errorf("invalid daily schedule %q: %w", dailySpec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	for _, e := range s.cron.Entries() {
		s.logger.Info("rollup scheduled", zap.Time("next_run", e.Next))
	}
}

// Stop waits for a running job to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runHourly() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := s.hourly.AggregatePreviousHour(ctx, s.now()); err != nil {
		s.logger.Error("hourly rollup failed", zap.Error(err))
	}
}

func (s *Scheduler) runDaily() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if err := s.daily.AggregatePreviousDay(ctx, s.now()); err != nil {
		s.logger.Error("daily report failed", zap.Error(err))
	}
}

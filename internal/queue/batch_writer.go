package queue

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/smukkama/smartclass/internal/database"
	"github.com/smukkama/smartclass/internal/protocol"
)

const consumeRetryDelay = time.Second

// MessageSource is the part of Consumer the writer needs
type MessageSource interface {
	Consume(ctx context.Context) (kafka.Message, error)
	Commit(ctx context.Context, msgs ...kafka.Message) error
}

// Archive stores decoded events
type Archive interface {
	InsertReadings(ctx context.Context, readings []database.Reading) error
	OpenAlert(ctx context.Context, alert *database.AlertLog) error
	CloseAlert(ctx context.Context, deviceID, metric string, endTime time.Time) (bool, error)
	InsertConfigChange(ctx context.Context, change *database.ConfigChange) error
}

// BatchWriter consumes device events and writes them to the archive in
// batches. Offsets are committed only after a batch is stored.
type BatchWriter struct {
	source        MessageSource
	archive       Archive
	batchSize     int
	flushInterval time.Duration
	logger        *zap.Logger
	now           func() time.Time
	stopCh        chan struct{}
	stopConsume   context.CancelFunc
	wg            sync.WaitGroup
}

// NewBatchWriter creates a new batch writer
func NewBatchWriter(source MessageSource, archive Archive, batchSize int, flushInterval time.Duration, logger *zap.Logger) *BatchWriter {
	if batchSize < 1 {
		batchSize = 100
	}
	if flushInterval <= 0 {
		flushInterval = 5 * time.Second
	}

	return &BatchWriter{
		source:        source,
		archive:       archive,
		batchSize:     batchSize,
		flushInterval: flushInterval,
		logger:        logger,
		now:           time.Now,
		stopCh:        make(chan struct{}),
	}
}

// Start begins consuming and writing to the archive
func (bw *BatchWriter) Start(ctx context.Context) error {
	msgChan := make(chan kafka.Message, bw.batchSize)
	consumeCtx, cancel := context.WithCancel(ctx)
	bw.stopConsume = cancel

	bw.wg.Add(2)
	go bw.consume(consumeCtx, msgChan)
	go bw.run(ctx, msgChan)
	return nil
}

// Stop flushes what was consumed and waits for both goroutines
func (bw *BatchWriter) Stop() {
	close(bw.stopCh)
	if bw.stopConsume != nil {
		bw.stopConsume()
	}
	bw.wg.Wait()
}

func (bw *BatchWriter) consume(ctx context.Context, out chan<- kafka.Message) {
	defer bw.wg.Done()

	for {
		msg, err := bw.source.Consume(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			bw.logger.Warn("consumer error", zap.Error(err))
			select {
			case <-time.After(consumeRetryDelay):
				continue
			case <-bw.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}

		select {
		case out <- msg:
		case <-bw.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (bw *BatchWriter) run(ctx context.Context, in <-chan kafka.Message) {
	defer bw.wg.Done()

	var batch []kafka.Message
	ticker := time.NewTicker(bw.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-bw.stopCh:
			// the parent context may already be gone
			flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			bw.flush(flushCtx, batch)
			cancel()
			return

		case <-ctx.Done():
			return

		case <-ticker.C:
			if len(batch) > 0 {
				bw.logger.Debug("flush interval reached", zap.Int("messages", len(batch)))
				bw.flush(ctx, batch)
				batch = nil
			}

		case msg := <-in:
			batch = append(batch, msg)
			if len(batch) >= bw.batchSize {
				bw.flush(ctx, batch)
				batch = nil
			}
		}
	}
}

func (bw *BatchWriter) flush(ctx context.Context, batch []kafka.Message) {
	if len(batch) == 0 {
		return
	}

	var readings []database.Reading
	others := 0
	for _, msg := range batch {
		ev, err := protocol.DecodeEvent(msg.Value)
		if err != nil {
			// unreadable messages are skipped, not retried
			bw.logger.Warn("dropping undecodable message",
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			continue
		}

		if ev.Kind == protocol.EventReading {
			r, err := bw.toReading(ev)
			if err != nil {
				bw.logger.Warn("dropping bad reading", zap.String("event_id", ev.ID), zap.Error(err))
				continue
			}
			readings = append(readings, r)
			continue
		}

		if err := bw.store(ctx, ev); err != nil {
			bw.logger.Error("failed to store event", zap.String("kind", string(ev.Kind)), zap.Error(err))
			return
		}
		others++
	}

	if err := bw.archive.InsertReadings(ctx, readings); err != nil {
		bw.logger.Error("failed to insert readings, batch will be redelivered", zap.Int("readings", len(readings)), zap.Error(err))
		return
	}

	if err := bw.source.Commit(ctx, batch...); err != nil {
		bw.logger.Error("failed to commit offsets", zap.Error(err))
		return
	}

	bw.logger.Info("flushed batch",
		zap.Int("messages", len(batch)),
		zap.Int("readings", len(readings)),
		zap.Int("other_events", others),
	)
}

func (bw *BatchWriter) toReading(ev *protocol.Event) (database.Reading, error) {
	p, err := ev.Reading()
	if err != nil {
		return database.Reading{}, err
	}
	return database.Reading{
		DeviceID:    ev.DeviceID,
		RecordedAt:  ev.At,
		Temperature: p.Temperature,
		Humidity:    p.Humidity,
		Gas:         p.Gas,
		Smoke:       p.Smoke,
		Sound:       p.Sound,
		Level:       p.Level,
		Mood:        p.Mood,
		Fan:         p.Fan,
		Lamp:        p.Lamp,
		ReceivedAt:  bw.now(),
	}, nil
}

func (bw *BatchWriter) store(ctx context.Context, ev *protocol.Event) error {
	switch ev.Kind {
	case protocol.EventAlert:
		p, err := ev.Alert()
		if err != nil {
			return err
		}
		return bw.archive.OpenAlert(ctx, &database.AlertLog{
			DeviceID:    ev.DeviceID,
			Metric:      p.Metric,
			BreachValue: p.Value,
			Text:        p.Text,
			StartTime:   p.BreachStart,
		})

	case protocol.EventAlertCleared:
		p, err := ev.Alert()
		if err != nil {
			return err
		}
		found, err := bw.archive.CloseAlert(ctx, ev.DeviceID, p.Metric, ev.At)
		if err != nil {
			return err
		}
		if !found {
			bw.logger.Debug("cleared alert had no open row", zap.String("metric", p.Metric))
		}
		return nil

	case protocol.EventConfigChanged:
		p, err := ev.Config()
		if err != nil {
			return err
		}
		return bw.archive.InsertConfigChange(ctx, &database.ConfigChange{
			DeviceID: ev.DeviceID,
			SSID:     p.Settings.SSID,
			ChatID:   p.Settings.ChatID,
			SavedAt:  p.Settings.SavedAt,
		})

	default:
		bw.logger.Warn("skipping unknown event kind", zap.String("kind", string(ev.Kind)))
		return nil
	}
}

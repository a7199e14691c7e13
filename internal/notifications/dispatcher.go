package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/snapnest/booking-backend/internal/submission"
	"github.com/snapnest/booking-backend/pkg/logger"
	"github.com/snapnest/booking-backend/pkg/metrics"
)

const (
	sinkPubSub   = "pubsub"
	sinkBigQuery = "bigquery"

	defaultTimeout = 10 * time.Second
)

// Publisher sends the booking event that drives customer and staff email.
type Publisher interface {
	Publish(ctx context.Context, data []byte, attributes map[string]string) (string, error)
}

// RowInserter appends analytics rows.
type RowInserter interface {
	InsertBookingRows(ctx context.Context, rows []any) error
}

// Config wires the optional sinks. A nil sink is skipped.
type Config struct {
	Publisher Publisher
	Inserter  RowInserter
	Timeout   time.Duration
	Retry     RetryPolicy
}

// Dispatcher delivers stored bookings to every sink in the background. The
// submit path never waits on it and never sees its errors.
type Dispatcher struct {
	publisher Publisher
	inserter  RowInserter
	timeout   time.Duration
	retry     RetryPolicy
	logg      *logger.Logger
	metrics   *metrics.BookingMetrics
	wg        sync.WaitGroup
}

func NewDispatcher(cfg Config, logg *logger.Logger, m *metrics.BookingMetrics) (*Dispatcher, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Dispatcher{
		publisher: cfg.Publisher,
		inserter:  cfg.Inserter,
		timeout:   timeout,
		retry:     cfg.Retry.withDefaults(),
		logg:      logg,
		metrics:   m,
	}, nil
}

// BookingSubmitted schedules delivery and returns immediately. Request
// cancellation does not cut delivery short; the dispatcher timeout does.
func (d *Dispatcher) BookingSubmitted(ctx context.Context, payload submission.Payload) {
	if d == nil {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		deliverCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()
		if err := d.Deliver(deliverCtx, payload); err != nil {
			d.logg.Error(deliverCtx, "booking notification delivery failed", err)
		}
	}()
}

// Deliver sends payload to every configured sink and returns the combined error.
func (d *Dispatcher) Deliver(ctx context.Context, payload submission.Payload) error {
	var errs error
	if d.publisher != nil {
		if err := d.retry.do(ctx, func(ctx context.Context) error { return d.publish(ctx, payload) }); err != nil {
			d.metrics.IncNotificationFailure(sinkPubSub)
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", sinkPubSub, err))
		}
	}
	if d.inserter != nil {
		if err := d.retry.do(ctx, func(ctx context.Context) error { return d.insert(ctx, payload) }); err != nil {
			d.metrics.IncNotificationFailure(sinkBigQuery)
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", sinkBigQuery, err))
		}
	}
	return errs
}

// Wait blocks until in-flight deliveries finish or ctx ends.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) publish(ctx context.Context, payload submission.Payload) error {
	env := newEnvelope(payload)
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	id, err := d.publisher.Publish(ctx, data, env.attributes())
	if err != nil {
		return err
	}
	d.logg.Debug(d.logg.WithField(ctx, "message_id", id), "booking event published")
	return nil
}

func (d *Dispatcher) insert(ctx context.Context, payload submission.Payload) error {
	row, err := newBookingRow(payload)
	if err != nil {
		return err
	}
	return d.inserter.InsertBookingRows(ctx, []any{&row})
}

package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mlindgren/klimatlogg/internal/pkg/model"
)

type reader interface {
	FetchAll(ctx context.Context) model.Readings
}

// Loop republishes the dashboard view on a fixed cadence. It is purely
// timer-driven; writes do not trigger it.
type Loop struct {
	reader    reader
	interval  time.Duration
	maxPoints int
	clock     func() time.Time
	logger    *zap.Logger
}

func NewLoop(reader reader, interval time.Duration, maxPoints int, opts ...func(*Loop)) *Loop {
	l := &Loop{
		reader:    reader,
		interval:  interval,
		maxPoints: maxPoints,
		clock:     time.Now,
		logger:    zap.L(),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// WithClock replaces the wall clock, used by tests.
func WithClock(clock func() time.Time) func(*Loop) {
	return func(l *Loop) {
		l.clock = clock
	}
}

// Run publishes once immediately, then on every interval tick until ctx is
// cancelled.
func (l *Loop) Run(ctx context.Context) error {
	l.Tick(ctx)

	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", l.interval), func() {
		l.Tick(ctx)
	}); err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		c.Stop()
	}()

	c.Run()
	return ctx.Err()
}

// Tick performs one refresh: point-in-time snapshot, derived view, fan-out.
func (l *Loop) Tick(ctx context.Context) {
	readings := l.reader.FetchAll(ctx)
	view := BuildView(readings, l.clock(), l.maxPoints)

	if view.NoData {
		l.logger.Info("refresh tick: no readings available")
	} else {
		l.logger.Info("refresh tick",
			zap.String("latest_temperature", view.LatestTemperature),
			zap.String("latest_humidity", view.LatestHumidity),
			zap.Int("readings", len(readings)),
		)
	}

	publishView(ctx, view)
}

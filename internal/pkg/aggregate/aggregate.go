package aggregate

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mlindgren/klimatlogg/internal/pkg/database"
	"github.com/mlindgren/klimatlogg/internal/pkg/model"
)

type store interface {
	FetchAllReadings(ctx context.Context) (model.Readings, error)
}

// Reader serves the dashboard's read path. It never fails its caller: any
// connect, query or conversion error is logged and degraded to an empty
// result, keeping the 30-second polling surface responsive while the store
// is unreachable.
type Reader struct {
	store   store
	loc     *time.Location
	timeout time.Duration
	logger  *zap.Logger
}

func NewReader(store store, loc *time.Location, timeout time.Duration) *Reader {
	return &Reader{
		store:   store,
		loc:     loc,
		timeout: timeout,
		logger:  zap.L(),
	}
}

// FetchAll returns the full history most-recent-first with timestamps in the
// display timezone, or an empty sequence on any internal failure.
func (r *Reader) FetchAll(ctx context.Context) model.Readings {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	readings, err := r.store.FetchAllReadings(ctx)
	if err != nil {
		r.logger.Error("failed to fetch readings, degrading to empty result",
			zap.String("failure_class", string(database.Classify(err))),
			zap.Error(err),
		)
		return nil
	}
	return readings.InLocation(r.loc)
}

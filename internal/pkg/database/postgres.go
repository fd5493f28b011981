package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/mlindgren/klimatlogg/internal/pkg/retry"
)

// ErrUnavailable is returned once the connection retry budget is exhausted.
// Callers get this instead of the underlying dial error.
var ErrUnavailable = errors.New("database unavailable")

// FailureClass buckets connection failures for log diagnosis. All classes
// are retried identically; the class only changes what gets logged.
type FailureClass string

const (
	FailureNetwork      FailureClass = "network"
	FailureServer       FailureClass = "server"
	FailureUnclassified FailureClass = "unclassified"
)

func Classify(err error) FailureClass {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return FailureNetwork
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return FailureServer
	}
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return FailureNetwork
	}
	return FailureUnclassified
}

type connectFunc func(ctx context.Context, dsn string) (*pgx.Conn, error)

// Connector owns store-connection acquisition. Acquire applies the bounded
// retry policy; Dial is a single attempt for callers that must not block on
// retries (the dashboard read path).
type Connector struct {
	dsn     string
	policy  retry.Policy
	connect connectFunc
	logger  *zap.Logger
}

func NewConnector(dsn string, policy retry.Policy, opts ...func(*Connector)) *Connector {
	c := &Connector{
		dsn:    dsn,
		policy: policy,
		connect: func(ctx context.Context, dsn string) (*pgx.Conn, error) {
			return pgx.Connect(ctx, dsn)
		},
		logger: zap.L(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// WithConnectFunc replaces the dial function, used by tests.
func WithConnectFunc(fn connectFunc) func(*Connector) {
	return func(c *Connector) {
		c.connect = fn
	}
}

func (c *Connector) Acquire(ctx context.Context) (*pgx.Conn, error) {
	var conn *pgx.Conn
	attempt := 0
	err := c.policy.Do(ctx, func(ctx context.Context) error {
		attempt++
		c.logger.Info("connecting to database",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", c.policy.MaxAttempts),
		)
		var err error
		conn, err = c.connect(ctx, c.dsn)
		return err
	}, func(attempt int, err error) {
		c.logger.Error("database connection failed",
			zap.Int("attempt", attempt),
			zap.String("failure_class", string(Classify(err))),
			zap.Error(err),
		)
	})
	if err != nil {
		c.logger.Error("database connection attempts exhausted", zap.Int("attempts", attempt))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return conn, nil
}

// Dial makes exactly one connection attempt, bypassing the retry policy.
func (c *Connector) Dial(ctx context.Context) (*pgx.Conn, error) {
	return c.connect(ctx, c.dsn)
}

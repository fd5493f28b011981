package database

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/mlindgren/klimatlogg/internal/pkg/retry"
)

func noSleep() func(*retry.Policy) {
	return retry.WithSleep(func(_ context.Context, _ time.Duration) error { return nil })
}

func newTestConnector(t *testing.T, attempts int, fn connectFunc) *Connector {
	t.Helper()
	original := zap.L()
	zap.ReplaceGlobals(zaptest.NewLogger(t))
	t.Cleanup(func() { zap.ReplaceGlobals(original) })

	return NewConnector("postgres://ignored", retry.NewPolicy(attempts, 2*time.Second, noSleep()), WithConnectFunc(fn))
}

func TestAcquire_SucceedsAfterTransientFailure(t *testing.T) {
	calls := 0
	c := newTestConnector(t, 3, func(ctx context.Context, dsn string) (*pgx.Conn, error) {
		calls++
		if calls < 2 {
			return nil, &net.OpError{Op: "dial", Err: errors.New("connection refused")}
		}
		return nil, nil
	})

	_, err := c.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestAcquire_ExhaustsBudget(t *testing.T) {
	calls := 0
	c := newTestConnector(t, 3, func(ctx context.Context, dsn string) (*pgx.Conn, error) {
		calls++
		return nil, errors.New("no route to host")
	})

	_, err := c.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 3, calls)
}

func TestDial_SingleAttempt(t *testing.T) {
	calls := 0
	c := newTestConnector(t, 3, func(ctx context.Context, dsn string) (*pgx.Conn, error) {
		calls++
		return nil, errors.New("down")
	})

	_, err := c.Dial(context.Background())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 1, calls)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailureClass
	}{
		{
			name: "dial error is network",
			err:  &net.OpError{Op: "dial", Err: errors.New("connection refused")},
			want: FailureNetwork,
		},
		{
			name: "postgres error is server",
			err:  &pgconn.PgError{Code: "28P01", Message: "password authentication failed"},
			want: FailureServer,
		},
		{
			name: "anything else is unclassified",
			err:  errors.New("boom"),
			want: FailureUnclassified,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.err))
		})
	}
}

package database

import (
	"context"

	"go.uber.org/zap"

	"github.com/mlindgren/klimatlogg/internal/pkg/model"
)

// Store performs reading persistence. Every operation obtains and releases
// its own connection; nothing is pooled or shared across requests.
type Store struct {
	connector *Connector
	logger    *zap.Logger
}

func NewStore(connector *Connector) *Store {
	return &Store{
		connector: connector,
		logger:    zap.L(),
	}
}

// InsertReading persists a single reading inside a transaction. The
// connection is acquired through the retrying connector and closed on every
// exit path.
func (s *Store) InsertReading(ctx context.Context, r model.Reading) error {
	conn, err := s.connector.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO readings (temperature, humidity, recorded_at)
		VALUES ($1, $2, $3)
	`, r.Temperature, r.Humidity, r.RecordedAt.UTC()); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

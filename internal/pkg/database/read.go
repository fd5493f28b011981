package database

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/mlindgren/klimatlogg/internal/pkg/model"
)

// FetchAllReadings returns the full reading history, most recent first.
// This path dials a fresh connection with a single attempt; retrying here
// would stall the dashboard tick it serves.
func (s *Store) FetchAllReadings(ctx context.Context) (model.Readings, error) {
	conn, err := s.connector.Dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close(ctx)

	rows, err := conn.Query(ctx, `
		SELECT id, temperature, humidity, recorded_at
		FROM readings
		ORDER BY recorded_at DESC;
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanReadings(rows)
}

func scanReadings(rows pgx.Rows) (model.Readings, error) {
	var readings model.Readings
	for rows.Next() {
		var r model.Reading
		if err := rows.Scan(&r.Id, &r.Temperature, &r.Humidity, &r.RecordedAt); err != nil {
			return nil, err
		}
		readings = append(readings, r)
	}

	if err := rows.Err(); err != nil {
		if err == pgx.ErrNoRows {
			return readings, nil
		}
		return nil, err
	}

	return readings, nil
}

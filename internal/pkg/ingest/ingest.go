package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mlindgren/klimatlogg/internal/pkg/database"
	"github.com/mlindgren/klimatlogg/internal/pkg/model"
)

var (
	// ErrValidation means client-supplied data was malformed. Never retried,
	// always a client-error response; the store is never contacted.
	ErrValidation = errors.New("invalid reading payload")

	// ErrStoreUnavailable means no connection could be established within the
	// connector's retry budget.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrWrite means a connection was established but the insert failed.
	ErrWrite = errors.New("store write failed")
)

type store interface {
	InsertReading(ctx context.Context, r model.Reading) error
}

// Service validates inbound payloads, assigns server-side timestamps and
// performs the transactional insert.
//
// Timestamps are always taken from the server clock at arrival, never from
// the payload. A reading therefore reflects network arrival time, not the
// sensing instant; the sensor's own clock is deliberately not trusted.
type Service struct {
	store  store
	loc    *time.Location
	clock  func() time.Time
	logger *zap.Logger
}

func New(store store, loc *time.Location, opts ...func(*Service)) *Service {
	s := &Service{
		store:  store,
		loc:    loc,
		clock:  time.Now,
		logger: zap.L(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// WithClock replaces the wall clock, used by tests.
func WithClock(clock func() time.Time) func(*Service) {
	return func(s *Service) {
		s.clock = clock
	}
}

// Ingest validates payload, stamps it with the current local time converted
// to UTC and persists it. Validation short-circuits before any store access.
func (s *Service) Ingest(ctx context.Context, payload map[string]any) (model.Reading, error) {
	temperature, err := floatField(payload, "temperature")
	if err != nil {
		s.logger.Warn("rejected reading", zap.Error(err))
		return model.Reading{}, err
	}
	humidity, err := floatField(payload, "humidity")
	if err != nil {
		s.logger.Warn("rejected reading", zap.Error(err))
		return model.Reading{}, err
	}

	// Local civil time first, then UTC for storage. The offset is not
	// constant across DST transitions, so the conversion goes through the
	// configured location rather than a fixed offset.
	now := s.clock().In(s.loc)
	reading := model.Reading{
		Temperature: temperature,
		Humidity:    humidity,
		RecordedAt:  now.UTC(),
	}

	if err := s.store.InsertReading(ctx, reading); err != nil {
		if errors.Is(err, database.ErrUnavailable) {
			s.logger.Error("store unavailable for reading", zap.Error(err))
			return model.Reading{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		s.logger.Error("failed to write reading", zap.Error(err))
		return model.Reading{}, fmt.Errorf("%w: %v", ErrWrite, err)
	}

	s.logger.Info("reading stored",
		zap.Float64("temperature", reading.Temperature),
		zap.Float64("humidity", reading.Humidity),
		zap.Time("recorded_at", reading.RecordedAt),
	)
	return reading, nil
}

// floatField accepts JSON numbers as well as numeric strings, matching the
// coercion the sensor fleet has relied on so far.
func floatField(payload map[string]any, key string) (float64, error) {
	raw, ok := payload[key]
	if !ok || raw == nil {
		return 0, fmt.Errorf("%w: missing %s", ErrValidation, key)
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %s is not numeric", ErrValidation, key)
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s is not numeric", ErrValidation, key)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: %s is not numeric", ErrValidation, key)
	}
}

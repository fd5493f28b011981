package model

import "time"

// Reading is one persisted temperature+humidity record. RecordedAt is
// assigned server-side at ingestion time and stored in UTC.
type Reading struct {
	Id          int64     `json:"id"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	RecordedAt  time.Time `json:"recorded_at"`
}

type Readings []Reading

// InLocation returns a copy of the readings with every timestamp shifted
// into loc. Storage order is preserved.
func (rs Readings) InLocation(loc *time.Location) Readings {
	out := make(Readings, len(rs))
	for i, r := range rs {
		r.RecordedAt = r.RecordedAt.In(loc)
		out[i] = r
	}
	return out
}

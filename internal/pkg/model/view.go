package model

import "time"

// NoDataText is published for the chart and both live values whenever the
// store yields nothing. The dashboard never sees an error, only this.
const NoDataText = "no data available"

type Point struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

type Series struct {
	Name   string  `json:"name"`
	Unit   string  `json:"unit"`
	Points []Point `json:"points"`
}

// View is the derived projection driving the dashboard: two chronological
// chart series plus the latest scalars formatted for display. It is rebuilt
// on every refresh tick and never persisted.
type View struct {
	GeneratedAt       time.Time `json:"generated_at"`
	NoData            bool      `json:"no_data"`
	Series            []Series  `json:"series,omitempty"`
	LatestTemperature string    `json:"latest_temperature"`
	LatestHumidity    string    `json:"latest_humidity"`
}

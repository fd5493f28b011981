package dashboard

import (
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/mlindgren/klimatlogg/internal/pkg/model"
)

// BuildView derives the dashboard projection from readings ordered most
// recent first. maxPoints caps each chart series to the newest points;
// zero means no cap. An empty input yields the no-data view rather than an
// error.
func BuildView(readings model.Readings, now time.Time, maxPoints int) model.View {
	if len(readings) == 0 {
		return model.View{
			GeneratedAt:       now,
			NoData:            true,
			LatestTemperature: model.NoDataText,
			LatestHumidity:    model.NoDataText,
		}
	}

	// Charts read left to right, so flip the descending sequence. The
	// latest scalars come straight from index 0 of the original order.
	chronological := lo.Reverse(append(model.Readings{}, readings...))
	if maxPoints > 0 && len(chronological) > maxPoints {
		chronological = chronological[len(chronological)-maxPoints:]
	}

	latest := readings[0]
	return model.View{
		GeneratedAt: now,
		Series: []model.Series{
			{
				Name: "Temperature",
				Unit: "°C",
				Points: lo.Map(chronological, func(r model.Reading, _ int) model.Point {
					return model.Point{Time: r.RecordedAt, Value: r.Temperature}
				}),
			},
			{
				Name: "Humidity",
				Unit: "%",
				Points: lo.Map(chronological, func(r model.Reading, _ int) model.Point {
					return model.Point{Time: r.RecordedAt, Value: r.Humidity}
				}),
			},
		},
		LatestTemperature: fmt.Sprintf("%.2f°C", latest.Temperature),
		LatestHumidity:    fmt.Sprintf("%.2f%%", latest.Humidity),
	}
}

package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gosimple/slug"

	"github.com/mlindgren/klimatlogg/internal/pkg/model"
)

// Publish implements the dashboard surface: the two latest scalars go to
// per-sensor state topics and the whole view to a single dashboard topic,
// so both plain MQTT consumers and chart frontends can subscribe.
func (s *service) Publish(_ context.Context, view model.View) error {
	states := map[string]string{
		"Live Temperature": view.LatestTemperature,
		"Live Humidity":    view.LatestHumidity,
	}
	for name, value := range states {
		topic := fmt.Sprintf("%s/sensor/%s/state", s.topicRoot, slug.Make(name))
		payload, err := json.Marshal(map[string]string{"value": value})
		if err != nil {
			return err
		}
		if err := s.publish(topic, payload); err != nil {
			return err
		}
	}

	viewPayload, err := json.Marshal(view)
	if err != nil {
		return err
	}
	return s.publish(fmt.Sprintf("%s/dashboard/view", s.topicRoot), viewPayload)
}

func (s *service) publish(topic string, payload []byte) error {
	token := s.client.Publish(topic, s.qos, true, payload)
	if err := token.Error(); err != nil {
		return err
	}
	token.WaitTimeout(time.Second * 5)
	return token.Error()
}

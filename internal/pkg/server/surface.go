package server

import (
	"context"
	"encoding/json"

	"github.com/mlindgren/klimatlogg/internal/pkg/model"
	"github.com/mlindgren/klimatlogg/pkg/sockets"
)

// HubSurface adapts the websocket hub to the dashboard surface contract:
// every refresh tick's view is broadcast as JSON to connected dashboards.
type HubSurface struct {
	hub *sockets.Hub
}

func NewHubSurface(hub *sockets.Hub) *HubSurface {
	return &HubSurface{hub: hub}
}

func (s *HubSurface) Publish(_ context.Context, view model.View) error {
	payload, err := json.Marshal(view)
	if err != nil {
		return err
	}
	return s.hub.Broadcast(payload)
}

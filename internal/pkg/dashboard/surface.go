package dashboard

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/mlindgren/klimatlogg/internal/pkg/model"
)

var errAlreadyRegistered = errors.New("surface already registered")

var (
	mu                 sync.Mutex
	registeredSurfaces = make(map[string]Surface)
)

// Surface is a rendering destination for the dashboard view: the websocket
// hub, an MQTT broker, or anything else that shows current values.
type Surface interface {
	Publish(ctx context.Context, view model.View) error
}

func RegisterSurface(name string, surface Surface) error {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := registeredSurfaces[name]; ok {
		return errAlreadyRegistered
	}
	registeredSurfaces[name] = surface
	return nil
}

// publishView fans the view out to every registered surface. A failing
// surface is logged and skipped; one broken consumer must not starve the
// others or the refresh loop.
func publishView(ctx context.Context, view model.View) {
	mu.Lock()
	surfaces := make(map[string]Surface, len(registeredSurfaces))
	for name, s := range registeredSurfaces {
		surfaces[name] = s
	}
	mu.Unlock()

	for name, surface := range surfaces {
		if err := surface.Publish(ctx, view); err != nil {
			zap.L().Error("failed to publish view", zap.Error(err), zap.String("surface", name))
			continue
		}
		zap.L().Debug("published view", zap.String("surface", name), zap.Bool("no_data", view.NoData))
	}
}

package alert

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// deliveryTimeout bounds one webhook delivery including its retries.
const deliveryTimeout = 30 * time.Second

// Dispatcher fans events out to the webhooks whose Events list matches.
type Dispatcher struct {
	configs []AlertConfig
	logger  *zap.Logger
	wg      sync.WaitGroup
}

// NewDispatcher returns nil when configs is empty; callers nil-check.
func NewDispatcher(configs []AlertConfig, logger *zap.Logger) *Dispatcher {
	if len(configs) == 0 {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{configs: configs, logger: logger}
}

// Dispatch sends event to every matching webhook in the background.
// A config matches on the event decision ("reject") or kind ("schema").
func (d *Dispatcher) Dispatch(event AlertEvent) {
	for _, cfg := range d.configs {
		if !matches(cfg.Events, event) {
			continue
		}
		d.wg.Add(1)
		go func(cfg AlertConfig) {
			defer d.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
			defer cancel()
			if err := Send(ctx, cfg, event); err != nil {
				d.logger.Warn("alert delivery failed",
					zap.String("url", cfg.URL),
					zap.String("id", event.ID),
					zap.Error(err))
			}
		}(cfg)
	}
}

// Wait blocks until every in-flight delivery has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func matches(events []string, event AlertEvent) bool {
	for _, e := range events {
		if e == event.Decision || e == event.Kind {
			return true
		}
	}
	return false
}

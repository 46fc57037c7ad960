package worker

import (
	"context"
	"time"

	"github.com/careflowhq/frontdesk/internal/service/queuestats"
	"github.com/careflowhq/frontdesk/internal/service/registry"
	"github.com/careflowhq/frontdesk/pkg/logger"
	"github.com/careflowhq/frontdesk/pkg/messaging"
)

type PollerConfig struct {
	PollInterval time.Duration
}

// Poller periodically pulls a snapshot per department through the stats
// service (which refreshes the cache and the prometheus gauges) and
// publishes the derived stats for dashboard subscribers.
type Poller struct {
	stats    *queuestats.Service
	registry *registry.Service
	broker   messaging.Broker
	config   PollerConfig
	logger   *logger.Logger
}

func NewPoller(
	stats *queuestats.Service,
	reg *registry.Service,
	broker messaging.Broker,
	config PollerConfig,
	log *logger.Logger,
) *Poller {
	if config.PollInterval <= 0 {
		config.PollInterval = 15 * time.Second
	}
	return &Poller{
		stats:    stats,
		registry: reg,
		broker:   broker,
		config:   config,
		logger:   log,
	}
}

func (p *Poller) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.logger.Info("queue poller started", "interval", p.config.PollInterval.String())

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("queue poller stopped")
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	for _, department := range p.registry.List() {
		stats, err := p.stats.DepartmentStats(ctx, department.ID)
		if err != nil {
			p.logger.Warn("snapshot poll failed", "department", department.ID, "error", err.Error())
			continue
		}

		if p.broker == nil {
			continue
		}
		msg := messaging.Message{Type: messaging.ChannelQueueUpdated, Payload: stats}
		if err := p.broker.Publish(ctx, messaging.ChannelQueueUpdated, msg); err != nil {
			p.logger.Warn("failed to publish queue update", "department", department.ID, "error", err.Error())
		}
	}
}

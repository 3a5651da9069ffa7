package publisher

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mikey/orden-vaciado/internal/ports"
	"go.uber.org/zap"
)

// Poller refreshes the order on a fixed interval and publishes every result.
// Ticks never overlap: a slow refresh delays the next one
type Poller struct {
	refresher ports.OrderRefresher
	publisher ports.OrderPublisher
	interval  time.Duration
	logger    *zap.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// NewPoller creates a new poller
func NewPoller(refresher ports.OrderRefresher, publisher ports.OrderPublisher, interval time.Duration, logger *zap.Logger) *Poller {
	return &Poller{
		refresher: refresher,
		publisher: publisher,
		interval:  interval,
		logger:    logger,
	}
}

// Start runs a first refresh right away and then one per interval
func (p *Poller) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return errors.New("poller already running")
	}
	if p.interval <= 0 {
		return errors.New("poll interval must be positive")
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true

	p.logger.Info("Order poller starting", zap.Duration("interval", p.interval))
	go p.loop(ctx, p.done)
	return nil
}

// Stop cancels the loop and waits for it to exit
func (p *Poller) Stop() error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	cancel, done := p.cancel, p.done
	p.mu.Unlock()

	cancel()
	<-done
	p.logger.Info("Order poller stopped")
	return nil
}

func (p *Poller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.tick(ctx)
	for {
		select {
		case <-ticker.C:
			p.tick(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	order := p.refresher.Refresh(ctx)
	if order == nil || ctx.Err() != nil {
		return
	}
	if err := p.publisher.Publish(ctx, order); err != nil {
		p.logger.Error("Failed to publish order", zap.Error(err))
		return
	}
	if order.Warn != "" {
		p.logger.Warn("Published stale order", zap.String("warn", order.Warn))
	}
}

var _ ports.OrderPoller = (*Poller)(nil)

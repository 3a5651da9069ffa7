package factory

import (
	"github.com/mikey/orden-vaciado/internal/adapters/publisher"
	"github.com/mikey/orden-vaciado/internal/config"
	"github.com/mikey/orden-vaciado/internal/core"
	"github.com/mikey/orden-vaciado/internal/ports"
	"go.uber.org/zap"
)

// PublisherFactory creates the publisher and poller based on configuration
type PublisherFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *core.OrderService
}

// NewPublisherFactory creates a new publisher factory
func NewPublisherFactory(cfg *config.Config, logger *zap.Logger, service *core.OrderService) *PublisherFactory {
	return &PublisherFactory{
		cfg:     cfg,
		logger:  logger,
		service: service,
	}
}

// CreatePublisher writes to output.path, or stdout when it is empty
func (f *PublisherFactory) CreatePublisher() ports.OrderPublisher {
	path := f.cfg.GetOutput().Path
	if path == "" {
		return publisher.NewWriterPublisher(nil)
	}
	return publisher.NewFilePublisher(path, f.logger)
}

// CreatePoller creates the refresh loop
func (f *PublisherFactory) CreatePoller(pub ports.OrderPublisher) (ports.OrderPoller, error) {
	order, err := f.cfg.GetOrder()
	if err != nil {
		return nil, err
	}
	return publisher.NewPoller(f.service, pub, order.RefreshInterval, f.logger), nil
}

package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/orden-vaciado/internal/adapters/workbook"
	"github.com/mikey/orden-vaciado/internal/config"
	"github.com/mikey/orden-vaciado/internal/core"
	"github.com/mikey/orden-vaciado/internal/factory"
	"github.com/mikey/orden-vaciado/internal/logging"
	"github.com/mikey/orden-vaciado/internal/ports"
	"github.com/mikey/orden-vaciado/internal/sheet"
	"github.com/mikey/orden-vaciado/internal/shift"
	"github.com/mikey/orden-vaciado/internal/table"
)

// BuildContainer creates and configures the dependency injection container of
// the daemon
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideOrderService(container); err != nil {
		return nil, err
	}

	// Register lot source
	if err := container.Provide(func(f *factory.LotSourceFactory) (core.LotSource, error) {
		return f.CreateLotSource()
	}); err != nil {
		return nil, err
	}

	// Register order cache
	if err := container.Provide(func(f *factory.CacheFactory) (core.OrderCache, error) {
		return f.CreateOrderCache()
	}); err != nil {
		return nil, err
	}

	// Register publisher and poller
	if err := container.Provide(factory.NewPublisherFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.PublisherFactory) ports.OrderPublisher {
		return f.CreatePublisher()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.PublisherFactory, pub ports.OrderPublisher) (ports.OrderPoller, error) {
		return f.CreatePoller(pub)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// provideOrderService registers everything the order service needs except the
// cache and the lot source, which differ between the daemon and the CLI
func provideOrderService(container *dig.Container) error {
	// Register factories
	for _, ctor := range []interface{}{
		factory.NewMailboxFactory,
		factory.NewCacheFactory,
		factory.NewLotSourceFactory,
		factory.NewParserFactory,
	} {
		if err := container.Provide(ctor); err != nil {
			return err
		}
	}

	// Register mailbox dialer
	if err := container.Provide(func(f *factory.MailboxFactory) (core.MailboxDialer, error) {
		return f.CreateDialer()
	}); err != nil {
		return err
	}

	// Register workbook opener
	if err := container.Provide(func(logger *zap.Logger) core.WorkbookOpener {
		return workbook.NewExcelOpener(logger)
	}); err != nil {
		return err
	}

	// Register shift clock, extractor and selector
	if err := container.Provide(func(f *factory.ParserFactory) (*shift.Clock, error) {
		return f.CreateClock()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.ParserFactory) *table.Extractor {
		return f.CreateExtractor()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.ParserFactory, ext *table.Extractor) *sheet.Selector {
		return f.CreateSelector(ext)
	}); err != nil {
		return err
	}

	// Register service options
	if err := container.Provide(func(cfg *config.Config, f *factory.LotSourceFactory) core.ServiceOptions {
		mc := cfg.GetMailbox()
		return core.ServiceOptions{
			SubjectContains:  mc.SubjectContains,
			FilenameContains: mc.FilenameContains,
			ContextLimit:     f.GetContextLimit(),
		}
	}); err != nil {
		return err
	}

	// Register order service
	return container.Provide(core.NewOrderService)
}

package di

import (
	"flag"
	"strings"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/orden-vaciado/internal/adapters/lotsource"
	"github.com/mikey/orden-vaciado/internal/adapters/publisher"
	"github.com/mikey/orden-vaciado/internal/config"
	"github.com/mikey/orden-vaciado/internal/core"
	"github.com/mikey/orden-vaciado/internal/factory"
	"github.com/mikey/orden-vaciado/internal/logging"
	"github.com/mikey/orden-vaciado/internal/ports"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	ConfigFile string
	Lot        string
	Context    string
	At         string
	File       string
	Verbose    bool
	JSONLog    bool
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}

	flag.StringVar(&flags.ConfigFile, "config", "", "Path to config file (default: search the usual locations)")
	flag.StringVar(&flags.Lot, "lot", "", "Lot currently in progress (overrides the configured lot source)")
	flag.StringVar(&flags.Context, "context", "", "Comma-separated lots recently seen on the line")
	flag.StringVar(&flags.At, "at", "", "Resolve the shift at this time (YYYY-MM-DD HH:MM) instead of now")
	flag.StringVar(&flags.File, "file", "", "Parse a local workbook instead of fetching the mailbox")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")

	flag.Parse()
	return flags
}

// ContextLots splits the -context flag
func (f *CLIFlags) ContextLots() []string {
	var lots []string
	for _, lot := range strings.Split(f.Context, ",") {
		if lot = strings.TrimSpace(lot); lot != "" {
			lots = append(lots, lot)
		}
	}
	return lots
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		cfg, err := config.NewFromFile(flags.ConfigFile)
		if err != nil {
			return nil, err
		}
		if used := cfg.GetViper().ConfigFileUsed(); used != "" {
			logger.Info("Loaded configuration from file", zap.String("file", used))
		}
		return cfg, nil
	}); err != nil {
		return nil, err
	}

	if err := provideOrderService(container); err != nil {
		return nil, err
	}

	// A one-shot run has nothing to reuse
	if err := container.Provide(func() core.OrderCache { return nil }); err != nil {
		return nil, err
	}

	// Register lot source, pinned by flags when given
	if err := container.Provide(func(flags *CLIFlags, f *factory.LotSourceFactory) (core.LotSource, error) {
		if flags.Lot != "" || flags.Context != "" {
			return lotsource.NewStaticSource(flags.Lot, flags.ContextLots()), nil
		}
		return f.CreateLotSource()
	}); err != nil {
		return nil, err
	}

	// Register stdout publisher
	if err := container.Provide(func() ports.OrderPublisher {
		return publisher.NewWriterPublisher(nil)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

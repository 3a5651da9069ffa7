package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mikey/orden-vaciado/internal/core"
	"github.com/mikey/orden-vaciado/internal/di"
	"github.com/mikey/orden-vaciado/internal/ports"
	"go.uber.org/zap"
)

const atLayout = "2006-01-02 15:04"

func main() {
	flags := di.ParseFlags()

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	var ok bool
	err = container.Invoke(func(
		flags *di.CLIFlags,
		logger *zap.Logger,
		svc *core.OrderService,
		pub ports.OrderPublisher,
		lots core.LotSource,
	) error {
		defer logger.Sync()
		if closer, isCloser := lots.(interface{ Close() error }); isCloser {
			defer closer.Close()
		}

		doc, err := fetch(context.Background(), flags, logger, svc)
		if err != nil {
			return err
		}
		ok = doc.OK
		return pub.Publish(context.Background(), doc)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
	if !ok {
		os.Exit(2)
	}
}

func fetch(ctx context.Context, flags *di.CLIFlags, logger *zap.Logger, svc *core.OrderService) (*core.ParsedOrder, error) {
	now := time.Now()
	if flags.At != "" {
		t, err := time.ParseInLocation(atLayout, flags.At, time.Local)
		if err != nil {
			return nil, fmt.Errorf("invalid -at value %q, want %s: %w", flags.At, atLayout, err)
		}
		now = t
	}

	if flags.File != "" {
		data, err := os.ReadFile(flags.File)
		if err != nil {
			return nil, fmt.Errorf("failed to read workbook: %w", err)
		}
		logger.Info("Parsing local workbook", zap.String("file", flags.File))
		doc, err := svc.ParseWorkbook(data, now, flags.Lot, flags.ContextLots(), core.Meta{
			AttachmentFilename: filepath.Base(flags.File),
		})
		if err != nil {
			logger.Warn("Workbook could not be parsed", zap.Error(err))
			doc.Error = err.Error()
		}
		return doc, nil
	}

	if flags.At != "" {
		return svc.Run(ctx, now, flags.Lot, flags.ContextLots()), nil
	}
	return svc.Refresh(ctx), nil
}

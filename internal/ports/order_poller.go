package ports

import (
	"context"

	"github.com/mikey/orden-vaciado/internal/core"
)

// OrderRefresher produces the current order document
type OrderRefresher interface {
	// Refresh returns the document for the running shift
	Refresh(ctx context.Context) *core.ParsedOrder
}

// OrderPublisher hands a document to whatever displays it
type OrderPublisher interface {
	// Publish writes the document out
	Publish(ctx context.Context, order *core.ParsedOrder) error
}

// OrderPoller defines the interface for the periodic refresh loop
type OrderPoller interface {
	// Start starts refreshing in the background
	Start() error

	// Stop stops the loop and waits for an in-progress refresh
	Stop() error
}

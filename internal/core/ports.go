package core

import (
	"context"

	"github.com/mikey/orden-vaciado/internal/sheet"
	"github.com/mikey/orden-vaciado/internal/shift"
)

// MailboxDialer opens mailbox sessions
type MailboxDialer interface {
	// Dial connects and authenticates
	Dial(ctx context.Context) (MailboxSession, error)
}

// MailboxSession is one authenticated mailbox connection
type MailboxSession interface {
	// FindLatest returns the newest message whose subject contains the filter,
	// or the newest message overall when nothing matches
	FindLatest(ctx context.Context, subjectContains string) (id uint32, found bool, err error)

	// FetchAttachment returns the spreadsheet attachment of a message, or
	// ErrNoAttachment
	FetchAttachment(ctx context.Context, id uint32, filenameContains string) (*Attachment, error)

	// Close logs out
	Close() error
}

// Workbook is an opened spreadsheet file
type Workbook interface {
	sheet.Workbook
	Close() error
}

// WorkbookOpener opens workbooks from raw attachment bytes
type WorkbookOpener interface {
	Open(data []byte) (Workbook, error)
}

// OrderCache keeps the last good document for a short while
type OrderCache interface {
	// Get returns the document for key while it is still fresh
	Get(key shift.Key) (*ParsedOrder, bool)

	// Put stores a successful document, replacing any previous one
	Put(key shift.Key, order *ParsedOrder)

	// Stale returns the last stored document whatever its key or age
	Stale() (*ParsedOrder, bool)
}

// LotSource supplies what the line is working on right now
type LotSource interface {
	// CurrentLot returns the lot in progress, "" if unknown
	CurrentLot(ctx context.Context) (string, error)

	// RecentLots returns up to limit lots recently seen on the line, newest first
	RecentLots(ctx context.Context, limit int) ([]string, error)

	// CurrentShift returns the running shift, nil if the source does not know it
	CurrentShift(ctx context.Context) (*ShiftInfo, error)
}

package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/mikey/orden-vaciado/internal/sheet"
	"github.com/mikey/orden-vaciado/internal/shift"
	"github.com/mikey/orden-vaciado/internal/table"
)

// ServiceOptions holds the scalar settings of the order service
type ServiceOptions struct {
	SubjectContains  string
	FilenameContains string
	ContextLimit     int
	Now              func() time.Time
}

// OrderService fetches, parses and caches the production-emptying order
type OrderService struct {
	dialer    MailboxDialer
	opener    WorkbookOpener
	cache     OrderCache
	lots      LotSource
	clock     *shift.Clock
	selector  *sheet.Selector
	extractor *table.Extractor
	logger    *zap.Logger
	opts      ServiceOptions
	group     singleflight.Group
}

// NewOrderService creates a new order service. cache and lots may be nil
func NewOrderService(
	dialer MailboxDialer,
	opener WorkbookOpener,
	cache OrderCache,
	lots LotSource,
	clock *shift.Clock,
	selector *sheet.Selector,
	extractor *table.Extractor,
	logger *zap.Logger,
	opts ServiceOptions,
) *OrderService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &OrderService{
		dialer:    dialer,
		opener:    opener,
		cache:     cache,
		lots:      lots,
		clock:     clock,
		selector:  selector,
		extractor: extractor,
		logger:    logger,
		opts:      opts,
	}
}

// Refresh asks the lot source what the line is doing and runs the pipeline for
// that. Lot source failures only cost the hints
func (s *OrderService) Refresh(ctx context.Context) *ParsedOrder {
	now := s.opts.Now()
	var (
		currentLot  string
		contextLots []string
	)

	if s.lots != nil {
		info, err := s.lots.CurrentShift(ctx)
		switch {
		case err != nil:
			s.logger.Warn("Failed to read current shift", zap.Error(err))
		case info != nil && (info.Turn == 1 || info.Turn == 2):
			now = s.clock.Representative(info.Turn, info.BusinessDate)
			s.logger.Debug("Using shift reported by lot source",
				zap.Int("turn", info.Turn),
				zap.Time("business_date", info.BusinessDate))
		}

		if currentLot, err = s.lots.CurrentLot(ctx); err != nil {
			s.logger.Warn("Failed to read current lot", zap.Error(err))
			currentLot = ""
		}
		if s.opts.ContextLimit > 0 {
			if contextLots, err = s.lots.RecentLots(ctx, s.opts.ContextLimit); err != nil {
				s.logger.Warn("Failed to read recent lots", zap.Error(err))
				contextLots = nil
			}
		}
	}

	return s.Run(ctx, now, currentLot, contextLots)
}

// Run returns the order document for the shift containing now. A fresh cached
// document for the same shift is returned without touching the mailbox;
// concurrent callers for one shift share a single fetch
func (s *OrderService) Run(ctx context.Context, now time.Time, currentLot string, contextLots []string) *ParsedOrder {
	w := s.clock.Window(now)
	key := w.Key()

	if cached, ok := s.cachedOrder(key); ok {
		return cached
	}

	v, _, shared := s.group.Do(key.String(), func() (interface{}, error) {
		if cached, ok := s.cachedOrder(key); ok {
			return cached, nil
		}
		return s.refresh(ctx, w, currentLot, contextLots), nil
	})
	if shared {
		s.logger.Debug("Joined in-flight refresh", zap.String("key", key.String()))
	}
	return v.(*ParsedOrder).Clone()
}

// ParseWorkbook runs the parse half of the pipeline on a workbook already in
// hand
func (s *OrderService) ParseWorkbook(data []byte, now time.Time, currentLot string, contextLots []string, meta Meta) (*ParsedOrder, error) {
	return s.parse(data, s.clock.Window(now), currentLot, contextLots, meta)
}

func (s *OrderService) cachedOrder(key shift.Key) (*ParsedOrder, bool) {
	if s.cache == nil {
		return nil, false
	}
	order, ok := s.cache.Get(key)
	if ok {
		s.logger.Debug("Cache hit for order", zap.String("key", key.String()))
	}
	return order, ok
}

func (s *OrderService) refresh(ctx context.Context, w shift.Window, currentLot string, contextLots []string) *ParsedOrder {
	order, err := s.fetchAndParse(ctx, w, currentLot, contextLots)
	if err == nil {
		if s.cache != nil {
			s.cache.Put(w.Key(), order)
		}
		s.logger.Info("Order refreshed",
			zap.String("sheet", order.SheetName()),
			zap.Int("rows", len(order.Rows)),
			zap.Float64("total_kilos", order.TotalKilos),
			zap.String("attachment", order.Meta.AttachmentFilename))
		return order
	}
	return s.degrade(w, err, order)
}

// fetchAndParse runs one mailbox round trip. On failure the returned order, if
// any, carries whatever was learned before the failing stage
func (s *OrderService) fetchAndParse(ctx context.Context, w shift.Window, currentLot string, contextLots []string) (order *ParsedOrder, err error) {
	defer func() {
		if r := recover(); r != nil {
			order = nil
			err = fmt.Errorf("%w: %v", ErrUnexpected, r)
		}
	}()

	session, err := s.dialer.Dial(ctx)
	if err != nil {
		return nil, stageErr(StageConnect, err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			s.logger.Warn("Failed to close mailbox session", zap.Error(cerr))
		}
	}()

	id, found, err := session.FindLatest(ctx, s.opts.SubjectContains)
	if err != nil {
		return nil, stageErr(StageSearch, err)
	}
	if !found {
		return nil, stageErr(StageSearch, ErrNoMessage)
	}

	att, err := session.FetchAttachment(ctx, id, s.opts.FilenameContains)
	if err != nil {
		return nil, stageErr(StageFetch, err)
	}
	if att == nil {
		return nil, stageErr(StageFetch, ErrNoAttachment)
	}
	s.logger.Debug("Fetched order attachment",
		zap.Uint32("message_id", id),
		zap.String("filename", att.Filename),
		zap.String("subject", att.Subject))

	return s.parse(att.Data, w, currentLot, contextLots, Meta{
		AttachmentFilename: att.Filename,
		EmailSubject:       att.Subject,
		EmailDate:          att.Date,
	})
}

func (s *OrderService) parse(data []byte, w shift.Window, currentLot string, contextLots []string, meta Meta) (*ParsedOrder, error) {
	order := newOrder(w, s.opts.Now())
	order.Meta = meta

	book, err := s.opener.Open(data)
	if err != nil {
		return order, stageErr(StageOpen, err)
	}
	defer book.Close()

	sel, err := s.selector.Select(book, w, currentLot, contextLots)
	if err != nil {
		return order, stageErr(StageSelect, err)
	}
	name := sel.Sheet
	order.Sheet = &name

	grid, err := book.Rows(sel.Sheet, 0)
	if err != nil {
		return order, stageErr(StageExtract, err)
	}
	tbl, err := s.extractor.Extract(grid)
	if err != nil {
		return order, stageErr(StageExtract, err)
	}

	order.OK = true
	order.Columns = tbl.Columns
	order.Rows = tbl.Rows
	order.TotalKilos = tbl.TotalKilos
	return order, nil
}

// degrade turns a pipeline failure into the document the caller gets
func (s *OrderService) degrade(w shift.Window, err error, partial *ParsedOrder) *ParsedOrder {
	failed := newOrder(w, s.opts.Now())
	if partial != nil {
		failed.Sheet = partial.Sheet
		failed.Meta = partial.Meta
	}
	failed.Error = describe(err)

	switch {
	case errors.Is(err, ErrConfiguration):
		s.logger.Error("Mailbox is not configured", zap.Error(err))
		return failed
	case errors.Is(err, ErrNoMessage), errors.Is(err, ErrNoAttachment):
		s.logger.Warn("No order attachment available", zap.Error(err))
		return failed
	case errors.Is(err, ErrNoSheets), errors.Is(err, ErrNoHeaderRow):
		s.logger.Warn("Order workbook could not be read",
			zap.String("sheet", failed.SheetName()),
			zap.Error(err))
		return failed
	}

	if s.cache != nil {
		if stale, ok := s.cache.Stale(); ok {
			s.logger.Warn("Serving stale order after refresh failure",
				zap.String("sheet", stale.SheetName()),
				zap.Error(err))
			return stale.WithWarning(fmt.Sprintf("could not refresh order, showing last copy: %v", err))
		}
	}
	s.logger.Error("Failed to refresh order", zap.Error(err))
	return failed
}

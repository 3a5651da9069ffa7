package factory

import (
	"fmt"
	"strings"

	"github.com/mikey/orden-vaciado/internal/adapters/mailbox"
	"github.com/mikey/orden-vaciado/internal/config"
	"github.com/mikey/orden-vaciado/internal/core"
	"go.uber.org/zap"
)

// MailboxFactory creates mailbox dialers based on configuration
type MailboxFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewMailboxFactory creates a new mailbox factory
func NewMailboxFactory(cfg *config.Config, logger *zap.Logger) *MailboxFactory {
	return &MailboxFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateDialer creates an IMAP dialer. Missing credentials are not an error
// here: they surface as ErrConfiguration on every refresh instead, so the
// daemon keeps publishing a document explaining what is wrong
func (f *MailboxFactory) CreateDialer() (core.MailboxDialer, error) {
	mc := f.cfg.GetMailbox()

	if mc.Port <= 0 || mc.Port > 65535 {
		return nil, fmt.Errorf("invalid mailbox port: %d", mc.Port)
	}
	if mc.Timeout <= 0 {
		return nil, fmt.Errorf("mailbox timeout must be positive, got %s", mc.Timeout)
	}
	switch strings.ToLower(mc.Auth) {
	case "login", "plain":
	default:
		return nil, fmt.Errorf("unsupported mailbox auth mechanism: %s", mc.Auth)
	}

	d := mailbox.NewIMAPDialer(mc, f.logger)
	if err := d.Validate(); err != nil {
		f.logger.Warn("Mailbox is not fully configured", zap.Error(err))
	}
	return d, nil
}

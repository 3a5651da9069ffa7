package mailbox

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-sasl"
	"github.com/mikey/orden-vaciado/internal/config"
	"github.com/mikey/orden-vaciado/internal/core"
	"go.uber.org/zap"
)

// IMAPDialer opens implicit-TLS IMAP sessions
type IMAPDialer struct {
	cfg       config.MailboxConfig
	logger    *zap.Logger
	tlsConfig *tls.Config
}

// NewIMAPDialer creates a new IMAP dialer
func NewIMAPDialer(cfg config.MailboxConfig, logger *zap.Logger) *IMAPDialer {
	return &IMAPDialer{
		cfg:       cfg,
		logger:    logger,
		tlsConfig: &tls.Config{ServerName: cfg.Host},
	}
}

// Validate reports ErrConfiguration when host, user or password is missing
func (d *IMAPDialer) Validate() error {
	var missing []string
	if strings.TrimSpace(d.cfg.Host) == "" {
		missing = append(missing, "host")
	}
	if strings.TrimSpace(d.cfg.User) == "" {
		missing = append(missing, "user")
	}
	if d.cfg.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w (missing %s)", core.ErrConfiguration, strings.Join(missing, ", "))
	}
	return nil
}

// Dial connects, authenticates and selects the configured mailbox
func (d *IMAPDialer) Dial(ctx context.Context) (core.MailboxSession, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, classify(err, core.ErrConnectivity)
	}

	addr := net.JoinHostPort(d.cfg.Host, strconv.Itoa(d.cfg.Port))
	dialer := &net.Dialer{Timeout: d.cfg.Timeout}
	c, err := client.DialWithDialerTLS(dialer, addr, d.tlsConfig)
	if err != nil {
		return nil, classify(err, core.ErrConnectivity)
	}
	c.Timeout = d.cfg.Timeout
	c.ErrorLog = zap.NewStdLog(d.logger)

	// go-imap has no context support; a cancelled context drops the connection
	stop := context.AfterFunc(ctx, func() {
		_ = c.Terminate()
	})

	s := &imapSession{client: c, logger: d.logger, stop: stop}
	if err := d.authenticate(c); err != nil {
		_ = s.terminate()
		return nil, classify(err, core.ErrAuth)
	}

	mailbox := d.cfg.Mailbox
	if mailbox == "" {
		mailbox = "INBOX"
	}
	status, err := c.Select(mailbox, true)
	if err != nil {
		_ = s.Close()
		return nil, classify(err, core.ErrConnectivity)
	}
	s.messages = status.Messages

	d.logger.Debug("Connected to mailbox",
		zap.String("addr", addr),
		zap.String("mailbox", mailbox),
		zap.Uint32("messages", status.Messages))
	return s, nil
}

func (d *IMAPDialer) authenticate(c *client.Client) error {
	switch strings.ToLower(d.cfg.Auth) {
	case "", "login":
		return c.Login(d.cfg.User, d.cfg.Password)
	case "plain":
		return c.Authenticate(sasl.NewPlainClient("", d.cfg.User, d.cfg.Password))
	default:
		return fmt.Errorf("unsupported auth mechanism: %s", d.cfg.Auth)
	}
}

type imapSession struct {
	client   *client.Client
	logger   *zap.Logger
	stop     func() bool
	messages uint32
}

// FindLatest searches by subject and falls back to the newest message
func (s *imapSession) FindLatest(ctx context.Context, subjectContains string) (uint32, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, classify(err, core.ErrConnectivity)
	}

	if subject := strings.TrimSpace(subjectContains); subject != "" {
		criteria := imap.NewSearchCriteria()
		criteria.Header.Add("Subject", subject)
		ids, err := s.client.Search(criteria)
		if err != nil {
			return 0, false, classify(err, core.ErrConnectivity)
		}
		if id, ok := latest(ids); ok {
			return id, true, nil
		}
		s.logger.Debug("No message matches subject, using newest message",
			zap.String("subject", subject))
	}

	if s.messages == 0 {
		return 0, false, nil
	}
	return s.messages, true, nil
}

// FetchAttachment downloads the full message without marking it seen
func (s *imapSession) FetchAttachment(ctx context.Context, id uint32, filenameContains string) (*core.Attachment, error) {
	if err := ctx.Err(); err != nil {
		return nil, classify(err, core.ErrConnectivity)
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(id)
	section := &imap.BodySectionName{Peek: true}

	messages := make(chan *imap.Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- s.client.Fetch(seqset, []imap.FetchItem{section.FetchItem()}, messages)
	}()

	var msg *imap.Message
	for m := range messages {
		if msg == nil {
			msg = m
		}
	}
	if err := <-done; err != nil {
		return nil, classify(err, core.ErrConnectivity)
	}
	if msg == nil {
		return nil, fmt.Errorf("%w: message %d vanished", core.ErrNoAttachment, id)
	}

	body := msg.GetBody(section)
	if body == nil {
		return nil, fmt.Errorf("%w: server returned no body for message %d", core.ErrNoAttachment, id)
	}
	return ExtractAttachment(body, filenameContains)
}

// Close logs out, dropping the connection if logout fails
func (s *imapSession) Close() error {
	s.stop()
	if err := s.client.Logout(); err != nil {
		s.logger.Debug("Logout failed, terminating connection", zap.Error(err))
		return s.client.Terminate()
	}
	return nil
}

func (s *imapSession) terminate() error {
	s.stop()
	return s.client.Terminate()
}

// latest returns the highest sequence number
func latest(ids []uint32) (uint32, bool) {
	var newest uint32
	for _, id := range ids {
		if id > newest {
			newest = id
		}
	}
	return newest, newest > 0
}

// classify maps transport errors onto the service's error categories;
// anything unrecognised lands in fallback
func classify(err error, fallback error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, core.ErrConfiguration) {
		return err
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", core.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", fallback, err)
}

var _ core.MailboxDialer = (*IMAPDialer)(nil)

package mailbox

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/emersion/go-message"
	"github.com/emersion/go-message/mail"
	"github.com/mikey/orden-vaciado/internal/core"
	"github.com/mikey/orden-vaciado/internal/utils"
)

func init() {
	message.CharsetReader = utils.CharsetReader
}

var spreadsheetExts = map[string]bool{
	".xls":  true,
	".xlsx": true,
	".xlsm": true,
}

// ExtractAttachment walks a raw RFC 822 message and returns the first
// attachment whose filename contains filenameContains (case-insensitive). An
// empty filter takes the first attachment of any kind. When nothing matches,
// the first spreadsheet attachment is returned instead. Messages without either
// yield core.ErrNoAttachment
func ExtractAttachment(r io.Reader, filenameContains string) (*core.Attachment, error) {
	mr, err := mail.CreateReader(r)
	if err != nil && !message.IsUnknownCharset(err) {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	defer mr.Close()

	subject, err := mr.Header.Subject()
	if err != nil {
		subject = mr.Header.Get("Subject")
	}
	date := mr.Header.Get("Date")
	want := strings.ToUpper(strings.TrimSpace(filenameContains))

	var fallback *core.Attachment
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if message.IsUnknownCharset(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read message part: %w", err)
		}

		name := partFilename(p.Header)
		if name == "" {
			continue
		}

		matches := want == "" || strings.Contains(strings.ToUpper(name), want)
		if !matches && (fallback != nil || !spreadsheetExts[strings.ToLower(path.Ext(name))]) {
			continue
		}

		data, err := io.ReadAll(p.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read attachment %q: %w", name, err)
		}
		att := &core.Attachment{Filename: name, Subject: subject, Date: date, Data: data}
		if matches {
			return att, nil
		}
		fallback = att
	}

	if fallback == nil {
		return nil, core.ErrNoAttachment
	}
	return fallback, nil
}

// partFilename finds a filename in the disposition or, for parts sent inline,
// the legacy Content-Type name parameter
func partFilename(h mail.PartHeader) string {
	switch h := h.(type) {
	case *mail.AttachmentHeader:
		if name, err := h.Filename(); err == nil && name != "" {
			return name
		}
		return contentTypeName(h.Get("Content-Type"))
	case *mail.InlineHeader:
		if _, params, err := h.ContentDisposition(); err == nil && params["filename"] != "" {
			return decodeWord(params["filename"])
		}
		return contentTypeName(h.Get("Content-Type"))
	}
	return ""
}

func contentTypeName(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return decodeWord(params["name"])
}

func decodeWord(s string) string {
	dec := mime.WordDecoder{CharsetReader: utils.CharsetReader}
	if out, err := dec.DecodeHeader(s); err == nil {
		return out
	}
	return s
}

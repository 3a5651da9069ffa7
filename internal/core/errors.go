package core

import (
	"errors"
	"fmt"

	"github.com/mikey/orden-vaciado/internal/sheet"
	"github.com/mikey/orden-vaciado/internal/table"
)

var (
	// ErrConfiguration is returned when mailbox credentials are missing
	ErrConfiguration = errors.New("mailbox host, user and password must be configured")
	// ErrConnectivity is returned when the mailbox cannot be reached
	ErrConnectivity = errors.New("mailbox unreachable")
	// ErrAuth is returned when the mailbox rejects the credentials
	ErrAuth = errors.New("mailbox authentication failed")
	// ErrTimeout is returned when mailbox I/O exceeds the configured timeout
	ErrTimeout = errors.New("mailbox timed out")
	// ErrNoMessage is returned when the mailbox holds no message at all
	ErrNoMessage = errors.New("no message found")
	// ErrNoAttachment is returned when the message carries no usable spreadsheet
	ErrNoAttachment = errors.New("no attachment found")
	// ErrUnexpected wraps failures outside the typed categories
	ErrUnexpected = errors.New("unexpected failure")

	ErrNoSheets    = sheet.ErrNoSheets
	ErrNoHeaderRow = table.ErrNoHeaderRow
)

// Stage names a step of the refresh pipeline
type Stage string

const (
	StageConnect Stage = "connect"
	StageSearch  Stage = "search"
	StageFetch   Stage = "fetch"
	StageOpen    Stage = "open"
	StageSelect  Stage = "select"
	StageExtract Stage = "extract"
)

// StageError records which step of the pipeline failed
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}

// describe renders err for the document's error/warn fields; typed failures
// keep their short sentinel text
func describe(err error) string {
	for _, known := range []error{ErrConfiguration, ErrNoMessage, ErrNoAttachment, ErrNoSheets, ErrNoHeaderRow} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return err.Error()
}

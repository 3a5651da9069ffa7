package core

import (
	"slices"
	"strings"
	"time"

	"github.com/mikey/orden-vaciado/internal/shift"
	"github.com/mikey/orden-vaciado/internal/table"
	"github.com/mikey/orden-vaciado/internal/utils"
)

// Attachment represents a spreadsheet pulled out of an order email
type Attachment struct {
	Filename string
	Subject  string
	Date     string
	Data     []byte
}

// Meta describes where an order document came from
type Meta struct {
	AttachmentFilename string `json:"attachment_filename"`
	EmailSubject       string `json:"email_subject"`
	EmailDate          string `json:"email_date"`
}

// ParsedOrder is the document handed to the dashboard on every refresh
type ParsedOrder struct {
	OK           bool        `json:"ok"`
	Sheet        *string     `json:"sheet"`
	Columns      []string    `json:"columns"`
	Rows         []table.Row `json:"rows"`
	Turn         int         `json:"turn"`
	BusinessDate string      `json:"business_date"`
	TotalKilos   float64     `json:"total_kilos"`
	Meta         Meta        `json:"meta"`
	GeneratedAt  time.Time   `json:"generated_at"`
	Warn         string      `json:"warn,omitempty"`
	Error        string      `json:"error,omitempty"`
}

// ShiftInfo is the running shift as reported by the plant database
type ShiftInfo struct {
	Turn         int
	BusinessDate time.Time
}

// SheetName returns the chosen sheet or "" when there is none
func (o *ParsedOrder) SheetName() string {
	if o.Sheet == nil {
		return ""
	}
	return *o.Sheet
}

// Clone returns a deep copy
func (o *ParsedOrder) Clone() *ParsedOrder {
	if o == nil {
		return nil
	}
	c := *o
	if o.Sheet != nil {
		name := *o.Sheet
		c.Sheet = &name
	}
	c.Columns = slices.Clone(o.Columns)
	if o.Rows != nil {
		c.Rows = make([]table.Row, len(o.Rows))
		for i, r := range o.Rows {
			c.Rows[i] = r.Clone()
		}
	}
	return &c
}

// WithWarning returns a copy of the document flagged with msg; the receiver is
// left untouched
func (o *ParsedOrder) WithWarning(msg string) *ParsedOrder {
	c := o.Clone()
	c.Warn = msg
	return c
}

// NextLot returns the lot of the data row following the one for current, or ""
// when current is the last one or not listed
func (o *ParsedOrder) NextLot(current string) string {
	if o == nil || !o.OK {
		return ""
	}
	lotCol := ""
	for _, c := range o.Columns {
		if strings.Contains(strings.ToUpper(c), "LOTE") {
			lotCol = c
			break
		}
	}
	want := utils.NormalizeLot(current)
	if lotCol == "" || want == "" {
		return ""
	}

	found := false
	for _, r := range o.Rows {
		if r.Type != table.RowData {
			continue
		}
		lot := strings.TrimSpace(r.Fields[lotCol])
		if found {
			return lot
		}
		if utils.NormalizeLot(lot) == want {
			found = true
		}
	}
	return ""
}

func newOrder(w shift.Window, generatedAt time.Time) *ParsedOrder {
	return &ParsedOrder{
		Columns:      []string{},
		Rows:         []table.Row{},
		Turn:         w.Turn,
		BusinessDate: w.ISODate(),
		GeneratedAt:  generatedAt,
	}
}

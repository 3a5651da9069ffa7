package config

import (
	"fmt"
	"time"
)

// MailboxConfig represents the configuration for the IMAP mailbox
type MailboxConfig struct {
	Host             string
	Port             int
	User             string
	Password         string
	Mailbox          string
	Auth             string
	SubjectContains  string
	FilenameContains string
	Timeout          time.Duration
}

// ShiftConfig holds the turn boundaries as HH:MM strings
type ShiftConfig struct {
	Turn1Start string
	Turn2Start string
}

// OrderConfig represents the refresh cadence of the order document
type OrderConfig struct {
	RefreshInterval time.Duration
}

// SelectorConfig bounds how much of each sheet the selector reads
type SelectorConfig struct {
	ScanLimit       int
	ContextScanRows int
	VerifyScanRows  int
	MaxSheetLots    int
}

// TableConfig represents the markers used to read the order table
type TableConfig struct {
	HeaderScanRows  int
	LotMarkers      []string
	ExporterMarkers []string
	LotColumn       string
	ProducerColumn  string
	KilosColumn     string
	Placeholders    []string
}

// LotSourceConfig represents the configuration of the lot data collaborator
type LotSourceConfig struct {
	Source        string
	ContextLimit  int
	SQLitePath    string
	MySQLDSN      string
	CurrentQuery  string
	RecentQuery   string
	ShiftQuery    string
	StaticCurrent string
	StaticContext []string
}

// OutputConfig tells the daemon where to publish the document
type OutputConfig struct {
	Path string
}

// GetMailbox returns the mailbox configuration
func (c *Config) GetMailbox() MailboxConfig {
	return MailboxConfig{
		Host:             c.GetString("mailbox.host"),
		Port:             c.GetInt("mailbox.port"),
		User:             c.GetString("mailbox.user"),
		Password:         c.GetString("mailbox.password"),
		Mailbox:          c.GetString("mailbox.name"),
		Auth:             c.GetString("mailbox.auth"),
		SubjectContains:  c.GetString("mailbox.subject_contains"),
		FilenameContains: c.GetString("mailbox.filename_contains"),
		Timeout:          time.Duration(c.GetInt("mailbox.timeout_seconds")) * time.Second,
	}
}

// GetShift returns the shift configuration
func (c *Config) GetShift() ShiftConfig {
	return ShiftConfig{
		Turn1Start: c.GetString("shift.turn1_start"),
		Turn2Start: c.GetString("shift.turn2_start"),
	}
}

// GetOrder returns the order configuration
func (c *Config) GetOrder() (OrderConfig, error) {
	interval, err := c.GetDuration("order.refresh_interval")
	if err != nil {
		return OrderConfig{}, fmt.Errorf("invalid order refresh interval: %w", err)
	}
	if interval <= 0 {
		return OrderConfig{}, fmt.Errorf("order refresh interval must be positive, got %s", interval)
	}
	return OrderConfig{RefreshInterval: interval}, nil
}

// GetSelector returns the sheet selector configuration
func (c *Config) GetSelector() SelectorConfig {
	return SelectorConfig{
		ScanLimit:       c.GetInt("selector.scan_limit"),
		ContextScanRows: c.GetInt("selector.context_scan_rows"),
		VerifyScanRows:  c.GetInt("selector.verify_scan_rows"),
		MaxSheetLots:    c.GetInt("selector.max_sheet_lots"),
	}
}

// GetTable returns the table extraction configuration
func (c *Config) GetTable() TableConfig {
	return TableConfig{
		HeaderScanRows:  c.GetInt("table.header_scan_rows"),
		LotMarkers:      c.GetStringSlice("table.lot_markers"),
		ExporterMarkers: c.GetStringSlice("table.exporter_markers"),
		LotColumn:       c.GetString("table.lot_column"),
		ProducerColumn:  c.GetString("table.producer_column"),
		KilosColumn:     c.GetString("table.kilos_column"),
		Placeholders:    c.GetStringSlice("table.placeholders"),
	}
}

// GetLotSource returns the lot source configuration
func (c *Config) GetLotSource() LotSourceConfig {
	return LotSourceConfig{
		Source:        c.GetString("lots.source"),
		ContextLimit:  c.GetInt("lots.context_limit"),
		SQLitePath:    c.GetString("lots.sqlite_path"),
		MySQLDSN:      c.GetString("lots.mysql_dsn"),
		CurrentQuery:  c.GetString("lots.current_query"),
		RecentQuery:   c.GetString("lots.recent_query"),
		ShiftQuery:    c.GetString("lots.shift_query"),
		StaticCurrent: c.GetString("lots.static_current"),
		StaticContext: c.GetStringSlice("lots.static_context"),
	}
}

// GetOutput returns the output configuration
func (c *Config) GetOutput() OutputConfig {
	return OutputConfig{
		Path: c.GetString("output.path"),
	}
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	return NewFromFile("")
}

// NewFromFile creates a configuration instance reading the given file, or the
// usual search path when file is empty
func NewFromFile(file string) (*Config, error) {
	v := viper.New()
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/orden-vaciado/")
		v.AddConfigPath("$HOME/.orden-vaciado")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	setDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || file != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// bindEnv wires ORDEN_* variables plus the names older deployments export
func bindEnv(v *viper.Viper) {
	v.AutomaticEnv()
	v.SetEnvPrefix("ORDEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	aliases := map[string][]string{
		"mailbox.host":              {"ORDEN_MAILBOX_HOST", "IMAP_HOST"},
		"mailbox.port":              {"ORDEN_MAILBOX_PORT", "IMAP_PORT"},
		"mailbox.user":              {"ORDEN_MAILBOX_USER", "IMAP_USER"},
		"mailbox.password":          {"ORDEN_MAILBOX_PASSWORD", "IMAP_PASS"},
		"mailbox.name":              {"ORDEN_MAILBOX_NAME", "IMAP_MAILBOX"},
		"mailbox.timeout_seconds":   {"ORDEN_MAILBOX_TIMEOUT_SECONDS", "IMAP_TIMEOUT_S"},
		"mailbox.subject_contains":  {"ORDEN_MAILBOX_SUBJECT_CONTAINS", "ORDEN_SUBJECT_CONTAINS"},
		"mailbox.filename_contains": {"ORDEN_MAILBOX_FILENAME_CONTAINS", "ORDEN_FILENAME_CONTAINS"},
		"shift.turn1_start":         {"ORDEN_SHIFT_TURN1_START", "ORDEN_TURNO_1_START"},
		"shift.turn2_start":         {"ORDEN_SHIFT_TURN2_START", "ORDEN_TURNO_2_START"},
		"selector.scan_limit":       {"ORDEN_SELECTOR_SCAN_LIMIT", "ORDEN_SHEET_SCAN_LIMIT"},
	}
	for key, names := range aliases {
		input := append([]string{key}, names...)
		_ = v.BindEnv(input...)
	}
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Mailbox defaults
	v.SetDefault("mailbox.host", "")
	v.SetDefault("mailbox.port", 993)
	v.SetDefault("mailbox.user", "")
	v.SetDefault("mailbox.password", "")
	v.SetDefault("mailbox.name", "INBOX")
	v.SetDefault("mailbox.auth", "login")
	v.SetDefault("mailbox.subject_contains", "ORDEN DE VACIADO")
	v.SetDefault("mailbox.filename_contains", "ORDEN DE VACIADO")
	v.SetDefault("mailbox.timeout_seconds", 12)

	// Shift defaults
	v.SetDefault("shift.turn1_start", "08:00")
	v.SetDefault("shift.turn2_start", "20:00")

	// Order defaults
	v.SetDefault("order.refresh_interval", "60s")

	// Sheet selector defaults
	v.SetDefault("selector.scan_limit", 6)
	v.SetDefault("selector.context_scan_rows", 180)
	v.SetDefault("selector.verify_scan_rows", 120)
	v.SetDefault("selector.max_sheet_lots", 60)

	// Table defaults
	v.SetDefault("table.header_scan_rows", 60)
	v.SetDefault("table.lot_markers", []string{"N° DE LOTE", "Nº DE LOTE", "N° LOTE", "Nº LOTE", "LOTE"})
	v.SetDefault("table.exporter_markers", []string{"EXPORT"})
	v.SetDefault("table.lot_column", "LOTE")
	v.SetDefault("table.producer_column", "PRODUCTOR")
	v.SetDefault("table.kilos_column", "KILO")
	v.SetDefault("table.placeholders", []string{"0", "-", "—", "N/A", "NA", "NONE", "NULL"})

	// Lot source defaults
	v.SetDefault("lots.source", "none")
	v.SetDefault("lots.context_limit", 30)
	v.SetDefault("lots.sqlite_path", "/data/lots.db")
	v.SetDefault("lots.mysql_dsn", "user:password@tcp(localhost:3306)/unitec")
	v.SetDefault("lots.current_query", "SELECT CodiceLotto FROM VW_LottiIngresso ORDER BY DataLettura DESC LIMIT 1")
	v.SetDefault("lots.recent_query", "SELECT CodiceLotto FROM VW_LottiIngresso ORDER BY DataLettura DESC LIMIT ?")
	v.SetDefault("lots.shift_query", "")
	v.SetDefault("lots.static_current", "")
	v.SetDefault("lots.static_context", []string{})

	// Output defaults
	v.SetDefault("output.path", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}

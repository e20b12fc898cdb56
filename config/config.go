package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DEFAULT_SHEET           = "Sheet1"
	DEFAULT_HTTP_ADDRESS    = "127.0.0.1:3000"
	DEFAULT_READ_TIMEOUT    = 10 * time.Second
	DEFAULT_WRITE_TIMEOUT   = 30 * time.Second
	DEFAULT_MAX_CONNECTIONS = 64
)

// Config holds everything the row handlers need to talk to the spreadsheet. It is
// built once per process and passed explicitly to the reader and handler constructors.
type Config struct {
	APIKey        string
	ClientEmail   string
	PrivateKey    string
	SpreadsheetID string
	SheetName     string
	Debug         bool
	HTTP          HTTP
}

type HTTP struct {
	Address        string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxConnections int
}

// Lookup matches the signature of os.LookupEnv.
type Lookup func(key string) (string, bool)

// FromEnv builds a Config from the process environment.
func FromEnv() (*Config, error) {
	return Load(os.LookupEnv)
}

// Load builds a Config from the supplied lookup function. Missing optional values fall
// back to defaults, malformed numeric/duration values are reported as errors.
func Load(lookup Lookup) (*Config, error) {
	get := func(key string) string {
		if v, ok := lookup(key); ok {
			return strings.TrimSpace(v)
		}

		return ""
	}

	cfg := Config{
		APIKey:        get("API_KEY"),
		ClientEmail:   get("GOOGLE_CLIENT_EMAIL"),
		PrivateKey:    NormalisePrivateKey(get("GOOGLE_PRIVATE_KEY")),
		SpreadsheetID: get("SPREADSHEET_ID"),
		SheetName:     get("SHEET_NAME"),
		HTTP: HTTP{
			Address:        get("HTTP_ADDRESS"),
			ReadTimeout:    DEFAULT_READ_TIMEOUT,
			WriteTimeout:   DEFAULT_WRITE_TIMEOUT,
			MaxConnections: DEFAULT_MAX_CONNECTIONS,
		},
	}

	if cfg.SheetName == "" {
		cfg.SheetName = DEFAULT_SHEET
	}

	if cfg.HTTP.Address == "" {
		cfg.HTTP.Address = DEFAULT_HTTP_ADDRESS
	}

	if v := get("DEBUG"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid DEBUG value '%v' (%v)", v, err)
		}

		cfg.Debug = debug
	}

	if v := get("HTTP_READ_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid HTTP_READ_TIMEOUT value '%v' (%v)", v, err)
		}

		cfg.HTTP.ReadTimeout = d
	}

	if v := get("HTTP_WRITE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid HTTP_WRITE_TIMEOUT value '%v' (%v)", v, err)
		}

		cfg.HTTP.WriteTimeout = d
	}

	if v := get("HTTP_MAX_CONNECTIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid HTTP_MAX_CONNECTIONS value '%v'", v)
		}

		cfg.HTTP.MaxConnections = n
	}

	return &cfg, nil
}

// Validate checks that the values required to reach the spreadsheet are present. A
// missing API key is not an error here: the auth gate rejects every request instead.
func (c *Config) Validate() error {
	missing := []string{}

	if c.ClientEmail == "" {
		missing = append(missing, "GOOGLE_CLIENT_EMAIL")
	}

	if c.PrivateKey == "" {
		missing = append(missing, "GOOGLE_PRIVATE_KEY")
	}

	if c.SpreadsheetID == "" {
		missing = append(missing, "SPREADSHEET_ID")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration (%v)", strings.Join(missing, ", "))
	}

	return nil
}

// NormalisePrivateKey replaces the literal \n sequences that hosting platforms
// commonly store in place of real newlines in PEM encoded keys.
func NormalisePrivateKey(key string) string {
	return strings.ReplaceAll(key, `\n`, "\n")
}

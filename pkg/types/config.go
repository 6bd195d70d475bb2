package types

import "errors"

// Config holds backend selection and parameters for Store.Attach.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// DefaultCurrency is applied to offers created without a currency.
	// Empty means DefaultCurrency.
	DefaultCurrency string `json:"currency,omitempty" yaml:"currency,omitempty"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// DefaultCurrency is the ISO 4217 code used when none is given.
const DefaultCurrency = "USD"

// Config validation errors.
var (
	ErrBackendEmpty    = errors.New("backend must not be empty")
	ErrBackendUnknown  = errors.New("unknown backend")
	ErrInvalidCurrency = errors.New("currency must be a three-letter ISO 4217 code")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.DefaultCurrency != "" && !isCurrencyCode(c.DefaultCurrency) {
		return ErrInvalidCurrency
	}
	return nil
}

// Currency returns the configured default currency, or DefaultCurrency.
func (c Config) Currency() string {
	if c.DefaultCurrency == "" {
		return DefaultCurrency
	}
	return c.DefaultCurrency
}

// isCurrencyCode reports whether s looks like an ISO 4217 alphabetic code.
func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

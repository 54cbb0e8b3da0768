package reconcile

import "cpk-sync/core/t2b"

// Config holds configuration for reconciliation runs. It is mapped under
// the CPK_ prefix, so CPK_DEBUG and CPK_SCHEMA control it from the
// environment.
type Config struct {
	// Debug enables per-record trace logging.
	Debug bool `mapstructure:"debug" default:"false"`
	// Schema selects the patched-table field layout (auto, legacy, current).
	Schema string `mapstructure:"schema" default:"auto"`
}

// IsValidSchema checks if the configured schema selector is known.
func (c Config) IsValidSchema() bool {
	switch t2b.Selector(c.Schema) {
	case t2b.SelectAuto, t2b.SelectLegacy, t2b.SelectCurrent:
		return true
	default:
		return false
	}
}

// Selector returns the configured schema as a parser selector.
func (c Config) Selector() t2b.Selector {
	return t2b.Selector(c.Schema)
}

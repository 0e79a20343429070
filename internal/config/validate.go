package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/breeze-rmm/svcctl/internal/privilege"
	"github.com/breeze-rmm/svcctl/internal/textdecode"
)

var validLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warn":    true,
	"warning": true,
	"error":   true,
}

const maxConcurrency = 256

// ValidationResult separates errors that must stop the run from values that
// were corrected or ignored.
type ValidationResult struct {
	Fatals   []error
	Warnings []error
}

// HasFatals reports whether any fatal error was found.
func (r ValidationResult) HasFatals() bool {
	return len(r.Fatals) > 0
}

// AllErrors returns fatals followed by warnings.
func (r ValidationResult) AllErrors() []error {
	all := make([]error, 0, len(r.Fatals)+len(r.Warnings))
	all = append(all, r.Fatals...)
	return append(all, r.Warnings...)
}

// ValidateTiered checks the config. Out-of-range numbers are clamped and
// reported as warnings; values that would run the wrong utility or decode
// output wrongly are fatal.
func (c *Config) ValidateTiered() ValidationResult {
	var r ValidationResult

	if c.CodePage != 0 && !textdecode.CodePage(c.CodePage).Supported() {
		r.Fatals = append(r.Fatals, fmt.Errorf("code_page %d is not supported", c.CodePage))
	}

	if strings.TrimSpace(c.ScPath) == "" {
		r.Fatals = append(r.Fatals, fmt.Errorf("sc_path must not be empty"))
	}
	if strings.TrimSpace(c.NetPath) == "" {
		r.Fatals = append(r.Fatals, fmt.Errorf("net_path must not be empty"))
	}

	switch c.PrivilegeProbe {
	case privilege.ProbeNetSession, privilege.ProbeToken:
	default:
		r.Fatals = append(r.Fatals, fmt.Errorf("privilege_probe %q is not valid (use %s or %s)",
			c.PrivilegeProbe, privilege.ProbeNetSession, privilege.ProbeToken))
	}

	if c.Concurrency < 0 {
		r.Warnings = append(r.Warnings, fmt.Errorf("concurrency %d is below minimum 0, clamping", c.Concurrency))
		c.Concurrency = 0
	} else if c.Concurrency > maxConcurrency {
		r.Warnings = append(r.Warnings, fmt.Errorf("concurrency %d exceeds maximum %d, clamping", c.Concurrency, maxConcurrency))
		c.Concurrency = maxConcurrency
	}

	if c.LogLevel != "" && !validLogLevels[strings.ToLower(c.LogLevel)] {
		r.Warnings = append(r.Warnings, fmt.Errorf("log_level %q is not valid (use debug, info, warn, error)", c.LogLevel))
	}

	if c.LogFormat != "" && c.LogFormat != "text" && c.LogFormat != "json" {
		r.Warnings = append(r.Warnings, fmt.Errorf("log_format %q is not valid (use text or json)", c.LogFormat))
		c.LogFormat = "text"
	}

	return r
}

// Validate runs ValidateTiered, logs every finding as a warning and returns
// them all.
func (c *Config) Validate() []error {
	errs := c.ValidateTiered().AllErrors()
	for _, err := range errs {
		slog.Warn("config validation", "error", err)
	}
	return errs
}

package privilege

import (
	"context"
	"errors"
	"fmt"

	"github.com/breeze-rmm/svcctl/internal/executor"
	"github.com/breeze-rmm/svcctl/internal/logging"
)

var log = logging.L("privilege")

// Probe kinds accepted by NewProbe.
const (
	ProbeNetSession = "net-session"
	ProbeToken      = "token"
)

// ErrPrivilegeDenied is returned when a mutating command runs without
// administrative rights.
var ErrPrivilegeDenied = errors.New("privilege: administrator rights required")

// elevatedVerbs lists the commands that change service state or
// configuration and therefore need administrative rights.
var elevatedVerbs = map[string]bool{
	"start":    true,
	"stop":     true,
	"restart":  true,
	"enable":   true,
	"disable":  true,
	"pause":    true,
	"continue": true,
}

// RequiresElevation returns true if the verb needs administrative rights.
func RequiresElevation(verb string) bool {
	return elevatedVerbs[verb]
}

// Probe reports whether the current process may perform administrative
// actions. Implementations never print and treat probe errors as "no".
type Probe interface {
	IsPrivileged(ctx context.Context) bool
}

// ProbeFunc adapts a function to Probe.
type ProbeFunc func(ctx context.Context) bool

// IsPrivileged calls f.
func (f ProbeFunc) IsPrivileged(ctx context.Context) bool {
	return f(ctx)
}

// NetSessionProbe runs `net session`, which only succeeds for administrators.
type NetSessionProbe struct {
	Runner  executor.Runner
	NetPath string
}

// IsPrivileged reports whether `net session` exited 0. Its output is discarded.
func (p *NetSessionProbe) IsPrivileged(ctx context.Context) bool {
	result, err := p.Runner.Run(ctx, p.NetPath, "session")
	if err != nil {
		log.Debug("net session probe failed", logging.KeyError, err)
		return false
	}
	return result.Success()
}

// TokenProbe inspects the current process token directly.
type TokenProbe struct{}

// IsPrivileged reports whether the process token is elevated.
func (TokenProbe) IsPrivileged(ctx context.Context) bool {
	return tokenElevated()
}

// NewProbe returns the probe for kind.
func NewProbe(kind string, runner executor.Runner, netPath string) (Probe, error) {
	switch kind {
	case "", ProbeNetSession:
		return &NetSessionProbe{Runner: runner, NetPath: netPath}, nil
	case ProbeToken:
		return TokenProbe{}, nil
	default:
		return nil, fmt.Errorf("privilege: unknown probe %q", kind)
	}
}

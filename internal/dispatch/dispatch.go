// Package dispatch routes a parsed command line to exactly one handler.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/breeze-rmm/svcctl/internal/logging"
	"github.com/breeze-rmm/svcctl/internal/privilege"
)

var log = logging.L("dispatch")

// Verbs understood by the dispatcher.
const (
	VerbList      = "list"
	VerbListUnits = "list-units"
	VerbStart     = "start"
	VerbStop      = "stop"
	VerbRestart   = "restart"
	VerbStatus    = "status"
	VerbEnable    = "enable"
	VerbDisable   = "disable"
	VerbPause     = "pause"
	VerbContinue  = "continue"
	VerbHelp      = "help"
)

// PrivilegeMessage is the single diagnostic line printed when a mutating
// command is refused.
const PrivilegeMessage = "You need to run this command as administrator"

// ErrUnknownCommand is returned for a verb with no handler. Nothing is
// printed for it.
var ErrUnknownCommand = errors.New("dispatch: unknown command")

// Invocation is the command line of one run.
type Invocation struct {
	Verb     string
	Services []string
	Help     bool
}

// ParseInvocation splits positional args into verb and service names. No
// verb means list. Service names keep their order and duplicates.
func ParseInvocation(args []string, help bool) Invocation {
	inv := Invocation{Verb: VerbList, Help: help}
	if len(args) > 0 {
		inv.Verb = args[0]
		inv.Services = append([]string(nil), args[1:]...)
	}
	return inv
}

// Handlers performs the work behind each verb.
type Handlers interface {
	List(ctx context.Context) error
	Start(ctx context.Context, services []string) error
	Stop(ctx context.Context, services []string) error
	Restart(ctx context.Context, services []string) error
	Status(ctx context.Context, services []string) error
	Enable(ctx context.Context, services []string) error
	Disable(ctx context.Context, services []string) error
	Pause(ctx context.Context, services []string) error
	Continue(ctx context.Context, services []string) error
	Help(ctx context.Context) error
}

type handlerFunc func(ctx context.Context, services []string) error

// Dispatcher selects and runs the handler for an Invocation.
type Dispatcher struct {
	routes map[string]handlerFunc
	probe  privilege.Probe
	errOut io.Writer
}

// New returns a Dispatcher. errOut receives the privilege diagnostic.
func New(h Handlers, probe privilege.Probe, errOut io.Writer) *Dispatcher {
	list := func(ctx context.Context, _ []string) error { return h.List(ctx) }
	return &Dispatcher{
		routes: map[string]handlerFunc{
			VerbList:      list,
			VerbListUnits: list,
			VerbStart:     h.Start,
			VerbStop:      h.Stop,
			VerbRestart:   h.Restart,
			VerbStatus:    h.Status,
			VerbEnable:    h.Enable,
			VerbDisable:   h.Disable,
			VerbPause:     h.Pause,
			VerbContinue:  h.Continue,
			VerbHelp:      func(ctx context.Context, _ []string) error { return h.Help(ctx) },
		},
		probe:  probe,
		errOut: errOut,
	}
}

// Dispatch runs the handler for inv. The help flag wins over any verb.
// Mutating verbs are checked for privilege once, before any work starts.
func (d *Dispatcher) Dispatch(ctx context.Context, inv Invocation) error {
	verb := inv.Verb
	if inv.Help {
		verb = VerbHelp
	}

	handler, ok := d.routes[verb]
	if !ok {
		log.Debug("no handler for verb", logging.KeyVerb, verb)
		return fmt.Errorf("%w: %q", ErrUnknownCommand, verb)
	}

	if privilege.RequiresElevation(verb) && !d.probe.IsPrivileged(ctx) {
		fmt.Fprintln(d.errOut, PrivilegeMessage)
		return privilege.ErrPrivilegeDenied
	}

	log.Debug("dispatching", logging.KeyVerb, verb, "services", len(inv.Services))
	return handler(ctx, inv.Services)
}

package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/breeze-rmm/svcctl/internal/logging"
)

// Phase is the position of a service in its restart chain.
type Phase int

// Restart chain phases. A chain ends in PhaseStarted or PhaseAborted, or in
// PhasePendingStart with Err set when the start utility could not be spawned.
const (
	PhasePendingStop Phase = iota
	PhasePendingStart
	PhaseStarted
	PhaseAborted
)

func (p Phase) String() string {
	switch p {
	case PhasePendingStop:
		return "PENDING_STOP"
	case PhasePendingStart:
		return "PENDING_START"
	case PhaseStarted:
		return "STARTED"
	case PhaseAborted:
		return "ABORTED"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// ErrInvalidTransition is returned for a phase change the chain does not allow.
var ErrInvalidTransition = errors.New("orchestrator: invalid restart transition")

var transitions = map[Phase][]Phase{
	PhasePendingStop:  {PhasePendingStart, PhaseAborted},
	PhasePendingStart: {PhaseStarted},
}

// RestartOutcome is the final state of one service's restart chain.
type RestartOutcome struct {
	Service       string
	Phase         Phase
	StopExitCode  int
	StartExitCode int
	// StartSpawned is true once the start step was attempted.
	StartSpawned bool
	Err          error
}

// restartChain owns the state of a single service's restart. Chains share
// nothing with each other.
type restartChain struct {
	outcome RestartOutcome
}

func newRestartChain(service string) *restartChain {
	return &restartChain{outcome: RestartOutcome{
		Service:       service,
		Phase:         PhasePendingStop,
		StopExitCode:  -1,
		StartExitCode: -1,
	}}
}

func (c *restartChain) advance(next Phase) error {
	for _, allowed := range transitions[c.outcome.Phase] {
		if allowed == next {
			c.outcome.Phase = next
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.outcome.Phase, next)
}

// run drives the chain to completion. A stop that fails to spawn or exits
// non-zero aborts the chain without spawning start and without reporting
// anything beyond what the stop utility printed.
func (c *restartChain) run(ctx context.Context, o *Orchestrator) RestartOutcome {
	svc := c.outcome.Service
	logger := logging.WithService(log, svc)

	code, err := o.stream(ctx, "stop", svc)
	c.outcome.StopExitCode = code
	if err != nil || code != 0 {
		c.outcome.Err = err
		c.must(PhaseAborted)
		logger.Debug("restart aborted", logging.KeyPhase, c.outcome.Phase, logging.KeyExitCode, code)
		return c.outcome
	}
	c.must(PhasePendingStart)

	c.outcome.StartSpawned = true
	code, err = o.stream(ctx, "start", svc)
	c.outcome.StartExitCode = code
	if err != nil {
		c.outcome.Err = err
		logger.Debug("restart start step failed", logging.KeyPhase, c.outcome.Phase, logging.KeyError, err)
		return c.outcome
	}
	c.must(PhaseStarted)

	logger.Debug("restart finished", logging.KeyPhase, c.outcome.Phase, logging.KeyExitCode, code)
	return c.outcome
}

func (c *restartChain) must(next Phase) {
	if err := c.advance(next); err != nil {
		panic(err)
	}
}

// Package orchestrator runs `net start` and `net stop` children for a list of
// services, streaming their output, and sequences restarts per service.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/breeze-rmm/svcctl/internal/executor"
	"github.com/breeze-rmm/svcctl/internal/logging"
	"github.com/breeze-rmm/svcctl/internal/workerpool"
)

var log = logging.L("orchestrator")

const defaultNetPath = "net"

// Orchestrator fans service operations out to one child process per target.
type Orchestrator struct {
	runner      executor.Runner
	out         io.Writer
	netPath     string
	concurrency int
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithNetPath sets the start/stop utility.
func WithNetPath(path string) Option {
	return func(o *Orchestrator) {
		if path != "" {
			o.netPath = path
		}
	}
}

// WithConcurrency caps the number of children running at once. Zero or less
// runs every target at once.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		o.concurrency = n
	}
}

// New creates an Orchestrator that writes child output to out. Writes from
// concurrent children never interleave within a single Write.
func New(runner executor.Runner, out io.Writer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		runner:  runner,
		out:     &lockedWriter{w: out},
		netPath: defaultNetPath,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Start runs `net start <svc>` for every service concurrently. Non-zero exits
// are left to the child's own output; only spawn failures are returned.
func (o *Orchestrator) Start(ctx context.Context, services []string) error {
	return o.fanOut(ctx, services, func(ctx context.Context, svc string) error {
		_, err := o.stream(ctx, "start", svc)
		return err
	})
}

// Stop runs `net stop <svc>` for every service concurrently.
func (o *Orchestrator) Stop(ctx context.Context, services []string) error {
	return o.fanOut(ctx, services, func(ctx context.Context, svc string) error {
		_, err := o.stream(ctx, "stop", svc)
		return err
	})
}

// Restart runs an independent stop-then-start chain per service. Outcomes are
// returned in argument order once every chain has finished.
func (o *Orchestrator) Restart(ctx context.Context, services []string) ([]RestartOutcome, error) {
	// Each chain writes only its own slot.
	outcomes := make([]RestartOutcome, len(services))
	err := o.fanOutIndexed(ctx, services, func(ctx context.Context, i int, svc string) error {
		outcomes[i] = newRestartChain(svc).run(ctx, o)
		return outcomes[i].Err
	})
	return outcomes, err
}

func (o *Orchestrator) stream(ctx context.Context, action, svc string) (int, error) {
	logger := logging.WithService(log, svc)
	logger.Debug("spawning", "action", action)

	code, err := o.runner.Stream(ctx, o.out, o.netPath, action, svc)
	if err != nil {
		logger.Debug("child failed", "action", action, logging.KeyError, err)
		return code, err
	}
	logger.Debug("child exited", "action", action, logging.KeyExitCode, code)
	return code, nil
}

func (o *Orchestrator) fanOut(ctx context.Context, services []string, fn func(context.Context, string) error) error {
	return o.fanOutIndexed(ctx, services, func(ctx context.Context, _ int, svc string) error {
		return fn(ctx, svc)
	})
}

// fanOutIndexed runs fn once per service on a pool sized for the whole list
// and waits for all of them. Failures are aggregated, never short-circuited.
func (o *Orchestrator) fanOutIndexed(ctx context.Context, services []string, fn func(context.Context, int, string) error) error {
	if len(services) == 0 {
		return nil
	}

	pool := workerpool.ForTargets(len(services), o.concurrency)

	var mu sync.Mutex
	var merr *multierror.Error
	for i, svc := range services {
		err := pool.Submit(func() {
			if err := fn(ctx, i, svc); err != nil {
				mu.Lock()
				merr = multierror.Append(merr, err)
				mu.Unlock()
			}
		})
		if err != nil {
			mu.Lock()
			merr = multierror.Append(merr, fmt.Errorf("%s: %w", svc, err))
			mu.Unlock()
		}
	}

	// Children are bound to ctx; always wait for them to exit.
	if err := pool.Shutdown(context.WithoutCancel(ctx)); err != nil {
		mu.Lock()
		merr = multierror.Append(merr, err)
		mu.Unlock()
	}

	mu.Lock()
	defer mu.Unlock()
	if err := merr.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w: %w", executor.ErrChildProcess, err)
	}
	return nil
}

// lockedWriter makes each Write atomic with respect to other children.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

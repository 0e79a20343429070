// Package svcctl implements the service commands on top of the sc and net
// utilities.
package svcctl

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/breeze-rmm/svcctl/internal/executor"
	"github.com/breeze-rmm/svcctl/internal/logging"
	"github.com/breeze-rmm/svcctl/internal/orchestrator"
	"github.com/breeze-rmm/svcctl/internal/procinfo"
	"github.com/breeze-rmm/svcctl/internal/render"
	"github.com/breeze-rmm/svcctl/internal/svcquery"
)

var log = logging.L("svcctl")

// ErrMissingService is returned when a single-target command has no service
// argument.
var ErrMissingService = errors.New("svcctl: service name required")

// Options configures a Controller.
type Options struct {
	ScPath      string
	NetPath     string
	Concurrency int
	Wide        bool
	NoColor     bool
}

// Controller runs the handler behind each verb.
type Controller struct {
	runner executor.Runner
	orch   *orchestrator.Orchestrator
	out    io.Writer
	errOut io.Writer
	scPath string
	table  render.Options
}

// New creates a Controller writing command output to out and child
// diagnostics to errOut.
func New(runner executor.Runner, out, errOut io.Writer, opts Options) *Controller {
	scPath := opts.ScPath
	if scPath == "" {
		scPath = "sc"
	}
	return &Controller{
		runner: runner,
		orch: orchestrator.New(runner, out,
			orchestrator.WithNetPath(opts.NetPath),
			orchestrator.WithConcurrency(opts.Concurrency),
		),
		out:    out,
		errOut: errOut,
		scPath: scPath,
		table: render.Options{
			Wide:        opts.Wide,
			NoColor:     opts.NoColor,
			ProcessName: procinfo.Name,
		},
	}
}

// List enumerates every installed service and prints them as a table.
func (c *Controller) List(ctx context.Context) error {
	result, err := c.sc(ctx, "queryex", "type=service", "state=all")
	if err != nil {
		return err
	}

	records, err := svcquery.ParseListing(result.Stdout)
	if err != nil {
		return err
	}
	log.Debug("parsed service listing", "count", len(records))

	return render.ServiceTable(c.out, records, c.table)
}

// Status prints the raw query output for one service.
func (c *Controller) Status(ctx context.Context, services []string) error {
	svc, err := firstService(services)
	if err != nil {
		return err
	}
	result, err := c.sc(ctx, "query", svc)
	if err != nil {
		return err
	}
	return c.echo(result)
}

// Enable sets a service to start automatically.
func (c *Controller) Enable(ctx context.Context, services []string) error {
	return c.configure(ctx, services, "start=auto")
}

// Disable prevents a service from starting.
func (c *Controller) Disable(ctx context.Context, services []string) error {
	return c.configure(ctx, services, "start=disabled")
}

// Pause suspends a running service.
func (c *Controller) Pause(ctx context.Context, services []string) error {
	return c.control(ctx, "pause", services)
}

// Continue resumes a paused service.
func (c *Controller) Continue(ctx context.Context, services []string) error {
	return c.control(ctx, "continue", services)
}

// Start starts every named service concurrently.
func (c *Controller) Start(ctx context.Context, services []string) error {
	return c.orch.Start(ctx, services)
}

// Stop stops every named service concurrently.
func (c *Controller) Stop(ctx context.Context, services []string) error {
	return c.orch.Stop(ctx, services)
}

// Restart stops then starts every named service, one independent chain per
// service.
func (c *Controller) Restart(ctx context.Context, services []string) error {
	outcomes, err := c.orch.Restart(ctx, services)
	started := 0
	for _, o := range outcomes {
		if o.Phase == orchestrator.PhaseStarted {
			started++
		}
	}
	log.Debug("restart complete", "services", len(outcomes), "started", started)
	return err
}

// Help prints usage.
func (c *Controller) Help(ctx context.Context) error {
	_, err := io.WriteString(c.out, Usage)
	return err
}

// Usage is the text printed by the help command.
const Usage = `Usage: svcctl [options] [command]

Commands:
  list, list-units          list all services (default)
  start <service>...        start services
  stop <service>...         stop services
  restart <service>...      stop then start services
  status <service>          print the status of a service
  enable <service>          start a service automatically at boot
  disable <service>         disable a service
  pause <service>           pause a running service
  continue <service>        resume a paused service
  help                      print this help

Options:
      --code-page int       code page of utility output (default: console code page)
      --concurrency int     maximum concurrent children for start/stop/restart (0 = unlimited)
      --log-format string   log format: text or json (default "text")
      --log-level string    log level: debug, info, warn, error (default "warn")
      --no-color            disable coloured states
      --wide                add the process name column to list
  -h, --help                print this help
`

func (c *Controller) configure(ctx context.Context, services []string, startType string) error {
	svc, err := firstService(services)
	if err != nil {
		return err
	}
	result, err := c.sc(ctx, "config", svc, startType)
	if err != nil {
		return err
	}
	return c.echo(result)
}

func (c *Controller) control(ctx context.Context, action string, services []string) error {
	svc, err := firstService(services)
	if err != nil {
		return err
	}
	result, err := c.sc(ctx, action, svc)
	if err != nil {
		return err
	}
	return c.echo(result)
}

// sc runs the service control utility and blocks until it exits. A non-zero
// exit prints the utility's output and fails with ErrChildProcess.
func (c *Controller) sc(ctx context.Context, args ...string) (*executor.Result, error) {
	result, err := c.runner.Run(ctx, c.scPath, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", executor.ErrChildProcess, err)
	}
	if !result.Success() {
		exitErr := fmt.Errorf("%w: %s exited with code %d", executor.ErrChildProcess, result.Command, result.ExitCode)
		if err := c.echo(result); err != nil {
			return nil, errors.Join(exitErr, err)
		}
		return nil, exitErr
	}
	return result, nil
}

// echo prints a utility's output verbatim: stdout to out, stderr to errOut.
func (c *Controller) echo(result *executor.Result) error {
	if _, err := io.WriteString(c.out, result.Stdout); err != nil {
		return err
	}
	if result.Stderr == "" {
		return nil
	}
	_, err := io.WriteString(c.errOut, result.Stderr)
	return err
}

func firstService(services []string) (string, error) {
	if len(services) == 0 || services[0] == "" {
		return "", ErrMissingService
	}
	return services[0], nil
}

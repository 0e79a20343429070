package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/breeze-rmm/svcctl/internal/config"
	"github.com/breeze-rmm/svcctl/internal/dispatch"
	"github.com/breeze-rmm/svcctl/internal/executor"
	"github.com/breeze-rmm/svcctl/internal/logging"
	"github.com/breeze-rmm/svcctl/internal/privilege"
	"github.com/breeze-rmm/svcctl/internal/svcctl"
	"github.com/breeze-rmm/svcctl/internal/svcquery"
	"github.com/breeze-rmm/svcctl/internal/textdecode"
)

var version = "0.1.0"

var log = logging.L("main")

// Process exit codes.
const (
	exitOK           = 0
	exitError        = 1
	exitUsage        = 2
	exitPlatform     = 3
	exitPrivilege    = 4
	exitParse        = 5
	exitUnknownState = 6
	exitChild        = 7
)

var (
	errPlatformUnsupported = errors.New("svcctl: Windows is required")
	errUsage               = errors.New("svcctl: usage")
)

// buildFunc creates the handlers and privilege probe for a loaded config.
type buildFunc func(cfg *config.Config, stdout, stderr io.Writer) (dispatch.Handlers, privilege.Probe, error)

type app struct {
	stdout io.Writer
	stderr io.Writer
	build  buildFunc

	helpErr error
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if err := checkPlatform(runtime.GOOS); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCode(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := &app{stdout: os.Stdout, stderr: os.Stderr, build: buildHandlers}
	err := a.execute(ctx, args)
	report(os.Stderr, err)
	return exitCode(err)
}

func checkPlatform(goos string) error {
	if goos != "windows" {
		return fmt.Errorf("%w (running on %s)", errPlatformUnsupported, goos)
	}
	return nil
}

func (a *app) execute(ctx context.Context, args []string) error {
	root := a.rootCmd()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		return err
	}
	return a.helpErr
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "svcctl [options] [command] [service...]",
		Short:         "Control Windows services",
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.dispatch(cmd, args, false)
		},
	}
	config.RegisterFlags(cmd.Flags())
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	// --help goes through the dispatcher like the help verb.
	cmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		a.helpErr = a.dispatch(cmd, nil, true)
	})
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", errUsage, err)
	})
	return cmd
}

func (a *app) dispatch(cmd *cobra.Command, args []string, help bool) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	logging.Init(cfg.LogFormat, cfg.LogLevel, a.stderr)

	result := cfg.ValidateTiered()
	for _, w := range result.Warnings {
		log.Warn("config validation", logging.KeyError, w)
	}
	if result.HasFatals() {
		return fmt.Errorf("%w: %w", errUsage, errors.Join(result.Fatals...))
	}

	handlers, probe, err := a.build(cfg, a.stdout, a.stderr)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	inv := dispatch.ParseInvocation(args, help)
	return dispatch.New(handlers, probe, a.stderr).Dispatch(ctx, inv)
}

func buildHandlers(cfg *config.Config, stdout, stderr io.Writer) (dispatch.Handlers, privilege.Probe, error) {
	cp := textdecode.CodePage(cfg.CodePage)
	if cp == 0 {
		cp = textdecode.HostCodePage()
	}
	runner := executor.New(cp)

	probe, err := privilege.NewProbe(cfg.PrivilegeProbe, runner, cfg.NetPath)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", errUsage, err)
	}

	ctl := svcctl.New(runner, stdout, stderr, svcctl.Options{
		ScPath:      cfg.ScPath,
		NetPath:     cfg.NetPath,
		Concurrency: cfg.Concurrency,
		Wide:        cfg.Wide,
		NoColor:     cfg.NoColor,
	})
	log.Debug("handlers ready", "codePage", cp.String(), "probe", cfg.PrivilegeProbe)
	return ctl, probe, nil
}

// report prints err unless the user has already seen its diagnostic: the
// privilege line, the failing utility's own output, or nothing at all for an
// unknown verb.
func report(w io.Writer, err error) {
	switch {
	case err == nil,
		errors.Is(err, dispatch.ErrUnknownCommand),
		errors.Is(err, privilege.ErrPrivilegeDenied):
		if err != nil {
			log.Debug("command finished", logging.KeyError, err)
		}
		return
	case errors.Is(err, executor.ErrChildProcess) && !errors.Is(err, executor.ErrSpawn):
		log.Debug("utility failed", logging.KeyError, err)
		return
	}
	fmt.Fprintln(w, err)
}

func exitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, dispatch.ErrUnknownCommand):
		return exitOK
	case errors.Is(err, errUsage), errors.Is(err, svcctl.ErrMissingService):
		return exitUsage
	case errors.Is(err, errPlatformUnsupported):
		return exitPlatform
	case errors.Is(err, privilege.ErrPrivilegeDenied):
		return exitPrivilege
	case errors.Is(err, svcquery.ErrParseFailure):
		return exitParse
	case errors.Is(err, svcquery.ErrUnknownStateCode):
		return exitUnknownState
	case errors.Is(err, executor.ErrChildProcess), errors.Is(err, executor.ErrSpawn):
		return exitChild
	default:
		return exitError
	}
}

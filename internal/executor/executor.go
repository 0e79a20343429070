package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/breeze-rmm/svcctl/internal/logging"
	"github.com/breeze-rmm/svcctl/internal/textdecode"
)

var log = logging.L("executor")

const (
	// MaxOutputSize is the maximum size of stdout/stderr to capture
	MaxOutputSize = 1024 * 1024 // 1MB

	// chunkSize is the largest single Write made while streaming.
	chunkSize = 32 * 1024
)

var (
	// ErrSpawn is returned when a utility could not be started at all, as
	// opposed to starting and exiting non-zero.
	ErrSpawn = errors.New("executor: spawn failed")

	// ErrChildProcess marks a command that failed because a utility could
	// not run or exited non-zero where the caller treats that as fatal.
	ErrChildProcess = errors.New("executor: child process failed")
)

// Result is the decoded outcome of a blocking utility run.
type Result struct {
	Command  string
	Stdout   string
	Stderr   string
	ExitCode int
}

// Success reports whether the utility exited with status 0.
func (r *Result) Success() bool {
	return r.ExitCode == 0
}

// Runner spawns the service control utilities.
type Runner interface {
	// Run blocks until the utility exits and returns its decoded output.
	// A non-zero exit is reported in Result.ExitCode, not as an error.
	Run(ctx context.Context, name string, args ...string) (*Result, error)

	// Stream starts the utility and writes its combined stdout/stderr to out
	// as it arrives, each decoded chunk in a single Write. It returns the exit
	// code once the child has exited and all output has been written.
	Stream(ctx context.Context, out io.Writer, name string, args ...string) (int, error)
}

// Executor runs utilities as child processes and decodes their output from
// the configured code page.
type Executor struct {
	codePage textdecode.CodePage
}

// New creates an Executor decoding child output from cp.
func New(cp textdecode.CodePage) *Executor {
	return &Executor{codePage: cp}
}

// CodePage returns the code page child output is decoded from.
func (e *Executor) CodePage() textdecode.CodePage {
	return e.codePage
}

// Run executes name with args and waits for it to exit.
func (e *Executor) Run(ctx context.Context, name string, args ...string) (*Result, error) {
	startTime := time.Now()
	result := &Result{Command: commandLine(name, args)}

	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &limitedWriter{buf: &stdout, limit: MaxOutputSize}
	cmd.Stderr = &limitedWriter{buf: &stderr, limit: MaxOutputSize}

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			result.ExitCode = -1
			log.Debug("run failed to start", "command", result.Command, "error", err)
			return result, fmt.Errorf("%w: %s: %v", ErrSpawn, result.Command, err)
		}
		result.ExitCode = exitErr.ExitCode()
	}

	if result.Stdout, err = textdecode.Decode(stdout.Bytes(), e.codePage); err != nil {
		return result, err
	}
	if result.Stderr, err = textdecode.Decode(stderr.Bytes(), e.codePage); err != nil {
		return result, err
	}

	log.Debug("run completed", "command", result.Command, logging.KeyExitCode, result.ExitCode, "duration", time.Since(startTime))
	return result, nil
}

// Stream executes name with args, forwarding combined output as it arrives.
func (e *Executor) Stream(ctx context.Context, out io.Writer, name string, args ...string) (int, error) {
	command := commandLine(name, args)
	cmd := exec.CommandContext(ctx, name, args...)

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pw.Close()
		log.Debug("stream failed to start", "command", command, "error", err)
		return -1, fmt.Errorf("%w: %s: %v", ErrSpawn, command, err)
	}

	waitErr := make(chan error, 1)
	go func() {
		err := cmd.Wait()
		pw.Close()
		waitErr <- err
	}()

	copyErr := e.copyChunks(out, pr)
	if copyErr != nil {
		// Keep the child's pipe drained so Wait can return.
		_, _ = io.Copy(io.Discard, pr)
	}

	exitCode := 0
	if err := <-waitErr; err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return -1, fmt.Errorf("executor: wait %s: %w", command, err)
		}
		exitCode = exitErr.ExitCode()
	}

	log.Debug("stream completed", "command", command, logging.KeyExitCode, exitCode)
	return exitCode, copyErr
}

// copyChunks writes decoded output to out as soon as each read returns, so
// progress printed without a line break shows up while the child runs.
func (e *Executor) copyChunks(out io.Writer, r io.Reader) error {
	decoded, err := textdecode.NewReader(r, e.codePage)
	if err != nil {
		return err
	}

	buf := make([]byte, chunkSize)
	for {
		n, err := decoded.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func commandLine(name string, args []string) string {
	return strings.TrimSpace(name + " " + strings.Join(args, " "))
}

// limitedWriter wraps a buffer with a size limit
type limitedWriter struct {
	buf     *bytes.Buffer
	limit   int
	written int
}

func (w *limitedWriter) Write(p []byte) (n int, err error) {
	total := len(p)
	if w.written >= w.limit {
		// Discard additional data but don't error
		return total, nil
	}

	remaining := w.limit - w.written
	if len(p) > remaining {
		p = p[:remaining]
	}

	n, err = w.buf.Write(p)
	w.written += n
	return total, err // Report the full length so exec's copier sees no short write
}

package privilege

import (
	"context"
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/breeze-rmm/svcctl/internal/executor"
)

type stubRunner struct {
	result *executor.Result
	err    error
	calls  [][]string
}

func (s *stubRunner) Run(ctx context.Context, name string, args ...string) (*executor.Result, error) {
	s.calls = append(s.calls, append([]string{name}, args...))
	return s.result, s.err
}

func (s *stubRunner) Stream(ctx context.Context, out io.Writer, name string, args ...string) (int, error) {
	return 0, errors.New("not used")
}

func TestRequiresElevation(t *testing.T) {
	for _, verb := range []string{"start", "stop", "restart", "enable", "disable", "pause", "continue"} {
		if !RequiresElevation(verb) {
			t.Errorf("RequiresElevation(%q) = false, want true", verb)
		}
	}
	for _, verb := range []string{"list", "list-units", "status", "help", "bogus", ""} {
		if RequiresElevation(verb) {
			t.Errorf("RequiresElevation(%q) = true, want false", verb)
		}
	}
}

func TestNetSessionProbe(t *testing.T) {
	cases := []struct {
		name   string
		result *executor.Result
		err    error
		want   bool
	}{
		{name: "exit zero", result: &executor.Result{ExitCode: 0}, want: true},
		{name: "access denied", result: &executor.Result{ExitCode: 2, Stdout: "System error 5 has occurred."}, want: false},
		{name: "spawn failure", result: &executor.Result{ExitCode: -1}, err: executor.ErrSpawn, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			runner := &stubRunner{result: tc.result, err: tc.err}
			probe := &NetSessionProbe{Runner: runner, NetPath: "net"}

			if got := probe.IsPrivileged(context.Background()); got != tc.want {
				t.Fatalf("IsPrivileged() = %v, want %v", got, tc.want)
			}
			if len(runner.calls) != 1 {
				t.Fatalf("expected 1 call, got %d", len(runner.calls))
			}
			if want := []string{"net", "session"}; !reflect.DeepEqual(runner.calls[0], want) {
				t.Fatalf("call = %v, want %v", runner.calls[0], want)
			}
		})
	}
}

func TestNewProbe(t *testing.T) {
	runner := &stubRunner{result: &executor.Result{}}

	p, err := NewProbe("", runner, "net")
	if err != nil {
		t.Fatalf("NewProbe(\"\"): %v", err)
	}
	if _, ok := p.(*NetSessionProbe); !ok {
		t.Fatalf("default probe is %T, want *NetSessionProbe", p)
	}

	p, err = NewProbe(ProbeToken, runner, "net")
	if err != nil {
		t.Fatalf("NewProbe(token): %v", err)
	}
	if _, ok := p.(TokenProbe); !ok {
		t.Fatalf("token probe is %T, want TokenProbe", p)
	}

	if _, err := NewProbe("sudo", runner, "net"); err == nil {
		t.Fatal("expected error for unknown probe kind")
	}
}

func TestProbeFunc(t *testing.T) {
	var p Probe = ProbeFunc(func(context.Context) bool { return true })
	if !p.IsPrivileged(context.Background()) {
		t.Fatal("ProbeFunc should return the function's result")
	}
}

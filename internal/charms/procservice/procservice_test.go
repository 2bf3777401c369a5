package procservice

import (
	"errors"
	"strings"
	"testing"

	"github.com/danmuck/charmctl/internal/charm"
	"github.com/danmuck/charmctl/internal/statestore"
	"github.com/danmuck/charmctl/internal/testutil/testlog"
)

// fakeRunner records commands and returns scripted results.
type fakeRunner struct {
	commands [][]string
	stdout   []byte
	stderr   []byte
	exit     int32
	err      error
}

func (r *fakeRunner) Run(name string, args ...string) ([]byte, []byte, int32, error) {
	argv := append([]string{name}, args...)
	r.commands = append(r.commands, argv)
	return r.stdout, r.stderr, r.exit, r.err
}

func TestHooksRunConfiguredCommands(t *testing.T) {
	testlog.Start(t)

	runner := &fakeRunner{stdout: []byte("ok")}
	h := New(Config{
		Service: "mysvc",
		Start:   []string{"systemctl", "start", "mysvc"},
		Stop:    []string{"systemctl", "stop", "mysvc"},
	}, runner)

	if err := h.Start(&charm.Context{Event: "start"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := h.Stop(&charm.Context{Event: "stop"}, false); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if len(runner.commands) != 2 {
		t.Fatalf("commands = %v, want 2", runner.commands)
	}
	if got := strings.Join(runner.commands[0], " "); got != "systemctl start mysvc" {
		t.Fatalf("first command = %q", got)
	}
}

func TestUnconfiguredHookIsNoOp(t *testing.T) {
	testlog.Start(t)

	runner := &fakeRunner{}
	h := New(Config{Service: "mysvc"}, runner)
	if err := h.Install(&charm.Context{Event: "install"}); err != nil {
		t.Fatalf("install: %v", err)
	}
	if err := h.Sync(&charm.Context{Event: "service-sync"}, true); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if len(runner.commands) != 0 {
		t.Fatalf("commands = %v, want none", runner.commands)
	}
}

func TestFailedCommandBecomesHookError(t *testing.T) {
	testlog.Start(t)

	runner := &fakeRunner{
		stderr: []byte("unit not found\n"),
		exit:   5,
		err:    errors.New("exit status 5"),
	}
	h := New(Config{
		Service: "mysvc",
		Enable:  []string{"systemctl", "enable", "mysvc"},
	}, runner)

	err := h.Enable(&charm.Context{Event: "start"}, false)
	if !errors.Is(err, ErrCommandFailed) {
		t.Fatalf("err = %v, want ErrCommandFailed", err)
	}
	if !strings.Contains(err.Error(), "unit not found") {
		t.Fatalf("error %q must carry stderr", err)
	}
	if !strings.Contains(err.Error(), "exit=5") {
		t.Fatalf("error %q must carry the exit code", err)
	}
}

func TestNilRunnerDefaultsToExec(t *testing.T) {
	testlog.Start(t)

	h := New(Config{Service: "mysvc"}, nil)
	if h.runner == nil {
		t.Fatalf("nil runner must default to the local exec runner")
	}
}

func TestHooksDriveCharmLifecycle(t *testing.T) {
	testlog.Start(t)

	runner := &fakeRunner{}
	h := New(Config{
		Service: "mysvc",
		Start:   []string{"svc", "start"},
		Stop:    []string{"svc", "stop"},
	}, runner)

	c := charm.New("mysvc.0", h, statestore.NewMemStore(), nil)
	if out := c.Start(&charm.Context{Event: "start"}); out != charm.OutcomeApplied {
		t.Fatalf("start outcome = %q, want applied", out)
	}
	if c.State() != charm.StateStarted {
		t.Fatalf("state = %q, want started", c.State())
	}

	runner.err = errors.New("exit status 1")
	runner.exit = 1
	if out := c.Stop(&charm.Context{Event: "stop"}, false); out != charm.OutcomeFailed {
		t.Fatalf("stop outcome = %q, want failed", out)
	}
	if c.State() != charm.StateStarted {
		t.Fatalf("state = %q, failed stop must not drop started", c.State())
	}
}

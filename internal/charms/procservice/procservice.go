// Package procservice is a concrete Hooks implementation that manages
// a host service through configured commands, one per lifecycle hook.
// It is the reference subclass for the charm core: hooks with no
// configured command are no-ops, and a nonzero exit becomes the hook
// failure the state machine traps.
package procservice

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/charmctl/internal/charm"
	"github.com/danmuck/charmctl/internal/tools"
)

var ErrCommandFailed = errors.New("procservice: command failed")

// Config maps lifecycle hooks to argv-form host commands.
type Config struct {
	Service string
	Install []string
	Enable  []string
	Disable []string
	Start   []string
	Stop    []string
	Sync    []string
}

// Hooks drives the configured commands through a CommandRunner.
type Hooks struct {
	charm.NopHooks

	cfg    Config
	runner tools.CommandRunner
	log    zerolog.Logger
}

// New builds hooks for one service. runner may be nil; the local exec
// runner is used.
func New(cfg Config, runner tools.CommandRunner) *Hooks {
	if runner == nil {
		runner = tools.ExecRunner{}
	}
	return &Hooks{
		cfg:    cfg,
		runner: runner,
		log:    log.With().Str("service", cfg.Service).Logger(),
	}
}

func (h *Hooks) Install(ctx *charm.Context) error {
	return h.run("install", h.cfg.Install)
}

func (h *Hooks) Enable(ctx *charm.Context, force bool) error {
	return h.run("enable", h.cfg.Enable)
}

func (h *Hooks) Disable(ctx *charm.Context, force bool) error {
	return h.run("disable", h.cfg.Disable)
}

func (h *Hooks) Start(ctx *charm.Context) error {
	return h.run("start", h.cfg.Start)
}

func (h *Hooks) Stop(ctx *charm.Context, force bool) error {
	return h.run("stop", h.cfg.Stop)
}

func (h *Hooks) Sync(ctx *charm.Context, force bool) error {
	return h.run("sync", h.cfg.Sync)
}

func (h *Hooks) run(hook string, argv []string) error {
	if len(argv) == 0 {
		return nil
	}

	stdout, stderr, exitCode, err := h.runner.Run(argv[0], argv[1:]...)
	if err != nil {
		return fmt.Errorf(
			"%w: hook=%s cmd=%q exit=%d stderr=%q: %v",
			ErrCommandFailed,
			hook,
			strings.Join(argv, " "),
			exitCode,
			strings.TrimSpace(string(stderr)),
			err,
		)
	}
	h.log.Debug().
		Str("hook", hook).
		Str("cmd", strings.Join(argv, " ")).
		Str("stdout", strings.TrimSpace(string(stdout))).
		Msg("hook command ok")
	return nil
}

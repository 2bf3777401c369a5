package unitd

import (
	"testing"

	"github.com/danmuck/charmctl/internal/charm"
	"github.com/danmuck/charmctl/internal/statestore"
	"github.com/danmuck/charmctl/internal/testutil/testlog"
)

func TestStatusRecorderKeepsLatest(t *testing.T) {
	testlog.Start(t)

	r := NewStatusRecorder("unit.test")
	if got := r.Current(); got.Kind != "" {
		t.Fatalf("fresh recorder = %+v, want zero status", got)
	}

	r.SetStatus(charm.Status{Kind: charm.StatusMaintenance, Message: "installing"})
	r.SetStatus(charm.Status{Kind: charm.StatusActive, Message: "running"})

	got := r.Current()
	if got.Kind != charm.StatusActive || got.Message != "running" {
		t.Fatalf("current = %+v, want the latest status", got)
	}
}

func TestStatusRecorderAsCharmSink(t *testing.T) {
	testlog.Start(t)

	r := NewStatusRecorder("unit.test")
	c := charm.New("unit.test", nil, statestore.NewMemStore(), r)

	c.Start(&charm.Context{Event: "start"})
	if r.Current().Kind != charm.StatusActive {
		t.Fatalf("kind = %q, want active after start", r.Current().Kind)
	}

	c.Stop(&charm.Context{Event: "stop"}, false)
	if r.Current().Kind != charm.StatusMaintenance {
		t.Fatalf("kind = %q, want maintenance after stop", r.Current().Kind)
	}
}

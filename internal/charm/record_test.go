package charm

import (
	"path/filepath"
	"testing"

	"github.com/danmuck/charmctl/internal/statestore"
	"github.com/danmuck/charmctl/internal/testutil/testlog"
)

func TestRecordDefaults(t *testing.T) {
	testlog.Start(t)

	r := NewRecord(statestore.NewMemStore())
	if r.State() != StateIdle {
		t.Fatalf("default state = %q, want idle", r.State())
	}
	if !r.Stale() {
		t.Fatalf("default stale = false, want true")
	}
	if len(r.Syncs()) != 0 {
		t.Fatalf("default syncs = %v, want empty", r.Syncs())
	}
	if _, ok := r.Updated(); ok {
		t.Fatalf("fresh record must not carry an updated marker")
	}
	if _, ok := r.StatusMessage(); ok {
		t.Fatalf("fresh record must not carry a status message")
	}
}

func TestRecordDefaultsDoNotClobberRestoredState(t *testing.T) {
	testlog.Start(t)

	store := statestore.NewMemStore()
	first := NewRecord(store)
	first.SetState(StateStarted)
	first.SetStale(false)
	first.SetSyncValue("db", true)

	second := NewRecord(store)
	if second.State() != StateStarted {
		t.Fatalf("restored state = %q, want started", second.State())
	}
	if second.Stale() {
		t.Fatalf("restored stale = true, want false")
	}
	if v, ok := second.SyncValue("db"); !ok || !v {
		t.Fatalf("restored sync db = (%v, %v), want (true, true)", v, ok)
	}
}

func TestRecordSurvivesFileReload(t *testing.T) {
	testlog.Start(t)

	path := filepath.Join(t.TempDir(), "unit.toml")
	store, err := statestore.OpenFile(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	r := NewRecord(store)
	r.SetState(StateWaiting)
	r.SetStale(false)
	r.SetStatusMessage("mid-upgrade")
	r.SetUpdated(Provenance{At: "20260101-120000", Reason: "state"})
	r.SetSyncValue("db", true)
	r.SetSyncValue("cluster", false)

	reopened, err := statestore.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	restored := NewRecord(reopened)

	if restored.State() != StateWaiting {
		t.Fatalf("state = %q, want waiting", restored.State())
	}
	if restored.Stale() {
		t.Fatalf("stale = true, want false")
	}
	if msg, ok := restored.StatusMessage(); !ok || msg != "mid-upgrade" {
		t.Fatalf("status message = (%q, %v), want mid-upgrade", msg, ok)
	}
	updated, ok := restored.Updated()
	if !ok || updated.Reason != "state" || updated.At != "20260101-120000" {
		t.Fatalf("updated = (%+v, %v), want the stamped provenance", updated, ok)
	}
	syncs := restored.Syncs()
	if len(syncs) != 2 || !syncs["db"] || syncs["cluster"] {
		t.Fatalf("syncs = %v, want db=true cluster=false", syncs)
	}
}

func TestRecordIgnoresCorruptState(t *testing.T) {
	testlog.Start(t)

	store := statestore.NewMemStore()
	if err := store.Set("state", "levitating"); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	r := NewRecord(store)
	if r.State() != StateIdle {
		t.Fatalf("state = %q, want idle fallback for unknown value", r.State())
	}
}

func TestClearStatusMessageReadsAbsent(t *testing.T) {
	testlog.Start(t)

	r := NewRecord(statestore.NewMemStore())
	r.SetStatusMessage("note")
	r.ClearStatusMessage()
	if _, ok := r.StatusMessage(); ok {
		t.Fatalf("cleared message must read as absent")
	}
}

package charm

import (
	"errors"
	"testing"

	"github.com/danmuck/charmctl/internal/testutil/testlog"
)

func TestInitSyncKeepsExistingValue(t *testing.T) {
	testlog.Start(t)

	c, _, _ := newTestCharm(t)
	c.InitSync("db", true, nil)
	c.InitSync("db", false, nil)
	if !c.Sync("db") {
		t.Fatalf("InitSync must not overwrite an existing value")
	}
}

func TestInitSyncRebindsHandler(t *testing.T) {
	testlog.Start(t)

	c, _, _ := newTestCharm(t)
	var fired string
	c.InitSync("db", false, func(key string, status bool) error {
		fired = "first"
		return nil
	})
	c.InitSync("db", false, func(key string, status bool) error {
		fired = "second"
		return nil
	})

	c.SetSync("db", true)
	if fired != "second" {
		t.Fatalf("handler fired = %q, want the rebound handler", fired)
	}
}

func TestSetSyncUnchangedValueIsRefused(t *testing.T) {
	testlog.Start(t)

	c, _, _ := newTestCharm(t)
	calls := 0
	c.InitSync("db", true, func(key string, status bool) error {
		calls++
		return nil
	})

	if out := c.SetSync("db", true); out != OutcomeRefused {
		t.Fatalf("unchanged set sync = %q, want refused", out)
	}
	if calls != 0 {
		t.Fatalf("handler calls = %d, want 0 for unchanged value", calls)
	}
}

func TestSetSyncUnknownKeyAlwaysApplies(t *testing.T) {
	testlog.Start(t)

	c, _, _ := newTestCharm(t)
	// even a false write to an unknown key records it
	if out := c.SetSync("cluster", false); out != OutcomeApplied {
		t.Fatalf("set sync on unknown key = %q, want applied", out)
	}
	syncs := c.Syncs()
	if v, ok := syncs["cluster"]; !ok || v {
		t.Fatalf("syncs = %v, want cluster recorded false", syncs)
	}
}

func TestSetSyncInvokesHandlerWithValue(t *testing.T) {
	testlog.Start(t)

	c, _, _ := newTestCharm(t)
	var gotKey string
	var gotStatus bool
	c.InitSync("db", false, func(key string, status bool) error {
		gotKey, gotStatus = key, status
		return nil
	})

	c.SetSync("db", true)
	if gotKey != "db" || !gotStatus {
		t.Fatalf("handler saw (%q, %v), want (db, true)", gotKey, gotStatus)
	}
}

func TestRetriggerSyncFiresHandlerWithoutChange(t *testing.T) {
	testlog.Start(t)

	c, _, _ := newTestCharm(t)
	calls := 0
	c.InitSync("db", true, func(key string, status bool) error {
		if !status {
			t.Fatalf("retrigger must pass the stored value")
		}
		calls++
		return nil
	})

	if out := c.RetriggerSync("db"); out != OutcomeApplied {
		t.Fatalf("retrigger = %q, want applied", out)
	}
	if calls != 1 {
		t.Fatalf("handler calls = %d, want 1", calls)
	}
	if !c.Sync("db") {
		t.Fatalf("retrigger must not change the stored value")
	}
}

func TestSyncHandlerErrorIsSwallowed(t *testing.T) {
	testlog.Start(t)

	c, _, _ := newTestCharm(t)
	c.InitSync("db", false, func(key string, status bool) error {
		return errors.New("downstream rejected update")
	})

	if out := c.SetSync("db", true); out != OutcomeApplied {
		t.Fatalf("set sync with failing handler = %q, want applied", out)
	}
	if !c.Sync("db") {
		t.Fatalf("handler failure must not roll back the value")
	}
}

func TestSyncHandlerPanicIsTrapped(t *testing.T) {
	testlog.Start(t)

	c, _, _ := newTestCharm(t)
	c.InitSync("db", false, func(key string, status bool) error {
		panic("handler exploded")
	})

	if out := c.SetSync("db", true); out != OutcomeApplied {
		t.Fatalf("set sync with panicking handler = %q, want applied", out)
	}
}

func TestIsSyncedIgnoresUnrelatedKeys(t *testing.T) {
	testlog.Start(t)

	c, _, _ := newTestCharm(t)
	c.InitSync("db", true, nil)
	c.InitSync("optional", false, nil)
	c.SetRequiredSyncs([]string{"db"})

	if !c.IsSynced() {
		t.Fatalf("unrelated false key must not break IsSynced")
	}
}

func TestIsSyncedVacuouslyTrue(t *testing.T) {
	testlog.Start(t)

	c, _, _ := newTestCharm(t)
	if !c.IsSynced() {
		t.Fatalf("empty required list must be synced")
	}
}

func TestIsSyncedRequiresEveryKey(t *testing.T) {
	testlog.Start(t)

	c, _, _ := newTestCharm(t)
	c.InitSync("db", true, nil)
	c.InitSync("cluster", false, nil)
	c.SetRequiredSyncs([]string{"db", "cluster"})

	if c.IsSynced() {
		t.Fatalf("one unsatisfied required key must fail IsSynced")
	}
	c.SetSync("cluster", true)
	if !c.IsSynced() {
		t.Fatalf("all required keys satisfied must pass IsSynced")
	}
}

func TestSyncsContainExactlyRegisteredKeys(t *testing.T) {
	testlog.Start(t)

	c, _, _ := newTestCharm(t)
	c.InitSync("db", false, nil)
	c.SetSync("cluster", true)
	c.SetSync("db", true)
	c.RetriggerSync("db")

	syncs := c.Syncs()
	if len(syncs) != 2 {
		t.Fatalf("syncs = %v, want exactly the registered keys", syncs)
	}
	for _, key := range []string{"db", "cluster"} {
		if _, ok := syncs[key]; !ok {
			t.Fatalf("syncs = %v, missing %q", syncs, key)
		}
	}
}

func TestSyncsSnapshotIsIsolated(t *testing.T) {
	testlog.Start(t)

	c, _, _ := newTestCharm(t)
	c.InitSync("db", true, nil)

	snap := c.Syncs()
	snap["db"] = false
	if !c.Sync("db") {
		t.Fatalf("mutating the snapshot must not change stored syncs")
	}
}

func TestRequiredSyncsReturnsCopy(t *testing.T) {
	testlog.Start(t)

	c, _, _ := newTestCharm(t)
	c.SetRequiredSyncs([]string{"db"})
	keys := c.RequiredSyncs()
	keys[0] = "mutated"
	if got := c.RequiredSyncs()[0]; got != "db" {
		t.Fatalf("required syncs = %q, want db", got)
	}
}

package unitd

import (
	"errors"
	"testing"

	"github.com/danmuck/charmctl/internal/charm"
	"github.com/danmuck/charmctl/internal/statestore"
	"github.com/danmuck/charmctl/internal/testutil/testlog"
)

func newUnitCharm(unit string) *charm.ServiceCharm {
	return charm.New(unit, nil, statestore.NewMemStore(), nil)
}

func TestRegistryRegisterAndResolve(t *testing.T) {
	testlog.Start(t)

	r := NewRegistry()
	c := newUnitCharm("mysvc.0")
	if err := r.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}

	got, ok := r.Resolve("mysvc.0")
	if !ok || got != c {
		t.Fatalf("resolve = (%v, %v), want the registered charm", got, ok)
	}
	if _, ok := r.Resolve("absent"); ok {
		t.Fatalf("unknown unit must not resolve")
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	testlog.Start(t)

	r := NewRegistry()
	if err := r.Register(newUnitCharm("mysvc.0")); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register(newUnitCharm("mysvc.0")); !errors.Is(err, ErrCharmExists) {
		t.Fatalf("err = %v, want ErrCharmExists", err)
	}
}

func TestRegistryRejectsNilCharm(t *testing.T) {
	testlog.Start(t)

	r := NewRegistry()
	if err := r.Register(nil); !errors.Is(err, ErrCharmNil) {
		t.Fatalf("err = %v, want ErrCharmNil", err)
	}
}

func TestRegistryRejectsInvalidUnitNames(t *testing.T) {
	testlog.Start(t)

	r := NewRegistry()
	for _, unit := range []string{"", "Bad Name", "-lead", "trail-", "a..b", "UPPER"} {
		if err := r.Register(newUnitCharm(unit)); !errors.Is(err, ErrInvalidUnitName) {
			t.Fatalf("unit %q err = %v, want ErrInvalidUnitName", unit, err)
		}
	}
	for _, unit := range []string{"mysvc.0", "node-a_1", "db"} {
		if err := r.Register(newUnitCharm(unit)); err != nil {
			t.Fatalf("unit %q should register: %v", unit, err)
		}
	}
}

func TestRegistryUnitsSorted(t *testing.T) {
	testlog.Start(t)

	r := NewRegistry()
	for _, unit := range []string{"zeta.1", "alpha.0", "mid.2"} {
		if err := r.Register(newUnitCharm(unit)); err != nil {
			t.Fatalf("register %s: %v", unit, err)
		}
	}
	units := r.Units()
	if len(units) != 3 || units[0] != "alpha.0" || units[1] != "mid.2" || units[2] != "zeta.1" {
		t.Fatalf("units = %v, want sorted", units)
	}
}

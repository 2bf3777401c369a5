package unitd

import (
	"errors"
	"fmt"
	"sort"

	"github.com/danmuck/charmctl/internal/charm"
)

var (
	ErrCharmExists     = errors.New("unitd: charm already registered")
	ErrCharmNil        = errors.New("unitd: charm is nil")
	ErrInvalidUnitName = errors.New("unitd: invalid unit name")
)

// Registry stores hosted charms by unit name.
type Registry struct {
	items map[string]*charm.ServiceCharm
}

func NewRegistry() *Registry {
	return &Registry{items: make(map[string]*charm.ServiceCharm)}
}

// Register adds a charm under its unit name.
func (r *Registry) Register(c *charm.ServiceCharm) error {
	if c == nil {
		return ErrCharmNil
	}
	unit := c.Unit()
	if !isValidUnitName(unit) {
		return fmt.Errorf("%w: %q", ErrInvalidUnitName, unit)
	}
	if _, ok := r.items[unit]; ok {
		return fmt.Errorf("%w: %s", ErrCharmExists, unit)
	}
	r.items[unit] = c
	return nil
}

// Resolve returns a charm by unit name.
func (r *Registry) Resolve(unit string) (*charm.ServiceCharm, bool) {
	c, ok := r.items[unit]
	return c, ok
}

// Units returns registered unit names in deterministic order.
func (r *Registry) Units() []string {
	out := make([]string, 0, len(r.items))
	for unit := range r.items {
		out = append(out, unit)
	}
	sort.Strings(out)
	return out
}

func isValidUnitName(unit string) bool {
	if unit == "" {
		return false
	}
	lastSep := false
	for i := 0; i < len(unit); i++ {
		c := unit[i]
		isLower := c >= 'a' && c <= 'z'
		isDigit := c >= '0' && c <= '9'
		isSep := c == '.' || c == '-' || c == '_'
		if !(isLower || isDigit || isSep) {
			return false
		}
		if i == 0 || i == len(unit)-1 {
			if isSep {
				return false
			}
		}
		if isSep && lastSep {
			return false
		}
		lastSep = isSep
	}
	return true
}

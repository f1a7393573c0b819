// Package ids allocates resource identifiers that are never reused for the
// lifetime of the process.
//
// Every resource kind draws from its own disjoint range so an id is
// unambiguous even without knowing its kind. The first window id is 1982.
package ids

import (
	"fmt"
	"sync/atomic"
)

// Kind identifies a resource kind.
type Kind int

const (
	Window Kind = iota
	Menubar
	Menu
	numKinds
)

func (k Kind) String() string {
	switch k {
	case Window:
		return "window"
	case Menubar:
		return "menubar"
	case Menu:
		return "menu"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

const rangeSize = 1 << 28

// Range bounds, [base, limit). Windows keep their historical first id.
var ranges = [numKinds]struct{ base, limit int32 }{
	Window:  {base: 1982, limit: 1 * rangeSize},
	Menubar: {base: 1 * rangeSize, limit: 2 * rangeSize},
	Menu:    {base: 2 * rangeSize, limit: 3 * rangeSize},
}

// Base returns the first id handed out for k.
func Base(k Kind) int32 { return ranges[k].base }

// KindOf returns the kind whose range contains id.
func KindOf(id int32) (Kind, bool) {
	for k := Kind(0); k < numKinds; k++ {
		if id >= ranges[k].base && id < ranges[k].limit {
			return k, true
		}
	}
	return 0, false
}

// Allocator hands out strictly increasing ids per kind.
// The zero value is not usable; use New.
type Allocator struct {
	next [numKinds]atomic.Int32
}

// New returns an allocator positioned at each kind's base.
func New() *Allocator {
	a := &Allocator{}
	for k := Kind(0); k < numKinds; k++ {
		a.next[k].Store(ranges[k].base)
	}
	return a
}

// Next returns the next id for k. It fails only when the kind's range is
// exhausted; ids are never recycled to avoid that.
func (a *Allocator) Next(k Kind) (int32, error) {
	if k < 0 || k >= numKinds {
		return 0, fmt.Errorf("unknown resource kind %d", int(k))
	}
	id := a.next[k].Add(1) - 1
	if id >= ranges[k].limit {
		a.next[k].Store(ranges[k].limit)
		return 0, fmt.Errorf("%s id space exhausted", k)
	}
	return id, nil
}

var process = New()

// Process returns the process-wide allocator shared by all connections.
func Process() *Allocator { return process }

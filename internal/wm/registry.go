package wm

import (
	"fmt"
	"sort"

	"github.com/1broseidon/winserv/internal/gfx"
	"github.com/1broseidon/winserv/internal/ids"
)

// ErrDisplayConflict is returned when a menu would be shown both as a popup
// and from a menubar.
var ErrDisplayConflict = fmt.Errorf("%w: menu is already displayed in another mode", ErrInvalidArgument)

// IterationDecision lets ForEach visitors stop early.
type IterationDecision int

const (
	Continue IterationDecision = iota
	Break
)

// Ownership classifies an id relative to one registry.
type Ownership int

const (
	// Foreign ids were never allocated to this registry's owner.
	Foreign Ownership = iota
	// Live ids resolve to a resource.
	Live
	// Retired ids were owned but their resource has been destroyed.
	Retired
)

// Table maps ids of one kind to exclusively owned resources. It remembers
// removed ids so a stale reference can be told apart from a foreign one.
type Table[T any] struct {
	kind    ids.Kind
	live    map[int32]T
	retired map[int32]struct{}
}

func newTable[T any](kind ids.Kind) *Table[T] {
	return &Table[T]{
		kind:    kind,
		live:    make(map[int32]T),
		retired: make(map[int32]struct{}),
	}
}

// Kind returns the resource kind stored in the table.
func (t *Table[T]) Kind() ids.Kind { return t.kind }

// Insert adds a resource under id.
func (t *Table[T]) Insert(id int32, v T) error {
	if k, ok := ids.KindOf(id); !ok || k != t.kind {
		return fmt.Errorf("id %d is not a %s id", id, t.kind)
	}
	if _, exists := t.live[id]; exists {
		return fmt.Errorf("%s %d already registered", t.kind, id)
	}
	if _, was := t.retired[id]; was {
		return fmt.Errorf("%s %d was already used", t.kind, id)
	}
	t.live[id] = v
	return nil
}

// Lookup resolves a live id.
func (t *Table[T]) Lookup(id int32) (T, bool) {
	v, ok := t.live[id]
	return v, ok
}

// Remove takes the resource out of the table and hands ownership back to the
// caller for teardown.
func (t *Table[T]) Remove(id int32) (T, bool) {
	v, ok := t.live[id]
	if !ok {
		return v, false
	}
	delete(t.live, id)
	t.retired[id] = struct{}{}
	return v, true
}

// Ownership reports how id relates to this table.
func (t *Table[T]) Ownership(id int32) Ownership {
	if _, ok := t.live[id]; ok {
		return Live
	}
	if _, ok := t.retired[id]; ok {
		return Retired
	}
	return Foreign
}

// Len returns the number of live resources.
func (t *Table[T]) Len() int { return len(t.live) }

// IDs returns live ids in ascending order.
func (t *Table[T]) IDs() []int32 {
	out := make([]int32, 0, len(t.live))
	for id := range t.live {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ForEach visits live resources in ascending id order until fn returns
// Break. Visitors may remove the resource they are handed.
func (t *Table[T]) ForEach(fn func(T) IterationDecision) {
	for _, id := range t.IDs() {
		v, ok := t.live[id]
		if !ok {
			continue
		}
		if fn(v) == Break {
			return
		}
	}
}

// Registry is the set of resources owned by one client connection.
type Registry struct {
	Windows  *Table[*Window]
	Menubars *Table[*Menubar]
	Menus    *Table[*Menu]
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		Windows:  newTable[*Window](ids.Window),
		Menubars: newTable[*Menubar](ids.Menubar),
		Menus:    newTable[*Menu](ids.Menu),
	}
}

// Ownership classifies id against the table for its kind. Ids outside every
// kind range are Foreign.
func (r *Registry) Ownership(id int32) Ownership {
	k, ok := ids.KindOf(id)
	if !ok {
		return Foreign
	}
	switch k {
	case ids.Window:
		return r.Windows.Ownership(id)
	case ids.Menubar:
		return r.Menubars.Ownership(id)
	case ids.Menu:
		return r.Menus.Ownership(id)
	}
	return Foreign
}

// IsEmpty reports whether the registry owns no live resources.
func (r *Registry) IsEmpty() bool {
	return r.Windows.Len() == 0 && r.Menubars.Len() == 0 && r.Menus.Len() == 0
}

// WindowMenubar resolves the window's weak menubar reference.
func (r *Registry) WindowMenubar(w *Window) (*Menubar, bool) {
	if w.menubarID == 0 {
		return nil, false
	}
	return r.Menubars.Lookup(w.menubarID)
}

// SetWindowMenubar points w at mb (nil clears). Any other window of this
// registry that referenced mb is detached; its id is returned (0 if none).
func (r *Registry) SetWindowMenubar(w *Window, mb *Menubar) int32 {
	if mb == nil {
		w.menubarID = 0
		return 0
	}
	var detached int32
	r.Windows.ForEach(func(other *Window) IterationDecision {
		if other != w && other.menubarID == mb.id {
			other.menubarID = 0
			detached = other.id
			return Break
		}
		return Continue
	})
	w.menubarID = mb.id
	return detached
}

// MenuAttachment resolves the menubar a menu is attached to, if it is still
// alive and still lists the menu.
func (r *Registry) MenuAttachment(m *Menu) (*Menubar, bool) {
	if m.menubarID == 0 {
		return nil, false
	}
	mb, ok := r.Menubars.Lookup(m.menubarID)
	if !ok || !mb.references(m.id) {
		return nil, false
	}
	return mb, true
}

// DisplayMode reports how m is currently shown.
func (r *Registry) DisplayMode(m *Menu) DisplayMode {
	if m.popup {
		return DisplayPopup
	}
	if _, ok := r.MenuAttachment(m); ok {
		return DisplayAttached
	}
	return DisplayHidden
}

// AttachMenu appends m to mb. It fails without side effects if m is popped
// up or already attached to any menubar.
func (r *Registry) AttachMenu(mb *Menubar, m *Menu) error {
	if r.DisplayMode(m) != DisplayHidden {
		return ErrDisplayConflict
	}
	mb.menuIDs = append(mb.menuIDs, m.id)
	m.menubarID = mb.id
	return nil
}

// PopupMenu switches m into popup mode anchored at p. It fails without side
// effects if m is attached to a menubar.
func (r *Registry) PopupMenu(m *Menu, p gfx.Point) error {
	if _, ok := r.MenuAttachment(m); ok {
		return ErrDisplayConflict
	}
	m.popup = true
	m.popupAt = p
	return nil
}

// MenubarMenus returns the live menus referenced by mb, in order.
func (r *Registry) MenubarMenus(mb *Menubar) []*Menu {
	out := make([]*Menu, 0, len(mb.menuIDs))
	for _, id := range mb.menuIDs {
		if m, ok := r.Menus.Lookup(id); ok {
			out = append(out, m)
		}
	}
	return out
}

// Submenu resolves an item's weak submenu reference.
func (r *Registry) Submenu(item MenuItem) (*Menu, bool) {
	if item.SubmenuID == 0 {
		return nil, false
	}
	return r.Menus.Lookup(item.SubmenuID)
}

package wm

import (
	"errors"

	"github.com/1broseidon/winserv/internal/gfx"
)

// ErrItemNotFound is returned when a menu item identifier or index does not
// resolve within an otherwise valid menu.
var ErrItemNotFound = errors.New("menu item not found")

// DisplayMode describes how a menu is currently shown.
type DisplayMode int

const (
	DisplayHidden DisplayMode = iota
	DisplayPopup
	DisplayAttached
)

func (m DisplayMode) String() string {
	switch m {
	case DisplayPopup:
		return "popup"
	case DisplayAttached:
		return "attached"
	default:
		return "hidden"
	}
}

// MenuItem is either a separator or an activatable entry.
type MenuItem struct {
	Separator  bool
	Identifier int
	Text       string
	Shortcut   string
	Icon       *gfx.Bitmap
	Enabled    bool
	Checkable  bool
	Checked    bool
	IsDefault  bool
	Exclusive  bool
	// SubmenuID is a weak reference to another menu of the same client.
	SubmenuID int32
}

// Menu is an ordered list of items owned by one client.
type Menu struct {
	id       int32
	clientID int
	name     string
	items    []MenuItem

	popup   bool
	popupAt gfx.Point

	// menubarID is a weak reference to the menubar this menu was attached
	// to; it is only meaningful while that menubar is alive.
	menubarID int32
}

// NewMenu builds an empty, hidden menu.
func NewMenu(id int32, clientID int, name string) *Menu {
	return &Menu{id: id, clientID: clientID, name: name}
}

func (m *Menu) ID() int32          { return m.id }
func (m *Menu) ClientID() int      { return m.clientID }
func (m *Menu) Name() string       { return m.name }
func (m *Menu) Items() []MenuItem  { return m.items }
func (m *Menu) IsPopup() bool      { return m.popup }
func (m *Menu) PopupAt() gfx.Point { return m.popupAt }
func (m *Menu) MenubarID() int32   { return m.menubarID }

// AddItem appends an entry.
func (m *Menu) AddItem(item MenuItem) error {
	if item.Icon != nil {
		if err := item.Icon.Validate(); err != nil {
			return invalidf("menu item icon: %v", err)
		}
	}
	item.Separator = false
	m.items = append(m.items, item)
	return nil
}

// AddSeparator appends a separator marker.
func (m *Menu) AddSeparator() {
	m.items = append(m.items, MenuItem{Separator: true})
}

// Item returns the first entry carrying identifier.
func (m *Menu) Item(identifier int) (*MenuItem, bool) {
	for i := range m.items {
		if !m.items[i].Separator && m.items[i].Identifier == identifier {
			return &m.items[i], true
		}
	}
	return nil, false
}

// UpdateItem replaces the mutable fields of the entry carrying identifier.
// The item's icon is preserved.
func (m *Menu) UpdateItem(identifier int, update MenuItem) error {
	item, ok := m.Item(identifier)
	if !ok {
		return ErrItemNotFound
	}
	icon := item.Icon
	*item = update
	item.Separator = false
	item.Identifier = identifier
	item.Icon = icon
	return nil
}

// SetChecked toggles a checkable item; exclusive items uncheck their
// siblings in the same separator-delimited group.
func (m *Menu) SetChecked(identifier int, checked bool) error {
	idx := -1
	for i := range m.items {
		if !m.items[i].Separator && m.items[i].Identifier == identifier {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrItemNotFound
	}
	item := &m.items[idx]
	if !item.Checkable {
		return invalidf("menu item %d is not checkable", identifier)
	}
	if checked && item.Exclusive {
		for i := idx - 1; i >= 0 && !m.items[i].Separator; i-- {
			if m.items[i].Exclusive {
				m.items[i].Checked = false
			}
		}
		for i := idx + 1; i < len(m.items) && !m.items[i].Separator; i++ {
			if m.items[i].Exclusive {
				m.items[i].Checked = false
			}
		}
	}
	item.Checked = checked
	return nil
}

// ToggleChecked flips a checkable item as activation does. Exclusive items
// only ever become checked, so their group keeps one checked entry.
func (m *Menu) ToggleChecked(identifier int) error {
	item, ok := m.Item(identifier)
	if !ok {
		return ErrItemNotFound
	}
	if item.Exclusive {
		return m.SetChecked(identifier, true)
	}
	return m.SetChecked(identifier, !item.Checked)
}

// Dismiss returns a popup menu to the hidden state. It reports whether the
// menu was popped up.
func (m *Menu) Dismiss() bool {
	if !m.popup {
		return false
	}
	m.popup = false
	m.popupAt = gfx.Point{}
	return true
}

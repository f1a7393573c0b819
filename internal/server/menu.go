package server

import (
	"github.com/1broseidon/winserv/internal/ids"
	"github.com/1broseidon/winserv/internal/ipc"
	"github.com/1broseidon/winserv/internal/wm"
)

func (s *Server) handleCreateMenubar(c *ClientConnection) (any, error) {
	id, err := s.ids.Next(ids.Menubar)
	if err != nil {
		return nil, invalidf(ipc.OpCreateMenubar, "%v", err)
	}
	if err := c.registry.Menubars.Insert(id, wm.NewMenubar(id, c.id)); err != nil {
		return nil, invalidf(ipc.OpCreateMenubar, "%v", err)
	}
	s.metrics.ResourceCreated(ids.Menubar.String())
	return ipc.CreateMenubarResponse{MenubarID: id}, nil
}

func (s *Server) handleDestroyMenubar(c *ClientConnection, m *ipc.DestroyMenubar) error {
	mb, err := c.menubar(m.Op(), m.MenubarID)
	if err != nil {
		return err
	}
	s.destroyMenubar(c, mb)
	return nil
}

// destroyMenubar removes mb and detaches the window showing it. Menus that
// were attached become hidden through their weak reference.
func (s *Server) destroyMenubar(c *ClientConnection, mb *wm.Menubar) {
	if _, ok := c.registry.Menubars.Remove(mb.ID()); !ok {
		return
	}
	c.registry.Windows.ForEach(func(w *wm.Window) wm.IterationDecision {
		if w.MenubarID() == mb.ID() {
			c.registry.SetWindowMenubar(w, nil)
			s.bridge.InvalidateRegion(w.Rect())
		}
		return wm.Continue
	})
	s.metrics.ResourceDestroyed(ids.Menubar.String())
}

func (s *Server) handleCreateMenu(c *ClientConnection, m *ipc.CreateMenu) (any, error) {
	id, err := s.ids.Next(ids.Menu)
	if err != nil {
		return nil, invalidf(m.Op(), "%v", err)
	}
	if err := c.registry.Menus.Insert(id, wm.NewMenu(id, c.id, m.Name)); err != nil {
		return nil, invalidf(m.Op(), "%v", err)
	}
	s.metrics.ResourceCreated(ids.Menu.String())
	return ipc.CreateMenuResponse{MenuID: id}, nil
}

func (s *Server) handleDestroyMenu(c *ClientConnection, m *ipc.DestroyMenu) error {
	menu, err := c.menu(m.Op(), m.MenuID)
	if err != nil {
		return err
	}
	s.destroyMenu(c, menu)
	return nil
}

func (s *Server) destroyMenu(c *ClientConnection, m *wm.Menu) {
	if s.isActivePopup(c, m) {
		s.activePopup = nil
	}
	m.Dismiss()
	if _, ok := c.registry.Menus.Remove(m.ID()); !ok {
		return
	}
	s.metrics.ResourceDestroyed(ids.Menu.String())
}

func (s *Server) isActivePopup(c *ClientConnection, m *wm.Menu) bool {
	return s.activePopup != nil && s.activePopup.clientID == c.id && s.activePopup.menuID == m.ID()
}

func (s *Server) handleAddMenuToMenubar(c *ClientConnection, m *ipc.AddMenuToMenubar) error {
	mb, err := c.menubar(m.Op(), m.MenubarID)
	if err != nil {
		return err
	}
	menu, err := c.menu(m.Op(), m.MenuID)
	if err != nil {
		return err
	}
	return classify(m.Op(), c.registry.AttachMenu(mb, menu))
}

func (s *Server) handleSetWindowMenubar(c *ClientConnection, m *ipc.SetWindowMenubar) error {
	w, err := c.window(m.Op(), m.WindowID)
	if err != nil {
		return err
	}
	var mb *wm.Menubar
	if m.MenubarID != 0 {
		if mb, err = c.menubar(m.Op(), m.MenubarID); err != nil {
			return err
		}
	}
	if detached := c.registry.SetWindowMenubar(w, mb); detached != 0 {
		if other, ok := c.registry.Windows.Lookup(detached); ok {
			s.bridge.InvalidateRegion(other.Rect())
		}
	}
	s.bridge.InvalidateRegion(w.Rect())
	return nil
}

// submenu resolves an item's submenu reference. Zero means none.
func (s *Server) submenu(c *ClientConnection, op ipc.Op, menu *wm.Menu, id int32) error {
	if id == 0 {
		return nil
	}
	if id == menu.ID() {
		return invalidf(op, "menu %d cannot be its own submenu", id)
	}
	_, err := c.menu(op, id)
	return err
}

func (s *Server) handleAddMenuItem(c *ClientConnection, m *ipc.AddMenuItem) error {
	menu, err := c.menu(m.Op(), m.MenuID)
	if err != nil {
		return err
	}
	if err := s.submenu(c, m.Op(), menu, m.SubmenuID); err != nil {
		return err
	}
	item := wm.MenuItem{
		Identifier: m.Identifier,
		Text:       m.Text,
		Shortcut:   m.Shortcut,
		Icon:       m.Icon,
		Enabled:    m.Enabled,
		Checkable:  m.Checkable,
		Checked:    m.Checked && !m.Exclusive,
		IsDefault:  m.IsDefault,
		Exclusive:  m.Exclusive,
		SubmenuID:  m.SubmenuID,
	}
	if m.Checked && !m.Checkable {
		return invalidf(m.Op(), "menu item %d is checked but not checkable", m.Identifier)
	}
	if err := menu.AddItem(item); err != nil {
		return classify(m.Op(), err)
	}
	if m.Checked && m.Exclusive {
		return classify(m.Op(), menu.SetChecked(m.Identifier, true))
	}
	return nil
}

func (s *Server) handleAddMenuSeparator(c *ClientConnection, m *ipc.AddMenuSeparator) error {
	menu, err := c.menu(m.Op(), m.MenuID)
	if err != nil {
		return err
	}
	menu.AddSeparator()
	return nil
}

func (s *Server) handleUpdateMenuItem(c *ClientConnection, m *ipc.UpdateMenuItem) error {
	menu, err := c.menu(m.Op(), m.MenuID)
	if err != nil {
		return err
	}
	if err := s.submenu(c, m.Op(), menu, m.SubmenuID); err != nil {
		return err
	}
	if m.Checked && !m.Checkable {
		return invalidf(m.Op(), "menu item %d is checked but not checkable", m.Identifier)
	}
	update := wm.MenuItem{
		Text:      m.Text,
		Shortcut:  m.Shortcut,
		Enabled:   m.Enabled,
		Checkable: m.Checkable,
		Checked:   m.Checked && !m.Exclusive,
		IsDefault: m.IsDefault,
		Exclusive: m.Exclusive,
		SubmenuID: m.SubmenuID,
	}
	if err := menu.UpdateItem(m.Identifier, update); err != nil {
		return classify(m.Op(), err)
	}
	if m.Checked && m.Exclusive {
		return classify(m.Op(), menu.SetChecked(m.Identifier, true))
	}
	return nil
}

func (s *Server) handlePopupMenu(c *ClientConnection, m *ipc.PopupMenu) error {
	menu, err := c.menu(m.Op(), m.MenuID)
	if err != nil {
		return err
	}
	if err := c.registry.PopupMenu(menu, m.ScreenPosition); err != nil {
		return classify(m.Op(), err)
	}
	if !s.isActivePopup(c, menu) {
		s.dismissActivePopup()
		s.activePopup = &popupRef{clientID: c.id, menuID: menu.ID()}
	}
	c.logger.Debug("menu popped up", "menu_id", menu.ID(), "at", m.ScreenPosition)
	return nil
}

func (s *Server) handleDismissMenu(c *ClientConnection, m *ipc.DismissMenu) error {
	menu, err := c.menu(m.Op(), m.MenuID)
	if err != nil {
		return err
	}
	if s.isActivePopup(c, menu) {
		s.activePopup = nil
	}
	menu.Dismiss()
	return nil
}

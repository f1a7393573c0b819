package wm

// Menubar is an ordered list of weak references to menus.
type Menubar struct {
	id       int32
	clientID int
	menuIDs  []int32
}

// NewMenubar builds an empty menubar.
func NewMenubar(id int32, clientID int) *Menubar {
	return &Menubar{id: id, clientID: clientID}
}

func (mb *Menubar) ID() int32     { return mb.id }
func (mb *Menubar) ClientID() int { return mb.clientID }

// MenuIDs returns the raw references, including ones whose menu has since
// been destroyed. Use Registry.MenubarMenus for the live list.
func (mb *Menubar) MenuIDs() []int32 { return mb.menuIDs }

func (mb *Menubar) references(menuID int32) bool {
	for _, id := range mb.menuIDs {
		if id == menuID {
			return true
		}
	}
	return false
}

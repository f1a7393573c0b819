package desktop

import "github.com/1broseidon/winserv/internal/gfx"

const (
	// AppletStripHeight is the height of the strip along the top edge.
	AppletStripHeight = 20
	appletSpacing     = 4
)

// AppletStrip lays out applet windows right to left along the top edge of
// the screen in the order they were added.
type AppletStrip struct {
	order []int32
	sizes map[int32]gfx.Size
}

func NewAppletStrip() *AppletStrip {
	return &AppletStrip{sizes: make(map[int32]gfx.Size)}
}

// Add appends an applet, or updates its size if already present.
func (a *AppletStrip) Add(id int32, size gfx.Size) {
	if _, ok := a.sizes[id]; !ok {
		a.order = append(a.order, id)
	}
	a.sizes[id] = size
}

func (a *AppletStrip) Remove(id int32) {
	if _, ok := a.sizes[id]; !ok {
		return
	}
	delete(a.sizes, id)
	for i, v := range a.order {
		if v == id {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
}

func (a *AppletStrip) Len() int { return len(a.order) }

// Rect returns the on-screen rect of applet id.
func (a *AppletStrip) Rect(id int32, screen gfx.Rect) (gfx.Rect, bool) {
	if _, ok := a.sizes[id]; !ok {
		return gfx.Rect{}, false
	}
	right := screen.Right() - appletSpacing
	for _, v := range a.order {
		s := a.sizes[v]
		r := gfx.Rect{
			X:      right - s.Width,
			Y:      screen.Y + (AppletStripHeight-s.Height)/2,
			Width:  s.Width,
			Height: s.Height,
		}
		if v == id {
			return r, true
		}
		right = r.X - appletSpacing
	}
	return gfx.Rect{}, false
}

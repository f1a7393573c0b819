package server

import (
	"sort"

	"github.com/1broseidon/winserv/internal/wm"
)

// Directory maps client ids to live connections. It is owned by the
// dispatch loop.
type Directory struct {
	conns map[int]*ClientConnection
	// teardown destroys everything a connection owns; it runs before the
	// entry is removed.
	teardown func(*ClientConnection)
}

func newDirectory(teardown func(*ClientConnection)) *Directory {
	return &Directory{
		conns:    make(map[int]*ClientConnection),
		teardown: teardown,
	}
}

// Register adds c under its client id.
func (d *Directory) Register(c *ClientConnection) {
	d.conns[c.id] = c
}

// Unregister cascades destruction of every resource c owns and then removes
// it. It reports false for unknown ids.
func (d *Directory) Unregister(clientID int) bool {
	c, ok := d.conns[clientID]
	if !ok {
		return false
	}
	if d.teardown != nil {
		d.teardown(c)
	}
	delete(d.conns, clientID)
	return true
}

func (d *Directory) Lookup(clientID int) (*ClientConnection, bool) {
	c, ok := d.conns[clientID]
	return c, ok
}

func (d *Directory) Len() int { return len(d.conns) }

// ForEach visits connections in ascending client id order until fn returns
// Break.
func (d *Directory) ForEach(fn func(*ClientConnection) wm.IterationDecision) {
	ids := make([]int, 0, len(d.conns))
	for id := range d.conns {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		c, ok := d.conns[id]
		if !ok {
			continue
		}
		if fn(c) == wm.Break {
			return
		}
	}
}

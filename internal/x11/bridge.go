package x11

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xgraphics"

	"github.com/1broseidon/winserv/internal/compositor"
	"github.com/1broseidon/winserv/internal/gfx"
)

type mirror struct {
	wid   xproto.Window
	attrs compositor.WindowAttributes
	img   *xgraphics.Image
}

// Bridge mirrors every server window onto a host X11 top-level window. The
// embedded Scene keeps stacking, damage and snapshot state; X11 is output
// only.
type Bridge struct {
	*compositor.Scene

	conn    *Connection
	logger  *slog.Logger
	post    func(func())
	mirrors map[int32]*mirror
}

var _ compositor.Bridge = (*Bridge)(nil)

// NewBridge sizes the screen from the host's monitors. post must run the
// given function on the dispatch loop; it is used to funnel X11 expose
// events back onto it.
func NewBridge(conn *Connection, logger *slog.Logger, post func(func())) (*Bridge, error) {
	screen, err := conn.ScreenRect()
	if err != nil {
		return nil, fmt.Errorf("x11 screen: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		Scene:   compositor.NewScene(screen, logger),
		conn:    conn,
		logger:  logger.With("component", "x11"),
		post:    post,
		mirrors: make(map[int32]*mirror),
	}, nil
}

func (b *Bridge) RegisterWindow(id int32, attrs compositor.WindowAttributes, sink compositor.PaintSink) error {
	if err := b.Scene.RegisterWindow(id, attrs, sink); err != nil {
		return err
	}
	wid, err := b.conn.CreateWindow(attrs)
	if err != nil {
		b.Scene.UnregisterWindow(id)
		return fmt.Errorf("x11 create window %d: %w", id, err)
	}
	b.mirrors[id] = &mirror{wid: wid, attrs: attrs}

	xevent.ExposeFun(func(xu *xgbutil.XUtil, ev xevent.ExposeEvent) {
		r := gfx.R(int(ev.X), int(ev.Y), int(ev.Width), int(ev.Height))
		b.post(func() { b.exposed(id, r) })
	}).Connect(b.conn.XUtil, wid)

	b.logger.Debug("mirrored window", "window_id", id, "xid", wid)
	return nil
}

func (b *Bridge) exposed(id int32, r gfx.Rect) {
	m, ok := b.mirrors[id]
	if !ok {
		return
	}
	if m.img != nil {
		m.img.XPaint(m.wid)
		return
	}
	b.Scene.InvalidateRegion(r.Translated(m.attrs.Rect.Location()))
}

func (b *Bridge) UpdateWindow(id int32, attrs compositor.WindowAttributes) {
	b.Scene.UpdateWindow(id, attrs)
	m, ok := b.mirrors[id]
	if !ok {
		return
	}
	b.conn.UpdateWindow(m.wid, m.attrs, attrs)
	m.attrs = attrs
}

func (b *Bridge) UnregisterWindow(id int32) {
	b.Scene.UnregisterWindow(id)
	m, ok := b.mirrors[id]
	if !ok {
		return
	}
	delete(b.mirrors, id)
	if m.img != nil {
		m.img.Destroy()
	}
	b.conn.DestroyWindow(m.wid)
}

func (b *Bridge) RaiseWindow(id int32) {
	b.Scene.RaiseWindow(id)
	if m, ok := b.mirrors[id]; ok {
		b.conn.RaiseWindow(m.wid)
	}
}

func (b *Bridge) PaintCompleted(id int32, contents *gfx.Bitmap, rects []gfx.Rect) {
	b.Scene.PaintCompleted(id, contents, rects)
	m, ok := b.mirrors[id]
	if !ok || contents == nil || contents.Validate() != nil {
		return
	}
	if m.img != nil {
		m.img.Destroy()
	}
	m.img = xgraphics.NewConvert(b.conn.XUtil, contents.RGBA())
	if err := m.img.XSurfaceSet(m.wid); err != nil {
		b.logger.Warn("x11 surface", "window_id", id, "error", err)
		m.img.Destroy()
		m.img = nil
		return
	}
	m.img.XDraw()
	m.img.XPaint(m.wid)
}

// Compose produces a frame and flushes pending X11 requests.
func (b *Bridge) Compose(now time.Time) compositor.FrameInfo {
	frame := b.Scene.Compose(now)
	b.conn.XUtil.Sync()
	return frame
}

package wm

import (
	"errors"
	"fmt"

	"github.com/1broseidon/winserv/internal/gfx"
)

// ErrInvalidArgument marks a well-formed but semantically invalid value.
var ErrInvalidArgument = errors.New("invalid argument")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// WindowType controls placement and stacking of a window.
type WindowType string

const (
	WindowTypeNormal       WindowType = "normal"
	WindowTypeTooltip      WindowType = "tooltip"
	WindowTypeNotification WindowType = "notification"
	WindowTypeApplet       WindowType = "applet"
	WindowTypeDesktop      WindowType = "desktop"
	WindowTypeMenu         WindowType = "menu"
)

// Valid reports whether t is a known window type.
func (t WindowType) Valid() bool {
	switch t {
	case WindowTypeNormal, WindowTypeTooltip, WindowTypeNotification,
		WindowTypeApplet, WindowTypeDesktop, WindowTypeMenu:
		return true
	}
	return false
}

// StandardCursor selects a theme cursor.
type StandardCursor int

const (
	CursorNone StandardCursor = iota
	CursorArrow
	CursorIBeam
	CursorResizeHorizontal
	CursorResizeVertical
	CursorResizeDiagonalTLBR
	CursorResizeDiagonalBLTR
	CursorResizeColumn
	CursorResizeRow
	CursorHand
	CursorHelp
	CursorDrag
	CursorMove
	CursorWait
	CursorCrosshair
	CursorDisallowed
	cursorCount
)

// Valid reports whether c names a theme cursor.
func (c StandardCursor) Valid() bool { return c >= CursorNone && c < cursorCount }

// Cursor is either a theme cursor or a client bitmap.
type Cursor struct {
	Standard StandardCursor
	Custom   *gfx.Bitmap
}

// AspectRatio constrains interactive resizes.
type AspectRatio struct {
	Numerator   int `json:"numerator"`
	Denominator int `json:"denominator"`
}

// Progress is shown in the taskbar button; nil means no progress.
type Progress struct {
	Value         int  `json:"value"`
	Indeterminate bool `json:"indeterminate,omitempty"`
}

// BackingStore is the client-rendered pixel buffer of a window.
type BackingStore struct {
	BufferID int32
	HasAlpha bool
	Bitmap   *gfx.Bitmap
}

// Attributes is the initial state of a window at creation.
type Attributes struct {
	Type              WindowType
	Title             string
	Rect              gfx.Rect
	AutoPosition      bool
	MinimumSize       gfx.Size
	BaseSize          gfx.Size
	SizeIncrement     gfx.Size
	ResizeAspectRatio *AspectRatio
	Opacity           float64
	HasAlphaChannel   bool
	AlphaHitThreshold float64
	Resizable         bool
	Fullscreen        bool
	Frameless         bool
	Modal             bool
	Accessory         bool
	ParentID          int32
}

// Window is a top-level surface owned by exactly one client.
type Window struct {
	id       int32
	clientID int

	typ               WindowType
	title             string
	rect              gfx.Rect
	savedRect         gfx.Rect
	minimumSize       gfx.Size
	baseSize          gfx.Size
	sizeIncrement     gfx.Size
	aspectRatio       *AspectRatio
	opacity           float64
	hasAlpha          bool
	alphaHitThreshold float64
	backingStore      *BackingStore
	icon              *gfx.Bitmap
	cursor            Cursor
	progress          *Progress

	resizable            bool
	fullscreen           bool
	frameless            bool
	modal                bool
	accessory            bool
	maximized            bool
	globalCursorTracking bool
	parentID             int32

	// menubarID is a weak reference, resolved through the owning Registry.
	menubarID int32

	pendingPaint gfx.Rect
}

// NewWindow validates attrs and builds a window. The caller is responsible
// for placing it into a Registry.
func NewWindow(id int32, clientID int, attrs Attributes) (*Window, error) {
	if attrs.Type == "" {
		attrs.Type = WindowTypeNormal
	}
	if !attrs.Type.Valid() {
		return nil, invalidf("unknown window type %q", attrs.Type)
	}
	if !attrs.Rect.Size().IsValid() {
		return nil, invalidf("window size %dx%d is negative", attrs.Rect.Width, attrs.Rect.Height)
	}
	if !attrs.MinimumSize.IsValid() {
		return nil, invalidf("minimum size %+v is negative", attrs.MinimumSize)
	}
	if err := validateSizeHints(attrs.BaseSize, attrs.SizeIncrement); err != nil {
		return nil, err
	}
	if err := validateAspectRatio(attrs.ResizeAspectRatio); err != nil {
		return nil, err
	}
	if err := validateUnit("opacity", attrs.Opacity); err != nil {
		return nil, err
	}
	if err := validateUnit("alpha hit threshold", attrs.AlphaHitThreshold); err != nil {
		return nil, err
	}

	w := &Window{
		id:                id,
		clientID:          clientID,
		typ:               attrs.Type,
		title:             attrs.Title,
		minimumSize:       attrs.MinimumSize,
		baseSize:          attrs.BaseSize,
		sizeIncrement:     attrs.SizeIncrement,
		aspectRatio:       attrs.ResizeAspectRatio,
		opacity:           attrs.Opacity,
		hasAlpha:          attrs.HasAlphaChannel,
		alphaHitThreshold: attrs.AlphaHitThreshold,
		cursor:            Cursor{Standard: CursorNone},
		resizable:         attrs.Resizable,
		frameless:         attrs.Frameless,
		modal:             attrs.Modal,
		accessory:         attrs.Accessory,
		parentID:          attrs.ParentID,
	}
	w.rect = attrs.Rect.WithSize(attrs.Rect.Size().ExpandedTo(w.minimumSize))
	return w, nil
}

func (w *Window) ID() int32                       { return w.id }
func (w *Window) ClientID() int                   { return w.clientID }
func (w *Window) Type() WindowType                { return w.typ }
func (w *Window) Title() string                   { return w.title }
func (w *Window) Rect() gfx.Rect                  { return w.rect }
func (w *Window) MinimumSize() gfx.Size           { return w.minimumSize }
func (w *Window) BaseSize() gfx.Size              { return w.baseSize }
func (w *Window) SizeIncrement() gfx.Size         { return w.sizeIncrement }
func (w *Window) ResizeAspectRatio() *AspectRatio { return w.aspectRatio }
func (w *Window) Opacity() float64                { return w.opacity }
func (w *Window) HasAlphaChannel() bool           { return w.hasAlpha }
func (w *Window) AlphaHitThreshold() float64      { return w.alphaHitThreshold }
func (w *Window) BackingStore() *BackingStore     { return w.backingStore }
func (w *Window) Icon() *gfx.Bitmap               { return w.icon }
func (w *Window) Cursor() Cursor                  { return w.cursor }
func (w *Window) Progress() *Progress             { return w.progress }
func (w *Window) IsResizable() bool               { return w.resizable }
func (w *Window) IsFullscreen() bool              { return w.fullscreen }
func (w *Window) IsFrameless() bool               { return w.frameless }
func (w *Window) IsModal() bool                   { return w.modal }
func (w *Window) IsAccessory() bool               { return w.accessory }
func (w *Window) IsMaximized() bool               { return w.maximized }
func (w *Window) GlobalCursorTracking() bool      { return w.globalCursorTracking }
func (w *Window) ParentID() int32                 { return w.parentID }

// MenubarID returns the raw weak reference; resolve it with
// Registry.WindowMenubar.
func (w *Window) MenubarID() int32 { return w.menubarID }

func (w *Window) SetTitle(title string) { w.title = title }

// SetRect moves and resizes the window. The size is grown to the minimum
// size if needed. Fullscreen windows ignore the request. The applied rect is
// returned.
func (w *Window) SetRect(r gfx.Rect) (gfx.Rect, error) {
	if !r.Size().IsValid() {
		return w.rect, invalidf("window size %dx%d is negative", r.Width, r.Height)
	}
	if w.fullscreen {
		return w.rect, nil
	}
	w.rect = r.WithSize(r.Size().ExpandedTo(w.minimumSize))
	return w.rect, nil
}

// SetMinimumSize updates the minimum size, enlarging the window exactly to
// the bound when it is currently smaller. It reports whether the rect
// changed.
func (w *Window) SetMinimumSize(s gfx.Size) (bool, error) {
	if !s.IsValid() {
		return false, invalidf("minimum size %+v is negative", s)
	}
	w.minimumSize = s
	if w.rect.Size().Contains(s) {
		return false, nil
	}
	w.rect = w.rect.WithSize(w.rect.Size().ExpandedTo(s))
	if w.fullscreen {
		w.savedRect = w.savedRect.WithSize(w.savedRect.Size().ExpandedTo(s))
	}
	return true, nil
}

func (w *Window) SetOpacity(o float64) error {
	if err := validateUnit("opacity", o); err != nil {
		return err
	}
	w.opacity = o
	return nil
}

func (w *Window) SetHasAlphaChannel(v bool) { w.hasAlpha = v }

func (w *Window) SetAlphaHitThreshold(t float64) error {
	if err := validateUnit("alpha hit threshold", t); err != nil {
		return err
	}
	w.alphaHitThreshold = t
	return nil
}

func (w *Window) SetBaseSizeAndSizeIncrement(base, increment gfx.Size) error {
	if err := validateSizeHints(base, increment); err != nil {
		return err
	}
	w.baseSize, w.sizeIncrement = base, increment
	return nil
}

// SetResizeAspectRatio sets or clears (nil) the aspect ratio constraint.
func (w *Window) SetResizeAspectRatio(r *AspectRatio) error {
	if err := validateAspectRatio(r); err != nil {
		return err
	}
	w.aspectRatio = r
	return nil
}

// SetFullscreen toggles fullscreen, covering screen and restoring the
// previous rect on exit. It reports whether the state changed.
func (w *Window) SetFullscreen(fullscreen bool, screen gfx.Rect) bool {
	if w.fullscreen == fullscreen {
		return false
	}
	w.fullscreen = fullscreen
	if fullscreen {
		w.savedRect = w.rect
		w.rect = w.fullscreenRect(screen)
	} else {
		w.rect = w.savedRect
	}
	return true
}

// RefitFullscreen resizes a fullscreen window to a new screen rect. It
// reports whether the rect changed.
func (w *Window) RefitFullscreen(screen gfx.Rect) bool {
	if !w.fullscreen {
		return false
	}
	r := w.fullscreenRect(screen)
	if r == w.rect {
		return false
	}
	w.rect = r
	return true
}

// fullscreenRect covers screen but never drops below the minimum size.
func (w *Window) fullscreenRect(screen gfx.Rect) gfx.Rect {
	return screen.WithSize(screen.Size().ExpandedTo(w.minimumSize))
}

func (w *Window) SetFrameless(v bool)            { w.frameless = v }
func (w *Window) SetMaximized(v bool)            { w.maximized = v }
func (w *Window) SetGlobalCursorTracking(v bool) { w.globalCursorTracking = v }

// SetIcon replaces the icon; nil clears it.
func (w *Window) SetIcon(icon *gfx.Bitmap) error {
	if icon != nil {
		if err := icon.Validate(); err != nil {
			return invalidf("icon: %v", err)
		}
	}
	w.icon = icon
	return nil
}

func (w *Window) SetStandardCursor(c StandardCursor) error {
	if !c.Valid() {
		return invalidf("unknown cursor %d", c)
	}
	w.cursor = Cursor{Standard: c}
	return nil
}

func (w *Window) SetCustomCursor(b *gfx.Bitmap) error {
	if err := b.Validate(); err != nil {
		return invalidf("cursor: %v", err)
	}
	w.cursor = Cursor{Standard: CursorArrow, Custom: b}
	return nil
}

// SetProgress sets or clears (nil) the progress indicator.
func (w *Window) SetProgress(p *Progress) error {
	if p != nil && !p.Indeterminate && (p.Value < 0 || p.Value > 100) {
		return invalidf("progress %d outside 0-100", p.Value)
	}
	w.progress = p
	return nil
}

// SetBackingStore replaces the backing store wholesale.
func (w *Window) SetBackingStore(bs *BackingStore) error {
	if bs != nil && bs.Bitmap != nil {
		if err := bs.Bitmap.Validate(); err != nil {
			return invalidf("backing store: %v", err)
		}
	}
	w.backingStore = bs
	return nil
}

// RequestUpdate accumulates a window-relative dirty rect clipped to the
// window's bounds. It reports whether anything was added.
func (w *Window) RequestUpdate(r gfx.Rect) bool {
	clipped := r.Intersect(gfx.Rect{Width: w.rect.Width, Height: w.rect.Height})
	if clipped.IsEmpty() {
		return false
	}
	w.pendingPaint = w.pendingPaint.Union(clipped)
	return true
}

// TakePendingPaint returns and clears the accumulated dirty rect.
func (w *Window) TakePendingPaint() gfx.Rect {
	r := w.pendingPaint
	w.pendingPaint = gfx.Rect{}
	return r
}

func validateUnit(name string, v float64) error {
	if v < 0 || v > 1 || v != v {
		return invalidf("%s %v outside [0, 1]", name, v)
	}
	return nil
}

func validateSizeHints(base, increment gfx.Size) error {
	if !base.IsValid() {
		return invalidf("base size %+v is negative", base)
	}
	if !increment.IsValid() {
		return invalidf("size increment %+v is negative", increment)
	}
	return nil
}

func validateAspectRatio(r *AspectRatio) error {
	if r != nil && (r.Numerator <= 0 || r.Denominator <= 0) {
		return invalidf("aspect ratio %d:%d must be positive", r.Numerator, r.Denominator)
	}
	return nil
}

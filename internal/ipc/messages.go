package ipc

import (
	"time"

	"github.com/1broseidon/winserv/internal/gfx"
)

// Request ops.
const (
	OpGreet                             Op = "Greet"
	OpCreateMenubar                     Op = "CreateMenubar"
	OpDestroyMenubar                    Op = "DestroyMenubar"
	OpCreateMenu                        Op = "CreateMenu"
	OpDestroyMenu                       Op = "DestroyMenu"
	OpAddMenuToMenubar                  Op = "AddMenuToMenubar"
	OpSetWindowMenubar                  Op = "SetWindowMenubar"
	OpAddMenuItem                       Op = "AddMenuItem"
	OpAddMenuSeparator                  Op = "AddMenuSeparator"
	OpUpdateMenuItem                    Op = "UpdateMenuItem"
	OpPopupMenu                         Op = "PopupMenu"
	OpDismissMenu                       Op = "DismissMenu"
	OpCreateWindow                      Op = "CreateWindow"
	OpDestroyWindow                     Op = "DestroyWindow"
	OpSetWindowTitle                    Op = "SetWindowTitle"
	OpGetWindowTitle                    Op = "GetWindowTitle"
	OpIsMaximized                       Op = "IsMaximized"
	OpSetWindowRect                     Op = "SetWindowRect"
	OpGetWindowRect                     Op = "GetWindowRect"
	OpSetWindowMinimumSize              Op = "SetWindowMinimumSize"
	OpGetWindowMinimumSize              Op = "GetWindowMinimumSize"
	OpGetAppletRectOnScreen             Op = "GetAppletRectOnScreen"
	OpStartWindowResize                 Op = "StartWindowResize"
	OpSetGlobalCursorTracking           Op = "SetGlobalCursorTracking"
	OpSetWindowOpacity                  Op = "SetWindowOpacity"
	OpSetWindowHasAlphaChannel          Op = "SetWindowHasAlphaChannel"
	OpSetWindowAlphaHitThreshold        Op = "SetWindowAlphaHitThreshold"
	OpSetWindowBackingStore             Op = "SetWindowBackingStore"
	OpMoveWindowToFront                 Op = "MoveWindowToFront"
	OpSetFullscreen                     Op = "SetFullscreen"
	OpSetFrameless                      Op = "SetFrameless"
	OpSetWindowIconBitmap               Op = "SetWindowIconBitmap"
	OpSetWindowCursor                   Op = "SetWindowCursor"
	OpSetWindowCustomCursor             Op = "SetWindowCustomCursor"
	OpSetWindowBaseSizeAndSizeIncrement Op = "SetWindowBaseSizeAndSizeIncrement"
	OpSetWindowResizeAspectRatio        Op = "SetWindowResizeAspectRatio"
	OpSetWindowProgress                 Op = "SetWindowProgress"
	OpStartDrag                         Op = "StartDrag"
	OpInvalidateRect                    Op = "InvalidateRect"
	OpDidFinishPainting                 Op = "DidFinishPainting"
	OpEnableDisplayLink                 Op = "EnableDisplayLink"
	OpDisableDisplayLink                Op = "DisableDisplayLink"
	OpGetGlobalCursorPosition           Op = "GetGlobalCursorPosition"
	OpSetMouseAcceleration              Op = "SetMouseAcceleration"
	OpGetMouseAcceleration              Op = "GetMouseAcceleration"
	OpSetScrollStepSize                 Op = "SetScrollStepSize"
	OpGetScrollStepSize                 Op = "GetScrollStepSize"
	OpSetDoubleClickSpeed               Op = "SetDoubleClickSpeed"
	OpGetDoubleClickSpeed               Op = "GetDoubleClickSpeed"
	OpGetScreenBitmap                   Op = "GetScreenBitmap"
	OpAsyncSetWallpaper                 Op = "AsyncSetWallpaper"
	OpSetBackgroundColor                Op = "SetBackgroundColor"
	OpSetWallpaperMode                  Op = "SetWallpaperMode"
	OpGetWallpaper                      Op = "GetWallpaper"
	OpSetResolution                     Op = "SetResolution"
	OpSetSystemTheme                    Op = "SetSystemTheme"
	OpGetSystemTheme                    Op = "GetSystemTheme"
	OpRefreshSystemTheme                Op = "RefreshSystemTheme"
	OpPong                              Op = "Pong"
)

// Event ops.
const (
	OpPing                      Op = "Ping"
	OpPaint                     Op = "Paint"
	OpScreenRectChanged         Op = "ScreenRectChanged"
	OpDisplayLinkNotification   Op = "DisplayLinkNotification"
	OpUpdateSystemTheme         Op = "UpdateSystemTheme"
	OpAsyncSetWallpaperFinished Op = "AsyncSetWallpaperFinished"
	OpMenuItemActivated         Op = "MenuItemActivated"
	OpMenuDismissed             Op = "MenuDismissed"
	OpWindowResized             Op = "WindowResized"
	OpWindowStateChanged        Op = "WindowStateChanged"
	OpDragAccepted              Op = "DragAccepted"
	OpDragCancelled             Op = "DragCancelled"
)

// AspectRatio is a numerator/denominator pair.
type AspectRatio struct {
	Numerator   int `json:"numerator"`
	Denominator int `json:"denominator"`
}

// Greet opens a session and assigns the client id.
type Greet struct{}

type CreateMenubar struct{}

type DestroyMenubar struct {
	MenubarID int32 `json:"menubar_id"`
}

type CreateMenu struct {
	Name string `json:"name"`
}

type DestroyMenu struct {
	MenuID int32 `json:"menu_id"`
}

type AddMenuToMenubar struct {
	MenubarID int32 `json:"menubar_id"`
	MenuID    int32 `json:"menu_id"`
}

// SetWindowMenubar attaches a menubar to a window. A zero menubar id
// detaches.
type SetWindowMenubar struct {
	WindowID  int32 `json:"window_id"`
	MenubarID int32 `json:"menubar_id"`
}

type AddMenuItem struct {
	MenuID     int32       `json:"menu_id"`
	Identifier int         `json:"identifier"`
	SubmenuID  int32       `json:"submenu_id"`
	Text       string      `json:"text"`
	Enabled    bool        `json:"enabled"`
	Checkable  bool        `json:"checkable"`
	Checked    bool        `json:"checked"`
	IsDefault  bool        `json:"is_default"`
	Shortcut   string      `json:"shortcut"`
	Icon       *gfx.Bitmap `json:"icon"`
	Exclusive  bool        `json:"exclusive"`
}

type AddMenuSeparator struct {
	MenuID int32 `json:"menu_id"`
}

type UpdateMenuItem struct {
	MenuID     int32  `json:"menu_id"`
	Identifier int    `json:"identifier"`
	SubmenuID  int32  `json:"submenu_id"`
	Text       string `json:"text"`
	Enabled    bool   `json:"enabled"`
	Checkable  bool   `json:"checkable"`
	Checked    bool   `json:"checked"`
	IsDefault  bool   `json:"is_default"`
	Shortcut   string `json:"shortcut"`
	Exclusive  bool   `json:"exclusive"`
}

type PopupMenu struct {
	MenuID         int32     `json:"menu_id"`
	ScreenPosition gfx.Point `json:"screen_position"`
}

type DismissMenu struct {
	MenuID int32 `json:"menu_id"`
}

// CreateWindow carries the initial attributes of a new window. A nil Opacity
// means fully opaque.
type CreateWindow struct {
	Type              string       `json:"type"`
	Title             string       `json:"title"`
	Rect              gfx.Rect     `json:"rect"`
	AutoPosition      bool         `json:"auto_position"`
	HasAlphaChannel   bool         `json:"has_alpha_channel"`
	Modal             bool         `json:"modal"`
	Resizable         bool         `json:"resizable"`
	Fullscreen        bool         `json:"fullscreen"`
	Frameless         bool         `json:"frameless"`
	Accessory         bool         `json:"accessory"`
	Opacity           *float64     `json:"opacity"`
	AlphaHitThreshold float64      `json:"alpha_hit_threshold"`
	BaseSize          gfx.Size     `json:"base_size"`
	SizeIncrement     gfx.Size     `json:"size_increment"`
	MinimumSize       gfx.Size     `json:"minimum_size"`
	ResizeAspectRatio *AspectRatio `json:"resize_aspect_ratio"`
	ParentWindowID    int32        `json:"parent_window_id"`
}

type DestroyWindow struct {
	WindowID int32 `json:"window_id"`
}

type SetWindowTitle struct {
	WindowID int32  `json:"window_id"`
	Title    string `json:"title"`
}

type GetWindowTitle struct {
	WindowID int32 `json:"window_id"`
}

type IsMaximized struct {
	WindowID int32 `json:"window_id"`
}

type SetWindowRect struct {
	WindowID int32    `json:"window_id"`
	Rect     gfx.Rect `json:"rect"`
}

type GetWindowRect struct {
	WindowID int32 `json:"window_id"`
}

type SetWindowMinimumSize struct {
	WindowID int32    `json:"window_id"`
	Size     gfx.Size `json:"size"`
}

type GetWindowMinimumSize struct {
	WindowID int32 `json:"window_id"`
}

type GetAppletRectOnScreen struct {
	WindowID int32 `json:"window_id"`
}

type StartWindowResize struct {
	WindowID int32 `json:"window_id"`
}

type SetGlobalCursorTracking struct {
	WindowID int32 `json:"window_id"`
	Enabled  bool  `json:"enabled"`
}

type SetWindowOpacity struct {
	WindowID int32   `json:"window_id"`
	Opacity  float64 `json:"opacity"`
}

type SetWindowHasAlphaChannel struct {
	WindowID        int32 `json:"window_id"`
	HasAlphaChannel bool  `json:"has_alpha_channel"`
}

type SetWindowAlphaHitThreshold struct {
	WindowID  int32   `json:"window_id"`
	Threshold float64 `json:"threshold"`
}

type SetWindowBackingStore struct {
	WindowID         int32       `json:"window_id"`
	BufferID         int32       `json:"buffer_id"`
	HasAlphaChannel  bool        `json:"has_alpha_channel"`
	Bitmap           *gfx.Bitmap `json:"bitmap"`
	FlushImmediately bool        `json:"flush_immediately"`
}

type MoveWindowToFront struct {
	WindowID int32 `json:"window_id"`
}

type SetFullscreen struct {
	WindowID   int32 `json:"window_id"`
	Fullscreen bool  `json:"fullscreen"`
}

type SetFrameless struct {
	WindowID  int32 `json:"window_id"`
	Frameless bool  `json:"frameless"`
}

// SetWindowIconBitmap replaces the window icon. A nil Icon clears it.
type SetWindowIconBitmap struct {
	WindowID int32       `json:"window_id"`
	Icon     *gfx.Bitmap `json:"icon"`
}

type SetWindowCursor struct {
	WindowID int32 `json:"window_id"`
	Cursor   int   `json:"cursor"`
}

type SetWindowCustomCursor struct {
	WindowID int32       `json:"window_id"`
	Cursor   *gfx.Bitmap `json:"cursor"`
}

type SetWindowBaseSizeAndSizeIncrement struct {
	WindowID      int32    `json:"window_id"`
	BaseSize      gfx.Size `json:"base_size"`
	SizeIncrement gfx.Size `json:"size_increment"`
}

// SetWindowResizeAspectRatio constrains live resizes. A nil ratio removes the
// constraint.
type SetWindowResizeAspectRatio struct {
	WindowID    int32        `json:"window_id"`
	AspectRatio *AspectRatio `json:"aspect_ratio"`
}

// SetWindowProgress sets a 0-100 progress value. A nil Progress clears it.
type SetWindowProgress struct {
	WindowID      int32 `json:"window_id"`
	Progress      *int  `json:"progress"`
	Indeterminate bool  `json:"indeterminate"`
}

type StartDrag struct {
	Text       string            `json:"text"`
	MimeData   map[string][]byte `json:"mime_data"`
	DragBitmap *gfx.Bitmap       `json:"drag_bitmap"`
}

// InvalidateRect asks for a repaint of window-relative rects.
type InvalidateRect struct {
	WindowID        int32      `json:"window_id"`
	Rects           []gfx.Rect `json:"rects"`
	IgnoreOcclusion bool       `json:"ignore_occlusion"`
}

// DidFinishPainting tells the compositor the backing store is current for
// rects.
type DidFinishPainting struct {
	WindowID int32      `json:"window_id"`
	Rects    []gfx.Rect `json:"rects"`
}

type EnableDisplayLink struct{}

type DisableDisplayLink struct{}

type GetGlobalCursorPosition struct{}

type SetMouseAcceleration struct {
	Factor float64 `json:"factor"`
}

type GetMouseAcceleration struct{}

type SetScrollStepSize struct {
	StepSize int `json:"step_size"`
}

type GetScrollStepSize struct{}

type SetDoubleClickSpeed struct {
	SpeedMillis int `json:"speed_ms"`
}

type GetDoubleClickSpeed struct{}

type GetScreenBitmap struct{}

// AsyncSetWallpaper loads a wallpaper in the background; completion is
// reported with an AsyncSetWallpaperFinished event.
type AsyncSetWallpaper struct {
	Path string `json:"path"`
}

type SetBackgroundColor struct {
	Color string `json:"color"`
}

type SetWallpaperMode struct {
	Mode string `json:"mode"`
}

type GetWallpaper struct{}

type SetResolution struct {
	Resolution gfx.Size `json:"resolution"`
}

type SetSystemTheme struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

type GetSystemTheme struct{}

type RefreshSystemTheme struct{}

// Pong acknowledges a Ping.
type Pong struct{}

type GreetResponse struct {
	ClientID    int      `json:"client_id"`
	ScreenRect  gfx.Rect `json:"screen_rect"`
	SystemTheme string   `json:"system_theme"`
}

type CreateMenubarResponse struct {
	MenubarID int32 `json:"menubar_id"`
}

type CreateMenuResponse struct {
	MenuID int32 `json:"menu_id"`
}

type CreateWindowResponse struct {
	WindowID int32 `json:"window_id"`
}

type DestroyWindowResponse struct {
	DestroyedWindowIDs []int32 `json:"destroyed_window_ids"`
}

type GetWindowTitleResponse struct {
	Title string `json:"title"`
}

type IsMaximizedResponse struct {
	Maximized bool `json:"maximized"`
}

type SetWindowRectResponse struct {
	Rect gfx.Rect `json:"rect"`
}

type GetWindowRectResponse struct {
	Rect gfx.Rect `json:"rect"`
}

type GetWindowMinimumSizeResponse struct {
	Size gfx.Size `json:"size"`
}

type GetAppletRectOnScreenResponse struct {
	Rect gfx.Rect `json:"rect"`
}

type StartDragResponse struct {
	Started bool `json:"started"`
}

type GetGlobalCursorPositionResponse struct {
	Position gfx.Point `json:"position"`
}

type GetMouseAccelerationResponse struct {
	Factor float64 `json:"factor"`
}

type GetScrollStepSizeResponse struct {
	StepSize int `json:"step_size"`
}

type GetDoubleClickSpeedResponse struct {
	SpeedMillis int `json:"speed_ms"`
}

type GetScreenBitmapResponse struct {
	Bitmap *gfx.Bitmap `json:"bitmap"`
}

type GetWallpaperResponse struct {
	Path string `json:"path"`
}

type SetResolutionResponse struct {
	Resolution gfx.Size `json:"resolution"`
}

type GetSystemThemeResponse struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// PingEvent probes client liveness; answer with Pong.
type PingEvent struct{}

// PaintEvent asks the client to render rects of a window.
type PaintEvent struct {
	WindowID   int32      `json:"window_id"`
	WindowSize gfx.Size   `json:"window_size"`
	Rects      []gfx.Rect `json:"rects"`
}

type ScreenRectChangedEvent struct {
	Rect gfx.Rect `json:"rect"`
}

type DisplayLinkNotificationEvent struct {
	Sequence uint64    `json:"sequence"`
	Time     time.Time `json:"time"`
}

type UpdateSystemThemeEvent struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type AsyncSetWallpaperFinishedEvent struct {
	Success bool   `json:"success"`
	Path    string `json:"path"`
	Error   string `json:"error,omitempty"`
}

type MenuItemActivatedEvent struct {
	MenuID     int32 `json:"menu_id"`
	Identifier int   `json:"identifier"`
}

type MenuDismissedEvent struct {
	MenuID int32 `json:"menu_id"`
}

type WindowResizedEvent struct {
	WindowID int32    `json:"window_id"`
	Rect     gfx.Rect `json:"rect"`
}

type WindowStateChangedEvent struct {
	WindowID  int32 `json:"window_id"`
	Maximized bool  `json:"maximized"`
}

type DragAcceptedEvent struct{}

type DragCancelledEvent struct{}

func (Greet) Op() Op                             { return OpGreet }
func (CreateMenubar) Op() Op                     { return OpCreateMenubar }
func (DestroyMenubar) Op() Op                    { return OpDestroyMenubar }
func (CreateMenu) Op() Op                        { return OpCreateMenu }
func (DestroyMenu) Op() Op                       { return OpDestroyMenu }
func (AddMenuToMenubar) Op() Op                  { return OpAddMenuToMenubar }
func (SetWindowMenubar) Op() Op                  { return OpSetWindowMenubar }
func (AddMenuItem) Op() Op                       { return OpAddMenuItem }
func (AddMenuSeparator) Op() Op                  { return OpAddMenuSeparator }
func (UpdateMenuItem) Op() Op                    { return OpUpdateMenuItem }
func (PopupMenu) Op() Op                         { return OpPopupMenu }
func (DismissMenu) Op() Op                       { return OpDismissMenu }
func (CreateWindow) Op() Op                      { return OpCreateWindow }
func (DestroyWindow) Op() Op                     { return OpDestroyWindow }
func (SetWindowTitle) Op() Op                    { return OpSetWindowTitle }
func (GetWindowTitle) Op() Op                    { return OpGetWindowTitle }
func (IsMaximized) Op() Op                       { return OpIsMaximized }
func (SetWindowRect) Op() Op                     { return OpSetWindowRect }
func (GetWindowRect) Op() Op                     { return OpGetWindowRect }
func (SetWindowMinimumSize) Op() Op              { return OpSetWindowMinimumSize }
func (GetWindowMinimumSize) Op() Op              { return OpGetWindowMinimumSize }
func (GetAppletRectOnScreen) Op() Op             { return OpGetAppletRectOnScreen }
func (StartWindowResize) Op() Op                 { return OpStartWindowResize }
func (SetGlobalCursorTracking) Op() Op           { return OpSetGlobalCursorTracking }
func (SetWindowOpacity) Op() Op                  { return OpSetWindowOpacity }
func (SetWindowHasAlphaChannel) Op() Op          { return OpSetWindowHasAlphaChannel }
func (SetWindowAlphaHitThreshold) Op() Op        { return OpSetWindowAlphaHitThreshold }
func (SetWindowBackingStore) Op() Op             { return OpSetWindowBackingStore }
func (MoveWindowToFront) Op() Op                 { return OpMoveWindowToFront }
func (SetFullscreen) Op() Op                     { return OpSetFullscreen }
func (SetFrameless) Op() Op                      { return OpSetFrameless }
func (SetWindowIconBitmap) Op() Op               { return OpSetWindowIconBitmap }
func (SetWindowCursor) Op() Op                   { return OpSetWindowCursor }
func (SetWindowCustomCursor) Op() Op             { return OpSetWindowCustomCursor }
func (SetWindowBaseSizeAndSizeIncrement) Op() Op { return OpSetWindowBaseSizeAndSizeIncrement }
func (SetWindowResizeAspectRatio) Op() Op        { return OpSetWindowResizeAspectRatio }
func (SetWindowProgress) Op() Op                 { return OpSetWindowProgress }
func (StartDrag) Op() Op                         { return OpStartDrag }
func (InvalidateRect) Op() Op                    { return OpInvalidateRect }
func (DidFinishPainting) Op() Op                 { return OpDidFinishPainting }
func (EnableDisplayLink) Op() Op                 { return OpEnableDisplayLink }
func (DisableDisplayLink) Op() Op                { return OpDisableDisplayLink }
func (GetGlobalCursorPosition) Op() Op           { return OpGetGlobalCursorPosition }
func (SetMouseAcceleration) Op() Op              { return OpSetMouseAcceleration }
func (GetMouseAcceleration) Op() Op              { return OpGetMouseAcceleration }
func (SetScrollStepSize) Op() Op                 { return OpSetScrollStepSize }
func (GetScrollStepSize) Op() Op                 { return OpGetScrollStepSize }
func (SetDoubleClickSpeed) Op() Op               { return OpSetDoubleClickSpeed }
func (GetDoubleClickSpeed) Op() Op               { return OpGetDoubleClickSpeed }
func (GetScreenBitmap) Op() Op                   { return OpGetScreenBitmap }
func (AsyncSetWallpaper) Op() Op                 { return OpAsyncSetWallpaper }
func (SetBackgroundColor) Op() Op                { return OpSetBackgroundColor }
func (SetWallpaperMode) Op() Op                  { return OpSetWallpaperMode }
func (GetWallpaper) Op() Op                      { return OpGetWallpaper }
func (SetResolution) Op() Op                     { return OpSetResolution }
func (SetSystemTheme) Op() Op                    { return OpSetSystemTheme }
func (GetSystemTheme) Op() Op                    { return OpGetSystemTheme }
func (RefreshSystemTheme) Op() Op                { return OpRefreshSystemTheme }
func (Pong) Op() Op                              { return OpPong }

func (PingEvent) Op() Op                      { return OpPing }
func (PaintEvent) Op() Op                     { return OpPaint }
func (ScreenRectChangedEvent) Op() Op         { return OpScreenRectChanged }
func (DisplayLinkNotificationEvent) Op() Op   { return OpDisplayLinkNotification }
func (UpdateSystemThemeEvent) Op() Op         { return OpUpdateSystemTheme }
func (AsyncSetWallpaperFinishedEvent) Op() Op { return OpAsyncSetWallpaperFinished }
func (MenuItemActivatedEvent) Op() Op         { return OpMenuItemActivated }
func (MenuDismissedEvent) Op() Op             { return OpMenuDismissed }
func (WindowResizedEvent) Op() Op             { return OpWindowResized }
func (WindowStateChangedEvent) Op() Op        { return OpWindowStateChanged }
func (DragAcceptedEvent) Op() Op              { return OpDragAccepted }
func (DragCancelledEvent) Op() Op             { return OpDragCancelled }

// catalog maps every request op to a constructor for its payload.
var catalog = map[Op]func() Message{
	OpGreet:                             func() Message { return &Greet{} },
	OpCreateMenubar:                     func() Message { return &CreateMenubar{} },
	OpDestroyMenubar:                    func() Message { return &DestroyMenubar{} },
	OpCreateMenu:                        func() Message { return &CreateMenu{} },
	OpDestroyMenu:                       func() Message { return &DestroyMenu{} },
	OpAddMenuToMenubar:                  func() Message { return &AddMenuToMenubar{} },
	OpSetWindowMenubar:                  func() Message { return &SetWindowMenubar{} },
	OpAddMenuItem:                       func() Message { return &AddMenuItem{} },
	OpAddMenuSeparator:                  func() Message { return &AddMenuSeparator{} },
	OpUpdateMenuItem:                    func() Message { return &UpdateMenuItem{} },
	OpPopupMenu:                         func() Message { return &PopupMenu{} },
	OpDismissMenu:                       func() Message { return &DismissMenu{} },
	OpCreateWindow:                      func() Message { return &CreateWindow{} },
	OpDestroyWindow:                     func() Message { return &DestroyWindow{} },
	OpSetWindowTitle:                    func() Message { return &SetWindowTitle{} },
	OpGetWindowTitle:                    func() Message { return &GetWindowTitle{} },
	OpIsMaximized:                       func() Message { return &IsMaximized{} },
	OpSetWindowRect:                     func() Message { return &SetWindowRect{} },
	OpGetWindowRect:                     func() Message { return &GetWindowRect{} },
	OpSetWindowMinimumSize:              func() Message { return &SetWindowMinimumSize{} },
	OpGetWindowMinimumSize:              func() Message { return &GetWindowMinimumSize{} },
	OpGetAppletRectOnScreen:             func() Message { return &GetAppletRectOnScreen{} },
	OpStartWindowResize:                 func() Message { return &StartWindowResize{} },
	OpSetGlobalCursorTracking:           func() Message { return &SetGlobalCursorTracking{} },
	OpSetWindowOpacity:                  func() Message { return &SetWindowOpacity{} },
	OpSetWindowHasAlphaChannel:          func() Message { return &SetWindowHasAlphaChannel{} },
	OpSetWindowAlphaHitThreshold:        func() Message { return &SetWindowAlphaHitThreshold{} },
	OpSetWindowBackingStore:             func() Message { return &SetWindowBackingStore{} },
	OpMoveWindowToFront:                 func() Message { return &MoveWindowToFront{} },
	OpSetFullscreen:                     func() Message { return &SetFullscreen{} },
	OpSetFrameless:                      func() Message { return &SetFrameless{} },
	OpSetWindowIconBitmap:               func() Message { return &SetWindowIconBitmap{} },
	OpSetWindowCursor:                   func() Message { return &SetWindowCursor{} },
	OpSetWindowCustomCursor:             func() Message { return &SetWindowCustomCursor{} },
	OpSetWindowBaseSizeAndSizeIncrement: func() Message { return &SetWindowBaseSizeAndSizeIncrement{} },
	OpSetWindowResizeAspectRatio:        func() Message { return &SetWindowResizeAspectRatio{} },
	OpSetWindowProgress:                 func() Message { return &SetWindowProgress{} },
	OpStartDrag:                         func() Message { return &StartDrag{} },
	OpInvalidateRect:                    func() Message { return &InvalidateRect{} },
	OpDidFinishPainting:                 func() Message { return &DidFinishPainting{} },
	OpEnableDisplayLink:                 func() Message { return &EnableDisplayLink{} },
	OpDisableDisplayLink:                func() Message { return &DisableDisplayLink{} },
	OpGetGlobalCursorPosition:           func() Message { return &GetGlobalCursorPosition{} },
	OpSetMouseAcceleration:              func() Message { return &SetMouseAcceleration{} },
	OpGetMouseAcceleration:              func() Message { return &GetMouseAcceleration{} },
	OpSetScrollStepSize:                 func() Message { return &SetScrollStepSize{} },
	OpGetScrollStepSize:                 func() Message { return &GetScrollStepSize{} },
	OpSetDoubleClickSpeed:               func() Message { return &SetDoubleClickSpeed{} },
	OpGetDoubleClickSpeed:               func() Message { return &GetDoubleClickSpeed{} },
	OpGetScreenBitmap:                   func() Message { return &GetScreenBitmap{} },
	OpAsyncSetWallpaper:                 func() Message { return &AsyncSetWallpaper{} },
	OpSetBackgroundColor:                func() Message { return &SetBackgroundColor{} },
	OpSetWallpaperMode:                  func() Message { return &SetWallpaperMode{} },
	OpGetWallpaper:                      func() Message { return &GetWallpaper{} },
	OpSetResolution:                     func() Message { return &SetResolution{} },
	OpSetSystemTheme:                    func() Message { return &SetSystemTheme{} },
	OpGetSystemTheme:                    func() Message { return &GetSystemTheme{} },
	OpRefreshSystemTheme:                func() Message { return &RefreshSystemTheme{} },
	OpPong:                              func() Message { return &Pong{} },
}

var fireAndForget = map[Op]struct{}{
	OpStartWindowResize:  {},
	OpSetWindowProgress:  {},
	OpInvalidateRect:     {},
	OpDidFinishPainting:  {},
	OpEnableDisplayLink:  {},
	OpDisableDisplayLink: {},
	OpAsyncSetWallpaper:  {},
	OpRefreshSystemTheme: {},
	OpPong:               {},
}

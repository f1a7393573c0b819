package wm

import (
	"errors"
	"testing"

	"github.com/1broseidon/winserv/internal/gfx"
	"github.com/1broseidon/winserv/internal/ids"
)

func newTestWindow(t *testing.T, id int32, attrs Attributes) *Window {
	t.Helper()
	if attrs.Opacity == 0 {
		attrs.Opacity = 1
	}
	w, err := NewWindow(id, 1, attrs)
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}
	return w
}

func TestNewWindow_GrowsToMinimumSize(t *testing.T) {
	w := newTestWindow(t, 1982, Attributes{
		Rect:        gfx.R(0, 0, 5, 50),
		MinimumSize: gfx.Size{Width: 10, Height: 10},
	})
	if w.Rect() != gfx.R(0, 0, 10, 50) {
		t.Fatalf("rect = %v, want 0,0 10x50", w.Rect())
	}
	if w.Type() != WindowTypeNormal {
		t.Fatalf("default type = %q", w.Type())
	}
}

func TestNewWindow_RejectsInvalidAttributes(t *testing.T) {
	tests := []struct {
		name  string
		attrs Attributes
	}{
		{"negative width", Attributes{Rect: gfx.R(0, 0, -1, 10), Opacity: 1}},
		{"negative minimum", Attributes{MinimumSize: gfx.Size{Width: -1}, Opacity: 1}},
		{"opacity above one", Attributes{Opacity: 1.5}},
		{"negative threshold", Attributes{Opacity: 1, AlphaHitThreshold: -0.1}},
		{"zero aspect", Attributes{Opacity: 1, ResizeAspectRatio: &AspectRatio{Numerator: 0, Denominator: 1}}},
		{"unknown type", Attributes{Opacity: 1, Type: "bogus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWindow(1982, 1, tt.attrs)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("err = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestSetMinimumSize_EnlargesExactly(t *testing.T) {
	w := newTestWindow(t, 1982, Attributes{
		Rect:        gfx.R(0, 0, 100, 50),
		MinimumSize: gfx.Size{Width: 10, Height: 10},
	})
	changed, err := w.SetMinimumSize(gfx.Size{Width: 150, Height: 10})
	if err != nil {
		t.Fatalf("SetMinimumSize: %v", err)
	}
	if !changed {
		t.Fatal("expected rect to change")
	}
	if w.Rect().Size() != (gfx.Size{Width: 150, Height: 50}) {
		t.Fatalf("size = %+v, want 150x50", w.Rect().Size())
	}

	changed, err = w.SetMinimumSize(gfx.Size{Width: 20, Height: 20})
	if err != nil || changed {
		t.Fatalf("shrinking minimum changed=%v err=%v", changed, err)
	}
	if _, err := w.SetMinimumSize(gfx.Size{Width: -5}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("negative minimum err = %v", err)
	}
	if w.MinimumSize() != (gfx.Size{Width: 20, Height: 20}) {
		t.Fatalf("failed update must not mutate, got %+v", w.MinimumSize())
	}
}

func TestSetRect_NormalizesAndIgnoresFullscreen(t *testing.T) {
	w := newTestWindow(t, 1982, Attributes{
		Rect:        gfx.R(0, 0, 100, 100),
		MinimumSize: gfx.Size{Width: 50, Height: 50},
	})
	got, err := w.SetRect(gfx.R(5, 5, 10, 200))
	if err != nil {
		t.Fatalf("SetRect: %v", err)
	}
	if got != gfx.R(5, 5, 50, 200) {
		t.Fatalf("SetRect = %v", got)
	}

	screen := gfx.R(0, 0, 1024, 768)
	w.SetFullscreen(true, screen)
	got, _ = w.SetRect(gfx.R(1, 1, 60, 60))
	if got != screen {
		t.Fatalf("fullscreen SetRect = %v, want screen", got)
	}
	w.SetFullscreen(false, screen)
	if w.Rect() != gfx.R(5, 5, 50, 200) {
		t.Fatalf("restored rect = %v", w.Rect())
	}
}

func TestRefitFullscreen_RespectsMinimumSize(t *testing.T) {
	w := newTestWindow(t, 1982, Attributes{Rect: gfx.R(0, 0, 100, 100)})
	if w.RefitFullscreen(gfx.R(0, 0, 640, 480)) {
		t.Fatal("windowed refit must be a no-op")
	}
	w.SetFullscreen(true, gfx.R(0, 0, 640, 480))
	if _, err := w.SetMinimumSize(gfx.Size{Width: 800, Height: 600}); err != nil {
		t.Fatalf("SetMinimumSize: %v", err)
	}
	if !w.RefitFullscreen(gfx.R(0, 0, 1024, 768)) || w.Rect() != gfx.R(0, 0, 1024, 768) {
		t.Fatalf("refit to a larger screen = %v", w.Rect())
	}
	if !w.RefitFullscreen(gfx.R(0, 0, 320, 240)) {
		t.Fatal("expected refit to report a change")
	}
	if w.Rect() != gfx.R(0, 0, 800, 600) {
		t.Fatalf("refit rect = %v", w.Rect())
	}
	if w.RefitFullscreen(gfx.R(0, 0, 320, 240)) {
		t.Fatal("second refit to the same screen must be a no-op")
	}
}

func TestWindowSetters_ValidateRanges(t *testing.T) {
	w := newTestWindow(t, 1982, Attributes{Rect: gfx.R(0, 0, 10, 10)})
	if err := w.SetOpacity(-0.5); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("SetOpacity err = %v", err)
	}
	if w.Opacity() != 1 {
		t.Fatalf("opacity mutated to %v", w.Opacity())
	}
	if err := w.SetProgress(&Progress{Value: 101}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("SetProgress err = %v", err)
	}
	if err := w.SetProgress(&Progress{Indeterminate: true, Value: -1}); err != nil {
		t.Fatalf("indeterminate progress: %v", err)
	}
	if err := w.SetStandardCursor(StandardCursor(99)); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("SetStandardCursor err = %v", err)
	}
	if err := w.SetCustomCursor(&gfx.Bitmap{Width: 2, Height: 2}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("SetCustomCursor err = %v", err)
	}
	if err := w.SetBaseSizeAndSizeIncrement(gfx.Size{}, gfx.Size{Width: -1}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("SetBaseSizeAndSizeIncrement err = %v", err)
	}
	if err := w.SetResizeAspectRatio(nil); err != nil {
		t.Fatalf("clearing aspect ratio: %v", err)
	}
}

func TestRequestUpdate_ClipsToWindow(t *testing.T) {
	w := newTestWindow(t, 1982, Attributes{Rect: gfx.R(300, 300, 100, 50)})
	if w.RequestUpdate(gfx.R(200, 200, 10, 10)) {
		t.Fatal("rect outside window should be ignored")
	}
	w.RequestUpdate(gfx.R(90, 40, 20, 20))
	w.RequestUpdate(gfx.R(0, 0, 5, 5))
	if got := w.TakePendingPaint(); got != gfx.R(0, 0, 100, 50) {
		t.Fatalf("pending = %v", got)
	}
	if got := w.TakePendingPaint(); !got.IsEmpty() {
		t.Fatalf("pending not cleared: %v", got)
	}
}

func TestTable_OwnershipAndRetirement(t *testing.T) {
	r := NewRegistry()
	w := newTestWindow(t, 1982, Attributes{})
	if err := r.Windows.Insert(w.ID(), w); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := r.Windows.Insert(w.ID(), w); err == nil {
		t.Fatal("duplicate insert should fail")
	}
	if err := r.Windows.Insert(ids.Base(ids.Menu), w); err == nil {
		t.Fatal("inserting a menu id into the window table should fail")
	}
	if r.Ownership(1982) != Live {
		t.Fatal("expected Live")
	}
	if got, ok := r.Windows.Remove(1982); !ok || got != w {
		t.Fatal("Remove should yield the window")
	}
	if r.Ownership(1982) != Retired {
		t.Fatal("expected Retired after removal")
	}
	if r.Ownership(1983) != Foreign {
		t.Fatal("never-inserted id should be Foreign")
	}
	if err := r.Windows.Insert(1982, w); err == nil {
		t.Fatal("retired id must not be reinserted")
	}
}

func TestTable_ForEachOrderAndEarlyExit(t *testing.T) {
	r := NewRegistry()
	for _, id := range []int32{1990, 1982, 1985} {
		if err := r.Windows.Insert(id, newTestWindow(t, id, Attributes{})); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	var visited []int32
	r.Windows.ForEach(func(w *Window) IterationDecision {
		visited = append(visited, w.ID())
		if w.ID() == 1985 {
			return Break
		}
		return Continue
	})
	if len(visited) != 2 || visited[0] != 1982 || visited[1] != 1985 {
		t.Fatalf("visited = %v", visited)
	}
}

func TestMenuDisplayModesAreExclusive(t *testing.T) {
	r := NewRegistry()
	mbID, menuID := ids.Base(ids.Menubar), ids.Base(ids.Menu)
	mb := NewMenubar(mbID, 1)
	m := NewMenu(menuID, 1, "File")
	_ = r.Menubars.Insert(mbID, mb)
	_ = r.Menus.Insert(menuID, m)

	if err := r.PopupMenu(m, gfx.Point{X: 10, Y: 10}); err != nil {
		t.Fatalf("PopupMenu: %v", err)
	}
	if err := r.AttachMenu(mb, m); !errors.Is(err, ErrDisplayConflict) {
		t.Fatalf("attach while popped up err = %v", err)
	}
	if len(mb.MenuIDs()) != 0 {
		t.Fatal("failed attach must not mutate the menubar")
	}
	m.Dismiss()
	if err := r.AttachMenu(mb, m); err != nil {
		t.Fatalf("AttachMenu: %v", err)
	}
	if r.DisplayMode(m) != DisplayAttached {
		t.Fatalf("mode = %v", r.DisplayMode(m))
	}
	if err := r.PopupMenu(m, gfx.Point{}); !errors.Is(err, ErrDisplayConflict) {
		t.Fatalf("popup while attached err = %v", err)
	}
	if err := r.AttachMenu(mb, m); !errors.Is(err, ErrDisplayConflict) {
		t.Fatalf("double attach err = %v", err)
	}

	r.Menubars.Remove(mbID)
	if r.DisplayMode(m) != DisplayHidden {
		t.Fatal("destroying the menubar must leave the menu hidden")
	}
	if err := r.PopupMenu(m, gfx.Point{}); err != nil {
		t.Fatalf("popup after menubar destroyed: %v", err)
	}
}

func TestWindowMenubarWeakReference(t *testing.T) {
	r := NewRegistry()
	a := newTestWindow(t, 1982, Attributes{})
	b := newTestWindow(t, 1983, Attributes{})
	mb := NewMenubar(ids.Base(ids.Menubar), 1)
	_ = r.Windows.Insert(a.ID(), a)
	_ = r.Windows.Insert(b.ID(), b)
	_ = r.Menubars.Insert(mb.ID(), mb)

	if detached := r.SetWindowMenubar(a, mb); detached != 0 {
		t.Fatalf("unexpected detach of %d", detached)
	}
	if detached := r.SetWindowMenubar(b, mb); detached != a.ID() {
		t.Fatalf("detached = %d, want %d", detached, a.ID())
	}
	if _, ok := r.WindowMenubar(a); ok {
		t.Fatal("window a should no longer reference the menubar")
	}
	if got, ok := r.WindowMenubar(b); !ok || got != mb {
		t.Fatal("window b should reference the menubar")
	}
	r.Menubars.Remove(mb.ID())
	if _, ok := r.WindowMenubar(b); ok {
		t.Fatal("destroyed menubar must resolve as absent")
	}
}

func TestMenuToggleChecked(t *testing.T) {
	m := NewMenu(ids.Base(ids.Menu), 1, "View")
	_ = m.AddItem(MenuItem{Identifier: 1, Text: "Small", Checkable: true, Exclusive: true, Checked: true})
	_ = m.AddItem(MenuItem{Identifier: 2, Text: "Large", Checkable: true, Exclusive: true})
	m.AddSeparator()
	_ = m.AddItem(MenuItem{Identifier: 3, Text: "Wrap", Checkable: true})
	_ = m.AddItem(MenuItem{Identifier: 4, Text: "Plain"})

	if err := m.ToggleChecked(1); err != nil {
		t.Fatalf("ToggleChecked(1): %v", err)
	}
	if one, _ := m.Item(1); !one.Checked {
		t.Fatal("exclusive item must stay checked when toggled")
	}
	if err := m.ToggleChecked(2); err != nil {
		t.Fatalf("ToggleChecked(2): %v", err)
	}
	one, _ := m.Item(1)
	two, _ := m.Item(2)
	if one.Checked || !two.Checked {
		t.Fatalf("checked = %v/%v, want switch to item 2", one.Checked, two.Checked)
	}

	for i := 0; i < 2; i++ {
		if err := m.ToggleChecked(3); err != nil {
			t.Fatalf("ToggleChecked(3): %v", err)
		}
	}
	if three, _ := m.Item(3); three.Checked {
		t.Fatal("plain checkable item must toggle back off")
	}
	if err := m.ToggleChecked(4); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("ToggleChecked(not checkable) err = %v", err)
	}
	if err := m.ToggleChecked(9); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("ToggleChecked(missing) err = %v", err)
	}
}

func TestMenuItemsUpdateAndExclusiveCheck(t *testing.T) {
	m := NewMenu(ids.Base(ids.Menu), 1, "View")
	_ = m.AddItem(MenuItem{Identifier: 1, Text: "Small", Checkable: true, Exclusive: true, Checked: true})
	_ = m.AddItem(MenuItem{Identifier: 2, Text: "Large", Checkable: true, Exclusive: true})
	m.AddSeparator()
	_ = m.AddItem(MenuItem{Identifier: 3, Text: "Other", Checkable: true, Exclusive: true, Checked: true})

	if err := m.SetChecked(2, true); err != nil {
		t.Fatalf("SetChecked: %v", err)
	}
	one, _ := m.Item(1)
	three, _ := m.Item(3)
	if one.Checked || !three.Checked {
		t.Fatalf("exclusive group not respected: 1=%v 3=%v", one.Checked, three.Checked)
	}
	if err := m.UpdateItem(9, MenuItem{Text: "x"}); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("UpdateItem err = %v", err)
	}
	if err := m.UpdateItem(1, MenuItem{Text: "Tiny", Enabled: true}); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	one, _ = m.Item(1)
	if one.Text != "Tiny" || one.Identifier != 1 {
		t.Fatalf("updated item = %+v", one)
	}
	if len(m.Items()) != 4 || !m.Items()[2].Separator {
		t.Fatalf("items = %+v", m.Items())
	}
}

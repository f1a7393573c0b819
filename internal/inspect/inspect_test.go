package inspect

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/1broseidon/winserv/internal/gfx"
	"github.com/1broseidon/winserv/internal/server"
)

type fakeSource struct {
	clients []server.ClientInfo
	windows []server.WindowInfo
}

func (f *fakeSource) Clients(context.Context) ([]server.ClientInfo, error) {
	return f.clients, nil
}

func (f *fakeSource) Windows(_ context.Context, clientID int) ([]server.WindowInfo, error) {
	if clientID == 0 {
		return f.windows, nil
	}
	var out []server.WindowInfo
	found := false
	for _, c := range f.clients {
		if c.ID == clientID {
			found = true
		}
	}
	if !found {
		return nil, fmt.Errorf("client %d: %w", clientID, server.ErrNotFound)
	}
	for _, w := range f.windows {
		if w.ClientID == clientID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeSource) Window(_ context.Context, id int32) (server.WindowInfo, error) {
	for _, w := range f.windows {
		if w.ID == id {
			return w, nil
		}
	}
	return server.WindowInfo{}, fmt.Errorf("window %d: %w", id, server.ErrNotFound)
}

func newTestServer() *Server {
	return NewServer(&fakeSource{
		clients: []server.ClientInfo{
			{ID: 1, Peer: "pid 100", ConnectedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), Greeted: true, Responsive: true, Windows: 2},
			{ID: 2, Peer: "pid 200", ConnectedAt: time.Date(2024, 5, 1, 12, 5, 0, 0, time.UTC), Windows: 0},
		},
		windows: []server.WindowInfo{
			{ID: 1982, ClientID: 1, Type: "Normal", Title: "Terminal", Rect: gfx.Rect{X: 20, Y: 40, Width: 640, Height: 480}, Opacity: 1},
			{ID: 1983, ClientID: 1, Type: "Normal", Title: "About", ParentID: 1982, Opacity: 1},
		},
	})
}

func TestListClients(t *testing.T) {
	s := newTestServer()
	_, out, err := s.handleListClients(context.Background(), nil, ListClientsInput{})
	if err != nil {
		t.Fatalf("handleListClients: %v", err)
	}
	if len(out.Clients) != 2 {
		t.Fatalf("expected 2 clients, got %d", len(out.Clients))
	}
	if out.Clients[0].ConnectedAt != "2024-05-01T12:00:00Z" {
		t.Fatalf("unexpected connected_at: %q", out.Clients[0].ConnectedAt)
	}
	if !out.Clients[0].Responsive || out.Clients[1].Greeted {
		t.Fatalf("unexpected flags: %+v", out.Clients)
	}
}

func TestListWindowsFiltersByClient(t *testing.T) {
	s := newTestServer()

	_, all, err := s.handleListWindows(context.Background(), nil, ListWindowsInput{})
	if err != nil {
		t.Fatalf("handleListWindows: %v", err)
	}
	if len(all.Windows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(all.Windows))
	}

	_, none, err := s.handleListWindows(context.Background(), nil, ListWindowsInput{ClientID: 2})
	if err != nil {
		t.Fatalf("handleListWindows(client 2): %v", err)
	}
	if none.Windows == nil || len(none.Windows) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", none.Windows)
	}

	_, _, err = s.handleListWindows(context.Background(), nil, ListWindowsInput{ClientID: 9})
	if !errors.Is(err, server.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown client, got %v", err)
	}
}

func TestGetWindow(t *testing.T) {
	s := newTestServer()

	_, out, err := s.handleGetWindow(context.Background(), nil, GetWindowInput{WindowID: 1983})
	if err != nil {
		t.Fatalf("handleGetWindow: %v", err)
	}
	if out.Window.Title != "About" || out.Window.ParentID != 1982 {
		t.Fatalf("unexpected window: %+v", out.Window)
	}

	_, _, err = s.handleGetWindow(context.Background(), nil, GetWindowInput{WindowID: 42})
	if !errors.Is(err, server.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestHandlerIsServed(t *testing.T) {
	s := newTestServer()
	if s.Handler() == nil {
		t.Fatal("expected an http handler")
	}
	if s.MCP() == nil {
		t.Fatal("expected an MCP server")
	}
}

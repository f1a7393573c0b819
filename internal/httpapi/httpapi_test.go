package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/1broseidon/winserv/internal/ipc"
	"github.com/1broseidon/winserv/internal/server"
)

type fakeSource struct{}

func (fakeSource) Clients(context.Context) ([]server.ClientInfo, error) {
	return []server.ClientInfo{{ID: 1, Peer: "pid=100 uid=1000", Greeted: true, Responsive: true, Windows: 1}}, nil
}

func (fakeSource) Windows(_ context.Context, clientID int) ([]server.WindowInfo, error) {
	if clientID > 1 {
		return nil, fmt.Errorf("client %d: %w", clientID, server.ErrNotFound)
	}
	return []server.WindowInfo{{ID: 1982, ClientID: 1, Title: "Terminal"}}, nil
}

func (fakeSource) Window(_ context.Context, id int32) (server.WindowInfo, error) {
	if id != 1982 {
		return server.WindowInfo{}, fmt.Errorf("window %d: %w", id, server.ErrNotFound)
	}
	return server.WindowInfo{ID: 1982, ClientID: 1, Title: "Terminal"}, nil
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestDebugRoutes(t *testing.T) {
	h := NewRouter(Config{Source: fakeSource{}})

	rec := get(t, h, "/debug/clients")
	if rec.Code != http.StatusOK {
		t.Fatalf("clients: status %d", rec.Code)
	}
	var clients []server.ClientInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &clients); err != nil {
		t.Fatalf("decode clients: %v", err)
	}
	if len(clients) != 1 || clients[0].ID != 1 {
		t.Fatalf("unexpected clients: %+v", clients)
	}

	tests := []struct {
		path string
		code int
	}{
		{"/debug/windows", http.StatusOK},
		{"/debug/windows?client=1", http.StatusOK},
		{"/debug/windows?client=7", http.StatusNotFound},
		{"/debug/windows?client=abc", http.StatusBadRequest},
		{"/debug/windows/1982", http.StatusOK},
		{"/debug/windows/5", http.StatusNotFound},
		{"/debug/windows/xyz", http.StatusBadRequest},
		{"/healthz", http.StatusOK},
		{"/metrics", http.StatusNotFound},
	}
	for _, tt := range tests {
		if rec := get(t, h, tt.path); rec.Code != tt.code {
			t.Errorf("GET %s: status %d, want %d", tt.path, rec.Code, tt.code)
		}
	}
}

func TestMetricsRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "winserv_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Add(3)

	h := NewRouter(Config{Gatherer: reg})
	rec := get(t, h, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: status %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "winserv_test_total 3") {
		t.Fatalf("metrics output missing counter:\n%s", body)
	}
}

func TestWebSocketRoute(t *testing.T) {
	accepted := make(chan ipc.Conn, 1)
	ts := httptest.NewServer(NewRouter(Config{Accept: func(c ipc.Conn) { accepted <- c }}))
	defer ts.Close()

	client, err := ipc.DialWebSocket("ws" + strings.TrimPrefix(ts.URL, "http") + "/ws")
	if err != nil {
		t.Fatalf("DialWebSocket: %v", err)
	}
	defer client.Close()

	var srv ipc.Conn
	select {
	case srv = <-accepted:
	case <-time.After(2 * time.Second):
		t.Fatal("connection was not accepted")
	}
	defer srv.Close()

	if err := client.WriteFrame([]byte(`{"op":"Greet"}`)); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	got, err := srv.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if string(got) != `{"op":"Greet"}` {
		t.Fatalf("ReadFrame = %q", got)
	}
	if !strings.HasPrefix(srv.Describe(), "ws:") {
		t.Fatalf("Describe = %q", srv.Describe())
	}
}

package ipc

import (
	"bytes"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/winserv/internal/gfx"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, []byte(`{"op":"Greet"}`)); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	if got := buf.Bytes()[:4]; !bytes.Equal(got, []byte{0, 0, 0, 14}) {
		t.Fatalf("header = %v", got)
	}
	data, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if string(data) != `{"op":"Greet"}` {
		t.Fatalf("data = %q", data)
	}
}

func TestReadFrame_RejectsOversize(t *testing.T) {
	hdr := []byte{0x7f, 0xff, 0xff, 0xff}
	_, err := ReadFrame(bytes.NewReader(hdr))
	if !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("err = %v, want ErrFrameTooLarge", err)
	}
}

func TestReadFrame_Truncated(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader([]byte{0, 0, 0, 10, 'x'}))
	if err == nil {
		t.Fatal("expected error for truncated frame")
	}
}

func TestRequestDecode(t *testing.T) {
	req, err := ParseRequest([]byte(`{"op":"SetWindowRect","payload":{"window_id":1982,"rect":{"x":1,"y":2,"width":3,"height":4}}}`))
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	msg, err := req.Decode()
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	m, ok := msg.(*SetWindowRect)
	if !ok {
		t.Fatalf("decoded %T", msg)
	}
	if m.WindowID != 1982 || m.Rect != gfx.R(1, 2, 3, 4) {
		t.Fatalf("decoded %+v", m)
	}
}

func TestRequestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"unknown op", `{"op":"FormatDisk"}`},
		{"unknown field", `{"op":"DestroyWindow","payload":{"window_id":1,"force":true}}`},
		{"wrong type", `{"op":"DestroyWindow","payload":{"window_id":"one"}}`},
		{"event op", `{"op":"Paint","payload":{}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParseRequest([]byte(tt.in))
			if err != nil {
				t.Fatalf("ParseRequest: %v", err)
			}
			if _, err := req.Decode(); err == nil {
				t.Fatal("expected decode error")
			}
		})
	}
	if _, err := ParseRequest([]byte(`{"payload":{}}`)); err == nil {
		t.Fatal("missing op should fail")
	}
}

func TestCatalogCoversOps(t *testing.T) {
	for op, newMsg := range catalog {
		if got := newMsg().Op(); got != op {
			t.Errorf("catalog[%s] builds a %s", op, got)
		}
	}
	for op := range fireAndForget {
		if _, ok := catalog[op]; !ok {
			t.Errorf("fire-and-forget op %s missing from catalog", op)
		}
	}
	if ExpectsResponse(OpInvalidateRect) || ExpectsResponse(OpPong) {
		t.Error("notifications must not expect responses")
	}
	if !ExpectsResponse(OpCreateWindow) {
		t.Error("CreateWindow expects a response")
	}
}

// fakeServer answers every request on conn using handle, until conn closes.
func fakeServer(t *testing.T, conn Conn, handle func(req *Request) []any) {
	t.Helper()
	go func() {
		for {
			data, err := conn.ReadFrame()
			if err != nil {
				return
			}
			req, err := ParseRequest(data)
			if err != nil {
				t.Errorf("server parse: %v", err)
				return
			}
			for _, out := range handle(req) {
				b, _ := json.Marshal(out)
				if err := conn.WriteFrame(b); err != nil {
					return
				}
			}
		}
	}()
}

func TestClient_CallAndEvents(t *testing.T) {
	srv, cli := net.Pipe()
	server := NewStreamConn(srv)
	defer server.Close()

	fakeServer(t, server, func(req *Request) []any {
		switch req.Op {
		case OpGreet:
			ev, _ := NewEvent(ScreenRectChangedEvent{Rect: gfx.R(0, 0, 800, 600)})
			resp, _ := NewOKResponse(req.Op, GreetResponse{ClientID: 3, ScreenRect: gfx.R(0, 0, 800, 600)})
			return []any{ev, resp}
		case OpGetWindowRect:
			return []any{NewErrorResponse(req.Op, StatusNotFound, "no such window")}
		}
		return nil
	})

	c := NewClient(NewStreamConn(cli), WithTimeout(2*time.Second))
	defer c.Close()

	greet, err := c.Greet()
	if err != nil {
		t.Fatalf("Greet: %v", err)
	}
	if greet.ClientID != 3 {
		t.Fatalf("client id = %d", greet.ClientID)
	}

	select {
	case ev := <-c.Events():
		var payload ScreenRectChangedEvent
		if ev.Op != OpScreenRectChanged || ev.Unmarshal(&payload) != nil || payload.Rect.Width != 800 {
			t.Fatalf("event = %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event delivered")
	}

	err = c.Call(GetWindowRect{WindowID: 5}, nil)
	var se *StatusError
	if !errors.As(err, &se) || se.Status != StatusNotFound {
		t.Fatalf("err = %v, want not_found StatusError", err)
	}

	if err := c.Call(Pong{}, nil); err == nil {
		t.Fatal("Call with a fire-and-forget op should fail")
	}
}

func TestClient_AutoPong(t *testing.T) {
	srv, cli := net.Pipe()
	server := NewStreamConn(srv)
	defer server.Close()

	c := NewClient(NewStreamConn(cli), WithAutoPong())
	defer c.Close()

	ping, _ := NewEvent(PingEvent{})
	b, _ := json.Marshal(ping)
	go server.WriteFrame(b)

	data, err := server.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	req, _ := ParseRequest(data)
	if req.Op != OpPong {
		t.Fatalf("got %s, want Pong", req.Op)
	}
}

func TestClient_TimeoutClosesClient(t *testing.T) {
	srv, cli := net.Pipe()
	server := NewStreamConn(srv)
	defer server.Close()

	release := make(chan struct{})
	fakeServer(t, server, func(req *Request) []any {
		var msg GetWindowTitle
		if err := json.Unmarshal(req.Payload, &msg); err != nil {
			t.Errorf("payload: %v", err)
			return nil
		}
		title := "second"
		if msg.WindowID == 1 {
			<-release
			title = "first"
		}
		resp, _ := NewOKResponse(req.Op, GetWindowTitleResponse{Title: title})
		return []any{resp}
	})

	c := NewClient(NewStreamConn(cli), WithTimeout(50*time.Millisecond))
	defer c.Close()

	var got GetWindowTitleResponse
	if err := c.Call(GetWindowTitle{WindowID: 1}, &got); !errors.Is(err, ErrTimeout) {
		t.Fatalf("first call err = %v, want ErrTimeout", err)
	}
	close(release)

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("client still open after a timed out call")
	}
	err := c.Call(GetWindowTitle{WindowID: 2}, &got)
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("second call err = %v, title %q; want ErrClosed", err, got.Title)
	}
	if got.Title != "" {
		t.Fatalf("second call decoded a late response: %q", got.Title)
	}
}

func TestClient_CallFailsAfterClose(t *testing.T) {
	srv, cli := net.Pipe()
	c := NewClient(NewStreamConn(cli))
	srv.Close()
	<-c.Done()
	if err := c.Call(Greet{}, nil); err == nil {
		t.Fatal("expected error on closed connection")
	}
}

func TestWebSocketTransport(t *testing.T) {
	accepted := make(chan Conn, 1)
	ts := httptest.NewServer(NewWebSocketHandler(func(c Conn) { accepted <- c }))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	client, err := DialWebSocket(url)
	if err != nil {
		t.Fatalf("DialWebSocket: %v", err)
	}
	defer client.Close()

	var server Conn
	select {
	case server = <-accepted:
	case <-time.After(2 * time.Second):
		t.Fatal("handler never accepted")
	}
	defer server.Close()

	if err := client.WriteFrame([]byte(`{"op":"Greet"}`)); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	data, err := server.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if string(data) != `{"op":"Greet"}` {
		t.Fatalf("data = %q", data)
	}
	if !strings.HasPrefix(server.Describe(), "ws:") {
		t.Fatalf("Describe = %q", server.Describe())
	}
}

func TestWebSocketHandler_RejectsPlainHTTP(t *testing.T) {
	h := NewWebSocketHandler(func(Conn) { t.Error("plain request must not be accepted") })
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestListener_UnixSocket(t *testing.T) {
	path := t.TempDir() + "/winserv.sock"
	l, err := Listen(path)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	accepted := make(chan Conn, 1)
	go l.Serve(func(c Conn) { accepted <- c })
	defer l.Close()

	c, err := Dial(path)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	select {
	case sc := <-accepted:
		if sc.Describe() == "" {
			t.Fatal("empty peer description")
		}
		sc.Close()
	case <-time.After(2 * time.Second):
		t.Fatal("listener never accepted")
	}
}

package ipc

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Conn carries whole frames between a client and the server. ReadFrame is
// called from one goroutine; WriteFrame may be called concurrently.
type Conn interface {
	ReadFrame() ([]byte, error)
	WriteFrame([]byte) error
	Close() error
	// Describe returns a short human readable peer description.
	Describe() string
}

// streamConn frames messages over a byte stream such as a unix socket.
type streamConn struct {
	conn    net.Conn
	writeMu sync.Mutex
	peer    string
}

// NewStreamConn wraps a stream connection with length framing.
func NewStreamConn(c net.Conn) Conn {
	return &streamConn{conn: c, peer: c.RemoteAddr().String()}
}

func (s *streamConn) ReadFrame() ([]byte, error) { return ReadFrame(s.conn) }

func (s *streamConn) WriteFrame(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return WriteFrame(s.conn, data)
}

func (s *streamConn) Close() error     { return s.conn.Close() }
func (s *streamConn) Describe() string { return s.peer }

// wsConn maps one binary websocket message to one frame.
type wsConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// NewWebSocketConn wraps an upgraded websocket connection.
func NewWebSocketConn(c *websocket.Conn) Conn {
	c.SetReadLimit(MaxFrameSize)
	return &wsConn{conn: c}
}

func (w *wsConn) ReadFrame() ([]byte, error) {
	for {
		kind, msg, err := w.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		if kind == websocket.BinaryMessage || kind == websocket.TextMessage {
			return msg, nil
		}
	}
}

func (w *wsConn) WriteFrame(data []byte) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.conn.WriteMessage(websocket.BinaryMessage, data)
}

func (w *wsConn) Close() error {
	w.writeMu.Lock()
	_ = w.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	w.writeMu.Unlock()
	return w.conn.Close()
}

func (w *wsConn) Describe() string { return "ws:" + w.conn.RemoteAddr().String() }

// WebSocketHandler upgrades requests and hands each connection to accept.
type WebSocketHandler struct {
	upgrader websocket.Upgrader
	accept   func(Conn)
}

// NewWebSocketHandler returns a handler that serves the protocol over
// websocket. Origins are not checked; the listener is expected to be bound
// to loopback.
func NewWebSocketHandler(accept func(Conn)) *WebSocketHandler {
	return &WebSocketHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		accept: accept,
	}
}

func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error.
		return
	}
	h.accept(NewWebSocketConn(c))
}

// DialWebSocket connects to a websocket endpoint such as ws://host/ws.
func DialWebSocket(url string) (Conn, error) {
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", url, err)
	}
	return NewWebSocketConn(c), nil
}

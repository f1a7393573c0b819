package ipc

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"
)

var (
	// ErrClosed is returned by calls on a client whose connection has ended.
	ErrClosed = errors.New("connection closed")
	// ErrTimeout is returned by a call whose response did not arrive in
	// time. The client is closed with it, since a late response would be
	// taken as the answer to the next call.
	ErrTimeout = errors.New("call timed out")
)

// StatusError is a non-ok response.
type StatusError struct {
	Op      Op
	Status  Status
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Status, e.Message)
}

// Client speaks the protocol to the server over one connection. Requests
// are answered in order, so calls are serialized, and a timed out call
// closes the client.
type Client struct {
	conn    Conn
	timeout time.Duration
	callMu  sync.Mutex

	responses chan *Response
	events    chan *Event
	done      chan struct{}
	closeOnce sync.Once
	readErr   error
	autoPong  bool
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout bounds how long a call waits for its response.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

// WithAutoPong answers every Ping with a Pong before delivering it.
func WithAutoPong() ClientOption {
	return func(c *Client) { c.autoPong = true }
}

// Dial connects to the server socket.
func Dial(socketPath string, opts ...ClientOption) (*Client, error) {
	conn, err := net.DialTimeout("unix", socketPath, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to server: %w (is the server running?)", err)
	}
	return NewClient(NewStreamConn(conn), opts...), nil
}

// NewClient starts reading from conn.
func NewClient(conn Conn, opts ...ClientOption) *Client {
	c := &Client{
		conn:      conn,
		timeout:   5 * time.Second,
		responses: make(chan *Response, 1),
		events:    make(chan *Event, 256),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.readLoop()
	return c
}

func (c *Client) readLoop() {
	defer close(c.events)
	for {
		data, err := c.conn.ReadFrame()
		if err != nil {
			c.shutdown(err)
			return
		}
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.shutdown(fmt.Errorf("failed to parse message: %w", err))
			return
		}
		if IsResponse(env.Op) {
			select {
			case c.responses <- &Response{Op: env.Op, Status: env.Status, Error: env.Error, Payload: env.Payload}:
			case <-c.done:
				return
			}
			continue
		}
		if env.Op == OpPing && c.autoPong {
			_ = c.Send(Pong{})
		}
		select {
		case c.events <- &Event{Op: env.Op, Payload: env.Payload}:
		default:
			// Slow consumer; drop the event rather than stall responses.
		}
	}
}

func (c *Client) shutdown(err error) {
	c.closeOnce.Do(func() {
		c.readErr = err
		close(c.done)
		c.conn.Close()
	})
}

// Events delivers server-initiated messages. The channel is closed when the
// connection ends.
func (c *Client) Events() <-chan *Event { return c.events }

// Done is closed when the connection ends.
func (c *Client) Done() <-chan struct{} { return c.done }

// Err returns why the connection ended, once Done is closed.
func (c *Client) Err() error {
	select {
	case <-c.done:
		return c.readErr
	default:
		return nil
	}
}

// Send writes a message without waiting for a response.
func (c *Client) Send(msg Message) error {
	req, err := NewRequest(msg)
	if err != nil {
		return err
	}
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	if err := c.conn.WriteFrame(data); err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	return nil
}

// Call sends msg and decodes the response payload into out, which may be
// nil. Non-ok responses are returned as *StatusError.
func (c *Client) Call(msg Message, out interface{}) error {
	if !ExpectsResponse(msg.Op()) {
		return fmt.Errorf("%s has no response; use Send", msg.Op())
	}
	c.callMu.Lock()
	defer c.callMu.Unlock()

	select {
	case <-c.done:
		return c.closedErr()
	default:
	}
	if err := c.Send(msg); err != nil {
		return err
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case resp := <-c.responses:
		if resp.Op != ResponseOp(msg.Op()) {
			return fmt.Errorf("unexpected response %s to %s", resp.Op, msg.Op())
		}
		if resp.Status != StatusOK {
			return &StatusError{Op: msg.Op(), Status: resp.Status, Message: resp.Error}
		}
		if err := resp.Unmarshal(out); err != nil {
			return fmt.Errorf("failed to parse %s: %w", resp.Op, err)
		}
		return nil
	case <-c.done:
		return c.closedErr()
	case <-timer.C:
		err := fmt.Errorf("%s: %w after %s", msg.Op(), ErrTimeout, c.timeout)
		c.shutdown(err)
		return err
	}
}

func (c *Client) closedErr() error {
	if c.readErr != nil && !errors.Is(c.readErr, ErrClosed) {
		return fmt.Errorf("%w: %v", ErrClosed, c.readErr)
	}
	return ErrClosed
}

// Greet performs the handshake.
func (c *Client) Greet() (*GreetResponse, error) {
	var resp GreetResponse
	if err := c.Call(Greet{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Close ends the connection.
func (c *Client) Close() error {
	c.shutdown(ErrClosed)
	return nil
}

package ipc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Op selects one message kind of the catalog.
type Op string

// Status is the outcome carried by a response envelope.
type Status string

const (
	StatusOK              Status = "ok"
	StatusNotFound        Status = "not_found"
	StatusInvalidArgument Status = "invalid_argument"
)

const responseSuffix = "Response"

// ErrUnknownOp is returned when decoding a request whose op is not in the
// catalog.
var ErrUnknownOp = errors.New("unknown op")

// Message is implemented by every request, notification and event payload.
type Message interface {
	Op() Op
}

// Request is the envelope of a client-to-server message.
type Request struct {
	Op      Op              `json:"op"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response answers a Request whose op expects one.
type Response struct {
	Op      Op              `json:"op"`
	Status  Status          `json:"status"`
	Error   string          `json:"error,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Event is a server-initiated message. It never carries a status.
type Event struct {
	Op      Op              `json:"op"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ResponseOp names the response kind for op.
func ResponseOp(op Op) Op { return op + responseSuffix }

// IsResponse reports whether op names a response kind.
func IsResponse(op Op) bool { return strings.HasSuffix(string(op), responseSuffix) }

// NewOKResponse creates a successful response with optional data
func NewOKResponse(op Op, data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = b
	}

	return &Response{
		Op:      ResponseOp(op),
		Status:  StatusOK,
		Payload: dataBytes,
	}, nil
}

// NewErrorResponse creates a failed response with a message
func NewErrorResponse(op Op, status Status, errMsg string) *Response {
	return &Response{
		Op:     ResponseOp(op),
		Status: status,
		Error:  errMsg,
	}
}

// NewRequest wraps msg in a request envelope.
func NewRequest(msg Message) (*Request, error) {
	b, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", msg.Op(), err)
	}
	return &Request{Op: msg.Op(), Payload: b}, nil
}

// NewEvent wraps msg in an event envelope.
func NewEvent(msg Message) (*Event, error) {
	b, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", msg.Op(), err)
	}
	return &Event{Op: msg.Op(), Payload: b}, nil
}

// ParseRequest parses a request envelope from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	if req.Op == "" {
		return nil, errors.New("failed to parse request: missing op")
	}
	return &req, nil
}

// Decode resolves the envelope's op through the catalog and strictly
// decodes its payload. Unknown ops and unknown payload fields are errors.
func (r *Request) Decode() (Message, error) {
	newMsg, ok := catalog[r.Op]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownOp, r.Op)
	}
	msg := newMsg()
	if len(r.Payload) == 0 || bytes.Equal(r.Payload, []byte("null")) {
		return msg, nil
	}
	dec := json.NewDecoder(bytes.NewReader(r.Payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(msg); err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", r.Op, err)
	}
	return msg, nil
}

// ExpectsResponse reports whether op is answered. Fire-and-forget ops are
// not.
func ExpectsResponse(op Op) bool {
	_, ff := fireAndForget[op]
	return !ff
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// Unmarshal decodes the response payload into v.
func (r *Response) Unmarshal(v interface{}) error {
	if len(r.Payload) == 0 || v == nil {
		return nil
	}
	return json.Unmarshal(r.Payload, v)
}

// Unmarshal decodes the event payload into v.
func (e *Event) Unmarshal(v interface{}) error {
	if len(e.Payload) == 0 || v == nil {
		return nil
	}
	return json.Unmarshal(e.Payload, v)
}

// envelope is used by clients to tell responses from events.
type envelope struct {
	Op      Op              `json:"op"`
	Status  Status          `json:"status,omitempty"`
	Error   string          `json:"error,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

package server

import (
	"errors"
	"fmt"

	"github.com/1broseidon/winserv/internal/desktop"
	"github.com/1broseidon/winserv/internal/ipc"
	"github.com/1broseidon/winserv/internal/metrics"
	"github.com/1broseidon/winserv/internal/wm"
)

var (
	// ErrProtocolViolation is fatal to the connection that caused it.
	ErrProtocolViolation = errors.New("protocol violation")
	// ErrInvalidArgument is reported to the caller; the connection stays
	// open.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound is reported to the caller; the connection stays open.
	ErrNotFound = errors.New("not found")
)

// Kind classifies a handler failure.
type Kind int

const (
	KindProtocolViolation Kind = iota + 1
	KindInvalidArgument
	KindNotFound
)

func (k Kind) sentinel() error {
	switch k {
	case KindProtocolViolation:
		return ErrProtocolViolation
	case KindInvalidArgument:
		return ErrInvalidArgument
	default:
		return ErrNotFound
	}
}

// Error is a classified handler failure.
type Error struct {
	Kind Kind
	Op   ipc.Op
	Msg  string
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%v: %s", e.Kind.sentinel(), e.Msg)
	}
	return fmt.Sprintf("%s: %v: %s", e.Op, e.Kind.sentinel(), e.Msg)
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool { return target == e.Kind.sentinel() }

func violationf(op ipc.Op, format string, args ...any) *Error {
	return &Error{Kind: KindProtocolViolation, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func invalidf(op ipc.Op, format string, args ...any) *Error {
	return &Error{Kind: KindInvalidArgument, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func notFoundf(op ipc.Op, format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// classify turns an entity or settings error into a handler error for op.
func classify(op ipc.Op, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	switch {
	case errors.Is(err, wm.ErrItemNotFound):
		return notFoundf(op, "%v", err)
	case errors.Is(err, wm.ErrInvalidArgument), errors.Is(err, desktop.ErrInvalidSetting):
		return invalidf(op, "%v", err)
	}
	return invalidf(op, "%v", err)
}

// status maps a handler error to the response status and metrics label.
func status(err error) (ipc.Status, string) {
	switch {
	case err == nil:
		return ipc.StatusOK, metrics.StatusOK
	case errors.Is(err, ErrProtocolViolation):
		return "", metrics.StatusProtocolViolation
	case errors.Is(err, ErrNotFound):
		return ipc.StatusNotFound, metrics.StatusNotFound
	default:
		return ipc.StatusInvalidArgument, metrics.StatusInvalidArgument
	}
}

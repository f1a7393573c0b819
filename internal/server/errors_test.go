package server

import (
	"errors"
	"fmt"
	"testing"

	"github.com/1broseidon/winserv/internal/desktop"
	"github.com/1broseidon/winserv/internal/ipc"
	"github.com/1broseidon/winserv/internal/metrics"
	"github.com/1broseidon/winserv/internal/wm"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"item not found", wm.ErrItemNotFound, ErrNotFound},
		{"entity validation", fmt.Errorf("%w: bad", wm.ErrInvalidArgument), ErrInvalidArgument},
		{"display conflict", wm.ErrDisplayConflict, ErrInvalidArgument},
		{"desktop setting", fmt.Errorf("%w: bad", desktop.ErrInvalidSetting), ErrInvalidArgument},
		{"already classified", violationf(ipc.OpDestroyWindow, "foreign"), ErrProtocolViolation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(ipc.OpSetWindowRect, tt.err)
			if !errors.Is(got, tt.want) {
				t.Fatalf("classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
	if classify(ipc.OpSetWindowRect, nil) != nil {
		t.Fatal("classify(nil) != nil")
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus ipc.Status
		wantLabel  string
	}{
		{nil, ipc.StatusOK, metrics.StatusOK},
		{notFoundf(ipc.OpGetWindowRect, "gone"), ipc.StatusNotFound, metrics.StatusNotFound},
		{invalidf(ipc.OpSetWindowOpacity, "2"), ipc.StatusInvalidArgument, metrics.StatusInvalidArgument},
		{violationf(ipc.OpDestroyWindow, "foreign"), "", metrics.StatusProtocolViolation},
	}
	for _, tt := range tests {
		st, label := status(tt.err)
		if st != tt.wantStatus || label != tt.wantLabel {
			t.Errorf("status(%v) = %q, %q; want %q, %q", tt.err, st, label, tt.wantStatus, tt.wantLabel)
		}
	}
}

func TestError_Message(t *testing.T) {
	err := notFoundf(ipc.OpGetWindowRect, "window %d no longer exists", 1982)
	want := "GetWindowRect: not found: window 1982 no longer exists"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}

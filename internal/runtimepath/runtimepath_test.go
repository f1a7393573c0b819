package runtimepath

import (
	"fmt"
	"os"
	"strings"
	"testing"
)

func TestDir_UsesXDGRuntimeDirWhenSet(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if got != td {
		t.Fatalf("Dir() = %q, want %q", got, td)
	}
}

func TestDir_FallbacksWhenXDGRuntimeDirMissing(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if got == "" {
		t.Fatal("Dir() returned empty path")
	}

	wantRun := fmt.Sprintf("/run/user/%d", os.Getuid())
	wantTmp := fmt.Sprintf("/tmp/winserv-runtime-%d", os.Getuid())
	if got != wantRun && got != wantTmp {
		t.Fatalf("Dir() = %q, want %q or %q", got, wantRun, wantTmp)
	}
}

func TestSocketPath(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)

	socket, err := SocketPath()
	if err != nil {
		t.Fatalf("SocketPath() error: %v", err)
	}
	if !strings.HasSuffix(socket, "/winserv.sock") {
		t.Fatalf("SocketPath() = %q, missing suffix", socket)
	}
}

func TestResolveSocket(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)
	t.Setenv("WINSERV_SOCKET", "")

	if got, _ := ResolveSocket("/tmp/explicit.sock"); got != "/tmp/explicit.sock" {
		t.Fatalf("explicit path ignored: %q", got)
	}
	if got, _ := ResolveSocket(""); got != td+"/winserv.sock" {
		t.Fatalf("default path = %q", got)
	}
	t.Setenv("WINSERV_SOCKET", "/tmp/env.sock")
	if got, _ := ResolveSocket(""); got != "/tmp/env.sock" {
		t.Fatalf("env path ignored: %q", got)
	}
}

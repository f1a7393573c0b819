package daemon

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startLoop(t *testing.T, cfg LoopConfig) (*Loop, context.CancelFunc) {
	t.Helper()
	cfg.Logger = testLogger()
	l := NewLoop(cfg)
	return l, startConfigured(t, l)
}

func startConfigured(t *testing.T, l *Loop) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-l.Done()
	})
	return cancel
}

func TestLoop_RunsTasksInOrder(t *testing.T) {
	l, _ := startLoop(t, LoopConfig{})

	var (
		mu  sync.Mutex
		got []int
	)
	for i := 0; i < 100; i++ {
		i := i
		l.Post(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}
	if err := l.Call(context.Background(), func() {}); err != nil {
		t.Fatalf("Call: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 100 {
		t.Fatalf("ran %d tasks, want 100", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("task %d ran at position %d", v, i)
		}
	}
}

func TestLoop_CallSerializesWithoutLocks(t *testing.T) {
	l, _ := startLoop(t, LoopConfig{})

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.Call(context.Background(), func() { counter++ })
		}()
	}
	wg.Wait()

	var final int
	_ = l.Call(context.Background(), func() { final = counter })
	if final != 50 {
		t.Fatalf("counter = %d, want 50", final)
	}
}

func TestLoop_PanicDoesNotStopLoop(t *testing.T) {
	l, _ := startLoop(t, LoopConfig{})

	l.Post(func() { panic("boom") })
	ran := false
	if err := l.Call(context.Background(), func() { ran = true }); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if !ran {
		t.Fatal("task after panic did not run")
	}
}

func TestLoop_StoppedRejectsWork(t *testing.T) {
	l, cancel := startLoop(t, LoopConfig{})
	cancel()
	<-l.Done()

	if l.Post(func() {}) {
		t.Fatal("Post after stop should report false")
	}
	if err := l.Call(context.Background(), func() {}); !errors.Is(err, ErrStopped) {
		t.Fatalf("Call err = %v, want ErrStopped", err)
	}
}

func TestLoop_CallHonorsContext(t *testing.T) {
	l, _ := startLoop(t, LoopConfig{})

	block := make(chan struct{})
	l.Post(func() { <-block })
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Call(ctx, func() {}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestLoop_Ticks(t *testing.T) {
	l := NewLoop(LoopConfig{
		ProbeInterval: time.Millisecond,
		FrameInterval: time.Millisecond,
		Logger:        testLogger(),
	})
	probed := make(chan struct{}, 1)
	framed := make(chan time.Time, 1)
	l.OnProbe(func() {
		select {
		case probed <- struct{}{}:
		default:
		}
	})
	l.OnFrame(func(now time.Time) {
		select {
		case framed <- now:
		default:
		}
	})
	startConfigured(t, l)

	select {
	case <-probed:
	case <-time.After(2 * time.Second):
		t.Fatal("probe tick never fired")
	}
	select {
	case now := <-framed:
		if now.IsZero() {
			t.Fatal("frame tick without time")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("frame tick never fired")
	}
}

package ids

import (
	"sync"
	"testing"
)

func TestFirstIDsStartAtBase(t *testing.T) {
	a := New()
	for _, k := range []Kind{Window, Menubar, Menu} {
		id, err := a.Next(k)
		if err != nil {
			t.Fatalf("Next(%s): %v", k, err)
		}
		if id != Base(k) {
			t.Fatalf("first %s id = %d, want %d", k, id, Base(k))
		}
	}
	if Base(Window) != 1982 {
		t.Fatalf("window base = %d, want 1982", Base(Window))
	}
}

func TestIDsStrictlyIncreaseAndStayInKind(t *testing.T) {
	a := New()
	last := map[Kind]int32{}
	for i := 0; i < 1000; i++ {
		for _, k := range []Kind{Window, Menubar, Menu} {
			id, err := a.Next(k)
			if err != nil {
				t.Fatalf("Next: %v", err)
			}
			if prev, ok := last[k]; ok && id <= prev {
				t.Fatalf("%s id %d not greater than %d", k, id, prev)
			}
			last[k] = id
			got, ok := KindOf(id)
			if !ok || got != k {
				t.Fatalf("KindOf(%d) = %v,%v want %v", id, got, ok, k)
			}
		}
	}
}

func TestConcurrentAllocationNeverCollides(t *testing.T) {
	a := New()
	const workers, per = 8, 500
	var mu sync.Mutex
	seen := make(map[int32]bool, workers*per)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]int32, 0, per)
			for i := 0; i < per; i++ {
				id, err := a.Next(Menu)
				if err != nil {
					t.Errorf("Next: %v", err)
					return
				}
				local = append(local, id)
			}
			mu.Lock()
			defer mu.Unlock()
			for _, id := range local {
				if seen[id] {
					t.Errorf("duplicate id %d", id)
				}
				seen[id] = true
			}
		}()
	}
	wg.Wait()
	if len(seen) != workers*per {
		t.Fatalf("got %d ids, want %d", len(seen), workers*per)
	}
}

func TestExhaustedRangeFails(t *testing.T) {
	a := New()
	a.next[Window].Store(ranges[Window].limit - 1)
	if _, err := a.Next(Window); err != nil {
		t.Fatalf("last id should succeed: %v", err)
	}
	if _, err := a.Next(Window); err == nil {
		t.Fatal("expected exhaustion error")
	}
	if _, err := a.Next(Window); err == nil {
		t.Fatal("exhaustion must be sticky")
	}
}

func TestUnknownKind(t *testing.T) {
	if _, err := New().Next(Kind(42)); err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if _, ok := KindOf(5); ok {
		t.Fatal("id below window base should not map to a kind")
	}
}

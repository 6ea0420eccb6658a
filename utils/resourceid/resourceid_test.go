package resourceid

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	id := New()
	if !strings.HasPrefix(id, Prefix) {
		t.Fatalf("expected prefix %q, got %q", Prefix, id)
	}
	if len(id) != len(Prefix)+26 {
		t.Errorf("expected length %d, got %d", len(Prefix)+26, len(id))
	}
	if !IsValid(id) {
		t.Errorf("IsValid(%q) = false", id)
	}
}

func TestNewIsMonotonic(t *testing.T) {
	now := time.Now()
	prev := NewAt(now)
	for i := 0; i < 100; i++ {
		next := NewAt(now)
		if next <= prev {
			t.Fatalf("ids not increasing: %s then %s", prev, next)
		}
		prev = next
	}
}

func TestNewUniqueUnderConcurrency(t *testing.T) {
	const workers, perWorker = 8, 200
	var (
		mu   sync.Mutex
		seen = make(map[string]struct{}, workers*perWorker)
		wg   sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id := New()
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if len(seen) != workers*perWorker {
		t.Errorf("expected %d unique ids, got %d", workers*perWorker, len(seen))
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{name: "missing prefix", value: "01hzzzzzzzzzzzzzzzzzzzzzzz", want: false},
		{name: "garbage", value: "res_nope", want: false},
		{name: "timestamp style", value: "uploaded-1736400000000", want: false},
		{name: "generated", value: New(), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValid(tt.value); got != tt.want {
				t.Errorf("IsValid(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

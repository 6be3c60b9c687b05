package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/vgetd/vgetd/internal/data"
)

func TestRegistryAddRemoveList(t *testing.T) {
	r := NewRegistry()

	if got := len(r.List()); got != 0 {
		t.Fatalf("expected empty registry, got %d entries", got)
	}

	r.Add(data.Job{ID: "a", URL: "u1", Platform: "youtube", StartedAt: time.Now()})
	r.Add(data.Job{ID: "b", URL: "u2", Platform: "youtube", StartedAt: time.Now()})

	if got := r.Len(); got != 2 {
		t.Fatalf("expected 2 entries got %d", got)
	}

	r.Remove("a")
	list := r.List()
	if len(list) != 1 || list[0].ID != "b" {
		t.Fatalf("unexpected list after remove: %#v", list)
	}

	// Removing twice is harmless.
	r.Remove("a")
	if got := r.Len(); got != 1 {
		t.Fatalf("expected 1 entry got %d", got)
	}
}

func TestRegistryListIsACopy(t *testing.T) {
	r := NewRegistry()
	r.Add(data.Job{ID: "a"})

	list := r.List()
	list[0].ID = "mutated"

	fresh := r.List()
	if fresh[0].ID != "a" {
		t.Fatalf("List must return a copy, registry saw %q", fresh[0].ID)
	}
}

func TestRegistryConcurrent(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("job-%d", n)
			r.Add(data.Job{ID: id})
			_ = r.List()
			r.Remove(id)
		}(i)
	}
	wg.Wait()
	if got := r.Len(); got != 0 {
		t.Fatalf("expected empty registry after all removes, got %d", got)
	}
}

package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestCollectorCountsByStatus(t *testing.T) {
	c := New()
	c.Record(200, 10*time.Millisecond)
	c.Record(429, 5*time.Millisecond)
	c.Record(502, 20*time.Millisecond)

	snap := c.Snapshot()
	if snap["requestsTotal"] != uint64(3) {
		t.Fatalf("requestsTotal = %v, want 3", snap["requestsTotal"])
	}
	if snap["errorsTotal"] != uint64(1) {
		t.Fatalf("errorsTotal = %v, want 1", snap["errorsTotal"])
	}
	if snap["rateLimitedTotal"] != uint64(1) {
		t.Fatalf("rateLimitedTotal = %v, want 1", snap["rateLimitedTotal"])
	}
	if snap["totalDurationMs"] != uint64(35) {
		t.Fatalf("totalDurationMs = %v, want 35", snap["totalDurationMs"])
	}
}

func TestCollectorConcurrentRecord(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Record(200, time.Millisecond)
			}
		}()
	}
	wg.Wait()

	if got := c.Snapshot()["requestsTotal"]; got != uint64(800) {
		t.Fatalf("requestsTotal = %v, want 800", got)
	}
}

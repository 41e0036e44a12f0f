package middlewares

import (
	"testing"
	"time"
)

func TestRateLimiter_WindowResets(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if ok, _ := rl.allow("ip"); !ok {
			t.Fatalf("hit %d should pass", i)
		}
	}

	ok, wait := rl.allow("ip")
	if ok || wait != time.Minute {
		t.Fatalf("third hit: ok=%v wait=%v, want blocked for 1m", ok, wait)
	}

	now = now.Add(time.Minute)

	if ok, _ := rl.allow("ip"); !ok {
		t.Fatalf("new window should pass")
	}
}

func TestRateLimiter_PrunesExpiredWindows(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	rl := NewRateLimiter(1, time.Second)
	rl.now = func() time.Time { return now }

	for i := 0; i < pruneThreshold; i++ {
		rl.allow(time.Duration(i).String())
	}

	now = now.Add(2 * time.Second)
	rl.allow("fresh")

	if len(rl.windows) != 1 {
		t.Fatalf("expired windows should be pruned, have %d", len(rl.windows))
	}
}

package ratelimit

import (
	"testing"
	"time"
)

func TestNoop_AlwaysAllows(t *testing.T) {
	var l Noop
	for i := 0; i < 100; i++ {
		if allowed, _ := l.Allow("k"); !allowed {
			t.Fatal("noop limiter denied a request")
		}
	}
}

func TestInMemory_EnforcesLimitPerKey(t *testing.T) {
	l := NewInMemory(3, time.Minute)
	for i := 0; i < 3; i++ {
		if allowed, _ := l.Allow("a"); !allowed {
			t.Fatalf("request %d within limit denied", i)
		}
	}
	allowed, retryAfter := l.Allow("a")
	if allowed {
		t.Error("request over the limit allowed")
	}
	if retryAfter < 1 {
		t.Errorf("retry-after: got %d", retryAfter)
	}
	// Other keys are unaffected.
	if allowed, _ := l.Allow("b"); !allowed {
		t.Error("separate key denied")
	}
}

func TestInMemory_WindowSlides(t *testing.T) {
	now := time.Unix(1000, 0)
	l := NewInMemory(2, time.Minute)
	l.nowFunc = func() time.Time { return now }

	l.Allow("a")
	l.Allow("a")
	if allowed, _ := l.Allow("a"); allowed {
		t.Fatal("third request within the window allowed")
	}

	now = now.Add(61 * time.Second)
	if allowed, _ := l.Allow("a"); !allowed {
		t.Error("request after the window slid denied")
	}
}

package ratelimit

import (
	"testing"
	"time"
)

func TestAllowWithinBudget(t *testing.T) {
	l := NewLimiter(3, time.Minute)
	defer l.Stop()

	for i := 0; i < 3; i++ {
		if !l.Allow("u-1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow("u-1") {
		t.Fatalf("request over budget should be denied")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	l := NewLimiter(1, time.Minute)
	defer l.Stop()

	if !l.Allow("u-1") {
		t.Fatalf("first request for u-1 should be allowed")
	}
	if !l.Allow("u-2") {
		t.Fatalf("u-2 must not share u-1's budget")
	}
	if l.Allow("u-1") {
		t.Fatalf("u-1 is over budget")
	}
}

func TestEmptyKeyNotLimited(t *testing.T) {
	l := NewLimiter(1, time.Minute)
	defer l.Stop()

	for i := 0; i < 5; i++ {
		if !l.Allow("") {
			t.Fatalf("empty key must not be limited")
		}
	}
}

func TestAllowStrictUsesSeparateBucket(t *testing.T) {
	l := NewLimiter(100, time.Minute)
	defer l.Stop()

	if !l.AllowStrict("1.2.3.4", 2, time.Minute) {
		t.Fatalf("first strict request should be allowed")
	}
	if !l.AllowStrict("1.2.3.4", 2, time.Minute) {
		t.Fatalf("second strict request should be allowed")
	}
	if l.AllowStrict("1.2.3.4", 2, time.Minute) {
		t.Fatalf("third strict request should be denied")
	}
	// The general budget for the same key is untouched
	if !l.Allow("1.2.3.4") {
		t.Fatalf("general budget must not be consumed by strict checks")
	}
}

func TestWindowSlides(t *testing.T) {
	l := NewLimiter(1, 20*time.Millisecond)
	defer l.Stop()

	if !l.Allow("u-1") {
		t.Fatalf("first request should be allowed")
	}
	if l.Allow("u-1") {
		t.Fatalf("second request inside the window should be denied")
	}

	time.Sleep(30 * time.Millisecond)
	if !l.Allow("u-1") {
		t.Fatalf("request after the window slid should be allowed")
	}
}

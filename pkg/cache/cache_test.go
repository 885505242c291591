package cache

import (
	"testing"
	"time"
)

func TestSetAndGet(t *testing.T) {
	c := New()
	c.Set("dashboard:t1", "v1", 1*time.Second)
	val, ok := c.Get("dashboard:t1")
	if !ok || val != "v1" {
		t.Fatalf("expected v1, got %v, exists=%v", val, ok)
	}
}

func TestExpiration(t *testing.T) {
	c := New()
	c.Set("dashboard:t1", "v1", 100*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	_, ok := c.Get("dashboard:t1")
	if ok {
		t.Fatalf("expected expired key to return false")
	}
}

func TestDelete(t *testing.T) {
	c := New()
	c.Set("dashboard:t1", "v1", 1*time.Second)
	c.Delete("dashboard:t1")
	_, ok := c.Get("dashboard:t1")
	if ok {
		t.Fatalf("expected deleted key to return false")
	}
}

func TestInvalidate(t *testing.T) {
	c := New()
	c.Set("dashboard:t1", "d1", 1*time.Second)
	c.Set("dashboard:t2", "d2", 1*time.Second)
	c.Set("session:abc", "s1", 1*time.Second)
	c.Invalidate("dashboard:")
	_, ok1 := c.Get("dashboard:t1")
	_, ok2 := c.Get("dashboard:t2")
	_, ok3 := c.Get("session:abc")
	if ok1 || ok2 {
		t.Fatalf("expected dashboard keys to be invalidated")
	}
	if !ok3 {
		t.Fatalf("expected session:abc to still exist")
	}
}

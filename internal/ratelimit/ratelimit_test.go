package ratelimit

import (
	"testing"
	"time"
)

func TestAllow(t *testing.T) {
	krl := New(1, 2)
	defer krl.Stop()

	if !krl.Allow("1.2.3.4") {
		t.Error("first request should be allowed")
	}
	if !krl.Allow("1.2.3.4") {
		t.Error("second request should be allowed within burst")
	}
	if krl.Allow("1.2.3.4") {
		t.Error("third request should exceed burst")
	}
}

func TestAllow_IndependentKeys(t *testing.T) {
	krl := New(1, 1)
	defer krl.Stop()

	if !krl.Allow("1.2.3.4") {
		t.Error("first key should be allowed")
	}
	if krl.Allow("1.2.3.4") {
		t.Error("first key should be exhausted")
	}
	if !krl.Allow("5.6.7.8") {
		t.Error("second key should have its own bucket")
	}
}

func TestAllow_Refill(t *testing.T) {
	krl := New(100, 1)
	defer krl.Stop()

	if !krl.Allow("1.2.3.4") {
		t.Error("first request should be allowed")
	}
	if krl.Allow("1.2.3.4") {
		t.Error("bucket should be empty")
	}

	time.Sleep(20 * time.Millisecond)
	if !krl.Allow("1.2.3.4") {
		t.Error("bucket should have refilled")
	}
}

func TestStop(t *testing.T) {
	krl := New(1, 1)
	krl.Stop()
	krl.Stop() // idempotent
}

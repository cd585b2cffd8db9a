package ratelimit

import "testing"

func TestAllowConsumesBurst(t *testing.T) {
	l := New()
	for i := 0; i < 3; i++ {
		if !l.Allow("silverprice", 3, 0.001) {
			t.Fatalf("fetch %d should be within burst", i+1)
		}
	}
	if l.Allow("silverprice", 3, 0.001) {
		t.Fatalf("fetch beyond burst should be throttled")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	l := New()
	if !l.Allow("a", 1, 0.001) {
		t.Fatalf("first fetch for a should pass")
	}
	if l.Allow("a", 1, 0.001) {
		t.Fatalf("second fetch for a should be throttled")
	}
	if !l.Allow("b", 1, 0.001) {
		t.Fatalf("b must not share a's bucket")
	}
}

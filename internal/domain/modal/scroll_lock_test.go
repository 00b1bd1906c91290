package modal

import "testing"

// TestScrollLock_RefCounted tests that the lock holds until every holder releases.
func TestScrollLock_RefCounted(t *testing.T) {
	var l ScrollLock
	if l.Locked() {
		t.Fatal("zero lock is locked")
	}

	releaseA := l.Acquire()
	releaseB := l.Acquire()
	if l.Holders() != 2 {
		t.Errorf("Holders = %d, want 2", l.Holders())
	}

	releaseA()
	if !l.Locked() {
		t.Error("unlocked while a holder remains")
	}
	releaseB()
	if l.Locked() {
		t.Error("still locked after all releases")
	}
}

// TestScrollLock_ReleaseIdempotent tests that double release does not underflow.
func TestScrollLock_ReleaseIdempotent(t *testing.T) {
	var l ScrollLock
	release := l.Acquire()
	other := l.Acquire()

	release()
	release()
	if l.Holders() != 1 {
		t.Errorf("Holders = %d, want 1", l.Holders())
	}
	other()
	if l.Holders() != 0 {
		t.Errorf("Holders = %d, want 0", l.Holders())
	}
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package otp

import (
	"sync"
	"time"
)

// Mode records who owns code validity for a pending entry.
type Mode string

const (
	// ModeLocal entries carry their own code and expiry.
	ModeLocal Mode = "local"
	// ModeRemote entries have no code; the remote channel checks it.
	ModeRemote Mode = "remote"
)

// RemoteGrace is how long past ExpiresAt a remote entry survives a sweep.
// The remote service keeps its own, longer, code lifetime.
const RemoteGrace = 10 * time.Minute

// Entry is the pending one-time-code state for one voter id.
type Entry struct {
	Code      string
	ExpiresAt time.Time
	Phone     string
	Mode      Mode
}

// Ledger maps a normalized voter id to its pending entry.
type Ledger interface {
	Get(voterID string) (Entry, bool)
	// Set replaces any pending entry for voterID.
	Set(voterID string, e Entry)
	Delete(voterID string)
	// CompareAndDelete removes the entry only if it still equals old, and
	// reports whether it did. A concurrent re-issue is left untouched.
	CompareAndDelete(voterID string, old Entry) bool
}

// MemoryLedger is a process-local Ledger guarded by a mutex.
type MemoryLedger struct {
	mu      sync.Mutex
	entries map[string]Entry
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{entries: make(map[string]Entry)}
}

func (l *MemoryLedger) Get(voterID string) (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[voterID]
	return e, ok
}

func (l *MemoryLedger) Set(voterID string, e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[voterID] = e
}

func (l *MemoryLedger) Delete(voterID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, voterID)
}

func (l *MemoryLedger) CompareAndDelete(voterID string, old Entry) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	cur, ok := l.entries[voterID]
	if !ok || cur != old {
		return false
	}
	delete(l.entries, voterID)
	return true
}

// Len returns the number of pending entries
func (l *MemoryLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Sweep drops local entries past expiry and remote entries past expiry plus
// RemoteGrace. It returns how many entries were removed.
func (l *MemoryLedger) Sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for id, e := range l.entries {
		deadline := e.ExpiresAt
		if e.Mode == ModeRemote {
			deadline = deadline.Add(RemoteGrace)
		}
		if now.After(deadline) {
			delete(l.entries, id)
			removed++
		}
	}
	return removed
}

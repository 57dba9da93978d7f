package model

import (
	"fmt"
	"time"
)

// SessionStatus is the closed set of batch session lifecycle states.
// Unknown values are rejected at the boundary, never stored.
type SessionStatus string

const (
	StatusPending   SessionStatus = "pending"
	StatusRunning   SessionStatus = "running"
	StatusPaused    SessionStatus = "paused"
	StatusCompleted SessionStatus = "completed"
	StatusFailed    SessionStatus = "failed"
)

// ParseSessionStatus validates a raw status string against the closed set
func ParseSessionStatus(raw string) (SessionStatus, error) {
	switch SessionStatus(raw) {
	case StatusPending, StatusRunning, StatusPaused, StatusCompleted, StatusFailed:
		return SessionStatus(raw), nil
	default:
		return "", fmt.Errorf("%w: unknown session status %q", ErrInvalidArgument, raw)
	}
}

// IsTerminal reports whether the status permits no further transitions
func (s SessionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransition reports whether the lifecycle permits moving to next.
// Transitions only move forward, except pending and paused which can
// alternate until processing starts.
func (s SessionStatus) CanTransition(next SessionStatus) bool {
	if s.IsTerminal() {
		return false
	}
	switch s {
	case StatusPending:
		return next == StatusRunning || next == StatusPaused
	case StatusPaused:
		return next == StatusRunning || next == StatusPending || next.IsTerminal()
	case StatusRunning:
		return next == StatusPaused || next.IsTerminal()
	default:
		return false
	}
}

// Progress tracks live batch counters. Completed+Failed never exceeds Total,
// and InFlight never exceeds the session's concurrency limit.
type Progress struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	InFlight  int `json:"in_flight"`
}

// Settled returns the number of work items that have reached a final outcome
func (p Progress) Settled() int {
	return p.Completed + p.Failed
}

// BatchSession is one bounded unit of document-analysis work for a case.
// Snapshots handed to callers are value copies; the live session is mutated
// only through the scheduler's synchronized update path.
type BatchSession struct {
	ID               string        `json:"id"`
	CaseID           string        `json:"case_id"`
	BatchSize        int           `json:"batch_size"`
	ConcurrencyLimit int           `json:"concurrency_limit"`
	Status           SessionStatus `json:"status"`
	Progress         Progress      `json:"progress"`
	CreatedAt        time.Time     `json:"created_at"`
}

// WorkItem is one document's pending-or-settled analysis unit within a
// session. Items are owned by exactly one session and never shared.
type WorkItem struct {
	Document  DocumentRef `json:"document"`
	Attempts  int         `json:"attempts"`
	LastError string      `json:"last_error,omitempty"`
}

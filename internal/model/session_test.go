package model

import (
	"errors"
	"testing"
)

func TestParseSessionStatus(t *testing.T) {
	for _, valid := range []string{"pending", "running", "paused", "completed", "failed"} {
		status, err := ParseSessionStatus(valid)
		if err != nil {
			t.Errorf("expected %q to parse, got %v", valid, err)
		}
		if string(status) != valid {
			t.Errorf("expected %q, got %q", valid, status)
		}
	}

	// Unknown statuses are rejected at the boundary, never stored
	for _, invalid := range []string{"", "Running", "cancelled", "done"} {
		if _, err := ParseSessionStatus(invalid); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for %q, got %v", invalid, err)
		}
	}
}

func TestSessionStatus_CanTransition(t *testing.T) {
	cases := []struct {
		from    SessionStatus
		to      SessionStatus
		allowed bool
	}{
		{StatusPending, StatusRunning, true},
		{StatusPending, StatusPaused, true},
		{StatusPending, StatusCompleted, false},
		{StatusPaused, StatusPending, true},
		{StatusPaused, StatusRunning, true},
		{StatusPaused, StatusCompleted, true},
		{StatusRunning, StatusPaused, true},
		{StatusRunning, StatusCompleted, true},
		{StatusRunning, StatusFailed, true},
		{StatusRunning, StatusRunning, false},
		{StatusRunning, StatusPending, false},
		{StatusCompleted, StatusRunning, false},
		{StatusFailed, StatusRunning, false},
		{StatusCompleted, StatusFailed, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransition(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.allowed, got)
		}
	}
}

func TestSessionStatus_IsTerminal(t *testing.T) {
	for _, tc := range []struct {
		status   SessionStatus
		terminal bool
	}{
		{StatusPending, false},
		{StatusRunning, false},
		{StatusPaused, false},
		{StatusCompleted, true},
		{StatusFailed, true},
	} {
		if got := tc.status.IsTerminal(); got != tc.terminal {
			t.Errorf("%s: expected terminal=%v, got %v", tc.status, tc.terminal, got)
		}
	}
}

func TestProgress_Settled(t *testing.T) {
	p := Progress{Total: 10, Completed: 4, Failed: 2, InFlight: 3}
	if p.Settled() != 6 {
		t.Errorf("expected 6 settled, got %d", p.Settled())
	}
}

func TestStatement_Topics(t *testing.T) {
	st := Statement{
		ID: "s1",
		Claims: []Claim{
			{Topic: "whereabouts", Predicate: "was at", Value: "the bar", Confidence: 0.9},
			{Topic: "observation", Predicate: "saw", Value: "a sedan", Confidence: 0.8},
			{Topic: "whereabouts", Predicate: "left", Value: "at midnight", Confidence: 0.7},
		},
	}

	if !st.HasTopic("whereabouts") || st.HasTopic("possession") {
		t.Error("HasTopic misreported")
	}

	claims := st.ClaimsForTopic("whereabouts")
	if len(claims) != 2 || claims[0].Predicate != "was at" || claims[1].Predicate != "left" {
		t.Errorf("expected ordered whereabouts claims, got %+v", claims)
	}

	clone := st.Clone()
	clone.Claims[0].Value = "tampered"
	if st.Claims[0].Value != "the bar" {
		t.Error("Clone shares the claim slice")
	}
}

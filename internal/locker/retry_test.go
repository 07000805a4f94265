package locker

import (
	"testing"
	"time"
)

func TestBackoffDelayIsExponential(t *testing.T) {
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 200 * time.Millisecond},
		{2, 400 * time.Millisecond},
		{3, 800 * time.Millisecond},
		{4, 1600 * time.Millisecond},
	}

	for _, tc := range cases {
		if got := backoffDelay(tc.attempt); got != tc.want {
			t.Fatalf("backoffDelay(%d) = %v; want %v", tc.attempt, got, tc.want)
		}
	}

	// Doubling, not a linear step, is what spreads contended retries.
	if backoffDelay(3)-backoffDelay(2) == backoffDelay(2)-backoffDelay(1) {
		t.Fatalf("backoff progression is linear")
	}
}

func TestOptionsFallBackToManagerTuning(t *testing.T) {
	cases := []struct {
		name        string
		manager     *Manager
		in          Options
		wantTimeout time.Duration
		wantRetries int
	}{
		{
			"zero options use configured tuning",
			NewManagerTuned(nil, time.Minute, 10*time.Second, 5),
			Options{},
			10 * time.Second, 5,
		},
		{
			"explicit options win over tuning",
			NewManagerTuned(nil, time.Minute, 10*time.Second, 5),
			Options{Timeout: 2 * time.Second, Retries: 1},
			2 * time.Second, 1,
		},
		{
			"untuned manager falls back to defaults",
			NewManager(nil),
			Options{},
			DefaultTimeout, DefaultRetries,
		},
		{
			"non-positive tuning falls back to defaults",
			NewManagerTuned(nil, 0, 0, 0),
			Options{},
			DefaultTimeout, DefaultRetries,
		},
	}

	for _, tc := range cases {
		got := tc.manager.options(tc.in)
		if got.Timeout != tc.wantTimeout || got.Retries != tc.wantRetries {
			t.Fatalf("%s: options = {%v %d}; want {%v %d}",
				tc.name, got.Timeout, got.Retries, tc.wantTimeout, tc.wantRetries)
		}
	}
}

package domain

import (
	"errors"
	"testing"
	"time"
)

func TestDecision_RetryAfterSecondsRoundsUp(t *testing.T) {
	cases := []struct {
		retry time.Duration
		want  int
	}{
		{2000 * time.Millisecond, 2},
		{1999 * time.Millisecond, 2},
		{1001 * time.Millisecond, 2},
		{1000 * time.Millisecond, 1},
		{1 * time.Millisecond, 1},
		{0, 1},
	}
	for _, c := range cases {
		d := Decision{Allowed: false, RetryAfter: c.retry}
		if got := d.RetryAfterSeconds(); got != c.want {
			t.Fatalf("RetryAfter=%s: expected %d, got %d", c.retry, c.want, got)
		}
	}
}

func TestDecision_RetryAfterSecondsZeroWhenAllowed(t *testing.T) {
	d := Decision{Allowed: true, RetryAfter: 5 * time.Second}
	if got := d.RetryAfterSeconds(); got != 0 {
		t.Fatalf("expected 0 when allowed, got %d", got)
	}
}

func TestDefaultState_ReturnsFreshCopy(t *testing.T) {
	a := DefaultState()
	a.Trips[0].Title = "changed"

	b := DefaultState()
	if b.Trips[0].Title == "changed" {
		t.Fatalf("expected DefaultState to return an independent copy")
	}
	if len(b.Trips) != 2 || b.ClickCount != 0 || b.GlobalHighestProgress != 25 || b.LastClickTime != 0 {
		t.Fatalf("unexpected default state: %+v", b)
	}
}

func TestValidationError_OrNilAndMessage(t *testing.T) {
	verr := &ValidationError{}
	if verr.OrNil() != nil {
		t.Fatalf("expected nil error when no fields failed")
	}

	verr.Add("clickCount", "must be >= 0")
	err := verr.OrNil()
	if err == nil {
		t.Fatalf("expected error")
	}
	var target *ValidationError
	if !errors.As(err, &target) || len(target.Fields) != 1 {
		t.Fatalf("expected *ValidationError with one field, got %v", err)
	}
	if got := err.Error(); got != "invalid payload: clickCount: must be >= 0" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestPatch_Empty(t *testing.T) {
	if !(Patch{}).Empty() {
		t.Fatalf("expected zero patch to be empty")
	}
	n := int64(1)
	if (Patch{ClickCount: &n}).Empty() {
		t.Fatalf("expected patch with clickCount to be non-empty")
	}
}

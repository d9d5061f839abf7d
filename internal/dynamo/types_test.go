package dynamo

import (
	"errors"
	"math"
	"testing"
)

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		state State
		valid bool
	}{
		{"empty", State{}, true},
		{"normal", State{1.0, 2.0, 3.0}, true},
		{"zeros", State{0.0, 0.0}, true},
		{"with NaN", State{1.0, math.NaN()}, false},
		{"with +Inf", State{1.0, math.Inf(1)}, false},
		{"with -Inf", State{1.0, math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestState_Norm(t *testing.T) {
	tests := []struct {
		state    State
		expected float64
	}{
		{State{3, 4}, 5.0},
		{State{1, 0}, 1.0},
		{State{0, 0}, 0.0},
		{State{1, 1, 1, 1}, 2.0},
	}

	for _, tt := range tests {
		if got := tt.state.Norm(); math.Abs(got-tt.expected) > 1e-10 {
			t.Errorf("Norm(%v) = %v, want %v", tt.state, got, tt.expected)
		}
	}
}

func TestState_CloneIsIndependent(t *testing.T) {
	src := State{1, 2, 3}
	c := src.Clone()
	c[0] = 99
	if src[0] != 1 {
		t.Error("Clone shares backing array with source")
	}
	diff := c.Sub(src)
	if diff[0] != 98 || diff[1] != 0 {
		t.Errorf("Sub failed: got %v", diff)
	}
}

func TestSpan_Linspace(t *testing.T) {
	span := Span{Start: 0, End: 10}

	pts := span.Linspace(11)
	if len(pts) != 11 {
		t.Fatalf("expected 11 points, got %d", len(pts))
	}
	if pts[0] != 0 || pts[10] != 10 {
		t.Errorf("endpoints not included: %v", pts)
	}
	for i := 1; i < len(pts); i++ {
		if pts[i] <= pts[i-1] {
			t.Fatalf("points not strictly increasing at %d: %v", i, pts)
		}
	}

	if got := span.Linspace(1); len(got) != 1 || got[0] != 0 {
		t.Errorf("Linspace(1) = %v, want [0]", got)
	}
	if got := span.Linspace(0); got != nil {
		t.Errorf("Linspace(0) = %v, want nil", got)
	}
}

func TestSpan_Validate(t *testing.T) {
	tests := []struct {
		name string
		span Span
		ok   bool
	}{
		{"ordered", Span{0, 1}, true},
		{"empty", Span{1, 1}, false},
		{"inverted", Span{2, 1}, false},
		{"nan", Span{math.NaN(), 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.span.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestNumericalFailure(t *testing.T) {
	err := NumericalFailure(150, 1.5, State{0.5}, ErrStepTooSmall)

	if !errors.Is(err, ErrNumericalFailure) {
		t.Error("expected error to match ErrNumericalFailure")
	}
	if !errors.Is(err, ErrStepTooSmall) {
		t.Error("expected error to match ErrStepTooSmall")
	}

	var simErr *SimulationError
	if !errors.As(err, &simErr) {
		t.Fatal("expected *SimulationError")
	}
	if simErr.Step != 150 || simErr.Time != 1.5 {
		t.Errorf("unexpected context: step=%d time=%f", simErr.Step, simErr.Time)
	}
}

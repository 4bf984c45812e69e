package difficulty

import (
	"math"
	"testing"

	"github.com/verblevel/verblevel/internal/level"
)

const epsilon = 0.001

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestNewState_SeedsFromDeclaredLevel(t *testing.T) {
	tests := []struct {
		declared level.CEFR
		want     float64
	}{
		{level.A1, 1},
		{level.A2, 2},
		{level.B1, 3},
		{level.B2, 4},
		{level.C1, 5},
		{level.C2, 5},
	}
	for _, tt := range tests {
		s := NewState(tt.declared)
		if !almostEqual(s.Value, tt.want) {
			t.Errorf("NewState(%s).Value = %f, want %f", tt.declared, s.Value, tt.want)
		}
		if s.SessionID == "" {
			t.Errorf("NewState(%s) has empty session ID", tt.declared)
		}
	}
}

func TestNext_FastCorrect(t *testing.T) {
	s := Next(State{Value: 3.0}, true, 15) // speedFactor 0.5
	if !almostEqual(s.Value, 3.2) {
		t.Errorf("Value = %f, want 3.2", s.Value)
	}
}

func TestNext_ModerateCorrect(t *testing.T) {
	s := Next(State{Value: 3.0}, true, 25) // speedFactor 0.83
	if !almostEqual(s.Value, 3.1) {
		t.Errorf("Value = %f, want 3.1", s.Value)
	}
}

func TestNext_SlowCorrect(t *testing.T) {
	s := Next(State{Value: 3.0}, true, 45) // speedFactor 1.5
	if !almostEqual(s.Value, 3.0) {
		t.Errorf("Value = %f, want 3.0 (no change)", s.Value)
	}
}

func TestNext_Incorrect(t *testing.T) {
	s := Next(State{Value: 3.0}, false, 10)
	if !almostEqual(s.Value, 2.7) {
		t.Errorf("Value = %f, want 2.7", s.Value)
	}
}

func TestNext_ClampedAtFloor(t *testing.T) {
	s := Next(State{Value: 1.0}, false, 10)
	if !almostEqual(s.Value, 1.0) {
		t.Errorf("Value = %f, want 1.0 (clamped)", s.Value)
	}
}

func TestNext_ClampedAtCeiling(t *testing.T) {
	s := Next(State{Value: 5.0}, true, 5)
	if !almostEqual(s.Value, 5.0) {
		t.Errorf("Value = %f, want 5.0 (clamped)", s.Value)
	}
}

func TestNext_RepeatedIncorrectConvergesToFloor(t *testing.T) {
	s := State{Value: 5.0}
	for i := 0; i < 50; i++ {
		s = Next(s, false, 60)
		if s.Value < 1.0 || s.Value > 5.0 {
			t.Fatalf("step %d: Value = %f, out of [1,5]", i, s.Value)
		}
	}
	if !almostEqual(s.Value, 1.0) {
		t.Errorf("after 50 misses Value = %f, want 1.0", s.Value)
	}
}

func TestNext_AlwaysInRange(t *testing.T) {
	starts := []float64{-2, 0, 1, 2.5, 5, 9}
	times := []float64{0, 5, 15, 29, 30, 31, 120, -3}
	for _, v := range starts {
		for _, rt := range times {
			for _, correct := range []bool{true, false} {
				s := Next(State{Value: v}, correct, rt)
				if s.Value < 1.0 || s.Value > 5.0 {
					t.Errorf("Next(%f, %v, %f) = %f, out of [1,5]", v, correct, rt, s.Value)
				}
			}
		}
	}
}

func TestNext_OneDecimalRounding(t *testing.T) {
	s := Next(State{Value: 2.34}, true, 10)
	// 2.34 + 0.2 = 2.54 → 2.5
	if !almostEqual(s.Value, 2.5) {
		t.Errorf("Value = %f, want 2.5", s.Value)
	}
}

func TestNext_BoundarySpeedFactors(t *testing.T) {
	// speedFactor exactly 0.7 earns the smaller bump.
	s := Next(State{Value: 3.0}, true, 21)
	if !almostEqual(s.Value, 3.1) {
		t.Errorf("at speedFactor 0.7: Value = %f, want 3.1", s.Value)
	}
	// speedFactor exactly 1.0 earns nothing.
	s = Next(State{Value: 3.0}, true, 30)
	if !almostEqual(s.Value, 3.0) {
		t.Errorf("at speedFactor 1.0: Value = %f, want 3.0", s.Value)
	}
}

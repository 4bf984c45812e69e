// Package difficulty implements the per-session adaptive difficulty
// controller.
//
// The controller is purely reactive: a single bounded float per session,
// nudged up on fast correct answers and down on wrong ones, with no
// lookahead and no memory beyond the current value. That keeps every
// update auditable from (value, correct, responseTime) alone.
package difficulty

import (
	"math"

	"github.com/google/uuid"
	"github.com/verblevel/verblevel/internal/level"
)

// ReferencePaceSeconds is the response time treated as normal pace.
const ReferencePaceSeconds = 30.0

const (
	minDifficulty = 1.0
	maxDifficulty = 5.0
)

// State is the difficulty value for one active assessment session.
// Owned by exactly one session and discarded when it ends.
type State struct {
	SessionID string  `json:"session_id"`
	Value     float64 `json:"value"`
}

// NewState creates a session difficulty state seeded from the learner's
// declared CEFR level (A1 starts at 1, C1 and C2 at 5).
func NewState(declared level.CEFR) State {
	return State{
		SessionID: uuid.NewString(),
		Value:     float64(declared.Unified()),
	}
}

// Next returns the state after one graded question. The result is clamped
// to [1,5] and rounded to one decimal; the input state is not mutated.
func Next(s State, correct bool, responseTimeSeconds float64) State {
	delta := 0.0
	if correct {
		speedFactor := responseTimeSeconds / ReferencePaceSeconds
		switch {
		case speedFactor < 0.7:
			delta = 0.2
		case speedFactor < 1.0:
			delta = 0.1
		}
	} else {
		delta = -0.3
	}

	v := clamp(s.Value+delta, minDifficulty, maxDifficulty)
	s.Value = math.Round(v*10) / 10
	return s
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

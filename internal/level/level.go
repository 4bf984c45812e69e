// Package level maps between the engine's complexity signals and
// proficiency scales.
//
// Two scales are in play: the six-point CEFR scale (A1–C2) used everywhere
// learners and course content declare a level, and the engine's internal
// five-point unified scale. The unified scale is deliberately coarser at
// the top: both C1 and C2 collapse to unified level 5, so the round trip
// through the unified scale is lossy for C2. That collapse is a recorded
// policy decision, not a bug.
package level

import "fmt"

// CEFR is a standard proficiency level.
type CEFR string

const (
	A1 CEFR = "A1"
	A2 CEFR = "A2"
	B1 CEFR = "B1"
	B2 CEFR = "B2"
	C1 CEFR = "C1"
	C2 CEFR = "C2"
)

// Unified is the engine's internal 1–5 ordinal proficiency scale.
type Unified int

// ParseCEFR validates a level string from the surrounding system.
// Unknown values are a programmer error at the boundary and fail loudly.
func ParseCEFR(s string) (CEFR, error) {
	switch CEFR(s) {
	case A1, A2, B1, B2, C1, C2:
		return CEFR(s), nil
	}
	return "", fmt.Errorf("unknown CEFR level: %q", s)
}

// FromGrade maps a composite grade level onto the unified scale.
// Monotonic non-decreasing and total over all float inputs.
func FromGrade(compositeGradeLevel float64) Unified {
	switch {
	case compositeGradeLevel < 6:
		return 1
	case compositeGradeLevel < 8:
		return 2
	case compositeGradeLevel < 10:
		return 3
	case compositeGradeLevel < 12:
		return 4
	default:
		return 5
	}
}

// CEFR converts a unified level to its CEFR label. Unified 5 maps to C1;
// the C2 end of the scale is unreachable from the unified side.
func (u Unified) CEFR() CEFR {
	switch u {
	case 1:
		return A1
	case 2:
		return A2
	case 3:
		return B1
	case 4:
		return B2
	default:
		return C1
	}
}

// Unified converts a CEFR level to the internal scale. C2 collapses to 5.
func (l CEFR) Unified() Unified {
	switch l {
	case A1:
		return 1
	case A2:
		return 2
	case B1:
		return 3
	case B2:
		return 4
	default: // C1, C2
		return 5
	}
}

// FromScore maps a raw 0–100 score directly to a CEFR level. Used when
// there is no analyzable text to derive a grade level from.
func FromScore(score float64) CEFR {
	switch {
	case score >= 90:
		return C2
	case score >= 80:
		return C1
	case score >= 70:
		return B2
	case score >= 60:
		return B1
	case score >= 40:
		return A2
	default:
		return A1
	}
}

// ConversationalPolicyA1 is the level reported for conversational content
// with no well-formed sentences to analyze. Always A1 per explicit policy;
// confirm with stakeholders before changing.
const ConversationalPolicyA1 = A1

// FromConversationalScore is the direct score-to-level mapping for
// conversational practice content. Free conversation has no well-formed
// prose to grade, so the score is ignored and the label is pinned to
// ConversationalPolicyA1.
func FromConversationalScore(float64) CEFR {
	return ConversationalPolicyA1
}

// Band is an inclusive Flesch-Kincaid grade range a text must land in to
// count as matching a CEFR level.
type Band struct {
	Min float64
	Max float64
}

// kincaidBands pins the target Flesch-Kincaid range per CEFR level, used
// by text complexity adaptation.
var kincaidBands = map[CEFR]Band{
	A1: {0, 3},
	A2: {2, 5},
	B1: {4, 8},
	B2: {7, 11},
	C1: {10, 14},
	C2: {12, 20},
}

// KincaidBand returns the target Flesch-Kincaid band for a CEFR level.
func KincaidBand(l CEFR) Band {
	return kincaidBands[l]
}

// Contains reports whether grade falls inside the band.
func (b Band) Contains(grade float64) bool {
	return grade >= b.Min && grade <= b.Max
}

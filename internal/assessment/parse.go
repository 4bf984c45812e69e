package assessment

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/verblevel/verblevel/internal/level"
)

// Defaults applied when the AI omits or mangles a field.
const (
	defaultSkillScore = 60.0
	defaultCEFR       = level.B1
)

// aiPayload mirrors the wire format of the assessment response.
type aiPayload struct {
	OverallScore   *float64 `json:"overall_score"`
	CEFRLevel      string   `json:"cefr_level"`
	SkillBreakdown struct {
		Grammar    *float64 `json:"grammar"`
		Vocabulary *float64 `json:"vocabulary"`
		Fluency    *float64 `json:"fluency"`
		Accuracy   *float64 `json:"accuracy"`
		Relevance  *float64 `json:"relevance"`
	} `json:"skill_breakdown"`
	FleschKincaid   *float64 `json:"flesch_kincaid_score"`
	Appropriateness string   `json:"complexity_appropriateness"`
	Feedback        string   `json:"feedback"`
	ErrorExamples   []string `json:"error_examples"`
}

// ParseAssessment decodes a schema-valid AI response into a normalized
// AIAssessment. Out-of-range scores are clamped and an unknown level
// string falls back to the default rather than failing: the payload is
// external input even after schema validation.
func ParseAssessment(raw json.RawMessage) (*AIAssessment, error) {
	var p aiPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return normalize(p), nil
}

// RepairAssessment produces a best-effort AIAssessment from malformed AI
// output. It first tries the leading balanced JSON block (models often
// wrap JSON in prose), then falls back to field-by-field regex extraction.
// Returns false when nothing recognizable was found; the caller then moves
// on to the local heuristic scorer. Pure function, unit-testable without
// any network behavior.
func RepairAssessment(raw string) (*AIAssessment, bool) {
	if block, ok := extractJSONBlock(raw); ok {
		var p aiPayload
		if err := json.Unmarshal([]byte(block), &p); err == nil {
			return normalize(p), true
		}
	}

	p, found := regexExtract(raw)
	if !found {
		return nil, false
	}
	return normalize(p), true
}

// extractJSONBlock returns the first balanced {...} block in s. The depth
// scan is string-literal aware so braces inside feedback text don't
// unbalance it.
func extractJSONBlock(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

var (
	overallRe = regexp.MustCompile(`"overall_score"\s*:\s*([0-9]+(?:\.[0-9]+)?)`)
	cefrRe    = regexp.MustCompile(`"cefr_level"\s*:\s*"([ABC][12])"`)
	skillRe   = regexp.MustCompile(`"(grammar|vocabulary|fluency|accuracy|relevance)"\s*:\s*([0-9]+(?:\.[0-9]+)?)`)
	approRe   = regexp.MustCompile(`"complexity_appropriateness"\s*:\s*"(appropriate|too_simple|too_complex)"`)
)

func regexExtract(raw string) (aiPayload, bool) {
	var p aiPayload
	found := false

	if m := overallRe.FindStringSubmatch(raw); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			p.OverallScore = &v
			found = true
		}
	}
	if m := cefrRe.FindStringSubmatch(raw); m != nil {
		p.CEFRLevel = m[1]
		found = true
	}
	for _, m := range skillRe.FindAllStringSubmatch(raw, -1) {
		v, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		found = true
		switch m[1] {
		case "grammar":
			p.SkillBreakdown.Grammar = &v
		case "vocabulary":
			p.SkillBreakdown.Vocabulary = &v
		case "fluency":
			p.SkillBreakdown.Fluency = &v
		case "accuracy":
			p.SkillBreakdown.Accuracy = &v
		case "relevance":
			p.SkillBreakdown.Relevance = &v
		}
	}
	if m := approRe.FindStringSubmatch(raw); m != nil {
		p.Appropriateness = m[1]
		found = true
	}

	return p, found
}

// normalize converts a raw payload into a trusted AIAssessment, filling
// defaults for missing fields and clamping everything into range.
func normalize(p aiPayload) *AIAssessment {
	a := &AIAssessment{
		Skills: SkillBreakdown{
			Grammar:    skillOrDefault(p.SkillBreakdown.Grammar),
			Vocabulary: skillOrDefault(p.SkillBreakdown.Vocabulary),
			Fluency:    skillOrDefault(p.SkillBreakdown.Fluency),
			Accuracy:   skillOrDefault(p.SkillBreakdown.Accuracy),
			Relevance:  skillOrDefault(p.SkillBreakdown.Relevance),
		},
		Feedback:      p.Feedback,
		ErrorExamples: p.ErrorExamples,
	}

	if l, err := level.ParseCEFR(p.CEFRLevel); err == nil {
		a.CEFRLevel = l
	} else {
		a.CEFRLevel = defaultCEFR
	}
	a.UnifiedLevel = a.CEFRLevel.Unified()

	if p.OverallScore != nil {
		a.OverallScore = clampScore(*p.OverallScore)
	} else {
		// No overall reported: use the mean of the recovered skills.
		a.OverallScore = clampScore((a.Skills.Grammar + a.Skills.Vocabulary +
			a.Skills.Fluency + a.Skills.Accuracy + a.Skills.Relevance) / 5)
	}

	switch Appropriateness(p.Appropriateness) {
	case Appropriate, TooSimple, TooComplex:
		a.Appropriateness = Appropriateness(p.Appropriateness)
	default:
		// The bonus only applies when the AI explicitly judged the text
		// appropriate, so an absent field must not default to it.
		a.Appropriateness = AppropriatenessUnknown
	}

	if p.FleschKincaid != nil {
		fk := *p.FleschKincaid
		if fk < 0 {
			fk = 0
		}
		a.FleschKincaid = &fk
	}

	return a
}

func skillOrDefault(v *float64) float64 {
	if v == nil {
		return defaultSkillScore
	}
	return clampScore(*v)
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

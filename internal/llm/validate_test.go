package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

var testSchema = &Schema{
	Name:        "test-assessment",
	Description: "test schema",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"overall_score": map[string]any{"type": "number"},
			"cefr_level":    map[string]any{"type": "string", "enum": []any{"A1", "A2", "B1", "B2", "C1", "C2"}},
		},
		"required": []any{"overall_score", "cefr_level"},
	},
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`not even json`)); err != nil {
		t.Errorf("nil schema should skip validation, got %v", err)
	}
}

func TestValidateResponse_Valid(t *testing.T) {
	raw := json.RawMessage(`{"overall_score": 72.5, "cefr_level": "B2"}`)
	if err := validateResponse(testSchema, raw); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateResponse_NotJSON(t *testing.T) {
	raw := json.RawMessage(`The learner did well! {"overall_score": 70}`)
	err := validateResponse(testSchema, raw)
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("error = %v, want ErrInvalidResponse", err)
	}
	if string(inv.Content) != string(raw) {
		t.Error("ErrInvalidResponse should carry the raw payload for repair")
	}
}

func TestValidateResponse_MissingRequiredField(t *testing.T) {
	raw := json.RawMessage(`{"overall_score": 70}`)
	err := validateResponse(testSchema, raw)
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("error = %v, want ErrInvalidResponse", err)
	}
}

func TestValidateResponse_BadEnumValue(t *testing.T) {
	raw := json.RawMessage(`{"overall_score": 70, "cefr_level": "Z9"}`)
	err := validateResponse(testSchema, raw)
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("error = %v, want ErrInvalidResponse", err)
	}
}

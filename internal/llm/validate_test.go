package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func questionSchema() *Schema {
	return &Schema{
		Name: "test-question",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"question":      map[string]any{"type": "string", "minLength": 1},
				"options":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"correctAnswer": map[string]any{"type": "string"},
				"points":        map[string]any{"type": "integer", "minimum": 0},
				"difficulty":    map[string]any{"type": "string", "enum": []any{"easy", "medium", "hard"}},
			},
			"required": []any{"question", "correctAnswer"},
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"question":"2+2?","options":["3","4"],"correctAnswer":"4","difficulty":"easy"}`, false},
		{"optional fields omitted", `{"question":"2+2?","correctAnswer":"4"}`, false},
		{"missing required", `{"question":"2+2?"}`, true},
		{"wrong type", `{"question":"2+2?","correctAnswer":"4","points":"ten"}`, true},
		{"bad enum", `{"question":"2+2?","correctAnswer":"4","difficulty":"brutal"}`, true},
		{"empty question", `{"question":"","correctAnswer":"4"}`, true},
		{"malformed", `{not json}`, true},
		{"empty", ``, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(questionSchema(), json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var inv *ErrInvalidResponse
				if !errors.As(err, &inv) {
					t.Fatalf("expected ErrInvalidResponse, got %T", err)
				}
			}
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`whatever`)); err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
}

func TestValidateValue_Decoded(t *testing.T) {
	var v any
	if err := json.Unmarshal([]byte(`{"question":"Capital of France?","correctAnswer":"Paris"}`), &v); err != nil {
		t.Fatal(err)
	}
	if err := ValidateValue(questionSchema(), v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateValue(questionSchema(), map[string]any{"question": "x"}); err == nil {
		t.Fatal("expected missing correctAnswer to fail")
	}
}

func TestFinish_TruncatedStructuredOutput(t *testing.T) {
	_, err := finish(Request{Schema: questionSchema()}, []byte(`{"question":"2+`), Usage{}, "m", "max_tokens")
	var mt *ErrMaxTokensExceeded
	if !errors.As(err, &mt) {
		t.Fatalf("expected ErrMaxTokensExceeded, got %T", err)
	}

	resp, err := finish(Request{}, []byte("free text"), Usage{}, "m", "max_tokens")
	if err != nil {
		t.Fatalf("text responses pass through: %v", err)
	}
	if resp.StopReason != "max_tokens" {
		t.Fatalf("stop reason = %q", resp.StopReason)
	}
}

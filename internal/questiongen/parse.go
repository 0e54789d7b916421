package questiongen

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tailscale/hujson"

	"github.com/abhisek/studyloop/internal/learning"
	"github.com/abhisek/studyloop/internal/llm"
)

// Tier names which parser produced a result.
type Tier string

const (
	TierStrict  Tier = "strict"
	TierRelaxed Tier = "relaxed"
)

// wireItem is one question as a well-formed source emits it.
type wireItem struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// ParseQuestions extracts and parses the question array in text, then
// normalizes every item. The result may contain questions that later
// validation rejects. It fails with *GenerationError when no array is found
// or when neither parsing tier can read it.
func ParseQuestions(text string, d learning.Difficulty) ([]learning.Question, Tier, error) {
	body := stripFences(text)

	if arr := extractArray(body); arr != "" {
		if items, err := parseStrict(arr); err == nil {
			return normalizeAll(items, d), TierStrict, nil
		}
	}

	// Typographic quotes can hide the array from the extractor as well as
	// break the decoder, so the relaxed tier re-extracts.
	arr := extractArray(normalizeQuotes(body))
	if arr == "" {
		return nil, "", &GenerationError{Stage: StageExtract, Err: errors.New("no JSON array in response")}
	}
	items, err := parseRelaxed(arr)
	if err != nil {
		return nil, "", &GenerationError{Stage: StageParse, Err: err}
	}
	return normalizeAll(items, d), TierRelaxed, nil
}

func parseStrict(arr string) ([]wireItem, error) {
	var generic any
	if err := json.Unmarshal([]byte(arr), &generic); err != nil {
		return nil, err
	}
	if err := llm.ValidateValue(questionListSchema, generic); err != nil {
		return nil, err
	}
	var items []wireItem
	if err := json.Unmarshal([]byte(arr), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func parseRelaxed(arr string) ([]wireItem, error) {
	std, err := hujson.Standardize([]byte(arr))
	if err != nil {
		return nil, fmt.Errorf("relaxed parse: %w", err)
	}
	var raw []any
	if err := json.Unmarshal(std, &raw); err != nil {
		return nil, fmt.Errorf("relaxed parse: %w", err)
	}

	items := make([]wireItem, 0, len(raw))
	for _, r := range raw {
		obj, ok := r.(map[string]any)
		if !ok {
			continue
		}
		items = append(items, wireItem{
			Question:      firstString(obj, "question", "questionText", "question_text", "text", "prompt"),
			Options:       optionList(firstValue(obj, "options", "choices", "answers")),
			CorrectAnswer: firstString(obj, "correctAnswer", "correct_answer", "answer", "correct"),
			Explanation:   firstString(obj, "explanation", "rationale", "reason"),
		})
	}
	return items, nil
}

func firstValue(obj map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func firstString(obj map[string]any, keys ...string) string {
	return scalarString(firstValue(obj, keys...))
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// optionList accepts ["x","y"], mixed scalars, or {"A":"x","B":"y"}.
func optionList(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			out = append(out, scalarString(e))
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]string, 0, len(keys))
		for _, k := range keys {
			out = append(out, scalarString(t[k]))
		}
		return out
	default:
		return nil
	}
}

func normalizeAll(items []wireItem, d learning.Difficulty) []learning.Question {
	out := make([]learning.Question, 0, len(items))
	for _, it := range items {
		options := make([]string, 0, len(it.Options))
		for _, o := range it.Options {
			options = append(options, strings.TrimSpace(o))
		}
		options = stripOptionLabels(options)

		correct := resolveAnswer(strings.TrimSpace(it.CorrectAnswer), options)
		out = append(out, learning.NewGeneratedQuestion(
			strings.TrimSpace(it.Question),
			options,
			correct,
			strings.TrimSpace(it.Explanation),
			d,
		))
	}
	return out
}

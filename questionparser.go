package studyquiz

import (
	"encoding/json"
	"fmt"
	"strings"
)

// requiredFields are the four fields every generated question must carry.
var requiredFields = []string{"question", "options", "correctAnswer", "explanation"}

// ParseQuestions parses raw model text into a validated question
// sequence. This is the only boundary allowed to reject model output;
// everything downstream assumes well-formed questions. Any schema
// violation returns a *MalformedOutputError. No repair, no retry.
func ParseQuestions(raw string) ([]CleanedQuestion, error) {
	trimmed := stripCodeFences(raw)

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &elements); err != nil {
		if json.Valid([]byte(trimmed)) {
			return nil, &MalformedOutputError{Reason: "top-level value is not an array"}
		}
		return nil, &MalformedOutputError{Reason: fmt.Sprintf("output is not valid JSON: %v", err)}
	}

	if len(elements) == 0 {
		return nil, &MalformedOutputError{Reason: "array contains no questions"}
	}

	questions := make([]CleanedQuestion, 0, len(elements))
	for i, element := range elements {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(element, &fields); err != nil {
			return nil, &MalformedOutputError{Reason: fmt.Sprintf("element %d is not an object", i)}
		}

		for _, name := range requiredFields {
			if _, ok := fields[name]; !ok {
				return nil, &MalformedOutputError{Reason: fmt.Sprintf("element %d is missing field %q", i, name)}
			}
		}

		var q CleanedQuestion
		if err := json.Unmarshal(element, &q); err != nil {
			return nil, &MalformedOutputError{Reason: fmt.Sprintf("element %d has a field of the wrong type: %v", i, err)}
		}

		if strings.TrimSpace(q.Question) == "" {
			return nil, &MalformedOutputError{Reason: fmt.Sprintf("element %d has an empty question", i)}
		}
		if len(q.Options) != 4 {
			return nil, &MalformedOutputError{Reason: fmt.Sprintf("element %d has %d options, want 4", i, len(q.Options))}
		}
		if !containsOption(q.Options, q.CorrectAnswer) {
			return nil, &MalformedOutputError{Reason: fmt.Sprintf("element %d correctAnswer is not among its options", i)}
		}

		questions = append(questions, q)
	}

	return questions, nil
}

// CheckRemediationRepeats rejects generated questions that repeat a
// remediation question verbatim. The prompt asks the model not to
// repeat them, but that is a request, not a guarantee.
func CheckRemediationRepeats(questions []CleanedQuestion, remediation []IncorrectQuestion) error {
	if len(remediation) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(remediation))
	for _, q := range remediation {
		seen[normalizeText(q.Question)] = struct{}{}
	}

	for i, q := range questions {
		if _, ok := seen[normalizeText(q.Question)]; ok {
			return &MalformedOutputError{Reason: fmt.Sprintf("element %d repeats a remediation question verbatim", i)}
		}
	}
	return nil
}

func containsOption(options []string, answer string) bool {
	for _, option := range options {
		if option == answer {
			return true
		}
	}
	return false
}

// normalizeText lowercases and collapses whitespace so trivial
// reformatting does not defeat the repeat check.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// stripCodeFences removes a surrounding markdown code fence. Models
// wrap JSON in fences often enough that rejecting for the fence alone
// would misclassify otherwise valid output.
func stripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		// Drop the language tag line ("json" or similar).
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

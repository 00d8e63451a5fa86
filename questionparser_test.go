package studyquiz

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rawQuestions builds a valid JSON array of n questions for tests.
func rawQuestions(n int, prefix string) string {
	questions := make([]CleanedQuestion, 0, n)
	for i := 0; i < n; i++ {
		questions = append(questions, CleanedQuestion{
			Question:      fmt.Sprintf("%s question %d?", prefix, i+1),
			Options:       []string{"alpha", "beta", "gamma", "delta"},
			CorrectAnswer: "beta",
			Explanation:   fmt.Sprintf("because of reason %d", i+1),
		})
	}
	data, err := json.Marshal(questions)
	if err != nil {
		panic(err)
	}
	return string(data)
}

func TestParseQuestions_Valid(t *testing.T) {
	questions, err := ParseQuestions(rawQuestions(15, "valid"))
	require.NoError(t, err)
	require.Len(t, questions, 15)

	assert.Equal(t, "valid question 1?", questions[0].Question)
	assert.Equal(t, []string{"alpha", "beta", "gamma", "delta"}, questions[0].Options)
	assert.Equal(t, "beta", questions[0].CorrectAnswer)
	assert.Equal(t, "because of reason 1", questions[0].Explanation)
}

func TestParseQuestions_FencedOutput(t *testing.T) {
	raw := "```json\n" + rawQuestions(3, "fenced") + "\n```"

	questions, err := ParseQuestions(raw)
	require.NoError(t, err)
	assert.Len(t, questions, 3)
}

func TestParseQuestions_Malformed(t *testing.T) {
	testCases := []struct {
		name   string
		raw    string
		reason string
	}{
		{
			name:   "not JSON",
			raw:    "Here are your questions! 1. What is...",
			reason: "not valid JSON",
		},
		{
			name:   "object instead of array",
			raw:    `{"questions": []}`,
			reason: "not an array",
		},
		{
			name:   "empty array",
			raw:    `[]`,
			reason: "no questions",
		},
		{
			name:   "element is not an object",
			raw:    `["just a string"]`,
			reason: "not an object",
		},
		{
			name:   "missing options",
			raw:    `[{"question": "Q?", "correctAnswer": "a", "explanation": "e"}]`,
			reason: `missing field "options"`,
		},
		{
			name:   "missing explanation",
			raw:    `[{"question": "Q?", "options": ["a","b","c","d"], "correctAnswer": "a"}]`,
			reason: `missing field "explanation"`,
		},
		{
			name:   "three options",
			raw:    `[{"question": "Q?", "options": ["a","b","c"], "correctAnswer": "a", "explanation": "e"}]`,
			reason: "3 options",
		},
		{
			name:   "five options",
			raw:    `[{"question": "Q?", "options": ["a","b","c","d","e"], "correctAnswer": "a", "explanation": "e"}]`,
			reason: "5 options",
		},
		{
			name:   "correctAnswer not among options",
			raw:    `[{"question": "Q?", "options": ["a","b","c","d"], "correctAnswer": "z", "explanation": "e"}]`,
			reason: "not among its options",
		},
		{
			name:   "wrong field type",
			raw:    `[{"question": "Q?", "options": "a,b,c,d", "correctAnswer": "a", "explanation": "e"}]`,
			reason: "wrong type",
		},
		{
			name:   "empty question text",
			raw:    `[{"question": "  ", "options": ["a","b","c","d"], "correctAnswer": "a", "explanation": "e"}]`,
			reason: "empty question",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			questions, err := ParseQuestions(tc.raw)
			require.Error(t, err)
			assert.Nil(t, questions)
			assert.True(t, IsMalformedOutput(err), "want MalformedOutputError, got %T", err)
			assert.Contains(t, err.Error(), tc.reason)
		})
	}
}

func TestParseQuestions_SecondElementBroken(t *testing.T) {
	raw := `[
		{"question": "Q1?", "options": ["a","b","c","d"], "correctAnswer": "a", "explanation": "e"},
		{"question": "Q2?", "options": ["a","b","c","d"], "correctAnswer": "nope", "explanation": "e"}
	]`

	_, err := ParseQuestions(raw)
	require.Error(t, err)
	assert.True(t, IsMalformedOutput(err))
	assert.Contains(t, err.Error(), "element 1")
}

func TestCheckRemediationRepeats(t *testing.T) {
	remediation := []IncorrectQuestion{
		{Question: "What is the derivative of 2x²?"},
		{Question: "What is the integral of 3x² dx?"},
	}

	fresh := []CleanedQuestion{
		{Question: "What is the derivative of 5x³?"},
		{Question: "What is the integral of 4x dx?"},
	}
	require.NoError(t, CheckRemediationRepeats(fresh, remediation))

	// Case and whitespace differences still count as a verbatim repeat.
	repeated := []CleanedQuestion{
		{Question: "What is the derivative of 5x³?"},
		{Question: "  what is the INTEGRAL of 3x²   dx?"},
	}
	err := CheckRemediationRepeats(repeated, remediation)
	require.Error(t, err)
	assert.True(t, IsMalformedOutput(err))
	assert.Contains(t, err.Error(), "element 1")
}

func TestCheckRemediationRepeats_NoRemediation(t *testing.T) {
	questions := []CleanedQuestion{{Question: "Anything goes here"}}
	assert.NoError(t, CheckRemediationRepeats(questions, nil))
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `[1]`, stripCodeFences("```json\n[1]\n```"))
	assert.Equal(t, `[1]`, stripCodeFences("```\n[1]\n```"))
	assert.Equal(t, `[1]`, stripCodeFences("  [1]  "))
	assert.False(t, strings.Contains(stripCodeFences("```json\n[1]\n```"), "`"))
}

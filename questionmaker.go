package studyquiz

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// questionsPerSession is the contract size of every generated quiz.
const questionsPerSession = 15

// Synthesizer produces raw model text expected to encode a JSON array
// of quiz questions. An empty string (with nil error) means the model
// returned no content.
type Synthesizer interface {
	Synthesize(ctx context.Context, req GenerationRequest) (string, error)
}

// QuestionMaker generates questions with a single chat-completion call.
// It never retries and never inspects the returned text; that is the
// parser's job. A single maker is safe for concurrent generations: all
// per-call state, including the transcript logger, travels on the
// request.
type QuestionMaker struct {
	client *openai.Client
	model  string
}

// NewQuestionMaker creates a new question maker with an OpenAI client.
func NewQuestionMaker(apiKey string) *QuestionMaker {
	return &QuestionMaker{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4o,
	}
}

// Synthesize issues one generation call and returns the raw text. When
// req.Context is nil the prompt falls back to remediation mode:
// variations of the supplied missed questions, still exactly 15, none
// repeated verbatim.
func (qm *QuestionMaker) Synthesize(ctx context.Context, req GenerationRequest) (string, error) {
	prompt := buildUserPrompt(req)

	if req.Logger != nil {
		req.Logger.LogRequest(prompt)
	}

	resp, err := qm.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:       qm.model,
			Temperature: 0.5,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemInstruction,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate questions: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}

	raw := resp.Choices[0].Message.Content

	if req.Logger != nil {
		req.Logger.LogResponse(raw)
	}

	VerboseLog("Synthesizer returned %d characters", len(raw))
	return raw, nil
}

// systemInstruction fixes the output contract: a bare JSON array, no
// prose, exactly 15 elements with the four required fields.
const systemInstruction = `You are a quiz generator for study material. Generate exactly 15 multiple choice quiz questions as a raw JSON array, without any extra text.

OUTPUT FORMAT: return only a valid JSON array, structured exactly like this:

[
  {
    "question": "<question_text>",
    "options": ["<option_1>", "<option_2>", "<option_3>", "<option_4>"],
    "correctAnswer": "<correct_option>",
    "explanation": "<explanation>"
  }
]

GUIDELINES:
- Ensure exactly 15 questions.
- Vary difficulty levels (easy, medium, hard).
- Include four answer options, with only one correct; correctAnswer must be copied verbatim from options.
- Provide an explanation of why the correct answer is right.
- Incorrect options should be plausible but clearly wrong.
- Avoid vague or ambiguous wording in questions.

STRICT RULES:
1. Do not include any introductory or explanatory text.
2. Do not wrap the array inside a JSON object - return the bare array.
3. No extra formatting, text, or comments - only pure JSON.`

func buildUserPrompt(req GenerationRequest) string {
	var sb strings.Builder

	if req.Context != nil && req.Context.Name != "" {
		sb.WriteString(fmt.Sprintf("Generate 15 quiz questions about: %s\n\n", req.Context.Name))
		if req.Context.Materials != "" {
			sb.WriteString("Use the following study material as reference:\n")
			sb.WriteString(req.Context.Materials)
			sb.WriteString("\n")
		}
		return sb.String()
	}

	// Remediation mode: no topic context, only previously missed
	// questions. The output must still be 15 questions regardless of
	// how many items are listed here.
	sb.WriteString("There is no topic for this request. Instead, generate 15 questions that are variations of the following previously missed questions. ")
	sb.WriteString("The 15 questions must test the same knowledge points with different values and wording. ")
	sb.WriteString("Do not repeat any of the listed questions verbatim.\n\n")
	sb.WriteString("Previously missed questions:\n")
	for i, q := range req.Remediation {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, q.Question))
		sb.WriteString(fmt.Sprintf("   Options: %s\n", strings.Join(q.Options, " | ")))
		sb.WriteString(fmt.Sprintf("   Correct: %s\n", q.CorrectAnswer))
		if q.Explanation != "" {
			sb.WriteString(fmt.Sprintf("   Explanation: %s\n", q.Explanation))
		}
	}

	return sb.String()
}

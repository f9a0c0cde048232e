package quizgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"quiztube/internal/domain"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"go.uber.org/zap"
)

const defaultModel = "gemini-2.5-flash"

// GeminiQuizGenerator implements domain.QuizGenerator over Gemini. The model
// output is parsed into a QuizSpec but NOT validated here; structural
// validation is the caller's responsibility.
type GeminiQuizGenerator struct {
	llm    llms.Model
	logger *zap.Logger
}

// NewGeminiQuizGenerator connects to Gemini with the given API key. A missing
// key is detected before any network call is attempted.
func NewGeminiQuizGenerator(ctx context.Context, apiKey, modelName string, logger *zap.Logger) (*GeminiQuizGenerator, error) {
	if apiKey == "" {
		return nil, domain.NewMissingCredentialError()
	}
	if modelName == "" {
		modelName = defaultModel
	}

	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(modelName),
	)
	if err != nil {
		return nil, domain.NewUpstreamUnavailableError(err)
	}

	return &GeminiQuizGenerator{llm: llm, logger: logger}, nil
}

// GenerateQuiz implements domain.QuizGenerator.
func (g *GeminiQuizGenerator) GenerateQuiz(ctx context.Context, transcript string) (*domain.QuizSpec, error) {
	prompt := buildQuizPrompt(transcript)

	response, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt,
		llms.WithJSONMode(),
		llms.WithTemperature(0.2),
	)
	if err != nil {
		g.logger.Error("Quiz generation request failed", zap.Error(err))
		return nil, domain.NewUpstreamUnavailableError(err)
	}

	spec, err := parseQuizResponse(response)
	if err != nil {
		return nil, err
	}

	g.logger.Info("Quiz candidate generated",
		zap.String("title", spec.Title),
		zap.Int("questions", len(spec.Questions)))
	return spec, nil
}

func buildQuizPrompt(transcript string) string {
	return fmt.Sprintf(`Generate a quiz JSON with exactly %d questions, each with %d options.
Fields: title, description, questions: [{question_title, question_options: [A, B, C, D], answer (one of the options)}].
Base the quiz ONLY on this transcript:

%s

Respond with JSON only, no prose.`, domain.RequiredQuestionCount, domain.RequiredOptionCount, transcript)
}

// parseQuizResponse turns raw model output into an unvalidated QuizSpec.
// Models sometimes wrap JSON in markdown code fences even when asked not to,
// so fences are stripped before decoding.
func parseQuizResponse(response string) (*domain.QuizSpec, error) {
	cleaned := strings.TrimSpace(response)
	if cleaned == "" {
		return nil, domain.NewEmptyResponseError()
	}

	cleaned = stripCodeFences(cleaned)

	var spec domain.QuizSpec
	if err := json.Unmarshal([]byte(cleaned), &spec); err != nil {
		return nil, domain.NewMalformedJSONError(err)
	}
	if spec.Questions == nil {
		return nil, domain.NewMalformedJSONError(fmt.Errorf("response has no questions field"))
	}
	return &spec, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

var _ domain.QuizGenerator = (*GeminiQuizGenerator)(nil)

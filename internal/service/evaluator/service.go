package evaluator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/yuhengc/prepmate/backend/internal/model/interview"
)

// TurnEvaluation is the parsed result of one turn-mode evaluator call.
type TurnEvaluation struct {
	NextQuestion string
	Scores       interview.TurnScores
	Notes        string
}

// Summary is the parsed result of one summarize-mode evaluator call.
type Summary struct {
	Summary        string
	Recommendation string
}

// Service evaluates interview turns and summarizes finished interviews
// through an LLM chain. Callers treat any returned error as a degraded
// turn and fall back to the deterministic question/report.
type Service struct {
	turnChain    compose.Runnable[map[string]any, *schema.Message]
	summaryChain compose.Runnable[map[string]any, *schema.Message]
	logger       *zap.Logger
}

// NewService compiles the turn and summary chains over the provided
// chat model.
func NewService(ctx context.Context, chatModel model.ChatModel, logger *zap.Logger) (*Service, error) {
	turnChain, err := compileChain(ctx, chatModel, turnSystemPrompt, turnUserPrompt)
	if err != nil {
		return nil, fmt.Errorf("compile turn chain: %w", err)
	}

	summaryChain, err := compileChain(ctx, chatModel, summarySystemPrompt, summaryUserPrompt)
	if err != nil {
		return nil, fmt.Errorf("compile summary chain: %w", err)
	}

	return &Service{
		turnChain:    turnChain,
		summaryChain: summaryChain,
		logger:       logger,
	}, nil
}

func compileChain(ctx context.Context, chatModel model.ChatModel, system, user string) (compose.Runnable[map[string]any, *schema.Message], error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(system),
		schema.UserMessage(user),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	return chain.Compile(ctx)
}

// EvaluateTurn scores the candidate's latest answer against the trailing
// transcript window and produces the next question.
func (s *Service) EvaluateTurn(ctx context.Context, window []interview.Turn, answer string) (*TurnEvaluation, error) {
	input := map[string]any{
		"history": formatTranscript(window),
		"answer":  strings.TrimSpace(answer),
	}

	msg, err := s.turnChain.Invoke(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("invoke turn chain: %w", err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return nil, fmt.Errorf("empty turn output")
	}

	payload, err := parseTurnOutput(msg.Content)
	if err != nil {
		s.logger.Warn("turn output unparseable",
			zap.Int("length", len(msg.Content)), zap.Error(err))
		return nil, err
	}

	return &TurnEvaluation{
		NextQuestion: strings.TrimSpace(payload.NextQuestion),
		Scores: interview.TurnScores{
			Communication: *payload.CommunicationScore,
			Confidence:    *payload.ConfidenceScore,
			Technical:     *payload.TechnicalScore,
			Grammar:       *payload.GrammarScore,
		}.Clamped(),
		Notes: strings.TrimSpace(payload.Notes),
	}, nil
}

// Summarize produces the overall narrative and recommendation for a
// finished interview.
func (s *Service) Summarize(ctx context.Context, aggregate interview.Aggregate, transcript []interview.Turn) (*Summary, error) {
	input := map[string]any{
		"transcript": formatTranscript(transcript),
		"scores":     formatScores(aggregate.Means()),
	}

	msg, err := s.summaryChain.Invoke(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("invoke summary chain: %w", err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return nil, fmt.Errorf("empty summary output")
	}

	payload, err := parseSummaryOutput(msg.Content)
	if err != nil {
		s.logger.Warn("summary output unparseable",
			zap.Int("length", len(msg.Content)), zap.Error(err))
		return nil, err
	}

	return &Summary{
		Summary:        strings.TrimSpace(payload.Summary),
		Recommendation: strings.TrimSpace(payload.Recommendation),
	}, nil
}

type turnPayload struct {
	NextQuestion       string `json:"nextQuestion"`
	CommunicationScore *int   `json:"communicationScore"`
	ConfidenceScore    *int   `json:"confidenceScore"`
	TechnicalScore     *int   `json:"technicalScore"`
	GrammarScore       *int   `json:"grammarScore"`
	Notes              string `json:"notes"`
}

type summaryPayload struct {
	Summary        string `json:"summary"`
	Recommendation string `json:"recommendation"`
}

func parseTurnOutput(content string) (*turnPayload, error) {
	payload := &turnPayload{}
	if err := unmarshalModelJSON(content, payload); err != nil {
		return nil, err
	}

	if payload.CommunicationScore == nil || payload.ConfidenceScore == nil ||
		payload.TechnicalScore == nil || payload.GrammarScore == nil {
		return nil, fmt.Errorf("missing score fields")
	}
	if strings.TrimSpace(payload.NextQuestion) == "" {
		return nil, fmt.Errorf("missing nextQuestion")
	}

	return payload, nil
}

func parseSummaryOutput(content string) (*summaryPayload, error) {
	payload := &summaryPayload{}
	if err := unmarshalModelJSON(content, payload); err != nil {
		return nil, err
	}

	if strings.TrimSpace(payload.Summary) == "" {
		return nil, fmt.Errorf("missing summary")
	}

	return payload, nil
}

// unmarshalModelJSON extracts the first JSON object from model output,
// which frequently arrives wrapped in code fences or commentary.
func unmarshalModelJSON(content string, target any) error {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return fmt.Errorf("missing json object")
	}

	return json.Unmarshal([]byte(trimmed[start:end+1]), target)
}

func formatTranscript(turns []interview.Turn) string {
	if len(turns) == 0 {
		return "(no conversation yet)"
	}

	var builder strings.Builder
	for i, turn := range turns {
		role := "Candidate"
		if turn.Role == interview.RoleInterviewer {
			role = "Interviewer"
		}
		text := strings.TrimSpace(turn.Text)
		if text == "" {
			text = "(no answer)"
		}
		builder.WriteString(role)
		builder.WriteString(": ")
		builder.WriteString(text)
		if i < len(turns)-1 {
			builder.WriteString("\n")
		}
	}
	return builder.String()
}

func formatScores(means interview.TurnScores) string {
	return fmt.Sprintf("communication=%d confidence=%d technical=%d grammar=%d overall=%d",
		means.Communication, means.Confidence, means.Technical, means.Grammar, means.Overall())
}

package interview

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yuhengc/prepmate/backend/internal/model/interview"
	"github.com/yuhengc/prepmate/backend/internal/service/evaluator"
)

var (
	ErrUnauthorized     = errors.New("session owner mismatch")
	ErrSessionCompleted = errors.New("session already completed")
	ErrReportNotReady   = errors.New("session not eligible for report")
)

// Evaluator is the external LLM collaborator. Implementations are
// expected to fail; every failure is handled as a degraded turn.
type Evaluator interface {
	EvaluateTurn(ctx context.Context, window []interview.Turn, answer string) (*evaluator.TurnEvaluation, error)
	Summarize(ctx context.Context, aggregate interview.Aggregate, transcript []interview.Turn) (*evaluator.Summary, error)
}

// Config holds the interview tunables.
type Config struct {
	// MaxTurns caps the number of question/answer exchanges per session.
	MaxTurns int
	// HistoryWindow bounds how many trailing transcript entries are sent
	// to the evaluator per turn.
	HistoryWindow int
	// EvaluatorTimeout bounds each evaluator call.
	EvaluatorTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxTurns <= 0 {
		c.MaxTurns = 8
	}
	if c.HistoryWindow <= 0 {
		c.HistoryWindow = 6
	}
	if c.EvaluatorTimeout <= 0 {
		c.EvaluatorTimeout = 8 * time.Second
	}
	return c
}

// TurnResult is what one completed turn hands back to the client.
type TurnResult struct {
	NextQuestion string
	IsFinal      bool
	Aggregate    interview.TurnScores
}

// Service drives one interview from start to finish: next question,
// score aggregation, and termination.
type Service struct {
	store  interview.Store
	eval   Evaluator
	cfg    Config
	logger *zap.Logger
}

// NewService wires the orchestrator over a session store and an evaluator.
func NewService(store interview.Store, eval Evaluator, cfg Config, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		eval:   eval,
		cfg:    cfg.withDefaults(),
		logger: logger,
	}
}

// MaxTurns exposes the configured interview length.
func (s *Service) MaxTurns() int {
	return s.cfg.MaxTurns
}

// CreateSession provisions a fresh session for the given owner.
func (s *Service) CreateSession(ctx context.Context, ownerID string) (interview.Session, error) {
	if ownerID == "" {
		return interview.Session{}, ErrUnauthorized
	}

	now := time.Now().UTC()
	session := interview.Session{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Status:    interview.StatusInProgress,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.Create(ctx, &session); err != nil {
		return interview.Session{}, err
	}
	return session, nil
}

// GetSession retrieves a session snapshot, scoped to its owner.
func (s *Service) GetSession(ctx context.Context, sessionID, ownerID string) (interview.Session, error) {
	return s.loadOwned(ctx, sessionID, ownerID)
}

// NextTurn produces the next interview question and folds the previous
// answer's evaluation into the running aggregate. Transcript and
// aggregate are persisted together in one conditional write; a version
// conflict or store failure leaves the session untouched and the whole
// turn must be retried.
func (s *Service) NextTurn(ctx context.Context, sessionID, ownerID, priorAnswer string) (*TurnResult, error) {
	session, err := s.loadOwned(ctx, sessionID, ownerID)
	if err != nil {
		return nil, err
	}
	if session.Completed() || session.TurnsCompleted >= s.cfg.MaxTurns {
		return nil, ErrSessionCompleted
	}

	// The opener never consults the evaluator.
	if len(session.Transcript) == 0 {
		session.Transcript = append(session.Transcript, interview.Turn{
			Role: interview.RoleInterviewer,
			Text: evaluator.IntroQuestion,
		})
		session.TurnsCompleted++

		if err := s.store.Update(ctx, &session); err != nil {
			return nil, err
		}
		return &TurnResult{
			NextQuestion: evaluator.IntroQuestion,
			IsFinal:      session.TurnsCompleted >= s.cfg.MaxTurns,
			Aggregate:    session.Aggregate.Means(),
		}, nil
	}

	window := session.TailWindow(s.cfg.HistoryWindow)
	evalCtx, cancel := context.WithTimeout(ctx, s.cfg.EvaluatorTimeout)
	evaluation, evalErr := s.eval.EvaluateTurn(evalCtx, window, priorAnswer)
	cancel()

	if evalErr != nil && ctx.Err() != nil {
		// Caller went away: discard any partial result, persist nothing.
		return nil, ctx.Err()
	}

	var nextQuestion string
	if evalErr != nil {
		// Degraded turn: deterministic question, aggregate untouched.
		nextQuestion = evaluator.FallbackQuestion(session.TurnsCompleted)
		s.logger.Warn("evaluator degraded, turn not scored",
			zap.String("session_id", session.ID),
			zap.Int("turn", session.TurnsCompleted+1),
			zap.Error(evalErr))
	} else {
		session.Aggregate.Apply(evaluation.Scores)
		nextQuestion = evaluation.NextQuestion
	}

	session.Transcript = append(session.Transcript, interview.Turn{
		Role: interview.RoleCandidate,
		Text: priorAnswer,
	})
	session.TurnsCompleted++

	isFinal := session.TurnsCompleted >= s.cfg.MaxTurns
	if isFinal {
		// No question is generated past the limit.
		nextQuestion = ""
	} else {
		session.Transcript = append(session.Transcript, interview.Turn{
			Role: interview.RoleInterviewer,
			Text: nextQuestion,
		})
	}

	if err := s.store.Update(ctx, &session); err != nil {
		return nil, err
	}

	return &TurnResult{
		NextQuestion: nextQuestion,
		IsFinal:      isFinal,
		Aggregate:    session.Aggregate.Means(),
	}, nil
}

// EndSession terminates an interview early at the candidate's request,
// making it eligible for a report regardless of turn count.
func (s *Service) EndSession(ctx context.Context, sessionID, ownerID string) (interview.Session, error) {
	session, err := s.loadOwned(ctx, sessionID, ownerID)
	if err != nil {
		return interview.Session{}, err
	}
	if session.Completed() {
		return session, nil
	}

	session.Status = interview.StatusCompleted
	if err := s.store.Update(ctx, &session); err != nil {
		return interview.Session{}, err
	}
	return session, nil
}

// FinalizeReport computes the final report for a terminal session. The
// summarize call is best-effort; on failure the report is derived purely
// from the running aggregate.
func (s *Service) FinalizeReport(ctx context.Context, sessionID, ownerID string) (interview.Report, error) {
	session, err := s.loadOwned(ctx, sessionID, ownerID)
	if err != nil {
		return interview.Report{}, err
	}

	if session.Completed() {
		if report, err := s.store.GetReport(ctx, sessionID); err == nil {
			return report, nil
		}
	} else if session.TurnsCompleted < s.cfg.MaxTurns {
		return interview.Report{}, ErrReportNotReady
	}

	sumCtx, cancel := context.WithTimeout(ctx, s.cfg.EvaluatorTimeout)
	summary, sumErr := s.eval.Summarize(sumCtx, session.Aggregate, session.Transcript)
	cancel()

	if sumErr != nil && ctx.Err() != nil {
		return interview.Report{}, ctx.Err()
	}

	var summaryText, recommendation string
	if sumErr != nil {
		summaryText, recommendation = evaluator.FallbackReport(session.Aggregate)
		s.logger.Warn("summarize degraded, using aggregate-only report",
			zap.String("session_id", session.ID), zap.Error(sumErr))
	} else {
		summaryText = summary.Summary
		recommendation = summary.Recommendation
		if recommendation == "" {
			_, recommendation = evaluator.FallbackReport(session.Aggregate)
		}
	}

	means := session.Aggregate.Means()
	report := interview.Report{
		SessionID:      session.ID,
		OverallScore:   means.Overall(),
		Dimensions:     means,
		Recommendation: recommendation,
		Summary:        summaryText,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.store.SaveReport(ctx, report); err != nil {
		return interview.Report{}, err
	}

	if !session.Completed() {
		session.Status = interview.StatusCompleted
		if err := s.store.Update(ctx, &session); err != nil {
			return interview.Report{}, err
		}
	}

	return report, nil
}

func (s *Service) loadOwned(ctx context.Context, sessionID, ownerID string) (interview.Session, error) {
	if ownerID == "" {
		return interview.Session{}, ErrUnauthorized
	}

	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return interview.Session{}, err
	}
	if session.OwnerID != ownerID {
		return interview.Session{}, ErrUnauthorized
	}
	return session, nil
}

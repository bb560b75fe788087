package evaluator

import (
	"context"
	"errors"

	"github.com/yuhengc/prepmate/backend/internal/model/interview"
)

// ErrDisabled is returned by Disabled for every call.
var ErrDisabled = errors.New("evaluator disabled")

// Disabled stands in when no model credentials are configured. Every
// call fails, so every turn takes the deterministic fallback path and
// the server stays usable for local development.
type Disabled struct{}

func (Disabled) EvaluateTurn(context.Context, []interview.Turn, string) (*TurnEvaluation, error) {
	return nil, ErrDisabled
}

func (Disabled) Summarize(context.Context, interview.Aggregate, []interview.Turn) (*Summary, error) {
	return nil, ErrDisabled
}

package interview

import (
	"math"
	"time"
)

// Transcript roles.
const (
	RoleCandidate   = "candidate"
	RoleInterviewer = "interviewer"
)

// Session statuses. Transitions only move forward.
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Turn is one transcript entry. Insertion order is significant.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// DimensionStat accumulates per-turn scores for one dimension.
type DimensionStat struct {
	Count int `json:"count"`
	Sum   int `json:"sum"`
}

// Mean returns the rounded running mean, or 0 before any scored turn.
func (d DimensionStat) Mean() int {
	if d.Count == 0 {
		return 0
	}
	return int(math.Round(float64(d.Sum) / float64(d.Count)))
}

// TurnScores is the per-turn score tuple returned by the evaluator.
type TurnScores struct {
	Communication int `json:"communication"`
	Confidence    int `json:"confidence"`
	Technical     int `json:"technical"`
	Grammar       int `json:"grammar"`
}

// Clamped bounds every score to [1,10] so a misbehaving evaluator
// cannot corrupt the aggregate.
func (t TurnScores) Clamped() TurnScores {
	return TurnScores{
		Communication: clampScore(t.Communication),
		Confidence:    clampScore(t.Confidence),
		Technical:     clampScore(t.Technical),
		Grammar:       clampScore(t.Grammar),
	}
}

func clampScore(v int) int {
	if v < 1 {
		return 1
	}
	if v > 10 {
		return 10
	}
	return v
}

// Aggregate is the running score state across all scored turns.
type Aggregate struct {
	Communication DimensionStat `json:"communication"`
	Confidence    DimensionStat `json:"confidence"`
	Technical     DimensionStat `json:"technical"`
	Grammar       DimensionStat `json:"grammar"`
}

// Apply folds one clamped score tuple into the aggregate.
func (a *Aggregate) Apply(scores TurnScores) {
	scores = scores.Clamped()
	a.Communication.Count++
	a.Communication.Sum += scores.Communication
	a.Confidence.Count++
	a.Confidence.Sum += scores.Confidence
	a.Technical.Count++
	a.Technical.Sum += scores.Technical
	a.Grammar.Count++
	a.Grammar.Sum += scores.Grammar
}

// Means derives the rounded running mean for each dimension.
func (a Aggregate) Means() TurnScores {
	return TurnScores{
		Communication: a.Communication.Mean(),
		Confidence:    a.Confidence.Mean(),
		Technical:     a.Technical.Mean(),
		Grammar:       a.Grammar.Mean(),
	}
}

// Overall returns the rounded mean of the four dimension means.
func (t TurnScores) Overall() int {
	sum := t.Communication + t.Confidence + t.Technical + t.Grammar
	return int(math.Round(float64(sum) / 4))
}

// Session represents one interview attempt.
type Session struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"ownerId"`
	Transcript     []Turn    `json:"transcript"`
	Aggregate      Aggregate `json:"aggregate"`
	TurnsCompleted int       `json:"turnsCompleted"`
	Status         string    `json:"status"`
	Version        int       `json:"version"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Completed reports whether the session reached its terminal status.
func (s Session) Completed() bool {
	return s.Status == StatusCompleted
}

// TailWindow returns up to n trailing transcript entries. The returned
// slice aliases the transcript and must not be mutated.
func (s Session) TailWindow(n int) []Turn {
	if n <= 0 || len(s.Transcript) <= n {
		return s.Transcript
	}
	return s.Transcript[len(s.Transcript)-n:]
}

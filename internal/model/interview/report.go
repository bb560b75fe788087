package interview

import "time"

// Report is the final scored summary of a completed session.
type Report struct {
	SessionID      string     `json:"sessionId"`
	OverallScore   int        `json:"overallScore"`
	Dimensions     TurnScores `json:"dimensions"`
	Recommendation string     `json:"recommendation"`
	Summary        string     `json:"summary"`
	CreatedAt      time.Time  `json:"createdAt"`
}

package evaluator

import (
	"fmt"
	"strings"

	"github.com/yuhengc/prepmate/backend/internal/model/interview"
)

// IntroQuestion opens every interview. The first turn never reaches the
// LLM, so the opener is fixed.
const IntroQuestion = "Tell me about yourself and walk me through your background."

// Recommendation strings used by the deterministic report.
const (
	RecommendationHire   = "Hire"
	RecommendationNoHire = "No hire"
)

// fallbackQuestions keep an interview moving when the evaluator is
// unavailable or returns garbage. Such turns are not scored.
var fallbackQuestions = []string{
	"What project are you most proud of, and what was your role in it?",
	"Describe a difficult technical problem you solved recently. How did you approach it?",
	"Tell me about a time you disagreed with a teammate. How was it resolved?",
	"What do you do when you receive requirements that are unclear or incomplete?",
	"How do you keep your skills current? Give a recent example.",
	"Where do you want to be in your career three years from now?",
}

// FallbackQuestion returns the deterministic question for the given
// completed-turn count.
func FallbackQuestion(turnsCompleted int) string {
	if turnsCompleted < 0 {
		turnsCompleted = 0
	}
	return fallbackQuestions[turnsCompleted%len(fallbackQuestions)]
}

// FallbackReport builds a report purely from the running aggregate, for
// when the summarize call fails. It is a pure function of the aggregate.
func FallbackReport(aggregate interview.Aggregate) (summary, recommendation string) {
	means := aggregate.Means()
	overall := means.Overall()

	recommendation = RecommendationNoHire
	if overall >= 6 {
		recommendation = RecommendationHire
	}

	if aggregate.Communication.Count == 0 {
		summary = "No answers were scored during this interview, so no per-dimension assessment is available. " +
			"Consider completing a full interview round for a meaningful evaluation."
		return summary, RecommendationNoHire
	}

	strongest, weakest := extremes(means)
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf(
		"The candidate scored %d/10 overall across %d scored answers "+
			"(communication %d, confidence %d, technical %d, grammar %d). ",
		overall, aggregate.Communication.Count,
		means.Communication, means.Confidence, means.Technical, means.Grammar))
	builder.WriteString(fmt.Sprintf("Strongest area: %s. ", strongest))
	builder.WriteString(fmt.Sprintf("Most room for improvement: %s. ", weakest))
	builder.WriteString("Focused practice on the weaker dimensions and more structured answers would raise the overall result.")

	return builder.String(), recommendation
}

// extremes picks the highest- and lowest-scoring dimensions, breaking
// ties by the fixed dimension order.
func extremes(means interview.TurnScores) (strongest, weakest string) {
	dims := []struct {
		name string
		mean int
	}{
		{"communication", means.Communication},
		{"confidence", means.Confidence},
		{"technical depth", means.Technical},
		{"grammar", means.Grammar},
	}

	strongest, weakest = dims[0].name, dims[0].name
	best, worst := dims[0].mean, dims[0].mean
	for _, dim := range dims[1:] {
		if dim.mean > best {
			best, strongest = dim.mean, dim.name
		}
		if dim.mean < worst {
			worst, weakest = dim.mean, dim.name
		}
	}
	return strongest, weakest
}

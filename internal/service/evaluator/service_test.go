package evaluator

import (
	"strings"
	"testing"

	"github.com/yuhengc/prepmate/backend/internal/model/interview"
)

func TestParseTurnOutputPlainJSON(t *testing.T) {
	content := `{"nextQuestion":"Why us?","communicationScore":8,"confidenceScore":7,"technicalScore":6,"grammarScore":9,"notes":"clear answer"}`

	payload, err := parseTurnOutput(content)
	if err != nil {
		t.Fatalf("parseTurnOutput err: %v", err)
	}
	if payload.NextQuestion != "Why us?" {
		t.Fatalf("nextQuestion: %q", payload.NextQuestion)
	}
	if *payload.CommunicationScore != 8 || *payload.GrammarScore != 9 {
		t.Fatalf("unexpected scores: %+v", payload)
	}
}

func TestParseTurnOutputCodeFenced(t *testing.T) {
	content := "Here is the evaluation:\n```json\n" +
		`{"nextQuestion":"Describe a failure.","communicationScore":5,"confidenceScore":5,"technicalScore":5,"grammarScore":5}` +
		"\n```\nLet me know if you need more."

	payload, err := parseTurnOutput(content)
	if err != nil {
		t.Fatalf("parseTurnOutput err: %v", err)
	}
	if payload.NextQuestion != "Describe a failure." {
		t.Fatalf("nextQuestion: %q", payload.NextQuestion)
	}
}

func TestParseTurnOutputRejectsMissingScores(t *testing.T) {
	content := `{"nextQuestion":"Why us?","communicationScore":8}`

	if _, err := parseTurnOutput(content); err == nil {
		t.Fatal("expected error for missing score fields")
	}
}

func TestParseTurnOutputRejectsMissingQuestion(t *testing.T) {
	content := `{"communicationScore":8,"confidenceScore":7,"technicalScore":6,"grammarScore":9}`

	if _, err := parseTurnOutput(content); err == nil {
		t.Fatal("expected error for missing nextQuestion")
	}
}

func TestParseTurnOutputRejectsNonJSON(t *testing.T) {
	if _, err := parseTurnOutput("I would rate this answer an 8 out of 10."); err == nil {
		t.Fatal("expected error for prose output")
	}
}

func TestParseSummaryOutput(t *testing.T) {
	content := "```json\n" + `{"summary":"Strong communicator.","recommendation":"Hire"}` + "\n```"

	payload, err := parseSummaryOutput(content)
	if err != nil {
		t.Fatalf("parseSummaryOutput err: %v", err)
	}
	if payload.Summary != "Strong communicator." || payload.Recommendation != "Hire" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestParseSummaryOutputRejectsEmptySummary(t *testing.T) {
	if _, err := parseSummaryOutput(`{"recommendation":"Hire"}`); err == nil {
		t.Fatal("expected error for missing summary")
	}
}

func TestFormatTranscript(t *testing.T) {
	got := formatTranscript([]interview.Turn{
		{Role: interview.RoleInterviewer, Text: "Tell me about yourself."},
		{Role: interview.RoleCandidate, Text: "I build backend services."},
		{Role: interview.RoleCandidate, Text: "   "},
	})

	if !strings.Contains(got, "Interviewer: Tell me about yourself.") {
		t.Fatalf("missing interviewer line: %q", got)
	}
	if !strings.Contains(got, "Candidate: I build backend services.") {
		t.Fatalf("missing candidate line: %q", got)
	}
	if !strings.Contains(got, "(no answer)") {
		t.Fatalf("blank answer not marked: %q", got)
	}

	if formatTranscript(nil) != "(no conversation yet)" {
		t.Fatal("empty transcript placeholder missing")
	}
}

func TestFallbackQuestionIsDeterministic(t *testing.T) {
	for turn := 0; turn < 20; turn++ {
		first := FallbackQuestion(turn)
		second := FallbackQuestion(turn)
		if first != second {
			t.Fatalf("fallback question not deterministic at turn %d", turn)
		}
		if first == "" {
			t.Fatalf("empty fallback question at turn %d", turn)
		}
	}

	if FallbackQuestion(0) == FallbackQuestion(1) {
		t.Fatal("consecutive fallback questions should differ")
	}
}

func TestFallbackReportFromAggregate(t *testing.T) {
	var agg interview.Aggregate
	agg.Apply(interview.TurnScores{Communication: 8, Confidence: 7, Technical: 6, Grammar: 9})

	summary, recommendation := FallbackReport(agg)
	if recommendation != RecommendationHire {
		t.Fatalf("recommendation: got %q want %q", recommendation, RecommendationHire)
	}
	if !strings.Contains(summary, "8/10 overall") {
		t.Fatalf("summary missing overall score: %q", summary)
	}
	if !strings.Contains(summary, "grammar") {
		t.Fatalf("summary missing strongest dimension: %q", summary)
	}

	// Same aggregate, same report.
	again, _ := FallbackReport(agg)
	if again != summary {
		t.Fatal("fallback report not deterministic")
	}
}

func TestFallbackReportLowScores(t *testing.T) {
	var agg interview.Aggregate
	agg.Apply(interview.TurnScores{Communication: 3, Confidence: 4, Technical: 2, Grammar: 5})

	_, recommendation := FallbackReport(agg)
	if recommendation != RecommendationNoHire {
		t.Fatalf("recommendation: got %q want %q", recommendation, RecommendationNoHire)
	}
}

func TestFallbackReportUnscoredInterview(t *testing.T) {
	summary, recommendation := FallbackReport(interview.Aggregate{})
	if recommendation != RecommendationNoHire {
		t.Fatalf("recommendation for unscored interview: %q", recommendation)
	}
	if !strings.Contains(summary, "No answers were scored") {
		t.Fatalf("unexpected unscored summary: %q", summary)
	}
}

package interview

import "testing"

func TestAggregateApplyAndMeans(t *testing.T) {
	var agg Aggregate

	agg.Apply(TurnScores{Communication: 8, Confidence: 7, Technical: 6, Grammar: 9})
	agg.Apply(TurnScores{Communication: 6, Confidence: 7, Technical: 6, Grammar: 9})

	means := agg.Means()
	if means.Communication != 7 {
		t.Fatalf("communication mean: got %d want 7", means.Communication)
	}
	if means.Confidence != 7 || means.Technical != 6 || means.Grammar != 9 {
		t.Fatalf("unexpected means: %+v", means)
	}
	if agg.Communication.Count != 2 {
		t.Fatalf("communication count: got %d want 2", agg.Communication.Count)
	}
}

func TestAggregateClampsOutOfRangeScores(t *testing.T) {
	var agg Aggregate

	agg.Apply(TurnScores{Communication: 0, Confidence: -3, Technical: 15, Grammar: 10})

	means := agg.Means()
	if means.Communication != 1 || means.Confidence != 1 {
		t.Fatalf("low scores not clamped to 1: %+v", means)
	}
	if means.Technical != 10 || means.Grammar != 10 {
		t.Fatalf("high scores not clamped to 10: %+v", means)
	}
}

func TestDimensionStatMeanRounds(t *testing.T) {
	stat := DimensionStat{Count: 2, Sum: 13}
	if got := stat.Mean(); got != 7 {
		t.Fatalf("mean of 13/2: got %d want 7", got)
	}

	stat = DimensionStat{Count: 3, Sum: 19}
	if got := stat.Mean(); got != 6 {
		t.Fatalf("mean of 19/3: got %d want 6", got)
	}
}

func TestDimensionStatMeanZeroCount(t *testing.T) {
	if got := (DimensionStat{}).Mean(); got != 0 {
		t.Fatalf("mean with no samples: got %d want 0", got)
	}
}

func TestOverallIsRoundedMeanOfMeans(t *testing.T) {
	means := TurnScores{Communication: 8, Confidence: 7, Technical: 6, Grammar: 9}
	if got := means.Overall(); got != 8 {
		t.Fatalf("overall: got %d want 8", got)
	}
}

func TestTailWindow(t *testing.T) {
	session := Session{Transcript: []Turn{
		{Role: RoleInterviewer, Text: "q1"},
		{Role: RoleCandidate, Text: "a1"},
		{Role: RoleInterviewer, Text: "q2"},
		{Role: RoleCandidate, Text: "a2"},
	}}

	window := session.TailWindow(2)
	if len(window) != 2 {
		t.Fatalf("window length: got %d want 2", len(window))
	}
	if window[0].Text != "q2" || window[1].Text != "a2" {
		t.Fatalf("unexpected window: %+v", window)
	}

	if got := session.TailWindow(10); len(got) != 4 {
		t.Fatalf("oversized window should return full transcript, got %d entries", len(got))
	}
}

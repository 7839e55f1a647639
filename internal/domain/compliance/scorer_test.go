package compliance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func fixedNow() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func TestGradeForScore(t *testing.T) {
	cases := []struct {
		score int64
		want  Grade
	}{
		{100, GradeA},
		{90, GradeA},
		{89, GradeB},
		{75, GradeB},
		{74, GradeC},
		{60, GradeC},
		{59, GradeD},
		{0, GradeD},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, GradeForScore(decimal.NewFromInt(c.score)))
	}
}

func TestComputeScore_CleanRecord(t *testing.T) {
	now := fixedNow()
	scorer := NewScorer()

	record := ContractorRecord{
		ContractorID: uuid.New(),
		Credentials: []Credential{
			{ID: uuid.New(), Name: "HVAC License", ExpiresAt: now.AddDate(1, 0, 0)},
		},
		JobsAssigned:   10,
		JobsCompleted:  10,
		UsagesTotal:    20,
		UsagesReversed: 0,
	}

	score := scorer.ComputeScore(record, now)

	assert.True(t, score.Value.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, GradeA, score.Grade)
	assert.Equal(t, now, score.ComputedAt)
}

func TestComputeScore_ExpiredCredential(t *testing.T) {
	now := fixedNow()
	scorer := NewScorer()

	record := ContractorRecord{
		ContractorID: uuid.New(),
		Credentials: []Credential{
			{ID: uuid.New(), Name: "Plumbing License", ExpiresAt: now.AddDate(0, -1, 0)},
		},
		JobsAssigned:  10,
		JobsCompleted: 10,
	}

	score := scorer.ComputeScore(record, now)

	// 0*0.4 + 100*0.4 + 100*0.2
	assert.True(t, score.Value.Equal(decimal.NewFromInt(60)), "got %s", score.Value)
	assert.Equal(t, GradeC, score.Grade)
}

func TestComputeScore_CredentialInsideWarningWindow(t *testing.T) {
	now := fixedNow()
	scorer := NewScorer()

	record := ContractorRecord{
		ContractorID: uuid.New(),
		Credentials: []Credential{
			// 15 of 30 days remaining: credential component scores 50
			{ID: uuid.New(), Name: "Electrical License", ExpiresAt: now.Add(15 * 24 * time.Hour)},
		},
		JobsAssigned:  4,
		JobsCompleted: 4,
	}

	score := scorer.ComputeScore(record, now)

	// 50*0.4 + 100*0.4 + 100*0.2
	assert.True(t, score.Value.Equal(decimal.NewFromInt(80)), "got %s", score.Value)
	assert.Equal(t, GradeB, score.Grade)
}

func TestComputeScore_NoCredentials(t *testing.T) {
	scorer := NewScorer()

	score := scorer.ComputeScore(ContractorRecord{ContractorID: uuid.New()}, fixedNow())

	// 0*0.4 + 100*0.4 + 100*0.2
	assert.True(t, score.Value.Equal(decimal.NewFromInt(60)), "got %s", score.Value)
}

func TestComputeScore_ReversalsDragAccuracy(t *testing.T) {
	now := fixedNow()
	scorer := NewScorer()

	record := ContractorRecord{
		ContractorID: uuid.New(),
		Credentials: []Credential{
			{ID: uuid.New(), Name: "HVAC License", ExpiresAt: now.AddDate(1, 0, 0)},
		},
		JobsAssigned:   10,
		JobsCompleted:  5,
		UsagesTotal:    10,
		UsagesReversed: 5,
	}

	score := scorer.ComputeScore(record, now)

	// 100*0.4 + 50*0.4 + 50*0.2
	assert.True(t, score.Value.Equal(decimal.NewFromInt(70)), "got %s", score.Value)
	assert.Equal(t, GradeC, score.Grade)
}

func TestComputeScore_ClampsOverCounts(t *testing.T) {
	now := fixedNow()
	scorer := NewScorer()

	record := ContractorRecord{
		ContractorID: uuid.New(),
		Credentials: []Credential{
			{ID: uuid.New(), Name: "HVAC License", ExpiresAt: now.AddDate(1, 0, 0)},
		},
		JobsAssigned:   2,
		JobsCompleted:  5,
		UsagesTotal:    2,
		UsagesReversed: 9,
	}

	score := scorer.ComputeScore(record, now)

	// completion clamps to 100, accuracy clamps to 0
	assert.True(t, score.CompletionScore.Equal(decimal.NewFromInt(100)))
	assert.True(t, score.AccuracyScore.Equal(decimal.Zero))
}

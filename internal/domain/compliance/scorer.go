package compliance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Grade is a letter band derived from a compliance score
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
)

// GradeForScore maps a 0-100 score to its letter band
func GradeForScore(score decimal.Decimal) Grade {
	switch {
	case score.GreaterThanOrEqual(decimal.NewFromInt(90)):
		return GradeA
	case score.GreaterThanOrEqual(decimal.NewFromInt(75)):
		return GradeB
	case score.GreaterThanOrEqual(decimal.NewFromInt(60)):
		return GradeC
	default:
		return GradeD
	}
}

// Credential is a license or certification held by a contractor
type Credential struct {
	ID        uuid.UUID
	Name      string
	ExpiresAt time.Time
}

// ContractorRecord is the input snapshot a score is computed from
type ContractorRecord struct {
	ContractorID   uuid.UUID
	Credentials    []Credential
	JobsAssigned   int
	JobsCompleted  int
	UsagesTotal    int
	UsagesReversed int
}

// Score is the result of one compliance evaluation
type Score struct {
	ContractorID uuid.UUID
	Value        decimal.Decimal
	Grade        Grade
	ComputedAt   time.Time

	CredentialScore decimal.Decimal
	CompletionScore decimal.Decimal
	AccuracyScore   decimal.Decimal
}

// Scoring weights; they sum to 1
var (
	weightCredentials = decimal.NewFromFloat(0.4)
	weightCompletion  = decimal.NewFromFloat(0.4)
	weightAccuracy    = decimal.NewFromFloat(0.2)
)

// credentialWarningWindow is how far ahead of expiry a credential starts
// losing points
const credentialWarningWindow = 30 * 24 * time.Hour

var hundred = decimal.NewFromInt(100)

// Scorer computes contractor compliance scores. It is pure: all time
// arithmetic uses the now passed by the caller.
type Scorer struct{}

// NewScorer creates a Scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// ComputeScore evaluates one contractor at the given instant. The score is a
// weighted blend of credential validity, job completion ratio, and material
// usage accuracy (fraction of usages that were not reversed).
func (s *Scorer) ComputeScore(record ContractorRecord, now time.Time) Score {
	credScore := s.credentialScore(record.Credentials, now)
	complScore := s.completionScore(record)
	accScore := s.accuracyScore(record)

	value := credScore.Mul(weightCredentials).
		Add(complScore.Mul(weightCompletion)).
		Add(accScore.Mul(weightAccuracy)).
		Round(2)

	return Score{
		ContractorID:    record.ContractorID,
		Value:           value,
		Grade:           GradeForScore(value),
		ComputedAt:      now,
		CredentialScore: credScore,
		CompletionScore: complScore,
		AccuracyScore:   accScore,
	}
}

// credentialScore averages per-credential scores. A valid credential outside
// the warning window scores 100, an expired one scores 0, and one inside the
// window decays linearly. No credentials at all scores 0.
func (s *Scorer) credentialScore(credentials []Credential, now time.Time) decimal.Decimal {
	if len(credentials) == 0 {
		return decimal.Zero
	}

	total := decimal.Zero
	for _, c := range credentials {
		remaining := c.ExpiresAt.Sub(now)
		switch {
		case remaining <= 0:
			// expired, contributes nothing
		case remaining >= credentialWarningWindow:
			total = total.Add(hundred)
		default:
			frac := decimal.NewFromInt(int64(remaining)).
				Div(decimal.NewFromInt(int64(credentialWarningWindow)))
			total = total.Add(hundred.Mul(frac))
		}
	}
	return total.Div(decimal.NewFromInt(int64(len(credentials)))).Round(2)
}

// completionScore is the completed/assigned ratio scaled to 100. A contractor
// with no assignments yet scores full marks rather than being penalized.
func (s *Scorer) completionScore(record ContractorRecord) decimal.Decimal {
	if record.JobsAssigned <= 0 {
		return hundred
	}
	completed := record.JobsCompleted
	if completed > record.JobsAssigned {
		completed = record.JobsAssigned
	}
	return decimal.NewFromInt(int64(completed)).
		Div(decimal.NewFromInt(int64(record.JobsAssigned))).
		Mul(hundred).Round(2)
}

// accuracyScore is the fraction of material usages that stood without
// reversal, scaled to 100. No usages yet scores full marks.
func (s *Scorer) accuracyScore(record ContractorRecord) decimal.Decimal {
	if record.UsagesTotal <= 0 {
		return hundred
	}
	reversed := record.UsagesReversed
	if reversed > record.UsagesTotal {
		reversed = record.UsagesTotal
	}
	kept := record.UsagesTotal - reversed
	return decimal.NewFromInt(int64(kept)).
		Div(decimal.NewFromInt(int64(record.UsagesTotal))).
		Mul(hundred).Round(2)
}

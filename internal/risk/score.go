// Package risk computes composite transfer risk scores and the derived
// regulatory-approval requirement. Scoring is a pure function of the
// assessment's sub-scores, its volume counters and the configured
// thresholds; it is idempotent and safe to re-run.
package risk

import (
	"time"

	"github.com/finvault/datafence/internal/configstore"
	"github.com/finvault/datafence/internal/model"
)

// Sub-score weights. Renormalized over the sub-scores actually present;
// an absent sub-score is skipped, never treated as zero.
const (
	weightLegalEnvironment = 0.30
	weightDataVolume       = 0.25
	weightSecurityMeasures = 0.25
	weightDataSensitivity  = 0.20
)

// Score computes the composite score, risk level, threshold flags and
// the regulatory-approval requirement, and moves the assessment to
// Completed. The input is not mutated.
func Score(a model.RiskAssessment, params *configstore.Params) model.RiskAssessment {
	var sum, totalWeight float64

	add := func(score *float64, weight float64) {
		if score != nil {
			sum += *score * weight
			totalWeight += weight
		}
	}
	add(a.LegalEnvironmentScore, weightLegalEnvironment)
	add(a.DataVolumeScore, weightDataVolume)
	add(a.SecurityMeasuresScore, weightSecurityMeasures)
	add(a.DataSensitivityScore, weightDataSensitivity)

	if totalWeight > 0 {
		overall := sum / totalWeight
		a.OverallScore = &overall
		a.Level = levelFor(overall, params)
	}

	applyThresholds(&a, params)

	a.RequiresRegulatoryApproval = a.ExceedsPersonalThreshold ||
		a.ExceedsSensitiveThreshold ||
		a.Level == model.RiskHigh || a.Level == model.RiskCritical

	now := time.Now().UTC()
	a.Status = model.AssessmentCompleted
	a.CompletedAt = &now

	return a
}

// levelFor maps a composite score to a risk level.
//
// NOTE: the mapping is inverted relative to intuitive naming. A HIGHER
// composite score means LOWER risk, because sub-scores rate favorable
// conditions (a strong legal environment scores high). Do not "fix"
// without a coordinated behavior change.
func levelFor(score float64, params *configstore.Params) model.RiskLevel {
	switch {
	case score >= params.RiskScoreHigh():
		return model.RiskLow
	case score >= params.RiskScoreMedium():
		return model.RiskMedium
	case score >= 40:
		return model.RiskHigh
	default:
		return model.RiskCritical
	}
}

// applyThresholds recomputes both volume flags. Thresholds are
// inclusive: a count equal to its threshold exceeds it.
//
// NOTE: a zero count leaves its flag untouched, so a flag set by an
// earlier run stays true when the counter later drops to 0. Do not
// "fix" without a coordinated behavior change.
func applyThresholds(a *model.RiskAssessment, params *configstore.Params) {
	if a.PersonalInfoCount > 0 {
		a.ExceedsPersonalThreshold = a.PersonalInfoCount >= params.PersonalInfoMax()
	}
	if a.SensitiveInfoCount > 0 {
		a.ExceedsSensitiveThreshold = a.SensitiveInfoCount >= params.SensitiveInfoMax()
	}
}

package risk

import (
	"fmt"

	"github.com/finvault/datafence/internal/configstore"
	"github.com/finvault/datafence/internal/model"
)

// Warning severity labels for threshold findings.
const (
	WarnMedium   = "medium"
	WarnHigh     = "high"
	WarnCritical = "critical"
)

// nearThresholdRatio is the fraction of a threshold at which an
// advisory fires before the threshold is crossed.
const nearThresholdRatio = 0.95

// Warning is one non-blocking threshold finding.
type Warning struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Level   string `json:"level"`
}

// ThresholdReport is the read-only outcome of a threshold check.
type ThresholdReport struct {
	AssessmentID              int64     `json:"assessment_id"`
	ExceedsPersonalThreshold  bool      `json:"exceeds_personal_threshold"`
	ExceedsSensitiveThreshold bool      `json:"exceeds_sensitive_threshold"`
	Warnings                  []Warning `json:"warnings"`
}

// CheckThresholds recomputes the two volume flags and reports
// near-threshold advisories: a counter within 5% of its threshold that
// has not yet crossed it warrants attention but blocks nothing.
func CheckThresholds(a model.RiskAssessment, params *configstore.Params) ThresholdReport {
	applyThresholds(&a, params)

	personalMax := params.PersonalInfoMax()
	sensitiveMax := params.SensitiveInfoMax()

	report := ThresholdReport{
		AssessmentID:              a.ID,
		ExceedsPersonalThreshold:  a.ExceedsPersonalThreshold,
		ExceedsSensitiveThreshold: a.ExceedsSensitiveThreshold,
	}

	if a.ExceedsPersonalThreshold {
		report.Warnings = append(report.Warnings, Warning{
			Type:    "个人信息阈值",
			Message: fmt.Sprintf("个人信息数量(%d)超过阈值(%d)", a.PersonalInfoCount, personalMax),
			Level:   WarnHigh,
		})
	}
	if a.ExceedsSensitiveThreshold {
		report.Warnings = append(report.Warnings, Warning{
			Type:    "敏感信息阈值",
			Message: fmt.Sprintf("敏感个人信息数量(%d)超过阈值(%d)", a.SensitiveInfoCount, sensitiveMax),
			Level:   WarnCritical,
		})
	}

	if a.PersonalInfoCount > 0 && !a.ExceedsPersonalThreshold &&
		float64(a.PersonalInfoCount) >= float64(personalMax)*nearThresholdRatio {
		report.Warnings = append(report.Warnings, Warning{
			Type:    "个人信息阈值预警",
			Message: fmt.Sprintf("个人信息数量(%d)接近阈值，建议关注", a.PersonalInfoCount),
			Level:   WarnMedium,
		})
	}
	if a.SensitiveInfoCount > 0 && !a.ExceedsSensitiveThreshold &&
		float64(a.SensitiveInfoCount) >= float64(sensitiveMax)*nearThresholdRatio {
		report.Warnings = append(report.Warnings, Warning{
			Type:    "敏感信息阈值预警",
			Message: fmt.Sprintf("敏感个人信息数量(%d)接近阈值，建议关注", a.SensitiveInfoCount),
			Level:   WarnMedium,
		})
	}

	return report
}

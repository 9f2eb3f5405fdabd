package model

import "time"

// SensitivityLevel classifies how restricted a data asset is for
// cross-border movement.
type SensitivityLevel string

const (
	LevelCore      SensitivityLevel = "core"
	LevelImportant SensitivityLevel = "important"
	LevelSensitive SensitivityLevel = "sensitive"
	LevelPersonal  SensitivityLevel = "personal"
	LevelInternal  SensitivityLevel = "internal"
	LevelPublic    SensitivityLevel = "public"
)

// LevelRank maps sensitivity levels to comparable integers.
// Higher rank means more restrictive. Core data never crosses the border.
var LevelRank = map[SensitivityLevel]int{
	LevelPublic:    0,
	LevelInternal:  1,
	LevelPersonal:  2,
	LevelSensitive: 3,
	LevelImportant: 4,
	LevelCore:      5,
}

// LevelNames is the single display-name table for sensitivity levels.
// All user-facing surfaces read from here; no per-consumer copies.
var LevelNames = map[SensitivityLevel]string{
	LevelCore:      "核心数据",
	LevelImportant: "重要数据",
	LevelSensitive: "敏感个人信息",
	LevelPersonal:  "个人信息",
	LevelInternal:  "内部数据",
	LevelPublic:    "公开数据",
}

// ParseLevel maps a string to a SensitivityLevel. Unknown input yields
// Internal, the catalog default.
func ParseLevel(s string) SensitivityLevel {
	switch SensitivityLevel(s) {
	case LevelCore, LevelImportant, LevelSensitive, LevelPersonal, LevelInternal, LevelPublic:
		return SensitivityLevel(s)
	default:
		return LevelInternal
	}
}

// DataAsset is one entry in the asset catalog: a table, view, interface
// or file that may be named in a transfer request.
type DataAsset struct {
	ID               int64            `json:"id"`
	Code             string           `json:"code"`
	Name             string           `json:"name"`
	AssetType        string           `json:"asset_type"`
	SourceSystem     string           `json:"source_system"`
	SchemaName       string           `json:"schema_name"`
	TableName        string           `json:"table_name"`
	Level            SensitivityLevel `json:"level"`
	ClassificationID int64            `json:"classification_id,omitempty"`
	FieldCount       int              `json:"field_count"`
	RecordCount      int64            `json:"record_count"`
	Active           bool             `json:"active"`
	LastScanAt       *time.Time       `json:"last_scan_at,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// ApprovalStatus is the state of a transfer approval record.
type ApprovalStatus string

const (
	ApprovalPending   ApprovalStatus = "pending"
	ApprovalApproved  ApprovalStatus = "approved"
	ApprovalRejected  ApprovalStatus = "rejected"
	ApprovalCancelled ApprovalStatus = "cancelled"
)

// ApprovalRecord is one transfer approval request. The gate reads only
// Status and AssetIDs; everything else belongs to the approval workflow.
type ApprovalRecord struct {
	ID             int64          `json:"id"`
	ScenarioID     int64          `json:"scenario_id"`
	Status         ApprovalStatus `json:"status"`
	AssetIDs       []int64        `json:"asset_ids"`
	ApplicantID    int64          `json:"applicant_id"`
	ApproverID     int64          `json:"approver_id,omitempty"`
	Comment        string         `json:"comment,omitempty"`
	RejectedReason string         `json:"rejected_reason,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	ApprovedAt     *time.Time     `json:"approved_at,omitempty"`
	ResolvedAt     *time.Time     `json:"resolved_at,omitempty"`
}

// RiskLevel is the discrete outcome of risk scoring.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// RiskLevelNames is the single display-name table for risk levels.
var RiskLevelNames = map[RiskLevel]string{
	RiskLow:      "低风险",
	RiskMedium:   "中风险",
	RiskHigh:     "高风险",
	RiskCritical: "极高风险",
}

// AssessmentStatus is the lifecycle state of a risk assessment.
type AssessmentStatus string

const (
	AssessmentDraft      AssessmentStatus = "draft"
	AssessmentInProgress AssessmentStatus = "in_progress"
	AssessmentCompleted  AssessmentStatus = "completed"
	AssessmentArchived   AssessmentStatus = "archived"
)

// RiskAssessment is a PIA-style assessment of one transfer scenario.
// Sub-scores are pointers: absent means not yet assessed, and absent
// sub-scores are skipped by scoring rather than treated as zero.
type RiskAssessment struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Code       string `json:"code"`
	ScenarioID int64  `json:"scenario_id"`

	LegalEnvironmentScore *float64 `json:"legal_environment_score,omitempty"`
	DataVolumeScore       *float64 `json:"data_volume_score,omitempty"`
	SecurityMeasuresScore *float64 `json:"security_measures_score,omitempty"`
	DataSensitivityScore  *float64 `json:"data_sensitivity_score,omitempty"`

	PersonalInfoCount  int64 `json:"personal_info_count"`
	SensitiveInfoCount int64 `json:"sensitive_info_count"`

	ExceedsPersonalThreshold  bool `json:"exceeds_personal_threshold"`
	ExceedsSensitiveThreshold bool `json:"exceeds_sensitive_threshold"`

	OverallScore               *float64  `json:"overall_score,omitempty"`
	Level                      RiskLevel `json:"level,omitempty"`
	RequiresRegulatoryApproval bool      `json:"requires_regulatory_approval"`

	Status      AssessmentStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

// Decision is the outcome of one transfer check. Every outcome is a
// value; the gate never raises.
type Decision struct {
	Allowed       bool           `json:"allowed"`
	Intercepted   bool           `json:"intercepted"`
	Reason        string         `json:"reason,omitempty"`
	MaskedPayload map[string]any `json:"desensitized_data,omitempty"`
}

// Package classify assigns sensitivity levels to data assets by matching
// their display names against ordered rule tiers. Deterministic pattern
// matching, no ML.
package classify

import (
	"regexp"
	"strings"

	"github.com/finvault/datafence/internal/model"
)

// coreKeywords short-circuit to LevelCore. These tokens signal
// national-security-grade data; no further tier is consulted.
var coreKeywords = []string{"核心", "core", "国家安全"}

// importantPatterns promote to LevelImportant: credit exposure totals,
// cross-border settlement volumes, key clients, actual controllers.
var importantPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)信贷总量|风险暴露|NON_REL_EXPOSURE`),
	regexp.MustCompile(`(?i)跨境支付|清算规模`),
	regexp.MustCompile(`(?i)重点行业|关键客户`),
	regexp.MustCompile(`(?i)实际控制人|ACTUAL_CONTROLLER`),
}

// sensitivePatterns promote to LevelSensitive, but only from the
// Internal default; an Important match is never downgraded.
var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)身份证|ID_NO|IDNO|IDCARD`),
	regexp.MustCompile(`(?i)手机号|MOB_NO|MOBILE`),
	regexp.MustCompile(`(?i)银行卡|CARD_NO|ACCT_NO`),
	regexp.MustCompile(`(?i)客户名称|CUST_NM|CUSTOMER_NAME`),
}

// personalPatterns promote to LevelPersonal from Internal only.
var personalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)客户|CUST`),
	regexp.MustCompile(`(?i)个人信息|PERSONAL`),
}

// Result is the classification outcome for one asset.
// ClassificationID is 0 when the engine has no taxonomy binding.
type Result struct {
	Level            model.SensitivityLevel
	ClassificationID int64
}

// Classify evaluates the asset's display name against the ordered rule
// tiers, first match wins. An asset matching nothing keeps LevelInternal.
// The engine never assigns LevelPublic; that level is set manually.
func Classify(asset model.DataAsset) Result {
	result := Result{Level: model.LevelInternal}
	name := asset.Name

	lower := strings.ToLower(name)
	for _, kw := range coreKeywords {
		if strings.Contains(lower, kw) {
			result.Level = model.LevelCore
			return result
		}
	}

	for _, re := range importantPatterns {
		if re.MatchString(name) {
			result.Level = model.LevelImportant
			break
		}
	}

	for _, re := range sensitivePatterns {
		if re.MatchString(name) {
			if result.Level == model.LevelInternal {
				result.Level = model.LevelSensitive
			}
			break
		}
	}

	if result.Level == model.LevelInternal {
		for _, re := range personalPatterns {
			if re.MatchString(name) {
				result.Level = model.LevelPersonal
				break
			}
		}
	}

	return result
}

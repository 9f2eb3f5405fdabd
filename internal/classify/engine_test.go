package classify

import (
	"testing"

	"github.com/finvault/datafence/internal/model"
)

func classifyName(name string) model.SensitivityLevel {
	return Classify(model.DataAsset{Name: name}).Level
}

func TestCoreKeywordShortCircuits(t *testing.T) {
	// Core wins even when Important and Sensitive patterns also match.
	cases := []string{
		"核心客户信贷总量表",
		"CORE_SETTLEMENT_ID_NO",
		"国家安全相关数据",
	}
	for _, name := range cases {
		if got := classifyName(name); got != model.LevelCore {
			t.Errorf("Classify(%q) = %s, want core", name, got)
		}
	}
}

func TestImportantPatterns(t *testing.T) {
	cases := []string{
		"NON_REL_EXPOSURE_MONTHLY",
		"跨境支付清算规模统计",
		"重点行业授信汇总",
		"actual_controller_mapping",
	}
	for _, name := range cases {
		if got := classifyName(name); got != model.LevelImportant {
			t.Errorf("Classify(%q) = %s, want important", name, got)
		}
	}
}

func TestImportantNotDowngradedBySensitiveMatch(t *testing.T) {
	// Matches both the important and the sensitive tier; important sticks.
	name := "实际控制人身份证登记表"
	if got := classifyName(name); got != model.LevelImportant {
		t.Errorf("Classify(%q) = %s, want important", name, got)
	}
}

func TestSensitivePatterns(t *testing.T) {
	cases := []string{
		"CUST_ID_NO",
		"mob_no_backup",
		"银行卡号对照表",
		"CUSTOMER_NAME_SNAPSHOT",
	}
	for _, name := range cases {
		if got := classifyName(name); got != model.LevelSensitive {
			t.Errorf("Classify(%q) = %s, want sensitive", name, got)
		}
	}
}

func TestPersonalPatterns(t *testing.T) {
	if got := classifyName("个人信息登记"); got != model.LevelPersonal {
		t.Errorf("got %s, want personal", got)
	}
	// CUST alone (without a sensitive field token) is general PII.
	if got := classifyName("CUST_PROFILE"); got != model.LevelPersonal {
		t.Errorf("got %s, want personal", got)
	}
}

func TestNoMatchKeepsInternal(t *testing.T) {
	cases := []string{"branch_calendar", "SYS_PARAM_TABLE", ""}
	for _, name := range cases {
		if got := classifyName(name); got != model.LevelInternal {
			t.Errorf("Classify(%q) = %s, want internal", name, got)
		}
	}
}

func TestMatchingIsCaseInsensitive(t *testing.T) {
	if got := classifyName("Idno_List"); got != model.LevelSensitive {
		t.Errorf("got %s, want sensitive", got)
	}
	if got := classifyName("CoRe_data"); got != model.LevelCore {
		t.Errorf("got %s, want core", got)
	}
}

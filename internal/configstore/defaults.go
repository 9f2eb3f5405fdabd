package configstore

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config categories.
const (
	CategoryThreshold = "threshold"
	CategoryMasking   = "desensitization"
	CategoryGate      = "gate"
)

// Defaults returns the compiled-in configuration set. These are the
// values the engines fall back to when the store cannot answer, so the
// seeded registry and the fallbacks never disagree on a fresh install.
func Defaults() []Entry {
	return []Entry{
		{Key: KeyPersonalInfoMax, Name: "个人信息数量阈值", Value: "1000000", Type: TypeInt, Category: CategoryThreshold, Editable: true},
		{Key: KeySensitiveInfoMax, Name: "敏感个人信息数量阈值", Value: "100000", Type: TypeInt, Category: CategoryThreshold, Editable: true},
		{Key: KeyRiskScoreHigh, Name: "高风险评分阈值", Value: "70", Type: TypeInt, Category: CategoryThreshold, Editable: true},
		{Key: KeyRiskScoreMedium, Name: "中风险评分阈值", Value: "40", Type: TypeInt, Category: CategoryThreshold, Editable: true},

		{Key: KeyMaskEnabled, Name: "脱敏功能开关", Value: "true", Type: TypeBool, Category: CategoryMasking, Editable: true},
		{Key: KeyMaskIDCard, Name: "身份证脱敏规则", Value: `{"keep_start":3,"keep_end":4,"mask_char":"*"}`, Type: TypeJSON, Category: CategoryMasking, Editable: true},
		{Key: KeyMaskPhone, Name: "手机号脱敏规则", Value: `{"keep_start":3,"keep_end":4,"mask_char":"*"}`, Type: TypeJSON, Category: CategoryMasking, Editable: true},
		{Key: KeyMaskBankCard, Name: "银行卡脱敏规则", Value: `{"keep_end":4,"mask_char":"*"}`, Type: TypeJSON, Category: CategoryMasking, Editable: true},
		{Key: KeyMaskEmail, Name: "邮箱脱敏规则", Value: `{"keep_start":2,"keep_end":1,"mask_char":"*"}`, Type: TypeJSON, Category: CategoryMasking, Editable: true},
		{Key: KeyMaskFallback, Name: "默认脱敏规则", Value: `{"keep_start":2,"keep_end":2,"mask_char":"*"}`, Type: TypeJSON, Category: CategoryMasking, Editable: true},
		{Key: KeyPseudonymName, Name: "姓名假名化规则", Value: `{"algorithm":"sha256","prefix":"UID_","length":8}`, Type: TypeJSON, Category: CategoryMasking, Editable: true},

		{Key: KeyGateBlacklist, Name: "拦截黑名单资产", Value: "[]", Type: TypeJSON, Category: CategoryGate, Editable: true},
	}
}

// Seed inserts every default entry that is not already present.
// Existing entries are never overwritten; Seed is safe to run at every
// startup.
func Seed(s Store) error {
	for _, e := range Defaults() {
		if _, ok := s.Get(e.Key); ok {
			continue
		}
		if err := s.Set(e); err != nil {
			return fmt.Errorf("configstore: seed %q: %w", e.Key, err)
		}
	}
	return nil
}

// overrideFile is the YAML shape of a policy override file: a flat map
// from config key to value. Values keep the declared type of the entry
// they override; unknown keys become string entries.
type overrideFile struct {
	Overrides map[string]string `yaml:"overrides"`
}

// ApplyOverrides loads a YAML override file and writes its values into
// the store. A missing file is not an error; invalid YAML is.
func ApplyOverrides(s Store, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("configstore: read overrides: %w", err)
	}

	var f overrideFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("configstore: parse overrides: %w", err)
	}

	for key, value := range f.Overrides {
		e, ok := s.Get(key)
		if !ok {
			e = Entry{Key: key, Type: TypeString, Editable: true}
		}
		e.Value = value
		if err := s.Set(e); err != nil {
			return fmt.Errorf("configstore: apply override %q: %w", key, err)
		}
	}
	return nil
}

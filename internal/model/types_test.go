package model

import "testing"

func TestLevelRankOrdering(t *testing.T) {
	order := []SensitivityLevel{
		LevelPublic, LevelInternal, LevelPersonal,
		LevelSensitive, LevelImportant, LevelCore,
	}
	for i := 1; i < len(order); i++ {
		if LevelRank[order[i]] <= LevelRank[order[i-1]] {
			t.Errorf("expected %s to rank above %s", order[i], order[i-1])
		}
	}
}

func TestParseLevelUnknownDefaultsInternal(t *testing.T) {
	if got := ParseLevel("nonsense"); got != LevelInternal {
		t.Errorf("expected internal for unknown input, got %s", got)
	}
	if got := ParseLevel("core"); got != LevelCore {
		t.Errorf("expected core, got %s", got)
	}
}

func TestDisplayNameTablesComplete(t *testing.T) {
	for lvl := range LevelRank {
		if LevelNames[lvl] == "" {
			t.Errorf("missing display name for level %s", lvl)
		}
	}
	for _, rl := range []RiskLevel{RiskLow, RiskMedium, RiskHigh, RiskCritical} {
		if RiskLevelNames[rl] == "" {
			t.Errorf("missing display name for risk level %s", rl)
		}
	}
}

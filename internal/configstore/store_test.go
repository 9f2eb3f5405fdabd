package configstore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTypedGettersFallBackToDefault(t *testing.T) {
	s := NewMemStore()

	if got := GetInt(s, "missing.key", 42); got != 42 {
		t.Errorf("expected default 42 for missing key, got %d", got)
	}

	s.Set(Entry{Key: "bad.int", Value: "not-a-number", Type: TypeInt})
	if got := GetInt(s, "bad.int", 7); got != 7 {
		t.Errorf("expected default 7 for unparseable int, got %d", got)
	}

	s.Set(Entry{Key: "bad.json", Value: "{truncated", Type: TypeJSON})
	var out map[string]any
	if GetJSON(s, "bad.json", &out) {
		t.Error("expected GetJSON to report failure for invalid JSON")
	}

	s.Set(Entry{Key: "bad.bool", Value: "maybe", Type: TypeBool})
	if got := GetBool(s, "bad.bool", true); got != true {
		t.Error("expected default true for unparseable bool")
	}
}

func TestTypedGettersParse(t *testing.T) {
	s := NewMemStore()
	s.Set(Entry{Key: "t.int", Value: "100000", Type: TypeInt})
	s.Set(Entry{Key: "t.float", Value: "70.5", Type: TypeFloat})
	s.Set(Entry{Key: "t.bool", Value: "yes", Type: TypeBool})
	s.Set(Entry{Key: "t.json", Value: `[1,2,3]`, Type: TypeJSON})

	if got := GetInt64(s, "t.int", 0); got != 100000 {
		t.Errorf("GetInt64 = %d, want 100000", got)
	}
	if got := GetFloat(s, "t.float", 0); got != 70.5 {
		t.Errorf("GetFloat = %v, want 70.5", got)
	}
	if !GetBool(s, "t.bool", false) {
		t.Error("expected yes to parse as true")
	}
	var ids []int64
	if !GetJSON(s, "t.json", &ids) || len(ids) != 3 {
		t.Errorf("GetJSON = %v, want [1 2 3]", ids)
	}
}

func TestSeedDoesNotOverwrite(t *testing.T) {
	s := NewMemStore()
	s.Set(Entry{Key: KeyRiskScoreHigh, Value: "80", Type: TypeInt})

	if err := Seed(s); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if got := GetInt(s, KeyRiskScoreHigh, 0); got != 80 {
		t.Errorf("seed overwrote existing entry: got %d, want 80", got)
	}
	if _, ok := s.Get(KeyPersonalInfoMax); !ok {
		t.Error("seed did not insert missing default")
	}
}

func TestApplyOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	content := "overrides:\n  threshold.risk_score.high: \"75\"\n  custom.flag: \"on\"\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	s := NewMemStore()
	if err := Seed(s); err != nil {
		t.Fatal(err)
	}
	if err := ApplyOverrides(s, path); err != nil {
		t.Fatalf("apply overrides: %v", err)
	}

	if got := GetInt(s, KeyRiskScoreHigh, 0); got != 75 {
		t.Errorf("override not applied: got %d, want 75", got)
	}
	// Existing entry keeps its declared type.
	e, _ := s.Get(KeyRiskScoreHigh)
	if e.Type != TypeInt {
		t.Errorf("override changed entry type to %s", e.Type)
	}
	// Unknown keys land as string entries.
	if !GetBool(s, "custom.flag", false) {
		t.Error("new override key not readable")
	}
}

func TestApplyOverridesMissingFile(t *testing.T) {
	s := NewMemStore()
	if err := ApplyOverrides(s, filepath.Join(t.TempDir(), "absent.yaml")); err != nil {
		t.Errorf("missing override file should not error, got %v", err)
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	if err := Seed(s); err != nil {
		t.Fatalf("seed: %v", err)
	}

	e, ok := s.Get(KeySensitiveInfoMax)
	if !ok {
		t.Fatal("seeded key missing")
	}
	if e.Value != "100000" || e.Type != TypeInt {
		t.Errorf("unexpected entry %+v", e)
	}

	e.Value = "200000"
	if err := s.Set(e); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := GetInt64(s, KeySensitiveInfoMax, 0); got != 200000 {
		t.Errorf("updated value = %d, want 200000", got)
	}

	entries, err := s.List(CategoryThreshold)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 4 {
		t.Errorf("threshold category has %d entries, want 4", len(entries))
	}

	if err := s.Delete(KeySensitiveInfoMax); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := s.Get(KeySensitiveInfoMax); ok {
		t.Error("entry survived delete")
	}
}

func TestParamsDefaults(t *testing.T) {
	p := NewParams(NewMemStore())

	if p.PersonalInfoMax() != 1_000_000 {
		t.Errorf("PersonalInfoMax = %d", p.PersonalInfoMax())
	}
	if p.SensitiveInfoMax() != 100_000 {
		t.Errorf("SensitiveInfoMax = %d", p.SensitiveInfoMax())
	}
	if p.RiskScoreHigh() != 70 || p.RiskScoreMedium() != 40 {
		t.Error("risk score thresholds wrong")
	}
	if !p.MaskingEnabled() {
		t.Error("masking should default to enabled")
	}
	r := p.IDCardRule()
	if r.KeepStart != 3 || r.KeepEnd != 4 || r.MaskChar != "*" {
		t.Errorf("IDCardRule = %+v", r)
	}
	n := p.NameRule()
	if n.Prefix != "UID_" || n.Length != 8 || n.Algorithm != "sha256" {
		t.Errorf("NameRule = %+v", n)
	}
	if ids := p.BlacklistAssetIDs(); ids != nil {
		t.Errorf("BlacklistAssetIDs = %v, want nil", ids)
	}
}

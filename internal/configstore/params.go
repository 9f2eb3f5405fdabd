package configstore

// Params is the typed parameter surface the engines read. Every getter
// carries its compiled-in default; a broken or missing entry is never an
// error.
type Params struct {
	store Store
}

// NewParams wraps a store.
func NewParams(s Store) *Params {
	return &Params{store: s}
}

// PersonalInfoMax is the personal-information record count threshold.
func (p *Params) PersonalInfoMax() int64 {
	return GetInt64(p.store, KeyPersonalInfoMax, 1_000_000)
}

// SensitiveInfoMax is the sensitive-personal-information count threshold.
func (p *Params) SensitiveInfoMax() int64 {
	return GetInt64(p.store, KeySensitiveInfoMax, 100_000)
}

// RiskScoreHigh is the composite-score boundary above which a scenario
// rates as low risk.
func (p *Params) RiskScoreHigh() float64 {
	return GetFloat(p.store, KeyRiskScoreHigh, 70)
}

// RiskScoreMedium is the composite-score boundary above which a scenario
// rates as medium risk.
func (p *Params) RiskScoreMedium() float64 {
	return GetFloat(p.store, KeyRiskScoreMedium, 40)
}

// MaskingEnabled reports whether desensitization runs at all.
func (p *Params) MaskingEnabled() bool {
	return GetBool(p.store, KeyMaskEnabled, true)
}

// MaskRule holds the parameters for one keep/mask transform.
type MaskRule struct {
	KeepStart int    `json:"keep_start"`
	KeepEnd   int    `json:"keep_end"`
	MaskChar  string `json:"mask_char"`
}

// PseudonymRule holds the parameters for deterministic pseudonymization.
type PseudonymRule struct {
	Algorithm string `json:"algorithm"`
	Prefix    string `json:"prefix"`
	Length    int    `json:"length"`
}

func (p *Params) maskRule(key string, def MaskRule) MaskRule {
	r := def
	if !GetJSON(p.store, key, &r) {
		return def
	}
	if r.MaskChar == "" {
		r.MaskChar = def.MaskChar
	}
	return r
}

// IDCardRule returns the identity-number masking parameters.
func (p *Params) IDCardRule() MaskRule {
	return p.maskRule(KeyMaskIDCard, MaskRule{KeepStart: 3, KeepEnd: 4, MaskChar: "*"})
}

// PhoneRule returns the phone-number masking parameters.
func (p *Params) PhoneRule() MaskRule {
	return p.maskRule(KeyMaskPhone, MaskRule{KeepStart: 3, KeepEnd: 4, MaskChar: "*"})
}

// BankCardRule returns the bank-card masking parameters.
func (p *Params) BankCardRule() MaskRule {
	return p.maskRule(KeyMaskBankCard, MaskRule{KeepEnd: 4, MaskChar: "*"})
}

// EmailRule returns the email local-part masking parameters.
func (p *Params) EmailRule() MaskRule {
	return p.maskRule(KeyMaskEmail, MaskRule{KeepStart: 2, KeepEnd: 1, MaskChar: "*"})
}

// FallbackRule returns the generic masking parameters for sensitive
// fields without a dedicated transform.
func (p *Params) FallbackRule() MaskRule {
	return p.maskRule(KeyMaskFallback, MaskRule{KeepStart: 2, KeepEnd: 2, MaskChar: "*"})
}

// NameRule returns the pseudonymization parameters for personal names.
func (p *Params) NameRule() PseudonymRule {
	def := PseudonymRule{Algorithm: "sha256", Prefix: "UID_", Length: 8}
	r := def
	if !GetJSON(p.store, KeyPseudonymName, &r) {
		return def
	}
	if r.Prefix == "" {
		r.Prefix = def.Prefix
	}
	if r.Length <= 0 {
		r.Length = def.Length
	}
	return r
}

// BlacklistAssetIDs returns the persisted gate blacklist.
func (p *Params) BlacklistAssetIDs() []int64 {
	var ids []int64
	if !GetJSON(p.store, KeyGateBlacklist, &ids) {
		return nil
	}
	return ids
}

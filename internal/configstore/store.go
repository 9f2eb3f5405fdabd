// Package configstore is the policy parameter registry: a typed key/value
// store supplying thresholds, masking rule parameters and feature switches
// to the engines. Reads never fail; any lookup or parse problem yields
// the caller's default.
package configstore

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Type declares how an entry's stored value is interpreted.
type Type string

const (
	TypeString Type = "string"
	TypeInt    Type = "integer"
	TypeFloat  Type = "float"
	TypeBool   Type = "boolean"
	TypeJSON   Type = "json"
)

// Well-known configuration keys.
const (
	KeyPersonalInfoMax  = "threshold.personal_info.max"
	KeySensitiveInfoMax = "threshold.sensitive_info.max"
	KeyRiskScoreHigh    = "threshold.risk_score.high"
	KeyRiskScoreMedium  = "threshold.risk_score.medium"

	KeyMaskEnabled   = "desensitization.enabled"
	KeyMaskIDCard    = "desensitization.mask.id_card"
	KeyMaskPhone     = "desensitization.mask.phone"
	KeyMaskBankCard  = "desensitization.mask.bank_card"
	KeyMaskEmail     = "desensitization.mask.email"
	KeyMaskFallback  = "desensitization.mask.default"
	KeyPseudonymName = "desensitization.pseudonymize.name"

	KeyGateBlacklist = "gate.blacklist"
)

// Entry is one configuration record.
type Entry struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Value    string `json:"value"`
	Type     Type   `json:"type"`
	Category string `json:"category"`
	Editable bool   `json:"editable"`
}

// Store is the read/write contract the engines and durability hooks use.
// Implementations must be safe for concurrent use.
type Store interface {
	Get(key string) (Entry, bool)
	Set(e Entry) error
	Delete(key string) error
	List(category string) ([]Entry, error)
}

// GetString returns the string value for key, or def when absent.
func GetString(s Store, key, def string) string {
	e, ok := s.Get(key)
	if !ok {
		return def
	}
	return e.Value
}

// GetInt returns the integer value for key, or def on absence or parse failure.
func GetInt(s Store, key string, def int) int {
	e, ok := s.Get(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(e.Value))
	if err != nil {
		return def
	}
	return n
}

// GetInt64 returns the int64 value for key, or def on absence or parse failure.
func GetInt64(s Store, key string, def int64) int64 {
	e, ok := s.Get(key)
	if !ok {
		return def
	}
	n, err := strconv.ParseInt(strings.TrimSpace(e.Value), 10, 64)
	if err != nil {
		return def
	}
	return n
}

// GetFloat returns the float value for key, or def on absence or parse failure.
func GetFloat(s Store, key string, def float64) float64 {
	e, ok := s.Get(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(e.Value), 64)
	if err != nil {
		return def
	}
	return f
}

// GetBool returns the boolean value for key, or def when absent.
// Accepted truthy forms: true, 1, yes, on (case-insensitive).
func GetBool(s Store, key string, def bool) bool {
	e, ok := s.Get(key)
	if !ok {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(e.Value)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return def
	}
}

// GetJSON unmarshals the value for key into out. Returns false (leaving
// out untouched beyond partial decode) on absence or invalid JSON; the
// caller keeps its defaults in that case.
func GetJSON(s Store, key string, out any) bool {
	e, ok := s.Get(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(e.Value), out); err != nil {
		return false
	}
	return true
}

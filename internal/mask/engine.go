// Package mask is the desensitization engine: it walks a payload tree
// and rewrites sensitive leaf fields so the payload can cross the border
// in a usable but de-identified form. Masking is format-preserving, not
// cryptographic anonymization; malformed input degrades to a full mask,
// never an error.
package mask

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/finvault/datafence/internal/configstore"
)

// Engine applies per-field-type masking transforms. Rule parameters are
// resolved from the policy store once per call, so a rule set is
// immutable during a single desensitization pass.
type Engine struct {
	params *configstore.Params
}

// New creates an engine reading rule parameters from params.
func New(params *configstore.Params) *Engine {
	return &Engine{params: params}
}

// ruleSet is the frozen rule snapshot for one pass.
type ruleSet struct {
	idCard    configstore.MaskRule
	phone     configstore.MaskRule
	bankCard  configstore.MaskRule
	email     configstore.MaskRule
	fallback  configstore.MaskRule
	pseudonym configstore.PseudonymRule
}

func (e *Engine) snapshot() ruleSet {
	return ruleSet{
		idCard:    e.params.IDCardRule(),
		phone:     e.params.PhoneRule(),
		bankCard:  e.params.BankCardRule(),
		email:     e.params.EmailRule(),
		fallback:  e.params.FallbackRule(),
		pseudonym: e.params.NameRule(),
	}
}

// Desensitize returns a masked copy of the payload. When the global
// enable switch is off, the payload is returned unmodified. assetIDs is
// the transfer's asset context, carried through the walk for rule
// resolution.
func (e *Engine) Desensitize(data map[string]any, assetIDs []int64) map[string]any {
	if data == nil {
		return nil
	}
	if !e.params.MaskingEnabled() {
		return data
	}
	rules := e.snapshot()
	return walkMap(data, assetIDs, rules)
}

func walkMap(data map[string]any, assetIDs []int64, rules ruleSet) map[string]any {
	out := make(map[string]any, len(data))

	for key, value := range data {
		if value == nil {
			out[key] = nil
			continue
		}

		// Field-name detection wins over structure: a matched field is
		// masked even when its value is nested.
		if ft, ok := DetectField(key); ok {
			out[key] = apply(ft, stringify(value), rules)
			continue
		}

		switch v := value.(type) {
		case map[string]any:
			out[key] = walkMap(v, assetIDs, rules)
		case []any:
			items := make([]any, len(v))
			for i, item := range v {
				if m, ok := item.(map[string]any); ok {
					items[i] = walkMap(m, assetIDs, rules)
				} else {
					items[i] = item
				}
			}
			out[key] = items
		default:
			out[key] = value
		}
	}

	return out
}

// stringify renders a leaf value for masking. JSON decoding delivers
// numerics as float64, which %v would print in scientific notation for
// anything phone-number sized, so floats are formatted as plain digits.
func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

// apply runs the transform for one field type over a raw value.
func apply(ft FieldType, value string, rules ruleSet) string {
	switch ft {
	case FieldIdentity:
		return maskKeepEnds(value, rules.idCard)
	case FieldPhone:
		return maskPhone(value, rules.phone)
	case FieldBankCard:
		return maskBankCard(value, rules.bankCard)
	case FieldName:
		return Pseudonymize(value, rules.pseudonym)
	case FieldEmail:
		return maskEmail(value, rules.email)
	default:
		return maskFallback(value, rules.fallback)
	}
}

// maskKeepEnds keeps the first KeepStart and last KeepEnd characters and
// masks the middle. Too-short input masks entirely.
func maskKeepEnds(value string, r configstore.MaskRule) string {
	runes := []rune(value)
	if len(runes) >= r.KeepStart+r.KeepEnd {
		middle := strings.Repeat(r.MaskChar, len(runes)-r.KeepStart-r.KeepEnd)
		return string(runes[:r.KeepStart]) + middle + string(runes[len(runes)-r.KeepEnd:])
	}
	return strings.Repeat(r.MaskChar, len(runes))
}

// maskPhone keeps the ends with a fixed four-character mask in between.
func maskPhone(value string, r configstore.MaskRule) string {
	runes := []rune(value)
	if len(runes) >= r.KeepStart+r.KeepEnd {
		return string(runes[:r.KeepStart]) + strings.Repeat(r.MaskChar, 4) + string(runes[len(runes)-r.KeepEnd:])
	}
	return strings.Repeat(r.MaskChar, 4)
}

// maskBankCard keeps only the last KeepEnd characters.
func maskBankCard(value string, r configstore.MaskRule) string {
	runes := []rune(value)
	if len(runes) >= r.KeepEnd {
		return strings.Repeat(r.MaskChar, 4) + string(runes[len(runes)-r.KeepEnd:])
	}
	return strings.Repeat(r.MaskChar, 4)
}

// maskEmail masks the local part, keeping its first KeepStart and last
// KeepEnd characters; the domain stays readable. Local parts too short
// to mask meaningfully collapse to a fixed placeholder.
func maskEmail(value string, r configstore.MaskRule) string {
	if local, domain, ok := strings.Cut(value, "@"); ok {
		runes := []rune(local)
		if len(runes) >= r.KeepStart+r.KeepEnd {
			middle := strings.Repeat(r.MaskChar, len(runes)-r.KeepStart-r.KeepEnd)
			return string(runes[:r.KeepStart]) + middle + string(runes[len(runes)-r.KeepEnd:]) + "@" + domain
		}
	}
	return "***@***"
}

// maskFallback is the generic transform for sensitive fields without a
// dedicated rule: keep two characters at each end, mask the middle.
func maskFallback(value string, r configstore.MaskRule) string {
	runes := []rune(value)
	if len(runes) > r.KeepStart+r.KeepEnd {
		middle := strings.Repeat(r.MaskChar, len(runes)-r.KeepStart-r.KeepEnd)
		return string(runes[:r.KeepStart]) + middle + string(runes[len(runes)-r.KeepEnd:])
	}
	return strings.Repeat(r.MaskChar, len(runes))
}

// Pseudonymize replaces a value with a stable synthetic identifier:
// a one-way hash prefix under a fixed tag. Identical inputs always yield
// identical pseudonyms; recovering the original requires the source
// value mapping, which this engine never keeps.
func Pseudonymize(value string, r configstore.PseudonymRule) string {
	sum := sha256.Sum256([]byte(value))
	digest := hex.EncodeToString(sum[:])
	if r.Length > 0 && r.Length < len(digest) {
		digest = digest[:r.Length]
	}
	return r.Prefix + digest
}

package mask

import "regexp"

// FieldType identifies which transform applies to a matched field.
type FieldType string

const (
	FieldIdentity FieldType = "id_card"
	FieldPhone    FieldType = "phone"
	FieldBankCard FieldType = "bank_card"
	FieldName     FieldType = "name"
	FieldEmail    FieldType = "email"
	FieldGeneric  FieldType = "default"
)

// detector matches a field name to a field type.
type detector struct {
	Type    FieldType
	Pattern *regexp.Regexp
}

// detectors are evaluated in order; first match wins. They match field
// NAMES, not values, covering both CJK labels and the field codes used
// by the source banking schemas.
var detectors = []detector{
	{FieldIdentity, regexp.MustCompile(`(?i)ID_NO|IDNO|身份证|IDCARD`)},
	{FieldPhone, regexp.MustCompile(`(?i)MOB_NO|MOBILE|手机|PHONE`)},
	{FieldBankCard, regexp.MustCompile(`(?i)CARD_NO|ACCT_NO|银行卡|ACCOUNT`)},
	{FieldName, regexp.MustCompile(`(?i)CUST_NM|CUSTOMER_NAME|姓名|NAME`)},
	{FieldEmail, regexp.MustCompile(`(?i)EMAIL|邮箱`)},
}

// DetectField returns the field type for a field name, or false when the
// name matches no detector.
func DetectField(name string) (FieldType, bool) {
	for _, d := range detectors {
		if d.Pattern.MatchString(name) {
			return d.Type, true
		}
	}
	return "", false
}

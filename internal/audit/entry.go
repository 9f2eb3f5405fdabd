package audit

// Decision outcomes recorded in audit entries.
const (
	DecisionAllow     = "allow"
	DecisionIntercept = "intercept"
)

// Entry is one line in the hash-chained JSONL audit log: a single
// transfer decision. All fields are scalars or slices (no map[string]any)
// to guarantee deterministic json.Marshal field order for reproducible
// hashing.
type Entry struct {
	Timestamp    string  `json:"ts"`
	RequestID    string  `json:"request_id"`
	ApprovalID   int64   `json:"approval_id"`
	AssetIDs     []int64 `json:"asset_ids,omitempty"`
	Decision     string  `json:"decision"`
	Reason       string  `json:"reason,omitempty"`
	MaskedFields int     `json:"masked_fields,omitempty"`
	PrevHash     string  `json:"prev_hash"`
}

package audit

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestFormatTimelineHeaderAndSummary(t *testing.T) {
	path := writeTestLog(t)
	result, err := Replay(path, ReplayFilter{ApprovalID: 100})
	if err != nil {
		t.Fatal(err)
	}

	out := FormatTimeline(result)

	if !strings.Contains(out, "Audit: approval 100") {
		t.Error("expected header to contain approval id")
	}
	if !strings.Contains(out, "Summary:") {
		t.Error("expected summary line")
	}
	if !strings.Contains(out, "2 allow") {
		t.Errorf("expected '2 allow' in summary, got:\n%s", out)
	}
	if !strings.Contains(out, "2 intercept") {
		t.Errorf("expected '2 intercept' in summary, got:\n%s", out)
	}
	if !strings.Contains(out, "8 fields masked") {
		t.Errorf("expected masked field total in summary, got:\n%s", out)
	}
}

func TestFormatTimelineEntryColumns(t *testing.T) {
	path := writeTestLog(t)
	result, err := Replay(path, ReplayFilter{ApprovalID: 100})
	if err != nil {
		t.Fatal(err)
	}

	out := FormatTimeline(result)

	if !strings.Contains(out, "ALLOW") {
		t.Error("expected ALLOW decision")
	}
	if !strings.Contains(out, "INTERCEPT") {
		t.Error("expected INTERCEPT decision")
	}
	if !strings.Contains(out, "approval=100") {
		t.Error("expected approval column")
	}
	if !strings.Contains(out, "assets=1,2") {
		t.Error("expected asset id list")
	}
	if !strings.Contains(out, "asset blacklisted") {
		t.Error("expected interception reason")
	}
	if !strings.Contains(out, "3 fields masked") {
		t.Error("expected masked field detail on allowed entry")
	}
}

func TestFormatJSONValid(t *testing.T) {
	path := writeTestLog(t)
	result, err := Replay(path, ReplayFilter{ApprovalID: 100})
	if err != nil {
		t.Fatal(err)
	}

	jsonStr, err := FormatJSON(result)
	if err != nil {
		t.Fatal(err)
	}

	// Should unmarshal back to a ReplayResult
	var parsed ReplayResult
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		t.Fatalf("JSON output not valid: %v", err)
	}
	if parsed.ApprovalID != 100 {
		t.Errorf("expected approval id 100, got %d", parsed.ApprovalID)
	}
	if len(parsed.Entries) != 4 {
		t.Errorf("expected 4 entries in JSON, got %d", len(parsed.Entries))
	}
	if parsed.Summary.Total != 4 {
		t.Errorf("expected total 4 in JSON summary, got %d", parsed.Summary.Total)
	}
}

func TestFormatTimelineEmptyEntries(t *testing.T) {
	result := &ReplayResult{
		ApprovalID: 7,
	}

	out := FormatTimeline(result)
	if !strings.Contains(out, "No entries found") {
		t.Errorf("expected 'No entries found' message, got:\n%s", out)
	}
}

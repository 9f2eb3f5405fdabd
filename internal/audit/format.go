package audit

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const separator = "──────────────────────────────────────────────────────────────────"

// FormatTimeline renders a ReplayResult as a human-readable text timeline.
func FormatTimeline(result *ReplayResult) string {
	scope := "all approvals"
	if result.ApprovalID != 0 {
		scope = fmt.Sprintf("approval %d", result.ApprovalID)
	}
	if len(result.Entries) == 0 {
		return fmt.Sprintf("Audit: %s | No entries found.\n", scope)
	}

	var b strings.Builder

	// Header
	firstTime := formatDateRange(result.Summary.FirstTimestamp)
	lastTime := formatTimeOnly(result.Summary.LastTimestamp)
	b.WriteString(fmt.Sprintf("Audit: %s | %s–%s UTC\n", scope, firstTime, lastTime))
	b.WriteString(separator + "\n")

	// Entries
	for _, e := range result.Entries {
		ts := formatTimeOnly(e.Timestamp)
		decision := strings.ToUpper(e.Decision)
		assets := truncate(formatAssetIDs(e.AssetIDs), 24)

		detail := e.Reason
		if e.Decision == DecisionAllow && e.MaskedFields > 0 {
			detail = fmt.Sprintf("%d fields masked", e.MaskedFields)
		}

		b.WriteString(fmt.Sprintf("%-10s %-10s approval=%-8d %-24s %s\n",
			ts, decision, e.ApprovalID, assets, truncate(detail, 40)))
	}

	// Footer
	b.WriteString(separator + "\n")
	b.WriteString(formatSummary(result.Summary))

	return b.String()
}

// FormatJSON renders a ReplayResult as indented JSON.
func FormatJSON(result *ReplayResult) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal replay result: %w", err)
	}
	return string(data), nil
}

func formatAssetIDs(ids []int64) string {
	if len(ids) == 0 {
		return "-"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return "assets=" + strings.Join(parts, ",")
}

func formatDateRange(ts string) string {
	t, err := time.Parse(TimestampFormat, ts)
	if err != nil {
		return ts
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatTimeOnly(ts string) string {
	t, err := time.Parse(TimestampFormat, ts)
	if err != nil {
		return ts
	}
	return t.Format("15:04:05")
}

func formatSummary(s ReplaySummary) string {
	parts := []string{}
	if s.AllowCount > 0 {
		parts = append(parts, fmt.Sprintf("%d allow", s.AllowCount))
	}
	if s.InterceptCount > 0 {
		parts = append(parts, fmt.Sprintf("%d intercept", s.InterceptCount))
	}
	if s.MaskedFields > 0 {
		parts = append(parts, fmt.Sprintf("%d fields masked", s.MaskedFields))
	}
	if len(parts) == 0 {
		parts = append(parts, "no decisions")
	}
	return fmt.Sprintf("Summary: %s\n", strings.Join(parts, ", "))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

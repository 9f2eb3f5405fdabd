package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// TimestampFormat is the layout used in audit entry timestamps.
const TimestampFormat = "2006-01-02T15:04:05.000Z"

// ReplayFilter holds filtering criteria for decision replay.
// ApprovalID zero means all approvals.
type ReplayFilter struct {
	ApprovalID int64
	From       time.Time // zero value = no lower bound
	To         time.Time // zero value = no upper bound
}

// ReplaySummary holds decision counts and metadata for a replayed span.
type ReplaySummary struct {
	Total          int    `json:"total"`
	AllowCount     int    `json:"allow_count"`
	InterceptCount int    `json:"intercept_count"`
	MaskedFields   int    `json:"masked_fields"`
	FirstTimestamp string `json:"first_timestamp"`
	LastTimestamp  string `json:"last_timestamp"`

	// ReasonCounts breaks the interceptions down by gate reason.
	ReasonCounts map[string]int `json:"reason_counts,omitempty"`
}

// ReplayResult holds filtered entries and summary for a decision replay.
type ReplayResult struct {
	ApprovalID int64         `json:"approval_id,omitempty"`
	Entries    []Entry       `json:"entries"`
	Summary    ReplaySummary `json:"summary"`
}

// Replay reads the audit log and returns entries matching the filter.
func Replay(path string, filter ReplayFilter) (*ReplayResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	result := &ReplayResult{
		ApprovalID: filter.ApprovalID,
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue // skip malformed lines
		}

		if filter.ApprovalID != 0 && entry.ApprovalID != filter.ApprovalID {
			continue
		}

		// Time range filtering
		if !filter.From.IsZero() || !filter.To.IsZero() {
			ts, err := time.Parse(TimestampFormat, entry.Timestamp)
			if err != nil {
				continue // skip unparseable timestamps
			}
			if !filter.From.IsZero() && ts.Before(filter.From) {
				continue
			}
			if !filter.To.IsZero() && ts.After(filter.To) {
				continue
			}
		}

		result.Entries = append(result.Entries, entry)
		updateSummary(&result.Summary, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}

	return result, nil
}

func updateSummary(s *ReplaySummary, entry Entry) {
	s.Total++

	switch strings.ToLower(entry.Decision) {
	case DecisionAllow:
		s.AllowCount++
	case DecisionIntercept:
		s.InterceptCount++
		if entry.Reason != "" {
			if s.ReasonCounts == nil {
				s.ReasonCounts = map[string]int{}
			}
			s.ReasonCounts[entry.Reason]++
		}
	}

	s.MaskedFields += entry.MaskedFields

	if s.FirstTimestamp == "" {
		s.FirstTimestamp = entry.Timestamp
	}
	s.LastTimestamp = entry.Timestamp
}

package approval

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/finvault/datafence/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "approvals.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateStartsPending(t *testing.T) {
	s := openTestStore(t)

	rec, err := s.Create(5, 100, []int64{1, 2, 3})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.ID == 0 {
		t.Error("create did not assign an id")
	}
	if rec.Status != model.ApprovalPending {
		t.Errorf("status = %s, want pending", rec.Status)
	}

	got, err := s.Get(rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.AssetIDs) != 3 || got.AssetIDs[0] != 1 {
		t.Errorf("asset ids = %v", got.AssetIDs)
	}
	if got.ScenarioID != 5 || got.ApplicantID != 100 {
		t.Errorf("record = %+v", got)
	}
}

func TestApproveTransition(t *testing.T) {
	s := openTestStore(t)
	rec, _ := s.Create(1, 100, []int64{1})

	approved, err := s.Approve(rec.ID, 200, "within scope")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != model.ApprovalApproved {
		t.Errorf("status = %s", approved.Status)
	}
	if approved.ApprovedAt == nil || approved.ResolvedAt == nil {
		t.Error("timestamps not set on approval")
	}
	if approved.ApproverID != 200 || approved.Comment != "within scope" {
		t.Errorf("approver fields = %+v", approved)
	}

	// Resolved records cannot be resolved again.
	if _, err := s.Approve(rec.ID, 200, ""); err == nil {
		t.Error("double approve must fail")
	}
}

func TestRejectAndCancel(t *testing.T) {
	s := openTestStore(t)

	r1, _ := s.Create(1, 100, nil)
	rejected, err := s.Reject(r1.ID, 200, "volume exceeds scenario scope")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != model.ApprovalRejected || rejected.RejectedReason == "" {
		t.Errorf("rejected = %+v", rejected)
	}

	r2, _ := s.Create(1, 100, nil)
	cancelled, err := s.Cancel(r2.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != model.ApprovalCancelled {
		t.Errorf("cancelled = %+v", cancelled)
	}

	if _, err := s.Approve(r1.ID, 200, ""); err == nil {
		t.Error("approving a rejected record must fail")
	}
}

func TestGetMissingIsNotFound(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Get(12345); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestApprovedIDsSeedsAllowSet(t *testing.T) {
	s := openTestStore(t)

	a, _ := s.Create(1, 100, nil)
	b, _ := s.Create(1, 100, nil)
	c, _ := s.Create(1, 100, nil)
	s.Approve(a.ID, 200, "")
	s.Approve(c.ID, 200, "")
	s.Reject(b.ID, 200, "no")

	ids, err := s.ApprovedIDs()
	if err != nil {
		t.Fatalf("approved ids: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("ids = %v, want two entries", ids)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	s := openTestStore(t)
	a, _ := s.Create(1, 100, nil)
	s.Create(1, 100, nil)
	s.Approve(a.ID, 200, "")

	pending, err := s.List(model.ApprovalPending)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pending) != 1 {
		t.Errorf("pending = %d records, want 1", len(pending))
	}

	all, err := s.List("")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("all = %d records, want 2", len(all))
	}
	// Newest first.
	if len(all) == 2 && all[0].ID < all[1].ID {
		t.Error("list is not newest-first")
	}
}

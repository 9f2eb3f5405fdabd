package datafence

import (
	"path/filepath"
	"testing"

	"github.com/finvault/datafence/internal/approval"
	"github.com/finvault/datafence/internal/asset"
	"github.com/finvault/datafence/internal/audit"
	"github.com/finvault/datafence/internal/configstore"
	"github.com/finvault/datafence/internal/model"
)

// seedTestDB creates a governed database with one personal-level asset
// and one approved transfer for it, returning the db path, asset id and
// approval id.
func seedTestDB(t *testing.T) (string, int64, int64) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "datafence.db")

	store, err := configstore.OpenSQLite(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	if err := configstore.Seed(store); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	catalog, err := asset.NewCatalog(store.DB())
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	a, err := catalog.Save(model.DataAsset{
		Code:  "CUST_INFO",
		Name:  "客户信息表",
		Level: model.LevelPersonal,
	})
	if err != nil {
		t.Fatalf("save asset: %v", err)
	}

	approvals, err := approval.NewStore(store.DB())
	if err != nil {
		t.Fatalf("open approvals: %v", err)
	}
	rec, err := approvals.Create(1, 1, []int64{a.ID})
	if err != nil {
		t.Fatalf("create approval: %v", err)
	}
	if _, err := approvals.Approve(rec.ID, 2, "ok"); err != nil {
		t.Fatalf("approve: %v", err)
	}
	return path, a.ID, rec.ID
}

func TestCheckWithoutApprovalIntercepts(t *testing.T) {
	path, assetID, _ := seedTestDB(t)

	c, err := New(WithDatabase(path))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	decision, err := c.Check(999, []int64{assetID}, map[string]any{"name": "张三"})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if decision.Allowed {
		t.Fatal("expected interception without an approval")
	}
	if decision.Reason != "transfer not approved or approval expired" {
		t.Errorf("unexpected reason %q", decision.Reason)
	}
}

func TestCheckApprovedMasksPayload(t *testing.T) {
	path, assetID, approvalID := seedTestDB(t)

	c, err := New(WithDatabase(path))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	decision, err := c.Check(approvalID, []int64{assetID}, map[string]any{
		"MOB_NO": "13812345678",
	})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("expected allow, got reason %q", decision.Reason)
	}
	if got := decision.MaskedPayload["MOB_NO"]; got != "138****5678" {
		t.Errorf("MOB_NO = %v, want 138****5678", got)
	}
}

func TestDesensitizeStandalone(t *testing.T) {
	path, assetID, _ := seedTestDB(t)

	c, err := New(WithDatabase(path))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	out := c.Desensitize(map[string]any{"ID_NO": "110101199001011234"}, []int64{assetID})
	if got := out["ID_NO"]; got != "110***********1234" {
		t.Errorf("ID_NO = %v, want 110***********1234", got)
	}
}

func TestClassifyWithoutPersisting(t *testing.T) {
	path, _, _ := seedTestDB(t)

	c, err := New(WithDatabase(path))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	res := c.Classify(model.DataAsset{Name: "跨境支付清算规模月报"})
	if res.Level != model.LevelImportant {
		t.Errorf("level = %v, want %v", res.Level, model.LevelImportant)
	}
}

func TestCheckRecordsAudit(t *testing.T) {
	path, assetID, approvalID := seedTestDB(t)
	auditPath := filepath.Join(filepath.Dir(path), "audit.jsonl")

	c, err := New(WithDatabase(path), WithAuditLog(auditPath))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Check(approvalID, []int64{assetID}, map[string]any{"k": "v"}); err != nil {
		t.Fatalf("Check: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	res := audit.Verify(auditPath)
	if !res.Valid || res.Lines != 1 {
		t.Errorf("verify = %+v, want valid single-line chain", res)
	}
}

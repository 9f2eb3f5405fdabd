package gate

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/finvault/datafence/internal/configstore"
	"github.com/finvault/datafence/internal/mask"
	"github.com/finvault/datafence/internal/model"
)

func newTestGate(t *testing.T, levels StaticLevels, opts ...Option) (*Gate, *configstore.MemStore) {
	t.Helper()
	store := configstore.NewMemStore()
	if err := configstore.Seed(store); err != nil {
		t.Fatal(err)
	}
	masker := mask.New(configstore.NewParams(store))
	return New(levels, masker, opts...), store
}

func TestNotApprovedIntercepted(t *testing.T) {
	g, _ := newTestGate(t, StaticLevels{})

	d := g.Decide(99, []int64{1}, map[string]any{"k": "v"})

	if !d.Intercepted || d.Allowed {
		t.Fatalf("expected interception, got %+v", d)
	}
	if d.Reason != ReasonNotApproved {
		t.Errorf("reason = %q", d.Reason)
	}
}

func TestZeroApprovalIDIntercepted(t *testing.T) {
	g, _ := newTestGate(t, StaticLevels{})
	g.AddApproval(0) // even a stray zero entry must not admit id 0

	d := g.Decide(0, nil, nil)
	if !d.Intercepted || d.Reason != ReasonNotApproved {
		t.Errorf("decision = %+v", d)
	}
}

func TestBlacklistOverridesApproval(t *testing.T) {
	g, _ := newTestGate(t, StaticLevels{1: model.LevelInternal, 2: model.LevelInternal})
	g.AddApproval(10)
	g.AddBlacklisted(2)

	d := g.Decide(10, []int64{1, 2}, map[string]any{})

	if !d.Intercepted || d.Reason != ReasonBlacklisted {
		t.Errorf("decision = %+v, want blacklist interception", d)
	}
}

func TestCoreDataForbiddenDespiteApproval(t *testing.T) {
	g, _ := newTestGate(t, StaticLevels{1: model.LevelCore})
	g.AddApproval(10)

	d := g.Decide(10, []int64{1}, map[string]any{})

	if !d.Intercepted || d.Reason != ReasonCoreData {
		t.Errorf("decision = %+v, want core-data interception", d)
	}
}

func TestBlacklistCheckedBeforeCoreLevel(t *testing.T) {
	g, _ := newTestGate(t, StaticLevels{1: model.LevelCore})
	g.AddApproval(10)
	g.AddBlacklisted(1)

	d := g.Decide(10, []int64{1}, nil)
	if d.Reason != ReasonBlacklisted {
		t.Errorf("reason = %q, blacklist is the absolute override", d.Reason)
	}
}

func TestAllowedTransferMasksPayload(t *testing.T) {
	g, _ := newTestGate(t, StaticLevels{1: model.LevelSensitive})
	g.AddApproval(10)

	d := g.Decide(10, []int64{1}, map[string]any{"MOBILE": "13812345678"})

	if !d.Allowed || d.Intercepted {
		t.Fatalf("decision = %+v, want allowed", d)
	}
	if d.MaskedPayload["MOBILE"] != "138****5678" {
		t.Errorf("payload not desensitized: %v", d.MaskedPayload)
	}
}

func TestUnknownAssetDoesNotBlock(t *testing.T) {
	g, _ := newTestGate(t, StaticLevels{})
	g.AddApproval(10)

	d := g.Decide(10, []int64{404}, map[string]any{"ID_NO": "110101199001011234"})

	if !d.Allowed {
		t.Fatalf("unknown asset must not block, got %+v", d)
	}
	if d.MaskedPayload["ID_NO"] != "110***********1234" {
		t.Error("payload of unknown asset still passes through masking")
	}
}

func TestRevokedApprovalIntercepted(t *testing.T) {
	g, _ := newTestGate(t, StaticLevels{})
	g.AddApproval(10)
	g.RemoveApproval(10)

	if d := g.Decide(10, nil, nil); !d.Intercepted {
		t.Error("revoked approval must intercept")
	}
}

func TestSeedLoadsMembership(t *testing.T) {
	g, _ := newTestGate(t, StaticLevels{})
	g.Seed([]int64{1, 2}, []int64{7})

	if !g.ContainsApproval(1) || !g.ContainsApproval(2) {
		t.Error("seeded approvals missing")
	}
	if !g.ContainsBlacklisted(7) {
		t.Error("seeded blacklist entry missing")
	}
}

func TestBlacklistPersistsWriteThrough(t *testing.T) {
	var g *Gate
	var store *configstore.MemStore
	store = configstore.NewMemStore()
	configstore.Seed(store)
	masker := mask.New(configstore.NewParams(store))
	g = New(StaticLevels{}, masker, WithStore(store))

	g.AddBlacklisted(3)
	g.AddBlacklisted(1)

	var ids []int64
	if !configstore.GetJSON(store, configstore.KeyGateBlacklist, &ids) {
		t.Fatal("blacklist not persisted")
	}
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 3 {
		t.Errorf("persisted blacklist = %v, want [1 3]", ids)
	}

	g.RemoveBlacklisted(3)
	ids = nil
	configstore.GetJSON(store, configstore.KeyGateBlacklist, &ids)
	if len(ids) != 1 || ids[0] != 1 {
		t.Errorf("persisted blacklist after removal = %v, want [1]", ids)
	}

	// Round-trip: a fresh gate seeds from the persisted value.
	fresh := New(StaticLevels{}, masker, WithStore(store))
	fresh.Seed(nil, configstore.NewParams(store).BlacklistAssetIDs())
	if !fresh.ContainsBlacklisted(1) {
		t.Error("fresh gate did not recover persisted blacklist")
	}

	// Persisted value stays valid JSON.
	e, _ := store.Get(configstore.KeyGateBlacklist)
	if !json.Valid([]byte(e.Value)) {
		t.Errorf("persisted blacklist is not JSON: %s", e.Value)
	}
}

func TestConcurrentDecideAndMutate(t *testing.T) {
	g, _ := newTestGate(t, StaticLevels{1: model.LevelInternal})
	g.AddApproval(10)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				g.Decide(10, []int64{1}, map[string]any{"MOBILE": "13812345678"})
				if n%2 == 0 {
					g.AddBlacklisted(int64(100 + j))
					g.RemoveBlacklisted(int64(100 + j))
				} else {
					g.AddApproval(int64(1000 + j))
					g.RemoveApproval(int64(1000 + j))
				}
			}
		}(i)
	}
	wg.Wait()

	if !g.ContainsApproval(10) {
		t.Error("stable approval lost during concurrent churn")
	}
}

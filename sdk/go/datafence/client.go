package datafence

import (
	"fmt"
	"sync"

	"github.com/finvault/datafence/internal/approval"
	"github.com/finvault/datafence/internal/asset"
	"github.com/finvault/datafence/internal/audit"
	"github.com/finvault/datafence/internal/classify"
	"github.com/finvault/datafence/internal/configstore"
	"github.com/finvault/datafence/internal/gate"
	"github.com/finvault/datafence/internal/mask"
	"github.com/finvault/datafence/internal/model"
)

// Client holds the transfer governance pipeline for in-process checks.
// Thread-safe for concurrent calls.
type Client struct {
	cfg      clientConfig
	store    *configstore.SQLiteStore
	params   *configstore.Params
	catalog  *asset.Catalog
	masker   *mask.Engine
	gate     *gate.Gate
	auditLog *audit.Log
	mu       sync.Mutex
}

// New creates a Client with the given options. It opens the same
// SQLite-backed stores the gateway uses and seeds the gate from
// persisted approval and blacklist state.
func New(opts ...Option) (*Client, error) {
	cfg := clientConfig{
		dbPath: "datafence.db",
	}
	for _, o := range opts {
		o(&cfg)
	}

	store, err := configstore.OpenSQLite(cfg.dbPath)
	if err != nil {
		return nil, fmt.Errorf("datafence: open database: %w", err)
	}
	if err := configstore.Seed(store); err != nil {
		store.Close()
		return nil, fmt.Errorf("datafence: seed config: %w", err)
	}
	if cfg.overridesPath != "" {
		if err := configstore.ApplyOverrides(store, cfg.overridesPath); err != nil {
			store.Close()
			return nil, fmt.Errorf("datafence: apply overrides: %w", err)
		}
	}

	catalog, err := asset.NewCatalog(store.DB())
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("datafence: open asset catalog: %w", err)
	}
	approvals, err := approval.NewStore(store.DB())
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("datafence: open approval store: %w", err)
	}

	params := configstore.NewParams(store)
	masker := mask.New(params)
	g := gate.New(catalog, masker, gate.WithStore(store))

	approvedIDs, err := approvals.ApprovedIDs()
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("datafence: seed gate: %w", err)
	}
	g.Seed(approvedIDs, params.BlacklistAssetIDs())

	var auditLog *audit.Log
	if cfg.auditLogPath != "" {
		auditLog, err = audit.Open(cfg.auditLogPath)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("datafence: open audit log: %w", err)
		}
	}

	return &Client{
		cfg:      cfg,
		store:    store,
		params:   params,
		catalog:  catalog,
		masker:   masker,
		gate:     g,
		auditLog: auditLog,
	}, nil
}

// Check runs the gate on an outbound transfer and returns the decision.
// When an audit log is configured the decision is recorded on it.
func (c *Client) Check(approvalID int64, assetIDs []int64, payload map[string]any) (model.Decision, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	decision := c.gate.Decide(approvalID, assetIDs, payload)

	if c.auditLog != nil {
		outcome := audit.DecisionIntercept
		if decision.Allowed {
			outcome = audit.DecisionAllow
		}
		if err := c.auditLog.Record(audit.Entry{
			ApprovalID: approvalID,
			AssetIDs:   assetIDs,
			Decision:   outcome,
			Reason:     decision.Reason,
		}); err != nil {
			return decision, fmt.Errorf("datafence: record audit entry: %w", err)
		}
	}
	return decision, nil
}

// Desensitize masks the sensitive fields of data according to the
// classification levels of the named assets. The input map is not
// modified.
func (c *Client) Desensitize(data map[string]any, assetIDs []int64) map[string]any {
	return c.masker.Desensitize(data, assetIDs)
}

// Classify runs the classification rules over an asset description
// without persisting anything.
func (c *Client) Classify(a model.DataAsset) classify.Result {
	return classify.Classify(a)
}

// Close releases the database handle and the audit log.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	if c.auditLog != nil {
		if err := c.auditLog.Close(); err != nil {
			firstErr = err
		}
		c.auditLog = nil
	}
	if c.store != nil {
		if err := c.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		c.store = nil
	}
	return firstErr
}

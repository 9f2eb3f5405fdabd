// Package gate is the access decision engine: it decides whether a
// cross-border transfer may proceed, and hands allowed payloads to the
// desensitization engine. Every outcome is expressed in the returned
// Decision; the gate never raises.
package gate

import (
	"encoding/json"
	"slices"
	"sync"

	"github.com/finvault/datafence/internal/configstore"
	"github.com/finvault/datafence/internal/mask"
	"github.com/finvault/datafence/internal/model"
)

// Interception reasons.
const (
	ReasonNotApproved = "transfer not approved or approval expired"
	ReasonBlacklisted = "asset blacklisted"
	ReasonCoreData    = "core data, transfer forbidden"
)

// LevelResolver resolves an asset id to its sensitivity level. An
// unknown id reports false and is excluded from level checks; strict
// existence validation belongs upstream.
type LevelResolver interface {
	AssetLevel(id int64) (model.SensitivityLevel, bool)
}

// StaticLevels is a map-backed LevelResolver for callers that already
// hold the asset levels.
type StaticLevels map[int64]model.SensitivityLevel

// AssetLevel implements LevelResolver.
func (s StaticLevels) AssetLevel(id int64) (model.SensitivityLevel, bool) {
	level, ok := s[id]
	return level, ok
}

// Gate holds the process-wide allow set (approval ids) and blacklist
// (asset ids). Both sets are mutex-guarded: decisions take read locks,
// mutations take write locks.
type Gate struct {
	mu        sync.RWMutex
	allow     map[int64]struct{}
	blacklist map[int64]struct{}

	levels LevelResolver
	masker *mask.Engine

	store       configstore.Store
	writeBehind bool
}

// Option configures a Gate.
type Option func(*Gate)

// WithStore persists blacklist membership into the policy store so it
// survives restarts. Writes are synchronous with the set mutation.
func WithStore(s configstore.Store) Option {
	return func(g *Gate) { g.store = s }
}

// WithWriteBehind makes blacklist persistence asynchronous. The
// in-memory set is still the source of truth for the process lifetime;
// only durability across restarts is eventual.
func WithWriteBehind() Option {
	return func(g *Gate) { g.writeBehind = true }
}

// New creates a gate with empty sets.
func New(levels LevelResolver, masker *mask.Engine, opts ...Option) *Gate {
	g := &Gate{
		allow:     make(map[int64]struct{}),
		blacklist: make(map[int64]struct{}),
		levels:    levels,
		masker:    masker,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Seed loads the initial membership: approved record ids into the allow
// set, persisted blacklist asset ids into the blacklist. Run once at
// startup; thereafter the in-memory sets are the single source of truth.
func (g *Gate) Seed(approvalIDs, blacklistIDs []int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, id := range approvalIDs {
		g.allow[id] = struct{}{}
	}
	for _, id := range blacklistIDs {
		g.blacklist[id] = struct{}{}
	}
}

// Decide evaluates one transfer request. Evaluation order is fixed:
// allow-set membership, blacklist (absolute override), core-data level,
// then desensitization of the payload.
func (g *Gate) Decide(approvalID int64, assetIDs []int64, payload map[string]any) model.Decision {
	g.mu.RLock()
	_, approved := g.allow[approvalID]
	var blacklisted bool
	if approved && approvalID != 0 {
		for _, id := range assetIDs {
			if _, ok := g.blacklist[id]; ok {
				blacklisted = true
				break
			}
		}
	}
	g.mu.RUnlock()

	if approvalID == 0 || !approved {
		return model.Decision{Intercepted: true, Reason: ReasonNotApproved}
	}
	if blacklisted {
		return model.Decision{Intercepted: true, Reason: ReasonBlacklisted}
	}

	for _, id := range assetIDs {
		level, ok := g.levels.AssetLevel(id)
		if !ok {
			// No level data: excluded from the check, still masked below.
			continue
		}
		if level == model.LevelCore {
			return model.Decision{Intercepted: true, Reason: ReasonCoreData}
		}
	}

	return model.Decision{
		Allowed:       true,
		MaskedPayload: g.masker.Desensitize(payload, assetIDs),
	}
}

// AddApproval mirrors an approved record into the allow set.
func (g *Gate) AddApproval(id int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.allow[id] = struct{}{}
}

// RemoveApproval revokes an approval from the allow set.
func (g *Gate) RemoveApproval(id int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.allow, id)
}

// AddBlacklisted forbids an asset from crossing the border.
func (g *Gate) AddBlacklisted(assetID int64) {
	g.mu.Lock()
	g.blacklist[assetID] = struct{}{}
	snapshot := g.blacklistLocked()
	g.mu.Unlock()
	g.persistBlacklist(snapshot)
}

// RemoveBlacklisted lifts the ban on an asset.
func (g *Gate) RemoveBlacklisted(assetID int64) {
	g.mu.Lock()
	delete(g.blacklist, assetID)
	snapshot := g.blacklistLocked()
	g.mu.Unlock()
	g.persistBlacklist(snapshot)
}

// ContainsApproval reports allow-set membership.
func (g *Gate) ContainsApproval(id int64) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.allow[id]
	return ok
}

// ContainsBlacklisted reports blacklist membership.
func (g *Gate) ContainsBlacklisted(assetID int64) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.blacklist[assetID]
	return ok
}

// Blacklisted returns a sorted snapshot of the blacklist.
func (g *Gate) Blacklisted() []int64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.blacklistLocked()
}

func (g *Gate) blacklistLocked() []int64 {
	out := make([]int64, 0, len(g.blacklist))
	for id := range g.blacklist {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// persistBlacklist writes the snapshot to the policy store when one is
// configured. Persistence failures do not affect the in-memory set.
func (g *Gate) persistBlacklist(ids []int64) {
	if g.store == nil {
		return
	}
	write := func() {
		data, err := json.Marshal(ids)
		if err != nil {
			return
		}
		e, ok := g.store.Get(configstore.KeyGateBlacklist)
		if !ok {
			e = configstore.Entry{
				Key:      configstore.KeyGateBlacklist,
				Type:     configstore.TypeJSON,
				Category: configstore.CategoryGate,
				Editable: true,
			}
		}
		e.Value = string(data)
		g.store.Set(e)
	}
	if g.writeBehind {
		go write()
		return
	}
	write()
}

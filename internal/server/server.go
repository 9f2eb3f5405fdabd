// Package server is the HTTP transfer gateway: a thin caller of the
// classification, masking, gate and risk engines. All governance
// semantics live in those packages; handlers only decode requests,
// call the engines and encode results.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v2"
	"github.com/google/uuid"

	"github.com/finvault/datafence/internal/approval"
	"github.com/finvault/datafence/internal/asset"
	"github.com/finvault/datafence/internal/audit"
	"github.com/finvault/datafence/internal/configstore"
	"github.com/finvault/datafence/internal/gate"
	"github.com/finvault/datafence/internal/mask"
	"github.com/finvault/datafence/internal/risk"
)

// Server wires the engines behind an HTTP API. One SQLite file backs
// the config store, asset catalog, approval store and assessment store.
type Server struct {
	cfg Config
	log *slog.Logger

	store       *configstore.SQLiteStore
	params      *configstore.Params
	catalog     *asset.Catalog
	approvals   *approval.Store
	assessments *risk.Store
	masker      *mask.Engine
	gate        *gate.Gate
	auditLog    *audit.Log

	httpServer *http.Server
}

// New opens the backing stores, seeds configuration defaults, applies
// YAML overrides and builds the gate from persisted approval and
// blacklist state.
func New(cfg Config, log *slog.Logger) (*Server, error) {
	if log == nil {
		log = slog.Default()
	}

	store, err := configstore.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := configstore.Seed(store); err != nil {
		store.Close()
		return nil, err
	}
	if cfg.OverridesPath != "" {
		if err := configstore.ApplyOverrides(store, cfg.OverridesPath); err != nil {
			store.Close()
			return nil, err
		}
	}

	catalog, err := asset.NewCatalog(store.DB())
	if err != nil {
		store.Close()
		return nil, err
	}
	approvals, err := approval.NewStore(store.DB())
	if err != nil {
		store.Close()
		return nil, err
	}
	assessments, err := risk.NewStore(store.DB())
	if err != nil {
		store.Close()
		return nil, err
	}

	params := configstore.NewParams(store)
	masker := mask.New(params)
	g := gate.New(catalog, masker, gate.WithStore(store))

	approvedIDs, err := approvals.ApprovedIDs()
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("server: seed gate: %w", err)
	}
	g.Seed(approvedIDs, params.BlacklistAssetIDs())

	var auditLog *audit.Log
	if cfg.AuditLogPath != "" {
		auditLog, err = audit.Open(cfg.AuditLogPath)
		if err != nil {
			store.Close()
			return nil, err
		}
	}

	return &Server{
		cfg:         cfg,
		log:         log,
		store:       store,
		params:      params,
		catalog:     catalog,
		approvals:   approvals,
		assessments: assessments,
		masker:      masker,
		gate:        g,
		auditLog:    auditLog,
	}, nil
}

// Router builds the chi router with request ids, structured request
// logging and panic recovery.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(requestID)
	httpLogger := httplog.NewLogger("datafence", httplog.Options{
		JSON:            s.cfg.HTTPLogJSON,
		LogLevel:        slog.LevelInfo,
		Concise:         true,
		QuietDownRoutes: []string{"/health"},
		QuietDownPeriod: 10 * time.Second,
	})
	r.Use(httplog.RequestLogger(httpLogger))
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/transfers/check", s.handleCheck)
		r.Post("/desensitize", s.handleDesensitize)
		r.Post("/classify", s.handleClassify)

		r.Get("/assets", s.handleListAssets)
		r.Post("/assets", s.handleCreateAsset)
		r.Get("/assets/{id}", s.handleGetAsset)

		r.Get("/approvals", s.handleListApprovals)
		r.Post("/approvals", s.handleCreateApproval)
		r.Post("/approvals/{id}/approve", s.handleApprove)
		r.Post("/approvals/{id}/reject", s.handleReject)

		r.Get("/blacklist", s.handleListBlacklist)
		r.Put("/blacklist/{assetID}", s.handleAddBlacklist)
		r.Delete("/blacklist/{assetID}", s.handleRemoveBlacklist)

		r.Post("/assessments", s.handleCreateAssessment)
		r.Get("/assessments/{id}", s.handleGetAssessment)
		r.Post("/assessments/{id}/calculate", s.handleCalculate)
		r.Get("/assessments/{id}/thresholds", s.handleThresholds)

		r.Get("/config/{key}", s.handleGetConfig)
		r.Put("/config/{key}", s.handleSetConfig)
	})

	return r
}

// Serve runs the HTTP server until ctx is cancelled, then shuts down
// gracefully. When an overrides file is configured its changes are
// hot-reloaded into the config store.
func (s *Server) Serve(ctx context.Context) error {
	if s.cfg.OverridesPath != "" {
		reloader, err := configstore.NewReloader(s.store, s.cfg.OverridesPath, s.log)
		if err != nil {
			s.log.Warn("overrides hot-reload disabled", "error", err)
		} else {
			go func() {
				if err := reloader.Run(ctx); err != nil {
					s.log.Error("overrides reloader stopped", "error", err)
				}
			}()
		}
	}

	s.httpServer = &http.Server{Addr: s.cfg.Addr, Handler: s.Router()}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()
	s.log.Info("gateway listening", "addr", s.cfg.Addr)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server: listen on %s: %w", s.cfg.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	s.log.Info("gateway stopped")
	return nil
}

// Close releases the backing stores.
func (s *Server) Close() error {
	if s.auditLog != nil {
		s.auditLog.Close()
	}
	// catalog, approvals and assessments share the store's handle
	return s.store.Close()
}

type ctxKey string

const requestIDKey ctxKey = "request_id"

// requestID assigns a UUID to each request and echoes it back in the
// X-Request-Id header.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// NewLogger builds the process-wide slog logger used by the gateway and
// CLI commands.
func NewLogger(json bool) *slog.Logger {
	var handler slog.Handler
	if json {
		handler = slog.NewJSONHandler(os.Stderr, nil)
	} else {
		handler = slog.NewTextHandler(os.Stderr, nil)
	}
	return slog.New(handler)
}

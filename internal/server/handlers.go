package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/finvault/datafence/internal/approval"
	"github.com/finvault/datafence/internal/asset"
	"github.com/finvault/datafence/internal/audit"
	"github.com/finvault/datafence/internal/classify"
	"github.com/finvault/datafence/internal/configstore"
	"github.com/finvault/datafence/internal/model"
	"github.com/finvault/datafence/internal/risk"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type checkRequest struct {
	ApprovalID int64          `json:"approval_id"`
	AssetIDs   []int64        `json:"asset_ids"`
	Data       map[string]any `json:"data"`
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	decision := s.gate.Decide(req.ApprovalID, req.AssetIDs, req.Data)

	if s.auditLog != nil {
		outcome := audit.DecisionIntercept
		masked := 0
		if decision.Allowed {
			outcome = audit.DecisionAllow
			masked = countMasked(req.Data, decision.MaskedPayload)
		}
		if err := s.auditLog.Record(audit.Entry{
			RequestID:    requestIDFrom(r.Context()),
			ApprovalID:   req.ApprovalID,
			AssetIDs:     req.AssetIDs,
			Decision:     outcome,
			Reason:       decision.Reason,
			MaskedFields: masked,
		}); err != nil {
			s.log.Error("audit record failed", "error", err)
		}
	}

	respondJSON(w, http.StatusOK, decision)
}

type desensitizeRequest struct {
	AssetIDs []int64        `json:"asset_ids"`
	Data     map[string]any `json:"data"`
}

func (s *Server) handleDesensitize(w http.ResponseWriter, r *http.Request) {
	var req desensitizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"data": s.masker.Desensitize(req.Data, req.AssetIDs),
	})
}

type classifyRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result := classify.Classify(model.DataAsset{Name: req.Name, Code: req.Code})
	respondJSON(w, http.StatusOK, map[string]any{
		"level":             result.Level,
		"level_name":        model.LevelNames[result.Level],
		"classification_id": result.ClassificationID,
	})
}

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("all") != "true"
	assets, err := s.catalog.List(activeOnly)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"assets": assets})
}

func (s *Server) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	var a model.DataAsset
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if a.Code == "" || a.Name == "" {
		respondError(w, http.StatusBadRequest, "code and name are required")
		return
	}
	if a.Level == "" {
		result := classify.Classify(a)
		a.Level = result.Level
		a.ClassificationID = result.ClassificationID
	}
	saved, err := s.catalog.Save(a)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	a, err := s.catalog.Get(id)
	if errors.Is(err, asset.ErrNotFound) {
		respondError(w, http.StatusNotFound, "asset not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, a)
}

func (s *Server) handleListApprovals(w http.ResponseWriter, r *http.Request) {
	status := model.ApprovalStatus(r.URL.Query().Get("status"))
	records, err := s.approvals.List(status)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"approvals": records})
}

type createApprovalRequest struct {
	ScenarioID  int64   `json:"scenario_id"`
	ApplicantID int64   `json:"applicant_id"`
	AssetIDs    []int64 `json:"asset_ids"`
}

func (s *Server) handleCreateApproval(w http.ResponseWriter, r *http.Request) {
	var req createApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rec, err := s.approvals.Create(req.ScenarioID, req.ApplicantID, req.AssetIDs)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, rec)
}

type resolveApprovalRequest struct {
	ApproverID int64  `json:"approver_id"`
	Comment    string `json:"comment"`
	Reason     string `json:"reason"`
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req resolveApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rec, err := s.approvals.Approve(id, req.ApproverID, req.Comment)
	if err != nil {
		respondApprovalError(w, err)
		return
	}
	// Mirror into the gate so the next check sees the approval.
	s.gate.AddApproval(rec.ID)
	respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req resolveApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rec, err := s.approvals.Reject(id, req.ApproverID, req.Reason)
	if err != nil {
		respondApprovalError(w, err)
		return
	}
	s.gate.RemoveApproval(rec.ID)
	respondJSON(w, http.StatusOK, rec)
}

func respondApprovalError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, approval.ErrNotFound):
		respondError(w, http.StatusNotFound, "approval not found")
	default:
		respondError(w, http.StatusConflict, err.Error())
	}
}

func (s *Server) handleListBlacklist(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"asset_ids": s.gate.Blacklisted()})
}

func (s *Server) handleAddBlacklist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "assetID")
	if !ok {
		return
	}
	s.gate.AddBlacklisted(id)
	respondJSON(w, http.StatusOK, map[string]any{"asset_ids": s.gate.Blacklisted()})
}

func (s *Server) handleRemoveBlacklist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "assetID")
	if !ok {
		return
	}
	s.gate.RemoveBlacklisted(id)
	respondJSON(w, http.StatusOK, map[string]any{"asset_ids": s.gate.Blacklisted()})
}

func (s *Server) handleCreateAssessment(w http.ResponseWriter, r *http.Request) {
	var a model.RiskAssessment
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := s.assessments.Create(a)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetAssessment(w http.ResponseWriter, r *http.Request) {
	a, ok := s.assessmentFromPath(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, a)
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	a, ok := s.assessmentFromPath(w, r)
	if !ok {
		return
	}
	scored := risk.Score(a, s.params)
	updated, err := s.assessments.Update(scored)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleThresholds(w http.ResponseWriter, r *http.Request) {
	a, ok := s.assessmentFromPath(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, risk.CheckThresholds(a, s.params))
}

func (s *Server) assessmentFromPath(w http.ResponseWriter, r *http.Request) (model.RiskAssessment, bool) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return model.RiskAssessment{}, false
	}
	a, err := s.assessments.Get(id)
	if errors.Is(err, risk.ErrNotFound) {
		respondError(w, http.StatusNotFound, "assessment not found")
		return model.RiskAssessment{}, false
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return model.RiskAssessment{}, false
	}
	return a, true
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	e, ok := s.store.Get(key)
	if !ok {
		respondError(w, http.StatusNotFound, "config key not found")
		return
	}
	respondJSON(w, http.StatusOK, e)
}

type setConfigRequest struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Type     string `json:"type"`
	Category string `json:"category"`
}

func (s *Server) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	var req setConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	e := configstore.Entry{
		Key:      key,
		Name:     req.Name,
		Value:    req.Value,
		Type:     configstore.Type(req.Type),
		Category: req.Category,
		Editable: true,
	}
	if e.Type == "" {
		e.Type = configstore.TypeString
	}
	if prev, ok := s.store.Get(key); ok {
		if !prev.Editable {
			respondError(w, http.StatusForbidden, "config key is not editable")
			return
		}
		if e.Name == "" {
			e.Name = prev.Name
		}
		if req.Type == "" {
			e.Type = prev.Type
		}
		if e.Category == "" {
			e.Category = prev.Category
		}
	}
	if err := s.store.Set(e); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, e)
}

func pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// countMasked counts leaf string values that differ between the original
// payload and its masked form. Used only for audit detail.
func countMasked(original, masked map[string]any) int {
	count := 0
	for key, mv := range masked {
		ov, ok := original[key]
		if !ok {
			continue
		}
		switch mval := mv.(type) {
		case map[string]any:
			if oval, ok := ov.(map[string]any); ok {
				count += countMasked(oval, mval)
			}
		case []any:
			oval, ok := ov.([]any)
			if !ok {
				continue
			}
			for i := range mval {
				if i >= len(oval) {
					break
				}
				md, mok := mval[i].(map[string]any)
				od, ook := oval[i].(map[string]any)
				if mok && ook {
					count += countMasked(od, md)
				}
			}
		default:
			if mv != ov {
				count++
			}
		}
	}
	return count
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

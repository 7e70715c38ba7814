package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"liftoff/pkg"
)

// GenerateHandler runs the first half of the sequence: one chat completion,
// code extraction, dependency inference and the ledger insert. The session it
// leaves behind is what DeployHandler picks up.
func (s *Server) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	var req pkg.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Idea) == "" {
		http.Error(w, "An app idea is required", http.StatusBadRequest)
		return
	}

	kind, ok := LookupKind(req.Kind)
	if !ok {
		http.Error(w, "Unsupported app kind: "+req.Kind, http.StatusBadRequest)
		return
	}

	repoName := req.RepoName
	if repoName == "" {
		repoName = s.config.DefaultRepoName
	}

	session := &Session{
		ID:        uuid.NewString(),
		Idea:      req.Idea,
		Kind:      kind,
		RepoName:  repoName,
		PitchDeck: req.PitchDeck,
		Document:  req.Document,
		CreatedAt: time.Now(),
		status:    StatusGenerating,
	}
	s.sessions.AddSession(session)

	s.Logger.Infow("generating code", "id", session.ID, "kind", kind.Name)

	code, err := s.composer.Generate(r.Context(), req.Idea, kind)
	if err != nil {
		s.Logger.Errorf("Failed to generate code: %v", err)
		session.SetStatus(StatusFailed)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	requirements := GenerateRequirements(code, kind)
	session.SetGenerated(code, requirements)

	record := &DeploymentRecord{
		UniqueID:  session.ID,
		Prompt:    session.Idea,
		RepoName:  session.RepoName,
		PitchDeck: session.PitchDeck,
		Document:  session.Document,
	}
	if err := s.ledger.Insert(r.Context(), record); err != nil {
		s.Logger.Errorf("Failed to insert ledger row: %v", err)
		session.SetStatus(StatusFailed)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(pkg.GenerateResponse{
		ID:           session.ID,
		Code:         code,
		Requirements: requirements,
	})
}

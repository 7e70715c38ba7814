package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"liftoff/pkg"
)

func newGenerateServer(reply string, modelErr error, ledger Ledger) *Server {
	logger := zap.NewNop().Sugar()
	return &Server{
		Logger: logger,
		config: Config{
			DefaultRepoName: "generated-streamlit-app",
		},
		sessions: &SessionManager{},
		composer: &Composer{
			model:  &fakeChatModel{reply: reply, err: modelErr},
			logger: logger,
		},
		ledger: ledger,
	}
}

func postGenerate(t *testing.T, s *Server, req pkg.GenerateRequest) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	rec := httptest.NewRecorder()
	s.GenerateHandler(rec, httptest.NewRequest(http.MethodPost, "/generate", bytes.NewReader(body)))

	return rec
}

func TestGenerateHandler(t *testing.T) {
	ledger := &fakeLedger{}
	s := newGenerateServer("```python\nimport streamlit as st\nst.title(\"todo\")\n```", nil, ledger)

	rec := postGenerate(t, s, pkg.GenerateRequest{Idea: "a todo list app"})
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	var resp pkg.GenerateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}

	if resp.ID == "" {
		t.Fatal("expected a session id")
	}
	if !strings.Contains(resp.Code, "import streamlit") {
		t.Fatalf("unexpected code %q", resp.Code)
	}
	if !manifestContains(resp.Requirements, "streamlit") {
		t.Fatalf("manifest missing the toolkit: %q", resp.Requirements)
	}

	if len(ledger.inserted) != 1 || ledger.inserted[0] != resp.ID {
		t.Fatalf("expected one ledger row for %s, got %v", resp.ID, ledger.inserted)
	}

	session := s.sessions.GetSession(resp.ID)
	if session == nil {
		t.Fatal("session not stored")
	}
	if session.Status() != StatusGenerated {
		t.Fatalf("expected generated, got %s", session.Status())
	}
	if session.RepoName != "generated-streamlit-app" {
		t.Fatalf("expected the default repo name, got %q", session.RepoName)
	}
}

func TestGenerateHandlerEmptyIdea(t *testing.T) {
	s := newGenerateServer("", nil, &fakeLedger{})

	rec := postGenerate(t, s, pkg.GenerateRequest{Idea: "   "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGenerateHandlerUnknownKind(t *testing.T) {
	s := newGenerateServer("", nil, &fakeLedger{})

	rec := postGenerate(t, s, pkg.GenerateRequest{Idea: "a todo list app", Kind: "flask"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGenerateHandlerModelFailure(t *testing.T) {
	s := newGenerateServer("", errors.New("rate limited"), &fakeLedger{})

	rec := postGenerate(t, s, pkg.GenerateRequest{Idea: "a todo list app"})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}

	sessions := s.sessions.AllSessions()
	if len(sessions) != 1 || sessions[0].Status() != StatusFailed {
		t.Fatalf("expected one failed session, got %v", sessions)
	}
}

func TestGenerateHandlerLedgerFailure(t *testing.T) {
	ledger := &fakeLedger{insertErr: wrapErr(ErrKindLedger, "insert row", errors.New("airtable down"))}
	s := newGenerateServer("```python\nimport streamlit as st\n```", nil, ledger)

	rec := postGenerate(t, s, pkg.GenerateRequest{Idea: "a todo list app"})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}

	sessions := s.sessions.AllSessions()
	if len(sessions) != 1 || sessions[0].Status() != StatusFailed {
		t.Fatalf("expected one failed session, got %v", sessions)
	}
}

func TestGenerateHandlerCustomRepoName(t *testing.T) {
	s := newGenerateServer("```python\nimport streamlit as st\n```", nil, &fakeLedger{})

	rec := postGenerate(t, s, pkg.GenerateRequest{Idea: "a todo list app", RepoName: "my-own-name"})
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}

	var resp pkg.GenerateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}

	if s.sessions.GetSession(resp.ID).RepoName != "my-own-name" {
		t.Fatal("custom repo name not honored")
	}
}

package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"liftoff/pkg"
)

const Version = "0.1.0"

// Server owns the clients for the four external services and the in-memory
// session manager. Every handler is a step in the linear idea-to-deployment
// sequence.
type Server struct {
	Logger *zap.SugaredLogger

	config   Config
	sessions *SessionManager
	composer *Composer
	repos    RepoHost
	platform Platform
	ledger   Ledger
	webhook  *WebhookTrigger
}

func NewServer() *Server {
	logger := zap.Must(zap.NewProduction()).Sugar()

	config, err := LoadConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	composer, err := NewComposer(context.Background(), config, logger)
	if err != nil {
		logger.Fatalf("Failed to create composer: %v", err)
	}

	return &Server{
		Logger:   logger,
		config:   config,
		sessions: &SessionManager{},
		composer: composer,
		repos:    NewGitHubHost(config.GitHubToken, logger),
		platform: NewHerokuPlatform(config, logger),
		ledger:   NewAirtableLedger(config, logger),
		webhook:  NewWebhookTrigger(config.WebhookURL, logger),
	}
}

func (s *Server) Addr() string {
	return s.config.Addr
}

func (s *Server) Stop() {
	s.Logger.Sync()
}

func randomSuffix() string {
	return uuid.NewString()[:8]
}

func (s *Server) SessionsHandler(w http.ResponseWriter, r *http.Request) {
	var sessions []pkg.Session
	for _, session := range s.sessions.AllSessions() {
		sessions = append(sessions, session.Snapshot())
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sessions)
}

func (s *Server) SessionHandler(w http.ResponseWriter, r *http.Request) {
	session := s.sessions.GetSession(r.PathValue("id"))
	if session == nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session.Snapshot())
}

func (s *Server) ArtifactsHandler(w http.ResponseWriter, r *http.Request) {
	links, err := s.ledger.ArtifactLinks(r.Context(), r.PathValue("id"))
	if err != nil {
		s.Logger.Errorf("Failed to fetch artifact links: %v", err)
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(links)
}

func (s *Server) DaemonInfoHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(pkg.Info{
		Version: Version,
		Kinds:   KindNames(),
	})
}

package server

import (
	"sync"
	"time"

	"liftoff/pkg"
)

// SessionStatus walks forward through the deployment attempt, it never moves
// back. A failure at any point parks the session at failed and leaves remote
// side effects (repo, app, secret) in place.
type SessionStatus string

const (
	StatusGenerating   SessionStatus = "generating"
	StatusGenerated    SessionStatus = "generated"
	StatusPublishing   SessionStatus = "publishing"
	StatusProvisioning SessionStatus = "secret-provisioning"
	StatusDeploying    SessionStatus = "deploying"
	StatusDeployed     SessionStatus = "deployed"
	StatusFailed       SessionStatus = "failed"
)

// Session carries the state of one generate-and-deploy attempt through each
// step. The minted id is the only join key shared with the ledger and the
// webhook payload. Sessions live in memory only, the ledger is the one store
// that survives a restart.
type Session struct {
	ID        string
	Idea      string
	Kind      Kind
	RepoName  string
	PitchDeck bool
	Document  bool
	CreatedAt time.Time

	mu           sync.Mutex
	status       SessionStatus
	code         string
	requirements string
	repo         *RemoteRepo
	appName      string
	appURL       string
}

func (s *Session) Status() SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) SetStatus(status SessionStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

func (s *Session) SetGenerated(code, requirements string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.code = code
	s.requirements = requirements
	s.status = StatusGenerated
}

func (s *Session) Generated() (code, requirements string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.code, s.requirements
}

func (s *Session) SetRepo(repo *RemoteRepo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.repo = repo
}

func (s *Session) Repo() *RemoteRepo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo
}

func (s *Session) SetApp(name, url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appName = name
	s.appURL = url
}

func (s *Session) Snapshot() pkg.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := pkg.Session{
		ID:       s.ID,
		Idea:     s.Idea,
		Kind:     s.Kind.Name,
		RepoName: s.RepoName,
		Status:   string(s.status),
		AppName:  s.appName,
		AppURL:   s.appURL,
	}
	if s.repo != nil {
		snapshot.RepoURL = s.repo.HTMLURL
	}

	return snapshot
}

type SessionManager struct {
	sync.Map
}

func (sm *SessionManager) GetSession(id string) *Session {
	session, exists := sm.Load(id)
	if !exists {
		return nil
	}
	return session.(*Session)
}

func (sm *SessionManager) AddSession(session *Session) {
	sm.Store(session.ID, session)
}

func (sm *SessionManager) AllSessions() []*Session {
	var sessions []*Session
	sm.Range(func(_, value any) bool {
		sessions = append(sessions, value.(*Session))
		return true
	})
	return sessions
}

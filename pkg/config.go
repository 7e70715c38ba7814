package pkg

// ProjectConfig is the contents of liftoff.json in a project directory.
type ProjectConfig struct {
	Idea      string `json:"idea,omitempty"`
	Kind      string `json:"kind,omitempty"`
	RepoName  string `json:"repo_name,omitempty"`
	PitchDeck bool   `json:"pitch_deck,omitempty"`
	Document  bool   `json:"document,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

package pkg

type GenerateRequest struct {
	Idea      string `json:"idea"`
	Kind      string `json:"kind"`
	RepoName  string `json:"repo_name,omitempty"`
	PitchDeck bool   `json:"pitch_deck,omitempty"`
	Document  bool   `json:"document,omitempty"`
}

type GenerateResponse struct {
	ID           string `json:"id"`
	Code         string `json:"code"`
	Requirements string `json:"requirements"`
}

type Session struct {
	ID       string `json:"id,omitempty"`
	Idea     string `json:"idea,omitempty"`
	Kind     string `json:"kind,omitempty"`
	RepoName string `json:"repo_name,omitempty"`
	Status   string `json:"status,omitempty"`
	RepoURL  string `json:"repo_url,omitempty"`
	AppName  string `json:"app_name,omitempty"`
	AppURL   string `json:"app_url,omitempty"`
}

type DeploymentEvent struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type ArtifactLinks struct {
	PitchDeckURL string `json:"pitch_deck_url,omitempty"`
	DocumentURL  string `json:"document_url,omitempty"`
}

type Info struct {
	Version string   `json:"version"`
	Kinds   []string `json:"kinds"`
}

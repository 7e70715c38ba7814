package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"liftoff/pkg"
)

// platformSecretName is the repository secret the CI workflow authenticates
// with when it pushes and releases the container image.
const platformSecretName = "HEROKU_API_KEY"

type DeployResponse struct {
	Session pkg.Session `json:"session"`
}

type DeploymentLock struct {
	mu       sync.Mutex
	deployed map[string]context.CancelFunc
}

func NewDeploymentLock() *DeploymentLock {
	return &DeploymentLock{
		deployed: make(map[string]context.CancelFunc),
	}
}

func (dl *DeploymentLock) StartDeployment(id string, ctx context.Context) (context.Context, error) {
	dl.mu.Lock()
	defer dl.mu.Unlock()

	if _, exists := dl.deployed[id]; exists {
		return nil, fmt.Errorf("session %s is already being deployed", id)
	}

	ctx, cancel := context.WithCancel(ctx)
	dl.deployed[id] = cancel

	return ctx, nil
}

func (dl *DeploymentLock) CompleteDeployment(id string) {
	dl.mu.Lock()
	defer dl.mu.Unlock()

	if cancel, exists := dl.deployed[id]; exists {
		cancel()
		delete(dl.deployed, id)
	}
}

var deploymentLock = NewDeploymentLock()

// DeployHandler runs the second half of the sequence for a generated
// session: publish the repository, provision the platform secret, create the
// platform app, commit and dispatch the CI workflow, wait for the release,
// then mark the ledger row done. Progress is streamed as SSE stage events.
// Remote side effects committed before a failure stay in place.
func (s *Server) DeployHandler(w http.ResponseWriter, r *http.Request) {
	session := s.sessions.GetSession(r.PathValue("id"))
	if session == nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	code, requirements := session.Generated()
	if code == "" {
		http.Error(w, "No code to deploy, generate it first", http.StatusBadRequest)
		return
	}

	if status := session.Status(); status != StatusGenerated {
		http.Error(w, fmt.Sprintf("Session is %s, expected %s", status, StatusGenerated), http.StatusBadRequest)
		return
	}

	ctx, err := deploymentLock.StartDeployment(session.ID, r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	defer deploymentLock.CompleteDeployment(session.ID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported!", http.StatusInternalServerError)
		return
	}

	eventChannel := make(chan pkg.DeploymentEvent, 10)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			select {
			case event, ok := <-eventChannel:
				if !ok {
					return
				}

				eventJSON, err := json.Marshal(event)
				if err != nil {
					fmt.Fprintf(w, "data: %s\n\n", err.Error())
					flusher.Flush()
					return
				}

				fmt.Fprintf(w, "data: %s\n\n", eventJSON)
				flusher.Flush()
			case <-ctx.Done():
				return
			}
		}
	}()

	fail := func(message string, err error) {
		s.Logger.Errorf("%s: %v", message, err)
		session.SetStatus(StatusFailed)
		eventChannel <- pkg.DeploymentEvent{
			Stage:   "error",
			Message: message,
			Error:   err.Error(),
		}
		close(eventChannel)
		wg.Wait()
	}

	s.Logger.Infow("deploying session", "id", session.ID, "repo", session.RepoName)

	session.SetStatus(StatusPublishing)
	eventChannel <- pkg.DeploymentEvent{
		Stage:   "publishing",
		Message: "Creating repository",
	}

	repo, err := s.repos.CreateRepository(ctx, session.RepoName)
	if err != nil {
		fail("Failed to create repository", err)
		return
	}
	session.SetRepo(repo)

	eventChannel <- pkg.DeploymentEvent{
		Stage:   "publishing",
		Message: fmt.Sprintf("Repository %s created, pushing code", repo.FullName()),
	}

	for _, file := range generatedFileSet(code, requirements, session.Kind) {
		if err := s.repos.CommitFile(ctx, repo, file.Path, file.Message, file.Content); err != nil {
			fail(fmt.Sprintf("Failed to push %s", file.Path), err)
			return
		}
	}

	session.SetStatus(StatusProvisioning)
	eventChannel <- pkg.DeploymentEvent{
		Stage:   "secret-provisioning",
		Message: "Provisioning platform secret",
	}

	if err := s.repos.ProvisionSecret(ctx, repo, platformSecretName, s.config.HerokuAPIKey); err != nil {
		fail("Failed to provision secret", err)
		return
	}

	session.SetStatus(StatusDeploying)
	eventChannel <- pkg.DeploymentEvent{
		Stage:   "deploying",
		Message: "Creating platform app",
	}

	// The platform app must exist before the CI workflow lands, a failed
	// creation halts the sequence with nothing queued to deploy.
	app, err := s.platform.CreateApp(ctx, DeriveAppName(repo.Name))
	if err != nil {
		fail("Failed to create platform app", err)
		return
	}
	session.SetApp(app.Name, app.URL)

	if err := s.repos.CommitFile(ctx, repo, workflowFilePath, "add deploy workflow", workflowFile(app.Name)); err != nil {
		fail("Failed to push workflow", err)
		return
	}

	if err := s.repos.DispatchWorkflow(ctx, repo, workflowFileName); err != nil {
		fail("Failed to dispatch workflow", err)
		return
	}

	eventChannel <- pkg.DeploymentEvent{
		Stage:   "deploying",
		Message: fmt.Sprintf("Waiting for %s to release", app.Name),
	}

	if err := s.platform.WaitForRelease(ctx, app.Name); err != nil {
		fail("Deployment did not release", err)
		return
	}

	if err := s.ledger.MarkDone(ctx, session.ID, repo.HTMLURL, app.URL); err != nil {
		fail("Failed to update ledger", err)
		return
	}

	session.SetStatus(StatusDeployed)

	if session.PitchDeck || session.Document {
		err := s.webhook.Trigger(ctx, WebhookPayload{
			UniqueID:  session.ID,
			Prompt:    session.Idea,
			PitchDeck: session.PitchDeck,
			Document:  session.Document,
		})
		if err != nil {
			// Auxiliary documents are best effort, the deployment stands.
			s.Logger.Errorf("Failed to trigger webhook: %v", err)
			eventChannel <- pkg.DeploymentEvent{
				Stage:   "webhook",
				Message: "Failed to trigger auxiliary document generation",
				Error:   err.Error(),
			}
		} else {
			eventChannel <- pkg.DeploymentEvent{
				Stage:   "webhook",
				Message: "Auxiliary document generation triggered",
			}
		}
	}

	responseJSON, err := json.Marshal(DeployResponse{
		Session: session.Snapshot(),
	})
	if err != nil {
		fail("Failed to marshal deploy response", err)
		return
	}

	eventChannel <- pkg.DeploymentEvent{
		Stage:   "complete",
		Message: string(responseJSON),
	}

	s.Logger.Infow("session deployed", "id", session.ID, "app", app.Name, "url", app.URL)

	close(eventChannel)

	// make sure all the events are flushed
	wg.Wait()
}

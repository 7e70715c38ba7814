package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/go-github/v68/github"
	"go.uber.org/zap"
)

// RemoteRepo identifies a repository created on the source host for one
// deployment attempt.
type RemoteRepo struct {
	Owner   string
	Name    string
	HTMLURL string
	Branch  string
}

func (r *RemoteRepo) FullName() string {
	return fmt.Sprintf("%s/%s", r.Owner, r.Name)
}

// RepoHost is the slice of the source-hosting API the deployment sequence
// needs: repository creation, per-file commits, secret provisioning and
// workflow dispatch.
type RepoHost interface {
	CreateRepository(ctx context.Context, name string) (*RemoteRepo, error)
	CommitFile(ctx context.Context, repo *RemoteRepo, path, message, content string) error
	ProvisionSecret(ctx context.Context, repo *RemoteRepo, name, value string) error
	DispatchWorkflow(ctx context.Context, repo *RemoteRepo, fileName string) error
}

type GitHubHost struct {
	client *github.Client
	logger *zap.SugaredLogger
}

func NewGitHubHost(token string, logger *zap.SugaredLogger) *GitHubHost {
	return &GitHubHost{
		client: github.NewClient(nil).WithAuthToken(token),
		logger: logger,
	}
}

// CreateRepository creates a repository under the authenticated user. When
// the requested name is already taken an 8 character random suffix is
// appended and creation is attempted once with the new name.
func (g *GitHubHost) CreateRepository(ctx context.Context, name string) (*RemoteRepo, error) {
	user, _, err := g.client.Users.Get(ctx, "")
	if err != nil {
		return nil, wrapErr(ErrKindPublish, "resolve authenticated user", err)
	}
	owner := user.GetLogin()

	taken, err := g.repositoryExists(ctx, owner, name)
	if err != nil {
		return nil, err
	}

	if taken {
		suffixed := fmt.Sprintf("%s-%s", name, randomSuffix())
		g.logger.Infow("repository name taken, uniquifying", "requested", name, "using", suffixed)
		name = suffixed
	}

	created, _, err := g.client.Repositories.Create(ctx, "", &github.Repository{
		Name:    github.Ptr(name),
		Private: github.Ptr(false),
	})
	if err != nil {
		return nil, wrapErr(ErrKindPublish, "create repository", err)
	}

	repo := &RemoteRepo{
		Owner:   owner,
		Name:    created.GetName(),
		HTMLURL: created.GetHTMLURL(),
		Branch:  "main",
	}
	if repo.HTMLURL == "" {
		repo.HTMLURL = fmt.Sprintf("https://github.com/%s", repo.FullName())
	}

	g.logger.Infow("repository created", "repo", repo.FullName())

	return repo, nil
}

func (g *GitHubHost) repositoryExists(ctx context.Context, owner, name string) (bool, error) {
	_, resp, err := g.client.Repositories.Get(ctx, owner, name)
	if err == nil {
		return true, nil
	}
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	return false, wrapErr(ErrKindPublish, "check repository name", err)
}

// CommitFile creates path as its own commit. Each file in the generated set
// goes in separately, a failure part way leaves the repository half
// populated and is surfaced as is, nothing is rolled back.
func (g *GitHubHost) CommitFile(ctx context.Context, repo *RemoteRepo, path, message, content string) error {
	_, _, err := g.client.Repositories.CreateFile(ctx, repo.Owner, repo.Name, path, &github.RepositoryContentFileOptions{
		Message: github.Ptr(message),
		Content: []byte(content),
	})
	if err != nil {
		return wrapErr(ErrKindPublish, fmt.Sprintf("commit %s", path), err)
	}

	g.logger.Infow("file committed", "repo", repo.FullName(), "path", path)

	return nil
}

// DispatchWorkflow triggers the named workflow on the default branch, so no
// extra commit is needed just to produce a push event.
func (g *GitHubHost) DispatchWorkflow(ctx context.Context, repo *RemoteRepo, fileName string) error {
	_, err := g.client.Actions.CreateWorkflowDispatchEventByFileName(ctx, repo.Owner, repo.Name, fileName, github.CreateWorkflowDispatchEventRequest{
		Ref: repo.Branch,
	})
	if err != nil {
		return wrapErr(ErrKindPublish, "dispatch workflow", err)
	}

	return nil
}

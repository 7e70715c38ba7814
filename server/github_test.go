package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"testing"

	"github.com/google/go-github/v68/github"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHost(t *testing.T, mux *http.ServeMux) *GitHubHost {
	t.Helper()

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := github.NewClient(nil)
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	client.BaseURL = base
	client.UploadURL = base

	return &GitHubHost{client: client, logger: zap.NewNop().Sugar()}
}

func TestCreateRepositoryFreshName(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /user", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"login":"octo"}`)
	})
	mux.HandleFunc("GET /repos/octo/demo-app", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	})
	mux.HandleFunc("POST /user/repos", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name string `json:"name"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"name":%q,"html_url":"https://github.com/octo/%s"}`, body.Name, body.Name)
	})

	host := newTestHost(t, mux)

	repo, err := host.CreateRepository(context.Background(), "demo-app")
	require.NoError(t, err)
	require.Equal(t, "demo-app", repo.Name)
	require.Equal(t, "octo", repo.Owner)
	require.Equal(t, "octo/demo-app", repo.FullName())
	require.Equal(t, "main", repo.Branch)
	require.Equal(t, "https://github.com/octo/demo-app", repo.HTMLURL)
}

func TestCreateRepositoryNameCollision(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /user", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"login":"octo"}`)
	})
	mux.HandleFunc("GET /repos/octo/demo-app", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"name":"demo-app"}`)
	})
	mux.HandleFunc("POST /user/repos", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name string `json:"name"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"name":%q}`, body.Name)
	})

	host := newTestHost(t, mux)

	repo, err := host.CreateRepository(context.Background(), "demo-app")
	require.NoError(t, err)
	require.NotEqual(t, "demo-app", repo.Name)
	require.Regexp(t, regexp.MustCompile(`^demo-app-[0-9a-f]{8}$`), repo.Name)
}

func TestCreateRepositoryCreateFails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /user", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"login":"octo"}`)
	})
	mux.HandleFunc("GET /repos/octo/demo-app", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	})
	mux.HandleFunc("POST /user/repos", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"quota exceeded"}`, http.StatusForbidden)
	})

	host := newTestHost(t, mux)

	_, err := host.CreateRepository(context.Background(), "demo-app")
	require.Error(t, err)
	require.Equal(t, ErrKindPublish, KindOf(err))
}

func TestCommitFile(t *testing.T) {
	var gotMessage, gotContent string

	mux := http.NewServeMux()
	mux.HandleFunc("PUT /repos/octo/demo-app/contents/app.py", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Message string `json:"message"`
			Content string `json:"content"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotMessage = body.Message
		gotContent = body.Content
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"content":{"path":"app.py"}}`)
	})

	host := newTestHost(t, mux)
	repo := &RemoteRepo{Owner: "octo", Name: "demo-app", Branch: "main"}

	err := host.CommitFile(context.Background(), repo, "app.py", "Add app.py", "import streamlit\n")
	require.NoError(t, err)
	require.Equal(t, "Add app.py", gotMessage)
	// go-github base64 encodes file content on the wire.
	require.Equal(t, "aW1wb3J0IHN0cmVhbWxpdAo=", gotContent)
}

func TestDispatchWorkflow(t *testing.T) {
	var gotRef string

	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/octo/demo-app/actions/workflows/deploy.yml/dispatches", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Ref string `json:"ref"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotRef = body.Ref
		w.WriteHeader(http.StatusNoContent)
	})

	host := newTestHost(t, mux)
	repo := &RemoteRepo{Owner: "octo", Name: "demo-app", Branch: "main"}

	err := host.DispatchWorkflow(context.Background(), repo, "deploy.yml")
	require.NoError(t, err)
	require.Equal(t, "main", gotRef)
}

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	heroku "github.com/heroku/heroku-go/v5"
	"go.uber.org/zap"
)

func newTestPlatform(t *testing.T, mux *http.ServeMux) *HerokuPlatform {
	t.Helper()

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	service := heroku.NewService(&http.Client{Transport: &heroku.Transport{}})
	service.URL = srv.URL

	return &HerokuPlatform{
		service:      service,
		pollInterval: time.Millisecond,
		pollAttempts: 3,
		logger:       zap.NewNop().Sugar(),
	}
}

func TestDeriveAppName(t *testing.T) {
	tests := []struct {
		repoName string
		base     string
	}{
		{"demo-app", "demo-app"},
		{"My_Cool App!", "mycoolapp"},
		{"a-very-long-repository-name-indeed", "a-very-long-reposito"},
		{"--Weird--", "weird"},
		{"Проект!", "app"},
		{"___", "app"},
	}

	for _, tt := range tests {
		got := DeriveAppName(tt.repoName)
		pattern := regexp.MustCompile(fmt.Sprintf(`^%s-[0-9a-f]{8}$`, regexp.QuoteMeta(tt.base)))
		if !pattern.MatchString(got) {
			t.Fatalf("DeriveAppName(%q) = %q, want match for %s", tt.repoName, got, pattern)
		}
		if len(got) > 30 {
			t.Fatalf("DeriveAppName(%q) = %q exceeds the platform name limit", tt.repoName, got)
		}
	}
}

func TestDeriveAppNameUnique(t *testing.T) {
	if DeriveAppName("demo-app") == DeriveAppName("demo-app") {
		t.Fatal("two derived names for the same repository should differ")
	}
}

func TestCreateApp(t *testing.T) {
	var gotStack string

	mux := http.NewServeMux()
	mux.HandleFunc("POST /apps", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name  string `json:"name"`
			Stack string `json:"stack"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("bad create body: %v", err)
		}
		gotStack = body.Stack
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"name":%q,"web_url":"https://%s.herokuapp.com/"}`, body.Name, body.Name)
	})

	platform := newTestPlatform(t, mux)

	app, err := platform.CreateApp(context.Background(), "demo-app-12345678")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if app.Name != "demo-app-12345678" {
		t.Fatalf("unexpected app name %q", app.Name)
	}
	if app.URL != "https://demo-app-12345678.herokuapp.com/" {
		t.Fatalf("unexpected app url %q", app.URL)
	}
	if gotStack != "container" {
		t.Fatalf("expected container stack, got %q", gotStack)
	}
}

func TestCreateAppRejected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /apps", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"id":"invalid_params","message":"Name is already taken"}`)
	})

	platform := newTestPlatform(t, mux)

	_, err := platform.CreateApp(context.Background(), "demo-app")
	if err == nil {
		t.Fatal("expected error")
	}
	if KindOf(err) != ErrKindPlatform {
		t.Fatalf("expected platform error, got %v", err)
	}
}

func TestWaitForReleaseSucceeds(t *testing.T) {
	polls := 0

	mux := http.NewServeMux()
	mux.HandleFunc("GET /apps/demo/releases", func(w http.ResponseWriter, r *http.Request) {
		polls++
		if polls < 2 {
			fmt.Fprint(w, `[{"status":"pending","version":1}]`)
			return
		}
		fmt.Fprint(w, `[{"status":"succeeded","version":1}]`)
	})

	platform := newTestPlatform(t, mux)

	if err := platform.WaitForRelease(context.Background(), "demo"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if polls < 2 {
		t.Fatalf("expected at least two polls, got %d", polls)
	}
}

func TestWaitForReleaseFails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /apps/demo/releases", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"status":"failed","version":3}]`)
	})

	platform := newTestPlatform(t, mux)

	err := platform.WaitForRelease(context.Background(), "demo")
	if err == nil {
		t.Fatal("expected error for failed release")
	}
	if KindOf(err) != ErrKindPlatform {
		t.Fatalf("expected platform error, got %v", err)
	}
}

func TestWaitForReleaseGivesUp(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /apps/demo/releases", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"status":"pending","version":1}]`)
	})

	platform := newTestPlatform(t, mux)

	err := platform.WaitForRelease(context.Background(), "demo")
	if err == nil {
		t.Fatal("expected error after exhausting poll attempts")
	}
	if KindOf(err) != ErrKindPlatform {
		t.Fatalf("expected platform error, got %v", err)
	}
}

func TestWaitForReleaseHonorsContext(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /apps/demo/releases", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"status":"pending","version":1}]`)
	})

	platform := newTestPlatform(t, mux)
	platform.pollInterval = time.Second
	platform.pollAttempts = 100

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := platform.WaitForRelease(ctx, "demo")
	if err == nil {
		t.Fatal("expected error after context cancellation")
	}
}

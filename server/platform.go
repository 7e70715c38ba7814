package server

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	heroku "github.com/heroku/heroku-go/v5"
	"go.uber.org/zap"
)

// PlatformApp is the application created on the PaaS for one deployment.
type PlatformApp struct {
	Name string
	URL  string
}

// Platform is the slice of the PaaS API the deployment sequence needs.
type Platform interface {
	CreateApp(ctx context.Context, name string) (*PlatformApp, error)
	WaitForRelease(ctx context.Context, appName string) error
}

type HerokuPlatform struct {
	service      *heroku.Service
	pollInterval time.Duration
	pollAttempts int
	logger       *zap.SugaredLogger
}

func NewHerokuPlatform(config Config, logger *zap.SugaredLogger) *HerokuPlatform {
	transport := &heroku.Transport{Password: config.HerokuAPIKey}

	return &HerokuPlatform{
		service:      heroku.NewService(&http.Client{Transport: transport}),
		pollInterval: config.ReleasePollInterval,
		pollAttempts: config.ReleasePollAttempts,
		logger:       logger,
	}
}

var disallowedAppNameChars = regexp.MustCompile(`[^a-z0-9-]`)

// DeriveAppName turns a repository name into a valid platform app name:
// lowercased, stripped of disallowed characters, truncated to 20 characters
// and uniquified with an 8 character random suffix.
func DeriveAppName(repoName string) string {
	base := strings.ToLower(repoName)
	base = disallowedAppNameChars.ReplaceAllString(base, "")
	if len(base) > 20 {
		base = base[:20]
	}
	base = strings.Trim(base, "-")
	if base == "" {
		// A name of only disallowed characters would leave a leading dash,
		// which the platform rejects.
		base = "app"
	}

	return fmt.Sprintf("%s-%s", base, randomSuffix())
}

func (p *HerokuPlatform) CreateApp(ctx context.Context, name string) (*PlatformApp, error) {
	stack := "container"

	app, err := p.service.AppCreate(ctx, heroku.AppCreateOpts{
		Name:  &name,
		Stack: &stack,
	})
	if err != nil {
		return nil, wrapErr(ErrKindPlatform, "create app", err)
	}

	platformApp := &PlatformApp{Name: app.Name, URL: app.WebURL}
	if platformApp.Name == "" {
		platformApp.Name = name
	}
	if platformApp.URL == "" {
		platformApp.URL = fmt.Sprintf("https://%s.herokuapp.com", platformApp.Name)
	}

	p.logger.Infow("platform app created", "app", platformApp.Name)

	return platformApp, nil
}

// WaitForRelease polls the app's release list until a release reaches a
// terminal status, for at most pollAttempts rounds.
func (p *HerokuPlatform) WaitForRelease(ctx context.Context, appName string) error {
	for attempt := 0; attempt < p.pollAttempts; attempt++ {
		releases, err := p.service.ReleaseList(ctx, appName, &heroku.ListRange{
			Field:      "version",
			Max:        1,
			Descending: true,
		})
		if err != nil {
			p.logger.Warnw("release poll failed", "app", appName, "error", err)
		}

		if len(releases) > 0 {
			switch releases[0].Status {
			case "succeeded":
				return nil
			case "failed":
				return wrapErr(ErrKindPlatform, "release", fmt.Errorf("release v%d failed", releases[0].Version))
			}
		}

		select {
		case <-ctx.Done():
			return wrapErr(ErrKindPlatform, "wait for release", ctx.Err())
		case <-time.After(p.pollInterval):
		}
	}

	return wrapErr(ErrKindPlatform, "wait for release", fmt.Errorf("no release reached a terminal status after %d attempts", p.pollAttempts))
}

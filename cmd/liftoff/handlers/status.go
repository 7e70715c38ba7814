package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/briandowns/spinner"

	"liftoff/cmd/liftoff/models"
	"liftoff/pkg"
)

func StatusCommand(seekingHelp bool, config models.Config, info pkg.Info, loadingSpinner *spinner.Spinner, spinnerWriter *models.SpinnerLine, args []string) error {
	if seekingHelp {
		fmt.Println(`Usage:
		  liftoff status [session-id]

		Liftoff will show the session for the current project, or every
		session the daemon knows about when "all" is given.`)
		return nil
	}

	if len(args) == 1 && args[0] == "all" {
		resp, err := http.Get(config.DaemonURL + "/sessions")
		if err != nil {
			return fmt.Errorf("failed to get sessions: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			responseBody, err := io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("error reading response body: %v", err)
			}

			responseBody = []byte(strings.TrimSuffix(string(responseBody), "\n"))

			return fmt.Errorf("status failed: %s", responseBody)
		}

		var sessions []pkg.Session
		if err := json.NewDecoder(resp.Body).Decode(&sessions); err != nil {
			return fmt.Errorf("failed to decode sessions: %v", err)
		}

		if len(sessions) == 0 {
			fmt.Println("No sessions found")
			return nil
		}

		for _, session := range sessions {
			fmt.Printf("%s %s (%s)\n", session.ID, session.Kind, session.Status)
		}

		return nil
	}

	sessionID, err := GetSessionID("status", args)
	if err != nil {
		return err
	}

	resp, err := http.Get(config.DaemonURL + "/sessions/" + sessionID)
	if err != nil {
		return fmt.Errorf("failed to get session: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		responseBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("error reading response body: %v", err)
		}

		responseBody = []byte(strings.TrimSuffix(string(responseBody), "\n"))

		return fmt.Errorf("status failed: %s", responseBody)
	}

	var session pkg.Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return fmt.Errorf("failed to decode session: %v", err)
	}

	fmt.Printf("%s %s (%s)\n", session.ID, session.Kind, session.Status)
	if session.RepoURL != "" {
		fmt.Printf("  repository: %s\n", session.RepoURL)
	}
	if session.AppURL != "" {
		fmt.Printf("  app:        %s\n", session.AppURL)
	}

	return nil
}

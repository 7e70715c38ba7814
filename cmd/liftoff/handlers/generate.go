package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/briandowns/spinner"

	"liftoff/cmd/liftoff/models"
	"liftoff/pkg"
)

func GenerateCommand(seekingHelp bool, config models.Config, info pkg.Info, loadingSpinner *spinner.Spinner, spinnerWriter *models.SpinnerLine, args []string) error {
	if seekingHelp {
		fmt.Println(`Usage:
		  liftoff generate

		Liftoff will generate app code for the idea in liftoff.json and
		record the session id for a later deploy.`)
		return nil
	}

	projectConfig, err := GetProjectConfig()
	if err != nil {
		return err
	}

	loadingSpinner.Suffix = " Generating code"
	loadingSpinner.Start()

	body, err := json.Marshal(pkg.GenerateRequest{
		Idea:      projectConfig.Idea,
		Kind:      projectConfig.Kind,
		RepoName:  projectConfig.RepoName,
		PitchDeck: projectConfig.PitchDeck,
		Document:  projectConfig.Document,
	})
	if err != nil {
		return fmt.Errorf("failed to encode request: %v", err)
	}

	resp, err := http.Post(config.DaemonURL+"/generate", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to generate code: %v", err)
	}
	defer resp.Body.Close()

	loadingSpinner.Stop()

	if resp.StatusCode != http.StatusOK {
		responseBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("error reading response body: %v", err)
		}

		responseBody = []byte(strings.TrimSuffix(string(responseBody), "\n"))

		return fmt.Errorf("generate failed: %s", responseBody)
	}

	var generateResponse pkg.GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&generateResponse); err != nil {
		return fmt.Errorf("failed to decode response: %v", err)
	}

	fmt.Printf("Generated app.py:\n\n%s\n\nrequirements.txt:\n\n%s\n\n", generateResponse.Code, generateResponse.Requirements)

	projectConfig.SessionID = generateResponse.ID
	if err := SaveProjectConfig(projectConfig); err != nil {
		return err
	}

	fmt.Printf("Session %s ready, run liftoff deploy to ship it\n", generateResponse.ID)

	return nil
}

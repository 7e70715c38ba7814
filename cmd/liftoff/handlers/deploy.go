package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/briandowns/spinner"

	"liftoff/cmd/liftoff/models"
	"liftoff/pkg"
)

type deployResponse struct {
	Session pkg.Session `json:"session"`
}

func DeployCommand(seekingHelp bool, config models.Config, info pkg.Info, loadingSpinner *spinner.Spinner, spinnerWriter *models.SpinnerLine, args []string) error {
	if seekingHelp {
		fmt.Println(`Usage:
		  liftoff deploy [session-id]

		Liftoff will publish the generated code to a repository, provision
		the platform secret and deploy the app, streaming progress as it
		goes.`)
		return nil
	}

	sessionID, err := GetSessionID("deploy", args)
	if err != nil {
		return err
	}

	loadingSpinner.Suffix = " Deploying"
	loadingSpinner.Start()

	resp, err := http.Post(config.DaemonURL+"/deploy/"+sessionID, "application/json", nil)
	if err != nil {
		return fmt.Errorf("failed to send request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		loadingSpinner.Stop()

		responseBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("error reading response body: %v", err)
		}

		responseBody = []byte(strings.TrimSuffix(string(responseBody), "\n"))

		return fmt.Errorf("deploy failed: %s", responseBody)
	}

	stageEcho := models.NewStageEcho(spinnerWriter)

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		var event pkg.DeploymentEvent
		if err := json.Unmarshal([]byte(line[6:]), &event); err != nil {
			continue
		}

		switch event.Stage {
		case "complete":
			loadingSpinner.Stop()

			var response deployResponse
			if err := json.Unmarshal([]byte(event.Message), &response); err != nil {
				return fmt.Errorf("failed to parse deployment response: %v", err)
			}

			fmt.Printf("App deployed successfully!\n")
			fmt.Printf("  repository: %s\n", response.Session.RepoURL)
			fmt.Printf("  app:        %s\n", response.Session.AppURL)

			return nil
		case "error":
			loadingSpinner.Stop()
			return fmt.Errorf("deployment failed: %s: %s", event.Message, event.Error)
		case "webhook":
			if event.Error != "" {
				stageEcho.Printf("warning: %s: %s\n", event.Message, event.Error)
			} else {
				stageEcho.Printf("%s\n", event.Message)
			}
		default:
			stageEcho.Printf("%s\n", event.Message)
		}
	}

	loadingSpinner.Stop()

	return fmt.Errorf("deploy stream ended without a result")
}

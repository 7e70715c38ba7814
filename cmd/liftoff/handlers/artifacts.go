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

func ArtifactsCommand(seekingHelp bool, config models.Config, info pkg.Info, loadingSpinner *spinner.Spinner, spinnerWriter *models.SpinnerLine, args []string) error {
	if seekingHelp {
		fmt.Println(`Usage:
		  liftoff artifacts [session-id]

		Liftoff will fetch download links for the pitch deck and document
		generated for a session, once the external automation has produced
		them.`)
		return nil
	}

	sessionID, err := GetSessionID("artifacts", args)
	if err != nil {
		return err
	}

	resp, err := http.Get(config.DaemonURL + "/artifacts/" + sessionID)
	if err != nil {
		return fmt.Errorf("failed to get artifacts: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		responseBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("error reading response body: %v", err)
		}

		responseBody = []byte(strings.TrimSuffix(string(responseBody), "\n"))

		return fmt.Errorf("artifacts failed: %s", responseBody)
	}

	var links pkg.ArtifactLinks
	if err := json.NewDecoder(resp.Body).Decode(&links); err != nil {
		return fmt.Errorf("failed to decode artifact links: %v", err)
	}

	if links.PitchDeckURL == "" && links.DocumentURL == "" {
		fmt.Println("No artifacts ready yet, try again later")
		return nil
	}

	if links.PitchDeckURL != "" {
		fmt.Printf("Pitch deck: %s\n", links.PitchDeckURL)
	}
	if links.DocumentURL != "" {
		fmt.Printf("Document:   %s\n", links.DocumentURL)
	}

	return nil
}

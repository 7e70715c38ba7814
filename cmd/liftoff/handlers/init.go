package handlers

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/briandowns/spinner"

	"liftoff/cmd/liftoff/models"
	"liftoff/pkg"
)

func InitCommand(seekingHelp bool, config models.Config, info pkg.Info, loadingSpinner *spinner.Spinner, spinnerWriter *models.SpinnerLine, args []string) error {
	if seekingHelp {
		fmt.Println(`Usage:
		  liftoff init

		Liftoff will ask for your app idea and write liftoff.json in the
		current directory.`)
		return nil
	}

	var projectConfig pkg.ProjectConfig
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("Describe your app idea:")
	idea, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read idea: %v", err)
	}
	projectConfig.Idea = strings.TrimSpace(idea)
	if projectConfig.Idea == "" {
		return fmt.Errorf("an app idea is required")
	}

	fmt.Printf("What kind of app? (%s)\n", strings.Join(info.Kinds, ", "))
	var response string
	fmt.Scanln(&response)
	projectConfig.Kind = strings.TrimSpace(response)

	fmt.Println("Repository name? (leave empty for the daemon default)")
	response = ""
	fmt.Scanln(&response)
	projectConfig.RepoName = strings.TrimSpace(response)

	fmt.Print("Generate a pitch deck? [y/N] ")
	response = ""
	fmt.Scanln(&response)
	projectConfig.PitchDeck = strings.ToLower(response) == "y"

	fmt.Print("Generate a document? [y/N] ")
	response = ""
	fmt.Scanln(&response)
	projectConfig.Document = strings.ToLower(response) == "y"

	if err := SaveProjectConfig(projectConfig); err != nil {
		return err
	}

	fmt.Println("Successfully initialized project")

	return nil
}

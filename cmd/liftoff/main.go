package main

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/briandowns/spinner"

	"liftoff/cmd/liftoff/handlers"
	"liftoff/cmd/liftoff/models"
	"liftoff/pkg"
)

//go:embed config.json
var defaultConfig []byte

var configPath = filepath.Join(os.Getenv("HOME"), "/.config/liftoff")

var helpStr = `Usage:
  liftoff <command>

Available Commands:
  init        Initialize a new project
  generate    Generate app code from the project idea
  deploy      Publish and deploy the generated app
  status      Show session status
  artifacts   Fetch auxiliary document links

Flags:
  -h, --help   help for liftoff

Use "liftoff <command> --help" for more information about a command.`

var commands = []string{"init", "generate", "deploy", "status", "artifacts"}

// suggestCommand finds the closest known command within a small edit
// distance, for a "did you mean" hint on typos.
func suggestCommand(command string) string {
	best := ""
	bestDistance := 3

	for _, candidate := range commands {
		if distance := levenshtein.ComputeDistance(command, candidate); distance < bestDistance {
			bestDistance = distance
			best = candidate
		}
	}

	return best
}

func runCommand(command string, args []string, config models.Config, info pkg.Info) error {
	seekingHelp := false
	if len(args) > 0 && (args[len(args)-1] == "--help" || args[len(args)-1] == "-h") {
		seekingHelp = true
		args = args[:len(args)-1]
	}

	spinnerLine := models.NewSpinnerLine()

	loadingSpinner := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(spinnerLine))
	defer func() {
		if loadingSpinner.Active() {
			loadingSpinner.Stop()
		}
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, os.Interrupt)
	go func() {
		<-signalChannel
		if loadingSpinner.Active() {
			loadingSpinner.Stop()
		}

		os.Exit(0)
	}()

	switch command {
	case "init":
		return handlers.InitCommand(seekingHelp, config, info, loadingSpinner, spinnerLine, args)
	case "generate":
		return handlers.GenerateCommand(seekingHelp, config, info, loadingSpinner, spinnerLine, args)
	case "deploy":
		return handlers.DeployCommand(seekingHelp, config, info, loadingSpinner, spinnerLine, args)
	case "status":
		return handlers.StatusCommand(seekingHelp, config, info, loadingSpinner, spinnerLine, args)
	case "artifacts":
		return handlers.ArtifactsCommand(seekingHelp, config, info, loadingSpinner, spinnerLine, args)
	default:
		if suggestion := suggestCommand(command); suggestion != "" {
			return fmt.Errorf("unknown command: %s, did you mean %q?\n%s", command, suggestion, helpStr)
		}
		return fmt.Errorf("unknown command: %s\n%s", command, helpStr)
	}
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println(helpStr)
		os.Exit(1)
	}

	if os.Args[1] == "--help" || os.Args[1] == "-h" {
		fmt.Println(helpStr)
		os.Exit(0)
	}

	if _, err := os.Stat(filepath.Join(configPath, "config.json")); err != nil {
		if err := os.MkdirAll(configPath, 0755); err != nil {
			fmt.Printf("Failed to create config directory: %v\n", err)
			os.Exit(1)
		}

		if err = os.WriteFile(filepath.Join(configPath, "config.json"), defaultConfig, 0644); err != nil {
			fmt.Printf("Failed to write config file: %v\n", err)
			os.Exit(1)
		}
	}

	var config models.Config
	configBytes, err := os.ReadFile(filepath.Join(configPath, "config.json"))
	if err != nil {
		fmt.Printf("Failed to read config file: %v\n", err)
		os.Exit(1)
	}

	if err := json.Unmarshal(configBytes, &config); err != nil {
		fmt.Printf("Failed to parse config file: %v\n", err)
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	resp, err := http.Get(config.DaemonURL + "/heartbeat")
	if err != nil {
		fmt.Println("Failed to connect to daemon")
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		fmt.Println("Failed to connect to daemon")
		os.Exit(1)
	}

	var info pkg.Info
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		fmt.Printf("Failed to decode info: %v\n", err)
		os.Exit(1)
	}

	err = runCommand(command, args, config, info)
	if err != nil {
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}
}

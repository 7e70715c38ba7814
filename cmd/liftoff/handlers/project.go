package handlers

import (
	"encoding/json"
	"fmt"
	"os"

	"liftoff/pkg"
)

func GetProjectConfig() (pkg.ProjectConfig, error) {
	var config pkg.ProjectConfig

	configFile, err := os.Open("liftoff.json")
	if err != nil {
		if os.IsNotExist(err) {
			return config, fmt.Errorf("no liftoff.json found, please run liftoff init first")
		}
		return config, fmt.Errorf("failed to open liftoff.json: %v", err)
	}
	defer configFile.Close()

	if err := json.NewDecoder(configFile).Decode(&config); err != nil {
		return config, fmt.Errorf("failed to decode liftoff.json: %v", err)
	}

	return config, nil
}

func SaveProjectConfig(config pkg.ProjectConfig) error {
	configBytes, err := json.MarshalIndent(config, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode project config: %v", err)
	}

	if err := os.WriteFile("liftoff.json", configBytes, 0644); err != nil {
		return fmt.Errorf("failed to write liftoff.json: %v", err)
	}

	return nil
}

// GetSessionID resolves the session a command operates on: an explicit
// argument wins, otherwise the id recorded by the last generate run.
func GetSessionID(command string, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}

	config, err := GetProjectConfig()
	if err != nil {
		return "", err
	}

	if config.SessionID == "" {
		return "", fmt.Errorf("usage: liftoff %[1]s <session id>, or run liftoff generate first", command)
	}

	return config.SessionID, nil
}

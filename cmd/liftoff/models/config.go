package models

type Config struct {
	DaemonURL string `json:"daemon_url"`
}

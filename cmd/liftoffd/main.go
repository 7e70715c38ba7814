package main

import (
	"net/http"
	_ "net/http/pprof"

	"liftoff/server"
)

func main() {
	liftoffServer := server.NewServer()
	defer liftoffServer.Stop()

	http.HandleFunc("POST /generate", liftoffServer.GenerateHandler)
	http.HandleFunc("POST /deploy/{id}", liftoffServer.DeployHandler)
	http.HandleFunc("GET /sessions", liftoffServer.SessionsHandler)
	http.HandleFunc("GET /sessions/{id}", liftoffServer.SessionHandler)
	http.HandleFunc("GET /artifacts/{id}", liftoffServer.ArtifactsHandler)
	http.HandleFunc("GET /heartbeat", liftoffServer.DaemonInfoHandler)

	liftoffServer.Logger.Infof("Liftoffd started on http://%s", liftoffServer.Addr())
	err := http.ListenAndServe(liftoffServer.Addr(), nil)
	if err != nil {
		liftoffServer.Logger.Fatalf("Failed to start server: %v", err)
	}
}

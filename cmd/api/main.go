package main

import (
	"log"

	"sentiment-scoop/internal/bootstrap"
	"sentiment-scoop/internal/shared/config"
	"sentiment-scoop/internal/shared/server"
)

func main() {
	cfg := config.Load()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}
	app.Start()
	defer app.Stop()

	addr := server.Addr(cfg.Port)
	log.Printf("Starting API server on %s", addr)

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

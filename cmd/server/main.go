package main

import (
	"context"
	"log"

	"github.com/aguerraochoa/Speakance-sub000/internal/server"
	"github.com/aguerraochoa/Speakance-sub000/internal/server/config"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app, err := server.NewApp(cfg)
	if err != nil {
		log.Fatalf("init: %v", err)
	}

	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("run: %v", err)
	}
}

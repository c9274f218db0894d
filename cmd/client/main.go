package main

import (
	"context"
	"log"

	"github.com/aguerraochoa/Speakance-sub000/internal/client/cli"
	"github.com/aguerraochoa/Speakance-sub000/internal/client/config"
)

func main() {
	ctx := context.Background()

	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}

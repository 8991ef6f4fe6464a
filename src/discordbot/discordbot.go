package main

import (
	"context"
	"log"

	"github.com/stake-plus/ideabox/src/api/config"
	"github.com/stake-plus/ideabox/src/app"
)

func main() {
	cfg := config.MustLoad()
	if err := app.Run(context.Background(), cfg, app.Surfaces{Bot: true}); err != nil {
		log.Fatalf("discordbot: %v", err)
	}
}

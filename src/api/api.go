package main

import (
	"context"
	"log"

	"github.com/stake-plus/ideabox/src/api/config"
	"github.com/stake-plus/ideabox/src/app"
)

func main() {
	cfg := config.MustLoad()
	if err := app.Run(context.Background(), cfg, app.Surfaces{API: true}); err != nil {
		log.Fatalf("api: %v", err)
	}
}

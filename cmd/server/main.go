package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"hrpilot/internal/app/server"
	"hrpilot/internal/platform/config"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx := context.Background()

	app, err := server.New(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()

	log.Printf("hrpilot server listening on %s", cfg.Addr)
	if err := app.Run(ctx); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

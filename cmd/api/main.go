package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/skillstream/study-platform/internal/app"
	"github.com/skillstream/study-platform/internal/config"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load("configs/.env"); err != nil {
			log.Printf("no .env file loaded: %v", err)
		}
	}

	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	instance, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	return instance.Run(ctx)
}

package main

import (
	"log"

	"github.com/skozushko/brand-ambassador/app"
	"github.com/skozushko/brand-ambassador/app/config"
)

func main() {
	app.MustInitDB()
	app.InitStripe()
	app.MustInitStorage()

	router, err := app.NewRouter()
	if err != nil {
		log.Fatalf("failed to initialize router: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	router.Run("0.0.0.0:" + cfg.Server.Port)
}

package main

import (
	"context"
	"log"
	"net/http"

	"github.com/veritasos/ordem-backend/internal/auth"
	"github.com/veritasos/ordem-backend/internal/campaign"
	"github.com/veritasos/ordem-backend/internal/config"
	"github.com/veritasos/ordem-backend/internal/db"
	"github.com/veritasos/ordem-backend/internal/generator"
	"github.com/veritasos/ordem-backend/internal/middleware"
	"github.com/veritasos/ordem-backend/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	db.Connect(cfg.DBOptions())
	auth.Init()
	campaign.Init()

	if cfg.SeedDefaultMaster {
		if _, created, err := auth.EnsureMaster(context.Background(), auth.DefaultMasterUsername, auth.DefaultMasterPassword); err != nil {
			log.Fatal("Failed to seed default master: ", err)
		} else if created {
			log.Printf("[auth] created default master %q; change its password", auth.DefaultMasterUsername)
		}
	}

	if cfg.GeminiAPIKey == "" {
		log.Println("[generator] GEMINI_API_KEY not set; /generate-npc will answer 500")
	}
	gen := generator.NewService(
		generator.NewClient(cfg.GeminiAPIKey, cfg.GeminiBaseURL),
		campaign.ContextLoader{},
		generator.Options{
			APIKey:  cfg.GeminiAPIKey,
			Models:  generator.ResolveModels(cfg.GeminiModel, cfg.GeneratorModels),
			Timeout: cfg.GeneratorTimeout,
		},
	)
	log.Printf("[generator] model order: %v", gen.Models())

	r := server.NewRouter(server.Deps{
		AllowedOrigins:  cfg.AllowedOrigins,
		SessionTTL:      cfg.SessionTTL,
		Generator:       gen,
		GenerateLimiter: middleware.PerMinute(cfg.RatePerMinute),
	})

	log.Printf("Server listening on port :%s...", cfg.Port)
	if err := http.ListenAndServe("0.0.0.0:"+cfg.Port, r); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"github.com/evoblast/evoblast-backend/arena"
	"github.com/evoblast/evoblast-backend/config"
	"github.com/evoblast/evoblast-backend/handlers"
	"github.com/evoblast/evoblast-backend/repository"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment as-is")
	}

	cfg := config.LoadConfig()
	handlers.SetJWTSecret(cfg.JWTSecret)

	var recorder arena.Recorder
	if cfg.Persistence {
		repository.ConnectToPostgreSQL(cfg)
		repository.ConnectMongoDB(cfg.MongoURI)
		recorder = repository.NewMatchRecorder()
	}

	manager := arena.NewManager(recorder, cfg.RoundSeconds)
	queue := arena.NewQueue(manager, time.Duration(cfg.OfferTimeoutSeconds)*time.Second)
	go queue.Run()

	gateway := handlers.NewGateway(queue, manager, cfg.MaxClients)
	r := handlers.NewRouter(gateway)

	log.Println("Server running on http://localhost:" + cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"crediario/m/internal/api"
	"crediario/m/internal/config"
	"crediario/m/internal/database"
	"crediario/m/internal/ledger"
	"crediario/m/internal/migrations"
	"crediario/m/internal/seed"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	db := database.Connect(cfg.DatabaseDSN)
	defer db.Close()

	migrations.Run(db)
	seed.LoadProducts(db, "assets/produtos.csv")

	svc := ledger.New(db)
	handler := api.New(db, svc, cfg.Secret)

	log.Printf("crediario server starting on :%s", cfg.HTTPPort)
	if err := http.ListenAndServe(":"+cfg.HTTPPort, handler.Router()); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

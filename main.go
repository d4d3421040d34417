package main

import (
	"github.com/apex/log"
	"github.com/joho/godotenv"

	"containerbeheer/common"
	"containerbeheer/config"
	"containerbeheer/ledger"
	"containerbeheer/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn(".env file not found, using system environment variables")
	}

	cfg := config.Load()

	log.Info("Starting the containerbeheer service...")

	db, err := common.DBConnect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := ledger.InitSchema(db); err != nil {
		log.Fatalf("Failed to initialize database schema: %v", err)
	}

	store := ledger.NewMySQLStore(db)

	if err := server.New(cfg, store).Run(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

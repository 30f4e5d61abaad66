package main

import (
	"bank_cards/internal/config" // Custom import path (Config)
	"bank_cards/internal/db"     // Custom import path (Database)
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration
	db.Migrate(cfg.DSN())
}

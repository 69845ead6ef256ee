package main

import (
	"github.com/pixelden/lobbyserver/config"
	"github.com/pixelden/lobbyserver/logger"
	"github.com/pixelden/lobbyserver/persistence"
	"github.com/pixelden/lobbyserver/server"
)

func main() {
	// Initialize logger
	logger.Init()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Session history is optional; the lobby itself is purely in-memory.
	var history persistence.History
	if cfg.Database.Enabled {
		pg := cfg.Database.Postgres
		switch cfg.Database.Driver {
		case "pq":
			history, err = persistence.NewPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
		default:
			history, err = persistence.NewGormPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
		}
		if err != nil {
			logger.Log.Fatalf("Failed to connect to history database: %v", err)
		}
		defer history.Close()
		logger.Log.Info("History database connection successful.")
	}

	// Initialize Lobby Server
	lobbyServer := server.NewLobbyServer(cfg, history)

	// Start Server
	logger.Log.Infof("Starting lobby server on %s", cfg.Server.HTTPAddress)
	if err := lobbyServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}

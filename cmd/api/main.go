package main

import (
	"context"
	"fmt"

	"veloce-backend/internal/app"
	"veloce-backend/internal/config"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("config load: " + err.Error())
	}

	fiberApp, db, rdb, err := app.CreateApp(cfg)
	if err != nil {
		panic("app create: " + err.Error())
	}

	// Verify connections before announcing startup
	if db != nil {
		sqlDB, err := db.DB()
		if err != nil {
			panic("postgres: get DB: " + err.Error())
		}
		if err := sqlDB.Ping(); err != nil {
			panic("postgres connection failed: " + err.Error())
		}
		log.Info().Msg("Postgres connected")
	}
	if rdb != nil {
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			panic("redis connection failed: " + err.Error())
		}
		log.Info().Msg("Redis connected")
	}

	fmt.Printf("Server running at http://localhost:%s\n", cfg.Port)
	fmt.Printf("Health check: http://localhost:%s/health/json\n", cfg.Port)

	if err := fiberApp.Listen(":" + cfg.Port); err != nil {
		panic(err)
	}
}

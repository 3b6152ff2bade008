package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/morgankhalil/VenueConnect-sub003/internal/adapters/postgres"
	"github.com/morgankhalil/VenueConnect-sub003/internal/pkg/config"
)

var upFiles = []string{
	"migrations/001_init_extensions.sql",
	"migrations/002_engine_tables.sql",
}

var downFiles = []string{
	"migrations/002_engine_tables.down.sql",
}

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down>")
	}

	cfg, err := config.Load("venueconnect-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN(), 2)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	switch os.Args[1] {
	case "up":
		runMigrations(ctx, db.Pool, upFiles)
	case "down":
		runMigrations(ctx, db.Pool, downFiles)
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

func runMigrations(ctx context.Context, pool postgres.Pool, files []string) {
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			log.Fatalf("read %s: %v", f, err)
		}

		if _, err := pool.Exec(ctx, string(data)); err != nil {
			log.Fatalf("exec %s: %v", f, err)
		}

		fmt.Printf("OK  %s\n", f)
	}

	log.Println("migrations applied")
}

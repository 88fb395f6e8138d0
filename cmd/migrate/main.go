// migrate applies the embedded schema migrations: go run ./cmd/migrate [-direction up|down].
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"legal-case-platform/backend/internal/config"
	"legal-case-platform/backend/internal/db/migrate"
)

func main() {
	direction := flag.String("direction", migrate.DirectionUp, "Migration direction: up or down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is not set")
		os.Exit(1)
	}

	if err := migrate.Run(cfg.DatabaseURL, *direction); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
	log.Printf("migrations applied (%s)", *direction)
}

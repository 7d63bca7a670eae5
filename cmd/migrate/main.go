// migrate runs DB migrations from embedded SQL; use with ./scripts/migrate.sh or go run ./cmd/migrate.
package main

import (
	"flag"
	"fmt"
	"os"

	"roster-portal/internal/config"
	"roster-portal/internal/db/migrate"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
		os.Exit(1)
	}

	switch *direction {
	case "up":
		err = migrate.Up(cfg.DatabaseURL)
	case "down":
		err = migrate.Down(cfg.DatabaseURL)
	default:
		fmt.Fprintf(os.Stderr, "direction must be up or down, got %q\n", *direction)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/joho/godotenv"

	"journalclub/cmd"
)

func main() {
	// Optional .env for local development; real deployments set env vars.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"sjsage522/cruisewatch/cmd"
	"sjsage522/cruisewatch/logger"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first; it writes to stderr so reports own stdout
	logger.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cmd.ExecuteContext(ctx)
	stop()

	os.Exit(code)
}

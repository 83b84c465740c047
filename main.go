package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/Yulian302/classroom-tokens/docs"
	_ "github.com/joho/godotenv/autoload"
)

// @title Classroom Tokens API
// @version 1.0
// @description OAuth callback receiver and credential store for the classroom bot

// @license.name Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8001
// @BasePath /
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := SetupApp(ctx)
	if err != nil {
		log.Fatalf("failed to initialize app: %v", err)
	}

	router := BuildRouter(app)

	runErr := app.Run(ctx, router)
	app.Shutdown(context.Background())

	if runErr != nil {
		log.Fatalf("server error: %v", runErr)
	}
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/chiehw/todo-api/internal/auth"
	"github.com/chiehw/todo-api/internal/database"
	"github.com/chiehw/todo-api/internal/domain"
	"github.com/chiehw/todo-api/internal/repository"
	"github.com/chiehw/todo-api/internal/server"
	"github.com/chiehw/todo-api/internal/service"

	_ "github.com/joho/godotenv/autoload"
)

func gracefulShutdown(apiServer *http.Server, dbService database.Service, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Println("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// Give in-flight requests 5 seconds to finish.
	ctxTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxTimeout); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}

	if dbService != nil {
		log.Println("Closing database connection pool...")
		if err := dbService.Close(); err != nil {
			log.Printf("Error closing database connection pool: %v", err)
		} else {
			log.Println("Database connection pool closed.")
		}
	}

	log.Println("Server exiting")

	done <- true
}

func main() {
	dbService := database.New()
	gormDB := dbService.GetDB()

	// Auto-migrate the schema. Run via a separate migration command in
	// production.
	log.Println("Running database auto-migration...")
	if err := gormDB.AutoMigrate(&domain.Todo{}); err != nil {
		log.Fatalf("Failed to auto-migrate database: %v", err)
	}
	log.Println("Database auto-migration complete.")

	todoRepo := repository.NewGormTodoRepository(gormDB)
	todoService := service.NewTodoService(todoRepo)

	// The token table stands in for the external auth system that owns
	// user identities.
	authenticator, err := auth.NewStaticTokenAuthenticatorFromEnv()
	if err != nil {
		log.Fatalf("Failed to load API auth tokens: %v", err)
	}

	chiServer := server.NewServer(todoService, dbService, authenticator)

	done := make(chan bool, 1)
	go gracefulShutdown(chiServer, dbService, done)

	log.Printf("Starting server on %s", chiServer.Addr)
	err = chiServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("HTTP server ListenAndServe error: %v", err)
	}

	<-done
	log.Println("Graceful shutdown complete.")
}

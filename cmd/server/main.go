package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/Adilet23/Friend_Circle/internal/config"
	"github.com/Adilet23/Friend_Circle/internal/database"
	"github.com/Adilet23/Friend_Circle/internal/handlers"
	"github.com/Adilet23/Friend_Circle/internal/jobs"
	"github.com/Adilet23/Friend_Circle/internal/repository"
	cronjobs "github.com/Adilet23/Friend_Circle/internal/scheduler"
	"github.com/Adilet23/Friend_Circle/internal/services"
	"github.com/Adilet23/Friend_Circle/pkg/logger"
	"github.com/Adilet23/Friend_Circle/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.OperationTimeout)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		cancel()
		log.Fatalf("Index creation error: %v", err)
	}
	cancel()

	var txn database.TxnRunner = database.SequentialTxnRunner{}
	if cfg.UseTransactions {
		txn = database.NewSessionTxnRunner(db)
	} else {
		logger.Log.Warn("Mongo transactions disabled, multi-document transitions run best-effort")
	}

	// --- Repositories ---
	accountRepo := repository.NewAccountRepository(db)
	requestRepo := repository.NewFriendRequestRepository(db)
	friendshipRepo := repository.NewFriendshipRepository(db)

	// --- Services ---
	accountService := services.NewAccountService(accountRepo)
	friendService := services.NewFriendService(requestRepo, friendshipRepo, accountRepo, txn)

	// --- Handlers ---
	accountHandler := handlers.NewAccountHandler(accountService, friendService, cfg)
	friendHandler := handlers.NewFriendHandler(friendService, accountService)
	wsHandler := handlers.NewWSHandler(friendService, cfg.JWTSecret)

	// Background consistency sweep
	sweeper := jobs.NewConsistencySweeper(friendshipRepo, accountRepo)
	cronjobs.StartSweepCron(sweeper)

	// Initialize Gorilla Mux router
	router := mux.NewRouter()

	// Public user routes
	router.HandleFunc("/users/register", accountHandler.RegisterHandler).Methods("POST")
	router.HandleFunc("/users/login", accountHandler.LoginHandler).Methods("POST")

	// Protected user routes
	protectedUserRoutes := router.PathPrefix("/users").Subrouter()
	protectedUserRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedUserRoutes.Use(middleware.TimeoutMiddleware(cfg.OperationTimeout))
	protectedUserRoutes.HandleFunc("/search", accountHandler.SearchHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/{id}", accountHandler.GetAccountHandler).Methods("GET")

	// Friend routes
	protectedFriendRoutes := router.PathPrefix("/friends").Subrouter()
	protectedFriendRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedFriendRoutes.Use(middleware.TimeoutMiddleware(cfg.OperationTimeout))
	protectedFriendRoutes.HandleFunc("/{id}/request", friendHandler.SendRequestHandler).Methods("POST")
	protectedFriendRoutes.HandleFunc("/requests", friendHandler.PendingRequestsHandler).Methods("GET")
	protectedFriendRoutes.HandleFunc("/requests/sent", friendHandler.SentRequestsHandler).Methods("GET")
	protectedFriendRoutes.HandleFunc("/requests/{id}/respond", friendHandler.RespondToRequestHandler).Methods("POST")
	protectedFriendRoutes.HandleFunc("", friendHandler.FriendsHandler).Methods("GET")
	protectedFriendRoutes.HandleFunc("/{id}", friendHandler.RemoveFriendHandler).Methods("DELETE")

	// Live updates over websocket; authenticates via token query param.
	router.HandleFunc("/ws", wsHandler.SubscribeHandler).Methods("GET")

	// Admin routes
	adminRoutes := router.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	adminRoutes.Use(middleware.RequireRole("admin"))
	adminRoutes.Use(middleware.TimeoutMiddleware(cfg.OperationTimeout))
	adminRoutes.HandleFunc("/users", accountHandler.AdminListAccountsHandler).Methods("GET")

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(router)

	port := cfg.Port
	fmt.Printf("Server running on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}

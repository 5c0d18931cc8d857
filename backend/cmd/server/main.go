// Copyright (C) 2025 karan10i
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"database/sql"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/karan10i/scaling-sniffle/backend/chat"
	"github.com/karan10i/scaling-sniffle/backend/config"
	"github.com/karan10i/scaling-sniffle/backend/handlers"
	"github.com/karan10i/scaling-sniffle/backend/middleware"
	"github.com/karan10i/scaling-sniffle/backend/storage/postgres"
	redisstore "github.com/karan10i/scaling-sniffle/backend/storage/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})

	store := postgres.NewStore(db)
	if err := store.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	channels := redisstore.NewChannelStore(rdb, cfg.ChannelTTL, cfg.ReadGraceTTL)

	coordinator := chat.NewCoordinator(store, store, channels, store, logger)
	friendService := chat.NewFriendService(store, store, logger)

	friendHandler := handlers.NewFriendHandler(friendService)
	messageHandler := handlers.NewMessageHandler(coordinator)
	vaultHandler := handlers.NewVaultHandler(coordinator)
	userHandler := handlers.NewUserHandler(store)
	keyHandler := handlers.NewKeyHandler(store)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer)

	r := mux.NewRouter()
	r.Use(middleware.NewCORS(cfg.AllowedOrigins))

	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware)

	// Friend graph endpoints
	api.HandleFunc("/friends/request", friendHandler.SendRequest).Methods("POST", "OPTIONS")
	api.HandleFunc("/friends/requests", friendHandler.ListPendingRequests).Methods("GET", "OPTIONS")
	api.HandleFunc("/friends/accept", friendHandler.AcceptRequest).Methods("POST", "OPTIONS")
	api.HandleFunc("/friends/reject", friendHandler.RejectRequest).Methods("POST", "OPTIONS")
	api.HandleFunc("/friends/add", friendHandler.AddFriend).Methods("POST", "OPTIONS")
	api.HandleFunc("/friends", friendHandler.ListFriends).Methods("GET", "OPTIONS")

	// User directory
	api.HandleFunc("/users/search", userHandler.Search).Methods("GET", "OPTIONS")

	// Message lifecycle endpoints
	api.HandleFunc("/messages/send", messageHandler.Send).Methods("POST", "OPTIONS")
	api.HandleFunc("/messages", messageHandler.GetConversation).Methods("GET", "OPTIONS")
	api.HandleFunc("/messages/cleanup", messageHandler.Cleanup).Methods("POST", "OPTIONS")

	// Vault endpoints
	api.HandleFunc("/vault/save", vaultHandler.Save).Methods("POST", "OPTIONS")
	api.HandleFunc("/vault", vaultHandler.List).Methods("GET", "OPTIONS")
	api.HandleFunc("/vault/{message_id}", vaultHandler.Delete).Methods("DELETE", "OPTIONS")

	// Key directory endpoints
	api.HandleFunc("/keys", keyHandler.RegisterKeys).Methods("POST", "OPTIONS")
	api.HandleFunc("/keys/bundle/{user_id}", keyHandler.GetPreKeyBundle).Methods("GET", "OPTIONS")
	api.HandleFunc("/keys/replenish", keyHandler.ReplenishPreKeys).Methods("POST", "OPTIONS")

	// Health check (no auth required)
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("Database unavailable"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	logger.Info("chat server starting", "port", cfg.Port, "issuer", cfg.JWTIssuer)

	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

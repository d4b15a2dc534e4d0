package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"agritrade/internal/api"
	"agritrade/internal/config"
	"agritrade/internal/seed"
	"agritrade/internal/store"
	"agritrade/internal/suggest"
	"agritrade/internal/trends"
	"agritrade/internal/users"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

var (
	clients   = make(map[*wsClient]bool)
	clientsMu sync.RWMutex
)

// broadcastMarketActivity pushes a fresh trend report to every connected client
func broadcastMarketActivity(ctx context.Context, s store.Store) {
	observations, err := s.PriceObservations(ctx)
	if err != nil {
		log.Printf("Failed to load price data for broadcast: %v", err)
		return
	}
	report, err := trends.Aggregate(observations)
	if err != nil {
		log.Printf("Failed to compute trends for broadcast: %v", err)
		return
	}
	data, err := json.Marshal(report)
	if err != nil {
		log.Printf("Failed to marshal trend report: %v", err)
		return
	}

	clientsMu.RLock()
	stale := []*wsClient{}
	for client := range clients {
		client.mu.Lock()
		err := client.conn.WriteMessage(websocket.TextMessage, data)
		client.mu.Unlock()
		if err != nil {
			log.Printf("Failed to send message: %v", err)
			stale = append(stale, client)
		}
	}
	clientsMu.RUnlock()

	if len(stale) > 0 {
		clientsMu.Lock()
		for _, client := range stale {
			delete(clients, client)
		}
		clientsMu.Unlock()
	}
}

func handleWebSocket(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("Failed to upgrade connection: %v", err)
			return
		}

		client := &wsClient{conn: conn}
		clientsMu.Lock()
		clients[client] = true
		clientsMu.Unlock()

		// Send an initial snapshot
		broadcastMarketActivity(r.Context(), s)

		// Keep connection alive and handle disconnection
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				clientsMu.Lock()
				delete(clients, client)
				clientsMu.Unlock()
				break
			}
		}
	}
}

// Main entry point: sets up the store, services, and HTTP server
func main() {
	ctx := context.Background()
	cfg := config.Load()

	var (
		st  store.Store
		err error
	)
	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer pg.Close()
		st = pg
	} else {
		// Development mode: in-memory store with the reference data set
		mem := store.NewMemory()
		if err = seed.Apply(ctx, mem); err != nil {
			log.Fatalf("Failed to seed in-memory store: %v", err)
		}
		log.Println("No DATABASE_URL set, using seeded in-memory store")
		st = mem
	}

	scorer := suggest.NewHTTPScorer(cfg.ScorerURL, cfg.ScorerTimeout)
	userService := users.NewService(st)
	handler := api.NewHandler(st, scorer, userService, cfg.ItemsPerPage)

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", handler.Health)
	r.Get("/ws", handleWebSocket(st))

	r.Route("/api", func(r chi.Router) {
		r.Get("/price-prediction", handler.GetPricePrediction)

		r.Get("/products", handler.GetProducts)
		r.Post("/products", handler.CreateProduct)
		r.Get("/products/{id}", handler.GetProduct)
		r.Put("/products/{id}", handler.UpdateProduct)
		r.Delete("/products/{id}", handler.DeleteProduct)

		r.Get("/investments", handler.GetInvestments)
		r.Post("/investments", handler.CreateInvestment)
		r.Get("/investments/{id}", handler.GetInvestment)

		r.Get("/user-investments/{userId}", handler.GetUserInvestments)
		r.Post("/user-investments", handler.CreateUserInvestment)

		r.Get("/districts", handler.GetDistricts)
		r.Get("/regional-data/{district}", handler.GetRegionalData)
		r.Post("/crop-suggestion", handler.SubmitCropSuggestion)

		r.Post("/users", handler.RegisterUser)
	})

	// Periodic market activity broadcast
	go func() {
		ticker := time.NewTicker(cfg.BroadcastInterval)
		for range ticker.C {
			broadcastMarketActivity(ctx, st)
		}
	}()

	log.Printf("Starting server on %s", cfg.Addr)
	if err = http.ListenAndServe(cfg.Addr, r); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

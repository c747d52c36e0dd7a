package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/apex/log"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/joho/godotenv"

	"print-bot/api/internal/ads"
	"print-bot/api/internal/analyze/gemini"
	"print-bot/api/internal/config"
	"print-bot/api/internal/deck"
	"print-bot/api/internal/handle"
	"print-bot/api/internal/httpserver"
	"print-bot/api/internal/kv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	store, db := openStore(cfg.DatabaseURL)
	decks := deck.NewStore(store)

	ads.Init(nil)

	engine := gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel)
	h := handle.New(engine, decks, ads.Active())

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("db: not ok\n" + err.Error()))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	h.Routes(mux)

	addr := ":" + cfg.Port
	if err := httpserver.Start(addr, mux); err != nil {
		log.WithError(err).Fatal("http server")
	}
}

// openStore connects to Postgres when a DSN is configured, otherwise falls
// back to the in-memory store (decks are lost on restart).
func openStore(dsn string) (kv.Store, *sql.DB) {
	if dsn == "" {
		log.Warn("no database configured, using in-memory storage")
		return kv.NewMemory(), nil
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.WithError(err).Fatal("sql.Open")
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(1 * time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		log.WithError(err).Fatal("db.Ping")
	}
	if err := kv.EnsureSchema(ctx, db); err != nil {
		log.WithError(err).Fatal("schema")
	}
	log.Info("db connected")
	return kv.NewPostgres(db), db
}

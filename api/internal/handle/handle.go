// Package handle exposes the analysis pipeline and the deck store over HTTP.
package handle

import (
	"encoding/json"
	"net/http"

	"print-bot/api/internal/ads"
	"print-bot/api/internal/analyze"
	"print-bot/api/internal/deck"
)

type Handle struct {
	Engine analyze.Analyzer
	Store  *deck.Store
	Gate   ads.Gate
}

func New(engine analyze.Analyzer, store *deck.Store, gate ads.Gate) *Handle {
	if gate == nil {
		gate = ads.Noop{}
	}
	return &Handle{Engine: engine, Store: store, Gate: gate}
}

// Routes registers all endpoints on the mux.
func (h *Handle) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/analyze", h.Analyze)
	mux.HandleFunc("/v1/crop", h.Crop)
	mux.HandleFunc("/v1/decks", h.DecksCollection)
	mux.HandleFunc("/v1/decks/", h.DeckBySubject)
	mux.HandleFunc("/v1/images/", h.ImageByRef)
}

func decodeBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

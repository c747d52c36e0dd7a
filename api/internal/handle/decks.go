package handle

import (
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"

	"github.com/apex/log"

	"print-bot/api/internal/deck"
)

// DecksCollection serves GET /v1/decks (subject list) and POST /v1/decks
// (save, whole-record overwrite per subject).
func (h *Handle) DecksCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		subjects, err := h.Store.Subjects(r.Context())
		if err != nil {
			log.WithError(err).Error("list subjects")
			http.Error(w, "storage error", http.StatusInternalServerError)
			return
		}
		if subjects == nil {
			subjects = []string{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"subjects": subjects})

	case http.MethodPost:
		var d deck.SavedDeck
		if err := decodeBody(r, &d); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(d.Subject) == "" {
			http.Error(w, "subject is required", http.StatusBadRequest)
			return
		}
		if err := h.Store.Save(r.Context(), d); err != nil {
			log.WithError(err).Errorf("save deck %q", d.Subject)
			http.Error(w, "storage error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})

	default:
		http.Error(w, "GET or POST only", http.StatusMethodNotAllowed)
	}
}

// DeckBySubject serves GET and DELETE on /v1/decks/{subject}.
func (h *Handle) DeckBySubject(w http.ResponseWriter, r *http.Request) {
	subject, err := url.PathUnescape(strings.TrimPrefix(r.URL.Path, "/v1/decks/"))
	if err != nil || strings.TrimSpace(subject) == "" {
		http.Error(w, "bad subject", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		d, err := h.Store.Get(r.Context(), subject)
		if err != nil {
			log.WithError(err).Errorf("get deck %q", subject)
			http.Error(w, "storage error", http.StatusInternalServerError)
			return
		}
		if d == nil {
			http.Error(w, "deck not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, d)

	case http.MethodDelete:
		if err := h.Store.Delete(r.Context(), subject); err != nil {
			log.WithError(err).Errorf("delete deck %q", subject)
			http.Error(w, "storage error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		http.Error(w, "GET or DELETE only", http.StatusMethodNotAllowed)
	}
}

// ImageByRef serves stored crop blobs referenced from cards.
func (h *Handle) ImageByRef(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "GET only", http.StatusMethodNotAllowed)
		return
	}
	ref, err := url.PathUnescape(strings.TrimPrefix(r.URL.Path, "/v1/images/"))
	if err != nil || ref == "" {
		http.Error(w, "bad ref", http.StatusBadRequest)
		return
	}
	data, ok, err := h.Store.Image(r.Context(), ref)
	if err != nil {
		log.WithError(err).Errorf("get image %q", ref)
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "image not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"image_b64": base64.StdEncoding.EncodeToString(data),
		"mime_type": "image/jpeg",
	})
}

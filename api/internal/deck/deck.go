// Package deck persists flashcard decks derived from test-type analyses,
// one whole JSON record per subject plus an ordered subject index.
package deck

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"print-bot/api/internal/kv"
)

// Key scheme carried over from the app's original storage layout.
const (
	deckKeyPrefix = "@printapp_flashcards_"
	subjectsKey   = "@printapp_flashcards_subjects"
	imageKeyPref  = "@printapp_crops_"
)

// Card is one flashcard. ImageRef points at a stored crop blob, when the
// source problem carried a figure region.
type Card struct {
	Question string `json:"question"`
	Answer   string `json:"answer,omitempty"`
	ImageRef string `json:"imageUri,omitempty"`
}

// SavedDeck is the persisted per-subject record. Saving to an existing
// subject overwrites the whole record; there is no merge.
type SavedDeck struct {
	SummaryTitle string `json:"summaryTitle"`
	Subject      string `json:"subject"`
	Date         string `json:"date"`
	Cards        []Card `json:"cards"`
	SavedAt      string `json:"savedAt"`
}

type Store struct {
	KV kv.Store
}

func NewStore(s kv.Store) *Store { return &Store{KV: s} }

// Save overwrites the subject's deck and registers the subject in the index
// when newly seen. SavedAt is stamped when the caller left it empty.
func (s *Store) Save(ctx context.Context, d SavedDeck) error {
	subject := strings.TrimSpace(d.Subject)
	if subject == "" {
		return fmt.Errorf("deck: subject is empty")
	}
	d.Subject = subject
	if d.SavedAt == "" {
		d.SavedAt = time.Now().UTC().Format(time.RFC3339)
	}

	js, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("deck: marshal: %w", err)
	}
	if err := s.KV.Set(ctx, deckKeyPrefix+subject, js); err != nil {
		return fmt.Errorf("deck: save %q: %w", subject, err)
	}

	subjects, err := s.Subjects(ctx)
	if err != nil {
		return err
	}
	for _, known := range subjects {
		if known == subject {
			return nil
		}
	}
	return s.writeSubjects(ctx, append(subjects, subject))
}

// Get returns the subject's deck, or nil when it is absent or the stored
// record does not decode. Corruption reads as "nothing saved", never as an
// error.
func (s *Store) Get(ctx context.Context, subject string) (*SavedDeck, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, nil
	}
	raw, ok, err := s.KV.Get(ctx, deckKeyPrefix+subject)
	if err != nil {
		return nil, fmt.Errorf("deck: get %q: %w", subject, err)
	}
	if !ok {
		return nil, nil
	}
	var d SavedDeck
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, nil
	}
	if d.Subject == "" {
		d.Subject = subject
	}
	return &d, nil
}

// Subjects returns the ordered list of known subject names. A missing or
// corrupt index reads as empty.
func (s *Store) Subjects(ctx context.Context) ([]string, error) {
	raw, ok, err := s.KV.Get(ctx, subjectsKey)
	if err != nil {
		return nil, fmt.Errorf("deck: subjects: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var list []any
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, nil
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		if str, ok := v.(string); ok {
			out = append(out, str)
		}
	}
	return out, nil
}

// Delete removes the subject's deck and drops it from the index.
func (s *Store) Delete(ctx context.Context, subject string) error {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil
	}
	if err := s.KV.Delete(ctx, deckKeyPrefix+subject); err != nil {
		return fmt.Errorf("deck: delete %q: %w", subject, err)
	}
	subjects, err := s.Subjects(ctx)
	if err != nil {
		return err
	}
	next := subjects[:0]
	for _, known := range subjects {
		if known != subject {
			next = append(next, known)
		}
	}
	return s.writeSubjects(ctx, next)
}

func (s *Store) writeSubjects(ctx context.Context, subjects []string) error {
	if subjects == nil {
		subjects = []string{}
	}
	js, err := json.Marshal(subjects)
	if err != nil {
		return fmt.Errorf("deck: marshal subjects: %w", err)
	}
	if err := s.KV.Set(ctx, subjectsKey, js); err != nil {
		return fmt.Errorf("deck: save subjects: %w", err)
	}
	return nil
}

// SaveImage stores a cropped figure blob and returns its reference for use
// in Card.ImageRef.
func (s *Store) SaveImage(ctx context.Context, data []byte) (string, error) {
	ref := imageKeyPref + uuid.NewString()
	blob, err := json.Marshal(data) // jsonb store; bytes go in base64-encoded
	if err != nil {
		return "", fmt.Errorf("deck: marshal image: %w", err)
	}
	if err := s.KV.Set(ctx, ref, blob); err != nil {
		return "", fmt.Errorf("deck: save image: %w", err)
	}
	return ref, nil
}

// Image loads a stored crop blob by reference.
func (s *Store) Image(ctx context.Context, ref string) ([]byte, bool, error) {
	if !strings.HasPrefix(ref, imageKeyPref) {
		return nil, false, nil
	}
	raw, ok, err := s.KV.Get(ctx, ref)
	if err != nil || !ok {
		return nil, false, err
	}
	var data []byte
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, false, nil
	}
	return data, true, nil
}

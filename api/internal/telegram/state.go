package telegram

import (
	"sync"
	"time"

	"print-bot/api/internal/analyze"
)

// pendingAnalysis keeps one analyzed photo around until its calendar/deck
// button is pressed. Keyed by a short token because callback data is capped
// at 64 bytes.
type pendingAnalysis struct {
	ChatID    int64
	Image     []byte
	Result    analyze.Result
	CreatedAt time.Time
}

// Abandoned analyses (no button ever pressed) would otherwise hold their
// image bytes forever; entries past the TTL are swept on the next store and
// rejected on load.
const pendingTTL = 30 * time.Minute

func storePending(token string, pa *pendingAnalysis) {
	pa.CreatedAt = time.Now()
	sweepPending(pa.CreatedAt)
	pending.Store(token, pa)
}

func loadPending(token string) (*pendingAnalysis, bool) {
	v, ok := pending.Load(token)
	if !ok {
		return nil, false
	}
	pa := v.(*pendingAnalysis)
	if time.Since(pa.CreatedAt) > pendingTTL {
		pending.Delete(token)
		return nil, false
	}
	return pa, true
}

func sweepPending(now time.Time) {
	pending.Range(func(k, v any) bool {
		if now.Sub(v.(*pendingAnalysis).CreatedAt) > pendingTTL {
			pending.Delete(k)
		}
		return true
	})
}

// browseSession is the flashcard view state for one chat.
type browseSession struct {
	Subject string
	Index   int
	Flipped bool
}

var (
	pending  sync.Map // token(string) -> *pendingAnalysis
	browsing sync.Map // chatID -> *browseSession
	subjects sync.Map // chatID -> []string snapshot backing /decks buttons
)

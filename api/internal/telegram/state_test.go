package telegram

import (
	"testing"
	"time"

	"print-bot/api/internal/analyze"
)

func clearPending() {
	pending.Range(func(k, _ any) bool {
		pending.Delete(k)
		return true
	})
}

func TestPendingExpiry(t *testing.T) {
	clearPending()
	defer clearPending()

	storePending("fresh", &pendingAnalysis{ChatID: 1, Result: analyze.Result{Kind: analyze.KindTest}})
	if _, ok := loadPending("fresh"); !ok {
		t.Fatal("fresh entry must load")
	}

	// age it past the TTL
	v, _ := pending.Load("fresh")
	v.(*pendingAnalysis).CreatedAt = time.Now().Add(-pendingTTL - time.Minute)

	if _, ok := loadPending("fresh"); ok {
		t.Fatal("expired entry must not load")
	}
	if _, ok := pending.Load("fresh"); ok {
		t.Fatal("expired entry must be deleted on load")
	}
}

func TestPendingSweepOnStore(t *testing.T) {
	clearPending()
	defer clearPending()

	pending.Store("stale", &pendingAnalysis{
		ChatID:    1,
		Image:     []byte{0xFF, 0xD8},
		CreatedAt: time.Now().Add(-pendingTTL - time.Minute),
	})

	storePending("new", &pendingAnalysis{ChatID: 2})

	if _, ok := pending.Load("stale"); ok {
		t.Fatal("stale entry must be swept when a new one is stored")
	}
	if _, ok := loadPending("new"); !ok {
		t.Fatal("new entry must survive the sweep")
	}
}

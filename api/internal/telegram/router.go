// Package telegram is the bot front end: a photographed handout comes in,
// the analysis result goes out, and inline keyboards drive calendar
// registration and flashcard decks.
package telegram

import (
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"print-bot/api/internal/ads"
	"print-bot/api/internal/analyze"
	"print-bot/api/internal/calendarexport"
	"print-bot/api/internal/deck"
)

type Router struct {
	Bot    *tgbotapi.BotAPI
	Engine analyze.Analyzer
	Decks  *deck.Store
	Gate   ads.Gate

	// Calendar is optional; when nil the registration button is not shown.
	Calendar *calendarexport.Writer
}

func (r *Router) HandleUpdate(upd tgbotapi.Update) {
	if upd.CallbackQuery != nil {
		r.handleCallback(*upd.CallbackQuery)
		return
	}
	if upd.Message == nil {
		return
	}
	cid := upd.Message.Chat.ID

	if upd.Message.IsCommand() {
		r.handleCommand(upd)
		return
	}

	if len(upd.Message.Photo) > 0 {
		r.acceptPhoto(*upd.Message)
		return
	}

	r.send(cid, "プリントの写真を送ってください。コマンド: /decks /health")
}

func (r *Router) handleCommand(upd tgbotapi.Update) {
	cid := upd.Message.Chat.ID
	switch upd.Message.Command() {
	case "start":
		r.send(cid, "学校のプリントの写真を送ってください。\n"+
			"お知らせなら予定を抽出してカレンダーに登録、テストなら問題を単語帳として保存できます。\n"+
			"コマンド: /decks（保存した単語帳）, /health")
	case "decks":
		r.listDecks(cid)
	case "health":
		r.send(cid, "✅ OK: "+r.Engine.Name()+" ("+r.Engine.GetModel()+")")
	default:
		r.send(cid, "不明なコマンドです。/start でヘルプを表示します。")
	}
}

func (r *Router) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	_, _ = r.Bot.Send(msg)
}

// sendError renders the three analysis error kinds as user-facing messages;
// anything else gets the generic line.
func (r *Router) sendError(chatID int64, err error) {
	var (
		cfg *analyze.ConfigError
		up  *analyze.UpstreamError
		bad *analyze.FormatError
	)
	switch {
	case errors.As(err, &cfg):
		r.send(chatID, "APIキーが設定されていません。管理者に GEMINI_API_KEY の設定を依頼してください。")
	case errors.As(err, &up):
		r.send(chatID, "解析サービスに接続できませんでした。時間をおいてもう一度お試しください。")
	case errors.As(err, &bad):
		r.send(chatID, "解析に失敗しました。プリント全体が写るように撮り直してください。")
	default:
		r.send(chatID, "エラーが発生しました: "+err.Error())
	}
}

func truncateRunes(s string, n int) string {
	rs := []rune(strings.TrimSpace(s))
	if len(rs) <= n {
		return string(rs)
	}
	return string(rs[:n]) + "…"
}

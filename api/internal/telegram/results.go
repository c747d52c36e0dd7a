package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"print-bot/api/internal/analyze"
)

func (r *Router) showAnnouncement(chatID int64, token string, a *analyze.Announcement) {
	var b strings.Builder
	b.WriteString("📅 お知らせのプリントです。予定を見つけました:\n\n")
	for i, ev := range a.Events {
		fmt.Fprintf(&b, "%d. %s\n    %s", i+1, ev.Name, ev.Start)
		if ev.End != "" {
			b.WriteString(" 〜 " + ev.End)
		}
		b.WriteString("\n")
		if ev.Memo != "" {
			b.WriteString("    " + truncateRunes(ev.Memo, 60) + "\n")
		}
	}

	msg := tgbotapi.NewMessage(chatID, b.String())
	if r.Calendar != nil {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("📅 カレンダーに登録", "cal:"+token),
			),
		)
	}
	_, _ = r.Bot.Send(msg)
}

func (r *Router) showTest(chatID int64, token string, t *analyze.Test) {
	var b strings.Builder
	title := t.SummaryTitle
	if title == "" {
		title = "テスト"
	}
	fmt.Fprintf(&b, "📝 テストのプリントです: %s", title)
	if t.Subject != "" {
		fmt.Fprintf(&b, "（%s）", t.Subject)
	}
	b.WriteString("\n\n")
	if len(t.Problems) == 0 {
		b.WriteString("問題は見つかりませんでした。\n")
	}
	for i, p := range t.Problems {
		fmt.Fprintf(&b, "%d. %s", i+1, truncateRunes(p.Text, 80))
		if p.Region != nil {
			b.WriteString(" 📐図あり")
		}
		b.WriteString("\n")
	}

	msg := tgbotapi.NewMessage(chatID, b.String())
	if len(t.Problems) > 0 {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("💾 単語帳に保存", "deck:"+token),
			),
		)
	}
	_, _ = r.Bot.Send(msg)
}

package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"google.golang.org/api/calendar/v3"

	"print-bot/api/internal/calendarexport"
	"print-bot/api/internal/deck"
	"print-bot/api/internal/imaging"
)

const (
	defaultSubject = "その他"
	defaultTitle   = "テスト"
)

func (r *Router) handleCallback(cb tgbotapi.CallbackQuery) {
	// Stop the client-side spinner regardless of what happens next.
	_, _ = r.Bot.Request(tgbotapi.NewCallback(cb.ID, ""))

	if cb.Message == nil {
		return
	}
	cid := cb.Message.Chat.ID
	data := cb.Data

	switch {
	case strings.HasPrefix(data, "cal:"):
		r.onCalendarAdd(cid, strings.TrimPrefix(data, "cal:"))
	case strings.HasPrefix(data, "deck:"):
		r.onDeckSave(cid, strings.TrimPrefix(data, "deck:"))
	case strings.HasPrefix(data, "open:"):
		r.onDeckOpen(cid, strings.TrimPrefix(data, "open:"))
	case strings.HasPrefix(data, "del:"):
		r.onDeckDelete(cid, strings.TrimPrefix(data, "del:"))
	case data == "flip":
		r.onBrowse(cid, func(s *browseSession) { s.Flipped = !s.Flipped })
	case data == "next":
		r.onBrowse(cid, func(s *browseSession) { s.Index++; s.Flipped = false })
	case data == "prev":
		r.onBrowse(cid, func(s *browseSession) { s.Index--; s.Flipped = false })
	case data == "close":
		browsing.Delete(cid)
		r.send(cid, "単語帳を閉じました。/decks でまた開けます。")
	}
}

func (r *Router) onCalendarAdd(chatID int64, token string) {
	pa, ok := loadPending(token)
	if !ok {
		r.send(chatID, "この解析結果は期限切れです。写真をもう一度送ってください。")
		return
	}
	ann := pa.Result.Announcement
	if r.Calendar == nil || ann == nil {
		return
	}

	events := make([]*calendar.Event, 0, len(ann.Events))
	for _, ev := range ann.Events {
		ce, err := calendarexport.BuildEvent(ev, ann.FullText, nil)
		if err != nil {
			r.send(chatID, fmt.Sprintf("「%s」の日時を読み取れませんでした: %s", ev.Name, ev.Start))
			return
		}
		events = append(events, ce)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	n, err := r.Calendar.Insert(ctx, events)
	if err != nil {
		log.WithError(err).Errorf("calendar insert failed after %d events (chat=%d)", n, chatID)
		if n > 0 {
			r.send(chatID, fmt.Sprintf("%d件まで登録したところでエラーが発生しました。", n))
		} else {
			r.send(chatID, "カレンダーへの登録に失敗しました。時間をおいてお試しください。")
		}
		return
	}
	pending.Delete(token)
	r.send(chatID, fmt.Sprintf("カレンダーに%d件の予定を登録しました！", n))
}

func (r *Router) onDeckSave(chatID int64, token string) {
	pa, ok := loadPending(token)
	if !ok {
		r.send(chatID, "この解析結果は期限切れです。写真をもう一度送ってください。")
		return
	}
	t := pa.Result.Test
	if t == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	subject := strings.TrimSpace(t.Subject)
	if subject == "" {
		subject = defaultSubject
	}
	title := strings.TrimSpace(t.SummaryTitle)
	if title == "" {
		title = defaultTitle
	}

	cards := make([]deck.Card, 0, len(t.Problems))
	for _, p := range t.Problems {
		c := deck.Card{Question: p.Text}
		if p.Region != nil {
			crop, err := imaging.CropRegion(pa.Image, *p.Region)
			if err != nil {
				log.WithError(err).Warnf("crop failed, card kept without figure (chat=%d)", chatID)
			} else if ref, err := r.Decks.SaveImage(ctx, crop); err == nil {
				c.ImageRef = ref
			}
		}
		cards = append(cards, c)
	}

	d := deck.SavedDeck{
		SummaryTitle: title,
		Subject:      subject,
		Date:         t.Date,
		Cards:        cards,
	}
	if err := r.Decks.Save(ctx, d); err != nil {
		log.WithError(err).Errorf("deck save failed (chat=%d)", chatID)
		r.send(chatID, "単語帳の保存に失敗しました。")
		return
	}
	pending.Delete(token)
	r.send(chatID, fmt.Sprintf("「%s」の単語帳を保存しました（%d枚）。/decks で確認できます。", subject, len(cards)))
}

func (r *Router) listDecks(chatID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	names, err := r.Decks.Subjects(ctx)
	if err != nil {
		r.sendError(chatID, err)
		return
	}
	if len(names) == 0 {
		r.send(chatID, "保存された単語帳はまだありません。テストのプリントを送って保存してください。")
		return
	}
	subjects.Store(chatID, names)

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(names))
	for i, name := range names {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📖 "+name, "open:"+strconv.Itoa(i)),
			tgbotapi.NewInlineKeyboardButtonData("🗑", "del:"+strconv.Itoa(i)),
		))
	}
	msg := tgbotapi.NewMessage(chatID, "保存した単語帳:")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	_, _ = r.Bot.Send(msg)
}

// subjectAt resolves an index button back to a subject name via the snapshot
// taken when the /decks list was rendered.
func subjectAt(chatID int64, arg string) (string, bool) {
	i, err := strconv.Atoi(arg)
	if err != nil {
		return "", false
	}
	v, ok := subjects.Load(chatID)
	if !ok {
		return "", false
	}
	names := v.([]string)
	if i < 0 || i >= len(names) {
		return "", false
	}
	return names[i], true
}

func (r *Router) onDeckOpen(chatID int64, arg string) {
	name, ok := subjectAt(chatID, arg)
	if !ok {
		r.send(chatID, "一覧が古くなっています。/decks をもう一度実行してください。")
		return
	}
	browsing.Store(chatID, &browseSession{Subject: name})
	r.showCard(chatID)
}

func (r *Router) onDeckDelete(chatID int64, arg string) {
	name, ok := subjectAt(chatID, arg)
	if !ok {
		r.send(chatID, "一覧が古くなっています。/decks をもう一度実行してください。")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := r.Decks.Delete(ctx, name); err != nil {
		r.sendError(chatID, err)
		return
	}
	r.send(chatID, fmt.Sprintf("「%s」の単語帳を削除しました。", name))
	r.listDecks(chatID)
}

func (r *Router) onBrowse(chatID int64, mutate func(*browseSession)) {
	v, ok := browsing.Load(chatID)
	if !ok {
		r.send(chatID, "開いている単語帳がありません。/decks から選んでください。")
		return
	}
	s := v.(*browseSession)
	mutate(s)
	r.showCard(chatID)
}

func (r *Router) showCard(chatID int64) {
	v, ok := browsing.Load(chatID)
	if !ok {
		return
	}
	s := v.(*browseSession)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	d, err := r.Decks.Get(ctx, s.Subject)
	if err != nil {
		r.sendError(chatID, err)
		return
	}
	if d == nil || len(d.Cards) == 0 {
		browsing.Delete(chatID)
		r.send(chatID, "この単語帳は空です。")
		return
	}

	if s.Index < 0 {
		s.Index = len(d.Cards) - 1
	}
	if s.Index >= len(d.Cards) {
		s.Index = 0
	}
	card := d.Cards[s.Index]

	var text string
	if s.Flipped {
		answer := card.Answer
		if answer == "" {
			answer = "（答えをメモできます）"
		}
		text = fmt.Sprintf("【%s】 %d/%d 〔答え〕\n\n%s", d.Subject, s.Index+1, len(d.Cards), answer)
	} else {
		text = fmt.Sprintf("【%s】 %d/%d\n\n%s", d.Subject, s.Index+1, len(d.Cards), card.Question)
	}

	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️", "prev"),
			tgbotapi.NewInlineKeyboardButtonData("🔄 めくる", "flip"),
			tgbotapi.NewInlineKeyboardButtonData("➡️", "next"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ 閉じる", "close"),
		),
	)

	if !s.Flipped && card.ImageRef != "" {
		if img, ok, err := r.Decks.Image(ctx, card.ImageRef); err == nil && ok {
			photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "figure.jpg", Bytes: img})
			photo.Caption = text
			photo.ReplyMarkup = kb
			_, _ = r.Bot.Send(photo)
			return
		}
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	_, _ = r.Bot.Send(msg)
}

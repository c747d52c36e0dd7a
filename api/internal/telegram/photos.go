package telegram

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/apex/log"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"print-bot/api/internal/analyze"
	"print-bot/api/internal/imaging"
)

func (r *Router) acceptPhoto(msg tgbotapi.Message) {
	cid := msg.Chat.ID
	ph := msg.Photo[len(msg.Photo)-1]
	file, err := r.Bot.GetFile(tgbotapi.FileConfig{FileID: ph.FileID})
	if err != nil {
		r.sendError(cid, err)
		return
	}
	url := fmt.Sprintf("https://api.telegram.org/file/bot%s/%s", r.Bot.Token, file.FilePath)
	imgBytes, err := download(url)
	if err != nil {
		r.sendError(cid, err)
		return
	}

	imgBytes, err = imaging.ScaleToFit(imgBytes, imaging.DefaultMaxPixels)
	if err != nil {
		r.sendError(cid, err)
		return
	}

	r.send(cid, "写真を受け取りました。解析しています…")

	ctx, cancel := context.WithTimeout(context.Background(), 180*time.Second)
	defer cancel()

	var (
		res  analyze.Result
		aerr error
	)
	r.Gate.BeforeAnalyze(ctx, func() {
		res, aerr = r.Engine.Analyze(ctx, base64.StdEncoding.EncodeToString(imgBytes), "image/jpeg")
	})
	if aerr != nil {
		log.WithError(aerr).Errorf("analyze failed (chat=%d)", cid)
		r.sendError(cid, aerr)
		return
	}

	token := uuid.NewString()
	storePending(token, &pendingAnalysis{ChatID: cid, Image: imgBytes, Result: res})

	switch res.Kind {
	case analyze.KindAnnouncement:
		r.showAnnouncement(cid, token, res.Announcement)
	case analyze.KindTest:
		r.showTest(cid, token, res.Test)
	}
}

func download(url string) ([]byte, error) {
	resp, err := httpClient().Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}
	return io.ReadAll(resp.Body)
}

func httpClient() *http.Client {
	return &http.Client{Timeout: 60 * time.Second}
}

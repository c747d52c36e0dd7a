package handle

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/apex/log"

	"print-bot/api/internal/analyze"
	"print-bot/api/internal/util"
)

type AnalyzeRequest struct {
	ImageB64 string `json:"image_b64"`
	MimeType string `json:"mime_type"`
}

// Analyze runs one handout image through the vision model and returns the
// validated result. Error kinds map onto status codes: configuration 500,
// upstream 502, format 422.
func (h *Handle) Analyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	var req AnalyzeRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return
	}
	img, _, err := util.DecodeBase64MaybeDataURL(req.ImageB64)
	if err != nil || len(img) == 0 {
		http.Error(w, "bad image_b64", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 180*time.Second)
	defer cancel()

	var (
		out  analyze.Result
		aerr error
	)
	h.Gate.BeforeAnalyze(ctx, func() {
		out, aerr = h.Engine.Analyze(ctx, req.ImageB64, req.MimeType)
	})
	if aerr != nil {
		log.WithError(aerr).Errorf("analyze failed (engine=%s model=%s)", h.Engine.Name(), h.Engine.GetModel())
		http.Error(w, "analyze error: "+aerr.Error(), statusFor(aerr))
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func statusFor(err error) int {
	var (
		cfg *analyze.ConfigError
		up  *analyze.UpstreamError
		bad *analyze.FormatError
	)
	switch {
	case errors.As(err, &cfg):
		return http.StatusInternalServerError
	case errors.As(err, &bad):
		return http.StatusUnprocessableEntity
	case errors.As(err, &up):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// Package gemini implements the analysis engine on Google's Gemini vision
// models.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"print-bot/api/internal/analyze"
	"print-bot/api/internal/util"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// PlaceholderKey is the .env.example sentinel; it counts as "not configured".
const PlaceholderKey = "your_api_key_here"

type Engine struct {
	APIKey string
	Model  string
}

func New(apiKey, model string) *Engine {
	return &Engine{
		APIKey: strings.TrimSpace(apiKey),
		Model:  strings.TrimSpace(model),
	}
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) GetModel() string { return e.Model }

// Analyze sends the classification instruction plus the inline image in one
// blocking call and validates the response. No retry, no streaming; the
// caller's context carries whatever deadline applies.
func (e *Engine) Analyze(ctx context.Context, imageB64, mimeType string) (analyze.Result, error) {
	if e.APIKey == "" || e.APIKey == PlaceholderKey {
		return analyze.Result{}, &analyze.ConfigError{Reason: "GEMINI_API_KEY is not set"}
	}

	imgBytes, mimeFromDataURL, err := util.DecodeBase64MaybeDataURL(imageB64)
	if err != nil {
		return analyze.Result{}, fmt.Errorf("gemini analyze: bad base64 image: %w", err)
	}
	if len(imgBytes) == 0 {
		return analyze.Result{}, errors.New("gemini analyze: empty image")
	}
	finalMIME := util.PickMIME(mimeType, mimeFromDataURL, imgBytes)

	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.APIKey))
	if err != nil {
		return analyze.Result{}, &analyze.UpstreamError{Err: err}
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.Model)
	if m == nil {
		return analyze.Result{}, &analyze.UpstreamError{Err: fmt.Errorf("gemini: model is nil")}
	}
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		ResponseMIMEType: "application/json",
	}

	parts := []genai.Part{
		genai.Text(analyze.Instruction),
		&genai.Blob{MIMEType: finalMIME, Data: imgBytes},
	}

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return analyze.Result{}, &analyze.UpstreamError{Err: err}
	}
	txt := strings.TrimSpace(firstText(resp))
	if txt == "" {
		return analyze.Result{}, &analyze.UpstreamError{Err: errors.New("empty response")}
	}
	return analyze.DecodeText(txt)
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }

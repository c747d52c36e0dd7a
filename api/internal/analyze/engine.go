package analyze

import "context"

// Analyzer is the single-shot analysis boundary. Implementations send the
// instruction plus the inline image to a vision-capable model and return the
// validated result. Errors are one of ConfigError, UpstreamError or
// FormatError.
type Analyzer interface {
	Name() string
	GetModel() string
	Analyze(ctx context.Context, imageB64, mimeType string) (Result, error)
}

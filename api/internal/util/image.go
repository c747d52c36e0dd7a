package util

import (
	"encoding/base64"
	"net/http"
	"strings"
)

// DecodeBase64MaybeDataURL decodes base64 image payloads. When the payload
// is a data: URI the MIME type from its prefix is returned as a hint.
func DecodeBase64MaybeDataURL(s string) ([]byte, string, error) {
	payload, hintMIME := splitDataURL(strings.TrimSpace(s))

	b, err := base64.StdEncoding.DecodeString(payload)
	if err == nil {
		return b, hintMIME, nil
	}
	// some clients emit the URL-safe alphabet
	if b2, err2 := base64.URLEncoding.DecodeString(payload); err2 == nil {
		return b2, hintMIME, nil
	}
	return nil, "", err
}

// splitDataURL peels a data:<mime>[;base64],<payload> wrapper off, if any.
func splitDataURL(s string) (payload, mime string) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return s, ""
	}
	meta, body, ok := strings.Cut(rest, ",")
	if !ok {
		return s, ""
	}
	mime, _, _ = strings.Cut(meta, ";")
	return body, mime
}

// PickMIME prefers the explicit MIME, then the data:URI hint, then sniffs
// the bytes.
func PickMIME(explicit, hint string, data []byte) string {
	if exp := strings.TrimSpace(explicit); exp != "" {
		return exp
	}
	if h := strings.TrimSpace(hint); h != "" {
		return h
	}
	if len(data) > 0 {
		return http.DetectContentType(data)
	}
	return "image/jpeg"
}

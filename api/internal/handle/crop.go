package handle

import (
	"encoding/base64"
	"net/http"

	"print-bot/api/internal/analyze"
	"print-bot/api/internal/imaging"
	"print-bot/api/internal/util"
)

type CropRequest struct {
	ImageB64 string         `json:"image_b64"`
	Region   analyze.Region `json:"region"`
}

type CropResponse struct {
	ImageB64 string `json:"image_b64"`
	MimeType string `json:"mime_type"`
}

// Crop cuts a fractional region out of the posted image and returns it as
// base64 JPEG. A region that clamps to nothing is a 422.
func (h *Handle) Crop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	var req CropRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return
	}
	img, _, err := util.DecodeBase64MaybeDataURL(req.ImageB64)
	if err != nil || len(img) == 0 {
		http.Error(w, "bad image_b64", http.StatusBadRequest)
		return
	}
	region, ok := req.Region.Clamp()
	if !ok {
		http.Error(w, "degenerate region", http.StatusUnprocessableEntity)
		return
	}

	out, err := imaging.CropRegion(img, region)
	if err != nil {
		http.Error(w, "crop error: "+err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, CropResponse{
		ImageB64: base64.StdEncoding.EncodeToString(out),
		MimeType: "image/jpeg",
	})
}

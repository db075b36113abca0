package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"talktotoyota/service"
)

type VoiceHandler struct {
	service *service.VoiceService
	logger  *slog.Logger
}

func NewVoiceHandler(service *service.VoiceService, logger *slog.Logger) *VoiceHandler {
	return &VoiceHandler{service: service, logger: logger}
}

type speakRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voiceId"`
}

// Speak converts text to speech and streams the MP3 back. Transcription is
// handled client-side, so speech synthesis is the only voice endpoint.
func (h *VoiceHandler) Speak(w http.ResponseWriter, r *http.Request) {

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body speakRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Text == "" {
		writeError(w, http.StatusBadRequest, "Text is required")
		return
	}

	audio, err := h.service.TextToSpeech(r.Context(), body.Text, body.VoiceID)
	if errors.Is(err, service.ErrVoiceNotConfigured) {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("text-to-speech failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to convert text to speech")
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Write(audio)
}

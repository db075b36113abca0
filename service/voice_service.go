package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	elevenLabsBaseURL = "https://api.elevenlabs.io/v1"
	ttsModel          = "eleven_turbo_v2_5"
)

// ErrVoiceNotConfigured is returned when no ElevenLabs API key is set.
var ErrVoiceNotConfigured = errors.New("text-to-speech is not configured")

// VoiceService converts assistant replies to speech through ElevenLabs.
type VoiceService struct {
	apiKey         string
	baseURL        string
	defaultVoiceID string
	httpClient     *http.Client
	logger         *slog.Logger
}

type ttsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

func NewVoiceService(apiKey, defaultVoiceID string, logger *slog.Logger) *VoiceService {
	return &VoiceService{
		apiKey:         apiKey,
		baseURL:        elevenLabsBaseURL,
		defaultVoiceID: defaultVoiceID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// TextToSpeech renders text as MP3 audio. An empty voiceID selects the
// configured default voice.
func (s *VoiceService) TextToSpeech(ctx context.Context, text, voiceID string) ([]byte, error) {
	if s.apiKey == "" {
		return nil, ErrVoiceNotConfigured
	}
	if voiceID == "" {
		voiceID = s.defaultVoiceID
	}

	payload, err := json.Marshal(ttsRequest{
		Text:    text,
		ModelID: ttsModel,
		VoiceSettings: voiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.75,
			Style:           0.5,
			UseSpeakerBoost: true,
		},
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/text-to-speech/%s", s.baseURL, voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", s.apiKey)
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("text-to-speech request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		s.logger.Error("elevenlabs error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("elevenlabs status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

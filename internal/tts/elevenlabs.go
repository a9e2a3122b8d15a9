package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/chadiek/pitchcoach/internal/artifact"
)

// ElevenLabsClient renders reply text to speech and persists the result to an
// artifact store keyed by output id.
type ElevenLabsClient struct {
	HTTPClient *http.Client
	APIKey     string
	Artifacts  artifact.Store
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type speechRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

func NewElevenLabsClient(apiKey string, artifacts artifact.Store) *ElevenLabsClient {
	return &ElevenLabsClient{
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
		APIKey:     apiKey,
		Artifacts:  artifacts,
	}
}

// Synthesize sends text to ElevenLabs with the persona's voice and fixed
// rendering parameters, streaming the returned audio into the artifact store
// under outputID. The published artifact fully replaces any prior one at the
// same id; a non-success response or an empty body yields an error and no
// artifact.
func (e *ElevenLabsClient) Synthesize(ctx context.Context, text, voiceID, outputID string) error {
	if e.APIKey == "" || voiceID == "" {
		return fmt.Errorf("elevenlabs: api key or voice id missing")
	}

	u := url.URL{
		Scheme: "https",
		Host:   "api.elevenlabs.io",
		Path:   "/v1/text-to-speech/" + voiceID,
	}
	body := speechRequest{
		Text:    text,
		ModelID: "eleven_multilingual_v2",
		VoiceSettings: voiceSettings{
			Stability:       0.6,
			SimilarityBoost: 0.85,
		},
	}
	buf, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("xi-api-key", e.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("elevenlabs: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("elevenlabs: status=%d body=%s", resp.StatusCode, string(b))
	}

	n, err := e.Artifacts.Put(outputID, resp.Body)
	if err != nil {
		return fmt.Errorf("elevenlabs: save audio: %w", err)
	}
	log.Printf("elevenlabs: saved %s (%d bytes)", artifact.FileName(outputID), n)
	return nil
}

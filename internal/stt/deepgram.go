package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DeepgramClient transcribes pre-recorded audio via the Deepgram listen API.
type DeepgramClient struct {
	HTTPClient *http.Client
	APIKey     string
	Model      string
	// Keywords are optional "term:boost" hints forwarded to Deepgram.
	Keywords []string
}

type listenAlternative struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
}

type listenChannel struct {
	Alternatives []listenAlternative `json:"alternatives"`
}

type listenResults struct {
	Channels []listenChannel `json:"channels"`
}

type listenResponse struct {
	Results listenResults `json:"results"`
}

func NewDeepgramClient(apiKey, model string) *DeepgramClient {
	if model == "" {
		model = "nova-2"
	}
	return &DeepgramClient{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		APIKey:     apiKey,
		Model:      model,
	}
}

// normalizeContentType maps browser and recorder MIME hints onto the small
// set Deepgram accepts; unrecognized types pass through as given.
func normalizeContentType(ct string) string {
	lower := strings.ToLower(ct)
	switch {
	case strings.Contains(lower, "webm"):
		return "audio/webm"
	case strings.Contains(lower, "mp4"), strings.Contains(lower, "m4a"):
		return "audio/mp4"
	case strings.Contains(lower, "wav"):
		return "audio/wav"
	case strings.Contains(lower, "mp3"), strings.Contains(lower, "mpeg"):
		return "audio/mp3"
	case ct == "":
		return "audio/webm"
	}
	return ct
}

// Transcribe sends raw audio bytes to Deepgram and returns the best
// transcript, trimmed of surrounding whitespace. The returned transcript may
// be empty when no speech was detected; the caller decides how to treat that.
func (c *DeepgramClient) Transcribe(ctx context.Context, audio []byte, contentType string) (string, error) {
	if c.APIKey == "" {
		return "", fmt.Errorf("deepgram api key missing")
	}

	q := url.Values{}
	q.Set("model", c.Model)
	q.Set("smart_format", "true")
	q.Set("punctuate", "true")
	if len(c.Keywords) > 0 {
		q.Set("keywords", strings.Join(c.Keywords, ","))
	}
	endpoint := "https://api.deepgram.com/v1/listen?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(audio))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Token "+c.APIKey)
	req.Header.Set("Content-Type", normalizeContentType(contentType))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("deepgram error: status=%d body=%s", resp.StatusCode, string(b))
	}

	var lr listenResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return "", fmt.Errorf("deepgram: decode response: %w", err)
	}
	if len(lr.Results.Channels) == 0 || len(lr.Results.Channels[0].Alternatives) == 0 {
		return "", fmt.Errorf("deepgram: response has no transcript")
	}
	return strings.TrimSpace(lr.Results.Channels[0].Alternatives[0].Transcript), nil
}

// Package audio provides microphone capture and local playback for the
// autonomous loop. Capture uses miniaudio via malgo; 16kHz mono s16le frames
// are wrapped as WAV for the transcription service.
package audio

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gen2brain/malgo"
)

const (
	// SampleRate is the capture rate expected by the transcription service.
	SampleRate = 16000
	channels   = 1
)

// MicRecorder records a fixed-length utterance from the default capture
// device after a short countdown.
type MicRecorder struct {
	Seconds   int
	Countdown int
}

func NewMicRecorder(seconds, countdown int) *MicRecorder {
	if seconds <= 0 {
		seconds = 10
	}
	return &MicRecorder{Seconds: seconds, Countdown: countdown}
}

// Record captures Seconds of audio and returns it as a WAV payload.
func (r *MicRecorder) Record(ctx context.Context) ([]byte, string, error) {
	for i := r.Countdown; i > 0; i-- {
		log.Printf("mic: recording starts in %d...", i)
		select {
		case <-time.After(time.Second):
		case <-ctx.Done():
			return nil, "", ctx.Err()
		}
	}

	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, "", fmt.Errorf("mic: init context: %w", err)
	}
	defer func() {
		_ = mctx.Uninit()
		mctx.Free()
	}()

	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatS16
	cfg.Capture.Channels = channels
	cfg.SampleRate = SampleRate
	cfg.Alsa.NoMMap = 1

	var mu sync.Mutex
	var pcm []byte
	device, err := malgo.InitDevice(mctx.Context, cfg, malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			mu.Lock()
			pcm = append(pcm, input...)
			mu.Unlock()
		},
	})
	if err != nil {
		return nil, "", fmt.Errorf("mic: init device: %w", err)
	}
	defer device.Uninit()

	if err := device.Start(); err != nil {
		return nil, "", fmt.Errorf("mic: start: %w", err)
	}
	log.Printf("mic: recording for %d seconds, speak now", r.Seconds)
	select {
	case <-time.After(time.Duration(r.Seconds) * time.Second):
	case <-ctx.Done():
		_ = device.Stop()
		return nil, "", ctx.Err()
	}
	if err := device.Stop(); err != nil {
		return nil, "", fmt.Errorf("mic: stop: %w", err)
	}
	log.Printf("mic: done recording")

	mu.Lock()
	samples := make([]byte, len(pcm))
	copy(samples, pcm)
	mu.Unlock()
	return EncodeWAV(samples, SampleRate, channels), "audio/wav", nil
}

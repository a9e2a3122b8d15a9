package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/chadiek/pitchcoach/internal/session"
)

// Transcriber converts a recorded audio payload into text.
type Transcriber interface {
	// Transcribe returns the trimmed transcript for the audio bytes. An empty
	// transcript with a nil error means the service heard no speech.
	Transcribe(ctx context.Context, audio []byte, contentType string) (string, error)
}

// LLM generates one assistant reply for a bounded conversation history and
// reports the tokens consumed by the call.
type LLM interface {
	Complete(ctx context.Context, turns []session.Turn) (reply string, tokens int, err error)
}

// TTS renders text to audio and persists it under the given output id.
type TTS interface {
	Synthesize(ctx context.Context, text, voiceID, outputID string) error
}

// Stage identifies where in the turn pipeline a failure occurred.
type Stage string

const (
	StageValidation    Stage = "validation"
	StageTranscription Stage = "transcription"
	StageGeneration    Stage = "generation"
	StageSynthesis     Stage = "synthesis"
)

// ErrNoSpeech signals an empty transcript for a supplied audio payload.
var ErrNoSpeech = errors.New("no speech detected")

// StageError is the terminal failure state of a turn, tagged with the stage
// that failed. No stage is retried by the pipeline; retrying a whole turn is
// the caller's decision.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func failedAt(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}

// FailedStage extracts the stage tag from err, when present.
func FailedStage(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}

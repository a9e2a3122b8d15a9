package agent

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/chadiek/pitchcoach/internal/persona"
	"github.com/chadiek/pitchcoach/internal/session"
)

// turn pipeline states, in order. A turn either reaches stateDone or stops at
// the stage reported by the StageError.
type turnState string

const (
	stateReceived     turnState = "received"
	stateTranscribing turnState = "transcribing"
	stateTranscribed  turnState = "transcribed"
	stateGenerating   turnState = "generating"
	stateGenerated    turnState = "generated"
	stateSynthesizing turnState = "synthesizing"
	stateDone         turnState = "done"
)

// TurnRequest is one boundary-facing turn: who is talking, to which persona,
// and the recorded audio.
type TurnRequest struct {
	SessionID   string
	CaseStudy   string
	Audio       []byte
	ContentType string
}

// TurnResult is the successful outcome of a turn.
type TurnResult struct {
	Transcript string
	Reply      string
	// AudioID resolves the synthesized reply through the artifact store.
	AudioID string
	// Tokens consumed by the generation call (API-reported or estimated).
	Tokens int
}

// Orchestrator drives one full turn: transcribe, generate, synthesize. It
// owns history updates and serializes turns per session through the store.
type Orchestrator struct {
	stt        Transcriber
	llm        LLM
	tts        TTS
	sessions   *session.Store
	maxHistory int
}

// NewOrchestrator wires the three capabilities and the session store.
// maxHistory caps the conversation context sent to the LLM.
func NewOrchestrator(stt Transcriber, llm LLM, tts TTS, sessions *session.Store, maxHistory int) *Orchestrator {
	if maxHistory <= 0 {
		maxHistory = 12
	}
	return &Orchestrator{stt: stt, llm: llm, tts: tts, sessions: sessions, maxHistory: maxHistory}
}

// Sessions exposes the store for boundary operations (reset).
func (o *Orchestrator) Sessions() *session.Store { return o.sessions }

// RunTurn executes the turn pipeline. On failure it returns a *StageError
// naming the stage; session.ErrBusy is returned as-is when a turn for the
// same session is already in flight. On a generation failure the user turn
// stays appended: a failed turn still consumes an utterance slot in history.
func (o *Orchestrator) RunTurn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	state := stateReceived
	if len(req.Audio) == 0 {
		return nil, failedAt(StageValidation, fmt.Errorf("no audio payload supplied"))
	}

	p := persona.Resolve(req.CaseStudy)
	sess, release, err := o.sessions.Acquire(req.SessionID, p.ID, p.Prompt)
	if err != nil {
		return nil, err
	}
	defer release()
	// The persona is fixed at session creation; a different case_study on a
	// later request does not switch the voice or prompt mid-conversation.
	p = persona.Resolve(sess.CaseStudy)

	state = stateTranscribing
	log.Printf("turn[%s]: %s (%d audio bytes)", req.SessionID, state, len(req.Audio))
	transcript, err := o.stt.Transcribe(ctx, req.Audio, req.ContentType)
	if err != nil {
		return nil, failedAt(StageTranscription, err)
	}
	if transcript == "" {
		return nil, failedAt(StageTranscription, ErrNoSpeech)
	}
	state = stateTranscribed
	log.Printf("turn[%s]: %s: %q", req.SessionID, state, transcript)

	state = stateGenerating
	sess.Append(session.RoleUser, transcript)
	sess.Trim(o.maxHistory)
	reply, tokens, err := o.llm.Complete(ctx, sess.History())
	if err != nil {
		return nil, failedAt(StageGeneration, err)
	}
	sess.Append(session.RoleAssistant, reply)
	sess.Trim(o.maxHistory)
	sess.AddTokens(tokens)
	state = stateGenerated
	log.Printf("turn[%s]: %s (%d tokens, %d total)", req.SessionID, state, tokens, sess.TokensUsed())

	state = stateSynthesizing
	outputID := fmt.Sprintf("%s_%d", req.SessionID, time.Now().UnixMilli())
	if err := o.tts.Synthesize(ctx, reply, p.VoiceID, outputID); err != nil {
		return nil, failedAt(StageSynthesis, err)
	}
	state = stateDone
	log.Printf("turn[%s]: %s audio=%s", req.SessionID, state, outputID)

	return &TurnResult{Transcript: transcript, Reply: reply, AudioID: outputID, Tokens: tokens}, nil
}

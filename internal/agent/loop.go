package agent

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chadiek/pitchcoach/internal/persona"
	"github.com/chadiek/pitchcoach/internal/session"
)

// Recorder captures one utterance from the microphone and returns the audio
// payload plus its content type.
type Recorder interface {
	Record(ctx context.Context) (audio []byte, contentType string, err error)
}

// Player plays a published reply artifact by output id.
type Player interface {
	Play(ctx context.Context, outputID string) error
}

var quitWords = []string{"quit", "exit", "stop"}

func heardQuitWord(transcript string) bool {
	lower := strings.ToLower(transcript)
	for _, w := range quitWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// Loop is the autonomous-loop variant: record, transcribe, generate,
// synthesize, play, strictly turn by turn, bounded by a cumulative token
// budget. It stops before starting a turn when the budget is already
// exhausted, and after completing a turn when that turn crosses the ceiling.
type Loop struct {
	stt      Transcriber
	llm      LLM
	tts      TTS
	rec      Recorder
	player   Player
	sessions *session.Store
	budget   *Budget

	caseStudy   string
	maxHistory  int
	turnTimeout time.Duration
	sessionID   string
}

// NewLoop wires the capabilities for one unattended run. The run owns a fresh
// session; its budget is independent of the session store's lifetime.
func NewLoop(stt Transcriber, llm LLM, tts TTS, rec Recorder, player Player, budget *Budget, caseStudy string, maxHistory int, turnTimeout time.Duration) *Loop {
	if maxHistory <= 0 {
		maxHistory = 12
	}
	if turnTimeout <= 0 {
		turnTimeout = 60 * time.Second
	}
	return &Loop{
		stt:         stt,
		llm:         llm,
		tts:         tts,
		rec:         rec,
		player:      player,
		sessions:    session.NewStore(),
		budget:      budget,
		caseStudy:   caseStudy,
		maxHistory:  maxHistory,
		turnTimeout: turnTimeout,
		sessionID:   "loop-" + uuid.NewString(),
	}
}

// Budget exposes the run's token budget.
func (l *Loop) Budget() *Budget { return l.budget }

// Run drives rounds until the budget is exhausted, a quit word is heard, or
// the context is canceled. Failed rounds are skipped, never retried.
func (l *Loop) Run(ctx context.Context) error {
	p := persona.Resolve(l.caseStudy)

	for round := 1; ; round++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if l.budget.Exhausted() {
			log.Printf("loop: token budget reached (%d/%d), ending before round %d", l.budget.Used(), l.budget.Ceiling(), round)
			return nil
		}
		log.Printf("loop: round %d", round)

		audio, contentType, err := l.rec.Record(ctx)
		if err != nil {
			return fmt.Errorf("record: %w", err)
		}

		turnCtx, cancel := context.WithTimeout(ctx, l.turnTimeout)
		done, err := l.runRound(turnCtx, p, audio, contentType)
		cancel()
		if err != nil {
			log.Printf("loop: round %d: %v", round, err)
			continue
		}
		if done {
			return nil
		}
		if l.budget.Exhausted() {
			log.Printf("loop: token budget reached (%d/%d) after this reply, ending conversation", l.budget.Used(), l.budget.Ceiling())
			return nil
		}
	}
}

// runRound executes one turn. done is true when a quit word ends the run.
func (l *Loop) runRound(ctx context.Context, p persona.Persona, audio []byte, contentType string) (done bool, err error) {
	transcript, err := l.stt.Transcribe(ctx, audio, contentType)
	if err != nil {
		return false, failedAt(StageTranscription, err)
	}
	if transcript == "" {
		return false, failedAt(StageTranscription, ErrNoSpeech)
	}
	log.Printf("loop: you said: %s", transcript)
	if heardQuitWord(transcript) {
		log.Printf("loop: heard quit command, exiting")
		return true, nil
	}

	sess, release, err := l.sessions.Acquire(l.sessionID, p.ID, p.Prompt)
	if err != nil {
		return false, err
	}
	defer release()

	sess.Append(session.RoleUser, transcript)
	sess.Trim(l.maxHistory)
	reply, tokens, err := l.llm.Complete(ctx, sess.History())
	if err != nil {
		return false, failedAt(StageGeneration, err)
	}
	sess.Append(session.RoleAssistant, reply)
	sess.Trim(l.maxHistory)
	sess.AddTokens(tokens)
	l.budget.Add(tokens)
	log.Printf("loop: reply: %s", reply)

	outputID := fmt.Sprintf("%s_%d", l.sessionID, time.Now().UnixMilli())
	if err := l.tts.Synthesize(ctx, reply, p.VoiceID, outputID); err != nil {
		return false, failedAt(StageSynthesis, err)
	}
	if l.player != nil {
		if err := l.player.Play(ctx, outputID); err != nil {
			log.Printf("loop: playback failed: %v", err)
		}
	}
	return false, nil
}

package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/chadiek/pitchcoach/internal/agent"
	"github.com/chadiek/pitchcoach/internal/artifact"
	"github.com/chadiek/pitchcoach/internal/audio"
	"github.com/chadiek/pitchcoach/internal/config"
	"github.com/chadiek/pitchcoach/internal/llm"
	"github.com/chadiek/pitchcoach/internal/persona"
	"github.com/chadiek/pitchcoach/internal/stt"
	"github.com/chadiek/pitchcoach/internal/tts"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	caseStudy := flag.String("case-study", persona.DefaultID, "persona to rehearse against")
	flag.Parse()

	cfg := config.Load()

	local, err := artifact.NewLocalStore(cfg.AudioDir)
	if err != nil {
		log.Fatalf("artifact store: %v", err)
	}

	sttClient := stt.NewDeepgramClient(cfg.DeepgramKey, cfg.DeepgramModel)
	// Boost the fundraising vocabulary the personas expect to hear.
	sttClient.Keywords = []string{"aquarium:2", "donation:2", "pledge:2", "campaign:2", "donor:2"}

	loop := agent.NewLoop(
		sttClient,
		llm.NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIModel, cfg.MaxReplyTokens, ""),
		tts.NewElevenLabsClient(cfg.ElevenLabsKey, local),
		audio.NewMicRecorder(cfg.RecordSeconds, cfg.CountdownSeconds),
		&audio.ExecPlayer{Artifacts: local},
		agent.NewBudget(cfg.TokenBudget),
		*caseStudy,
		cfg.MaxHistory,
		cfg.TurnTimeout,
	)

	log.Printf("voice pitch practice: %d-second turns, ~%d token budget, say quit/exit/stop to end", cfg.RecordSeconds, cfg.TokenBudget)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("loop: %v", err)
	}
	log.Printf("conversation ended, %d tokens used", loop.Budget().Used())
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chadiek/pitchcoach/internal/agent"
	"github.com/chadiek/pitchcoach/internal/artifact"
	"github.com/chadiek/pitchcoach/internal/config"
	"github.com/chadiek/pitchcoach/internal/httpserver"
	"github.com/chadiek/pitchcoach/internal/llm"
	"github.com/chadiek/pitchcoach/internal/session"
	"github.com/chadiek/pitchcoach/internal/stt"
	"github.com/chadiek/pitchcoach/internal/tts"
)

func main() {
	// Include sub-second precision in all log timestamps
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	cfg := config.Load()

	local, err := artifact.NewLocalStore(cfg.AudioDir)
	if err != nil {
		log.Fatalf("artifact store: %v", err)
	}
	var artifacts artifact.Store = local
	if cfg.SupabaseURL != "" {
		mirror, err := artifact.NewSupabaseMirror(local, artifact.SupabaseConfig{
			URL:            cfg.SupabaseURL,
			ServiceRoleKey: cfg.SupabaseKey,
			Bucket:         cfg.SupabaseBucket,
		})
		if err != nil {
			log.Fatalf("supabase mirror: %v", err)
		}
		artifacts = mirror
		log.Printf("artifacts mirrored to supabase bucket %s", cfg.SupabaseBucket)
	}

	sessions := session.NewStore()
	orch := agent.NewOrchestrator(
		stt.NewDeepgramClient(cfg.DeepgramKey, cfg.DeepgramModel),
		llm.NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIModel, cfg.MaxReplyTokens, ""),
		tts.NewElevenLabsClient(cfg.ElevenLabsKey, artifacts),
		sessions,
		cfg.MaxHistory,
	)

	e := httpserver.New()
	httpserver.NewHandlers(orch, sessions, artifacts, cfg.TurnTimeout).Register(e)

	server := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in background
	serverErrors := make(chan error, 1)
	go func() {
		log.Printf("server listening on %s", cfg.HTTPAddress)
		serverErrors <- server.ListenAndServe()
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	case sig := <-sigChan:
		log.Printf("shutdown signal received: %v", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = server.Close()
	}
}

package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	HTTPAddress string

	DeepgramKey   string
	DeepgramModel string
	OpenAIKey     string
	OpenAIModel   string
	ElevenLabsKey string

	AudioDir string

	// Conversation bounds.
	MaxHistory     int
	MaxReplyTokens int
	TokenBudget    int
	TurnTimeout    time.Duration

	// Loop recording.
	RecordSeconds    int
	CountdownSeconds int

	// Optional Supabase artifact mirroring; disabled when URL is empty.
	SupabaseURL    string
	SupabaseKey    string
	SupabaseBucket string
}

// Load reads environment variables and returns Config with sane defaults.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	addr := os.Getenv("HTTP_ADDRESS")
	if addr == "" {
		addr = ":8080"
	}

	deepgramKey := os.Getenv("DEEPGRAM_API_KEY")
	if deepgramKey == "" {
		log.Println("Warning: DEEPGRAM_API_KEY not set - transcription will not work")
	}
	deepgramModel := os.Getenv("DEEPGRAM_MODEL")
	if deepgramModel == "" {
		deepgramModel = "nova-2"
	}

	openAIKey := os.Getenv("OPENAI_API_KEY")
	if openAIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set - reply generation will not work")
	}
	openAIModel := os.Getenv("OPENAI_MODEL")
	if openAIModel == "" {
		openAIModel = "gpt-4o-mini"
	}

	elevenKey := os.Getenv("ELEVENLABS_API_KEY")
	if elevenKey == "" {
		log.Println("Warning: ELEVENLABS_API_KEY not set - TTS will not work")
	}

	audioDir := os.Getenv("AUDIO_OUT_DIR")
	if audioDir == "" {
		audioDir = "audio_out"
	}

	cfg := Config{
		HTTPAddress:      addr,
		DeepgramKey:      deepgramKey,
		DeepgramModel:    deepgramModel,
		OpenAIKey:        openAIKey,
		OpenAIModel:      openAIModel,
		ElevenLabsKey:    elevenKey,
		AudioDir:         audioDir,
		MaxHistory:       intEnv("MAX_HISTORY_MESSAGES", 12),
		MaxReplyTokens:   intEnv("MAX_REPLY_TOKENS", 256),
		TokenBudget:      intEnv("TOKEN_BUDGET", 3000),
		TurnTimeout:      time.Duration(intEnv("TURN_TIMEOUT_SECONDS", 60)) * time.Second,
		RecordSeconds:    intEnv("RECORD_SECONDS", 10),
		CountdownSeconds: intEnv("COUNTDOWN_SECONDS", 3),
		SupabaseURL:      os.Getenv("SUPABASE_URL"),
		SupabaseKey:      os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		SupabaseBucket:   envDefault("SUPABASE_BUCKET", "reply-audio"),
	}

	log.Printf("config: HTTP_ADDRESS=%s AUDIO_OUT_DIR=%s", cfg.HTTPAddress, cfg.AudioDir)
	return cfg
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Warning: %s=%q is not a number, using %d", key, v, def)
		return def
	}
	return n
}

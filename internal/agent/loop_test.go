package agent

import (
	"context"
	"testing"
	"time"
)

type scriptedRecorder struct {
	calls int
}

func (r *scriptedRecorder) Record(ctx context.Context) ([]byte, string, error) {
	r.calls++
	return []byte{1, 2, 3}, "audio/wav", nil
}

type scriptedSTT struct {
	transcripts []string
	calls       int
}

func (s *scriptedSTT) Transcribe(ctx context.Context, audio []byte, contentType string) (string, error) {
	i := s.calls
	s.calls++
	if i < len(s.transcripts) {
		return s.transcripts[i], nil
	}
	return "keep talking", nil
}

type countingPlayer struct{ plays int }

func (p *countingPlayer) Play(ctx context.Context, outputID string) error {
	p.plays++
	return nil
}

func newTestLoop(sttc Transcriber, llmc LLM, budget *Budget, rec Recorder, player Player) *Loop {
	return NewLoop(sttc, llmc, &fakeTTS{}, rec, player, budget, "template1", 12, time.Second)
}

func TestLoop_StopsBeforeTurnWhenBudgetAlreadyExhausted(t *testing.T) {
	budget := NewBudget(100)
	budget.Add(100)
	rec := &scriptedRecorder{}
	sttc := &scriptedSTT{}
	loop := newTestLoop(sttc, &fakeLLM{reply: "ok", tokens: 10}, budget, rec, &countingPlayer{})

	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if rec.calls != 0 || sttc.calls != 0 {
		t.Fatalf("no recording or transcription expected, got rec=%d stt=%d", rec.calls, sttc.calls)
	}
}

func TestLoop_StopsAfterTurnThatCrossesCeiling(t *testing.T) {
	budget := NewBudget(100)
	llmc := &fakeLLM{reply: "a pointed question", tokens: 60}
	player := &countingPlayer{}
	loop := newTestLoop(&scriptedSTT{}, llmc, budget, &scriptedRecorder{}, player)

	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	// 60 then 120 >= 100: exactly two turns, both completed and played.
	if llmc.calls != 2 {
		t.Fatalf("llm calls: got %d want 2", llmc.calls)
	}
	if player.plays != 2 {
		t.Fatalf("plays: got %d want 2", player.plays)
	}
	if budget.Used() != 120 {
		t.Fatalf("budget used: got %d want 120", budget.Used())
	}
}

func TestLoop_QuitWordEndsRun(t *testing.T) {
	llmc := &fakeLLM{reply: "ok", tokens: 1}
	sttc := &scriptedSTT{transcripts: []string{"first question", "ok let's stop here"}}
	loop := newTestLoop(sttc, llmc, NewBudget(10000), &scriptedRecorder{}, &countingPlayer{})

	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	// The quit round must not reach the generator.
	if llmc.calls != 1 {
		t.Fatalf("llm calls: got %d want 1", llmc.calls)
	}
}

func TestLoop_SkipsRoundOnEmptyTranscript(t *testing.T) {
	llmc := &fakeLLM{reply: "ok", tokens: 1}
	sttc := &scriptedSTT{transcripts: []string{"", "real question", "quit"}}
	loop := newTestLoop(sttc, llmc, NewBudget(10000), &scriptedRecorder{}, &countingPlayer{})

	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if llmc.calls != 1 {
		t.Fatalf("llm calls: got %d want 1 (empty round skipped, quit round short-circuits)", llmc.calls)
	}
}

func TestLoop_CancellationStopsRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	loop := newTestLoop(&scriptedSTT{}, &fakeLLM{reply: "ok", tokens: 1}, NewBudget(0), &scriptedRecorder{}, &countingPlayer{})
	if err := loop.Run(ctx); err == nil {
		t.Fatalf("expected context error")
	}
}

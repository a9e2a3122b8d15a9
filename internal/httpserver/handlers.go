package httpserver

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/chadiek/pitchcoach/internal/agent"
	"github.com/chadiek/pitchcoach/internal/artifact"
	"github.com/chadiek/pitchcoach/internal/session"
)

// TurnRunner executes one conversation turn.
type TurnRunner interface {
	RunTurn(ctx context.Context, req agent.TurnRequest) (*agent.TurnResult, error)
}

// Handlers bundles the boundary routes and their dependencies.
type Handlers struct {
	Turns       TurnRunner
	Sessions    *session.Store
	Artifacts   artifact.Store
	TurnTimeout time.Duration
}

func NewHandlers(turns TurnRunner, sessions *session.Store, artifacts artifact.Store, turnTimeout time.Duration) Handlers {
	if turnTimeout <= 0 {
		turnTimeout = 60 * time.Second
	}
	return Handlers{Turns: turns, Sessions: sessions, Artifacts: artifacts, TurnTimeout: turnTimeout}
}

func (h Handlers) Register(e *echo.Echo) {
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.POST("/api/chat", h.chat)
	e.GET("/api/audio/:id", h.audio)
	e.POST("/api/reset/:id", h.reset)
}

type chatResponse struct {
	Transcript string `json:"transcript"`
	Reply      string `json:"reply"`
	AudioURL   string `json:"audio_url"`
}

type errorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
}

func (h Handlers) chat(c echo.Context) error {
	file, err := c.FormFile("audio")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "no audio file provided", Stage: string(agent.StageValidation)})
	}
	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to read audio upload"})
	}
	audio, err := io.ReadAll(src)
	_ = src.Close()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to read audio upload"})
	}

	sessionID := c.FormValue("session_id")
	if sessionID == "" {
		sessionID = "default"
	}
	caseStudy := c.FormValue("case_study")

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.TurnTimeout)
	defer cancel()

	res, err := h.Turns.RunTurn(ctx, agent.TurnRequest{
		SessionID:   sessionID,
		CaseStudy:   caseStudy,
		Audio:       audio,
		ContentType: file.Header.Get("Content-Type"),
	})
	if err != nil {
		return h.turnError(c, err)
	}

	return c.JSON(http.StatusOK, chatResponse{
		Transcript: res.Transcript,
		Reply:      res.Reply,
		AudioURL:   "/api/audio/" + res.AudioID,
	})
}

// turnError maps pipeline failures onto boundary responses, one clear reason
// per failed turn.
func (h Handlers) turnError(c echo.Context, err error) error {
	if errors.Is(err, session.ErrBusy) {
		return c.JSON(http.StatusConflict, errorResponse{Error: "a turn is already in progress for this session"})
	}
	stage, ok := agent.FailedStage(err)
	if !ok {
		c.Echo().Logger.Errorf("turn failed: %v", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
	c.Echo().Logger.Errorf("turn failed at %s: %v", stage, err)
	switch stage {
	case agent.StageValidation:
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "no audio file provided", Stage: string(stage)})
	case agent.StageTranscription:
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "transcription failed - no speech detected", Stage: string(stage)})
	case agent.StageGeneration:
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "reply generation failed", Stage: string(stage)})
	case agent.StageSynthesis:
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "speech synthesis failed", Stage: string(stage)})
	}
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error", Stage: string(stage)})
}

func (h Handlers) audio(c echo.Context) error {
	id := c.Param("id")
	rc, size, err := h.Artifacts.Open(id)
	if err != nil {
		if errors.Is(err, artifact.ErrNotFound) {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "audio file not found"})
		}
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to open audio file"})
	}
	defer rc.Close()

	c.Response().Header().Set("Accept-Ranges", "bytes")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set(echo.HeaderContentLength, strconv.FormatInt(size, 10))
	return c.Stream(http.StatusOK, "audio/mpeg", rc)
}

func (h Handlers) reset(c echo.Context) error {
	h.Sessions.Reset(c.Param("id"))
	return c.JSON(http.StatusOK, map[string]string{"message": "conversation reset"})
}

package session

// Role tags a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single role-tagged message in a conversation history.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Session holds the conversation state for one session id. It is not safe for
// concurrent use on its own; the Store serializes turns per session id.
type Session struct {
	ID        string
	CaseStudy string

	history    []Turn
	tokensUsed int
}

func newSession(id, caseStudy, systemPrompt string) *Session {
	return &Session{
		ID:        id,
		CaseStudy: caseStudy,
		history:   []Turn{{Role: RoleSystem, Content: systemPrompt}},
	}
}

// Append adds a turn to the end of the history.
func (s *Session) Append(role Role, content string) {
	s.history = append(s.history, Turn{Role: role, Content: content})
}

// Trim caps the history at max turns, keeping the leading system turn and the
// most recent turns, oldest non-system turns dropped first. A max below 2 is
// treated as 2 so the system turn plus the latest turn always survive.
func (s *Session) Trim(max int) {
	if max < 2 {
		max = 2
	}
	if len(s.history) <= max {
		return
	}
	trimmed := make([]Turn, 0, max)
	trimmed = append(trimmed, s.history[0])
	trimmed = append(trimmed, s.history[len(s.history)-(max-1):]...)
	s.history = trimmed
}

// History returns a copy of the conversation history.
func (s *Session) History() []Turn {
	out := make([]Turn, len(s.history))
	copy(out, s.history)
	return out
}

// Len reports the number of turns currently held.
func (s *Session) Len() int { return len(s.history) }

// AddTokens adds a turn's token usage to the running total.
func (s *Session) AddTokens(n int) {
	if n > 0 {
		s.tokensUsed += n
	}
}

// TokensUsed reports the cumulative token usage recorded for this session.
func (s *Session) TokensUsed() int { return s.tokensUsed }

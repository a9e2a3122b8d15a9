package session

import (
	"fmt"
	"sync"
	"testing"
)

func TestSession_FirstTurnAlwaysSystem(t *testing.T) {
	st := NewStore()
	sess, release, err := st.Acquire("s1", "template1", "be the donor")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer release()

	for i := 0; i < 40; i++ {
		sess.Append(RoleUser, fmt.Sprintf("user %d", i))
		sess.Append(RoleAssistant, fmt.Sprintf("assistant %d", i))
		sess.Trim(12)
		h := sess.History()
		if h[0].Role != RoleSystem || h[0].Content != "be the donor" {
			t.Fatalf("iteration %d: first turn is %+v, want the system turn", i, h[0])
		}
	}
}

func TestSession_TrimKeepsMostRecentInOrder(t *testing.T) {
	st := NewStore()
	sess, release, err := st.Acquire("s1", "template1", "sys")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer release()

	for i := 0; i < 20; i++ {
		sess.Append(RoleUser, fmt.Sprintf("u%d", i))
	}
	sess.Trim(5)

	h := sess.History()
	if len(h) != 5 {
		t.Fatalf("history length after trim: got %d want 5", len(h))
	}
	if h[0].Role != RoleSystem {
		t.Fatalf("expected system turn first, got %v", h[0].Role)
	}
	want := []string{"u16", "u17", "u18", "u19"}
	for i, w := range want {
		if h[i+1].Content != w {
			t.Fatalf("turn %d: got %q want %q", i+1, h[i+1].Content, w)
		}
	}
}

func TestSession_TrimNoopUnderCap(t *testing.T) {
	st := NewStore()
	sess, release, _ := st.Acquire("s1", "template1", "sys")
	defer release()

	sess.Append(RoleUser, "hello")
	sess.Trim(12)
	if sess.Len() != 2 {
		t.Fatalf("expected 2 turns, got %d", sess.Len())
	}
}

func TestSession_TokensMonotonic(t *testing.T) {
	st := NewStore()
	sess, release, _ := st.Acquire("s1", "template1", "sys")
	defer release()

	sess.AddTokens(100)
	sess.AddTokens(-50)
	sess.AddTokens(25)
	if got := sess.TokensUsed(); got != 125 {
		t.Fatalf("tokens used: got %d want 125", got)
	}
}

func TestStore_ResetRecreatesFresh(t *testing.T) {
	st := NewStore()
	sess, release, _ := st.Acquire("s1", "template1", "sys")
	sess.Append(RoleUser, "remember me")
	sess.AddTokens(500)
	release()

	st.Reset("s1")

	sess2, release2, err := st.Acquire("s1", "template2", "other sys")
	if err != nil {
		t.Fatalf("acquire after reset: %v", err)
	}
	defer release2()
	h := sess2.History()
	if len(h) != 1 || h[0].Role != RoleSystem || h[0].Content != "other sys" {
		t.Fatalf("expected fresh history with new system turn, got %+v", h)
	}
	if sess2.TokensUsed() != 0 {
		t.Fatalf("expected zero tokens after reset, got %d", sess2.TokensUsed())
	}
}

func TestStore_ResetAbsentIsNoop(t *testing.T) {
	st := NewStore()
	st.Reset("nope")
	if st.Len() != 0 {
		t.Fatalf("expected empty store")
	}
}

func TestStore_SecondConcurrentAcquireRejected(t *testing.T) {
	st := NewStore()
	_, release, err := st.Acquire("s1", "template1", "sys")
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	if _, _, err := st.Acquire("s1", "template1", "sys"); err != ErrBusy {
		t.Fatalf("expected ErrBusy, got %v", err)
	}

	release()
	_, release2, err := st.Acquire("s1", "template1", "sys")
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	release2()
}

func TestStore_SessionsDoNotCrossContaminate(t *testing.T) {
	st := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", n)
			for j := 0; j < 50; j++ {
				sess, release, err := st.Acquire(id, "template1", "sys-"+id)
				if err != nil {
					t.Errorf("acquire %s: %v", id, err)
					return
				}
				sess.Append(RoleUser, id)
				sess.Trim(12)
				release()
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		id := fmt.Sprintf("s%d", i)
		sess, release, _ := st.Acquire(id, "template1", "sys-"+id)
		for _, turn := range sess.History() {
			if turn.Role == RoleUser && turn.Content != id {
				t.Fatalf("session %s contains foreign turn %q", id, turn.Content)
			}
		}
		release()
	}
}

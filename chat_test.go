package studybuddy

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

type scriptedChatCompleter struct {
	reply string
	err   error
	calls int
}

func (sc *scriptedChatCompleter) ChatComplete(ctx context.Context, model string, messages []ChatMessage) (string, error) {
	sc.calls++
	return sc.reply, sc.err
}

func TestNewChatSessionSeedsSystemPrompt(t *testing.T) {
	session := NewChatSession("llama-3.1-8b-instant")

	if len(session.Messages) != 1 {
		t.Fatalf("expected 1 seeded message, got %d", len(session.Messages))
	}
	if session.Messages[0].Role != RoleSystem {
		t.Errorf("expected system role, got %q", session.Messages[0].Role)
	}
	if !strings.Contains(session.Messages[0].Content, "study assistant") {
		t.Errorf("unexpected system prompt: %q", session.Messages[0].Content)
	}
}

func TestRespondRecordsBothTurns(t *testing.T) {
	session := NewChatSession("llama-3.1-8b-instant")
	engine := NewChatEngine(&scriptedChatCompleter{reply: "Paris is the capital of France."})

	reply, err := engine.Respond(context.Background(), session, "What is the capital of France?")
	if err != nil {
		t.Fatalf("respond failed: %v", err)
	}
	if reply != "Paris is the capital of France." {
		t.Errorf("unexpected reply: %q", reply)
	}

	if len(session.Messages) != 3 {
		t.Fatalf("expected system + user + assistant, got %d messages", len(session.Messages))
	}
	if session.Messages[1].Role != RoleUser || session.Messages[2].Role != RoleAssistant {
		t.Errorf("unexpected roles: %q, %q", session.Messages[1].Role, session.Messages[2].Role)
	}
}

func TestRespondRollsBackOnError(t *testing.T) {
	session := NewChatSession("llama-3.1-8b-instant")
	engine := NewChatEngine(&scriptedChatCompleter{err: fmt.Errorf("service unavailable")})

	if _, err := engine.Respond(context.Background(), session, "Hello?"); err == nil {
		t.Fatal("expected error")
	}
	if len(session.Messages) != 1 {
		t.Errorf("failed turn must not stay in history, got %d messages", len(session.Messages))
	}
}

func TestChatToContext(t *testing.T) {
	messages := []ChatMessage{
		{Role: RoleSystem, Content: "You are a helpful study assistant."},
		{Role: RoleUser, Content: "Explain photosynthesis."},
		{Role: RoleAssistant, Content: "Plants convert light into chemical energy."},
		{Role: RoleUser, Content: "What about respiration?"},
	}

	got := ChatToContext(messages)
	want := "User: Explain photosynthesis.\n" +
		"Assistant: Plants convert light into chemical energy.\n" +
		"User: What about respiration?"
	if got != want {
		t.Errorf("ChatToContext = %q, want %q", got, want)
	}
}

func TestHasMeaningfulChat(t *testing.T) {
	system := ChatMessage{Role: RoleSystem, Content: "prompt"}
	user := ChatMessage{Role: RoleUser, Content: "hi"}
	assistant := ChatMessage{Role: RoleAssistant, Content: "hello"}

	tests := []struct {
		name     string
		messages []ChatMessage
		want     bool
	}{
		{name: "system only", messages: []ChatMessage{system}, want: false},
		{name: "user only", messages: []ChatMessage{system, user}, want: false},
		{name: "full exchange", messages: []ChatMessage{system, user, assistant}, want: true},
		{name: "empty", messages: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasMeaningfulChat(tt.messages); got != tt.want {
				t.Errorf("HasMeaningfulChat = %v, want %v", got, tt.want)
			}
		})
	}
}

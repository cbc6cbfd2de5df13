package studybuddy

import (
	"context"
	"fmt"
	"strings"
)

// ChatSession is one study conversation with a model. The first message is
// always the study-assistant system prompt.
type ChatSession struct {
	Model    string
	Messages []ChatMessage
}

// NewChatSession starts a conversation with the given model
func NewChatSession(model string) *ChatSession {
	return &ChatSession{
		Model: model,
		Messages: []ChatMessage{
			{Role: RoleSystem, Content: ChatSystemPrompt},
		},
	}
}

// ChatEngine runs study conversations against a chat model
type ChatEngine struct {
	completer ChatCompleter
}

// NewChatEngine creates a chat engine backed by the given completer
func NewChatEngine(completer ChatCompleter) *ChatEngine {
	return &ChatEngine{completer: completer}
}

// Respond appends the user's message to the session, asks the model for a
// reply with the full history, records the reply, and returns it. On error
// the user's message is rolled back so the session stays consistent.
func (ce *ChatEngine) Respond(ctx context.Context, session *ChatSession, userInput string) (string, error) {
	session.Messages = append(session.Messages, ChatMessage{Role: RoleUser, Content: userInput})

	reply, err := ce.completer.ChatComplete(ctx, session.Model, session.Messages)
	if err != nil {
		session.Messages = session.Messages[:len(session.Messages)-1]
		return "", fmt.Errorf("chat response failed: %w", err)
	}

	session.Messages = append(session.Messages, ChatMessage{Role: RoleAssistant, Content: reply})
	return reply, nil
}

// ChatToContext renders the non-system turns of a conversation as study
// material for quiz generation, one "User: ..." or "Assistant: ..." line
// per turn, in order.
func ChatToContext(messages []ChatMessage) string {
	var lines []string
	for _, m := range messages {
		switch m.Role {
		case RoleUser:
			lines = append(lines, "User: "+m.Content)
		case RoleAssistant:
			lines = append(lines, "Assistant: "+m.Content)
		}
	}
	return strings.Join(lines, "\n")
}

// HasMeaningfulChat reports whether a conversation has at least one user
// and one assistant turn, the minimum needed to seed a quiz.
func HasMeaningfulChat(messages []ChatMessage) bool {
	var hasUser, hasAssistant bool
	for _, m := range messages {
		switch m.Role {
		case RoleUser:
			hasUser = true
		case RoleAssistant:
			hasAssistant = true
		}
	}
	return hasUser && hasAssistant
}

package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sankat-mitra/api/model"
)

// agentFunc adapts a plain function to the AnswerClient boundary.
type agentFunc func(ctx context.Context, prompt string) (string, error)

func (f agentFunc) Answer(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func newTestResponder(t *testing.T, agent AnswerClient) (*Responder, *MessageStore, *SessionDirectory) {
	t.Helper()
	store, messages, directory := newTestStores(0)
	seedUser(t, store, "user-1")
	return NewResponder(directory, messages, agent, 4), messages, directory
}

func TestRespondSmallTalkSkipsAgent(t *testing.T) {
	called := false
	responder, messages, _ := newTestResponder(t, agentFunc(func(ctx context.Context, prompt string) (string, error) {
		called = true
		return "should not happen", nil
	}))
	ctx := context.Background()

	result, err := responder.Respond(ctx, QueryRequest{UserID: "user-1", Query: "hi", Language: LanguageEnglish})
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if called {
		t.Fatal("small talk must not reach the agent")
	}
	if result.Kind != ResponseKindSmallTalk || result.Intent != IntentGreeting {
		t.Fatalf("wrong classification: kind=%q intent=%q", result.Kind, result.Intent)
	}
	if result.Reply != SmallTalkReply(LanguageEnglish, IntentGreeting) {
		t.Fatalf("unexpected reply: %q", result.Reply)
	}

	// Both turns are persisted, user first.
	log, err := messages.List(ctx, "user-1", result.SessionID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(log) != 2 {
		t.Fatalf("expected 2 persisted turns, got %d", len(log))
	}
	if log[0].Role != model.MessageRoleUser || log[1].Role != model.MessageRoleAssistant {
		t.Fatalf("turn roles out of order: %q then %q", log[0].Role, log[1].Role)
	}
}

func TestRespondKnowledgePathCarriesContextAndDirective(t *testing.T) {
	var seenPrompt string
	responder, _, _ := newTestResponder(t, agentFunc(func(ctx context.Context, prompt string) (string, error) {
		seenPrompt = prompt
		return "Move to higher ground immediately.", nil
	}))
	ctx := context.Background()

	// First turn primes the history.
	if _, err := responder.Respond(ctx, QueryRequest{UserID: "user-1", Query: "what is a flood warning", Language: LanguageHindi}); err != nil {
		t.Fatalf("first respond: %v", err)
	}

	result, err := responder.Respond(ctx, QueryRequest{UserID: "user-1", Query: "and what should i do then", Language: LanguageHindi})
	if err != nil {
		t.Fatalf("second respond: %v", err)
	}
	if result.Kind != ResponseKindKnowledge {
		t.Fatalf("expected knowledge kind, got %q", result.Kind)
	}
	if result.Reply != "Move to higher ground immediately." {
		t.Fatalf("agent answer not passed through: %q", result.Reply)
	}

	if !strings.Contains(seenPrompt, "Human: what is a flood warning") {
		t.Fatalf("prompt missing prior turn:\n%s", seenPrompt)
	}
	if !strings.Contains(seenPrompt, "Question: and what should i do then") {
		t.Fatalf("prompt missing the raw query:\n%s", seenPrompt)
	}
	if !strings.Contains(seenPrompt, LanguageDirective(LanguageHindi)) {
		t.Fatalf("prompt missing the Hindi directive:\n%s", seenPrompt)
	}
}

func TestRespondFirstTurnUsesSentinelContext(t *testing.T) {
	var seenPrompt string
	responder, _, _ := newTestResponder(t, agentFunc(func(ctx context.Context, prompt string) (string, error) {
		seenPrompt = prompt
		return "answer", nil
	}))

	if _, err := responder.Respond(context.Background(), QueryRequest{UserID: "user-1", Query: "how do i prepare an emergency kit", Language: LanguageEnglish}); err != nil {
		t.Fatalf("respond: %v", err)
	}
	if !strings.Contains(seenPrompt, NoHistorySentinel) {
		t.Fatalf("first turn prompt missing the no-history sentinel:\n%s", seenPrompt)
	}
	// The query itself is not history on its own turn.
	if strings.Contains(seenPrompt, "Human: how do i prepare an emergency kit") {
		t.Fatalf("current turn leaked into the context block:\n%s", seenPrompt)
	}
}

func TestRespondAgentFailureBecomesApology(t *testing.T) {
	responder, messages, _ := newTestResponder(t, agentFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("upstream timeout")
	}))
	ctx := context.Background()

	result, err := responder.Respond(ctx, QueryRequest{UserID: "user-1", Query: "what causes landslides", Language: LanguageEnglish})
	if err != nil {
		t.Fatalf("inference failure must not abort the turn: %v", err)
	}
	if result.Kind != ResponseKindApology {
		t.Fatalf("expected apology kind, got %q", result.Kind)
	}
	if !strings.Contains(result.Reply, "upstream timeout") {
		t.Fatalf("apology does not embed the failure detail: %q", result.Reply)
	}
	if !strings.Contains(result.Reply, ErrInferenceUnavailable.Error()) {
		t.Fatalf("failure not classified into the taxonomy: %q", result.Reply)
	}

	// The apology is persisted like any other assistant turn.
	log, err := messages.List(ctx, "user-1", result.SessionID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(log) != 2 || log[1].Content != result.Reply {
		t.Fatalf("apology turn not persisted: %+v", log)
	}
}

func TestBuildPrompt(t *testing.T) {
	history := []model.ChatMessage{
		{Role: model.MessageRoleUser, Content: "hi"},
		{Role: model.MessageRoleAssistant, Content: "hello"},
	}

	got := BuildPrompt(history, "is my area flood prone", LanguageEnglish, 8)
	want := "Previous conversation:\nHuman: hi\nAI Assistant: hello\n\nQuestion: is my area flood prone"
	if got != want {
		t.Fatalf("prompt mismatch:\n got: %q\nwant: %q", got, want)
	}

	withDirective := BuildPrompt(nil, "sawal", LanguageHindi, 8)
	if !strings.HasSuffix(withDirective, LanguageDirective(LanguageHindi)) {
		t.Fatalf("directive must trail the prompt: %q", withDirective)
	}
}

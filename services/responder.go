package services

import (
	"context"
	"log"
	"strings"

	"github.com/sankat-mitra/api/model"
)

// AnswerClient is the retrieval+LLM collaborator boundary. It receives one
// composite text blob (context + query + optional language directive) and
// returns plain answer text; indexing, embedding and generation are its
// concern entirely.
type AnswerClient interface {
	Answer(ctx context.Context, prompt string) (string, error)
}

// ResponseKind tags how a reply was produced.
type ResponseKind string

const (
	ResponseKindSmallTalk ResponseKind = "small_talk"
	ResponseKindKnowledge ResponseKind = "knowledge"
	ResponseKindApology   ResponseKind = "apology"
)

// Responder classifies queries as small talk vs. knowledge questions and
// produces the outgoing text. State-free per call: the context window is
// rebuilt fresh from the persisted log on every query, so the agent always
// sees the latest turns even under concurrent devices.
type Responder struct {
	directory  *SessionDirectory
	messages   *MessageStore
	agent      AnswerClient
	maxContext int
}

// NewResponder wires the responder. maxContext <= 0 falls back to
// DefaultContextWindowSize.
func NewResponder(directory *SessionDirectory, messages *MessageStore, agent AnswerClient, maxContext int) *Responder {
	if maxContext <= 0 {
		maxContext = DefaultContextWindowSize
	}
	return &Responder{
		directory:  directory,
		messages:   messages,
		agent:      agent,
		maxContext: maxContext,
	}
}

// QueryRequest is one user turn.
type QueryRequest struct {
	UserID   string
	Query    string
	Language Language
}

// QueryResult is the outcome of one turn. UserMessage or AssistantMessage
// may be nil when the store rejected the write; the reply text is still
// produced, the turn is just not durable.
type QueryResult struct {
	SessionID        string
	Reply            string
	Kind             ResponseKind
	Intent           SmallTalkIntent // set for small-talk replies
	UserMessage      *model.ChatMessage
	AssistantMessage *model.ChatMessage
}

// Respond runs one turn: resolve the current session, persist the user
// message, pick the small-talk or knowledge path, persist the reply.
// External failures surface as user-facing text, never as an aborted
// interaction.
func (r *Responder) Respond(ctx context.Context, req QueryRequest) (*QueryResult, error) {
	sessionID, err := r.directory.GetCurrent(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	result := &QueryResult{SessionID: sessionID}

	// History is read before this turn is appended: the context window
	// carries previous turns, the raw query rides alongside it.
	history, err := r.messages.List(ctx, req.UserID, sessionID)
	if err != nil {
		log.Printf("[Responder] Warning: history unavailable user=%s session=%s: %v", req.UserID, sessionID, err)
		history = nil
	}

	userMsg, err := r.messages.Append(ctx, req.UserID, sessionID, model.MessageRoleUser, req.Query, map[string]interface{}{
		model.MetaKeyLanguage: string(req.Language),
	})
	if err != nil {
		// Not durably saved; the turn still gets an answer.
		log.Printf("[Responder] Warning: user message not saved user=%s session=%s: %v", req.UserID, sessionID, err)
	}
	result.UserMessage = userMsg

	if intent, ok := ClassifySmallTalk(req.Query); ok {
		result.Kind = ResponseKindSmallTalk
		result.Intent = intent
		result.Reply = SmallTalkReply(req.Language, intent)
	} else {
		result.Reply, result.Kind = r.answerFromKnowledge(ctx, req, history)
	}

	assistantMsg, err := r.messages.Append(ctx, req.UserID, sessionID, model.MessageRoleAssistant, result.Reply, map[string]interface{}{
		model.MetaKeyLanguage:     string(req.Language),
		model.MetaKeyResponseKind: string(result.Kind),
		model.MetaKeyIntent:       string(result.Intent),
	})
	if err != nil {
		log.Printf("[Responder] Warning: assistant message not saved user=%s session=%s: %v", req.UserID, sessionID, err)
	}
	result.AssistantMessage = assistantMsg

	return result, nil
}

// answerFromKnowledge submits context + query (+ language directive) to the
// agent. A collaborator failure becomes an apology embedding the error
// detail rather than propagating.
func (r *Responder) answerFromKnowledge(ctx context.Context, req QueryRequest, history []model.ChatMessage) (string, ResponseKind) {
	prompt := BuildPrompt(history, req.Query, req.Language, r.maxContext)

	answer, err := r.agent.Answer(ctx, prompt)
	if err != nil {
		err = classifyInferenceErr(err)
		log.Printf("[Responder] Inference failed user=%s: %v", req.UserID, err)
		return ApologyReply(req.Language, err), ResponseKindApology
	}
	return answer, ResponseKindKnowledge
}

// BuildPrompt assembles the composite blob handed to the collaborator:
// context block, raw query, optional language directive.
func BuildPrompt(history []model.ChatMessage, query string, lang Language, maxContext int) string {
	parts := []string{
		BuildContext(history, maxContext),
		"Question: " + query,
	}
	if directive := LanguageDirective(lang); directive != "" {
		parts = append(parts, directive)
	}
	return strings.Join(parts, "\n\n")
}

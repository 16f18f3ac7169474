package chat

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sankat-mitra/api/services"
	"github.com/sankat-mitra/api/utils/middleware"
	"github.com/sankat-mitra/api/utils/response"
	"github.com/sankat-mitra/api/utils/validation"
)

// ChatHandler handles chat-related requests
type ChatHandler struct {
	validator *validation.Validator
	lifecycle *services.LifecycleController
	responder *services.Responder
}

// NewChatHandler creates a new chat handler
func NewChatHandler(lifecycle *services.LifecycleController, responder *services.Responder) *ChatHandler {
	return &ChatHandler{
		validator: validation.NewValidator(),
		lifecycle: lifecycle,
		responder: responder,
	}
}

// RenameSessionRequest represents the request to rename a chat session
type RenameSessionRequest struct {
	Title string `json:"title" validate:"required,min=1,max=255"`
}

// QueryRequest represents one conversational turn
type QueryRequest struct {
	Query    string `json:"query" validate:"required,min=1,max=10000"`
	Language string `json:"language" validate:"omitempty,oneof=en hi"`
}

// ListSessions handles GET /api/v1/chat/sessions
func (h *ChatHandler) ListSessions(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	sessions, err := h.lifecycle.Sessions(c.Context(), userID)
	if err != nil {
		return storeError(c, err, "Failed to fetch sessions")
	}

	return response.Success(c, fiber.Map{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// CreateSession handles POST /api/v1/chat/sessions
func (h *ChatHandler) CreateSession(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	session, err := h.lifecycle.Create(c.Context(), userID)
	if err != nil {
		return storeError(c, err, "Failed to create session")
	}

	return response.Created(c, session)
}

// CurrentSession handles GET /api/v1/chat/sessions/current
func (h *ChatHandler) CurrentSession(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	session, err := h.lifecycle.StartOrResume(c.Context(), userID)
	if err != nil {
		return storeError(c, err, "Failed to resolve current session")
	}

	return response.Success(c, session)
}

// SelectSession handles POST /api/v1/chat/sessions/:id/select
func (h *ChatHandler) SelectSession(c *fiber.Ctx) error {
	id := c.Params("id")

	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	session, err := h.lifecycle.Select(c.Context(), userID, id)
	if err != nil {
		return storeError(c, err, "Failed to select session")
	}

	return response.Success(c, session)
}

// RenameSession handles PATCH /api/v1/chat/sessions/:id
func (h *ChatHandler) RenameSession(c *fiber.Ctx) error {
	id := c.Params("id")

	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req RenameSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	if err := h.lifecycle.Rename(c.Context(), userID, id, req.Title); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return response.NotFound(c, "Session not found")
		}
		return storeError(c, err, "Failed to rename session")
	}

	return response.SuccessWithMessage(c, "Session renamed successfully", fiber.Map{
		"session_id": id,
		"title":      req.Title,
	})
}

// DeleteSession handles DELETE /api/v1/chat/sessions/:id
func (h *ChatHandler) DeleteSession(c *fiber.Ctx) error {
	id := c.Params("id")

	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	// Deleting an already-gone session is a no-op, not an error.
	if err := h.lifecycle.Remove(c.Context(), userID, id); err != nil {
		return storeError(c, err, "Failed to delete session")
	}

	return response.SuccessWithMessage(c, "Session deleted successfully", fiber.Map{
		"session_id": id,
	})
}

// GetMessages handles GET /api/v1/chat/sessions/:id/messages
func (h *ChatHandler) GetMessages(c *fiber.Ctx) error {
	id := c.Params("id")

	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	messages, err := h.lifecycle.Transcript(c.Context(), userID, id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return response.NotFound(c, "Session not found")
		}
		return storeError(c, err, "Failed to fetch messages")
	}

	return response.Success(c, fiber.Map{
		"session_id": id,
		"messages":   messages,
		"count":      len(messages),
	})
}

// Query handles POST /api/v1/chat/query
func (h *ChatHandler) Query(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req QueryRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	// Language falls back to the user's profile preference.
	lang := req.Language
	if lang == "" {
		lang = user.Language
	}

	result, err := h.responder.Respond(c.Context(), services.QueryRequest{
		UserID:   user.ID,
		Query:    req.Query,
		Language: services.ParseLanguage(lang),
	})
	if err != nil {
		return storeError(c, err, "Failed to process query")
	}

	return response.Success(c, fiber.Map{
		"session_id":        result.SessionID,
		"reply":             result.Reply,
		"kind":              result.Kind,
		"user_message":      result.UserMessage,
		"assistant_message": result.AssistantMessage,
	})
}

// storeError maps service errors onto HTTP responses.
func storeError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return response.NotFound(c, "Resource not found")
	case errors.Is(err, services.ErrStoreUnavailable):
		return response.ServiceUnavailable(c, "Storage temporarily unavailable")
	default:
		return response.InternalServerError(c, fallback+": "+err.Error())
	}
}

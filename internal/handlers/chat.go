package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/formaplus/elearning-backend/internal/platform/logger"
	"github.com/formaplus/elearning-backend/internal/requestdata"
	"github.com/formaplus/elearning-backend/internal/services"
)

const chatSessionCookie = "chat_session"

type ChatHandler struct {
	log             *logger.Logger
	dialogueService services.DialogueService
	sessionTTLSecs  int
}

func NewChatHandler(log *logger.Logger, dialogueService services.DialogueService, sessionTTLSecs int) *ChatHandler {
	return &ChatHandler{
		log:             log.With("handler", "ChatHandler"),
		dialogueService: dialogueService,
		sessionTTLSecs:  sessionTTLSecs,
	}
}

type chatRequest struct {
	Message string `json:"message"`
}

// sessionID reads the chat session cookie, minting one on first contact.
func (h *ChatHandler) sessionID(c *gin.Context) string {
	if sid, err := c.Cookie(chatSessionCookie); err == nil && sid != "" {
		return sid
	}
	sid := uuid.NewString()
	c.SetCookie(chatSessionCookie, sid, h.sessionTTLSecs, "/", "", false, true)
	return sid
}

// Message is the stateful guided dialogue: one message, one transition,
// one HTML-fragment response.
func (h *ChatHandler) Message(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	var userID uuid.UUID
	if rd := requestdata.GetRequestData(c.Request.Context()); rd != nil {
		userID = rd.UserID
	}
	response := h.dialogueService.HandleMessage(c.Request.Context(), h.sessionID(c), userID, req.Message)
	RespondOK(c, gin.H{"response": response})
}

// Search is the stateless keyword variant bound next to the dialogue.
func (h *ChatHandler) Search(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	response := h.dialogueService.QuickSearch(c.Request.Context(), req.Message)
	RespondOK(c, gin.H{"response": response})
}

func (h *ChatHandler) Reset(c *gin.Context) {
	h.dialogueService.Reset(c.Request.Context(), h.sessionID(c))
	RespondOK(c, gin.H{"reset": true})
}

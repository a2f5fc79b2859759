package router

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/amzmarine/crm/internal/assistant"
	"github.com/amzmarine/crm/internal/crm/model"
	"github.com/amzmarine/crm/internal/crm/service"
)

// Messages shown to users when the assistant fails. Details stay in the logs.
const (
	msgChatBusy      = "Sorry, the AI system is busy right now. Please try again shortly."
	msgChatEmpty     = "Sorry, a technical problem occurred."
	msgBriefFailed   = "Operational brief is unavailable right now."
	msgQueryFailed   = "System conflict. Accessing data node failed."
	msgImageFailed   = "Sorry, image generation failed. Please try again."
	msgImportFailed  = "Failed to parse text. Using manual entry."
	msgAssistantDown = "The AI assistant is not configured."
)

type chatRequest struct {
	Message string              `json:"message" binding:"required"`
	History []assistant.Message `json:"history" binding:"dive"`
}

type queryRequest struct {
	Question string `json:"question" binding:"required"`
}

type imageRequest struct {
	Prompt string              `json:"prompt" binding:"required"`
	Size   assistant.ImageSize `json:"size"`
}

type importRequest struct {
	Text   string `json:"text" binding:"required"`
	Commit bool   `json:"commit"`
}

// writeAssistantError answers with a generic message for assistant failures
// and the usual mapping for validation and persistence errors.
func writeAssistantError(c *gin.Context, err error, action, message string) {
	switch {
	case errors.Is(err, model.ErrValidation):
		writeServiceError(c, err, action)
	case errors.Is(err, assistant.ErrUnavailable):
		writeError(c, http.StatusServiceUnavailable, "assistant_unavailable", msgAssistantDown)
	default:
		slog.WarnContext(c.Request.Context(), "assistant request failed", "action", action, "error", err)
		writeError(c, http.StatusBadGateway, "assistant_error", message)
	}
}

// HandleChat handles POST /api/assistant/chat requests
func (cr *CRMRouter) HandleChat(c *gin.Context) {
	var req chatRequest
	if !bindJSON(c, &req) {
		return
	}
	reply, err := cr.svc.Chat(c.Request.Context(), req.Message, req.History)
	if err != nil {
		writeAssistantError(c, err, "chat", msgChatBusy)
		return
	}
	if strings.TrimSpace(reply) == "" {
		reply = msgChatEmpty
	}
	c.JSON(http.StatusOK, assistant.Message{Role: assistant.RoleModel, Text: reply})
}

// HandleBrief handles POST /api/assistant/brief requests
func (cr *CRMRouter) HandleBrief(c *gin.Context) {
	brief, err := cr.svc.Brief(c.Request.Context())
	if err != nil {
		writeAssistantError(c, err, "brief", msgBriefFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"brief": brief})
}

// HandleQuery handles POST /api/assistant/query requests
func (cr *CRMRouter) HandleQuery(c *gin.Context) {
	var req queryRequest
	if !bindJSON(c, &req) {
		return
	}
	answer, err := cr.svc.Query(c.Request.Context(), req.Question)
	if err != nil {
		writeAssistantError(c, err, "query", msgQueryFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": answer})
}

// HandleGenerateImage handles POST /api/assistant/images requests
func (cr *CRMRouter) HandleGenerateImage(c *gin.Context) {
	var req imageRequest
	if !bindJSON(c, &req) {
		return
	}
	uri, err := cr.svc.GenerateImage(c.Request.Context(), req.Prompt, req.Size)
	if err != nil {
		writeAssistantError(c, err, "generate image", msgImageFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"image": uri})
}

// HandleImportShipment handles POST /api/shipments/import requests
// Body: text, commit. Without commit the draft is returned for review.
func (cr *CRMRouter) HandleImportShipment(c *gin.Context) {
	var req importRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := cr.svc.ImportShipmentDraft(c.Request.Context(), req.Text, req.Commit)
	if err != nil {
		if errors.Is(err, service.ErrParseFailed) {
			writeAssistantError(c, err, "import shipment", msgImportFailed)
			return
		}
		writeServiceError(c, err, "import shipment")
		return
	}
	status := http.StatusOK
	if result.Committed {
		status = http.StatusCreated
	}
	c.JSON(status, result)
}

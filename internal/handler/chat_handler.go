package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fyp-manager-api/internal/dto"
	"github.com/noah-isme/fyp-manager-api/pkg/response"
)

type chatService interface {
	Reply(ctx context.Context, req dto.ChatRequest) (*dto.ChatResponse, error)
}

// ChatHandler proxies the assistant conversation.
type ChatHandler struct {
	service chatService
}

// NewChatHandler constructs the handler.
func NewChatHandler(service chatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// Reply godoc
// @Summary Ask the assistant
// @Description Forwards the last user message to the configured completion provider
// @Tags Chat
// @Accept json
// @Produce json
// @Param payload body dto.ChatRequest true "Conversation"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /chat [post]
func (h *ChatHandler) Reply(c *gin.Context) {
	var req dto.ChatRequest
	if !bindJSON(c, &req, "invalid chat payload") {
		return
	}
	reply, err := h.service.Reply(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reply, nil)
}

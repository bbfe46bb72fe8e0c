package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/fyp-manager-api/internal/dto"
	appErrors "github.com/noah-isme/fyp-manager-api/pkg/errors"
	"github.com/noah-isme/fyp-manager-api/pkg/llm"
)

type completer interface {
	Complete(ctx context.Context, messages []llm.Message) (string, error)
}

// ChatService relays a conversation to the completion provider.
type ChatService struct {
	client  completer
	timeout time.Duration
	metrics *MetricsService
	logger  *zap.Logger
}

// NewChatService constructs a ChatService. A non-positive timeout disables the per-call deadline.
func NewChatService(client completer, timeout time.Duration, metrics *MetricsService, logger *zap.Logger) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{client: client, timeout: timeout, metrics: metrics, logger: logger}
}

// Reply forwards only the most recent user message.
func (s *ChatService) Reply(ctx context.Context, req dto.ChatRequest) (*dto.ChatResponse, error) {
	if len(req.Messages) == 0 {
		return nil, appErrors.Validation("messages are required")
	}
	last, ok := lastUserMessage(req.Messages)
	if !ok {
		return nil, appErrors.Validation("messages must contain a user message")
	}
	if s.client == nil {
		return nil, appErrors.Clone(appErrors.ErrUpstream, "chat provider is not configured")
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	content, err := s.client.Complete(ctx, []llm.Message{{Role: "user", Content: last}})
	if err != nil {
		s.metrics.ChatCompleted(false)
		s.logger.Warn("chat completion failed", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to get a reply from the assistant")
	}
	s.metrics.ChatCompleted(true)
	return &dto.ChatResponse{Content: content}, nil
}

func lastUserMessage(messages []dto.ChatMessage) (string, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		m := messages[i]
		if strings.EqualFold(m.Role, "user") && strings.TrimSpace(m.Content) != "" {
			return m.Content, true
		}
	}
	return "", false
}

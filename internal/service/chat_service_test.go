package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fyp-manager-api/internal/dto"
	"github.com/noah-isme/fyp-manager-api/pkg/llm"
)

type stubCompleter struct {
	reply    string
	err      error
	received []llm.Message
	deadline bool
}

func (s *stubCompleter) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	s.received = messages
	_, s.deadline = ctx.Deadline()
	return s.reply, s.err
}

func TestChatServiceForwardsLastUserMessage(t *testing.T) {
	stub := &stubCompleter{reply: "Try a literature survey first."}
	svc := NewChatService(stub, time.Second, nil, nil)

	res, err := svc.Reply(context.Background(), dto.ChatRequest{Messages: []dto.ChatMessage{
		{Role: "user", Content: "first question"},
		{Role: "assistant", Content: "an answer"},
		{Role: "user", Content: "how do I start my project?"},
		{Role: "assistant", Content: "thinking"},
	}})
	require.NoError(t, err)
	assert.Equal(t, "Try a literature survey first.", res.Content)
	assert.Equal(t, []llm.Message{{Role: "user", Content: "how do I start my project?"}}, stub.received)
	assert.True(t, stub.deadline)
}

func TestChatServiceRejectsMissingUserMessage(t *testing.T) {
	svc := NewChatService(&stubCompleter{}, 0, nil, nil)

	_, err := svc.Reply(context.Background(), dto.ChatRequest{})
	requireAppError(t, err, http.StatusBadRequest, "messages are required")

	_, err = svc.Reply(context.Background(), dto.ChatRequest{Messages: []dto.ChatMessage{{Role: "system", Content: "be nice"}}})
	requireAppError(t, err, http.StatusBadRequest, "messages must contain a user message")
}

func TestChatServiceProviderFailure(t *testing.T) {
	svc := NewChatService(&stubCompleter{err: errors.New("status 500")}, 0, nil, nil)
	_, err := svc.Reply(context.Background(), dto.ChatRequest{Messages: []dto.ChatMessage{{Role: "user", Content: "hi"}}})
	requireAppError(t, err, http.StatusBadGateway, "failed to get a reply from the assistant")

	unconfigured := NewChatService(nil, 0, nil, nil)
	_, err = unconfigured.Reply(context.Background(), dto.ChatRequest{Messages: []dto.ChatMessage{{Role: "user", Content: "hi"}}})
	requireAppError(t, err, http.StatusBadGateway, "")
}

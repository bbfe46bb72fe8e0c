package dto

// ChatMessage is a single turn of the conversation sent by the client.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest carries the conversation so far.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
}

// ChatResponse is the assistant reply.
type ChatResponse struct {
	Content string `json:"content"`
}

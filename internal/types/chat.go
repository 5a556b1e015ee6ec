package types

import "github.com/go-playground/validator/v10"

// ReplyKind discriminates assistant replies.
type ReplyKind string

const (
	// ReplyChat is a plain conversational message.
	ReplyChat ReplyKind = "chat"
	// ReplyTriggerGeneration asks the caller to start resume optimization.
	ReplyTriggerGeneration ReplyKind = "trigger_generation"
)

// Chat message roles.
const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is one turn of the assistant conversation.
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

// ChatReply is the assistant's tagged response.
type ChatReply struct {
	Kind    ReplyKind          `json:"kind"`
	Message string             `json:"message"`
	Payload *GenerationTrigger `json:"payload,omitempty"`
}

// GenerationTrigger carries what the assistant collected before switching to generation.
type GenerationTrigger struct {
	JobDescription string `json:"jobDescription"`
	TargetRole     string `json:"targetRole,omitempty"`
}

// Validate validates the ChatMessage using the validator.
func (m *ChatMessage) Validate() error {
	validate := validator.New()
	return validate.Struct(m)
}

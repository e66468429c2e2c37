package conversation

import "time"

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single turn shown in the assistant panel.
type Message struct {
	ID         string    `json:"id"`
	Role       Role      `json:"role"`
	Content    string    `json:"content"`
	InProgress bool      `json:"in_progress"`
	Failed     bool      `json:"failed,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Turn is the provider-facing shape of a finalized message.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

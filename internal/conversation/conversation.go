// Package conversation holds the ordered list of chat messages shown by the
// assistant. A Conversation is not safe for concurrent use; callers that share
// one across goroutines must serialize access.
package conversation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	newID = func() string { return uuid.NewString() }
	now   = time.Now
)

// Conversation is an append-only sequence of messages. Only the in-progress
// assistant message may change after it is appended.
type Conversation struct {
	id       string
	messages []Message
	index    map[string]int
	active   string // id of the in-progress message, "" when idle
}

// New returns an empty conversation.
func New() *Conversation {
	return &Conversation{
		id:    newID(),
		index: make(map[string]int),
	}
}

// NewWithGreeting returns a conversation seeded with a finalized assistant
// greeting. A blank greeting yields an empty conversation.
func NewWithGreeting(greeting string) *Conversation {
	c := New()
	if strings.TrimSpace(greeting) != "" {
		c.push(Message{Role: RoleAssistant, Content: greeting})
	}
	return c
}

// ID returns the conversation identifier.
func (c *Conversation) ID() string { return c.id }

// Len returns the number of messages.
func (c *Conversation) Len() int { return len(c.messages) }

// InProgress reports whether an assistant message is still streaming.
func (c *Conversation) InProgress() bool { return c.active != "" }

// ActiveID returns the id of the in-progress message, if any.
func (c *Conversation) ActiveID() (string, bool) {
	return c.active, c.active != ""
}

func (c *Conversation) push(m Message) Message {
	m.ID = newID()
	m.CreatedAt = now()
	c.index[m.ID] = len(c.messages)
	c.messages = append(c.messages, m)
	return m
}

// AppendUserMessage adds a finalized user message.
func (c *Conversation) AppendUserMessage(text string) (Message, error) {
	if strings.TrimSpace(text) == "" {
		return Message{}, ErrValidation
	}
	if c.InProgress() {
		return Message{}, ErrBusy
	}
	return c.push(Message{Role: RoleUser, Content: text}), nil
}

// BeginAssistantMessage appends an empty in-progress assistant message and
// returns its id.
func (c *Conversation) BeginAssistantMessage() (string, error) {
	if c.InProgress() {
		return "", ErrBusy
	}
	m := c.push(Message{Role: RoleAssistant, InProgress: true})
	c.active = m.ID
	return m.ID, nil
}

func (c *Conversation) activeMessage(id string) (*Message, error) {
	i, ok := c.index[id]
	if !ok || !c.messages[i].InProgress {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &c.messages[i], nil
}

// AppendFragment concatenates text onto the in-progress message id.
func (c *Conversation) AppendFragment(id, text string) error {
	m, err := c.activeMessage(id)
	if err != nil {
		return err
	}
	m.Content += text
	return nil
}

// FinalizeMessage marks the in-progress message id as done.
func (c *Conversation) FinalizeMessage(id string) (Message, error) {
	m, err := c.activeMessage(id)
	if err != nil {
		return Message{}, err
	}
	m.InProgress = false
	c.active = ""
	return *m, nil
}

// ReplaceWithError overwrites the in-progress message id with errorText and
// finalizes it.
func (c *Conversation) ReplaceWithError(id, errorText string) (Message, error) {
	m, err := c.activeMessage(id)
	if err != nil {
		return Message{}, err
	}
	m.Content = errorText
	m.InProgress = false
	m.Failed = true
	c.active = ""
	return *m, nil
}

// Get returns a copy of message id.
func (c *Conversation) Get(id string) (Message, bool) {
	i, ok := c.index[id]
	if !ok {
		return Message{}, false
	}
	return c.messages[i], true
}

// Messages returns a snapshot in display order.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// History returns the finalized turns worth replaying to a provider:
// in-progress, failed and empty messages are skipped.
func (c *Conversation) History() []Turn {
	out := make([]Turn, 0, len(c.messages))
	for _, m := range c.messages {
		if m.InProgress || m.Failed || strings.TrimSpace(m.Content) == "" {
			continue
		}
		out = append(out, Turn{Role: m.Role, Content: m.Content})
	}
	return out
}

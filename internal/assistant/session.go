package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/qmuntal/stateless"

	"github.com/workspacehq/assistant/internal/conversation"
	"github.com/workspacehq/assistant/internal/history"
	"github.com/workspacehq/assistant/internal/logger"
)

// ExchangeState is the state of the session's single outstanding exchange.
type ExchangeState string

const (
	StateIdle                  ExchangeState = "Idle"
	StateAwaitingFirstFragment ExchangeState = "AwaitingFirstFragment"
	StateStreaming             ExchangeState = "Streaming"
)

// ExchangeTrigger drives ExchangeState transitions.
type ExchangeTrigger string

const (
	TriggerSubmit           ExchangeTrigger = "Submit"
	TriggerFragmentReceived ExchangeTrigger = "FragmentReceived"
	TriggerStreamEnded      ExchangeTrigger = "StreamEnded"
	TriggerErrorOccurred    ExchangeTrigger = "ErrorOccurred"
)

// Opener opens a streaming reply. *Client implements it.
type Opener interface {
	Open(ctx context.Context, history []conversation.Turn, newMessage string) (*Reply, error)
	FallbackText() string
}

// Archiver receives every finalized message. *history.Store implements it.
type Archiver interface {
	Save(ctx context.Context, rec history.Record) error
}

// EventKind tells an observer what changed.
type EventKind string

const (
	EventUser     EventKind = "user"
	EventStarted  EventKind = "message"
	EventFragment EventKind = "fragment"
	EventDone     EventKind = "done"
)

// Event is delivered to the Submit observer, outside the session lock.
type Event struct {
	Kind     EventKind            `json:"kind"`
	Message  conversation.Message `json:"message"`
	Fragment string               `json:"fragment,omitempty"`
}

// Session owns one conversation and runs at most one exchange at a time.
type Session struct {
	mu      sync.Mutex
	conv    *conversation.Conversation
	client  Opener
	fsm     *stateless.StateMachine
	archive Archiver
	timeout time.Duration
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithArchive saves finalized messages to a.
func WithArchive(a Archiver) SessionOption {
	return func(s *Session) { s.archive = a }
}

// WithStreamTimeout bounds each exchange; zero disables the bound.
func WithStreamTimeout(d time.Duration) SessionOption {
	return func(s *Session) { s.timeout = d }
}

// NewSession creates a session over conv.
func NewSession(conv *conversation.Conversation, client Opener, opts ...SessionOption) *Session {
	s := &Session{
		conv:   conv,
		client: client,
		fsm:    newExchangeMachine(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newExchangeMachine() *stateless.StateMachine {
	fsm := stateless.NewStateMachine(StateIdle)

	fsm.Configure(StateIdle).
		OnEntry(func(ctx context.Context, args ...any) error {
			logger.L.Debug("exchange idle")
			return nil
		}).
		Permit(TriggerSubmit, StateAwaitingFirstFragment)

	fsm.Configure(StateAwaitingFirstFragment).
		OnEntry(func(ctx context.Context, args ...any) error {
			logger.L.Debug("exchange awaiting first fragment")
			return nil
		}).
		Permit(TriggerFragmentReceived, StateStreaming).
		Permit(TriggerStreamEnded, StateIdle).
		Permit(TriggerErrorOccurred, StateIdle)

	fsm.Configure(StateStreaming).
		PermitReentry(TriggerFragmentReceived).
		Permit(TriggerStreamEnded, StateIdle).
		Permit(TriggerErrorOccurred, StateIdle)

	return fsm
}

// State reports the current exchange state.
func (s *Session) State() ExchangeState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fsm.MustState().(ExchangeState)
}

// Busy reports whether an exchange is in flight. Front ends disable input while it is true.
func (s *Session) Busy() bool {
	return s.State() != StateIdle
}

// ConversationID returns the id of the owned conversation.
func (s *Session) ConversationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv.ID()
}

// Messages returns a snapshot of the conversation.
func (s *Session) Messages() []conversation.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv.Messages()
}

// Submit runs one exchange: it appends text as a user message, opens the
// reply stream and applies every fragment to a placeholder assistant
// message. Provider failures do not surface as errors; the placeholder is
// replaced with fallback text instead. The returned message is the
// finalized assistant message. observe may be nil.
func (s *Session) Submit(ctx context.Context, text string, observe func(Event)) (conversation.Message, error) {
	if observe == nil {
		observe = func(Event) {}
	}

	s.mu.Lock()
	if s.fsm.MustState() != StateIdle {
		s.mu.Unlock()
		return conversation.Message{}, conversation.ErrBusy
	}
	prior := s.conv.History()
	user, err := s.conv.AppendUserMessage(text)
	if err != nil {
		s.mu.Unlock()
		return conversation.Message{}, err
	}
	id, err := s.conv.BeginAssistantMessage()
	if err != nil {
		s.mu.Unlock()
		return conversation.Message{}, err
	}
	if err := s.fsm.FireCtx(ctx, TriggerSubmit); err != nil {
		s.mu.Unlock()
		return conversation.Message{}, fmt.Errorf("assistant: exchange state: %w", err)
	}
	placeholder, _ := s.conv.Get(id)
	s.mu.Unlock()

	s.save(ctx, user)
	observe(Event{Kind: EventUser, Message: user})
	observe(Event{Kind: EventStarted, Message: placeholder})

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	reply, err := s.client.Open(ctx, prior, text)
	if err != nil {
		return s.fail(ctx, id, err, observe)
	}
	defer reply.Close()

	for {
		frag, err := reply.Next()
		if errors.Is(err, io.EOF) {
			return s.finish(ctx, id, observe)
		}
		if err != nil {
			return s.fail(ctx, id, err, observe)
		}

		s.mu.Lock()
		if err := s.conv.AppendFragment(id, frag); err != nil {
			s.mu.Unlock()
			return s.fail(ctx, id, err, observe)
		}
		if err := s.fsm.FireCtx(ctx, TriggerFragmentReceived); err != nil {
			logger.L.Warn("exchange state rejected fragment", "error", err)
		}
		current, _ := s.conv.Get(id)
		s.mu.Unlock()

		observe(Event{Kind: EventFragment, Message: current, Fragment: frag})
	}
}

func (s *Session) finish(ctx context.Context, id string, observe func(Event)) (conversation.Message, error) {
	s.mu.Lock()
	msg, err := s.conv.FinalizeMessage(id)
	s.settle(TriggerStreamEnded)
	s.mu.Unlock()
	if err != nil {
		return conversation.Message{}, err
	}

	s.save(ctx, msg)
	observe(Event{Kind: EventDone, Message: msg})
	return msg, nil
}

func (s *Session) fail(ctx context.Context, id string, cause error, observe func(Event)) (conversation.Message, error) {
	logger.L.Error("chat exchange failed", "error", cause, "conversation", s.conv.ID(), "message", id)

	s.mu.Lock()
	msg, err := s.conv.ReplaceWithError(id, s.client.FallbackText())
	s.settle(TriggerErrorOccurred)
	s.mu.Unlock()
	if err != nil {
		return conversation.Message{}, err
	}

	s.save(ctx, msg)
	observe(Event{Kind: EventDone, Message: msg})
	return msg, nil
}

// settle returns the machine to Idle. The caller holds s.mu. The context is
// detached so an expired exchange deadline cannot strand the machine.
func (s *Session) settle(trigger ExchangeTrigger) {
	if err := s.fsm.FireCtx(context.Background(), trigger); err != nil {
		logger.L.Error("exchange state could not settle", "error", err, "trigger", trigger)
	}
}

func (s *Session) save(ctx context.Context, m conversation.Message) {
	if s.archive == nil {
		return
	}
	rec := history.Record{
		ConversationID: s.conv.ID(),
		MessageID:      m.ID,
		Role:           string(m.Role),
		Content:        m.Content,
		Failed:         m.Failed,
		CreatedAt:      m.CreatedAt,
	}
	if err := s.archive.Save(context.WithoutCancel(ctx), rec); err != nil {
		logger.L.Warn("archive save failed", "error", err, "message", m.ID)
	}
}

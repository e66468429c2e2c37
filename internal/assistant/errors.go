package assistant

import (
	"errors"
	"fmt"
)

// Stage names the point of an exchange where the provider failed.
type Stage string

const (
	StageOpen Stage = "open"
	StageRecv Stage = "recv"
)

// TransportError wraps a provider failure. It never leaves the package as a
// hard error for chat: Session and StreamReply turn it into fallback text.
type TransportError struct {
	Stage Stage
	Err   error
}

func (e *TransportError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("assistant: transport %s: %v", e.Stage, e.Err)
}

func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ErrBlankTopic is returned by SmartBrief for an empty topic.
var ErrBlankTopic = errors.New("assistant: brief topic must not be blank")
